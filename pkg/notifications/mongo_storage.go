package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jwsadler/notifykit/pkg/logger"
)

// MongoStorage persists notifications in a MongoDB collection and implements
// live subscriptions over change streams. On every change affecting the
// subscribed user the current result set is re-queried and delivered as a
// full snapshot.
type MongoStorage struct {
	coll *mongo.Collection
	log  *slog.Logger
}

// MongoStorageOption configures a MongoStorage.
type MongoStorageOption func(*MongoStorage)

// WithMongoLogger sets the logger for the MongoStorage.
func WithMongoLogger(log *slog.Logger) MongoStorageOption {
	return func(s *MongoStorage) { s.log = log }
}

// NewMongoStorage creates a Storage over the given collection.
func NewMongoStorage(coll *mongo.Collection, opts ...MongoStorageOption) *MongoStorage {
	s := &MongoStorage{coll: coll, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type mongoSubscription struct {
	cancel context.CancelFunc
	stream *mongo.ChangeStream
	once   sync.Once
}

// Close cancels the watcher. It does not wait for an in-flight snapshot
// delivery; consumers guard against late callbacks themselves.
func (s *mongoSubscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

func (s *MongoStorage) Subscribe(ctx context.Context, userID string, f Filter, fn SnapshotFunc, errFn ErrorFunc) (Subscription, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stream, err := s.coll.Watch(watchCtx, changeStreamPipeline(userID), changeStreamOptions())
	if err != nil {
		cancel()
		return nil, errors.Join(ErrRemoteUnavailable, err)
	}

	initial, err := s.List(ctx, userID, f)
	if err != nil {
		cancel()
		_ = stream.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	fn(initial)

	sub := &mongoSubscription{cancel: cancel, stream: stream}
	go s.watch(watchCtx, stream, userID, f, fn, errFn)
	return sub, nil
}

func (s *MongoStorage) watch(ctx context.Context, stream *mongo.ChangeStream, userID string, f Filter, fn SnapshotFunc, errFn ErrorFunc) {
	defer func() {
		_ = stream.Close(context.WithoutCancel(ctx))
	}()

	for stream.Next(ctx) {
		items, err := s.List(ctx, userID, f)
		if err != nil {
			s.log.ErrorContext(ctx, "re-query after change event failed",
				logger.UserID(userID), logger.Error(err))
			if errFn != nil {
				errFn(err)
			}
			continue
		}
		fn(items)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.log.ErrorContext(ctx, "change stream broken",
			logger.UserID(userID), logger.Error(err))
		if errFn != nil {
			errFn(errors.Join(ErrRemoteUnavailable, err))
		}
	}
}

func (s *MongoStorage) List(ctx context.Context, userID string, f Filter) ([]Notification, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	cursor, err := s.coll.Find(ctx, mongoFilter(userID, f),
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(int64(f.PageLimit())),
	)
	if err != nil {
		return nil, errors.Join(ErrRemoteUnavailable, err)
	}

	var items []Notification
	if err := cursor.All(ctx, &items); err != nil {
		return nil, errors.Join(ErrRemoteUnavailable, err)
	}

	return f.Refine(items), nil
}

func (s *MongoStorage) Create(ctx context.Context, n *Notification) error {
	if n == nil {
		return ErrInvalidNotification
	}
	n.Normalize()
	if err := n.Validate(); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *MongoStorage) MarkRead(ctx context.Context, userID, id string) error {
	return s.updateOne(ctx, userID, id, bson.D{
		{Key: "status", Value: StatusRead},
		{Key: "is_read", Value: true},
	})
}

func (s *MongoStorage) MarkUnread(ctx context.Context, userID, id string) error {
	return s.updateOne(ctx, userID, id, bson.D{
		{Key: "status", Value: StatusDownloaded},
		{Key: "is_read", Value: false},
	})
}

func (s *MongoStorage) Delete(ctx context.Context, userID, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
	})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *MongoStorage) MarkManyRead(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyBatch
	}

	_, err := s.coll.UpdateMany(ctx,
		bson.D{
			{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
			{Key: "user_id", Value: userID},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: StatusRead},
			{Key: "is_read", Value: true},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("mark batch read: %w", err)
	}
	return nil
}

func (s *MongoStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	count, err := s.coll.CountDocuments(ctx, bson.D{
		{Key: "user_id", Value: userID},
		{Key: "is_read", Value: false},
	})
	if err != nil {
		return 0, errors.Join(ErrRemoteUnavailable, err)
	}
	return int(count), nil
}

func (s *MongoStorage) updateOne(ctx context.Context, userID, id string, set bson.D) error {
	set = append(set, bson.E{Key: "updated_at", Value: time.Now().UTC()})

	res, err := s.coll.UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: id},
			{Key: "user_id", Value: userID},
		},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// changeStreamPipeline matches every event that can change the user's list.
// Deletes carry no fullDocument, so they pass the match unconditionally and
// trigger a re-query for every subscriber.
func changeStreamPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "fullDocument.user_id", Value: userID}},
		bson.D{{Key: "operationType", Value: "delete"}},
	}}}}}}
}

// changeStreamOptions requests a full-document lookup on update events.
// Without it the server omits fullDocument from updates and the user-id
// match drops every read/unread mutation.
func changeStreamOptions() *options.ChangeStreamOptionsBuilder {
	return options.ChangeStream().SetFullDocument(options.UpdateLookup)
}

// mongoFilter builds the server-side stage of f scoped to userID.
func mongoFilter(userID string, f Filter) bson.D {
	filter := bson.D{{Key: "user_id", Value: userID}}
	if len(f.Types) > 0 {
		filter = append(filter, bson.E{Key: "type", Value: bson.D{{Key: "$in", Value: f.Types}}})
	}
	if f.Status != nil {
		filter = append(filter, bson.E{Key: "status", Value: *f.Status})
	}
	if f.IsRead != nil {
		filter = append(filter, bson.E{Key: "is_read", Value: *f.IsRead})
	}
	return filter
}
