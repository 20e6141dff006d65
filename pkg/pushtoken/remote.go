package pushtoken

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Remote mirrors tokens into the remote document store, keyed by
// (user, device). At most one active token exists per pair.
type Remote interface {
	Save(ctx context.Context, token *Token) error
	Deactivate(ctx context.Context, userID, deviceID string) error
}

// MongoRemote stores token records in a MongoDB collection.
type MongoRemote struct {
	coll *mongo.Collection
}

// NewMongoRemote creates a Remote over the given collection.
func NewMongoRemote(coll *mongo.Collection) *MongoRemote {
	return &MongoRemote{coll: coll}
}

// Save upserts the token record for (user, device). Re-saving the same value
// is an idempotent overwrite.
func (r *MongoRemote) Save(ctx context.Context, token *Token) error {
	filter := bson.D{
		{Key: "user_id", Value: token.UserID},
		{Key: "device_id", Value: token.DeviceID},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "token", Value: token.Value},
			{Key: "platform", Value: token.Platform},
			{Key: "is_active", Value: true},
			{Key: "updated_at", Value: time.Now().UTC()},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "created_at", Value: time.Now().UTC()},
		}},
	}

	_, err := r.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	return err
}

// Deactivate flips the (user, device) record to inactive. Missing records are
// not an error.
func (r *MongoRemote) Deactivate(ctx context.Context, userID, deviceID string) error {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "device_id", Value: deviceID},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_active", Value: false},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}

	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}
