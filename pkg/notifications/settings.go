package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Setting is a per-user, per-type delivery preference.
type Setting struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Type         Type      `json:"type" bson:"type"`
	Label        string    `json:"label" bson:"label"`
	Description  string    `json:"description" bson:"description"`
	Enabled      bool      `json:"enabled" bson:"enabled"`
	PushEnabled  bool      `json:"push_enabled" bson:"push_enabled"`
	EmailEnabled bool      `json:"email_enabled" bson:"email_enabled"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// SettingUpdate carries partial changes to a setting. Nil fields are left
// untouched.
type SettingUpdate struct {
	Enabled      *bool
	PushEnabled  *bool
	EmailEnabled *bool
}

func (u SettingUpdate) applyTo(s *Setting) {
	if u.Enabled != nil {
		s.Enabled = *u.Enabled
	}
	if u.PushEnabled != nil {
		s.PushEnabled = *u.PushEnabled
	}
	if u.EmailEnabled != nil {
		s.EmailEnabled = *u.EmailEnabled
	}
	s.UpdatedAt = time.Now().UTC()
}

// SettingID returns the stable identifier of the (user, type) setting.
// Defaults that were never stored already carry it, so an update addressed
// by id can create the record on first write.
func SettingID(userID string, t Type) string {
	return userID + ":" + string(t)
}

func settingTypeByID(userID, id string) (Type, bool) {
	for _, t := range Types() {
		if SettingID(userID, t) == id {
			return t, true
		}
	}
	return "", false
}

func typeLabel(t Type) (label, description string) {
	switch t {
	case TypeNewFollower:
		return "New followers", "Someone starts following you"
	case TypeDelivery:
		return "Delivery updates", "Status changes for your orders"
	case TypeRecommendations:
		return "Recommendations", "Picks based on your activity"
	case TypeReferrals:
		return "Referrals", "Referral invites and progress"
	case TypeRewards:
		return "Rewards", "Points, perks and expiring rewards"
	case TypeAccount:
		return "Account", "Security and account activity"
	}
	return string(t), ""
}

func defaultSetting(userID string, t Type) Setting {
	label, description := typeLabel(t)
	return Setting{
		ID:           SettingID(userID, t),
		UserID:       userID,
		Type:         t,
		Label:        label,
		Description:  description,
		Enabled:      true,
		PushEnabled:  true,
		EmailEnabled: true,
	}
}

// DefaultSettings returns the setting set a user starts with, one per
// notification type, everything enabled.
func DefaultSettings(userID string) []Setting {
	types := Types()
	settings := make([]Setting, 0, len(types))
	for _, t := range types {
		settings = append(settings, defaultSetting(userID, t))
	}
	return settings
}

// SettingsStorage persists per-user notification preferences.
type SettingsStorage interface {
	// GetAll returns the stored settings for the user. Types never stored
	// are not included; callers merge with DefaultSettings.
	GetAll(ctx context.Context, userID string) ([]Setting, error)
	// Update applies a partial update to the setting for the given type,
	// creating it from the default when absent.
	Update(ctx context.Context, userID string, t Type, update SettingUpdate) (Setting, error)
	// UpdateByID addresses the setting by its record id, including ids of
	// defaults that were never stored.
	UpdateByID(ctx context.Context, userID, id string, update SettingUpdate) (Setting, error)
}

// MemorySettings is an in-memory SettingsStorage for tests and offline use.
type MemorySettings struct {
	mu       sync.RWMutex
	settings map[string]map[Type]Setting
}

// NewMemorySettings creates an empty MemorySettings.
func NewMemorySettings() *MemorySettings {
	return &MemorySettings{settings: make(map[string]map[Type]Setting)}
}

func (m *MemorySettings) GetAll(_ context.Context, userID string) ([]Setting, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := m.settings[userID]
	out := make([]Setting, 0, len(byType))
	for _, t := range Types() {
		if s, ok := byType[t]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemorySettings) Update(_ context.Context, userID string, t Type, update SettingUpdate) (Setting, error) {
	if userID == "" {
		return Setting{}, ErrEmptyUserID
	}
	if !t.Valid() {
		return Setting{}, fmt.Errorf("%w: unknown type %q", ErrSettingNotFound, t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	byType, ok := m.settings[userID]
	if !ok {
		byType = make(map[Type]Setting)
		m.settings[userID] = byType
	}

	s, ok := byType[t]
	if !ok {
		s = defaultSetting(userID, t)
		s.CreatedAt = time.Now().UTC()
	}
	update.applyTo(&s)
	byType[t] = s
	return s, nil
}

func (m *MemorySettings) UpdateByID(ctx context.Context, userID, id string, update SettingUpdate) (Setting, error) {
	if userID == "" {
		return Setting{}, ErrEmptyUserID
	}
	t, ok := settingTypeByID(userID, id)
	if !ok {
		return Setting{}, fmt.Errorf("%w: id %q", ErrSettingNotFound, id)
	}
	return m.Update(ctx, userID, t, update)
}

// MongoSettings stores settings in a MongoDB collection keyed by user and
// type.
type MongoSettings struct {
	coll *mongo.Collection
}

// NewMongoSettings creates a SettingsStorage over the given collection.
func NewMongoSettings(coll *mongo.Collection) *MongoSettings {
	return &MongoSettings{coll: coll}
}

func (m *MongoSettings) GetAll(ctx context.Context, userID string) ([]Setting, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	cursor, err := m.coll.Find(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return nil, errors.Join(ErrRemoteUnavailable, err)
	}

	var settings []Setting
	if err := cursor.All(ctx, &settings); err != nil {
		return nil, errors.Join(ErrRemoteUnavailable, err)
	}
	return settings, nil
}

func (m *MongoSettings) Update(ctx context.Context, userID string, t Type, update SettingUpdate) (Setting, error) {
	if userID == "" {
		return Setting{}, ErrEmptyUserID
	}
	if !t.Valid() {
		return Setting{}, fmt.Errorf("%w: unknown type %q", ErrSettingNotFound, t)
	}

	def := defaultSetting(userID, t)

	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	// Fields absent from the update keep the default of a fresh setting
	// when the upsert inserts a new document.
	setOnInsert := bson.D{
		{Key: "_id", Value: def.ID},
		{Key: "user_id", Value: userID},
		{Key: "type", Value: t},
		{Key: "label", Value: def.Label},
		{Key: "description", Value: def.Description},
		{Key: "created_at", Value: time.Now().UTC()},
	}
	if update.Enabled != nil {
		set = append(set, bson.E{Key: "enabled", Value: *update.Enabled})
	} else {
		setOnInsert = append(setOnInsert, bson.E{Key: "enabled", Value: true})
	}
	if update.PushEnabled != nil {
		set = append(set, bson.E{Key: "push_enabled", Value: *update.PushEnabled})
	} else {
		setOnInsert = append(setOnInsert, bson.E{Key: "push_enabled", Value: true})
	}
	if update.EmailEnabled != nil {
		set = append(set, bson.E{Key: "email_enabled", Value: *update.EmailEnabled})
	} else {
		setOnInsert = append(setOnInsert, bson.E{Key: "email_enabled", Value: true})
	}

	var out Setting
	err := m.coll.FindOneAndUpdate(ctx,
		bson.D{
			{Key: "user_id", Value: userID},
			{Key: "type", Value: t},
		},
		bson.D{
			{Key: "$set", Value: set},
			{Key: "$setOnInsert", Value: setOnInsert},
		},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return Setting{}, errors.Join(ErrRemoteUnavailable, err)
	}
	return out, nil
}

func (m *MongoSettings) UpdateByID(ctx context.Context, userID, id string, update SettingUpdate) (Setting, error) {
	if userID == "" {
		return Setting{}, ErrEmptyUserID
	}
	t, ok := settingTypeByID(userID, id)
	if !ok {
		return Setting{}, fmt.Errorf("%w: id %q", ErrSettingNotFound, id)
	}
	return m.Update(ctx, userID, t, update)
}
