package pushtoken

import "time"

// Token is one device's push registration.
type Token struct {
	Value     string    `json:"token" bson:"token"`
	UserID    string    `json:"user_id" bson:"user_id"`
	DeviceID  string    `json:"device_id" bson:"device_id"`
	Platform  string    `json:"platform" bson:"platform"`
	Active    bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
