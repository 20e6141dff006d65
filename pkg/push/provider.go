package push

import (
	"context"
	"time"
)

// Permission is the user's push permission state.
type Permission string

const (
	PermissionGranted     Permission = "granted"
	PermissionDenied      Permission = "denied"
	PermissionProvisional Permission = "provisional"
)

// Message is one push message delivered by the provider.
type Message struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
	SentAt time.Time         `json:"sent_at"`
}

// Handlers receives provider events. Nil fields are ignored.
type Handlers struct {
	TokenRefresh func(token string)
	Foreground   func(msg Message)
	Background   func(msg Message)
	Opened       func(msg Message)
}

// Provider is the push-messaging SDK surface the channel depends on.
type Provider interface {
	// RequestPermission asks the user for push permission. Denial is a
	// Permission value, not an error; errors mean the provider itself failed.
	RequestPermission(ctx context.Context) (Permission, error)

	// Token returns the current registration token, possibly after a provider
	// round-trip.
	Token(ctx context.Context) (string, error)

	// Listen starts delivering provider events to h until the returned stop
	// function is called or ctx is cancelled.
	Listen(ctx context.Context, h Handlers) (stop func(), err error)

	// LaunchMessage returns the notification that cold-started the process,
	// or nil when the app was launched normally.
	LaunchMessage(ctx context.Context) (*Message, error)
}
