package notifications

import "github.com/jwsadler/notifykit/pkg/push"

// Event is the interface implemented by all manager events. Consumers switch
// on the concrete type to react to a specific change.
type Event interface {
	event()
}

// NotificationsUpdated carries a full snapshot of the current notification
// list after any change, local or remote.
type NotificationsUpdated struct {
	Items []Notification
}

// UnreadCountChanged carries the new unread total. It is emitted only when
// the count actually changed and always after the NotificationsUpdated event
// of the same snapshot.
type UnreadCountChanged struct {
	Count int
}

// NotificationReceived carries a push message that arrived while the app was
// in the foreground.
type NotificationReceived struct {
	Message push.Message
}

// SyncError reports a failure of the live subscription. The manager keeps
// the last known snapshot when this fires.
type SyncError struct {
	Err error
}

func (NotificationsUpdated) event() {}
func (UnreadCountChanged) event()   {}
func (NotificationReceived) event() {}
func (SyncError) event()            {}
