package notifications

import "errors"

var (
	// ErrNotInitialized is returned when a mutating operation is attempted
	// before Initialize completed, or after Cleanup.
	ErrNotInitialized = errors.New("notifications: manager not initialized")
	// ErrNotificationNotFound is returned when the target record does not
	// exist in the user's collection.
	ErrNotificationNotFound = errors.New("notifications: notification not found")
	// ErrEmptyBatch is returned when a batch operation receives no ids.
	// Rejected before any I/O.
	ErrEmptyBatch = errors.New("notifications: empty id batch")
	// ErrEmptyUserID is returned when an operation is missing the user scope.
	ErrEmptyUserID = errors.New("notifications: user id is required")
	// ErrInvalidNotification is returned when a record fails validation.
	ErrInvalidNotification = errors.New("notifications: invalid notification")
	// ErrRemoteUnavailable wraps store failures on the subscription path.
	ErrRemoteUnavailable = errors.New("notifications: remote store unavailable")
	// ErrUnknownAction is returned by the service for an unrecognized action.
	ErrUnknownAction = errors.New("notifications: unknown action")
	// ErrSettingNotFound is returned when updating an absent settings record.
	ErrSettingNotFound = errors.New("notifications: setting not found")
)
