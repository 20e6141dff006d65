package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is empty, it returns an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// DeviceID records the device identifier under the key "device_id".
// If id is empty, it returns an empty Attr.
func DeviceID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("device_id", id)
}

// NotificationID records the notification identifier under the key "notification_id".
// If id is empty, it returns an empty Attr.
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Count records an item count under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
