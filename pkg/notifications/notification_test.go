package notifications_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwsadler/notifykit/pkg/notifications"
)

func TestType_Valid(t *testing.T) {
	t.Parallel()

	for _, typ := range notifications.Types() {
		assert.True(t, typ.Valid(), "type %q", typ)
	}
	assert.False(t, notifications.Type("marketing").Valid())
	assert.False(t, notifications.Type("").Valid())
}

func TestNotification_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		in           notifications.Notification
		wantStatus   notifications.Status
		wantPriority notifications.Priority
		wantIsRead   bool
	}{
		{
			name:         "zero values get defaults",
			in:           notifications.Notification{},
			wantStatus:   notifications.StatusNew,
			wantPriority: notifications.PriorityNormal,
			wantIsRead:   false,
		},
		{
			name: "is_read derived from read status",
			in: notifications.Notification{
				Status: notifications.StatusRead,
				IsRead: false,
			},
			wantStatus:   notifications.StatusRead,
			wantPriority: notifications.PriorityNormal,
			wantIsRead:   true,
		},
		{
			name: "stale is_read flag cleared",
			in: notifications.Notification{
				Status:   notifications.StatusDownloaded,
				Priority: notifications.PriorityHigh,
				IsRead:   true,
			},
			wantStatus:   notifications.StatusDownloaded,
			wantPriority: notifications.PriorityHigh,
			wantIsRead:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := tt.in
			n.Normalize()
			assert.Equal(t, tt.wantStatus, n.Status)
			assert.Equal(t, tt.wantPriority, n.Priority)
			assert.Equal(t, tt.wantIsRead, n.IsRead)
		})
	}
}

func TestNotification_Validate(t *testing.T) {
	t.Parallel()

	valid := notifications.Notification{
		UserID: "user-1",
		Title:  "Order shipped",
		Type:   notifications.TypeDelivery,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*notifications.Notification)
		wantErr error
	}{
		{
			name:    "missing user",
			mutate:  func(n *notifications.Notification) { n.UserID = "" },
			wantErr: notifications.ErrEmptyUserID,
		},
		{
			name:    "missing title",
			mutate:  func(n *notifications.Notification) { n.Title = "" },
			wantErr: notifications.ErrInvalidNotification,
		},
		{
			name:    "unknown type",
			mutate:  func(n *notifications.Notification) { n.Type = "bogus" },
			wantErr: notifications.ErrInvalidNotification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := valid
			tt.mutate(&n)
			assert.ErrorIs(t, n.Validate(), tt.wantErr)
		})
	}
}

func TestNotification_ReadTransitions(t *testing.T) {
	t.Parallel()

	n := notifications.Notification{Status: notifications.StatusNew}

	n.MarkRead()
	assert.Equal(t, notifications.StatusRead, n.Status)
	assert.True(t, n.IsRead)

	n.MarkUnread()
	assert.Equal(t, notifications.StatusDownloaded, n.Status)
	assert.False(t, n.IsRead)
}

func TestCountUnread(t *testing.T) {
	t.Parallel()

	items := []notifications.Notification{
		{ID: "1", IsRead: false},
		{ID: "2", IsRead: true},
		{ID: "3", IsRead: false},
	}
	assert.Equal(t, 2, notifications.CountUnread(items))
	assert.Equal(t, 0, notifications.CountUnread(nil))
}
