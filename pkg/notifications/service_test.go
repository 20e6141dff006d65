package notifications_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwsadler/notifykit/pkg/notifications"
)

func newServiceFixture(t *testing.T, opts ...notifications.ServiceOption) (*notifications.Service, *managerFixture) {
	t.Helper()
	fx := newManagerFixture(t)
	return notifications.NewService(fx.manager, opts...), fx
}

func TestService_GetNotificationsPagination(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, fx := newServiceFixture(t)
	seedStorage(t, fx.storage, "user-1", 45, 45)
	require.NoError(t, fx.manager.Initialize(ctx, "user-1"))

	tests := []struct {
		name      string
		page      int
		wantItems int
		wantMore  bool
	}{
		{name: "first page full", page: 1, wantItems: 20, wantMore: true},
		{name: "middle page full", page: 2, wantItems: 20, wantMore: true},
		{name: "last page partial", page: 3, wantItems: 5, wantMore: false},
		{name: "past the end", page: 4, wantItems: 0, wantMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := svc.GetNotifications(ctx, notifications.Filter{}, tt.page, 0)
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, 45, page.TotalCount)
			assert.Equal(t, 3, page.TotalPages)
			assert.Equal(t, tt.page, page.CurrentPage)
			assert.Equal(t, tt.wantMore, page.HasMore)
		})
	}
}

func TestService_GetNotificationsDefaultsAndOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, fx := newServiceFixture(t)
	seedStorage(t, fx.storage, "user-1", 5, 2)
	require.NoError(t, fx.manager.Initialize(ctx, "user-1"))

	// Page zero and negative sizes fall back to defaults.
	page, err := svc.GetNotifications(ctx, notifications.Filter{}, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "user-1-n04", page.Items[0].ID, "most recent first")
	assert.Equal(t, 2, page.UnreadCount)

	unread := false
	page, err = svc.GetNotifications(ctx, notifications.Filter{IsRead: &unread}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalCount)
}

func TestService_GetNotificationsRequiresSession(t *testing.T) {
	t.Parallel()

	svc, _ := newServiceFixture(t)

	_, err := svc.GetNotifications(context.Background(), notifications.Filter{}, 1, 20)
	assert.ErrorIs(t, err, notifications.ErrNotInitialized)
}

func TestService_UpdateNotification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, fx := newServiceFixture(t)
	ids := seedStorage(t, fx.storage, "user-1", 3, 3)
	require.NoError(t, fx.manager.Initialize(ctx, "user-1"))

	res := svc.UpdateNotification(ctx, ids[0], notifications.ActionMarkRead)
	assert.True(t, res.Success)
	assert.NoError(t, res.Err)
	assert.Equal(t, 2, res.UnreadCount)

	res = svc.UpdateNotification(ctx, ids[0], notifications.ActionMarkUnread)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.UnreadCount)

	res = svc.UpdateNotification(ctx, ids[1], notifications.ActionDelete)
	assert.True(t, res.Success)
	assert.Len(t, fx.manager.Current(), 2)
}

func TestService_UpdateNotificationFailuresAreValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, fx := newServiceFixture(t)
	seedStorage(t, fx.storage, "user-1", 1, 1)
	require.NoError(t, fx.manager.Initialize(ctx, "user-1"))

	res := svc.UpdateNotification(ctx, "n1", notifications.Action("archive"))
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, notifications.ErrUnknownAction)
	assert.NotEmpty(t, res.Message)

	res = svc.UpdateNotification(ctx, "missing", notifications.ActionMarkRead)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, notifications.ErrNotificationNotFound)
}

func TestService_MarkAllAsRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, fx := newServiceFixture(t)
	seedStorage(t, fx.storage, "user-1", 10, 3)
	require.NoError(t, fx.manager.Initialize(ctx, "user-1"))
	require.Equal(t, 3, fx.manager.UnreadCount())

	res := svc.MarkAllAsRead(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.UnreadCount)

	// Nothing left unread; the second call succeeds without touching storage.
	res = svc.MarkAllAsRead(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.UnreadCount)
}

func TestService_Settings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newServiceFixture(t, notifications.WithSettingsStorage(notifications.NewMemorySettings()))

	settings, err := svc.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, settings, len(notifications.Types()))
	for _, s := range settings {
		assert.True(t, s.Enabled, "type %q defaults to enabled", s.Type)
		assert.True(t, s.PushEnabled)
	}

	off := false
	updated, err := svc.UpdateSetting(ctx, "user-1", notifications.TypeRewards,
		notifications.SettingUpdate{PushEnabled: &off})
	require.NoError(t, err)
	assert.True(t, updated.Enabled)
	assert.False(t, updated.PushEnabled)

	settings, err = svc.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	for _, s := range settings {
		if s.Type == notifications.TypeRewards {
			assert.False(t, s.PushEnabled, "stored override wins over default")
		} else {
			assert.True(t, s.PushEnabled)
		}
	}
}

func TestService_SettingsWithoutStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newServiceFixture(t)

	settings, err := svc.GetSettings(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, settings, len(notifications.Types()))

	_, err = svc.UpdateSetting(ctx, "user-1", notifications.TypeRewards, notifications.SettingUpdate{})
	assert.ErrorIs(t, err, notifications.ErrSettingNotFound)
}
