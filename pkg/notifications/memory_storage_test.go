package notifications_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwsadler/notifykit/pkg/notifications"
)

func seedStorage(t *testing.T, s *notifications.MemoryStorage, userID string, count, unread int) []string {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	ids := make([]string, 0, count)
	for i := range count {
		n := notifications.Notification{
			ID:        fmt.Sprintf("%s-n%02d", userID, i),
			UserID:    userID,
			Title:     fmt.Sprintf("Notification %d", i),
			Type:      notifications.TypeDelivery,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i >= unread {
			n.Status = notifications.StatusRead
		}
		require.NoError(t, s.Create(ctx, &n))
		ids = append(ids, n.ID)
	}
	return ids
}

func TestMemoryStorage_SubscribeDeliversInitialSnapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := notifications.NewMemoryStorage()
	seedStorage(t, s, "user-1", 3, 3)

	var got []notifications.Notification
	sub, err := s.Subscribe(ctx, "user-1", notifications.Filter{},
		func(items []notifications.Notification) { got = items }, nil)
	require.NoError(t, err)
	defer sub.Close()

	// Most recent first.
	require.Len(t, got, 3)
	assert.Equal(t, "user-1-n02", got[0].ID)
	assert.Equal(t, "user-1-n00", got[2].ID)
}

func TestMemoryStorage_MutationsDeliverFreshSnapshots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := notifications.NewMemoryStorage()
	ids := seedStorage(t, s, "user-1", 2, 2)

	snapshots := 0
	var last []notifications.Notification
	sub, err := s.Subscribe(ctx, "user-1", notifications.Filter{},
		func(items []notifications.Notification) {
			snapshots++
			last = items
		}, nil)
	require.NoError(t, err)
	defer sub.Close()
	require.Equal(t, 1, snapshots)

	require.NoError(t, s.MarkRead(ctx, "user-1", ids[0]))
	assert.Equal(t, 2, snapshots)
	assert.Equal(t, 1, notifications.CountUnread(last))

	// Marking an already-read record changes nothing and stays silent.
	require.NoError(t, s.MarkRead(ctx, "user-1", ids[0]))
	assert.Equal(t, 2, snapshots)

	require.NoError(t, s.Delete(ctx, "user-1", ids[1]))
	assert.Equal(t, 3, snapshots)
	assert.Len(t, last, 1)
}

func TestMemoryStorage_SnapshotsStopAfterClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := notifications.NewMemoryStorage()
	ids := seedStorage(t, s, "user-1", 1, 1)

	snapshots := 0
	sub, err := s.Subscribe(ctx, "user-1", notifications.Filter{},
		func([]notifications.Notification) { snapshots++ }, nil)
	require.NoError(t, err)
	require.Equal(t, 1, snapshots)

	require.NoError(t, sub.Close())
	require.NoError(t, s.MarkRead(ctx, "user-1", ids[0]))
	assert.Equal(t, 1, snapshots)
}

func TestMemoryStorage_SubscriptionsAreUserScoped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := notifications.NewMemoryStorage()
	seedStorage(t, s, "user-1", 1, 1)

	snapshots := 0
	sub, err := s.Subscribe(ctx, "user-1", notifications.Filter{},
		func([]notifications.Notification) { snapshots++ }, nil)
	require.NoError(t, err)
	defer sub.Close()
	require.Equal(t, 1, snapshots)

	seedStorage(t, s, "user-2", 1, 1)
	assert.Equal(t, 1, snapshots, "another user's write must not fan out")
}

func TestMemoryStorage_NotFoundAndEmptyBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := notifications.NewMemoryStorage()
	seedStorage(t, s, "user-1", 1, 1)

	assert.ErrorIs(t, s.MarkRead(ctx, "user-1", "missing"), notifications.ErrNotificationNotFound)
	assert.ErrorIs(t, s.MarkUnread(ctx, "user-1", "missing"), notifications.ErrNotificationNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "user-1", "missing"), notifications.ErrNotificationNotFound)
	assert.ErrorIs(t, s.MarkManyRead(ctx, "user-1", nil), notifications.ErrEmptyBatch)
	_, err := s.Subscribe(ctx, "", notifications.Filter{}, func([]notifications.Notification) {}, nil)
	assert.ErrorIs(t, err, notifications.ErrEmptyUserID)
}

func TestMemoryStorage_MarkManyRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := notifications.NewMemoryStorage()
	ids := seedStorage(t, s, "user-1", 5, 5)

	require.NoError(t, s.MarkManyRead(ctx, "user-1", ids[:3]))

	count, err := s.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryStorage_ListHonorsLimitAndFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := notifications.NewMemoryStorage()
	seedStorage(t, s, "user-1", 10, 4)

	items, err := s.List(ctx, "user-1", notifications.Filter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "user-1-n09", items[0].ID)

	unread := false
	items, err = s.List(ctx, "user-1", notifications.Filter{IsRead: &unread})
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestMemoryStorage_CreateValidates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := notifications.NewMemoryStorage()

	err := s.Create(ctx, &notifications.Notification{UserID: "user-1", Title: "x", Type: "bogus"})
	assert.ErrorIs(t, err, notifications.ErrInvalidNotification)

	n := &notifications.Notification{UserID: "user-1", Title: "Hello", Type: notifications.TypeAccount}
	require.NoError(t, s.Create(ctx, n))
	assert.NotEmpty(t, n.ID, "id assigned when absent")
	assert.Equal(t, notifications.StatusNew, n.Status)
	assert.False(t, n.CreatedAt.IsZero())
}
