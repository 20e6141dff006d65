package push_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwsadler/notifykit/pkg/push"
)

func newChannel(t *testing.T) (*push.Channel, *push.MemoryProvider) {
	t.Helper()

	provider := push.NewMemoryProvider()
	channel := push.NewChannel(provider,
		push.WithChannelLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return channel, provider
}

func TestChannel_PermissionDeniedIsValue(t *testing.T) {
	t.Parallel()

	channel, provider := newChannel(t)
	provider.SetPermission(push.PermissionDenied, nil)

	perm, err := channel.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, push.PermissionDenied, perm)
}

func TestChannel_ProviderFailureWrapped(t *testing.T) {
	t.Parallel()

	channel, provider := newChannel(t)
	provider.SetPermission("", errors.New("network down"))
	provider.SetToken("", errors.New("network down"))

	_, err := channel.RequestPermission(context.Background())
	assert.ErrorIs(t, err, push.ErrProviderUnavailable)

	_, err = channel.CurrentToken(context.Background())
	assert.ErrorIs(t, err, push.ErrProviderUnavailable)
}

func TestChannel_DispatchesToAllHandlers(t *testing.T) {
	t.Parallel()

	channel, provider := newChannel(t)
	require.NoError(t, channel.Start(context.Background()))

	var first, second []string
	channel.OnForegroundMessage(func(m push.Message) { first = append(first, m.ID) })
	channel.OnForegroundMessage(func(m push.Message) { second = append(second, m.ID) })

	provider.EmitForeground(push.Message{ID: "m1"})

	assert.Equal(t, []string{"m1"}, first)
	assert.Equal(t, []string{"m1"}, second)
}

func TestChannel_RemoveHandlerKeepsOthers(t *testing.T) {
	t.Parallel()

	channel, provider := newChannel(t)
	require.NoError(t, channel.Start(context.Background()))

	var kept, removed int
	channel.OnTokenRefresh(func(string) { kept++ })
	remove := channel.OnTokenRefresh(func(string) { removed++ })
	remove()

	provider.EmitTokenRefresh("tok")

	assert.Equal(t, 1, kept)
	assert.Equal(t, 0, removed)
}

func TestChannel_StartIdempotent(t *testing.T) {
	t.Parallel()

	channel, provider := newChannel(t)
	require.NoError(t, channel.Start(context.Background()))
	require.NoError(t, channel.Start(context.Background()))
	assert.True(t, provider.Listening())
}

func TestChannel_StopReleasesListenersAndHandlers(t *testing.T) {
	t.Parallel()

	channel, provider := newChannel(t)
	require.NoError(t, channel.Start(context.Background()))

	var calls int
	channel.OnForegroundMessage(func(push.Message) { calls++ })

	channel.Stop()
	assert.False(t, provider.Listening())

	// Events after Stop reach nobody, even if the channel is restarted.
	require.NoError(t, channel.Start(context.Background()))
	provider.EmitForeground(push.Message{ID: "m2"})
	assert.Equal(t, 0, calls)

	channel.Stop()
	channel.Stop()
}

func TestChannel_ConsumeLaunchNotificationOnce(t *testing.T) {
	t.Parallel()

	channel, provider := newChannel(t)
	provider.SetLaunchMessage(&push.Message{ID: "cold-start"})

	first, err := channel.ConsumeLaunchNotification(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "cold-start", first.ID)

	second, err := channel.ConsumeLaunchNotification(context.Background())
	require.NoError(t, err)
	assert.Nil(t, second)
}

func TestChannel_ConsumeLaunchNotificationEmpty(t *testing.T) {
	t.Parallel()

	channel, _ := newChannel(t)

	msg, err := channel.ConsumeLaunchNotification(context.Background())
	require.NoError(t, err)
	assert.Nil(t, msg)
}
