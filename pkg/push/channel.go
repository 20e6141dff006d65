package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwsadler/notifykit/pkg/logger"
)

// Channel multiplexes one Provider's events to any number of registered
// handlers. Handlers registered after Start still receive subsequent events;
// removing one handler never affects the others.
type Channel struct {
	provider Provider
	log      *slog.Logger

	mu             sync.Mutex
	nextID         int
	tokenRefresh   map[int]func(string)
	foreground     map[int]func(Message)
	background     map[int]func(Message)
	opened         map[int]func(Message)
	stop           func()
	launchConsumed bool
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithChannelLogger sets the logger for the Channel.
func WithChannelLogger(log *slog.Logger) ChannelOption {
	return func(c *Channel) { c.log = log }
}

// NewChannel creates a channel over the given provider.
func NewChannel(provider Provider, opts ...ChannelOption) *Channel {
	c := &Channel{
		provider:     provider,
		log:          slog.Default(),
		tokenRefresh: make(map[int]func(string)),
		foreground:   make(map[int]func(Message)),
		background:   make(map[int]func(Message)),
		opened:       make(map[int]func(Message)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestPermission asks the provider for push permission. A denied answer is
// returned as a value; only provider failures produce an error.
func (c *Channel) RequestPermission(ctx context.Context) (Permission, error) {
	perm, err := c.provider.RequestPermission(ctx)
	if err != nil {
		return "", errors.Join(ErrProviderUnavailable, err)
	}
	return perm, nil
}

// CurrentToken returns the provider's current registration token.
func (c *Channel) CurrentToken(ctx context.Context) (string, error) {
	token, err := c.provider.Token(ctx)
	if err != nil {
		return "", errors.Join(ErrProviderUnavailable, err)
	}
	return token, nil
}

// Start begins dispatching provider events to registered handlers.
// Calling Start on a started channel is a no-op.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return nil
	}

	stop, err := c.provider.Listen(ctx, Handlers{
		TokenRefresh: c.dispatchTokenRefresh,
		Foreground:   func(m Message) { c.dispatch(m, "foreground", c.snapshotForeground) },
		Background:   func(m Message) { c.dispatch(m, "background", c.snapshotBackground) },
		Opened:       func(m Message) { c.dispatch(m, "opened", c.snapshotOpened) },
	})
	if err != nil {
		return fmt.Errorf("start provider listener: %w", errors.Join(ErrProviderUnavailable, err))
	}

	c.stop = stop
	return nil
}

// Stop halts event dispatch and removes every registered handler.
// Safe to call on a stopped channel.
func (c *Channel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	clear(c.tokenRefresh)
	clear(c.foreground)
	clear(c.background)
	clear(c.opened)
}

// OnTokenRefresh registers a token refresh handler and returns its remove
// function.
func (c *Channel) OnTokenRefresh(fn func(token string)) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.tokenRefresh[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.tokenRefresh, id)
	}
}

// OnForegroundMessage registers a handler for messages received while the app
// is in the foreground.
func (c *Channel) OnForegroundMessage(fn func(msg Message)) (remove func()) {
	return c.register(c.foreground, fn)
}

// OnBackgroundMessage registers a handler for messages received while the app
// is backgrounded.
func (c *Channel) OnBackgroundMessage(fn func(msg Message)) (remove func()) {
	return c.register(c.background, fn)
}

// OnNotificationOpened registers a handler for notification taps.
func (c *Channel) OnNotificationOpened(fn func(msg Message)) (remove func()) {
	return c.register(c.opened, fn)
}

// ConsumeLaunchNotification returns the notification that cold-started the
// process, at most once per process lifetime. Subsequent calls return nil.
func (c *Channel) ConsumeLaunchNotification(ctx context.Context) (*Message, error) {
	c.mu.Lock()
	if c.launchConsumed {
		c.mu.Unlock()
		return nil, nil
	}
	c.launchConsumed = true
	c.mu.Unlock()

	msg, err := c.provider.LaunchMessage(ctx)
	if err != nil {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}
	return msg, nil
}

func (c *Channel) register(m map[int]func(Message), fn func(Message)) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	m[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(m, id)
	}
}

func (c *Channel) dispatchTokenRefresh(token string) {
	c.mu.Lock()
	handlers := make([]func(string), 0, len(c.tokenRefresh))
	for _, fn := range c.tokenRefresh {
		handlers = append(handlers, fn)
	}
	c.mu.Unlock()

	c.log.Debug("push token refreshed", logger.Event("token_refresh"))
	for _, fn := range handlers {
		fn(token)
	}
}

func (c *Channel) dispatch(m Message, event string, snapshot func() []func(Message)) {
	c.log.Debug("push message received", logger.Event(event), logger.NotificationID(m.ID))
	for _, fn := range snapshot() {
		fn(m)
	}
}

func (c *Channel) snapshotForeground() []func(Message) { return c.snapshot(c.foreground) }
func (c *Channel) snapshotBackground() []func(Message) { return c.snapshot(c.background) }
func (c *Channel) snapshotOpened() []func(Message)     { return c.snapshot(c.opened) }

func (c *Channel) snapshot(m map[int]func(Message)) []func(Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	handlers := make([]func(Message), 0, len(m))
	for _, fn := range m {
		handlers = append(handlers, fn)
	}
	return handlers
}
