package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwsadler/notifykit/pkg/broadcast"
	"github.com/jwsadler/notifykit/pkg/logger"
	"github.com/jwsadler/notifykit/pkg/push"
	"github.com/jwsadler/notifykit/pkg/pushtoken"
	"github.com/jwsadler/notifykit/pkg/statemachine"
)

const (
	stateUninitialized statemachine.State = "uninitialized"
	stateInitializing  statemachine.State = "initializing"
	stateReady         statemachine.State = "ready"
	stateCleaningUp    statemachine.State = "cleaning_up"

	eventInitialize  statemachine.Event = "initialize"
	eventInitialized statemachine.Event = "initialized"
	eventInitFailed  statemachine.Event = "init_failed"
	eventCleanup     statemachine.Event = "cleanup"
	eventCleanedUp   statemachine.Event = "cleaned_up"
)

// defaultEventBuffer is the per-subscriber event channel capacity.
const defaultEventBuffer = 16

// Reporter receives errors that occur outside any caller's call stack, such
// as a broken live subscription or a failed background token write.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// NoopReporter discards every report.
type NoopReporter struct{}

func (NoopReporter) Report(context.Context, error) {}

type initAttempt struct {
	userID string
	done   chan struct{}
	err    error
}

// Manager coordinates the per-user notification session: push permission and
// token registration, the live storage subscription, and the event stream.
//
// The manager never patches its snapshot optimistically. Every list it
// exposes came from the store, so consumers can treat NotificationsUpdated
// as the single source of truth.
type Manager struct {
	storage  Storage
	channel  *push.Channel
	tokens   *pushtoken.Store
	reporter Reporter
	log      *slog.Logger

	platform   string
	bufferSize int

	mu             sync.Mutex
	fsm            *statemachine.Machine
	broadcaster    *broadcast.MemoryBroadcaster[Event]
	userID         string
	sub            Subscription
	removeHandlers []func()
	current        []Notification
	unread         int
	init           *initAttempt

	// generation invalidates callbacks captured by an earlier session. It
	// advances on every Initialize and Cleanup, and stale callbacks that
	// observe a mismatch drop their payload.
	generation uint64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// WithReporter attaches an error reporter for failures that surface outside
// a caller's stack. Defaults to NoopReporter.
func WithReporter(r Reporter) ManagerOption {
	return func(m *Manager) { m.reporter = r }
}

// WithEventBuffer sets the per-subscriber event channel capacity.
func WithEventBuffer(n int) ManagerOption {
	return func(m *Manager) { m.bufferSize = n }
}

// WithPlatform records the device platform on persisted push tokens.
func WithPlatform(platform string) ManagerOption {
	return func(m *Manager) { m.platform = platform }
}

// NewManager creates a manager in the uninitialized state. No remote work
// happens until Initialize.
func NewManager(storage Storage, channel *push.Channel, tokens *pushtoken.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		storage:    storage,
		channel:    channel,
		tokens:     tokens,
		reporter:   NoopReporter{},
		log:        slog.Default(),
		bufferSize: defaultEventBuffer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.broadcaster = broadcast.NewMemoryBroadcaster[Event](m.bufferSize)

	fsm := statemachine.New(stateUninitialized)
	fsm.AddTransition(stateUninitialized, stateInitializing, eventInitialize)
	fsm.AddTransition(stateInitializing, stateReady, eventInitialized)
	fsm.AddTransition(stateInitializing, stateUninitialized, eventInitFailed)
	fsm.AddTransition(stateReady, stateCleaningUp, eventCleanup)
	fsm.AddTransition(stateCleaningUp, stateUninitialized, eventCleanedUp)
	m.fsm = fsm

	return m
}

// Initialize starts a session for userID: requests push permission, persists
// the registration token, and opens the live subscription.
//
// Concurrent calls for the same user share one attempt and observe its
// outcome. A call for a different user while a session is active tears the
// old session down first. Initialize on a ready manager with the same user
// is a no-op.
func (m *Manager) Initialize(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	for {
		m.mu.Lock()
		switch {
		case m.fsm.Is(stateReady):
			if m.userID == userID {
				m.mu.Unlock()
				return nil
			}
			if err := m.cleanupLocked(ctx); err != nil {
				m.mu.Unlock()
				return err
			}
		case m.fsm.Is(stateInitializing):
			attempt := m.init
			m.mu.Unlock()
			select {
			case <-attempt.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if attempt.userID == userID {
				return attempt.err
			}
			continue
		}

		if err := m.fsm.Fire(ctx, eventInitialize); err != nil {
			m.mu.Unlock()
			return err
		}
		attempt := &initAttempt{userID: userID, done: make(chan struct{})}
		m.init = attempt
		m.userID = userID
		m.generation++
		gen := m.generation
		m.mu.Unlock()

		err := m.doInitialize(ctx, userID, gen)

		m.mu.Lock()
		if err != nil {
			_ = m.fsm.Fire(ctx, eventInitFailed)
			m.generation++
			m.userID = ""
			attempt.err = err
		} else {
			_ = m.fsm.Fire(ctx, eventInitialized)
		}
		close(attempt.done)
		m.mu.Unlock()
		return err
	}
}

func (m *Manager) doInitialize(ctx context.Context, userID string, gen uint64) error {
	perm, err := m.channel.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("request push permission: %w", err)
	}

	if err := m.channel.Start(ctx); err != nil {
		return err
	}

	if perm == push.PermissionDenied {
		m.log.InfoContext(ctx, "push permission denied, skipping token registration",
			logger.UserID(userID))
	} else {
		token, err := m.channel.CurrentToken(ctx)
		if err != nil {
			m.channel.Stop()
			return fmt.Errorf("fetch push token: %w", err)
		}
		if err := m.tokens.Persist(ctx, &pushtoken.Token{
			Value:    token,
			UserID:   userID,
			Platform: m.platform,
		}); err != nil {
			m.channel.Stop()
			return fmt.Errorf("persist push token: %w", err)
		}
	}

	removeRefresh := m.channel.OnTokenRefresh(func(token string) {
		m.handleTokenRefresh(gen, token)
	})
	removeForeground := m.channel.OnForegroundMessage(func(msg push.Message) {
		m.emit(gen, NotificationReceived{Message: msg})
	})

	sub, err := m.storage.Subscribe(ctx, userID, Filter{Limit: DefaultPageLimit},
		func(items []Notification) { m.handleSnapshot(gen, items) },
		func(err error) { m.handleStreamError(gen, err) },
	)
	if err != nil {
		removeRefresh()
		removeForeground()
		m.channel.Stop()
		return fmt.Errorf("open live subscription: %w", err)
	}

	m.mu.Lock()
	m.sub = sub
	m.removeHandlers = []func(){removeRefresh, removeForeground}
	m.mu.Unlock()
	return nil
}

// Cleanup tears the active session down: closes the subscription, stops push
// dispatch, and drops all event subscribers. A concurrent Initialize is
// allowed to finish first. Cleanup on an uninitialized manager is a no-op.
func (m *Manager) Cleanup(ctx context.Context) error {
	for {
		m.mu.Lock()
		switch {
		case m.fsm.Is(stateInitializing):
			attempt := m.init
			m.mu.Unlock()
			select {
			case <-attempt.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		case m.fsm.Is(stateReady):
			err := m.cleanupLocked(ctx)
			m.mu.Unlock()
			return err
		default:
			m.mu.Unlock()
			return nil
		}
	}
}

func (m *Manager) cleanupLocked(ctx context.Context) error {
	if err := m.fsm.Fire(ctx, eventCleanup); err != nil {
		return err
	}
	m.generation++

	if m.sub != nil {
		_ = m.sub.Close()
		m.sub = nil
	}
	for _, remove := range m.removeHandlers {
		remove()
	}
	m.removeHandlers = nil
	m.channel.Stop()

	old := m.broadcaster
	m.broadcaster = broadcast.NewMemoryBroadcaster[Event](m.bufferSize)
	_ = old.Close()

	userID := m.userID
	m.current = nil
	m.unread = 0
	m.userID = ""

	if err := m.fsm.Fire(ctx, eventCleanedUp); err != nil {
		return err
	}
	m.log.InfoContext(ctx, "notification session closed", logger.UserID(userID))
	return nil
}

// Subscribe returns a subscriber on the manager's event stream. The
// subscription is released when ctx is cancelled, the subscriber is closed,
// or the session is cleaned up.
func (m *Manager) Subscribe(ctx context.Context) broadcast.Subscriber[Event] {
	m.mu.Lock()
	b := m.broadcaster
	m.mu.Unlock()
	return b.Subscribe(ctx)
}

// Current returns a copy of the latest snapshot.
func (m *Manager) Current() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, len(m.current))
	copy(out, m.current)
	return out
}

// UnreadCount returns the latest unread total.
func (m *Manager) UnreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unread
}

// Ready reports whether a session is active.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fsm.Is(stateReady)
}

// ConsumeLaunchNotification returns the push message that cold-started the
// process, at most once per process lifetime.
func (m *Manager) ConsumeLaunchNotification(ctx context.Context) (*push.Message, error) {
	return m.channel.ConsumeLaunchNotification(ctx)
}

// MarkAsRead marks one notification read. The updated list arrives through
// the next snapshot.
func (m *Manager) MarkAsRead(ctx context.Context, id string) error {
	userID, err := m.requireReady()
	if err != nil {
		return err
	}
	if err := m.storage.MarkRead(ctx, userID, id); err != nil {
		return err
	}
	m.refreshUnread(ctx)
	return nil
}

// MarkAsUnread marks one notification unread.
func (m *Manager) MarkAsUnread(ctx context.Context, id string) error {
	userID, err := m.requireReady()
	if err != nil {
		return err
	}
	if err := m.storage.MarkUnread(ctx, userID, id); err != nil {
		return err
	}
	m.refreshUnread(ctx)
	return nil
}

// Delete removes one notification.
func (m *Manager) Delete(ctx context.Context, id string) error {
	userID, err := m.requireReady()
	if err != nil {
		return err
	}
	if err := m.storage.Delete(ctx, userID, id); err != nil {
		return err
	}
	m.refreshUnread(ctx)
	return nil
}

// MarkManyAsRead marks a batch of notifications read. An empty batch is
// rejected with ErrEmptyBatch before any I/O.
func (m *Manager) MarkManyAsRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyBatch
	}
	userID, err := m.requireReady()
	if err != nil {
		return err
	}
	if err := m.storage.MarkManyRead(ctx, userID, ids); err != nil {
		return err
	}
	m.refreshUnread(ctx)
	return nil
}

func (m *Manager) requireReady() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.fsm.Is(stateReady) {
		return "", ErrNotInitialized
	}
	return m.userID, nil
}

func (m *Manager) handleSnapshot(gen uint64, items []Notification) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.current = items
	b := m.broadcaster
	m.mu.Unlock()

	ctx := context.Background()
	_ = b.Broadcast(ctx, NotificationsUpdated{Items: items})

	// The count is derived from the list just emitted, so the two events of
	// one snapshot can never disagree.
	count := CountUnread(items)

	m.mu.Lock()
	if gen != m.generation || count == m.unread {
		m.mu.Unlock()
		return
	}
	m.unread = count
	b = m.broadcaster
	m.mu.Unlock()

	_ = b.Broadcast(ctx, UnreadCountChanged{Count: count})
}

func (m *Manager) handleStreamError(gen uint64, err error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	b := m.broadcaster
	userID := m.userID
	m.mu.Unlock()

	ctx := context.Background()
	m.log.ErrorContext(ctx, "live subscription failed",
		logger.UserID(userID), logger.Error(err))
	m.reporter.Report(ctx, err)
	_ = b.Broadcast(ctx, SyncError{Err: err})
}

func (m *Manager) handleTokenRefresh(gen uint64, token string) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	userID := m.userID
	m.mu.Unlock()

	ctx := context.Background()
	if err := m.tokens.Persist(ctx, &pushtoken.Token{
		Value:    token,
		UserID:   userID,
		Platform: m.platform,
	}); err != nil {
		m.log.ErrorContext(ctx, "refreshed token persist failed",
			logger.UserID(userID), logger.Error(err))
		m.reporter.Report(ctx, err)
	}
}

func (m *Manager) emit(gen uint64, ev Event) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	b := m.broadcaster
	m.mu.Unlock()
	_ = b.Broadcast(context.Background(), ev)
}

// refreshUnread re-reads the unread total from the store after a mutation
// and emits UnreadCountChanged only when the value actually moved, so
// repeating a mutation never duplicates the event. Stores that deliver
// snapshots synchronously have already emitted through handleSnapshot by
// the time this runs and the recount finds no change.
func (m *Manager) refreshUnread(ctx context.Context) {
	m.mu.Lock()
	if !m.fsm.Is(stateReady) {
		m.mu.Unlock()
		return
	}
	gen := m.generation
	userID := m.userID
	m.mu.Unlock()

	count, err := m.storage.CountUnread(ctx, userID)
	if err != nil {
		m.log.WarnContext(ctx, "unread count refresh failed",
			logger.UserID(userID), logger.Error(err))
		return
	}

	m.mu.Lock()
	if gen != m.generation || count == m.unread {
		m.mu.Unlock()
		return
	}
	m.unread = count
	b := m.broadcaster
	m.mu.Unlock()

	_ = b.Broadcast(ctx, UnreadCountChanged{Count: count})
}
