package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process Storage implementation. Snapshots are
// delivered synchronously from the mutating call, which makes it suitable for
// development and deterministic tests. Mutations that change nothing deliver
// no snapshot.
type MemoryStorage struct {
	mu     sync.Mutex
	byUser map[string][]Notification
	subs   map[*memorySubscription]struct{}
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byUser: make(map[string][]Notification),
		subs:   make(map[*memorySubscription]struct{}),
	}
}

type memorySubscription struct {
	storage *MemoryStorage
	userID  string
	filter  Filter
	fn      SnapshotFunc
}

func (s *memorySubscription) Close() error {
	s.storage.mu.Lock()
	defer s.storage.mu.Unlock()
	delete(s.storage.subs, s)
	return nil
}

func (s *MemoryStorage) Subscribe(ctx context.Context, userID string, f Filter, fn SnapshotFunc, errFn ErrorFunc) (Subscription, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	sub := &memorySubscription{storage: s, userID: userID, filter: f, fn: fn}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	initial := s.queryLocked(userID, f)
	s.mu.Unlock()

	// Initial snapshot is delivered before Subscribe returns.
	fn(initial)
	return sub, nil
}

func (s *MemoryStorage) List(ctx context.Context, userID string, f Filter) ([]Notification, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(userID, f), nil
}

func (s *MemoryStorage) Create(ctx context.Context, n *Notification) error {
	if n == nil {
		return ErrInvalidNotification
	}
	n.Normalize()
	if err := n.Validate(); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now

	s.mu.Lock()
	s.byUser[n.UserID] = append(s.byUser[n.UserID], *n)
	s.mu.Unlock()

	s.notify(n.UserID)
	return nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID, id string) error {
	return s.mutate(userID, id, func(n *Notification) bool {
		if n.IsRead {
			return false
		}
		n.MarkRead()
		return true
	})
}

func (s *MemoryStorage) MarkUnread(ctx context.Context, userID, id string) error {
	return s.mutate(userID, id, func(n *Notification) bool {
		if !n.IsRead {
			return false
		}
		n.MarkUnread()
		return true
	})
}

func (s *MemoryStorage) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	items := s.byUser[userID]
	found := false
	kept := items[:0:0]
	for _, n := range items {
		if n.ID == id {
			found = true
			continue
		}
		kept = append(kept, n)
	}
	if found {
		s.byUser[userID] = kept
	}
	s.mu.Unlock()

	if !found {
		return ErrNotificationNotFound
	}
	s.notify(userID)
	return nil
}

func (s *MemoryStorage) MarkManyRead(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyBatch
	}

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	s.mu.Lock()
	items := s.byUser[userID]
	changed := false
	for i := range items {
		if _, ok := idSet[items[i].ID]; ok && !items[i].IsRead {
			items[i].MarkRead()
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify(userID)
	}
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CountUnread(s.byUser[userID]), nil
}

// mutate applies change to the record with the given id. A false return from
// change means the record was already in the target state; no snapshot is
// delivered in that case.
func (s *MemoryStorage) mutate(userID, id string, change func(*Notification) bool) error {
	s.mu.Lock()
	items := s.byUser[userID]
	found := false
	changed := false
	for i := range items {
		if items[i].ID == id {
			found = true
			changed = change(&items[i])
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return ErrNotificationNotFound
	}
	if changed {
		s.notify(userID)
	}
	return nil
}

// queryLocked runs the server-side stage, orders by recency, applies the
// limit and the client-side refinement. Caller holds s.mu.
func (s *MemoryStorage) queryLocked(userID string, f Filter) []Notification {
	matched := make([]Notification, 0, len(s.byUser[userID]))
	for _, n := range s.byUser[userID] {
		if f.MatchesIndexed(n) {
			matched = append(matched, n)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if limit := f.PageLimit(); len(matched) > limit {
		matched = matched[:limit]
	}

	return f.Refine(matched)
}

// notify re-runs every matching subscription's query and delivers the fresh
// snapshot. Callbacks run outside the storage lock.
func (s *MemoryStorage) notify(userID string) {
	s.mu.Lock()
	type delivery struct {
		fn    SnapshotFunc
		items []Notification
	}
	deliveries := make([]delivery, 0, len(s.subs))
	for sub := range s.subs {
		if sub.userID == userID {
			deliveries = append(deliveries, delivery{sub.fn, s.queryLocked(userID, sub.filter)})
		}
	}
	s.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.items)
	}
}
