package notifications

import "context"

// SnapshotFunc receives the full current result set of a live query. It is
// invoked once with the initial snapshot before Subscribe returns, then on
// every subsequent remote change, always from a single goroutine per
// subscription.
type SnapshotFunc func(items []Notification)

// ErrorFunc receives subscription failures that occur outside any caller's
// call stack (e.g. a broken change stream). May be nil.
type ErrorFunc func(err error)

// Subscription binds one live listener to one (user, filter) pair.
type Subscription interface {
	// Close releases the listener. Idempotent.
	Close() error
}

// Storage is the persistence contract for a user's notification collection.
//
// Mutations never patch local state optimistically: their effect becomes
// visible through the next snapshot the store delivers, so the live list is
// always store-consistent.
type Storage interface {
	// Subscribe opens a live query scoped to userID, ordered by recency and
	// capped at the filter's page limit.
	Subscribe(ctx context.Context, userID string, f Filter, fn SnapshotFunc, errFn ErrorFunc) (Subscription, error)

	// List is a one-shot fetch: server-side filters bound the result, the
	// client-side refinement runs on top.
	List(ctx context.Context, userID string, f Filter) ([]Notification, error)

	// Create stores a new record, assigning an id when absent.
	Create(ctx context.Context, n *Notification) error

	MarkRead(ctx context.Context, userID, id string) error
	MarkUnread(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, userID, id string) error

	// MarkManyRead marks a batch of records read. An empty batch is rejected
	// with ErrEmptyBatch before any I/O.
	MarkManyRead(ctx context.Context, userID string, ids []string) error

	// CountUnread returns the number of unread records for the user.
	CountUnread(ctx context.Context, userID string) (int, error)
}
