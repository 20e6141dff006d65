package broadcast

import "context"

// Subscriber receives values from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the channel values are delivered on. The channel is
	// closed when the subscriber is closed; values arrive in the order they
	// were broadcast. The context parameter lets remote adapters respect
	// cancellation during blocking reads; the in-memory implementation does
	// not use it.
	Receive(ctx context.Context) <-chan T

	// Close releases the subscription and closes the receive channel.
	// Close is idempotent.
	Close() error
}

// Broadcaster fans values out to every active subscriber.
type Broadcaster[T any] interface {
	// Subscribe registers a new subscriber. The subscription is released
	// automatically when ctx is cancelled.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast delivers v to all active subscribers without blocking.
	// Subscribers whose buffers are full miss the value and are dropped.
	Broadcast(ctx context.Context, v T) error

	// Close shuts down the broadcaster and closes every subscriber.
	// After Close, Subscribe returns already-closed subscribers and
	// Broadcast is a no-op.
	Close() error
}
