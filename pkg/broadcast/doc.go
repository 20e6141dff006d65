// Package broadcast provides type-safe one-to-many event fan-out with
// per-subscriber buffering and automatic cleanup.
//
// Each subscriber receives values in emission order over its own buffered
// channel. Sends never block the broadcaster: a subscriber whose buffer is
// full is dropped rather than allowed to stall every other consumer.
//
// Basic usage:
//
//	b := broadcast.NewMemoryBroadcaster[int](16)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	b.Broadcast(ctx, 42)
//
//	for v := range sub.Receive(ctx) {
//		fmt.Println(v)
//	}
//
// Subscriptions are released when the subscriber is closed, when its context
// is cancelled, or when the broadcaster itself is closed. Closing one
// subscriber never affects the others.
package broadcast
