// Package notifications synchronizes a user's persistent notifications
// between a remote document store and in-app consumers.
//
// # Architecture
//
// The package follows a layered architecture:
//
//   - Storage: persistence, live subscriptions and read/unread mutations
//     (MongoStorage over change streams, MemoryStorage for development)
//   - Manager: owns the single live subscription per user, derives unread
//     counts and fans typed events out to subscribers
//   - Service: request/response facade with filtering and client-side
//     pagination for consumers that prefer calls over events
//
// The live list is always store-consistent: mutations are written to the
// store and the local view updates only when the store's own change
// notification arrives. Consumers never observe a client-predicted state.
//
// # Basic usage
//
//	manager := notifications.NewManager(storage, channel, tokens)
//
//	sub := manager.Subscribe(ctx)
//	defer sub.Close()
//
//	if err := manager.Initialize(ctx, userID); err != nil {
//		return err
//	}
//
//	for ev := range sub.Receive(ctx) {
//		switch e := ev.(type) {
//		case notifications.NotificationsUpdated:
//			render(e.Items)
//		case notifications.UnreadCountChanged:
//			badge(e.Count)
//		case notifications.SyncError:
//			log.Warn("sync degraded", "error", e.Err)
//		}
//	}
//
// Events for one snapshot are ordered: NotificationsUpdated always precedes
// the UnreadCountChanged derived from it.
package notifications
