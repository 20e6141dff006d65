// Package notifykit provides client-side notification synchronization for Go
// applications: push-token lifecycle, a live view over a remote notification
// store, read/unread tracking, and a typed event stream that decouples data
// updates from consumers.
//
// The library reconciles three independently failing sources of truth — a
// remote document store, a push-messaging provider, and a local key-value
// cache — into one consistent, observable state.
//
// Packages:
//
//   - pkg/notifications — domain model, storage adapters (MongoDB change
//     streams, in-memory), the sync Manager and the request/response Service
//   - pkg/push — push-provider abstraction and the channel that fans provider
//     events out to registered handlers
//   - pkg/pushtoken — local-first push token store (Redis cache + remote
//     record, optional SNS endpoint registration)
//   - pkg/broadcast — generic typed fan-out used for the event stream
//   - pkg/statemachine — small FSM driving the Manager lifecycle
//   - pkg/config, pkg/logger, pkg/mongodb, pkg/redis — ambient plumbing
//
// Basic usage:
//
//	storage := notifications.NewMemoryStorage()
//	channel := push.NewChannel(provider)
//	tokens := pushtoken.NewStore(cache, remote)
//
//	manager := notifications.NewManager(storage, channel, tokens)
//	sub := manager.Subscribe(ctx)
//	defer sub.Close()
//
//	if err := manager.Initialize(ctx, userID); err != nil {
//		// app startup may block on this
//	}
//
//	for ev := range sub.Receive(ctx) {
//		switch e := ev.(type) {
//		case notifications.NotificationsUpdated:
//			render(e.Items)
//		case notifications.UnreadCountChanged:
//			badge(e.Count)
//		}
//	}
package notifykit
