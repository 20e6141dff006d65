// Package pushtoken manages the push-messaging registration token for one
// device: a fast local cache holds the canonical value, and a remote per-user
// per-device record mirrors it for server-side delivery targeting.
//
// Persistence is local-first: the cache write must succeed, the remote write
// is best effort. A remote outage therefore never loses the token — it is
// re-mirrored on the next refresh.
//
// Usage:
//
//	store := pushtoken.NewStore(cache, remote,
//		pushtoken.WithRegistrar(snsRegistrar),
//	)
//
//	err := store.Persist(ctx, &pushtoken.Token{
//		UserID:   userID,
//		Value:    providerToken,
//		Platform: "ios",
//	})
package pushtoken
