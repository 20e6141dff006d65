// Package push wraps a push-messaging provider SDK behind a small Provider
// interface and multiplexes its events — token refreshes, foreground and
// background messages, notification taps — to any number of registered
// handlers.
//
// The Channel also owns the cold-start contract: the notification that
// launched the process can be consumed at most once.
//
// Provider failures are reported, never thrown across the event chain: a
// denied permission is a value, not an error, and a transient provider
// outage leaves the previously known token untouched.
package push
