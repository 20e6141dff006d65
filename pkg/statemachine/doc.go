// Package statemachine provides a small, concurrency-safe finite state
// machine built around a transition table.
//
// States and events are plain string types; transitions are registered up
// front and fired by event name. Actions run before the state change and a
// failing action aborts the transition.
//
// Usage:
//
//	m := statemachine.New("idle")
//	m.AddTransition("idle", "running", "start")
//	m.AddTransition("running", "idle", "stop")
//
//	if err := m.Fire(ctx, "start"); err != nil {
//		// no transition defined, or an action failed
//	}
package statemachine
