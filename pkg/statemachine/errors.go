package statemachine

import "errors"

// ErrNoTransition is returned by Fire when no transition is registered for
// the current state and event.
var ErrNoTransition = errors.New("statemachine: no transition available")
