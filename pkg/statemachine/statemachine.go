package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State identifies a node in the machine.
type State string

// Event identifies a trigger that may cause a transition.
type Event string

// Action executes a side effect during a transition. Returning an error
// aborts the transition and leaves the machine in its current state.
type Action func(ctx context.Context, from, to State, event Event) error

type transition struct {
	to      State
	actions []Action
}

// Machine is a thread-safe finite state machine with a fixed transition
// table. Lookups are O(1) on (current state, event).
type Machine struct {
	initial     State
	current     State
	transitions map[State]map[Event]transition
	mu          sync.RWMutex
}

// New creates a machine starting in the given state.
func New(initial State) *Machine {
	return &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[State]map[Event]transition),
	}
}

// AddTransition registers a transition from one state to another on event.
// Registering the same (from, event) pair twice replaces the earlier entry.
func (m *Machine) AddTransition(from, to State, event Event, actions ...Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[Event]transition)
	}
	m.transitions[from][event] = transition{to: to, actions: actions}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is currently in state s.
func (m *Machine) Is(s State) bool {
	return m.Current() == s
}

// Fire applies the transition registered for (current state, event).
// All actions run before the state changes; the first failing action aborts
// the transition.
func (m *Machine) Fire(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transitions[m.current][event]
	if !ok {
		return fmt.Errorf("%w: no transition from %q on %q", ErrNoTransition, m.current, event)
	}

	for _, action := range t.actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.current, t.to, event); err != nil {
			return fmt.Errorf("statemachine: action on %q failed: %w", event, err)
		}
	}

	m.current = t.to
	return nil
}

// CanFire reports whether a transition is registered for (current state, event).
func (m *Machine) CanFire(event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.transitions[m.current][event]
	return ok
}

// Reset returns the machine to its initial state without firing any actions.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}
