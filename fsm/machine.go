// Package fsm provides a finite-state-machine dispatcher for closed state
// and event domains, built on the collect.ArrayMap transition table so that
// dispatching an event performs no allocation.
package fsm

import (
	"fmt"

	"github.com/dhcoder/gamedev-experiments/collect"
)

// Tag constrains states and events to enumerable integer domains. Define
// your states and events as typed constants (see StateID / EventID for
// ready-made types).
type Tag interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// StateID and EventID are convenience tag types for machines that don't
// bring their own enums (the builder and YAML config produce these).
type StateID int
type EventID int

// TransitionHandler responds to an event in a given state and returns the
// state the machine should move to. Handlers are pure functions of their
// arguments; the machine itself assumes no side effects.
type TransitionHandler[S, E Tag] func(from S, event E, data any) S

// DefaultHandler catches events with no registered transition. It cannot
// change the machine's state.
type DefaultHandler[S, E Tag] func(from S, event E, data any)

// transitionKey is the (state, event) composite lookup key. It is a plain
// value struct, so building one for a lookup is a stack operation - no
// pooling or allocation involved.
type transitionKey[S, E Tag] struct {
	state S
	event E
}

// StateMachine dispatches events to transition handlers registered per
// (state, event) pair. Pairs with no handler fall through to an optional
// default handler and leave the current state untouched.
//
// StateMachine is not safe for concurrent use.
type StateMachine[S, E Tag] struct {
	startState     S
	currentState   S
	table          *collect.ArrayMap[transitionKey[S, E], TransitionHandler[S, E]]
	defaultHandler DefaultHandler[S, E]
}

// NewStateMachine creates a machine sitting in startState.
func NewStateMachine[S, E Tag](startState S) *StateMachine[S, E] {
	table, err := collect.NewArrayMap[transitionKey[S, E], TransitionHandler[S, E]](
		func(k transitionKey[S, E]) int32 {
			return collect.CombineHash(int32(k.state), int32(k.event))
		})
	if err != nil {
		panic(err) // default map options never fail validation
	}
	return &StateMachine[S, E]{
		startState:   startState,
		currentState: startState,
		table:        table,
	}
}

// CurrentState returns the state the machine is in.
func (m *StateMachine[S, E]) CurrentState() S {
	return m.currentState
}

// Reset puts the machine back into its start state.
func (m *StateMachine[S, E]) Reset() {
	m.currentState = m.startState
}

// SetDefaultHandler installs a handler for events that arrive with no
// registered transition in the current state.
func (m *StateMachine[S, E]) SetDefaultHandler(handler DefaultHandler[S, E]) {
	m.defaultHandler = handler
}

// RegisterEvent wires a handler to fire when event arrives while the machine
// is in state. Registering the same pair twice fails with
// ErrDuplicateTransition.
func (m *StateMachine[S, E]) RegisterEvent(state S, event E, handler TransitionHandler[S, E]) error {
	key := transitionKey[S, E]{state: state, event: event}
	if m.table.ContainsKey(key) {
		return fmt.Errorf("%w: %v, %v", ErrDuplicateTransition, state, event)
	}
	return m.table.Put(key, handler)
}

// HandleEvent dispatches event against the current state.
func (m *StateMachine[S, E]) HandleEvent(event E) {
	m.HandleEventWithData(event, nil)
}

// HandleEventWithData dispatches event with a payload the handler receives
// verbatim. When a transition is registered for (currentState, event), its
// handler runs and the returned state becomes current; otherwise the default
// handler (if any) runs and the state stays put.
func (m *StateMachine[S, E]) HandleEventWithData(event E, data any) {
	key := transitionKey[S, E]{state: m.currentState, event: event}
	handler := m.table.GetOrZero(key)
	if handler == nil {
		if m.defaultHandler != nil {
			m.defaultHandler(m.currentState, event, data)
		}
		return
	}
	m.currentState = handler(m.currentState, event, data)
}
