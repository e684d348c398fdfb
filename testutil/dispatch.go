// Package testutil provides a common interface for driving a state machine
// directly or through the tick runtime, so the same test scenario can run on
// both dispatch paths.
package testutil

import (
	"github.com/dhcoder/gamedev-experiments/fsm"
	"github.com/dhcoder/gamedev-experiments/loop"
)

// Dispatcher abstracts how events reach a machine: immediately, or batched
// until the next tick.
type Dispatcher[S, E fsm.Tag] interface {
	Dispatch(event E, data any) error
	// Settle processes any pending work so CurrentState reflects every
	// dispatched event.
	Settle()
	CurrentState() S
}

// DirectDispatcher drives a machine synchronously. Events take effect as soon
// as they are dispatched; Settle is a no-op.
type DirectDispatcher[S, E fsm.Tag] struct {
	m *fsm.StateMachine[S, E]
}

// NewDirectDispatcher wraps a machine for immediate dispatch.
func NewDirectDispatcher[S, E fsm.Tag](m *fsm.StateMachine[S, E]) *DirectDispatcher[S, E] {
	return &DirectDispatcher[S, E]{m: m}
}

func (d *DirectDispatcher[S, E]) Dispatch(event E, data any) error {
	d.m.HandleEventWithData(event, data)
	return nil
}

func (d *DirectDispatcher[S, E]) Settle() {}

func (d *DirectDispatcher[S, E]) CurrentState() S {
	return d.m.CurrentState()
}

// TickDispatcher drives a machine through a loop.Runtime. Events queue up
// until Settle advances one tick.
type TickDispatcher[S, E fsm.Tag] struct {
	rt *loop.Runtime[S, E]
}

// NewTickDispatcher wraps a machine in a runtime for batched dispatch.
func NewTickDispatcher[S, E fsm.Tag](m *fsm.StateMachine[S, E], cfg loop.Config) *TickDispatcher[S, E] {
	return &TickDispatcher[S, E]{rt: loop.NewRuntime(m, cfg)}
}

func (d *TickDispatcher[S, E]) Dispatch(event E, data any) error {
	return d.rt.SendWithData(event, data)
}

func (d *TickDispatcher[S, E]) Settle() {
	d.rt.Advance()
}

func (d *TickDispatcher[S, E]) CurrentState() S {
	return d.rt.CurrentState()
}
