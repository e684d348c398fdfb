package testutil

import (
	"testing"

	"github.com/dhcoder/gamedev-experiments/fsm"
	"github.com/dhcoder/gamedev-experiments/loop"
)

type doorState int
type doorEvent int

const (
	doorClosed doorState = iota
	doorOpen
	doorLocked
)

const (
	evOpen doorEvent = iota
	evClose
	evLock
	evUnlock
)

func newDoorMachine(t *testing.T) *fsm.StateMachine[doorState, doorEvent] {
	t.Helper()
	m := fsm.NewStateMachine[doorState, doorEvent](doorClosed)
	for _, r := range []struct {
		state doorState
		event doorEvent
		to    doorState
	}{
		{doorClosed, evOpen, doorOpen},
		{doorOpen, evClose, doorClosed},
		{doorClosed, evLock, doorLocked},
		{doorLocked, evUnlock, doorClosed},
	} {
		to := r.to
		err := m.RegisterEvent(r.state, r.event, func(from doorState, event doorEvent, data any) doorState {
			return to
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return m
}

// The same scenario must end in the same state whether events are dispatched
// immediately or batched into ticks.
func TestDispatchersAgree(t *testing.T) {
	script := []doorEvent{evOpen, evClose, evLock, evUnlock, evOpen}

	dispatchers := map[string]func(t *testing.T) Dispatcher[doorState, doorEvent]{
		"direct": func(t *testing.T) Dispatcher[doorState, doorEvent] {
			return NewDirectDispatcher(newDoorMachine(t))
		},
		"tick": func(t *testing.T) Dispatcher[doorState, doorEvent] {
			return NewTickDispatcher(newDoorMachine(t), loop.Config{})
		},
	}

	for name, build := range dispatchers {
		t.Run(name, func(t *testing.T) {
			d := build(t)
			for _, e := range script {
				if err := d.Dispatch(e, nil); err != nil {
					t.Fatal(err)
				}
				d.Settle()
			}
			if got := d.CurrentState(); got != doorOpen {
				t.Errorf("final state = %v, want %v", got, doorOpen)
			}
		})
	}
}

// Batched dispatch defers: the state only moves at Settle.
func TestTickDispatcherDefersUntilSettle(t *testing.T) {
	d := NewTickDispatcher(newDoorMachine(t), loop.Config{})
	if err := d.Dispatch(evOpen, nil); err != nil {
		t.Fatal(err)
	}
	if got := d.CurrentState(); got != doorClosed {
		t.Fatalf("state moved before Settle: %v", got)
	}
	d.Settle()
	if got := d.CurrentState(); got != doorOpen {
		t.Errorf("state after Settle = %v, want %v", got, doorOpen)
	}
}
