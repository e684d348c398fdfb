package fsm

import (
	"errors"
	"testing"
)

type gameState int
type gameEvent int

const (
	stateIdle gameState = iota
	stateRunning
	statePaused
)

const (
	eventStart gameEvent = iota
	eventPause
	eventResume
	eventUnhandled
)

func newGameMachine(t *testing.T) *StateMachine[gameState, gameEvent] {
	t.Helper()
	m := NewStateMachine[gameState, gameEvent](stateIdle)

	register := func(s gameState, e gameEvent, to gameState) {
		err := m.RegisterEvent(s, e, func(from gameState, event gameEvent, data any) gameState {
			return to
		})
		if err != nil {
			t.Fatalf("RegisterEvent(%v, %v) failed: %v", s, e, err)
		}
	}
	register(stateIdle, eventStart, stateRunning)
	register(stateRunning, eventPause, statePaused)
	register(statePaused, eventResume, stateRunning)
	return m
}

func TestMachineFollowsTransitions(t *testing.T) {
	m := newGameMachine(t)
	if got := m.CurrentState(); got != stateIdle {
		t.Fatalf("start state = %v, want %v", got, stateIdle)
	}

	m.HandleEvent(eventStart)
	if got := m.CurrentState(); got != stateRunning {
		t.Errorf("after start: state = %v, want %v", got, stateRunning)
	}
	m.HandleEvent(eventPause)
	if got := m.CurrentState(); got != statePaused {
		t.Errorf("after pause: state = %v, want %v", got, statePaused)
	}
	m.HandleEvent(eventResume)
	if got := m.CurrentState(); got != stateRunning {
		t.Errorf("after resume: state = %v, want %v", got, stateRunning)
	}
}

func TestUnregisteredEventLeavesStateAlone(t *testing.T) {
	m := newGameMachine(t)

	m.HandleEvent(eventUnhandled)
	if got := m.CurrentState(); got != stateIdle {
		t.Errorf("state = %v after unhandled event, want %v", got, stateIdle)
	}

	// Pause is registered for running, not idle.
	m.HandleEvent(eventPause)
	if got := m.CurrentState(); got != stateIdle {
		t.Errorf("state = %v after event registered elsewhere, want %v", got, stateIdle)
	}
}

func TestDefaultHandlerSeesUnhandledEvents(t *testing.T) {
	m := newGameMachine(t)

	var calls int
	var lastState gameState
	var lastEvent gameEvent
	m.SetDefaultHandler(func(from gameState, event gameEvent, data any) {
		calls++
		lastState = from
		lastEvent = event
	})

	m.HandleEvent(eventStart) // handled, default must not fire
	m.HandleEvent(eventUnhandled)

	if calls != 1 {
		t.Fatalf("default handler ran %d times, want 1", calls)
	}
	if lastState != stateRunning || lastEvent != eventUnhandled {
		t.Errorf("default handler saw (%v, %v), want (%v, %v)",
			lastState, lastEvent, stateRunning, eventUnhandled)
	}
	if got := m.CurrentState(); got != stateRunning {
		t.Errorf("default handler changed state to %v", got)
	}
}

func TestEventDataReachesHandler(t *testing.T) {
	m := NewStateMachine[gameState, gameEvent](stateIdle)

	var got any
	err := m.RegisterEvent(stateIdle, eventStart, func(from gameState, event gameEvent, data any) gameState {
		got = data
		return stateRunning
	})
	if err != nil {
		t.Fatal(err)
	}

	payload := "level-1"
	m.HandleEventWithData(eventStart, payload)
	if got != payload {
		t.Errorf("handler data = %v, want %v", got, payload)
	}

	// HandleEvent passes nil data.
	m.Reset()
	m.HandleEvent(eventStart)
	if got != nil {
		t.Errorf("handler data = %v, want nil", got)
	}
}

func TestDuplicateRegistrationFails(t *testing.T) {
	m := newGameMachine(t)

	err := m.RegisterEvent(stateIdle, eventStart, func(from gameState, event gameEvent, data any) gameState {
		return stateIdle
	})
	if !errors.Is(err, ErrDuplicateTransition) {
		t.Errorf("duplicate registration err = %v, want ErrDuplicateTransition", err)
	}

	// Same event on a different state is fine.
	err = m.RegisterEvent(statePaused, eventStart, func(from gameState, event gameEvent, data any) gameState {
		return stateRunning
	})
	if err != nil {
		t.Errorf("registering same event on another state failed: %v", err)
	}
}

func TestResetReturnsToStartState(t *testing.T) {
	m := newGameMachine(t)
	m.HandleEvent(eventStart)
	m.HandleEvent(eventPause)

	m.Reset()
	if got := m.CurrentState(); got != stateIdle {
		t.Errorf("state after reset = %v, want %v", got, stateIdle)
	}

	// Transitions still work after a reset.
	m.HandleEvent(eventStart)
	if got := m.CurrentState(); got != stateRunning {
		t.Errorf("state after reset+start = %v, want %v", got, stateRunning)
	}
}

func TestHandlerReceivesCurrentStateAndEvent(t *testing.T) {
	m := NewStateMachine[gameState, gameEvent](statePaused)

	err := m.RegisterEvent(statePaused, eventResume, func(from gameState, event gameEvent, data any) gameState {
		if from != statePaused {
			t.Errorf("handler from = %v, want %v", from, statePaused)
		}
		if event != eventResume {
			t.Errorf("handler event = %v, want %v", event, eventResume)
		}
		return stateRunning
	})
	if err != nil {
		t.Fatal(err)
	}
	m.HandleEvent(eventResume)
}
