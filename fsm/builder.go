package fsm

import (
	"fmt"
)

// MachineBuilder assembles a StateMachine[StateID, EventID] from string
// names instead of hand-numbered tags. Names get sequential IDs in the order
// they first appear, so a given build script always produces the same
// numbering.
type MachineBuilder struct {
	startName string

	nextStateID StateID
	nextEventID EventID
	stateIDs    map[string]StateID
	eventIDs    map[string]EventID
	stateNames  map[StateID]string // reverse lookup for debugging
	eventNames  map[EventID]string

	registrations  []registration
	defaultHandler DefaultHandler[StateID, EventID]
}

type registration struct {
	state   string
	event   string
	handler TransitionHandler[StateID, EventID]
}

// NewMachineBuilder creates a builder for a machine starting in startState.
func NewMachineBuilder(startState string) *MachineBuilder {
	b := &MachineBuilder{
		startName:  startState,
		stateIDs:   make(map[string]StateID),
		eventIDs:   make(map[string]EventID),
		stateNames: make(map[StateID]string),
		eventNames: make(map[EventID]string),
	}
	b.StateID(startState)
	return b
}

// StateID returns the ID for a state name, assigning the next sequential ID
// on first sight.
func (b *MachineBuilder) StateID(name string) StateID {
	if id, ok := b.stateIDs[name]; ok {
		return id
	}
	id := b.nextStateID
	b.nextStateID++
	b.stateIDs[name] = id
	b.stateNames[id] = name
	return id
}

// EventID returns the ID for an event name, assigning the next sequential ID
// on first sight.
func (b *MachineBuilder) EventID(name string) EventID {
	if id, ok := b.eventIDs[name]; ok {
		return id
	}
	id := b.nextEventID
	b.nextEventID++
	b.eventIDs[name] = id
	b.eventNames[id] = name
	return id
}

// StateName returns the name behind a StateID, or "" if it was never
// assigned.
func (b *MachineBuilder) StateName(id StateID) string {
	return b.stateNames[id]
}

// EventName returns the name behind an EventID, or "" if it was never
// assigned.
func (b *MachineBuilder) EventName(id EventID) string {
	return b.eventNames[id]
}

// On schedules a transition handler for the named (state, event) pair.
// Returns the builder for chaining; duplicate pairs surface from Build.
func (b *MachineBuilder) On(state, event string, handler TransitionHandler[StateID, EventID]) *MachineBuilder {
	b.StateID(state)
	b.EventID(event)
	b.registrations = append(b.registrations, registration{state: state, event: event, handler: handler})
	return b
}

// Default schedules the machine's default handler.
func (b *MachineBuilder) Default(handler DefaultHandler[StateID, EventID]) *MachineBuilder {
	b.defaultHandler = handler
	return b
}

// Build constructs the machine and registers every scheduled transition.
// A duplicate (state, event) pair fails the build with
// ErrDuplicateTransition.
func (b *MachineBuilder) Build() (*StateMachine[StateID, EventID], error) {
	m := NewStateMachine[StateID, EventID](b.stateIDs[b.startName])
	for _, r := range b.registrations {
		if err := m.RegisterEvent(b.stateIDs[r.state], b.eventIDs[r.event], r.handler); err != nil {
			return nil, fmt.Errorf("transition %s+%s: %w", r.state, r.event, err)
		}
	}
	if b.defaultHandler != nil {
		m.SetDefaultHandler(b.defaultHandler)
	}
	return m, nil
}
