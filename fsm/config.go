package fsm

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// HandlerRegistry maps handler names, as referenced from machine configs, to
// transition handler functions. Populate it at setup time, before binding
// any config.
type HandlerRegistry struct {
	handlers map[string]TransitionHandler[StateID, EventID]
	defaults map[string]DefaultHandler[StateID, EventID]
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]TransitionHandler[StateID, EventID]),
		defaults: make(map[string]DefaultHandler[StateID, EventID]),
	}
}

// Register adds a named transition handler. Re-registering a name fails with
// ErrHandlerExists.
func (r *HandlerRegistry) Register(name string, handler TransitionHandler[StateID, EventID]) error {
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %q", ErrHandlerExists, name)
	}
	r.handlers[name] = handler
	return nil
}

// RegisterDefault adds a named default handler.
func (r *HandlerRegistry) RegisterDefault(name string, handler DefaultHandler[StateID, EventID]) error {
	if _, exists := r.defaults[name]; exists {
		return fmt.Errorf("%w: %q", ErrHandlerExists, name)
	}
	r.defaults[name] = handler
	return nil
}

// TransitionConfig names one (state, event) -> handler registration.
type TransitionConfig struct {
	State   string `yaml:"state"`
	Event   string `yaml:"event"`
	Handler string `yaml:"handler"`
}

// MachineConfig is the declarative form of a state machine: states, events,
// and the transition table, with handlers referenced by registry name.
type MachineConfig struct {
	ID          string             `yaml:"id"`
	Initial     string             `yaml:"initial"`
	States      []string           `yaml:"states"`
	Events      []string           `yaml:"events"`
	Transitions []TransitionConfig `yaml:"transitions"`
	Default     string             `yaml:"default,omitempty"`
}

// LoadMachineConfig parses and validates a YAML machine config.
func LoadMachineConfig(data []byte) (MachineConfig, error) {
	var cfg MachineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return MachineConfig{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return MachineConfig{}, err
	}
	return cfg, nil
}

// Validate checks structural soundness: non-empty ID, an initial state that
// is listed, transitions referencing listed states and events, and no
// duplicate (state, event) pairs.
func (c MachineConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: machine ID is required", ErrBadConfig)
	}
	if c.Initial == "" {
		return fmt.Errorf("%w: initial state is required", ErrBadConfig)
	}
	if len(c.States) == 0 {
		return fmt.Errorf("%w: states list is required and cannot be empty", ErrBadConfig)
	}

	states := make(map[string]bool, len(c.States))
	for _, s := range c.States {
		if states[s] {
			return fmt.Errorf("%w: duplicate state %q", ErrBadConfig, s)
		}
		states[s] = true
	}
	events := make(map[string]bool, len(c.Events))
	for _, e := range c.Events {
		if events[e] {
			return fmt.Errorf("%w: duplicate event %q", ErrBadConfig, e)
		}
		events[e] = true
	}

	if !states[c.Initial] {
		return fmt.Errorf("%w: initial state %q not in states", ErrBadConfig, c.Initial)
	}

	pairs := make(map[TransitionConfig]bool, len(c.Transitions))
	for i, t := range c.Transitions {
		if !states[t.State] {
			return fmt.Errorf("%w: transition %d references unknown state %q", ErrBadConfig, i, t.State)
		}
		if !events[t.Event] {
			return fmt.Errorf("%w: transition %d references unknown event %q", ErrBadConfig, i, t.Event)
		}
		if t.Handler == "" {
			return fmt.Errorf("%w: transition %d has no handler", ErrBadConfig, i)
		}
		pair := TransitionConfig{State: t.State, Event: t.Event}
		if pairs[pair] {
			return fmt.Errorf("%w: duplicate transition for %s+%s", ErrBadConfig, t.State, t.Event)
		}
		pairs[pair] = true
	}

	return nil
}

// Bind resolves the config's handler names against reg and schedules every
// state, event, and transition into a MachineBuilder. Call Build on the
// result to get the machine; use the builder's name lookups to translate
// between names and tags at the call site.
func (c MachineConfig) Bind(reg *HandlerRegistry) (*MachineBuilder, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	b := NewMachineBuilder(c.Initial)
	// Assign IDs in listed order so a config fixes its own numbering.
	for _, s := range c.States {
		b.StateID(s)
	}
	for _, e := range c.Events {
		b.EventID(e)
	}

	for _, t := range c.Transitions {
		handler, ok := reg.handlers[t.Handler]
		if !ok {
			return nil, fmt.Errorf("%w: %q (transition %s+%s)", ErrUnknownHandler, t.Handler, t.State, t.Event)
		}
		b.On(t.State, t.Event, handler)
	}

	if c.Default != "" {
		handler, ok := reg.defaults[c.Default]
		if !ok {
			return nil, fmt.Errorf("%w: default %q", ErrUnknownHandler, c.Default)
		}
		b.Default(handler)
	}

	return b, nil
}

// DumpMachineConfig serializes a validated config back to YAML, so callers
// don't import yaml themselves for the round trip.
func DumpMachineConfig(cfg MachineConfig) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return data, nil
}
