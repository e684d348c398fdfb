package fsm

import (
	"errors"
	"testing"
)

const trafficLightYAML = `
id: traffic-light
initial: red
states: [red, green, yellow]
events: [go, caution, stop]
transitions:
  - {state: red, event: go, handler: to_green}
  - {state: green, event: caution, handler: to_yellow}
  - {state: yellow, event: stop, handler: to_red}
default: log_unhandled
`

func trafficRegistry(t *testing.T) *HandlerRegistry {
	t.Helper()
	reg := NewHandlerRegistry()
	to := func(name string) TransitionHandler[StateID, EventID] {
		return func(from StateID, event EventID, data any) StateID {
			// State IDs follow the listed order: red=0, green=1, yellow=2.
			switch name {
			case "red":
				return 0
			case "green":
				return 1
			default:
				return 2
			}
		}
	}
	for handler, state := range map[string]string{
		"to_green": "green", "to_yellow": "yellow", "to_red": "red",
	} {
		if err := reg.Register(handler, to(state)); err != nil {
			t.Fatal(err)
		}
	}
	if err := reg.RegisterDefault("log_unhandled", func(from StateID, event EventID, data any) {}); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestLoadMachineConfig(t *testing.T) {
	cfg, err := LoadMachineConfig([]byte(trafficLightYAML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ID != "traffic-light" {
		t.Errorf("ID = %q", cfg.ID)
	}
	if cfg.Initial != "red" {
		t.Errorf("Initial = %q", cfg.Initial)
	}
	if len(cfg.States) != 3 || len(cfg.Events) != 3 || len(cfg.Transitions) != 3 {
		t.Errorf("parsed %d states, %d events, %d transitions",
			len(cfg.States), len(cfg.Events), len(cfg.Transitions))
	}
	if cfg.Default != "log_unhandled" {
		t.Errorf("Default = %q", cfg.Default)
	}
}

func TestBindProducesRunnableMachine(t *testing.T) {
	cfg, err := LoadMachineConfig([]byte(trafficLightYAML))
	if err != nil {
		t.Fatal(err)
	}
	b, err := cfg.Bind(trafficRegistry(t))
	if err != nil {
		t.Fatal(err)
	}
	m, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if got := b.StateName(m.CurrentState()); got != "red" {
		t.Fatalf("start state = %q, want red", got)
	}
	m.HandleEvent(b.EventID("go"))
	if got := b.StateName(m.CurrentState()); got != "green" {
		t.Errorf("state = %q, want green", got)
	}
	m.HandleEvent(b.EventID("caution"))
	if got := b.StateName(m.CurrentState()); got != "yellow" {
		t.Errorf("state = %q, want yellow", got)
	}
}

func TestBindRejectsUnknownHandler(t *testing.T) {
	cfg, err := LoadMachineConfig([]byte(trafficLightYAML))
	if err != nil {
		t.Fatal(err)
	}
	_, err = cfg.Bind(NewHandlerRegistry())
	if !errors.Is(err, ErrUnknownHandler) {
		t.Errorf("Bind err = %v, want ErrUnknownHandler", err)
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	reg := NewHandlerRegistry()
	h := func(from StateID, event EventID, data any) StateID { return from }
	if err := reg.Register("h", h); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("h", h); !errors.Is(err, ErrHandlerExists) {
		t.Errorf("re-register err = %v, want ErrHandlerExists", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := func() MachineConfig {
		return MachineConfig{
			ID:      "m",
			Initial: "a",
			States:  []string{"a", "b"},
			Events:  []string{"e"},
			Transitions: []TransitionConfig{
				{State: "a", Event: "e", Handler: "h"},
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(*MachineConfig)
	}{
		{"missing id", func(c *MachineConfig) { c.ID = "" }},
		{"missing initial", func(c *MachineConfig) { c.Initial = "" }},
		{"no states", func(c *MachineConfig) { c.States = nil }},
		{"duplicate state", func(c *MachineConfig) { c.States = []string{"a", "a"} }},
		{"duplicate event", func(c *MachineConfig) { c.Events = []string{"e", "e"} }},
		{"initial not listed", func(c *MachineConfig) { c.Initial = "zzz" }},
		{"unknown transition state", func(c *MachineConfig) { c.Transitions[0].State = "zzz" }},
		{"unknown transition event", func(c *MachineConfig) { c.Transitions[0].Event = "zzz" }},
		{"empty handler", func(c *MachineConfig) { c.Transitions[0].Handler = "" }},
		{"duplicate pair", func(c *MachineConfig) {
			c.Transitions = append(c.Transitions, TransitionConfig{State: "a", Event: "e", Handler: "h2"})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrBadConfig) {
				t.Errorf("Validate err = %v, want ErrBadConfig", err)
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	cfg, err := LoadMachineConfig([]byte(trafficLightYAML))
	if err != nil {
		t.Fatal(err)
	}
	data, err := DumpMachineConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	again, err := LoadMachineConfig(data)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != cfg.ID || again.Initial != cfg.Initial || len(again.Transitions) != len(cfg.Transitions) {
		t.Errorf("round trip changed config: %+v vs %+v", again, cfg)
	}
}
