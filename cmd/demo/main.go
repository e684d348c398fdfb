// Command demo runs a YAML-configured traffic light on the tick runtime,
// snapshotting its state so a restart resumes where the last run stopped.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhcoder/gamedev-experiments/fsm"
	"github.com/dhcoder/gamedev-experiments/loop"
)

const machineYAML = `
id: traffic-light
initial: red
states: [red, green, yellow]
events: [timer]
transitions:
  - {state: red, event: timer, handler: to_green}
  - {state: green, event: timer, handler: to_yellow}
  - {state: yellow, event: timer, handler: to_red}
`

func main() {
	cfg, err := fsm.LoadMachineConfig([]byte(machineYAML))
	if err != nil {
		panic(err)
	}

	// Handlers resolve names through the builder, which exists only after
	// Bind, so they capture the variable and Bind fills it in.
	var b *fsm.MachineBuilder
	reg := fsm.NewHandlerRegistry()
	to := func(target string) fsm.TransitionHandler[fsm.StateID, fsm.EventID] {
		return func(from fsm.StateID, event fsm.EventID, data any) fsm.StateID {
			return b.StateID(target)
		}
	}
	for handler, target := range map[string]string{
		"to_green": "green", "to_yellow": "yellow", "to_red": "red",
	} {
		if err := reg.Register(handler, to(target)); err != nil {
			panic(err)
		}
	}

	persister, err := fsm.NewSnapshotPersister(os.TempDir())
	if err != nil {
		panic(err)
	}
	ctx := context.Background()

	var m *fsm.StateMachine[fsm.StateID, fsm.EventID]
	snapshot, err := persister.Load(ctx, cfg.ID)
	switch {
	case err == nil:
		b, m, err = fsm.RestoreMachine(cfg, reg, snapshot)
		if err != nil {
			panic(err)
		}
		fmt.Printf("resumed at %q (saved %s)\n", snapshot.Current, snapshot.Timestamp.Format(time.RFC3339))
	case errors.Is(err, os.ErrNotExist):
		b, err = cfg.Bind(reg)
		if err != nil {
			panic(err)
		}
		m, err = b.Build()
		if err != nil {
			panic(err)
		}
		fmt.Println("no snapshot, starting fresh at red")
	default:
		panic(err)
	}

	rt := loop.NewRuntime(m, loop.Config{TickRate: 100 * time.Millisecond})
	if err := rt.Start(ctx); err != nil {
		panic(err)
	}
	defer rt.Stop()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	cycles := 0
	for {
		select {
		case <-ticker.C:
			if err := rt.Send(b.EventID("timer")); err != nil {
				fmt.Printf("send error: %v\n", err)
				continue
			}
			cycles++
			// Give the next tick a moment to process the event.
			time.Sleep(150 * time.Millisecond)
			fmt.Printf("cycle %d: light is %s (tick %d)\n",
				cycles, b.StateName(rt.CurrentState()), rt.TickNumber())
			if cycles >= 12 {
				fmt.Println("demo complete after 12 cycles")
				rt.Stop()
				save(ctx, persister, cfg.ID, b, m)
				return
			}
		case <-sig:
			fmt.Println("\nshutting down, saving snapshot")
			rt.Stop()
			save(ctx, persister, cfg.ID, b, m)
			return
		}
	}
}

func save(ctx context.Context, p *fsm.SnapshotPersister, id string, b *fsm.MachineBuilder, m *fsm.StateMachine[fsm.StateID, fsm.EventID]) {
	if err := p.Save(ctx, fsm.TakeSnapshot(id, b, m)); err != nil {
		fmt.Printf("snapshot save failed: %v\n", err)
	}
}
