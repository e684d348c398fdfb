// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"github.com/dhcoder/gamedev-experiments/collect"
	"github.com/dhcoder/gamedev-experiments/fsm"
)

// GenCycleMachine creates a flat machine with n states cycling s0 -> s1 ->
// ... -> s0 on a single "tick" event.
func GenCycleMachine(n int) (*fsm.StateMachine[fsm.StateID, fsm.EventID], fsm.EventID) {
	if n < 1 {
		n = 1
	}
	b := fsm.NewMachineBuilder("s0")
	tick := b.EventID("tick")
	for i := 0; i < n; i++ {
		next := b.StateID(fmt.Sprintf("s%d", (i+1)%n))
		b.On(fmt.Sprintf("s%d", i), "tick",
			func(from fsm.StateID, event fsm.EventID, data any) fsm.StateID {
				return next
			})
	}
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m, tick
}

// GenFilledMap creates an int-keyed map preloaded with n entries.
func GenFilledMap(n int) *collect.ArrayMap[int, int] {
	m, err := collect.NewArrayMap[int, int](collect.HashInt, collect.WithExpectedSize(n))
	if err != nil {
		panic(err)
	}
	for i := 0; i < n; i++ {
		if err := m.Put(i, i); err != nil {
			panic(err)
		}
	}
	return m
}

// CollidingHash maps every key to one bucket, the worst case for probing.
func CollidingHash(int) int32 { return 1 }
