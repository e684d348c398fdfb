// Package loop provides a fixed-tick driver for a state machine plus its
// per-frame pools.
//
// Events sent between ticks are batched, ordered deterministically (priority
// first, then submission order), and dispatched at the next tick boundary.
// Pools registered as frame pools are checkpointed at the start of each tick
// and released back to the checkpoint at its end, so handlers can grab
// scratch instances freely without leaking them across frames.
//
// Given the same sequence of Send calls, the machine executes the same way
// every run, regardless of timing.
//
// Two drive modes:
//   - Start/Stop runs a wall-clock ticker (e.g. 60 ticks per second).
//   - Advance processes one tick synchronously, for fixed-step simulations,
//     replays, and tests.
//
// The state machine and pools themselves remain single-threaded: all
// dispatch happens on the tick goroutine (or the caller of Advance). Only
// the event queue is mutex-guarded, so any goroutine may Send.
package loop
