package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dhcoder/gamedev-experiments/fsm"
)

// ErrQueueFull indicates a Send while the event batch already holds
// MaxEventsPerTick entries.
var ErrQueueFull = errors.New("loop: event queue full")

// FramePool is the slice of the pool surface the runtime needs for per-tick
// checkpointing. Both mem.Pool and mem.HeapPool satisfy it.
type FramePool interface {
	Mark() int
	FreeToMark(mark int) error
}

// Config configures a Runtime.
type Config struct {
	TickRate         time.Duration // fixed tick interval (default 16.67ms, 60 FPS)
	MaxEventsPerTick int           // event batch capacity (default 1000)
}

// Runtime drives a StateMachine at a fixed tick rate with batched,
// deterministically ordered events and frame-pool checkpointing.
type Runtime[S, E fsm.Tag] struct {
	machine    *fsm.StateMachine[S, E]
	framePools []FramePool

	tickRate time.Duration
	ticker   *time.Ticker

	batchMu     sync.Mutex
	eventBatch  []QueuedEvent[E]
	spareBatch  []QueuedEvent[E] // double buffer so ticks don't allocate
	marks       []int
	sequenceNum uint64
	tickNum     uint64

	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// NewRuntime creates a runtime around machine. The machine must not be
// driven directly while the runtime owns it.
func NewRuntime[S, E fsm.Tag](machine *fsm.StateMachine[S, E], cfg Config) *Runtime[S, E] {
	if cfg.MaxEventsPerTick == 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = 16667 * time.Microsecond // 60 FPS
	}

	return &Runtime[S, E]{
		machine:    machine,
		tickRate:   cfg.TickRate,
		eventBatch: make([]QueuedEvent[E], 0, cfg.MaxEventsPerTick),
		spareBatch: make([]QueuedEvent[E], 0, cfg.MaxEventsPerTick),
	}
}

// AddFramePool registers a pool whose grabs inside a tick are scratch: at
// each tick's end the pool is released back to where it stood at the tick's
// start. Register before starting the runtime.
func (rt *Runtime[S, E]) AddFramePool(p FramePool) {
	rt.framePools = append(rt.framePools, p)
}

// Start begins the wall-clock tick goroutine.
func (rt *Runtime[S, E]) Start(ctx context.Context) error {
	if rt.stopped != nil {
		return errors.New("loop: runtime already started")
	}
	rt.tickCtx, rt.tickCancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)
	rt.stopped = make(chan struct{})

	go rt.tickLoop()
	return nil
}

// Stop halts the tick goroutine and waits for it to exit.
func (rt *Runtime[S, E]) Stop() error {
	if rt.stopped == nil {
		return nil
	}
	rt.tickCancel()
	rt.ticker.Stop()
	<-rt.stopped
	rt.stopped = nil
	return nil
}

func (rt *Runtime[S, E]) tickLoop() {
	defer close(rt.stopped)
	for {
		select {
		case <-rt.tickCtx.Done():
			return
		case <-rt.ticker.C:
			rt.Advance()
		}
	}
}

// Send queues an event for the next tick at default priority. Safe to call
// from any goroutine.
func (rt *Runtime[S, E]) Send(event E) error {
	return rt.enqueue(event, nil, 0)
}

// SendWithData queues an event with a payload for its handler.
func (rt *Runtime[S, E]) SendWithData(event E, data any) error {
	return rt.enqueue(event, data, 0)
}

// SendWithPriority queues an event processed before lower-priority events in
// the same tick.
func (rt *Runtime[S, E]) SendWithPriority(event E, data any, priority int) error {
	return rt.enqueue(event, data, priority)
}

func (rt *Runtime[S, E]) enqueue(event E, data any, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.eventBatch) >= cap(rt.eventBatch) {
		return ErrQueueFull
	}
	rt.eventBatch = append(rt.eventBatch, QueuedEvent[E]{
		Event:       event,
		Data:        data,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// Advance processes one tick synchronously: checkpoint frame pools, drain
// and order the batch, dispatch each event through the machine, then release
// the frame pools to their checkpoints. This is the whole of a tick - a
// running ticker just calls Advance on schedule.
func (rt *Runtime[S, E]) Advance() {
	rt.marks = rt.marks[:0]
	for _, p := range rt.framePools {
		rt.marks = append(rt.marks, p.Mark())
	}

	events := rt.collectEvents()
	sortEvents(events)
	for _, qe := range events {
		rt.machine.HandleEventWithData(qe.Event, qe.Data)
	}

	// Release in reverse registration order, mirroring acquisition nesting.
	for i := len(rt.framePools) - 1; i >= 0; i-- {
		if err := rt.framePools[i].FreeToMark(rt.marks[i]); err != nil {
			panic(err) // a handler freed past the frame checkpoint
		}
	}

	rt.batchMu.Lock()
	rt.tickNum++
	rt.batchMu.Unlock()
}

// collectEvents atomically swaps the live batch with the spare buffer, so a
// tick never allocates for event collection.
func (rt *Runtime[S, E]) collectEvents() []QueuedEvent[E] {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = rt.spareBatch[:0]
	rt.spareBatch = events
	return events
}

// TickNumber returns the number of completed ticks.
func (rt *Runtime[S, E]) TickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}

// CurrentState returns the machine's current state.
func (rt *Runtime[S, E]) CurrentState() S {
	return rt.machine.CurrentState()
}
