package loop

import (
	"sort"

	"github.com/dhcoder/gamedev-experiments/fsm"
)

// QueuedEvent carries an event plus the metadata that makes tick processing
// deterministic.
type QueuedEvent[E fsm.Tag] struct {
	Event       E
	Data        any
	SequenceNum uint64
	Priority    int
}

// sortEvents orders a tick's batch: higher priority first, then submission
// order. The sort is stable so equal entries keep their relative order.
func sortEvents[E fsm.Tag](events []QueuedEvent[E]) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].SequenceNum < events[j].SequenceNum
	})
}
