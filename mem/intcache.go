package mem

// IntegerCache is a process-wide, append-only table of preallocated boxed
// integers. Code that must pass a small non-negative int around as a pointer
// (e.g. HeapPool's position index, whose map values outlive the call that
// stored them) fetches the shared box instead of allocating a fresh one each
// time.

// DefaultIntegerCacheSize is the number of boxes preallocated at startup.
const DefaultIntegerCacheSize = 200

var preallocatedInts = newIntBoxes(DefaultIntegerCacheSize)

func newIntBoxes(n int) []*int {
	boxes := make([]*int, n)
	for i := range boxes {
		v := i
		boxes[i] = &v
	}
	return boxes
}

// IntegerFor returns the cached box holding i, extending the table when i is
// past its current bound. i must be non-negative. Boxes are shared and
// append-only - never write through the returned pointer.
func IntegerFor(i int) *int {
	if i >= len(preallocatedInts) {
		for j := len(preallocatedInts); j <= i; j++ {
			v := j
			preallocatedInts = append(preallocatedInts, &v)
		}
	}
	return preallocatedInts[i]
}
