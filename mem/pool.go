// Package mem provides preallocated object pools for code that must not
// allocate inside its hot loop, e.g. a per-frame game update. Instances are
// allocated once up front, handed out with GrabNew, and recycled with Free -
// "destruction" is a logical reset back to a baseline state, never a
// deallocation.
package mem

import "fmt"

// DefaultPoolCapacity is the pool capacity when callers have no better
// estimate.
const DefaultPoolCapacity = 10

// Resettable is the one contract pooled payload types must meet: restore
// yourself to a canonical, reusable baseline.
type Resettable interface {
	Reset()
}

// PoolOption configures a Pool at construction time.
type PoolOption[T comparable] func(*Pool[T])

// WithSanityCheck allocates one extra, never-used reference instance and
// compares every freed item against it with equal after reset. A mismatch
// surfaces as ErrResetIncomplete from the freeing call, pointing at an
// incomplete reset function. Debug aid, not a steady-state mode.
func WithSanityCheck[T comparable](equal func(a, b T) bool) PoolOption[T] {
	return func(p *Pool[T]) {
		p.equal = equal
	}
}

// Pool hands out and reclaims preallocated instances of T without touching
// the allocator. The free list is a LIFO stack, so a Pool suits small pools
// and stack-disciplined temporaries (grab a few, free in reverse order). Use
// HeapPool for larger pools with arbitrary-order release.
//
// Once GrabNew returns an item the caller owns it until Free; holding the
// reference past Free and continuing to use it is a use-after-free class bug
// (the slot recycles and may already belong to another call site). The
// sanity check helps surface such bugs but can't fully prevent them.
//
// Pool is not safe for concurrent use.
type Pool[T comparable] struct {
	alloc func() T
	reset func(T)
	equal func(a, b T) bool

	free      []T
	inUse     []T
	reference T

	resizable   bool
	capacity    int
	maxCapacity int
}

// NewPool creates a pool of capacity instances, allocating all of them now.
func NewPool[T comparable](alloc func() T, reset func(T), capacity int, opts ...PoolOption[T]) (*Pool[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadCapacity, capacity)
	}

	p := &Pool[T]{
		alloc:       alloc,
		reset:       reset,
		capacity:    capacity,
		maxCapacity: capacity,
		free:        make([]T, 0, capacity),
		inUse:       make([]T, 0, capacity),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < capacity; i++ {
		p.free = append(p.free, alloc())
	}
	if p.equal != nil {
		p.reference = alloc() // one extra, pristine instance to compare against
	}
	return p, nil
}

// NewPoolOf creates a pool of Resettable instances, wiring the reset
// function to the type's own Reset method.
func NewPoolOf[T interface {
	comparable
	Resettable
}](alloc func() T, capacity int, opts ...PoolOption[T]) (*Pool[T], error) {
	return NewPool(alloc, func(item T) { item.Reset() }, capacity, opts...)
}

// MakeResizable lets the pool grow (doubling, capped at maxCapacity) when
// GrabNew finds the free list empty.
func (p *Pool[T]) MakeResizable(maxCapacity int) error {
	if maxCapacity < p.capacity {
		return fmt.Errorf("%w: max %d, current %d", ErrShrinkMax, maxCapacity, p.capacity)
	}
	p.resizable = true
	p.maxCapacity = maxCapacity
	return nil
}

// Capacity returns the number of instances the pool currently owns.
func (p *Pool[T]) Capacity() int { return p.capacity }

// MaxCapacity returns the growth ceiling (equal to Capacity when the pool is
// not resizable).
func (p *Pool[T]) MaxCapacity() int { return p.maxCapacity }

// Remaining returns the number of free items.
func (p *Pool[T]) Remaining() int { return len(p.free) }

// ItemsInUse returns the live in-use list. It is a view, not a copy - don't
// modify it, and expect order to change on Free (swap-and-truncate).
func (p *Pool[T]) ItemsInUse() []T { return p.inUse }

// GrabNew moves one instance from the free list to the in-use list and
// returns it. If the free list is empty, a resizable pool under its max
// grows first; otherwise GrabNew fails with ErrPoolExhausted.
func (p *Pool[T]) GrabNew() (T, error) {
	if len(p.free) == 0 {
		if !p.resizable || p.capacity == p.maxCapacity {
			var zero T
			return zero, fmt.Errorf(
				"%w (capacity: %d) - are you forgetting to free some?", ErrPoolExhausted, p.capacity)
		}

		newCapacity := p.capacity * 2
		if newCapacity > p.maxCapacity {
			newCapacity = p.maxCapacity
		}
		for i := p.capacity; i < newCapacity; i++ {
			p.free = append(p.free, p.alloc())
		}
		p.capacity = newCapacity
	}

	item := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.inUse = append(p.inUse, item)
	return item, nil
}

// Mark returns a checkpoint of the in-use list for FreeToMark.
func (p *Pool[T]) Mark() int {
	return len(p.inUse)
}

// FreeToMark releases everything grabbed since the matching Mark call, in
// reverse order of acquisition.
func (p *Pool[T]) FreeToMark(mark int) error {
	return p.FreeCount(len(p.inUse) - mark)
}

// FreeCount releases the last count items added to the in-use list, newest
// first. This is the classic arena/stack release: grab several temporaries,
// then drop them all with one call.
func (p *Pool[T]) FreeCount(count int) error {
	if count < 0 || count > len(p.inUse) {
		return fmt.Errorf("%w: %d of %d", ErrBadFreeCount, count, len(p.inUse))
	}
	for i := 0; i < count; i++ {
		last := len(p.inUse) - 1
		item := p.inUse[last]
		p.truncateInUse(last)
		if err := p.returnToPool(item); err != nil {
			return err
		}
	}
	return nil
}

// FreeAll releases every item in use.
func (p *Pool[T]) FreeAll() error {
	return p.FreeCount(len(p.inUse))
}

// Free releases item back to the pool. The in-use list is searched from the
// end (recently grabbed items free soonest) and the hole is filled by
// swapping the last item in - O(1) removal, order not preserved.
func (p *Pool[T]) Free(item T) error {
	for i := len(p.inUse) - 1; i >= 0; i-- {
		if p.inUse[i] == item {
			return p.FreeAt(i)
		}
	}
	return fmt.Errorf("%w: %v", ErrNotInUse, item)
}

// FreeAt releases the item at the given in-use position, skipping Free's
// linear search when the caller already tracks positions (see HeapPool).
func (p *Pool[T]) FreeAt(index int) error {
	if index < 0 || index >= len(p.inUse) {
		return fmt.Errorf("%w: index %d of %d", ErrNotInUse, index, len(p.inUse))
	}

	item := p.inUse[index]
	last := len(p.inUse) - 1
	p.inUse[index] = p.inUse[last]
	p.truncateInUse(last)
	return p.returnToPool(item)
}

func (p *Pool[T]) truncateInUse(last int) {
	var zero T
	p.inUse[last] = zero
	p.inUse = p.inUse[:last]
}

func (p *Pool[T]) returnToPool(item T) error {
	p.reset(item)
	p.free = append(p.free, item)
	if p.equal != nil && !p.equal(p.reference, item) {
		return fmt.Errorf("%w: %v", ErrResetIncomplete, item)
	}
	return nil
}
