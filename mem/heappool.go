package mem

import (
	"fmt"
	"unsafe"

	"github.com/dhcoder/gamedev-experiments/collect"
)

// DefaultHeapPoolCapacity is larger than the plain pool default - heap pools
// exist for pools of more than a few dozen elements.
const DefaultHeapPoolCapacity = 200

// PointerHash hashes a pointer by its address, for HeapPools whose payload
// is a *T with no better identity. The address is stable for the life of the
// item, which is all the index map needs.
func PointerHash[T any](p *T) int32 {
	addr := uintptr(unsafe.Pointer(p))
	return int32(uint32(addr>>4) ^ uint32(addr>>20))
}

// HeapPool wraps a Pool with an item-to-position index so any live item can
// be released in O(1), regardless of allocation order. A plain Pool frees
// efficiently only in reverse (stack) order; the index trades one map
// operation per grab/free for constant-time release of arbitrary items.
//
// Invariant: for every in-use item, index[item] is that item's current slot
// in the pool's in-use list. FreeAt fills the freed slot by swapping in the
// last item, so Free re-points the moved item's index entry afterwards.
//
// HeapPool is not safe for concurrent use.
type HeapPool[T comparable] struct {
	pool    *Pool[T]
	indices *collect.ArrayMap[T, *int]
}

// NewHeapPool creates a heap pool of capacity instances. hash is the item
// hash for the internal index map (use PointerHash for pointer payloads).
func NewHeapPool[T comparable](alloc func() T, reset func(T), hash func(T) int32, capacity int, opts ...PoolOption[T]) (*HeapPool[T], error) {
	pool, err := NewPool(alloc, reset, capacity, opts...)
	if err != nil {
		return nil, err
	}
	indices, err := collect.NewArrayMap[T, *int](hash, collect.WithExpectedSize(capacity))
	if err != nil {
		return nil, err
	}
	return &HeapPool[T]{pool: pool, indices: indices}, nil
}

// MakeResizable lets the underlying pool grow, doubling up to maxCapacity.
func (h *HeapPool[T]) MakeResizable(maxCapacity int) error {
	return h.pool.MakeResizable(maxCapacity)
}

// Capacity returns the number of instances the pool currently owns.
func (h *HeapPool[T]) Capacity() int { return h.pool.Capacity() }

// MaxCapacity returns the growth ceiling.
func (h *HeapPool[T]) MaxCapacity() int { return h.pool.MaxCapacity() }

// Remaining returns the number of free items.
func (h *HeapPool[T]) Remaining() int { return h.pool.Remaining() }

// ItemsInUse returns the live in-use list. Same caveats as Pool.ItemsInUse.
func (h *HeapPool[T]) ItemsInUse() []T { return h.pool.ItemsInUse() }

// GrabNew returns a pooled instance and records its position for O(1)
// release. The position box comes from the IntegerCache, so steady-state
// grab/free cycles allocate nothing.
func (h *HeapPool[T]) GrabNew() (T, error) {
	item, err := h.pool.GrabNew()
	if err != nil {
		return item, err
	}
	if err := h.indices.Put(item, IntegerFor(len(h.pool.ItemsInUse())-1)); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

// Free releases item in O(1) via its tracked position. The pool fills the
// freed slot with the formerly-last item, so that item's index entry is
// re-pointed at its new position.
func (h *HeapPool[T]) Free(item T) error {
	indexBox, err := h.indices.Get(item)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotInUse, item)
	}
	index := *indexBox

	if err := h.pool.FreeAt(index); err != nil {
		return err
	}
	h.indices.RemoveOrZero(item)

	items := h.pool.ItemsInUse()
	if len(items) > index {
		// An old item was moved to fill in the place of the removed item.
		moved := items[index]
		if err := h.indices.Replace(moved, IntegerFor(index)); err != nil {
			return err
		}
	}
	return nil
}

// Mark returns a checkpoint of the in-use list for FreeToMark.
func (h *HeapPool[T]) Mark() int {
	return h.pool.Mark()
}

// FreeToMark releases everything grabbed since the matching Mark call, in
// reverse order of acquisition.
func (h *HeapPool[T]) FreeToMark(mark int) error {
	return h.FreeCount(len(h.pool.ItemsInUse()) - mark)
}

// FreeCount releases the last count items grabbed, newest first, dropping
// their index entries as it goes.
func (h *HeapPool[T]) FreeCount(count int) error {
	items := h.pool.ItemsInUse()
	if count < 0 || count > len(items) {
		return fmt.Errorf("%w: %d of %d", ErrBadFreeCount, count, len(items))
	}
	for i := 0; i < count; i++ {
		h.indices.RemoveOrZero(items[len(items)-1-i])
	}
	return h.pool.FreeCount(count)
}

// FreeAll releases every item in use and clears the index in one sweep.
func (h *HeapPool[T]) FreeAll() error {
	if err := h.pool.FreeAll(); err != nil {
		return err
	}
	h.indices.Clear()
	return nil
}
