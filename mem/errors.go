package mem

import "errors"

var (
	// ErrPoolExhausted indicates GrabNew on a pool with no free items and no
	// room to grow. The usual cause is a caller forgetting to free.
	ErrPoolExhausted = errors.New("mem: pool capacity exceeded")

	// ErrBadCapacity indicates a non-positive initial capacity.
	ErrBadCapacity = errors.New("mem: invalid pool capacity")

	// ErrShrinkMax indicates a MakeResizable max capacity below the pool's
	// current capacity.
	ErrShrinkMax = errors.New("mem: max capacity smaller than current capacity")

	// ErrNotInUse indicates a Free of an item or index the pool has not
	// handed out.
	ErrNotInUse = errors.New("mem: item is not in use")

	// ErrBadFreeCount indicates a FreeCount or FreeToMark beyond the number
	// of items in use.
	ErrBadFreeCount = errors.New("mem: free count exceeds items in use")

	// ErrResetIncomplete indicates the sanity check found a freed item whose
	// state differs from a pristine instance - the reset function is missing
	// a field.
	ErrResetIncomplete = errors.New("mem: freed item does not match reference instance")
)
