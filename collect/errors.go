package collect

import "errors"

var (
	// ErrKeyNotFound indicates a Get or Remove on a key that is not in the map.
	ErrKeyNotFound = errors.New("collect: no value associated with key")

	// ErrKeyExists indicates a Put of a key that is already present. Only
	// reported when the map was built with WithDuplicateKeyCheck.
	ErrKeyExists = errors.New("collect: key already present")

	// ErrReplaceMissing indicates a Replace on a key that is not in the map.
	ErrReplaceMissing = errors.New("collect: replace requires an existing key")

	// ErrLoadFactor indicates a load factor outside the open interval (0, 1).
	ErrLoadFactor = errors.New("collect: load factor must be between 0 and 1")

	// ErrTableOverflow indicates a capacity request beyond the largest entry
	// in the prime size table.
	ErrTableOverflow = errors.New("collect: table can't grow big enough to accommodate requested size")
)
