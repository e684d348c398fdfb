// Package collect provides fixed-capacity, array-backed containers for
// allocation-sensitive loops. The containers preallocate their storage up
// front and avoid per-entry heap nodes, so steady-state use does not touch
// the allocator.
package collect

import (
	"fmt"
	"math/bits"
)

// InsertMethod reports which action PutOrReplace performed.
type InsertMethod int

const (
	InsertPut InsertMethod = iota
	InsertReplace
)

func (m InsertMethod) String() string {
	if m == InsertPut {
		return "put"
	}
	return "replace"
}

type indexMethod int

const (
	indexGet indexMethod = iota
	indexPut
)

// primeTableSizes holds good hashtable primes, one per power of two of the
// requested size. See http://planetmath.org/goodhashtableprimes
var primeTableSizes = [...]int{
	3, // 2^0
	3, // 2^1
	7, // 2^2
	13, // 2^3
	23, // 2^4
	53, // 2^5
	97, // 2^6
	193, // 2^7
	389, // 2^8
	769, // 2^9
	1543, // 2^10
	3079, // 2^11
	6151, // 2^12
	12289, // 2^13
	24593, // 2^14
	49157, // 2^15
	98317, // 2^16
	196613, // 2^17
	393241, // 2^18
	786433, // 2^19
	1572869, // 2^20
	3145739, // 2^21
	6291469, // 2^22
	12582917, // 2^23
	25165843, // 2^24
	50331653, // 2^25
	100663319, // 2^26
	201326611, // 2^27
	402653189, // 2^28
	805306457, // 2^29
	1610612741, // 2^30
}

const (
	// DefaultExpectedSize is the expected entry count when none is given.
	DefaultExpectedSize = 10

	// DefaultLoadFactor is the occupancy fraction that triggers growth.
	DefaultLoadFactor = 0.75
)

// nextPrimeSize returns the prime table entry for a requested size, which is
// a prime near the next power of two at or above it.
func nextPrimeSize(requested int) (int, error) {
	idx := 0
	if requested > 1 {
		idx = bits.Len(uint(requested - 1)) // ceil(log2(requested))
	}
	if idx >= len(primeTableSizes) {
		return 0, fmt.Errorf("%w: %d", ErrTableOverflow, requested)
	}
	return primeTableSizes[idx], nil
}

// MapOption configures an ArrayMap at construction time.
type MapOption func(*mapConfig)

type mapConfig struct {
	expectedSize   int
	loadFactor     float64
	checkDuplicate bool
}

// WithExpectedSize sizes the map so it holds at least n entries before its
// first resize.
func WithExpectedSize(n int) MapOption {
	return func(c *mapConfig) {
		c.expectedSize = n
	}
}

// WithLoadFactor sets the occupancy fraction at which the map grows. A load
// factor of 0.5 means the table resizes when it is 50% full.
func WithLoadFactor(f float64) MapOption {
	return func(c *mapConfig) {
		c.loadFactor = f
	}
}

// WithDuplicateKeyCheck makes Put scan for an existing equal key and fail
// with ErrKeyExists instead of silently inserting a shadowing entry. The scan
// is O(capacity), so this is a diagnostic for tests and debug builds, not a
// steady-state mode.
func WithDuplicateKeyCheck() MapOption {
	return func(c *mapConfig) {
		c.checkDuplicate = true
	}
}

// ArrayMap is a fixed-capacity map over parallel arrays, using open
// addressing with quadratic probing. All storage is preallocated; entries
// never live in separate heap nodes. Capacity always comes from a prime size
// table and the map grows by rehashing into the next prime once its load
// factor is reached.
//
// Key equality is Go == on K; the hash function is supplied at construction
// and may return negative values.
//
// ArrayMap is not safe for concurrent use.
type ArrayMap[K comparable, V any] struct {
	hash           func(K) int32
	loadFactor     float64
	checkDuplicate bool

	size         int
	capacity     int
	resizeAtSize int

	// A slot is live (live=true), a tombstone (dead=true, left behind by a
	// removal so probe chains keep walking), or free (both false).
	keys   []K
	values []V
	live   []bool
	dead   []bool
}

// NewArrayMap creates a map keyed by hash(K) and == equality.
func NewArrayMap[K comparable, V any](hash func(K) int32, opts ...MapOption) (*ArrayMap[K, V], error) {
	cfg := mapConfig{
		expectedSize: DefaultExpectedSize,
		loadFactor:   DefaultLoadFactor,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.loadFactor <= 0.0 || cfg.loadFactor >= 1.0 {
		return nil, fmt.Errorf("%w: got %v", ErrLoadFactor, cfg.loadFactor)
	}

	capacity, err := nextPrimeSize(cfg.expectedSize)
	if err != nil {
		return nil, err
	}

	// Start large enough that the map won't resize unless more keys arrive
	// than the caller said to expect. +0.5 rounds up so the needed capacity
	// isn't truncated by 1.
	enough := int(float64(cfg.expectedSize)/cfg.loadFactor + 0.5)
	for capacity < enough {
		capacity, err = nextPrimeSize(capacity + 1)
		if err != nil {
			return nil, err
		}
	}

	m := &ArrayMap[K, V]{
		hash:           hash,
		loadFactor:     cfg.loadFactor,
		checkDuplicate: cfg.checkDuplicate,
		capacity:       capacity,
	}
	m.initStorage()
	return m, nil
}

// Size returns the number of live entries.
func (m *ArrayMap[K, V]) Size() int {
	return m.size
}

// Capacity returns the slot count. The map resizes before it fills, per its
// load factor, so don't expect to pack one completely.
func (m *ArrayMap[K, V]) Capacity() int {
	return m.capacity
}

// IsEmpty reports whether the map has no live entries.
func (m *ArrayMap[K, V]) IsEmpty() bool {
	return m.size == 0
}

// ContainsKey reports whether key has a live entry.
func (m *ArrayMap[K, V]) ContainsKey(key K) bool {
	return m.getIndex(key, indexGet) >= 0
}

// Get returns the value for key, or ErrKeyNotFound if it has no entry.
func (m *ArrayMap[K, V]) Get(key K) (V, error) {
	idx := m.getIndex(key, indexGet)
	if idx < 0 {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return m.values[idx], nil
}

// GetOrZero returns the value for key, or V's zero value if it has no entry.
// Functionally equivalent to but cheaper than ContainsKey followed by Get.
func (m *ArrayMap[K, V]) GetOrZero(key K) V {
	idx := m.getIndex(key, indexGet)
	if idx < 0 {
		var zero V
		return zero
	}
	return m.values[idx]
}

// Put inserts a new entry. It is a contract violation to put a key that is
// already present - Put does not replace, it inserts a second, shadowing
// entry whose slot leaks until the next resize. Use Replace or PutOrReplace
// when the key may exist. The violation is only detected (as ErrKeyExists)
// when the map was built with WithDuplicateKeyCheck; checking on every Put
// would cost a full scan.
func (m *ArrayMap[K, V]) Put(key K, value V) error {
	if m.checkDuplicate {
		for i := 0; i < m.capacity; i++ {
			if m.live[i] && m.keys[i] == key {
				return fmt.Errorf("%w: %v", ErrKeyExists, key)
			}
		}
	}

	m.setSlot(m.getIndex(key, indexPut), key, value)
	m.size++

	if m.size == m.resizeAtSize {
		return m.increaseCapacity()
	}
	return nil
}

// Replace updates the value of an existing entry, or returns
// ErrReplaceMissing if the key has no entry. Cheaper than Remove + Put when
// you know the key is present.
func (m *ArrayMap[K, V]) Replace(key K, value V) error {
	idx := m.getIndex(key, indexGet)
	if idx < 0 {
		return fmt.Errorf("%w: %v", ErrReplaceMissing, key)
	}
	m.setSlot(idx, key, value)
	return nil
}

// PutOrReplace inserts if the key is absent or replaces if present, and
// reports which it did. Less efficient than Put or Replace but useful when
// you simply don't know.
func (m *ArrayMap[K, V]) PutOrReplace(key K, value V) (InsertMethod, error) {
	idx := m.getIndex(key, indexGet)
	if idx >= 0 {
		m.setSlot(idx, key, value)
		return InsertReplace, nil
	}
	return InsertPut, m.Put(key, value)
}

// Remove deletes the entry for key and returns its value, or ErrKeyNotFound
// if the key has no entry.
func (m *ArrayMap[K, V]) Remove(key K) (V, error) {
	idx := m.getIndex(key, indexGet)
	if idx < 0 {
		var zero V
		return zero, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return m.removeAt(idx), nil
}

// RemoveOrZero is Remove for callers that tolerate an absent key; it returns
// V's zero value instead of failing.
func (m *ArrayMap[K, V]) RemoveOrZero(key K) V {
	idx := m.getIndex(key, indexGet)
	if idx < 0 {
		var zero V
		return zero
	}
	return m.removeAt(idx)
}

// RemoveIf removes the entry for key if one exists and reports whether it
// did.
func (m *ArrayMap[K, V]) RemoveIf(key K) bool {
	idx := m.getIndex(key, indexGet)
	if idx < 0 {
		return false
	}
	m.removeAt(idx)
	return true
}

// Keys returns a compact copy of the live keys, in storage order. This
// allocates - keep it out of per-frame paths.
func (m *ArrayMap[K, V]) Keys() []K {
	out := make([]K, 0, m.size)
	for i := 0; i < m.capacity; i++ {
		if m.live[i] {
			out = append(out, m.keys[i])
		}
	}
	return out
}

// Values returns a compact copy of the live values, in storage order. This
// allocates - keep it out of per-frame paths.
func (m *ArrayMap[K, V]) Values() []V {
	out := make([]V, 0, m.size)
	for i := 0; i < m.capacity; i++ {
		if m.live[i] {
			out = append(out, m.values[i])
		}
	}
	return out
}

// Clear removes all entries and tombstones without shrinking the table.
func (m *ArrayMap[K, V]) Clear() {
	var zeroK K
	var zeroV V
	for i := 0; i < m.capacity; i++ {
		m.keys[i] = zeroK
		m.values[i] = zeroV
		m.live[i] = false
		m.dead[i] = false
	}
	m.size = 0
}

func (m *ArrayMap[K, V]) setSlot(idx int, key K, value V) {
	m.keys[idx] = key
	m.values[idx] = value
	m.live[idx] = true
	m.dead[idx] = false
}

func (m *ArrayMap[K, V]) removeAt(idx int) V {
	value := m.values[idx]

	// Leave a tombstone so probe chains that ran through this slot still
	// find entries placed beyond it.
	var zeroK K
	var zeroV V
	m.keys[idx] = zeroK
	m.values[idx] = zeroV
	m.live[idx] = false
	m.dead[idx] = true

	m.size--
	return value
}

// getIndex resolves key to a slot. For indexGet it returns the slot of the
// live matching entry, or -1. For indexPut it returns the first reusable
// slot on the probe path (a tombstone or free slot), so it never returns -1.
//
// The probe count is bounded by capacity: in a table saturated with
// tombstones every slot is visited at most once before giving up, which is
// what guarantees termination.
func (m *ArrayMap[K, V]) getIndex(key K, method indexMethod) int {
	positiveHash := int(m.hash(key) & 0x7FFFFFFF)
	initial := positiveHash % m.capacity
	idx := initial
	loopCount := 1
	for (m.live[idx] || m.dead[idx]) && loopCount <= m.capacity {
		if method == indexPut && m.dead[idx] {
			// A bucket whose key got removed - free for reuse.
			return idx
		}
		if m.live[idx] && m.keys[idx] == key {
			return idx
		}

		idx = (initial + loopCount*loopCount) % m.capacity // Quadratic probing
		loopCount++
	}

	if method == indexPut {
		return idx
	}
	return -1
}

// increaseCapacity rehashes every live entry into the next prime-sized
// table. Tombstones are dropped in the process - this is the only way they
// are ever purged.
func (m *ArrayMap[K, V]) increaseCapacity() error {
	next, err := nextPrimeSize(m.capacity + 1)
	if err != nil {
		return err
	}

	oldCapacity := m.capacity
	oldKeys := m.keys
	oldValues := m.values
	oldLive := m.live

	m.capacity = next
	m.initStorage()

	for i := 0; i < oldCapacity; i++ {
		if oldLive[i] {
			if err := m.Put(oldKeys[i], oldValues[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *ArrayMap[K, V]) initStorage() {
	m.keys = make([]K, m.capacity)
	m.values = make([]V, m.capacity)
	m.live = make([]bool, m.capacity)
	m.dead = make([]bool, m.capacity)
	m.size = 0
	m.resizeAtSize = int(float64(m.capacity) * m.loadFactor)
}
