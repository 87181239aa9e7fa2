package probemap

import (
	"fmt"
	"iter"
)

// Capacity and resize policy.
const (
	// MinCapacity is the smallest slot table the map allocates. Capacities
	// are always powers of two; shrinking never goes below MinCapacity.
	MinCapacity = 8

	// maxLoadFactor bounds occupancy. An insert that would push the live
	// count above maxLoadFactor*capacity doubles the table first.
	maxLoadFactor = 0.75

	// maxTombstoneRatio bounds slot waste. When used > maxTombstoneRatio*live,
	// tombstones dominate and the table is rebuilt at half its capacity.
	maxTombstoneRatio = 2
)

// slotState tags the lifecycle of a table slot.
type slotState uint8

const (
	// slotEmpty marks a slot never written since the last rebuild.
	// Probe walks stop here.
	slotEmpty slotState = iota

	// slotOccupied marks a slot holding a live entry.
	slotOccupied

	// slotTombstone marks a slot whose entry was erased. Probe walks
	// continue past it; inserts may reclaim it.
	slotTombstone
)

// slot is one cell of the open-addressing table.
type slot[K comparable, V any] struct {
	state slotState
	key   K
	value V
}

// Pair is a key/value pair, accepted by [FromPairs].
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is a hash map with open addressing, linear probing, and lazy
// (tombstone) deletion. The slot for a key is (hash(key)+i) mod capacity
// for i = 0, 1, 2, ...; erased slots become tombstones that later inserts
// reclaim; the table doubles when load exceeds maxLoadFactor and halves
// when tombstones outnumber live entries maxTombstoneRatio-fold.
//
// The zero Map is an empty map with the default hasher. Copying a Map by
// assignment aliases its table; use [Map.Clone] for an independent copy.
//
// A Map is not safe for concurrent use. See the package documentation.
type Map[K comparable, V any] struct {
	hash  Hasher[K]
	slots []slot[K, V]
	live  int // occupied slots; Len()
	used  int // occupied plus tombstone slots
}

// New returns an empty map that hashes keys with [DefaultHasher].
func New[K comparable, V any]() *Map[K, V] {
	return NewFunc[K, V](DefaultHasher[K]())
}

// NewFunc returns an empty map that hashes keys with fn.
//
// fn must be deterministic for the lifetime of the map: equal keys must
// always produce equal digests. Panics if fn is nil.
func NewFunc[K comparable, V any](fn Hasher[K]) *Map[K, V] {
	if fn == nil {
		panic("probemap: nil hasher")
	}

	m := &Map[K, V]{hash: fn}
	m.reset(MinCapacity)

	return m
}

// FromPairs returns a map holding the given pairs. When a key appears more
// than once the first occurrence wins, matching [Map.Insert] semantics.
func FromPairs[K comparable, V any](pairs ...Pair[K, V]) *Map[K, V] {
	m := New[K, V]()
	for _, p := range pairs {
		m.Insert(p.Key, p.Value)
	}

	return m
}

// Collect returns a map holding the entries of seq. When a key appears more
// than once the first occurrence wins.
func Collect[K comparable, V any](seq iter.Seq2[K, V]) *Map[K, V] {
	m := New[K, V]()
	for k, v := range seq {
		m.Insert(k, v)
	}

	return m
}

// Insert stores value under key. When the key already has a live entry the
// call leaves the existing value in place and reports false.
//
// The capacity checks run before probing on every call, even one that turns
// out to be a no-op, so an insert of a present key can still resize the
// table. The probe walk remembers the first tombstone it passes and prefers
// it over the terminating empty slot, so erased slots are reclaimed.
func (m *Map[K, V]) Insert(key K, value V) bool {
	m.lazyInit()
	m.maybeGrow()
	m.maybeShrink()

	pos, existing := m.findInsertSlot(key)
	if existing {
		return false
	}

	s := &m.slots[pos]
	if s.state == slotEmpty {
		m.used++
	}

	s.state = slotOccupied
	s.key = key
	s.value = value
	m.live++

	return true
}

// Erase removes key's entry, leaving a tombstone in its slot, and reports
// whether an entry was removed. Erasing an absent key is a no-op.
func (m *Map[K, V]) Erase(key K) bool {
	pos := m.lookup(key)
	if pos < 0 {
		return false
	}

	// Drop the pair so erased keys and values are collectable.
	m.slots[pos] = slot[K, V]{state: slotTombstone}
	m.live--

	m.maybeShrink()

	return true
}

// Get returns the value stored under key and whether a live entry exists.
func (m *Map[K, V]) Get(key K) (V, bool) {
	pos := m.lookup(key)
	if pos < 0 {
		var zero V

		return zero, false
	}

	return m.slots[pos].value, true
}

// Contains reports whether key has a live entry.
func (m *Map[K, V]) Contains(key K) bool {
	return m.lookup(key) >= 0
}

// At returns the value stored under key.
//
// Possible errors: [ErrKeyNotFound].
func (m *Map[K, V]) At(key K) (V, error) {
	pos := m.lookup(key)
	if pos < 0 {
		var zero V

		return zero, fmt.Errorf("at %v: %w", key, ErrKeyNotFound)
	}

	return m.slots[pos].value, nil
}

// Ref returns a pointer to the value stored under key, inserting the zero
// value first when the key is absent. Writes through the pointer update the
// entry in place:
//
//	*m.Ref("hits")++
//
// The insert runs with full [Map.Insert] semantics, capacity checks
// included. The pointer stays valid until the next capacity change; after a
// resize it refers to the retired table and writes through it are lost.
func (m *Map[K, V]) Ref(key K) *V {
	var zero V

	m.Insert(key, zero)

	return &m.slots[m.lookup(key)].value
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int {
	return m.live
}

// Empty reports whether the map has no live entries.
func (m *Map[K, V]) Empty() bool {
	return m.live == 0
}

// Cap returns the current slot-table capacity. A zero Map that has never
// been written reports 0.
func (m *Map[K, V]) Cap() int {
	return len(m.slots)
}

// HashFunc returns the hash function the map probes with.
func (m *Map[K, V]) HashFunc() Hasher[K] {
	m.ensureHasher()

	return m.hash
}

// Clear discards every entry and resets the table to MinCapacity.
// Outstanding cursors keep walking the discarded table.
func (m *Map[K, V]) Clear() {
	m.ensureHasher()
	m.reset(MinCapacity)
}

// Clone returns an independent copy built by reinserting every live entry
// in table order. The copy hashes with the same function as the source, so
// shared keys land in the same relative layout, and it starts with no
// tombstones. Later mutation of either map never affects the other.
func (m *Map[K, V]) Clone() *Map[K, V] {
	m.ensureHasher()

	c := NewFunc[K, V](m.hash)
	for i := range m.slots {
		if m.slots[i].state != slotOccupied {
			continue
		}

		c.Insert(m.slots[i].key, m.slots[i].value)
	}

	return c
}

// ensureHasher installs the default hasher on a zero Map.
func (m *Map[K, V]) ensureHasher() {
	if m.hash == nil {
		m.hash = DefaultHasher[K]()
	}
}

// lazyInit makes a zero Map ready for its first write.
func (m *Map[K, V]) lazyInit() {
	m.ensureHasher()

	if m.slots == nil {
		m.reset(MinCapacity)
	}
}

// reset installs a fresh all-empty table of the given capacity.
func (m *Map[K, V]) reset(capacity int) {
	m.slots = make([]slot[K, V], capacity)
	m.live = 0
	m.used = 0
}

// lookup walks key's probe sequence and returns the position of its live
// entry, or -1. The walk stops at the first empty slot; it is capped at one
// full pass so tables with no empty slot (possible at MinCapacity, where
// shrinking is suppressed and tombstones can fill every slot) terminate.
func (m *Map[K, V]) lookup(key K) int {
	if len(m.slots) == 0 {
		return -1
	}

	mask := uint64(len(m.slots) - 1)
	h := m.hash(key)

	for i := range len(m.slots) {
		pos := int((h + uint64(i)) & mask)
		s := &m.slots[pos]

		if s.state == slotEmpty {
			return -1
		}

		if s.state == slotOccupied && s.key == key {
			return pos
		}

		// Tombstone or other key: keep probing.
	}

	return -1
}

// findInsertSlot returns the slot where key must be stored. When the key
// already has a live entry its position is returned with existing=true.
// Otherwise the walk runs to the terminating empty slot and the first
// tombstone passed on the way, if any, is preferred over it.
//
// The walk never stops early at a tombstone: the key may still live further
// down the chain, and stopping would store a duplicate.
func (m *Map[K, V]) findInsertSlot(key K) (pos int, existing bool) {
	mask := uint64(len(m.slots) - 1)
	h := m.hash(key)
	tombstone := -1

	for i := range len(m.slots) {
		cand := int((h + uint64(i)) & mask)
		s := &m.slots[cand]

		if s.state == slotEmpty {
			if tombstone >= 0 {
				return tombstone, false
			}

			return cand, false
		}

		if s.state == slotOccupied && s.key == key {
			return cand, true
		}

		if s.state == slotTombstone && tombstone < 0 {
			tombstone = cand
		}
	}

	if tombstone < 0 {
		// A full pass saw neither an empty slot, a tombstone, nor the key.
		// The grow check keeps live below capacity, so a full table always
		// contains tombstones.
		panic("probemap: slot table has no free slot")
	}

	return tombstone, false
}

// maybeGrow doubles the table when one more live entry would push occupancy
// past maxLoadFactor.
func (m *Map[K, V]) maybeGrow() {
	if float64(m.live+1) > maxLoadFactor*float64(len(m.slots)) {
		m.rebuild(len(m.slots) * 2)
	}
}

// maybeShrink halves the table when tombstones dominate. At MinCapacity the
// check is a no-op, so small tables accumulate tombstones instead of
// thrashing.
func (m *Map[K, V]) maybeShrink() {
	if len(m.slots) <= MinCapacity {
		return
	}

	if m.used > maxTombstoneRatio*m.live {
		m.rebuild(len(m.slots) / 2)
	}
}

// rebuild moves every live entry into a fresh table of the given capacity.
// Tombstones are dropped, so used == live afterward. The old table is left
// intact for any outstanding cursors.
func (m *Map[K, V]) rebuild(capacity int) {
	old := m.slots
	m.reset(capacity)

	for i := range old {
		if old[i].state != slotOccupied {
			continue
		}

		pos, _ := m.findInsertSlot(old[i].key)
		m.slots[pos] = slot[K, V]{state: slotOccupied, key: old[i].key, value: old[i].value}
		m.live++
		m.used++
	}
}
