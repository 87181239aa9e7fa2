package probemap

import "iter"

// Cursor enumerates a map's live entries in table (slot index) order.
//
// A cursor borrows the slot table it was created over. A rebuild (growth,
// shrink, [Map.Clear]) installs a fresh table in the map, so cursors taken
// earlier keep walking the retired table and never observe the new one.
// Non-resizing mutation is visible through an outstanding cursor: an entry
// erased under the cursor is skipped on the next advance, and an entry
// inserted ahead of it is yielded.
//
// The zero Cursor is exhausted.
type Cursor[K comparable, V any] struct {
	table []slot[K, V]
	pos   int
}

// Cursor returns a cursor positioned before the first entry. Advance it
// with [Cursor.Next]:
//
//	for c := m.Cursor(); c.Next(); {
//	    fmt.Println(c.Key(), c.Value())
//	}
func (m *Map[K, V]) Cursor() Cursor[K, V] {
	return Cursor[K, V]{table: m.slots, pos: -1}
}

// Find returns a cursor positioned at key's live entry, or an exhausted
// cursor when the key is absent. Check [Cursor.Valid] before reading.
func (m *Map[K, V]) Find(key K) Cursor[K, V] {
	pos := m.lookup(key)
	if pos < 0 {
		return Cursor[K, V]{table: m.slots, pos: len(m.slots)}
	}

	return Cursor[K, V]{table: m.slots, pos: pos}
}

// All returns an iterator over the map's entries in table order. The
// underlying table is captured when iteration begins.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for c := m.Cursor(); c.Next(); {
			if !yield(c.Key(), c.Value()) {
				return
			}
		}
	}
}

// Keys returns an iterator over the map's keys in table order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for c := m.Cursor(); c.Next(); {
			if !yield(c.Key()) {
				return
			}
		}
	}
}

// Values returns an iterator over the map's values in table order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for c := m.Cursor(); c.Next(); {
			if !yield(c.Value()) {
				return
			}
		}
	}
}

// Next advances to the next live entry, skipping empty and tombstone slots,
// and reports whether one was found. Once Next returns false the cursor is
// exhausted and stays so.
func (c *Cursor[K, V]) Next() bool {
	for c.pos < len(c.table) {
		c.pos++

		if c.pos < len(c.table) && c.table[c.pos].state == slotOccupied {
			return true
		}
	}

	return false
}

// Valid reports whether the cursor is positioned on a live entry.
func (c Cursor[K, V]) Valid() bool {
	return c.pos >= 0 && c.pos < len(c.table) && c.table[c.pos].state == slotOccupied
}

// Key returns the key at the cursor. Panics if the cursor is not valid.
func (c Cursor[K, V]) Key() K {
	if !c.Valid() {
		panic("probemap: Key on invalid cursor")
	}

	return c.table[c.pos].key
}

// Value returns the value at the cursor. Panics if the cursor is not valid.
func (c Cursor[K, V]) Value() V {
	if !c.Valid() {
		panic("probemap: Value on invalid cursor")
	}

	return c.table[c.pos].value
}

// Pair returns the entry at the cursor. Panics if the cursor is not valid.
func (c Cursor[K, V]) Pair() (K, V) {
	if !c.Valid() {
		panic("probemap: Pair on invalid cursor")
	}

	return c.table[c.pos].key, c.table[c.pos].value
}

// SetValue replaces the value at the cursor. Keys cannot be modified
// through a cursor. Panics if the cursor is not valid.
//
// The write lands in the table the cursor borrowed; after a rebuild that is
// no longer the map's table and the write is lost.
func (c Cursor[K, V]) SetValue(v V) {
	if !c.Valid() {
		panic("probemap: SetValue on invalid cursor")
	}

	c.table[c.pos].value = v
}

// Equal reports whether both cursors sit at the same position of the same
// table instance. Cursors over different maps never compare equal, and a
// rebuild retires the table, so cursors taken before and after it differ
// even at the same numeric position.
func (c Cursor[K, V]) Equal(other Cursor[K, V]) bool {
	return c.pos == other.pos && c.sameTable(other)
}

// sameTable reports whether both cursors borrow the same slot slice.
// Tables are never zero-length (capacity is at least MinCapacity) except
// for cursors from an unwritten zero Map, which all compare as one table.
func (c Cursor[K, V]) sameTable(other Cursor[K, V]) bool {
	if len(c.table) == 0 || len(other.table) == 0 {
		return len(c.table) == len(other.table)
	}

	return &c.table[0] == &other.table[0]
}
