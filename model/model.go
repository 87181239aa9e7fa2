// Package model provides a deliberately simple, in-memory state model of
// probemap's publicly observable behavior.
//
// The model is intentionally easy to audit: it tracks the key/value mapping
// and operation results on top of a builtin map. Slot layout, capacity
// transitions, and enumeration order depend on the hash function and the
// mutation history, so they are out of scope; differential tests compare
// enumeration as a set.
package model

import "github.com/calvinalkan/probemap"

// Map models a probemap.Map[string, string].
type Map struct {
	Entries map[string]string
}

// New returns an empty model.
func New() *Map {
	return &Map{Entries: map[string]string{}}
}

// Clone makes a deep copy so metamorphic tests can fork the exact same
// state and drive both forks independently.
func (m *Map) Clone() *Map {
	c := New()
	for k, v := range m.Entries {
		c.Entries[k] = v
	}

	return c
}

// Insert stores value under key unless the key is already present, and
// reports whether a new entry was stored.
func (m *Map) Insert(key, value string) bool {
	if _, ok := m.Entries[key]; ok {
		return false
	}

	m.Entries[key] = value

	return true
}

// Erase removes key's entry and reports whether one existed.
func (m *Map) Erase(key string) bool {
	if _, ok := m.Entries[key]; !ok {
		return false
	}

	delete(m.Entries, key)

	return true
}

// Get returns the value stored under key, if any.
func (m *Map) Get(key string) (string, bool) {
	v, ok := m.Entries[key]

	return v, ok
}

// Contains reports whether key is present.
func (m *Map) Contains(key string) bool {
	_, ok := m.Entries[key]

	return ok
}

// At returns the value stored under key, or probemap's sentinel when the
// key is absent.
func (m *Map) At(key string) (string, error) {
	v, ok := m.Entries[key]
	if !ok {
		return "", probemap.ErrKeyNotFound
	}

	return v, nil
}

// Ref inserts the zero value when key is absent and returns the value now
// stored, mirroring a read of *Map.Ref(key).
func (m *Map) Ref(key string) string {
	if _, ok := m.Entries[key]; !ok {
		m.Entries[key] = ""
	}

	return m.Entries[key]
}

// RefSet stores value under key unconditionally, mirroring a write through
// *Map.Ref(key).
func (m *Map) RefSet(key, value string) {
	m.Entries[key] = value
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.Entries)
}

// Empty reports whether the model holds no entries.
func (m *Map) Empty() bool {
	return len(m.Entries) == 0
}

// Clear removes every entry.
func (m *Map) Clear() {
	m.Entries = map[string]string{}
}
