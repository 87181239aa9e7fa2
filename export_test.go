package probemap

// Export internal counters for testing.
// This file is only compiled during tests.

// UsedForTesting returns the number of occupied plus tombstone slots.
func (m *Map[K, V]) UsedForTesting() int {
	return m.used
}

// TombstonesForTesting returns the number of tombstone slots.
func (m *Map[K, V]) TombstonesForTesting() int {
	return m.used - m.live
}
