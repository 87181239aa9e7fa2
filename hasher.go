package probemap

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hasher computes the 64-bit digest that positions a key in the slot table.
//
// A Hasher must be deterministic and total over its key type: equal keys
// produce equal digests, and every key hashes without side effects. The map
// masks digests down to the table capacity, so hashers should spread entropy
// across the low bits. [Map.Clone] hands the same Hasher to the copy.
type Hasher[K comparable] func(K) uint64

// DefaultHasher returns a Hasher backed by [hash/maphash] with a freshly
// drawn seed.
//
// Digests are stable within one Hasher value but differ between Hashers and
// between process runs, so table layout is not reproducible across runs.
// Use [NewFunc] with a fixed function when layout must be deterministic.
func DefaultHasher[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()

	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

// StringHasher returns a Hasher for string keys backed by xxHash (XXH64).
//
// Unlike [DefaultHasher] it is unseeded: digests are reproducible across
// process runs, which makes table layout deterministic for a given insert
// sequence.
func StringHasher() Hasher[string] {
	return xxhash.Sum64String
}
