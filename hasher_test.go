package probemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/probemap"
)

func Test_DefaultHasher_Is_Stable_Within_An_Instance(t *testing.T) {
	t.Parallel()

	h := probemap.DefaultHasher[string]()

	for _, key := range []string{"", "a", "key-31", "longer key with spaces"} {
		assert.Equal(t, h(key), h(key), "repeated hashing of %q must agree", key)
	}
}

func Test_DefaultHasher_Instances_Use_Distinct_Seeds(t *testing.T) {
	t.Parallel()

	first := probemap.DefaultHasher[string]()
	second := probemap.DefaultHasher[string]()

	// Per-instance seeding makes collisions across instances astronomically
	// unlikely over this many keys. A shared seed would make every digest
	// pair equal.
	same := 0

	for i := range 16 {
		key := testutilKey(i)
		if first(key) == second(key) {
			same++
		}
	}

	assert.Less(t, same, 16, "independent instances must not agree on every digest")
}

func Test_DefaultHasher_Handles_Comparable_Struct_Keys(t *testing.T) {
	t.Parallel()

	type point struct{ X, Y int }

	h := probemap.DefaultHasher[point]()

	require.Equal(t, h(point{1, 2}), h(point{1, 2}), "equal keys must hash alike")

	m := probemap.New[point, string]()
	m.Insert(point{1, 2}, "origin-ish")

	v, ok := m.Get(point{1, 2})
	require.True(t, ok)
	assert.Equal(t, "origin-ish", v)
}

func Test_StringHasher_Is_Deterministic_Across_Instances(t *testing.T) {
	t.Parallel()

	first := probemap.StringHasher()
	second := probemap.StringHasher()

	for _, key := range []string{"", "a", "key-00", "key-31"} {
		assert.Equal(t, first(key), second(key),
			"string hashing must not vary between instances for %q", key)
	}
}

func Test_Map_Probes_With_Injected_Hasher(t *testing.T) {
	t.Parallel()

	calls := 0
	counting := func(k string) uint64 {
		calls++

		return uint64(len(k))
	}

	m := probemap.NewFunc[string, int](counting)
	m.Insert("a", 1)

	require.Positive(t, calls, "inserts must hash through the injected function")

	before := calls

	_, ok := m.Get("a")
	require.True(t, ok)
	assert.Greater(t, calls, before, "lookups must hash through the injected function")
}

func Test_NewFunc_Panics_When_Hasher_Nil(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		probemap.NewFunc[string, int](nil)
	})
}
