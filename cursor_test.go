package probemap_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/probemap"
)

func Test_Cursor_Yields_Every_Live_Entry_When_Walked(t *testing.T) {
	t.Parallel()

	m := probemap.New[string, int]()
	want := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}

	for k, v := range want {
		m.Insert(k, v)
	}

	got := map[string]int{}
	for c := m.Cursor(); c.Next(); {
		k, v := c.Pair()
		got[k] = v
	}

	assert.Empty(t, cmp.Diff(want, got), "cursor walk must yield exactly the live entries")
}

func Test_Cursor_Skips_Erased_Entry_When_Advanced_Past_It(t *testing.T) {
	t.Parallel()

	// Identity hashing pins 1, 2, 3 to slots 1, 2, 3, so the walk order is
	// known and the erase happens under a cursor parked before the victim.
	m := probemap.NewFunc[int, string](identityHasher)
	m.Insert(1, "a")
	m.Insert(2, "b")
	m.Insert(3, "c")

	c := m.Cursor()

	require.True(t, c.Next())
	require.Equal(t, 1, c.Key())

	m.Erase(2)

	require.True(t, c.Next(), "cursor must advance past the tombstone")
	assert.Equal(t, 3, c.Key(), "the erased entry is silently skipped")
	assert.Equal(t, "c", c.Value())

	assert.False(t, c.Next(), "no further entries remain")
	assert.False(t, c.Valid())
}

func Test_Cursor_Enumerates_Expected_Set_After_Erase(t *testing.T) {
	t.Parallel()

	m := probemap.NewFunc[int, string](identityHasher)
	m.Insert(1, "a")
	m.Insert(2, "b")
	m.Insert(3, "c")

	m.Erase(2)

	got := map[int]string{}
	for k, v := range m.All() {
		got[k] = v
	}

	want := map[int]string{1: "a", 3: "c"}
	assert.Empty(t, cmp.Diff(want, got), "enumeration must hold exactly the surviving entries")
}

func Test_Map_Find_Positions_Cursor_On_Entry_When_Key_Live(t *testing.T) {
	t.Parallel()

	m := probemap.New[string, int]()
	m.Insert("x", 10)
	m.Insert("y", 20)

	c := m.Find("y")

	require.True(t, c.Valid(), "Find of a live key returns a valid cursor")
	assert.Equal(t, "y", c.Key())
	assert.Equal(t, 20, c.Value())

	k, v := c.Pair()
	assert.Equal(t, "y", k)
	assert.Equal(t, 20, v)
}

func Test_Map_Find_Returns_End_Cursor_When_Key_Absent(t *testing.T) {
	t.Parallel()

	m := probemap.New[string, int]()
	m.Insert("x", 10)

	miss := m.Find("missing")
	assert.False(t, miss.Valid(), "Find of an absent key returns the end sentinel")

	// Exhausting a walk lands on the same end sentinel.
	end := m.Cursor()
	for end.Next() {
	}

	assert.True(t, miss.Equal(end), "the find miss and an exhausted walk are the same cursor")
}

func Test_Cursor_Equal_Compares_Position_And_Table(t *testing.T) {
	t.Parallel()

	m := probemap.New[string, int]()
	m.Insert("a", 1)

	first := m.Find("a")
	second := m.Find("a")
	assert.True(t, first.Equal(second), "two cursors on the same slot of the same table are equal")
	assert.True(t, second.Equal(first), "cursor equality is symmetric")

	other := probemap.New[string, int]()
	other.Insert("a", 1)

	assert.False(t, first.Equal(other.Find("a")), "cursors over different maps are never equal")
}

func Test_Cursor_Equal_Is_False_When_Table_Rebuilt_Between_Cursors(t *testing.T) {
	t.Parallel()

	m := probemap.New[int, int]()
	m.Insert(1, 1)

	before := m.Find(1)

	// Force a growth rebuild.
	for i := 2; i <= 10; i++ {
		m.Insert(i, i)
	}

	require.Greater(t, m.Cap(), probemap.MinCapacity)

	after := m.Find(1)

	assert.False(t, before.Equal(after), "a rebuild retires the table, so the cursors differ")
	assert.True(t, before.Valid(), "the old cursor still reads its own table")
	assert.Equal(t, 1, before.Value())
}

func Test_Cursor_Walks_Old_Table_When_Map_Rebuilt_Mid_Iteration(t *testing.T) {
	t.Parallel()

	// Six entries sit exactly at the growth threshold, so the next insert
	// rebuilds before it places its key and the borrowed table never gains
	// an entry the snapshot lacks.
	m := probemap.New[int, int]()
	for i := range 6 {
		m.Insert(i, i)
	}

	snapshot := map[int]int{}
	for k, v := range m.All() {
		snapshot[k] = v
	}

	c := m.Cursor()
	require.True(t, c.Next())

	seen := map[int]int{c.Key(): c.Value()}

	// Trigger a growth rebuild behind the cursor's back.
	for i := 100; i < 120; i++ {
		m.Insert(i, i)
	}

	require.Greater(t, m.Cap(), probemap.MinCapacity)

	for c.Next() {
		seen[c.Key()] = c.Value()
	}

	assert.Empty(t, cmp.Diff(snapshot, seen),
		"a cursor keeps walking the table it borrowed and never sees rebuilt slots")
}

func Test_Cursor_SetValue_Updates_Entry_When_Table_Current(t *testing.T) {
	t.Parallel()

	m := probemap.New[string, int]()
	m.Insert("k", 1)

	c := m.Find("k")
	require.True(t, c.Valid())

	c.SetValue(99)

	v, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, 99, v, "SetValue on a current cursor must be visible through the map")
	assert.Equal(t, 99, c.Value())
}

func Test_Cursor_Accessors_Panic_When_Cursor_Invalid(t *testing.T) {
	t.Parallel()

	m := probemap.New[string, int]()
	m.Insert("k", 1)

	end := m.Find("missing")
	require.False(t, end.Valid())

	assert.Panics(t, func() { end.Key() }, "Key on an invalid cursor panics")
	assert.Panics(t, func() { end.Value() }, "Value on an invalid cursor panics")
	assert.Panics(t, func() { _, _ = end.Pair() }, "Pair on an invalid cursor panics")
	assert.Panics(t, func() { end.SetValue(2) }, "SetValue on an invalid cursor panics")

	fresh := m.Cursor()
	assert.Panics(t, func() { fresh.Key() }, "a cursor before the first entry is not readable yet")
}

func Test_Map_All_Stops_When_Yield_Returns_False(t *testing.T) {
	t.Parallel()

	m := probemap.New[int, int]()
	for i := range 10 {
		m.Insert(i, i)
	}

	seen := 0

	for range m.All() {
		seen++
		if seen == 3 {
			break
		}
	}

	assert.Equal(t, 3, seen, "breaking the range loop stops the walk early")
}

func Test_Map_Keys_And_Values_Align_When_Iterated(t *testing.T) {
	t.Parallel()

	m := probemap.New[string, int]()
	m.Insert("a", 1)
	m.Insert("b", 2)
	m.Insert("c", 3)

	var keys []string
	for k := range m.Keys() {
		keys = append(keys, k)
	}

	var values []int
	for v := range m.Values() {
		values = append(values, v)
	}

	require.Len(t, keys, 3)
	require.Len(t, values, 3)

	// Keys and Values walk the same table order, so position i of both
	// sequences belongs to the same entry.
	for i, k := range keys {
		want, ok := m.Get(k)
		require.True(t, ok)
		assert.Equal(t, want, values[i], "Keys and Values must stay aligned at position %d", i)
	}
}
