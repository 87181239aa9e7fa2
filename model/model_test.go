package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/probemap"
	"github.com/calvinalkan/probemap/model"
)

func Test_Model_Insert_Keeps_First_Value_When_Key_Repeated(t *testing.T) {
	t.Parallel()

	modelMap := model.New()

	require.True(t, modelMap.Insert("a", "1"), "first insert should report a new entry")
	require.False(t, modelMap.Insert("a", "2"), "second insert should be a no-op")

	value, found := modelMap.Get("a")
	require.True(t, found, "inserted key should be present")
	assert.Equal(t, "1", value, "the first value should win")
}

func Test_Model_Erase_Reports_Presence_When_Called(t *testing.T) {
	t.Parallel()

	modelMap := model.New()
	modelMap.Insert("a", "1")

	require.True(t, modelMap.Erase("a"), "erasing a present key should report removal")
	require.False(t, modelMap.Erase("a"), "erasing an absent key should be a no-op")

	assert.False(t, modelMap.Contains("a"), "erased key should be gone")
	assert.Equal(t, 0, modelMap.Len(), "length should drop to zero")
	assert.True(t, modelMap.Empty(), "model should be empty after the erase")
}

func Test_Model_At_Returns_Sentinel_When_Key_Absent(t *testing.T) {
	t.Parallel()

	modelMap := model.New()

	_, err := modelMap.At("missing")
	require.ErrorIs(t, err, probemap.ErrKeyNotFound, "At should report the shared sentinel")

	modelMap.Insert("a", "1")

	value, err := modelMap.At("a")
	require.NoError(t, err, "At should succeed for a present key")
	assert.Equal(t, "1", value)
}

func Test_Model_Ref_Inserts_Zero_Value_When_Key_Absent(t *testing.T) {
	t.Parallel()

	modelMap := model.New()

	value := modelMap.Ref("a")
	assert.Equal(t, "", value, "Ref of an absent key should read the zero value")
	assert.True(t, modelMap.Contains("a"), "Ref should have inserted the key")

	modelMap.RefSet("a", "written")

	value = modelMap.Ref("a")
	assert.Equal(t, "written", value, "Ref of a present key should read the stored value")
	assert.Equal(t, 1, modelMap.Len(), "RefSet should update in place")
}

func Test_Model_Clear_Removes_All_Entries(t *testing.T) {
	t.Parallel()

	modelMap := model.New()
	modelMap.Insert("a", "1")
	modelMap.Insert("b", "2")

	modelMap.Clear()

	assert.True(t, modelMap.Empty(), "model should be empty after Clear")
	assert.False(t, modelMap.Contains("a"), "cleared keys should be gone")

	require.True(t, modelMap.Insert("a", "3"), "a cleared key should insert as new")
}

func Test_Model_Clone_Copies_State_When_Either_Side_Mutates(t *testing.T) {
	t.Parallel()

	modelMap := model.New()
	modelMap.Insert("a", "1")
	modelMap.Insert("b", "2")

	clone := modelMap.Clone()

	diff := cmp.Diff(modelMap.Entries, clone.Entries)
	require.Empty(t, diff, "clone should start identical to the original")

	modelMap.Insert("c", "3")
	modelMap.Erase("a")

	assert.True(t, clone.Contains("a"), "mutating the original should not affect the clone")
	assert.False(t, clone.Contains("c"), "mutating the original should not affect the clone")

	clone.Insert("d", "4")
	assert.False(t, modelMap.Contains("d"), "mutating the clone should not affect the original")
}
