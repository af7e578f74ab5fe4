package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayAppendFixesElementType(t *testing.T) {
	arr := arrayOf(NewArray(TagNil))
	require.NoError(t, arr.Append(SetInt(1), TagInt))
	require.NoError(t, arr.Append(SetInt(2), TagInt))
	assert.Equal(t, TagInt, arr.ElementType)

	err := arr.Append(NewStringLiteral("x"), TagString)
	assert.Error(t, err)
}

func TestArrayNegativeIndexing(t *testing.T) {
	arr := arrayOf(NewArray(TagInt))
	for i := int64(0); i < 3; i++ {
		require.NoError(t, arr.Append(SetInt(i), TagInt))
	}
	v, err := arr.At(-1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, v.Int())

	_, err = arr.At(-4)
	assert.Error(t, err)
}

func TestArrayRemoveAt(t *testing.T) {
	arr := arrayOf(NewArray(TagInt))
	for i := int64(0); i < 3; i++ {
		require.NoError(t, arr.Append(SetInt(i), TagInt))
	}
	removed, err := arr.RemoveAt(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed.Int())
	assert.Equal(t, 2, arr.Len())
	v0, _ := arr.At(0)
	v1, _ := arr.At(1)
	assert.EqualValues(t, 0, v0.Int())
	assert.EqualValues(t, 2, v1.Int())
}
