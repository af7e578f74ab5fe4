package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictSetGetMiss(t *testing.T) {
	d := dictOf(NewDict(TagString, TagInt))
	require.NoError(t, d.Set(NewStringLiteral("a"), SetInt(1), TagString, TagInt))
	require.NoError(t, d.Set(NewStringLiteral("b"), SetInt(2), TagString, TagInt))

	v, ok := d.Get(NewStringLiteral("a"))
	require.True(t, ok)
	assert.EqualValues(t, 1, v.Int())

	_, ok = d.Get(NewStringLiteral("missing"))
	assert.False(t, ok, "a dict miss must not be an error")
}

func TestDictDeleteTombstoneThenReinsert(t *testing.T) {
	d := dictOf(NewDict(TagString, TagInt))
	key := NewStringLiteral("k")
	require.NoError(t, d.Set(key, SetInt(1), TagString, TagInt))
	assert.True(t, d.Delete(key))
	assert.False(t, d.ContainsKey(key))
	assert.Equal(t, 0, d.Len())

	require.NoError(t, d.Set(key, SetInt(2), TagString, TagInt))
	v, ok := d.Get(key)
	require.True(t, ok)
	assert.EqualValues(t, 2, v.Int())
}

func TestDictGrowsPastLoadFactor(t *testing.T) {
	d := dictOf(NewDict(TagInt, TagInt))
	for i := int64(0); i < 100; i++ {
		require.NoError(t, d.Set(SetInt(i), SetInt(i*2), TagInt, TagInt))
	}
	assert.Equal(t, 100, d.Len())
	for i := int64(0); i < 100; i++ {
		v, ok := d.Get(SetInt(i))
		require.True(t, ok)
		assert.EqualValues(t, i*2, v.Int())
	}
}
