package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTruthiness(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil is falsy", NilValue, false},
		{"false is falsy", SetBool(false), false},
		{"true is truthy", SetBool(true), true},
		{"zero int is truthy", SetInt(0), true},
		{"empty string is truthy", NewStringLiteral(""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.IsTruthy())
		})
	}
}

func TestCloneReleaseRoundTrip(t *testing.T) {
	arr := NewArray(TagInt)
	require.NoError(t, arrayOf(arr).Append(SetInt(1), TagInt))
	require.EqualValues(t, 1, refcountOf(arr))

	cloned := Clone(arr)
	require.EqualValues(t, 2, refcountOf(arr))

	Release(cloned)
	require.EqualValues(t, 1, refcountOf(arr))

	Release(arr)
	require.EqualValues(t, 0, refcountOf(arr))
}

func TestAssignReleasesPrevious(t *testing.T) {
	a := NewStringDynamic("a")
	b := NewStringDynamic("b")
	var slot Value
	Assign(&slot, a)
	require.EqualValues(t, 2, refcountOf(a))
	Assign(&slot, b)
	require.EqualValues(t, 1, refcountOf(a))
	require.EqualValues(t, 2, refcountOf(b))
}
