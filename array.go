package bread

import (
	"fmt"
	"strings"
)

// ArrayObj is the growable, tagged-element heap array from spec §3.
// Its element type tag is fixed either at construction or by the
// first append; subsequent appends of a different tag are rejected.
type ArrayObj struct {
	heapHeader
	ElementType ValueTag
	Elements    []Value
}

// NewArray constructs an empty array; its element type tag is Nil
// (uninitialized) until either a construction-time type or the first
// append fixes it.
func NewArray(elementType ValueTag) Value {
	obj := &ArrayObj{
		heapHeader:  heapHeader{Kind: TagArray, Refcount: 1},
		ElementType: elementType,
	}
	globalMemoryTracker.track(obj, 0)
	return Value{Tag: TagArray, heap: obj}
}

func arrayOf(v Value) *ArrayObj {
	if v.Tag != TagArray {
		return nil
	}
	a, _ := v.heap.(*ArrayObj)
	return a
}

// Append adds v to the array, fixing the element type tag on first
// append (invariant 2, spec §3); a mismatched tag on a fixed array is
// a type error.
func (a *ArrayObj) Append(v Value, tag ValueTag) error {
	if a.ElementType == TagNil && len(a.Elements) == 0 {
		a.ElementType = tag
	} else if a.ElementType != tag {
		return fmt.Errorf("cannot append %s to array of %s", tag, a.ElementType)
	}
	a.Elements = append(a.Elements, Clone(v))
	return nil
}

// normalizeIndex applies Python-style negative indexing
// (target.length + idx) for array access. Strings are not indexable:
// the analyzer rejects indexing a String and the interpreter has no
// String index case.
func normalizeIndex(length, idx int) int {
	if idx < 0 {
		return length + idx
	}
	return idx
}

// At returns the element at idx after negative-index normalization,
// or an IndexOutOfBounds error.
func (a *ArrayObj) At(idx int) (Value, error) {
	n := normalizeIndex(len(a.Elements), idx)
	if n < 0 || n >= len(a.Elements) {
		return NilValue, fmt.Errorf("index %d out of bounds for array of length %d", idx, len(a.Elements))
	}
	return a.Elements[n], nil
}

// SetAt replaces the element at idx after negative-index normalization.
func (a *ArrayObj) SetAt(idx int, v Value) error {
	n := normalizeIndex(len(a.Elements), idx)
	if n < 0 || n >= len(a.Elements) {
		return fmt.Errorf("index %d out of bounds for array of length %d", idx, len(a.Elements))
	}
	Release(a.Elements[n])
	a.Elements[n] = Clone(v)
	return nil
}

// RemoveAt deletes and returns the element at idx, shifting
// subsequent elements down. Grounded on
// original_source/src/core/value_array.c's array_remove_at, named in
// spec §8's round-trip property but not spelled out in §4.6.
func (a *ArrayObj) RemoveAt(idx int) (Value, error) {
	n := normalizeIndex(len(a.Elements), idx)
	if n < 0 || n >= len(a.Elements) {
		return NilValue, fmt.Errorf("index %d out of bounds for array of length %d", idx, len(a.Elements))
	}
	v := a.Elements[n]
	a.Elements = append(a.Elements[:n], a.Elements[n+1:]...)
	return v, nil
}

func (a *ArrayObj) Len() int { return len(a.Elements) }

func (a ArrayObj) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, v := range a.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteString("]")
	return b.String()
}
