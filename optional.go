package bread

import "math"

// doubleBits exposes the raw IEEE-754 bit pattern of a double, used
// by dict.go's numeric key hashing.
func doubleBits(d float64) uint64 { return math.Float64bits(d) }

// OptionalObj is the `{is_some, value}` heap object from spec §3.
type OptionalObj struct {
	heapHeader
	IsSome bool
	Value  Value
}

// NewNone constructs an empty Optional.
func NewNone() Value {
	obj := &OptionalObj{heapHeader: heapHeader{Kind: TagOptional, Refcount: 1}}
	globalMemoryTracker.track(obj, 0)
	return Value{Tag: TagOptional, heap: obj}
}

// NewSome wraps v in a non-empty Optional, retaining v.
func NewSome(v Value) Value {
	obj := &OptionalObj{
		heapHeader: heapHeader{Kind: TagOptional, Refcount: 1},
		IsSome:     true,
		Value:      Clone(v),
	}
	globalMemoryTracker.track(obj, 0)
	return Value{Tag: TagOptional, heap: obj}
}

func optionalOf(v Value) *OptionalObj {
	if v.Tag != TagOptional {
		return nil
	}
	o, _ := v.heap.(*OptionalObj)
	return o
}

func (o OptionalObj) String() string {
	if !o.IsSome {
		return "None"
	}
	return o.Value.String()
}
