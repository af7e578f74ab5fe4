package bread

import "fmt"

// ValueTag selects which arm of a Value is active, mirroring the
// original runtime's BreadValueType tag. Values are never inspected
// without dispatching on this tag first.
type ValueTag int

const (
	TagNil ValueTag = iota
	TagBool
	TagInt
	TagFloat
	TagDouble
	TagString
	TagArray
	TagDict
	TagOptional
	TagStruct
	TagClass
)

func (t ValueTag) String() string {
	switch t {
	case TagNil:
		return "Nil"
	case TagBool:
		return "Bool"
	case TagInt:
		return "Int"
	case TagFloat:
		return "Float"
	case TagDouble:
		return "Double"
	case TagString:
		return "String"
	case TagArray:
		return "Array"
	case TagDict:
		return "Dict"
	case TagOptional:
		return "Optional"
	case TagStruct:
		return "Struct"
	case TagClass:
		return "Class"
	default:
		return "Unknown"
	}
}

// isHeapTag reports whether values of this tag carry an owning
// reference to a heap object rather than storing their payload
// inline.
func (t ValueTag) isHeapTag() bool {
	switch t {
	case TagString, TagArray, TagDict, TagOptional, TagStruct, TagClass:
		return true
	default:
		return false
	}
}

// heapObject is implemented by every reference-counted heap kind.
// Values of reference kind never alias a heapObject without holding a
// retain on it (invariant 1 in spec §3).
type heapObject interface {
	header() *heapHeader
	kind() ValueTag
}

// heapHeader is the common prefix every heap object carries: its kind
// tag and a single 32-bit refcount.
type heapHeader struct {
	Kind     ValueTag
	Refcount uint32
}

func (h *heapHeader) header() *heapHeader { return h }
func (h *heapHeader) kind() ValueTag      { return h.Kind }

// Value is the discriminated union described in spec §3. The first
// five arms (Nil, Bool, Int, Float, Double) are stored by value; the
// rest hold an owning reference to a heap object.
type Value struct {
	Tag       ValueTag
	boolVal   bool
	intVal    int64
	floatVal  float32
	doubleVal float64
	heap      heapObject
}

// NilValue is the canonical Nil value.
var NilValue = Value{Tag: TagNil}

func SetNil() Value { return Value{Tag: TagNil} }

func SetBool(b bool) Value { return Value{Tag: TagBool, boolVal: b} }

func SetInt(i int64) Value { return Value{Tag: TagInt, intVal: i} }

func SetFloat(f float32) Value { return Value{Tag: TagFloat, floatVal: f} }

func SetDouble(d float64) Value { return Value{Tag: TagDouble, doubleVal: d} }

// Bool reads the boolean payload; callers must check Tag == TagBool first.
func (v Value) Bool() bool { return v.boolVal }

// Int reads the integer payload; callers must check Tag == TagInt first.
func (v Value) Int() int64 { return v.intVal }

// Float reads the float payload; callers must check Tag == TagFloat first.
func (v Value) Float() float32 { return v.floatVal }

// Double reads the double payload; callers must check Tag == TagDouble first.
func (v Value) Double() float64 { return v.doubleVal }

// heapObj returns the underlying heap object, or nil for non-heap tags.
func (v Value) heapObj() heapObject { return v.heap }

// IsTruthy implements is_truthy: Nil and false Bool are falsy, empty
// containers and zero numbers are still truthy (BreadLang does not
// overload truthiness onto container emptiness), matching the
// original runtime's is_truthy which special-cases only Nil and Bool.
func (v Value) IsTruthy() bool {
	switch v.Tag {
	case TagNil:
		return false
	case TagBool:
		return v.boolVal
	default:
		return true
	}
}

// Clone implements retain semantics: heap-kind values have their
// refcount incremented; value-kind values are copied verbatim.
func Clone(v Value) Value {
	if v.Tag.isHeapTag() && v.heap != nil {
		retain(v.heap)
	}
	return v
}

// Release implements release semantics: heap-kind values have their
// refcount decremented, freeing the object's owned children at zero.
func Release(v Value) {
	if v.Tag.isHeapTag() && v.heap != nil {
		release(v.heap)
	}
}

// Assign performs release(target) + Clone(src), matching spec §4.1's
// assign(target, src) = release + clone.
func Assign(target *Value, src Value) {
	Release(*target)
	*target = Clone(src)
}

func (v Value) String() string {
	switch v.Tag {
	case TagNil:
		return "nil"
	case TagBool:
		return fmt.Sprintf("%t", v.boolVal)
	case TagInt:
		return fmt.Sprintf("%d", v.intVal)
	case TagFloat:
		return fmt.Sprintf("%g", v.floatVal)
	case TagDouble:
		return fmt.Sprintf("%g", v.doubleVal)
	case TagString:
		if s, ok := v.heap.(*StringObj); ok {
			return s.Bytes
		}
	case TagArray:
		if a, ok := v.heap.(*ArrayObj); ok {
			return a.String()
		}
	case TagDict:
		if d, ok := v.heap.(*DictObj); ok {
			return d.String()
		}
	case TagOptional:
		if o, ok := v.heap.(*OptionalObj); ok {
			return o.String()
		}
	case TagStruct:
		if s, ok := v.heap.(*StructObj); ok {
			return s.String()
		}
	case TagClass:
		if c, ok := v.heap.(*ClassObj); ok {
			return c.String()
		}
	}
	return "<" + v.Tag.String() + ">"
}

// refcountOf exposes the live refcount for a heap-kind value, 0 for
// value kinds. Primarily used by tests asserting the retain/release
// invariants in spec §8.
func refcountOf(v Value) uint32 {
	if !v.Tag.isHeapTag() || v.heap == nil {
		return 0
	}
	return v.heap.header().Refcount
}
