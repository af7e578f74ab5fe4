package bread

import (
	"fmt"
	"strings"
)

// StructObj is a named, heterogeneous field list (spec §3); access by
// position or name via FindFieldIndex.
type StructObj struct {
	heapHeader
	TypeName   string
	FieldNames []string
	Values     []Value
}

// NewStruct constructs a struct instance of the given nominal type
// with field values already supplied (parallel to fieldNames).
func NewStruct(typeName string, fieldNames []string, values []Value) Value {
	cloned := make([]Value, len(values))
	for i, v := range values {
		cloned[i] = Clone(v)
	}
	obj := &StructObj{
		heapHeader: heapHeader{Kind: TagStruct, Refcount: 1},
		TypeName:   typeName,
		FieldNames: fieldNames,
		Values:     cloned,
	}
	globalMemoryTracker.track(obj, len(values))
	return Value{Tag: TagStruct, heap: obj}
}

func structOf(v Value) *StructObj {
	if v.Tag != TagStruct {
		return nil
	}
	s, _ := v.heap.(*StructObj)
	return s
}

// FindFieldIndex returns the position of name in the field list, or -1.
func (s *StructObj) FindFieldIndex(name string) int {
	for i, n := range s.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Field reads a field by name.
func (s *StructObj) Field(name string) (Value, bool) {
	i := s.FindFieldIndex(name)
	if i < 0 {
		return NilValue, false
	}
	return s.Values[i], true
}

// SetField writes a field by name, releasing the previous value.
func (s *StructObj) SetField(name string, v Value) bool {
	i := s.FindFieldIndex(name)
	if i < 0 {
		return false
	}
	Release(s.Values[i])
	s.Values[i] = Clone(v)
	return true
}

func (s StructObj) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s{", s.TypeName)
	for i, n := range s.FieldNames {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", n, s.Values[i].String())
	}
	b.WriteString("}")
	return b.String()
}
