package bread

import (
	"fmt"
	"strings"
)

// ClassObj is a class instance: a named field list plus a parent
// name (weak — resolved by registry lookup, never owned, so
// destroying an instance never cascades into its parent's fields).
// The method table lives in the compiler's ClassRegistry, not on the
// object (spec §3).
type ClassObj struct {
	heapHeader
	TypeName   string
	ParentName string
	FieldNames []string
	Values     []Value
}

// NewClassInstance constructs a class instance.
func NewClassInstance(typeName, parentName string, fieldNames []string, values []Value) Value {
	cloned := make([]Value, len(values))
	for i, v := range values {
		cloned[i] = Clone(v)
	}
	obj := &ClassObj{
		heapHeader: heapHeader{Kind: TagClass, Refcount: 1},
		TypeName:   typeName,
		ParentName: parentName,
		FieldNames: fieldNames,
		Values:     cloned,
	}
	globalMemoryTracker.track(obj, len(values))
	return Value{Tag: TagClass, heap: obj}
}

func classOf(v Value) *ClassObj {
	if v.Tag != TagClass {
		return nil
	}
	c, _ := v.heap.(*ClassObj)
	return c
}

// FindFieldIndex returns the position of name in FieldNames. The
// interpreter constructs every instance with the full ancestor-first
// flattened field list from ClassRegistry.AllFields, so this already
// covers inherited fields; it does not walk the registry itself.
func (c *ClassObj) FindFieldIndex(name string) int {
	for i, n := range c.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

func (c *ClassObj) Field(name string) (Value, bool) {
	i := c.FindFieldIndex(name)
	if i < 0 {
		return NilValue, false
	}
	return c.Values[i], true
}

func (c *ClassObj) SetField(name string, v Value) bool {
	i := c.FindFieldIndex(name)
	if i < 0 {
		return false
	}
	Release(c.Values[i])
	c.Values[i] = Clone(v)
	return true
}

func (c ClassObj) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s{", c.TypeName)
	for i, n := range c.FieldNames {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", n, c.Values[i].String())
	}
	b.WriteString("}")
	return b.String()
}
