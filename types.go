package bread

import (
	"fmt"
	"strings"
)

// Kind is the tag of a TypeDescriptor's tree node.
type Kind int

const (
	KInt Kind = iota
	KDouble
	KFloat
	KBool
	KString
	KNil
	KArray
	KDict
	KOptional
	KStruct
	KClass
)

func (k Kind) String() string {
	switch k {
	case KInt:
		return "Int"
	case KDouble:
		return "Double"
	case KFloat:
		return "Float"
	case KBool:
		return "Bool"
	case KString:
		return "String"
	case KNil:
		return "Nil"
	case KArray:
		return "Array"
	case KDict:
		return "Dict"
	case KOptional:
		return "Optional"
	case KStruct:
		return "Struct"
	case KClass:
		return "Class"
	default:
		return "Unknown"
	}
}

// FieldDescriptor names one field of a Struct or Class descriptor.
type FieldDescriptor struct {
	Name string
	Type *TypeDescriptor
}

// TypeDescriptor is the structural representation of a type, spec §3/§4.4.
type TypeDescriptor struct {
	Kind       Kind
	Name       string // Struct/Class nominal name
	ParentName string // Class parent nominal name, if any
	Element    *TypeDescriptor
	Key        *TypeDescriptor
	ValueType  *TypeDescriptor
	Inner      *TypeDescriptor
	Fields     []FieldDescriptor
}

func primitive(k Kind) *TypeDescriptor { return &TypeDescriptor{Kind: k} }

func NewIntType() *TypeDescriptor    { return primitive(KInt) }
func NewDoubleType() *TypeDescriptor { return primitive(KDouble) }
func NewFloatType() *TypeDescriptor  { return primitive(KFloat) }
func NewBoolType() *TypeDescriptor   { return primitive(KBool) }
func NewStringType() *TypeDescriptor { return primitive(KString) }
func NewNilType() *TypeDescriptor    { return primitive(KNil) }

func NewArrayType(el *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KArray, Element: el}
}

func NewDictType(key, val *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KDict, Key: key, ValueType: val}
}

func NewOptionalType(inner *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KOptional, Inner: inner}
}

func NewStructType(name string, fields []FieldDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KStruct, Name: name, Fields: fields}
}

func NewClassType(name, parent string, fields []FieldDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KClass, Name: name, ParentName: parent, Fields: fields}
}

// Clone deep-copies a descriptor.
func (d *TypeDescriptor) Clone() *TypeDescriptor {
	if d == nil {
		return nil
	}
	c := &TypeDescriptor{Kind: d.Kind, Name: d.Name, ParentName: d.ParentName}
	c.Element = d.Element.Clone()
	c.Key = d.Key.Clone()
	c.ValueType = d.ValueType.Clone()
	c.Inner = d.Inner.Clone()
	if d.Fields != nil {
		c.Fields = make([]FieldDescriptor, len(d.Fields))
		for i, f := range d.Fields {
			c.Fields[i] = FieldDescriptor{Name: f.Name, Type: f.Type.Clone()}
		}
	}
	return c
}

// Equals implements structural identity. Struct/Class compare by
// name only (nominal types); their field lists are registry-owned
// and not re-compared structurally to avoid infinite recursion
// through self-referential fields.
func Equals(a, b *TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KArray:
		return Equals(a.Element, b.Element)
	case KDict:
		return Equals(a.Key, b.Key) && Equals(a.ValueType, b.ValueType)
	case KOptional:
		return Equals(a.Inner, b.Inner)
	case KStruct, KClass:
		return a.Name == b.Name
	default:
		return true
	}
}

// Compatible reports whether `from` is assignable to `to`: identical
// descriptors, the two optional relaxations (T -> Optional<T>, Nil ->
// Optional<T>), and class-to-ancestor widening.
func Compatible(from, to *TypeDescriptor, classes *ClassRegistry) bool {
	if from == nil || to == nil {
		return from == to
	}
	if Equals(from, to) {
		return true
	}
	if to.Kind == KOptional {
		if from.Kind == KNil {
			return true
		}
		if from.Kind == KOptional {
			return Compatible(from.Inner, to.Inner, classes)
		}
		return Compatible(from, to.Inner, classes)
	}
	if from.Kind == KClass && to.Kind == KClass {
		return classes.IsAncestor(from.Name, to.Name)
	}
	// An empty array/dict literal infers Nil in place of its element
	// type; such a placeholder is compatible with any concrete element
	// type of the same container shape.
	if from.Kind == KArray && to.Kind == KArray && from.Element.Kind == KNil {
		return true
	}
	if from.Kind == KDict && to.Kind == KDict && from.ValueType.Kind == KNil {
		return Equals(from.Key, to.Key)
	}
	return false
}

// ToString renders the deterministic canonical form used in error messages.
func ToString(d *TypeDescriptor) string {
	if d == nil {
		return "?"
	}
	switch d.Kind {
	case KArray:
		return "[" + ToString(d.Element) + "]"
	case KDict:
		return "[" + ToString(d.Key) + ": " + ToString(d.ValueType) + "]"
	case KOptional:
		return ToString(d.Inner) + "?"
	case KStruct, KClass:
		return d.Name
	default:
		return d.Kind.String()
	}
}

// ParseTypeAnnotation parses a type annotation per spec §4.4: primitive keywords,
// `[T]` array, `[K: V]` dict, trailing `?` optional, bare identifiers
// as nominal Struct types (the semantic analyzer rewrites to Class on
// discovery).
func ParseTypeAnnotation(text string) (*TypeDescriptor, error) {
	text = strings.TrimSpace(text)
	d, rest, err := parseTypeAnnotation(text)
	if err != nil {
		return nil, err
	}
	rest = strings.TrimSpace(rest)
	if rest != "" {
		return nil, fmt.Errorf("unexpected trailing input in type annotation: %q", rest)
	}
	return d, nil
}

func parseTypeAnnotation(text string) (*TypeDescriptor, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", fmt.Errorf("empty type annotation")
	}
	var base *TypeDescriptor
	var rest string
	switch {
	case text[0] == '[':
		inner := text[1:]
		// Find the matching close bracket, honoring nesting.
		depth := 1
		i := 0
		for ; i < len(inner); i++ {
			switch inner[i] {
			case '[':
				depth++
			case ']':
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth != 0 {
			return nil, "", fmt.Errorf("unterminated array/dict type annotation")
		}
		body := inner[:i]
		rest = inner[i+1:]
		if colon := splitTopLevelColon(body); colon >= 0 {
			keyText := strings.TrimSpace(body[:colon])
			valText := strings.TrimSpace(body[colon+1:])
			keyType, _, err := parseTypeAnnotation(keyText)
			if err != nil {
				return nil, "", err
			}
			valType, _, err := parseTypeAnnotation(valText)
			if err != nil {
				return nil, "", err
			}
			base = NewDictType(keyType, valType)
		} else {
			elType, _, err := parseTypeAnnotation(strings.TrimSpace(body))
			if err != nil {
				return nil, "", err
			}
			base = NewArrayType(elType)
		}
	default:
		ident, remainder := scanIdentifierPrefix(text)
		if ident == "" {
			return nil, "", fmt.Errorf("invalid type annotation: %q", text)
		}
		rest = remainder
		switch ident {
		case "Int":
			base = NewIntType()
		case "Double":
			base = NewDoubleType()
		case "Float":
			base = NewFloatType()
		case "Bool":
			base = NewBoolType()
		case "String":
			base = NewStringType()
		case "Nil":
			base = NewNilType()
		default:
			base = NewStructType(ident, nil)
		}
	}
	for strings.HasPrefix(rest, "?") {
		base = NewOptionalType(base)
		rest = rest[1:]
	}
	return base, rest, nil
}

func splitTopLevelColon(s string) int {
	depth := 0
	for i, c := range s {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case ':':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func scanIdentifierPrefix(s string) (ident, rest string) {
	i := 0
	for i < len(s) && (isAlphaNum(s[i]) || s[i] == '_') {
		i++
	}
	return s[:i], s[i:]
}

func isAlphaNum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// tagForKind maps a TypeDescriptor's primitive/container Kind to the
// runtime ValueTag it corresponds to.
func tagForKind(k Kind) ValueTag {
	switch k {
	case KInt:
		return TagInt
	case KDouble:
		return TagDouble
	case KFloat:
		return TagFloat
	case KBool:
		return TagBool
	case KString:
		return TagString
	case KArray:
		return TagArray
	case KDict:
		return TagDict
	case KOptional:
		return TagOptional
	case KStruct:
		return TagStruct
	case KClass:
		return TagClass
	default:
		return TagNil
	}
}
