package bread

import "fmt"

// Param is one function/method/constructor parameter, carrying an
// optional default-value expression (spec §4.3).
type Param struct {
	Name       string
	Type       *TypeDescriptor
	Default    Expr
	HasDefault bool
}

// FunctionDecl is a registered top-level function or class
// method/constructor.
type FunctionDecl struct {
	Name       string
	Params     []Param
	ReturnType *TypeDescriptor
	Body       []Stmt
	Pos        Pos
}

// RequiredParamCount returns the number of leading parameters without defaults.
func (f *FunctionDecl) RequiredParamCount() int {
	n := 0
	for _, p := range f.Params {
		if p.HasDefault {
			break
		}
		n++
	}
	return n
}

// StructDecl is a registered record type.
type StructDecl struct {
	Name   string
	Fields []FieldDescriptor
	Pos    Pos
}

// ClassDecl is a registered nominal class: fields, methods, and the
// mandatory constructor.
type ClassDecl struct {
	Name       string
	ParentName string
	Fields     []FieldDescriptor
	Methods    map[string]*FunctionDecl
	Init       *FunctionDecl
	Pos        Pos
}

// Registry holds the global declaration tables built in semantic
// analysis pass 1 (spec §4.5), keyed by name; duplicate names fail.
type Registry struct {
	Functions map[string]*FunctionDecl
	Structs   map[string]*StructDecl
	Classes   map[string]*ClassDecl
}

func NewRegistry() *Registry {
	return &Registry{
		Functions: map[string]*FunctionDecl{},
		Structs:   map[string]*StructDecl{},
		Classes:   map[string]*ClassDecl{},
	}
}

func (r *Registry) nameTaken(name string) bool {
	_, f := r.Functions[name]
	_, s := r.Structs[name]
	_, c := r.Classes[name]
	return f || s || c
}

// RegisterFunction adds a function declaration, failing on duplicate names.
func (r *Registry) RegisterFunction(fn *FunctionDecl) error {
	if r.nameTaken(fn.Name) {
		return fmt.Errorf("%q is already declared", fn.Name)
	}
	r.Functions[fn.Name] = fn
	return nil
}

// RegisterStruct adds a struct declaration, failing on duplicate names.
func (r *Registry) RegisterStruct(s *StructDecl) error {
	if r.nameTaken(s.Name) {
		return fmt.Errorf("%q is already declared", s.Name)
	}
	r.Structs[s.Name] = s
	return nil
}

// RegisterClass adds a class declaration, failing on duplicate names
// or a missing constructor (invariant 5). Duplicate method names
// within a class are rejected earlier, by the parser, since Methods
// is a name-keyed map.
func (r *Registry) RegisterClass(c *ClassDecl) error {
	if r.nameTaken(c.Name) {
		return fmt.Errorf("%q is already declared", c.Name)
	}
	if c.Init == nil {
		return fmt.Errorf("class %q is missing its init constructor", c.Name)
	}
	r.Classes[c.Name] = c
	return nil
}

// ClassRegistry is the subset of Registry the type algebra needs for
// ancestor-chain compatibility checks (spec §3's compatible rule ii).
type ClassRegistry struct {
	reg *Registry
}

func (r *Registry) AsClassRegistry() *ClassRegistry { return &ClassRegistry{reg: r} }

// Ancestors returns name's ancestor chain, name itself first, walking
// parent pointers to the root.
func (cr *ClassRegistry) Ancestors(name string) []string {
	var chain []string
	seen := map[string]bool{}
	for name != "" && !seen[name] {
		chain = append(chain, name)
		seen[name] = true
		c, ok := cr.reg.Classes[name]
		if !ok {
			break
		}
		name = c.ParentName
	}
	return chain
}

// IsAncestor reports whether to is c or an ancestor of c.
func (cr *ClassRegistry) IsAncestor(c, to string) bool {
	for _, a := range cr.Ancestors(c) {
		if a == to {
			return true
		}
	}
	return false
}

// LookupMethod resolves methodName up className's parent chain,
// returning the first match and the class that declares it.
func (cr *ClassRegistry) LookupMethod(className, methodName string) (*FunctionDecl, string, bool) {
	for _, name := range cr.Ancestors(className) {
		c, ok := cr.reg.Classes[name]
		if !ok {
			continue
		}
		if methodName == "init" {
			if c.Init != nil {
				return c.Init, name, true
			}
			continue
		}
		if m, ok := c.Methods[methodName]; ok {
			return m, name, true
		}
	}
	return nil, "", false
}

// AllFields flattens className's own fields plus every ancestor's
// fields, ancestor-first (so subclass fields follow parent fields,
// matching constructor field layout order).
func (cr *ClassRegistry) AllFields(className string) []FieldDescriptor {
	chain := cr.Ancestors(className)
	var fields []FieldDescriptor
	for i := len(chain) - 1; i >= 0; i-- {
		if c, ok := cr.reg.Classes[chain[i]]; ok {
			fields = append(fields, c.Fields...)
		}
	}
	return fields
}

// LookupClass returns name's class decl, if registered.
func (r *Registry) LookupClass(name string) (*ClassDecl, bool) {
	c, ok := r.Classes[name]
	return c, ok
}

// LookupStruct returns name's struct decl, if registered.
func (r *Registry) LookupStruct(name string) (*StructDecl, bool) {
	s, ok := r.Structs[name]
	return s, ok
}

// LookupFunction returns name's function decl, if registered.
func (r *Registry) LookupFunction(name string) (*FunctionDecl, bool) {
	f, ok := r.Functions[name]
	return f, ok
}
