package bread

import (
	"fmt"
	"strings"
)

// MultiError joins every diagnostic accumulated during one analysis
// pass (spec §4.5's error-accumulation policy: keep checking after a
// failure instead of aborting on the first one).
type MultiError struct {
	Errors []*BreadError
}

func (m *MultiError) Error() string {
	parts := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		parts[i] = e.Format()
	}
	return strings.Join(parts, "\n")
}

// Analyzer runs BreadLang's two-pass semantic analysis: pass 1
// registers every top-level function/struct/class declaration (so
// forward references resolve regardless of declaration order), pass 2
// walks every statement and expression, annotating each AST node's
// TypeDescriptor and checking the rules in spec §4.5.
type Analyzer struct {
	file    string
	reg     *Registry
	classes *ClassRegistry
	scopes  *ScopeStack
	errors  []*BreadError

	currentClass      string
	currentReturnType *TypeDescriptor
	loopDepth         int
}

// NewAnalyzer creates an analyzer over a fresh registry and scope stack.
func NewAnalyzer(file string) *Analyzer {
	reg := NewRegistry()
	return &Analyzer{
		file:    file,
		reg:     reg,
		classes: reg.AsClassRegistry(),
		scopes:  NewScopeStack(),
	}
}

// Registry exposes the declaration tables built during pass 1, which
// NewInterpreter consumes to resolve functions and classes at run time.
func (a *Analyzer) Registry() *Registry { return a.reg }

func (a *Analyzer) addErr(pos Pos, category ErrorCategory, format string, args ...interface{}) {
	a.errors = append(a.errors, &BreadError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Filename: a.file,
		Line:     pos.Line,
		Column:   pos.Column,
	})
}

// Analyze runs both passes over prog, returning a *MultiError
// accumulating every diagnostic, or nil if none were raised.
func (a *Analyzer) Analyze(prog *Program) error {
	a.registerPass(prog.Stmts)
	a.resolveForwardTypes()
	a.scopes.PushScope()
	a.checkStmts(prog.Stmts)
	a.scopes.PopScope()
	if len(a.errors) == 0 {
		return nil
	}
	return &MultiError{Errors: a.errors}
}

// ---- pass 1: declaration registration ----

func (a *Analyzer) registerPass(stmts []Stmt) {
	for _, s := range stmts {
		a.registerStmt(s)
	}
}

func (a *Analyzer) registerStmt(s Stmt) {
	switch v := s.(type) {
	case *FuncDeclStmt:
		if err := a.reg.RegisterFunction(v.Decl); err != nil {
			a.addErr(s.Position(), ErrCompileError, "%s", err)
		}
	case *StructDeclStmt:
		if err := a.reg.RegisterStruct(v.Decl); err != nil {
			a.addErr(s.Position(), ErrCompileError, "%s", err)
		}
	case *ClassDeclStmt:
		if err := a.reg.RegisterClass(v.Decl); err != nil {
			a.addErr(s.Position(), ErrCompileError, "%s", err)
		}
	case *ExportDeclStmt:
		a.registerStmt(v.Inner)
	}
}

// resolveForwardTypes rewrites every bare nominal TypeDescriptor
// produced by the parser (always KStruct, since the parser cannot
// know whether an identifier names a struct or a class until after
// registration) into a KClass descriptor when the name is in fact a
// registered class.
func (a *Analyzer) resolveForwardTypes() {
	for _, fn := range a.reg.Functions {
		a.resolveFuncSignature(fn)
	}
	for _, sd := range a.reg.Structs {
		for i := range sd.Fields {
			sd.Fields[i].Type = a.resolveType(sd.Fields[i].Type)
		}
	}
	for _, cd := range a.reg.Classes {
		for i := range cd.Fields {
			cd.Fields[i].Type = a.resolveType(cd.Fields[i].Type)
		}
		if cd.Init != nil {
			a.resolveFuncSignature(cd.Init)
		}
		for _, m := range cd.Methods {
			a.resolveFuncSignature(m)
		}
	}
}

func (a *Analyzer) resolveFuncSignature(fn *FunctionDecl) {
	for i := range fn.Params {
		fn.Params[i].Type = a.resolveType(fn.Params[i].Type)
	}
	fn.ReturnType = a.resolveType(fn.ReturnType)
}

func (a *Analyzer) resolveType(t *TypeDescriptor) *TypeDescriptor {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KArray:
		t.Element = a.resolveType(t.Element)
	case KDict:
		t.Key = a.resolveType(t.Key)
		t.ValueType = a.resolveType(t.ValueType)
	case KOptional:
		t.Inner = a.resolveType(t.Inner)
	case KStruct:
		if cd, ok := a.reg.LookupClass(t.Name); ok {
			return NewClassType(cd.Name, cd.ParentName, nil)
		}
		if sd, ok := a.reg.LookupStruct(t.Name); ok {
			t.Fields = sd.Fields
		}
	}
	return t
}

// ---- pass 2: statements ----

func (a *Analyzer) checkStmts(stmts []Stmt) {
	for _, s := range stmts {
		a.checkStmt(s)
	}
}

func (a *Analyzer) checkStmt(s Stmt) {
	switch v := s.(type) {
	case *ImportStmt:
		// resolution and symbol splicing is module.go's job.
	case *ExportDeclStmt:
		a.checkStmt(v.Inner)
	case *VarDeclStmt:
		a.checkVarDecl(v)
	case *AssignStmt:
		a.checkAssign(v)
	case *PrintStmt:
		a.checkExpr(v.Value)
	case *ExprStmt:
		a.checkExpr(v.Value)
	case *IfStmt:
		a.checkIf(v)
	case *WhileStmt:
		a.checkWhile(v)
	case *ForInStmt:
		a.checkForIn(v)
	case *BreakStmt:
		if a.loopDepth == 0 {
			a.addErr(v.Position(), ErrCompileError, "'break' outside a loop")
		}
	case *ContinueStmt:
		if a.loopDepth == 0 {
			a.addErr(v.Position(), ErrCompileError, "'continue' outside a loop")
		}
	case *ReturnStmt:
		a.checkReturn(v)
	case *FuncDeclStmt:
		a.checkFunction(v.Decl, "")
	case *StructDeclStmt:
		// fields already resolved in pass 1; no body to check.
	case *ClassDeclStmt:
		a.checkClass(v.Decl)
	}
}

func (a *Analyzer) checkVarDecl(v *VarDeclStmt) {
	v.DeclaredType = a.resolveType(v.DeclaredType)
	initType := a.checkExpr(v.Init)
	if initType != nil && !Compatible(initType, v.DeclaredType, a.classes) {
		a.addErr(v.Position(), ErrTypeMismatch, "cannot assign %s to %s %q of declared type %s",
			ToString(initType), declKindName(v.Kind), v.Name, ToString(v.DeclaredType))
	}
	if err := a.scopes.Declare(v.Name, v.DeclaredType, NilValue, v.Kind == DeclConst); err != nil {
		a.addErr(v.Position(), ErrCompileError, "%s", err)
	}
}

func declKindName(k DeclKind) string {
	switch k {
	case DeclConst:
		return "const"
	case DeclVar:
		return "var"
	default:
		return "let"
	}
}

func (a *Analyzer) checkAssign(v *AssignStmt) {
	targetType := a.checkExpr(v.Target)
	if ident, ok := v.Target.(*Ident); ok {
		if variable, ok := a.scopes.GetVariable(ident.Name); ok && variable.IsConst {
			a.addErr(v.Position(), ErrCompileError, "cannot assign to const %q", ident.Name)
		}
	}
	valType := a.checkExpr(v.Value)
	if targetType == nil || valType == nil {
		return
	}
	if v.Op != "=" {
		if !isArithmeticType(targetType) || !isArithmeticType(valType) {
			a.addErr(v.Position(), ErrTypeMismatch, "compound assignment %q requires numeric operands, got %s and %s",
				v.Op, ToString(targetType), ToString(valType))
			return
		}
	}
	if !Compatible(valType, targetType, a.classes) {
		a.addErr(v.Position(), ErrTypeMismatch, "cannot assign %s to target of type %s", ToString(valType), ToString(targetType))
	}
}

func (a *Analyzer) checkIf(v *IfStmt) {
	condType := a.checkExpr(v.Cond)
	if condType != nil && condType.Kind != KBool {
		a.addErr(v.Cond.Position(), ErrTypeMismatch, "'if' condition must be Bool, got %s", ToString(condType))
	}
	a.scopes.PushScope()
	a.checkStmts(v.Then)
	a.scopes.PopScope()
	if len(v.Else) > 0 {
		a.scopes.PushScope()
		a.checkStmts(v.Else)
		a.scopes.PopScope()
	}
}

func (a *Analyzer) checkWhile(v *WhileStmt) {
	condType := a.checkExpr(v.Cond)
	if condType != nil && condType.Kind != KBool {
		a.addErr(v.Cond.Position(), ErrTypeMismatch, "'while' condition must be Bool, got %s", ToString(condType))
	}
	a.loopDepth++
	a.scopes.PushScope()
	a.checkStmts(v.Body)
	a.scopes.PopScope()
	a.loopDepth--
}

func (a *Analyzer) checkForIn(v *ForInStmt) {
	iterType := a.checkExpr(v.Iter)
	var loopVarType *TypeDescriptor
	if iterType != nil {
		switch iterType.Kind {
		case KArray:
			loopVarType = iterType.Element
		case KDict:
			loopVarType = iterType.Key
		default:
			a.addErr(v.Iter.Position(), ErrTypeMismatch, "'for ... in' requires an Array or Dict, got %s", ToString(iterType))
			loopVarType = NewNilType()
		}
	}
	a.loopDepth++
	a.scopes.PushScope()
	if err := a.scopes.Declare(v.VarName, loopVarType, NilValue, false); err != nil {
		a.addErr(v.Position(), ErrCompileError, "%s", err)
	}
	a.checkStmts(v.Body)
	a.scopes.PopScope()
	a.loopDepth--
}

func (a *Analyzer) checkReturn(v *ReturnStmt) {
	var actual *TypeDescriptor
	if v.Value != nil {
		actual = a.checkExpr(v.Value)
	} else {
		actual = NewNilType()
	}
	if a.currentReturnType == nil {
		a.addErr(v.Position(), ErrCompileError, "'return' outside a function")
		return
	}
	if actual != nil && !Compatible(actual, a.currentReturnType, a.classes) {
		a.addErr(v.Position(), ErrTypeMismatch, "cannot return %s from a function declared to return %s",
			ToString(actual), ToString(a.currentReturnType))
	}
}

func (a *Analyzer) checkFunction(fn *FunctionDecl, selfClass string) {
	savedReturn := a.currentReturnType
	savedClass := a.currentClass
	a.currentReturnType = fn.ReturnType
	a.currentClass = selfClass
	a.scopes.PushScope()
	if selfClass != "" {
		a.scopes.Declare("self", NewClassType(selfClass, "", nil), NilValue, true)
	}
	for _, p := range fn.Params {
		if err := a.scopes.Declare(p.Name, p.Type, NilValue, false); err != nil {
			a.addErr(fn.Pos, ErrCompileError, "%s", err)
		}
		if p.HasDefault {
			defType := a.checkExpr(p.Default)
			if defType != nil && !Compatible(defType, p.Type, a.classes) {
				a.addErr(p.Default.Position(), ErrTypeMismatch, "default value for %q has type %s, expected %s",
					p.Name, ToString(defType), ToString(p.Type))
			}
		}
	}
	a.checkStmts(fn.Body)
	a.scopes.PopScope()
	if fn.ReturnType != nil && fn.ReturnType.Kind != KNil && !allPathsReturn(fn.Body) {
		a.addErr(fn.Pos, ErrCompileError, "function %q does not return a value on every path", fn.Name)
	}
	a.currentReturnType = savedReturn
	a.currentClass = savedClass
}

// allPathsReturn reports whether every control-flow path through
// stmts ends in a return statement. Loops never guarantee a return
// (they may execute zero times), so a return nested only inside a
// while/for is not sufficient.
func allPathsReturn(stmts []Stmt) bool {
	for _, s := range stmts {
		switch v := s.(type) {
		case *ReturnStmt:
			return true
		case *IfStmt:
			if len(v.Else) == 0 {
				continue
			}
			if allPathsReturn(v.Then) && allPathsReturn(v.Else) {
				return true
			}
		}
	}
	return false
}

func (a *Analyzer) checkClass(cd *ClassDecl) {
	a.checkFunction(cd.Init, cd.Name)
	for _, m := range cd.Methods {
		a.checkFunction(m, cd.Name)
	}
}

// ---- pass 2: expressions ----

func (a *Analyzer) checkExpr(e Expr) *TypeDescriptor {
	if e == nil {
		return nil
	}
	t := a.inferExpr(e)
	e.SetType(t)
	return t
}

func (a *Analyzer) inferExpr(e Expr) *TypeDescriptor {
	switch v := e.(type) {
	case *IntLit:
		return NewIntType()
	case *FloatLit:
		return NewFloatType()
	case *DoubleLit:
		return NewDoubleType()
	case *BoolLit:
		return NewBoolType()
	case *StringLit:
		return NewStringType()
	case *NilLit:
		return NewNilType()
	case *SelfExpr:
		if a.currentClass == "" {
			a.addErr(v.Position(), ErrCompileError, "'self' used outside a method")
			return nil
		}
		return NewClassType(a.currentClass, "", nil)
	case *SuperExpr:
		if a.currentClass == "" {
			a.addErr(v.Position(), ErrCompileError, "'super' used outside a method")
			return nil
		}
		cd, _ := a.reg.LookupClass(a.currentClass)
		if cd == nil || cd.ParentName == "" {
			a.addErr(v.Position(), ErrCompileError, "class %q has no parent for 'super' to refer to", a.currentClass)
			return nil
		}
		return NewClassType(cd.ParentName, "", nil)
	case *Ident:
		variable, ok := a.scopes.GetVariable(v.Name)
		if !ok {
			a.addErr(v.Position(), ErrUndefinedVariable, "undefined variable %q", v.Name)
			return nil
		}
		return variable.Type
	case *ArrayLit:
		return a.inferArrayLit(v)
	case *DictLit:
		return a.inferDictLit(v)
	case *StructLit:
		return a.inferStructLit(v)
	case *UnaryExpr:
		return a.inferUnary(v)
	case *BinaryExpr:
		return a.inferBinary(v)
	case *IndexExpr:
		return a.inferIndex(v)
	case *MemberExpr:
		return a.inferMember(v)
	case *CallExpr:
		return a.inferCall(v)
	case *MethodCallExpr:
		return a.inferMethodCall(v)
	default:
		a.addErr(e.Position(), ErrCompileError, "internal: unhandled expression node %T", e)
		return nil
	}
}

func (a *Analyzer) inferArrayLit(v *ArrayLit) *TypeDescriptor {
	if len(v.Elements) == 0 {
		return NewArrayType(NewNilType())
	}
	var elemType *TypeDescriptor
	for _, el := range v.Elements {
		t := a.checkExpr(el)
		if t == nil {
			continue
		}
		if elemType == nil {
			elemType = t
			continue
		}
		elemType = unify(elemType, t, a.classes)
		if elemType == nil {
			a.addErr(v.Position(), ErrTypeMismatch, "array literal has mismatched element types")
			return NewArrayType(NewNilType())
		}
	}
	if elemType == nil {
		elemType = NewNilType()
	}
	return NewArrayType(elemType)
}

func (a *Analyzer) inferDictLit(v *DictLit) *TypeDescriptor {
	if len(v.Keys) == 0 {
		return NewDictType(NewStringType(), NewNilType())
	}
	var keyType, valType *TypeDescriptor
	for i := range v.Keys {
		kt := a.checkExpr(v.Keys[i])
		vt := a.checkExpr(v.Values[i])
		if kt != nil {
			if keyType == nil {
				keyType = kt
			} else if !Equals(keyType, kt) {
				a.addErr(v.Keys[i].Position(), ErrTypeMismatch, "dict literal has mismatched key types")
			}
		}
		if vt != nil {
			if valType == nil {
				valType = vt
			} else {
				unified := unify(valType, vt, a.classes)
				if unified == nil {
					a.addErr(v.Values[i].Position(), ErrTypeMismatch, "dict literal has mismatched value types")
				} else {
					valType = unified
				}
			}
		}
	}
	if keyType == nil {
		keyType = NewStringType()
	}
	if valType == nil {
		valType = NewNilType()
	}
	return NewDictType(keyType, valType)
}

func (a *Analyzer) inferStructLit(v *StructLit) *TypeDescriptor {
	if cd, ok := a.reg.LookupClass(v.TypeName); ok {
		fields := a.classes.AllFields(v.TypeName)
		a.checkFieldInit(v, fields)
		return NewClassType(cd.Name, cd.ParentName, nil)
	}
	if sd, ok := a.reg.LookupStruct(v.TypeName); ok {
		a.checkFieldInit(v, sd.Fields)
		return NewStructType(sd.Name, sd.Fields)
	}
	a.addErr(v.Position(), ErrUndefinedVariable, "undefined type %q", v.TypeName)
	return nil
}

func (a *Analyzer) checkFieldInit(v *StructLit, fields []FieldDescriptor) {
	byName := map[string]*TypeDescriptor{}
	for _, f := range fields {
		byName[f.Name] = f.Type
	}
	provided := map[string]bool{}
	for i, name := range v.FieldNames {
		ft, ok := byName[name]
		if !ok {
			a.addErr(v.FieldValues[i].Position(), ErrCompileError, "%q has no field %q", v.TypeName, name)
			continue
		}
		provided[name] = true
		vt := a.checkExpr(v.FieldValues[i])
		if vt != nil && !Compatible(vt, ft, a.classes) {
			a.addErr(v.FieldValues[i].Position(), ErrTypeMismatch, "field %q expects %s, got %s", name, ToString(ft), ToString(vt))
		}
	}
	for _, f := range fields {
		if !provided[f.Name] {
			a.addErr(v.Position(), ErrCompileError, "missing field %q in %q literal", f.Name, v.TypeName)
		}
	}
}

func isArithmeticType(t *TypeDescriptor) bool {
	return t != nil && (t.Kind == KInt || t.Kind == KDouble)
}

func (a *Analyzer) inferUnary(v *UnaryExpr) *TypeDescriptor {
	t := a.checkExpr(v.Operand)
	if t == nil {
		return nil
	}
	switch v.Op {
	case '!':
		if t.Kind != KBool {
			a.addErr(v.Position(), ErrTypeMismatch, "'!' requires a Bool operand, got %s", ToString(t))
			return nil
		}
		return NewBoolType()
	case '-':
		if !isArithmeticType(t) {
			a.addErr(v.Position(), ErrTypeMismatch, "unary '-' requires a numeric operand, got %s", ToString(t))
			return nil
		}
		return t
	}
	return nil
}

func (a *Analyzer) inferBinary(v *BinaryExpr) *TypeDescriptor {
	lt := a.checkExpr(v.Left)
	rt := a.checkExpr(v.Right)
	if lt == nil || rt == nil {
		return nil
	}
	switch v.Op {
	case OpAdd:
		if lt.Kind == KString && rt.Kind == KString {
			return NewStringType()
		}
		return a.checkArithmetic(v, lt, rt)
	case OpSub, OpMul, OpDiv, OpMod:
		return a.checkArithmetic(v, lt, rt)
	case OpLt, OpGt, OpLe, OpGe:
		if !isArithmeticType(lt) || !isArithmeticType(rt) || !Equals(lt, rt) {
			a.addErr(v.Position(), ErrTypeMismatch, "comparison requires matching numeric operands, got %s and %s", ToString(lt), ToString(rt))
			return nil
		}
		return NewBoolType()
	case OpEq, OpNe:
		if !Compatible(lt, rt, a.classes) && !Compatible(rt, lt, a.classes) {
			a.addErr(v.Position(), ErrTypeMismatch, "cannot compare %s with %s", ToString(lt), ToString(rt))
		}
		return NewBoolType()
	case OpAnd, OpOr:
		if lt.Kind != KBool || rt.Kind != KBool {
			a.addErr(v.Position(), ErrTypeMismatch, "'%c%c' requires Bool operands, got %s and %s", byte(v.Op), byte(v.Op), ToString(lt), ToString(rt))
			return nil
		}
		return NewBoolType()
	}
	return nil
}

func (a *Analyzer) checkArithmetic(v *BinaryExpr, lt, rt *TypeDescriptor) *TypeDescriptor {
	if lt.Kind == KFloat || rt.Kind == KFloat {
		a.addErr(v.Position(), ErrTypeMismatch, "Float is not a valid arithmetic operand; use Double")
		return nil
	}
	if !isArithmeticType(lt) || !isArithmeticType(rt) || !Equals(lt, rt) {
		a.addErr(v.Position(), ErrTypeMismatch, "arithmetic requires matching Int or Double operands, got %s and %s", ToString(lt), ToString(rt))
		return nil
	}
	if v.Op == OpMod && lt.Kind != KInt {
		a.addErr(v.Position(), ErrTypeMismatch, "'%%' requires Int operands, got %s", ToString(lt))
		return nil
	}
	return lt
}

func (a *Analyzer) inferIndex(v *IndexExpr) *TypeDescriptor {
	tt := a.checkExpr(v.Target)
	it := a.checkExpr(v.Index)
	if tt == nil {
		return nil
	}
	switch tt.Kind {
	case KArray:
		if it != nil && it.Kind != KInt {
			a.addErr(v.Index.Position(), ErrTypeMismatch, "array index must be Int, got %s", ToString(it))
		}
		return tt.Element
	case KDict:
		if it != nil && !Equals(it, tt.Key) {
			a.addErr(v.Index.Position(), ErrTypeMismatch, "dict key must be %s, got %s", ToString(tt.Key), ToString(it))
		}
		return tt.ValueType
	default:
		a.addErr(v.Position(), ErrTypeMismatch, "cannot index into %s", ToString(tt))
		return nil
	}
}

func (a *Analyzer) inferMember(v *MemberExpr) *TypeDescriptor {
	tt := a.checkExpr(v.Target)
	if tt == nil {
		return nil
	}
	base := tt
	wasOptional := false
	if base.Kind == KOptional {
		if !v.Optional {
			a.addErr(v.Position(), ErrTypeMismatch, "member access on %s requires '?.'", ToString(tt))
		}
		base = base.Inner
		wasOptional = true
	}
	var fieldType *TypeDescriptor
	switch base.Kind {
	case KClass:
		for _, f := range a.classes.AllFields(base.Name) {
			if f.Name == v.Name {
				fieldType = f.Type
				break
			}
		}
	case KStruct:
		for _, f := range base.Fields {
			if f.Name == v.Name {
				fieldType = f.Type
				break
			}
		}
	default:
		a.addErr(v.Position(), ErrTypeMismatch, "cannot access member %q of %s", v.Name, ToString(tt))
		return nil
	}
	if fieldType == nil {
		a.addErr(v.Position(), ErrCompileError, "%q has no field %q", ToString(base), v.Name)
		return nil
	}
	if wasOptional || v.Optional {
		return NewOptionalType(fieldType)
	}
	return fieldType
}

func (a *Analyzer) inferCall(v *CallExpr) *TypeDescriptor {
	ident, ok := v.Callee.(*Ident)
	if !ok {
		a.addErr(v.Position(), ErrCompileError, "call target must be a name")
		return nil
	}
	if ident.Name == "range" {
		return a.checkRangeCall(v)
	}
	if cd, ok := a.reg.LookupClass(ident.Name); ok {
		a.checkArgs(v.Position(), cd.Init.Params, v.Args, "constructor "+ident.Name)
		return NewClassType(cd.Name, cd.ParentName, nil)
	}
	if fn, ok := a.reg.LookupFunction(ident.Name); ok {
		a.checkArgs(v.Position(), fn.Params, v.Args, "function "+ident.Name)
		return fn.ReturnType
	}
	a.addErr(v.Position(), ErrUndefinedVariable, "undefined function %q", ident.Name)
	for _, arg := range v.Args {
		a.checkExpr(arg)
	}
	return nil
}

func (a *Analyzer) checkRangeCall(v *CallExpr) *TypeDescriptor {
	if len(v.Args) != 1 {
		a.addErr(v.Position(), ErrCompileError, "range() takes exactly one argument")
		return NewArrayType(NewIntType())
	}
	argType := a.checkExpr(v.Args[0])
	if argType != nil && argType.Kind != KInt {
		a.addErr(v.Args[0].Position(), ErrTypeMismatch, "range() requires an Int argument, got %s", ToString(argType))
	}
	return NewArrayType(NewIntType())
}

func (a *Analyzer) checkArgs(pos Pos, params []Param, args []Expr, what string) {
	required := 0
	for _, p := range params {
		if !p.HasDefault {
			required++
		}
	}
	if len(args) < required || len(args) > len(params) {
		a.addErr(pos, ErrCompileError, "%s expects between %d and %d arguments, got %d", what, required, len(params), len(args))
	}
	for i, arg := range args {
		at := a.checkExpr(arg)
		if i >= len(params) {
			continue
		}
		if at != nil && !Compatible(at, params[i].Type, a.classes) {
			a.addErr(arg.Position(), ErrTypeMismatch, "argument %d to %s expects %s, got %s", i+1, what, ToString(params[i].Type), ToString(at))
		}
	}
}

func (a *Analyzer) inferMethodCall(v *MethodCallExpr) *TypeDescriptor {
	tt := a.checkExpr(v.Target)
	if tt == nil {
		for _, arg := range v.Args {
			a.checkExpr(arg)
		}
		return nil
	}
	base := tt
	wasOptional := false
	if base.Kind == KOptional {
		if !v.Optional {
			a.addErr(v.Position(), ErrTypeMismatch, "method call on %s requires '?.'", ToString(tt))
		}
		base = base.Inner
		wasOptional = true
	}

	switch base.Kind {
	case KArray:
		return a.checkArrayBuiltin(v, base)
	case KDict:
		return a.checkDictBuiltin(v, base)
	case KClass:
		fn, _, ok := a.classes.LookupMethod(base.Name, v.Name)
		if !ok {
			a.addErr(v.Position(), ErrCompileError, "%q has no method %q", base.Name, v.Name)
			for _, arg := range v.Args {
				a.checkExpr(arg)
			}
			return nil
		}
		a.checkArgs(v.Position(), fn.Params, v.Args, fmt.Sprintf("method %s.%s", base.Name, v.Name))
		ret := fn.ReturnType
		if wasOptional || v.Optional {
			return NewOptionalType(ret)
		}
		return ret
	default:
		a.addErr(v.Position(), ErrTypeMismatch, "cannot call method %q on %s", v.Name, ToString(tt))
		for _, arg := range v.Args {
			a.checkExpr(arg)
		}
		return nil
	}
}

func (a *Analyzer) checkArrayBuiltin(v *MethodCallExpr, arr *TypeDescriptor) *TypeDescriptor {
	switch v.Name {
	case "append":
		if len(v.Args) != 1 {
			a.addErr(v.Position(), ErrCompileError, "append() takes exactly one argument")
			return NewNilType()
		}
		at := a.checkExpr(v.Args[0])
		if at != nil && arr.Element.Kind != KNil && !Compatible(at, arr.Element, a.classes) {
			a.addErr(v.Args[0].Position(), ErrTypeMismatch, "cannot append %s to %s", ToString(at), ToString(arr))
		}
		return NewNilType()
	case "length":
		return NewIntType()
	case "removeAt":
		if len(v.Args) != 1 {
			a.addErr(v.Position(), ErrCompileError, "removeAt() takes exactly one argument")
			return arr.Element
		}
		it := a.checkExpr(v.Args[0])
		if it != nil && it.Kind != KInt {
			a.addErr(v.Args[0].Position(), ErrTypeMismatch, "removeAt() index must be Int, got %s", ToString(it))
		}
		return arr.Element
	default:
		a.addErr(v.Position(), ErrCompileError, "arrays have no method %q", v.Name)
		for _, arg := range v.Args {
			a.checkExpr(arg)
		}
		return nil
	}
}

func (a *Analyzer) checkDictBuiltin(v *MethodCallExpr, dict *TypeDescriptor) *TypeDescriptor {
	switch v.Name {
	case "set":
		if len(v.Args) != 2 {
			a.addErr(v.Position(), ErrCompileError, "set() takes exactly two arguments")
			return NewNilType()
		}
		kt := a.checkExpr(v.Args[0])
		vt := a.checkExpr(v.Args[1])
		if kt != nil && !Equals(kt, dict.Key) {
			a.addErr(v.Args[0].Position(), ErrTypeMismatch, "dict key must be %s, got %s", ToString(dict.Key), ToString(kt))
		}
		if vt != nil && dict.ValueType.Kind != KNil && !Compatible(vt, dict.ValueType, a.classes) {
			a.addErr(v.Args[1].Position(), ErrTypeMismatch, "dict value must be %s, got %s", ToString(dict.ValueType), ToString(vt))
		}
		return NewNilType()
	case "containsKey":
		if len(v.Args) != 1 {
			a.addErr(v.Position(), ErrCompileError, "containsKey() takes exactly one argument")
		} else {
			a.checkExpr(v.Args[0])
		}
		return NewBoolType()
	case "delete":
		if len(v.Args) != 1 {
			a.addErr(v.Position(), ErrCompileError, "delete() takes exactly one argument")
		} else {
			a.checkExpr(v.Args[0])
		}
		return NewBoolType()
	case "length":
		return NewIntType()
	default:
		a.addErr(v.Position(), ErrCompileError, "dicts have no method %q", v.Name)
		for _, arg := range v.Args {
			a.checkExpr(arg)
		}
		return nil
	}
}

// unify returns the least upper bound of a and b for array/dict
// literal element unification: identical types, class-ancestor
// widening to the nearest common ancestor, or nil if they don't unify.
func unify(a_, b *TypeDescriptor, classes *ClassRegistry) *TypeDescriptor {
	if Equals(a_, b) {
		return a_
	}
	if a_.Kind == KClass && b.Kind == KClass {
		aChain := classes.Ancestors(a_.Name)
		bSeen := map[string]bool{}
		for _, n := range classes.Ancestors(b.Name) {
			bSeen[n] = true
		}
		for _, n := range aChain {
			if bSeen[n] {
				return NewClassType(n, "", nil)
			}
		}
		return nil
	}
	if Compatible(a_, b, classes) {
		return a_
	}
	if Compatible(b, a_, classes) {
		return b
	}
	return nil
}
