package bread

import "fmt"

// signal is the non-local control-flow outcome of executing a
// statement list: ordinary fallthrough, or an in-flight break,
// continue, or return propagating up to its enclosing loop/function.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
)

type execResult struct {
	sig       signal
	returnVal Value
}

// Interpreter evaluates a type-checked Program tree directly (no
// separate bytecode stage — spec §6 leaves code generation to a
// separate backend collaborator), threading one ScopeStack and one
// ErrorContext through every call.
type Interpreter struct {
	reg     *Registry
	classes *ClassRegistry
	scopes  *ScopeStack
	errs    *ErrorContext
}

// NewInterpreter builds an interpreter over an already-analyzed
// program's registry (spec §4.5 must run first). ops.go reads the
// analyzer's TypeDescriptor annotations only for array/dict literal
// element tags and otherwise checks runtime value tags as it evaluates.
func NewInterpreter(reg *Registry, errs *ErrorContext) *Interpreter {
	return &Interpreter{
		reg:     reg,
		classes: reg.AsClassRegistry(),
		scopes:  NewScopeStack(),
		errs:    errs,
	}
}

// Run executes prog's top-level statements at global scope.
func (in *Interpreter) Run(prog *Program) error {
	_, err := in.execStmts(prog.Stmts)
	return err
}

func (in *Interpreter) runtimeErr(pos Pos, category ErrorCategory, format string, args ...interface{}) error {
	e := &BreadError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Line:     pos.Line,
		Column:   pos.Column,
	}
	in.errs.SetWithContext(e.Category, e.Message, e.Filename, e.Line, e.Column, "")
	if category.isRuntimeCategory() {
		in.errs.Abort()
	}
	return e
}

// ---- statements ----

func (in *Interpreter) execStmts(stmts []Stmt) (execResult, error) {
	for _, s := range stmts {
		res, err := in.execStmt(s)
		if err != nil {
			return execResult{}, err
		}
		if res.sig != sigNone {
			return res, nil
		}
	}
	return execResult{}, nil
}

func (in *Interpreter) execStmt(s Stmt) (execResult, error) {
	switch v := s.(type) {
	case *ImportStmt, *ExportDeclStmt:
		// resolved ahead of time by module.go's linker; by the time
		// the interpreter walks a program, imports have already been
		// spliced into its statement list.
		if ed, ok := s.(*ExportDeclStmt); ok {
			return in.execStmt(ed.Inner)
		}
		return execResult{}, nil
	case *VarDeclStmt:
		val, err := in.evalExpr(v.Init)
		if err != nil {
			return execResult{}, err
		}
		val = in.coerce(val, v.DeclaredType)
		if err := in.scopes.Declare(v.Name, v.DeclaredType, val, v.Kind == DeclConst); err != nil {
			return execResult{}, in.runtimeErr(v.Position(), ErrRuntimeError, "%s", err)
		}
		return execResult{}, nil
	case *AssignStmt:
		return execResult{}, in.execAssign(v)
	case *PrintStmt:
		val, err := in.evalExpr(v.Value)
		if err != nil {
			return execResult{}, err
		}
		fmt.Println(val.String())
		return execResult{}, nil
	case *ExprStmt:
		_, err := in.evalExpr(v.Value)
		return execResult{}, err
	case *IfStmt:
		return in.execIf(v)
	case *WhileStmt:
		return in.execWhile(v)
	case *ForInStmt:
		return in.execForIn(v)
	case *BreakStmt:
		return execResult{sig: sigBreak}, nil
	case *ContinueStmt:
		return execResult{sig: sigContinue}, nil
	case *ReturnStmt:
		var val Value = NilValue
		if v.Value != nil {
			var err error
			val, err = in.evalExpr(v.Value)
			if err != nil {
				return execResult{}, err
			}
		}
		return execResult{sig: sigReturn, returnVal: val}, nil
	case *FuncDeclStmt, *StructDeclStmt, *ClassDeclStmt:
		// already registered by the analyzer's pass 1.
		return execResult{}, nil
	default:
		return execResult{}, in.runtimeErr(s.Position(), ErrRuntimeError, "internal: unhandled statement %T", s)
	}
}

// coerce applies the Nil -> Optional<T> / T -> Optional<T> relaxations
// at the value level, wrapping when the declared type is Optional and
// the value itself is not already one.
func (in *Interpreter) coerce(v Value, declared *TypeDescriptor) Value {
	if declared == nil || declared.Kind != KOptional || v.Tag == TagOptional {
		return v
	}
	if v.Tag == TagNil {
		return NewNone()
	}
	return NewSome(v)
}

func (in *Interpreter) execAssign(v *AssignStmt) error {
	var newVal Value
	if v.Op == "=" {
		val, err := in.evalExpr(v.Value)
		if err != nil {
			return err
		}
		newVal = val
	} else {
		cur, err := in.evalExpr(v.Target)
		if err != nil {
			return err
		}
		rhs, err := in.evalExpr(v.Value)
		if err != nil {
			return err
		}
		op := compoundToBinOp(v.Op)
		newVal, err = in.binaryOp(v.Position(), op, cur, rhs)
		if err != nil {
			return err
		}
	}
	switch target := v.Target.(type) {
	case *Ident:
		if err := in.scopes.AssignVariable(target.Name, newVal); err != nil {
			return in.runtimeErr(v.Position(), ErrRuntimeError, "%s", err)
		}
		return nil
	case *IndexExpr:
		return in.assignIndex(target, newVal)
	case *MemberExpr:
		return in.assignMember(target, newVal)
	default:
		return in.runtimeErr(v.Position(), ErrRuntimeError, "invalid assignment target")
	}
}

func compoundToBinOp(op string) BinOp {
	switch op {
	case "+=":
		return OpAdd
	case "-=":
		return OpSub
	case "*=":
		return OpMul
	case "/=":
		return OpDiv
	case "%=":
		return OpMod
	default:
		return OpAdd
	}
}

func (in *Interpreter) assignIndex(target *IndexExpr, newVal Value) error {
	t, err := in.evalExpr(target.Target)
	if err != nil {
		return err
	}
	idx, err := in.evalExpr(target.Index)
	if err != nil {
		return err
	}
	switch t.Tag {
	case TagArray:
		arr := arrayOf(t)
		if err := arr.SetAt(int(idx.Int()), newVal); err != nil {
			return in.runtimeErr(target.Position(), ErrIndexOutOfBounds, "%s", err)
		}
		return nil
	case TagDict:
		d := dictOf(t)
		if err := d.Set(idx, newVal, idx.Tag, newVal.Tag); err != nil {
			return in.runtimeErr(target.Position(), ErrTypeMismatch, "%s", err)
		}
		return nil
	default:
		return in.runtimeErr(target.Position(), ErrTypeMismatch, "cannot index-assign into %s", t.Tag)
	}
}

func (in *Interpreter) assignMember(target *MemberExpr, newVal Value) error {
	t, err := in.evalExpr(target.Target)
	if err != nil {
		return err
	}
	switch t.Tag {
	case TagStruct:
		if !structOf(t).SetField(target.Name, newVal) {
			return in.runtimeErr(target.Position(), ErrRuntimeError, "no field %q", target.Name)
		}
		return nil
	case TagClass:
		if !classOf(t).SetField(target.Name, newVal) {
			return in.runtimeErr(target.Position(), ErrRuntimeError, "no field %q", target.Name)
		}
		return nil
	default:
		return in.runtimeErr(target.Position(), ErrTypeMismatch, "cannot set member on %s", t.Tag)
	}
}

func (in *Interpreter) execIf(v *IfStmt) (execResult, error) {
	cond, err := in.evalExpr(v.Cond)
	if err != nil {
		return execResult{}, err
	}
	in.scopes.PushScope()
	defer in.scopes.PopScope()
	if cond.IsTruthy() {
		return in.execStmts(v.Then)
	}
	return in.execStmts(v.Else)
}

func (in *Interpreter) execWhile(v *WhileStmt) (execResult, error) {
	for {
		cond, err := in.evalExpr(v.Cond)
		if err != nil {
			return execResult{}, err
		}
		if !cond.IsTruthy() {
			return execResult{}, nil
		}
		in.scopes.PushScope()
		res, err := in.execStmts(v.Body)
		in.scopes.PopScope()
		if err != nil {
			return execResult{}, err
		}
		switch res.sig {
		case sigBreak:
			return execResult{}, nil
		case sigReturn:
			return res, nil
		}
	}
}

func (in *Interpreter) execForIn(v *ForInStmt) (execResult, error) {
	iter, err := in.evalExpr(v.Iter)
	if err != nil {
		return execResult{}, err
	}
	var items []Value
	switch iter.Tag {
	case TagArray:
		items = arrayOf(iter).Elements
	case TagDict:
		d := dictOf(iter)
		for _, e := range d.Entries {
			if e.IsOccupied && !e.IsDeleted {
				items = append(items, e.Key)
			}
		}
	default:
		return execResult{}, in.runtimeErr(v.Position(), ErrTypeMismatch, "cannot iterate over %s", iter.Tag)
	}
	for _, item := range items {
		in.scopes.PushScope()
		if err := in.scopes.Declare(v.VarName, nil, item, false); err != nil {
			in.scopes.PopScope()
			return execResult{}, in.runtimeErr(v.Position(), ErrRuntimeError, "%s", err)
		}
		res, err := in.execStmts(v.Body)
		in.scopes.PopScope()
		if err != nil {
			return execResult{}, err
		}
		if res.sig == sigBreak {
			break
		}
		if res.sig == sigReturn {
			return res, nil
		}
	}
	return execResult{}, nil
}

// ---- expressions ----

func (in *Interpreter) evalExpr(e Expr) (Value, error) {
	switch v := e.(type) {
	case *IntLit:
		return SetInt(v.Value), nil
	case *FloatLit:
		return SetFloat(v.Value), nil
	case *DoubleLit:
		return SetDouble(v.Value), nil
	case *BoolLit:
		return SetBool(v.Value), nil
	case *StringLit:
		return NewStringLiteral(v.Value), nil
	case *NilLit:
		return NilValue, nil
	case *Ident:
		variable, ok := in.scopes.GetVariable(v.Name)
		if !ok {
			return NilValue, in.runtimeErr(v.Position(), ErrUndefinedVariable, "undefined variable %q", v.Name)
		}
		return variable.Value, nil
	case *SelfExpr:
		variable, ok := in.scopes.GetVariable("self")
		if !ok {
			return NilValue, in.runtimeErr(v.Position(), ErrRuntimeError, "'self' used outside a method")
		}
		return variable.Value, nil
	case *SuperExpr:
		variable, ok := in.scopes.GetVariable("self")
		if !ok {
			return NilValue, in.runtimeErr(v.Position(), ErrRuntimeError, "'super' used outside a method")
		}
		return variable.Value, nil
	case *ArrayLit:
		return in.evalArrayLit(v)
	case *DictLit:
		return in.evalDictLit(v)
	case *StructLit:
		return in.evalStructLit(v)
	case *UnaryExpr:
		return in.evalUnary(v)
	case *BinaryExpr:
		return in.evalBinary(v)
	case *IndexExpr:
		return in.evalIndex(v)
	case *MemberExpr:
		return in.evalMember(v)
	case *CallExpr:
		return in.evalCall(v)
	case *MethodCallExpr:
		return in.evalMethodCall(v)
	default:
		return NilValue, in.runtimeErr(e.Position(), ErrRuntimeError, "internal: unhandled expression %T", e)
	}
}

func (in *Interpreter) evalArrayLit(v *ArrayLit) (Value, error) {
	var elemTag ValueTag = TagNil
	if v.Type() != nil && v.Type().Kind == KArray {
		elemTag = tagForKind(v.Type().Element.Kind)
	}
	arr := NewArray(elemTag)
	obj := arrayOf(arr)
	for _, el := range v.Elements {
		ev, err := in.evalExpr(el)
		if err != nil {
			return NilValue, err
		}
		if err := obj.Append(ev, ev.Tag); err != nil {
			return NilValue, in.runtimeErr(el.Position(), ErrTypeMismatch, "%s", err)
		}
	}
	return arr, nil
}

func (in *Interpreter) evalDictLit(v *DictLit) (Value, error) {
	var keyTag, valTag ValueTag = TagNil, TagNil
	if v.Type() != nil && v.Type().Kind == KDict {
		keyTag = tagForKind(v.Type().Key.Kind)
		valTag = tagForKind(v.Type().ValueType.Kind)
	}
	d := NewDict(keyTag, valTag)
	obj := dictOf(d)
	for i := range v.Keys {
		kv, err := in.evalExpr(v.Keys[i])
		if err != nil {
			return NilValue, err
		}
		vv, err := in.evalExpr(v.Values[i])
		if err != nil {
			return NilValue, err
		}
		if err := obj.Set(kv, vv, kv.Tag, vv.Tag); err != nil {
			return NilValue, in.runtimeErr(v.Position(), ErrTypeMismatch, "%s", err)
		}
	}
	return d, nil
}

func (in *Interpreter) evalStructLit(v *StructLit) (Value, error) {
	values := make([]Value, len(v.FieldValues))
	for i, fv := range v.FieldValues {
		val, err := in.evalExpr(fv)
		if err != nil {
			return NilValue, err
		}
		values[i] = val
	}
	if cd, ok := in.reg.LookupClass(v.TypeName); ok {
		fields := in.classes.AllFields(v.TypeName)
		names := make([]string, len(fields))
		ordered := make([]Value, len(fields))
		for i, f := range fields {
			names[i] = f.Name
			ordered[i] = NilValue
		}
		for i, name := range v.FieldNames {
			for j, n := range names {
				if n == name {
					ordered[j] = values[i]
				}
			}
		}
		return NewClassInstance(cd.Name, cd.ParentName, names, ordered), nil
	}
	return NewStruct(v.TypeName, v.FieldNames, values), nil
}

func (in *Interpreter) evalUnary(v *UnaryExpr) (Value, error) {
	val, err := in.evalExpr(v.Operand)
	if err != nil {
		return NilValue, err
	}
	switch v.Op {
	case '!':
		return SetBool(!val.IsTruthy()), nil
	case '-':
		switch val.Tag {
		case TagInt:
			return SetInt(-val.Int()), nil
		case TagDouble:
			return SetDouble(-val.Double()), nil
		case TagFloat:
			return SetFloat(-val.Float()), nil
		}
	}
	return NilValue, in.runtimeErr(v.Position(), ErrRuntimeError, "invalid unary operand")
}

func (in *Interpreter) evalBinary(v *BinaryExpr) (Value, error) {
	if v.Op == OpAnd {
		l, err := in.evalExpr(v.Left)
		if err != nil {
			return NilValue, err
		}
		if !l.IsTruthy() {
			return SetBool(false), nil
		}
		r, err := in.evalExpr(v.Right)
		if err != nil {
			return NilValue, err
		}
		return SetBool(r.IsTruthy()), nil
	}
	if v.Op == OpOr {
		l, err := in.evalExpr(v.Left)
		if err != nil {
			return NilValue, err
		}
		if l.IsTruthy() {
			return SetBool(true), nil
		}
		r, err := in.evalExpr(v.Right)
		if err != nil {
			return NilValue, err
		}
		return SetBool(r.IsTruthy()), nil
	}
	l, err := in.evalExpr(v.Left)
	if err != nil {
		return NilValue, err
	}
	r, err := in.evalExpr(v.Right)
	if err != nil {
		return NilValue, err
	}
	return in.binaryOp(v.Position(), v.Op, l, r)
}

func (in *Interpreter) binaryOp(pos Pos, op BinOp, l, r Value) (Value, error) {
	if op == OpAdd && l.Tag == TagString && r.Tag == TagString {
		return NewStringDynamic(stringOf(l).Bytes + stringOf(r).Bytes), nil
	}
	if op == OpEq {
		return SetBool(valuesEqual(l, r)), nil
	}
	if op == OpNe {
		return SetBool(!valuesEqual(l, r)), nil
	}
	switch l.Tag {
	case TagInt:
		if r.Tag != TagInt {
			return NilValue, in.runtimeErr(pos, ErrTypeMismatch, "operand type mismatch")
		}
		return in.intOp(pos, op, l.Int(), r.Int())
	case TagDouble:
		if r.Tag != TagDouble {
			return NilValue, in.runtimeErr(pos, ErrTypeMismatch, "operand type mismatch")
		}
		return in.doubleOp(pos, op, l.Double(), r.Double())
	default:
		return NilValue, in.runtimeErr(pos, ErrTypeMismatch, "unsupported operand type for binary op")
	}
}

func (in *Interpreter) intOp(pos Pos, op BinOp, a, b int64) (Value, error) {
	switch op {
	case OpAdd:
		return SetInt(a + b), nil
	case OpSub:
		return SetInt(a - b), nil
	case OpMul:
		return SetInt(a * b), nil
	case OpDiv:
		if b == 0 {
			return NilValue, in.runtimeErr(pos, ErrDivisionByZero, "division by zero")
		}
		return SetInt(a / b), nil
	case OpMod:
		if b == 0 {
			return NilValue, in.runtimeErr(pos, ErrDivisionByZero, "division by zero")
		}
		return SetInt(a % b), nil
	case OpLt:
		return SetBool(a < b), nil
	case OpGt:
		return SetBool(a > b), nil
	case OpLe:
		return SetBool(a <= b), nil
	case OpGe:
		return SetBool(a >= b), nil
	}
	return NilValue, in.runtimeErr(pos, ErrRuntimeError, "unsupported Int operator")
}

func (in *Interpreter) doubleOp(pos Pos, op BinOp, a, b float64) (Value, error) {
	switch op {
	case OpAdd:
		return SetDouble(a + b), nil
	case OpSub:
		return SetDouble(a - b), nil
	case OpMul:
		return SetDouble(a * b), nil
	case OpDiv:
		if b == 0 {
			return NilValue, in.runtimeErr(pos, ErrDivisionByZero, "division by zero")
		}
		return SetDouble(a / b), nil
	case OpLt:
		return SetBool(a < b), nil
	case OpGt:
		return SetBool(a > b), nil
	case OpLe:
		return SetBool(a <= b), nil
	case OpGe:
		return SetBool(a >= b), nil
	}
	return NilValue, in.runtimeErr(pos, ErrRuntimeError, "unsupported Double operator")
}

func valuesEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return a.Tag == TagNil || b.Tag == TagNil
	}
	switch a.Tag {
	case TagNil:
		return true
	case TagBool:
		return a.Bool() == b.Bool()
	case TagInt:
		return a.Int() == b.Int()
	case TagDouble:
		return a.Double() == b.Double()
	case TagFloat:
		return a.Float() == b.Float()
	case TagString:
		return stringOf(a).Bytes == stringOf(b).Bytes
	default:
		return a.heapObj() == b.heapObj()
	}
}

func (in *Interpreter) evalIndex(v *IndexExpr) (Value, error) {
	t, err := in.evalExpr(v.Target)
	if err != nil {
		return NilValue, err
	}
	idx, err := in.evalExpr(v.Index)
	if err != nil {
		return NilValue, err
	}
	switch t.Tag {
	case TagArray:
		val, err := arrayOf(t).At(int(idx.Int()))
		if err != nil {
			return NilValue, in.runtimeErr(v.Position(), ErrIndexOutOfBounds, "%s", err)
		}
		return val, nil
	case TagDict:
		val, ok := dictOf(t).Get(idx)
		if !ok {
			return NilValue, nil
		}
		return val, nil
	default:
		return NilValue, in.runtimeErr(v.Position(), ErrTypeMismatch, "cannot index %s", t.Tag)
	}
}

func (in *Interpreter) evalMember(v *MemberExpr) (Value, error) {
	t, err := in.evalExpr(v.Target)
	if err != nil {
		return NilValue, err
	}
	base := t
	wasOptional := false
	if base.Tag == TagOptional {
		opt := optionalOf(base)
		if !opt.IsSome {
			return NewNone(), nil
		}
		base = opt.Value
		wasOptional = true
	}
	var val Value
	var ok bool
	switch base.Tag {
	case TagStruct:
		val, ok = structOf(base).Field(v.Name)
	case TagClass:
		val, ok = classOf(base).Field(v.Name)
	default:
		return NilValue, in.runtimeErr(v.Position(), ErrTypeMismatch, "cannot access member %q of %s", v.Name, base.Tag)
	}
	if !ok {
		return NilValue, in.runtimeErr(v.Position(), ErrRuntimeError, "no field %q", v.Name)
	}
	if wasOptional || v.Optional {
		return NewSome(val), nil
	}
	return val, nil
}

func (in *Interpreter) evalCall(v *CallExpr) (Value, error) {
	ident, ok := v.Callee.(*Ident)
	if !ok {
		return NilValue, in.runtimeErr(v.Position(), ErrRuntimeError, "call target must be a name")
	}
	if ident.Name == "range" {
		return in.builtinRange(v)
	}
	args, err := in.evalArgs(v.Args)
	if err != nil {
		return NilValue, err
	}
	if cd, ok := in.reg.LookupClass(ident.Name); ok {
		return in.construct(v.Position(), cd, args)
	}
	fn, ok := in.reg.LookupFunction(ident.Name)
	if !ok {
		return NilValue, in.runtimeErr(v.Position(), ErrUndefinedVariable, "undefined function %q", ident.Name)
	}
	return in.callFunction(fn, nil, args)
}

func (in *Interpreter) builtinRange(v *CallExpr) (Value, error) {
	n, err := in.evalExpr(v.Args[0])
	if err != nil {
		return NilValue, err
	}
	arr := NewArray(TagInt)
	obj := arrayOf(arr)
	for i := int64(0); i < n.Int(); i++ {
		obj.Append(SetInt(i), TagInt)
	}
	return arr, nil
}

func (in *Interpreter) evalArgs(exprs []Expr) ([]Value, error) {
	args := make([]Value, len(exprs))
	for i, e := range exprs {
		v, err := in.evalExpr(e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (in *Interpreter) construct(pos Pos, cd *ClassDecl, args []Value) (Value, error) {
	fields := in.classes.AllFields(cd.Name)
	names := make([]string, len(fields))
	values := make([]Value, len(fields))
	for i, f := range fields {
		names[i] = f.Name
		values[i] = NilValue
	}
	instance := NewClassInstance(cd.Name, cd.ParentName, names, values)
	if _, err := in.callFunction(cd.Init, &instance, args); err != nil {
		return NilValue, err
	}
	return instance, nil
}

// callFunction pushes a new scope, binds self (if selfVal is non-nil)
// and parameters (applying defaults for omitted trailing arguments),
// executes the body, and returns its return value (Nil if it falls
// off the end, permitted only for Nil-returning functions per the
// analyzer's return-path coverage check).
func (in *Interpreter) callFunction(fn *FunctionDecl, selfVal *Value, args []Value) (Value, error) {
	in.scopes.PushScope()
	defer in.scopes.PopScope()
	if selfVal != nil {
		if err := in.scopes.Declare("self", nil, *selfVal, true); err != nil {
			return NilValue, in.runtimeErr(fn.Pos, ErrRuntimeError, "%s", err)
		}
	}
	for i, p := range fn.Params {
		var val Value
		if i < len(args) {
			val = args[i]
		} else if p.HasDefault {
			dv, err := in.evalExpr(p.Default)
			if err != nil {
				return NilValue, err
			}
			val = dv
		} else {
			return NilValue, in.runtimeErr(fn.Pos, ErrRuntimeError, "missing argument %q", p.Name)
		}
		if err := in.scopes.Declare(p.Name, p.Type, val, false); err != nil {
			return NilValue, in.runtimeErr(fn.Pos, ErrRuntimeError, "%s", err)
		}
	}
	res, err := in.execStmts(fn.Body)
	if err != nil {
		return NilValue, err
	}
	if res.sig == sigReturn {
		return res.returnVal, nil
	}
	return NilValue, nil
}

func (in *Interpreter) evalMethodCall(v *MethodCallExpr) (Value, error) {
	t, err := in.evalExpr(v.Target)
	if err != nil {
		return NilValue, err
	}
	base := t
	wasOptional := false
	if base.Tag == TagOptional {
		opt := optionalOf(base)
		if !opt.IsSome {
			return NewNone(), nil
		}
		base = opt.Value
		wasOptional = true
	}
	switch base.Tag {
	case TagArray:
		return in.arrayBuiltin(v, base)
	case TagDict:
		return in.dictBuiltin(v, base)
	case TagClass:
		classObj := classOf(base)
		fn, _, ok := in.classes.LookupMethod(classObj.TypeName, v.Name)
		if !ok {
			return NilValue, in.runtimeErr(v.Position(), ErrRuntimeError, "%q has no method %q", classObj.TypeName, v.Name)
		}
		args, err := in.evalArgs(v.Args)
		if err != nil {
			return NilValue, err
		}
		result, err := in.callFunction(fn, &base, args)
		if err != nil {
			return NilValue, err
		}
		if wasOptional || v.Optional {
			return NewSome(result), nil
		}
		return result, nil
	default:
		return NilValue, in.runtimeErr(v.Position(), ErrTypeMismatch, "cannot call method %q on %s", v.Name, base.Tag)
	}
}

func (in *Interpreter) arrayBuiltin(v *MethodCallExpr, arrVal Value) (Value, error) {
	arr := arrayOf(arrVal)
	switch v.Name {
	case "append":
		ev, err := in.evalExpr(v.Args[0])
		if err != nil {
			return NilValue, err
		}
		if err := arr.Append(ev, ev.Tag); err != nil {
			return NilValue, in.runtimeErr(v.Position(), ErrTypeMismatch, "%s", err)
		}
		return NilValue, nil
	case "length":
		return SetInt(int64(arr.Len())), nil
	case "removeAt":
		idx, err := in.evalExpr(v.Args[0])
		if err != nil {
			return NilValue, err
		}
		val, err := arr.RemoveAt(int(idx.Int()))
		if err != nil {
			return NilValue, in.runtimeErr(v.Position(), ErrIndexOutOfBounds, "%s", err)
		}
		return val, nil
	default:
		return NilValue, in.runtimeErr(v.Position(), ErrRuntimeError, "arrays have no method %q", v.Name)
	}
}

func (in *Interpreter) dictBuiltin(v *MethodCallExpr, dictVal Value) (Value, error) {
	d := dictOf(dictVal)
	switch v.Name {
	case "set":
		kv, err := in.evalExpr(v.Args[0])
		if err != nil {
			return NilValue, err
		}
		vv, err := in.evalExpr(v.Args[1])
		if err != nil {
			return NilValue, err
		}
		if err := d.Set(kv, vv, kv.Tag, vv.Tag); err != nil {
			return NilValue, in.runtimeErr(v.Position(), ErrTypeMismatch, "%s", err)
		}
		return NilValue, nil
	case "containsKey":
		kv, err := in.evalExpr(v.Args[0])
		if err != nil {
			return NilValue, err
		}
		return SetBool(d.ContainsKey(kv)), nil
	case "delete":
		kv, err := in.evalExpr(v.Args[0])
		if err != nil {
			return NilValue, err
		}
		return SetBool(d.Delete(kv)), nil
	case "length":
		return SetInt(int64(d.Len())), nil
	default:
		return NilValue, in.runtimeErr(v.Position(), ErrRuntimeError, "dicts have no method %q", v.Name)
	}
}
