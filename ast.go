package bread

// Pos is a source location, computed on demand from line/column
// counters kept by the lexer (spec §4.3: "computed on demand from a
// pointer into the buffer").
type Pos struct {
	Line   int
	Column int
}

// node is embedded by every Expr/Stmt implementation, carrying its
// source position and, after semantic analysis, its inferred
// TypeDescriptor (spec invariant 4: "every AST expression node
// carries an annotated TypeDescriptor").
type node struct {
	pos Pos
	typ *TypeDescriptor
}

func (n node) Position() Pos            { return n.pos }
func (n *node) Type() *TypeDescriptor    { return n.typ }
func (n *node) SetType(t *TypeDescriptor) { n.typ = t }

// Expr is any expression AST node.
type Expr interface {
	Position() Pos
	Type() *TypeDescriptor
	SetType(*TypeDescriptor)
	exprNode()
}

// Stmt is any statement AST node.
type Stmt interface {
	Position() Pos
	stmtNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Stmts []Stmt
}

// ---- Expressions ----

type IntLit struct {
	node
	Value int64
}

func (*IntLit) exprNode() {}

type FloatLit struct {
	node
	Value float32
}

func (*FloatLit) exprNode() {}

type DoubleLit struct {
	node
	Value float64
}

func (*DoubleLit) exprNode() {}

type BoolLit struct {
	node
	Value bool
}

func (*BoolLit) exprNode() {}

type StringLit struct {
	node
	Value string
}

func (*StringLit) exprNode() {}

type NilLit struct{ node }

func (*NilLit) exprNode() {}

type Ident struct {
	node
	Name string
}

func (*Ident) exprNode() {}

type SelfExpr struct{ node }

func (*SelfExpr) exprNode() {}

type SuperExpr struct{ node }

func (*SuperExpr) exprNode() {}

// ArrayLit is an array literal; empty ([]) has zero Elements.
type ArrayLit struct {
	node
	Elements []Expr
}

func (*ArrayLit) exprNode() {}

// DictLit is a dict literal; `[:]` is the empty dict (zero Keys/Values).
type DictLit struct {
	node
	Keys   []Expr
	Values []Expr
}

func (*DictLit) exprNode() {}

// StructLit is `Name{field: expr, ...}`, used for both struct and
// class construction at parse time (the analyzer disambiguates).
type StructLit struct {
	node
	TypeName    string
	FieldNames  []string
	FieldValues []Expr
}

func (*StructLit) exprNode() {}

// UnaryExpr is `-x` or `!x`.
type UnaryExpr struct {
	node
	Op      byte
	Operand Expr
}

func (*UnaryExpr) exprNode() {}

// BinOp encodes a binary operator; comparison operators are encoded
// with the parser's historical single-char tags (spec §4.3):
// '<=' -> 'l', '>=' -> 'g', '==' -> '=', '!=' -> '!'.
type BinOp byte

const (
	OpAdd BinOp = '+'
	OpSub BinOp = '-'
	OpMul BinOp = '*'
	OpDiv BinOp = '/'
	OpMod BinOp = '%'
	OpLt  BinOp = '<'
	OpGt  BinOp = '>'
	OpLe  BinOp = 'l'
	OpGe  BinOp = 'g'
	OpEq  BinOp = '='
	OpNe  BinOp = '!'
	OpAnd BinOp = '&'
	OpOr  BinOp = '|'
)

type BinaryExpr struct {
	node
	Op    BinOp
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

type IndexExpr struct {
	node
	Target Expr
	Index  Expr
}

func (*IndexExpr) exprNode() {}

type MemberExpr struct {
	node
	Target   Expr
	Name     string
	Optional bool
}

func (*MemberExpr) exprNode() {}

// CallExpr covers both function calls and class-constructor calls;
// Callee is typically an *Ident. OptionalChain is true for `?.(args)`.
type CallExpr struct {
	node
	Callee        Expr
	Args          []Expr
	OptionalChain bool
}

func (*CallExpr) exprNode() {}

// MethodCallExpr is `target.name(args)` / `target?.name(args)`.
type MethodCallExpr struct {
	node
	Target   Expr
	Name     string
	Args     []Expr
	Optional bool
}

func (*MethodCallExpr) exprNode() {}

// ---- Statements ----

type stmtBase struct{ pos Pos }

func (s stmtBase) Position() Pos { return s.pos }

type ImportStmt struct {
	stmtBase
	Path  string
	Alias string
}

func (*ImportStmt) stmtNode() {}

type ExportStmt struct {
	stmtBase
	Name string
}

func (*ExportStmt) stmtNode() {}

// DeclKind distinguishes let/var/const declarations.
type DeclKind int

const (
	DeclLet DeclKind = iota
	DeclVar
	DeclConst
)

type VarDeclStmt struct {
	stmtBase
	Kind         DeclKind
	Name         string
	DeclaredType *TypeDescriptor
	Init         Expr
}

func (*VarDeclStmt) stmtNode() {}

// AssignStmt is simple (`=`), compound (`+=`, `-=`, ...), indexed
// (`a[i] = v`), or member (`o.f = v`) assignment, distinguished by
// the shape of Target.
type AssignStmt struct {
	stmtBase
	Target Expr
	Op     string // "=", "+=", "-=", "*=", "/=", "%="
	Value  Expr
}

func (*AssignStmt) stmtNode() {}

type PrintStmt struct {
	stmtBase
	Value Expr
}

func (*PrintStmt) stmtNode() {}

type ExprStmt struct {
	stmtBase
	Value Expr
}

func (*ExprStmt) stmtNode() {}

type IfStmt struct {
	stmtBase
	Cond Expr
	Then []Stmt
	Else []Stmt // may contain a single *IfStmt for `else if`
}

func (*IfStmt) stmtNode() {}

type WhileStmt struct {
	stmtBase
	Cond Expr
	Body []Stmt
}

func (*WhileStmt) stmtNode() {}

type ForInStmt struct {
	stmtBase
	VarName string
	Iter    Expr
	Body    []Stmt
}

func (*ForInStmt) stmtNode() {}

type BreakStmt struct{ stmtBase }

func (*BreakStmt) stmtNode() {}

type ContinueStmt struct{ stmtBase }

func (*ContinueStmt) stmtNode() {}

type ReturnStmt struct {
	stmtBase
	Value Expr // nil for bare `return`
}

func (*ReturnStmt) stmtNode() {}

// FuncDeclStmt wraps a registered FunctionDecl as a top-level statement.
type FuncDeclStmt struct {
	stmtBase
	Decl *FunctionDecl
}

func (*FuncDeclStmt) stmtNode() {}

type StructDeclStmt struct {
	stmtBase
	Decl *StructDecl
}

func (*StructDeclStmt) stmtNode() {}

type ClassDeclStmt struct {
	stmtBase
	Decl *ClassDecl
}

func (*ClassDeclStmt) stmtNode() {}

// ExportDeclStmt marks Inner's declared name as an export of the
// enclosing module (spec §4.7); the module linker registers it in
// that module's Exports map. There is no global "module.symbol"
// qualified-name table. At most one export per module may set IsDefault; an
// aliased import binds its alias as a const variable to that export's
// value (spec §4.7 point 3, glossary "Default export").
type ExportDeclStmt struct {
	stmtBase
	Inner     Stmt
	Name      string
	IsDefault bool
}

func (*ExportDeclStmt) stmtNode() {}
