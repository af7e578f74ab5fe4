package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseProgram(t *testing.T, src string) *Program {
	t.Helper()
	p, err := NewParser(src, "test.bread")
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	return prog
}

func TestParseVarDecl(t *testing.T) {
	prog := parseProgram(t, `let x: Int = 1`)
	require.Len(t, prog.Stmts, 1)
	decl, ok := prog.Stmts[0].(*VarDeclStmt)
	require.True(t, ok)
	assert.Equal(t, DeclLet, decl.Kind)
	assert.Equal(t, "x", decl.Name)
	assert.Equal(t, "Int", ToString(decl.DeclaredType))
}

func TestParseVarDeclRequiresTypeAnnotation(t *testing.T) {
	_, err := NewParser(`let x = 1`, "test.bread")
	require.NoError(t, err)
	p, _ := NewParser(`let x = 1`, "test.bread")
	_, err = p.ParseProgram()
	assert.Error(t, err)
}

func TestParseIfElseIf(t *testing.T) {
	prog := parseProgram(t, `
		if x > 0 {
			print(1)
		} else if x < 0 {
			print(2)
		} else {
			print(3)
		}
	`)
	require.Len(t, prog.Stmts, 1)
	ifs, ok := prog.Stmts[0].(*IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.Else, 1)
	_, ok = ifs.Else[0].(*IfStmt)
	assert.True(t, ok, "else-if should nest as an IfStmt")
}

func TestParseWhileAndForIn(t *testing.T) {
	prog := parseProgram(t, `
		while x < 10 {
			x = x + 1
		}
		for item in items {
			print(item)
		}
	`)
	require.Len(t, prog.Stmts, 2)
	_, ok := prog.Stmts[0].(*WhileStmt)
	assert.True(t, ok)
	forIn, ok := prog.Stmts[1].(*ForInStmt)
	require.True(t, ok)
	assert.Equal(t, "item", forIn.VarName)
}

func TestParseStructLiteralVsBlockDisambiguation(t *testing.T) {
	prog := parseProgram(t, `
		if (Point{x: 1, y: 2}).x > 0 {
			print(1)
		}
	`)
	ifs, ok := prog.Stmts[0].(*IfStmt)
	require.True(t, ok)
	member, ok := ifs.Cond.(*BinaryExpr)
	require.True(t, ok)
	memberExpr, ok := member.Left.(*MemberExpr)
	require.True(t, ok)
	_, ok = memberExpr.Target.(*StructLit)
	assert.True(t, ok, "a parenthesized struct literal must still parse inside an if-condition")
}

func TestParseIfConditionSuppressesBareStructLit(t *testing.T) {
	p, err := NewParser(`if x { print(1) }`, "test.bread")
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	ifs := prog.Stmts[0].(*IfStmt)
	_, ok := ifs.Cond.(*Ident)
	assert.True(t, ok, "bare identifier before a block must not be parsed as a struct literal")
}

func TestParseFunctionDeclWithDefaults(t *testing.T) {
	prog := parseProgram(t, `
		def add(a: Int, b: Int = 1) -> Int {
			return a + b
		}
	`)
	fn, ok := prog.Stmts[0].(*FuncDeclStmt)
	require.True(t, ok)
	require.Len(t, fn.Decl.Params, 2)
	assert.False(t, fn.Decl.Params[0].HasDefault)
	assert.True(t, fn.Decl.Params[1].HasDefault)
	assert.Equal(t, "Int", ToString(fn.Decl.ReturnType))
}

func TestParseParamDefaultOrderingError(t *testing.T) {
	p, err := NewParser(`def f(a: Int = 1, b: Int) { }`, "test.bread")
	require.NoError(t, err)
	_, err = p.ParseProgram()
	assert.Error(t, err)
}

func TestParseStructDecl(t *testing.T) {
	prog := parseProgram(t, `
		struct Point {
			x: Int
			y: Int
		}
	`)
	sd, ok := prog.Stmts[0].(*StructDeclStmt)
	require.True(t, ok)
	require.Len(t, sd.Decl.Fields, 2)
	assert.Equal(t, "x", sd.Decl.Fields[0].Name)
}

func TestParseClassDeclRequiresInit(t *testing.T) {
	p, err := NewParser(`class Foo { x: Int }`, "test.bread")
	require.NoError(t, err)
	_, err = p.ParseProgram()
	assert.Error(t, err)
}

func TestParseClassDeclWithExtendsAndMethods(t *testing.T) {
	prog := parseProgram(t, `
		class Animal {
			name: String
			init(name: String) {
				self.name = name
			}
			def speak() -> String {
				return self.name
			}
		}
		class Dog extends Animal {
			init(name: String) {
				self.name = name
			}
		}
	`)
	require.Len(t, prog.Stmts, 2)
	animal := prog.Stmts[0].(*ClassDeclStmt).Decl
	assert.NotNil(t, animal.Init)
	assert.Contains(t, animal.Methods, "speak")

	dog := prog.Stmts[1].(*ClassDeclStmt).Decl
	assert.Equal(t, "Animal", dog.ParentName)
}

func TestParseTypeAnnotations(t *testing.T) {
	cases := map[string]string{
		"let a: [Int] = []":          "[Int]",
		"let b: [String: Int] = [:]": "[String: Int]",
		"let c: Int? = nil":          "Int?",
	}
	for src, want := range cases {
		t.Run(want, func(t *testing.T) {
			prog := parseProgram(t, src)
			decl := prog.Stmts[0].(*VarDeclStmt)
			assert.Equal(t, want, ToString(decl.DeclaredType))
		})
	}
}

func TestParseOptionalChaining(t *testing.T) {
	prog := parseProgram(t, `print(a?.b)`)
	stmt := prog.Stmts[0].(*PrintStmt)
	member, ok := stmt.Value.(*MemberExpr)
	require.True(t, ok)
	assert.True(t, member.Optional)
}

func TestParseAssignmentTargets(t *testing.T) {
	prog := parseProgram(t, `
		x = 1
		arr[0] = 2
		obj.field = 3
	`)
	require.Len(t, prog.Stmts, 3)
	for _, s := range prog.Stmts {
		_, ok := s.(*AssignStmt)
		assert.True(t, ok)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	p, err := NewParser(`1 + 1 = 2`, "test.bread")
	require.NoError(t, err)
	_, err = p.ParseProgram()
	assert.Error(t, err)
}
