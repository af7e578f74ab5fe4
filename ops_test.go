package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileAndRun parses, analyzes, and interprets src, returning the
// interpreter (whose global scope the tests inspect) and any error
// from the run.
func compileAndRun(t *testing.T, src string) (*Interpreter, error) {
	t.Helper()
	p, err := NewParser(src, "test.bread")
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	a := NewAnalyzer("test.bread")
	require.NoError(t, a.Analyze(prog))
	in := NewInterpreter(a.Registry(), NewErrorContext())
	err = in.Run(prog)
	return in, err
}

func TestInterpretArithmeticAndStringConcat(t *testing.T) {
	in, err := compileAndRun(t, `
		let a: Int = 2
		let b: Int = 3
		let sum: Int = a + b * 2
		let s: String = "foo" + "bar"
	`)
	require.NoError(t, err)
	sum, ok := in.scopes.GetVariable("sum")
	require.True(t, ok)
	assert.EqualValues(t, 8, sum.Value.Int())
	s, ok := in.scopes.GetVariable("s")
	require.True(t, ok)
	assert.Equal(t, "foobar", stringOf(s.Value).Bytes)
}

func TestInterpretDivisionByZero(t *testing.T) {
	_, err := compileAndRun(t, `
		let a: Int = 1
		let b: Int = 0
		let c: Int = a / b
	`)
	assert.Error(t, err)
}

func TestInterpretArrayBuiltins(t *testing.T) {
	in, err := compileAndRun(t, `
		let xs: [Int] = [1, 2, 3]
		xs.append(4)
		let n: Int = xs.length()
		let removed: Int = xs.removeAt(0)
	`)
	require.NoError(t, err)
	n, ok := in.scopes.GetVariable("n")
	require.True(t, ok)
	assert.EqualValues(t, 4, n.Value.Int())
	removed, ok := in.scopes.GetVariable("removed")
	require.True(t, ok)
	assert.EqualValues(t, 1, removed.Value.Int())
}

func TestInterpretDictBuiltinsMissCoercesToNilWhenDeclaredOptional(t *testing.T) {
	in, err := compileAndRun(t, `
		let d: [String: Int] = [:]
		d.set("a", 1)
		let has: Bool = d.containsKey("a")
		let missing: Int? = d["b"]
	`)
	require.NoError(t, err)
	has, ok := in.scopes.GetVariable("has")
	require.True(t, ok)
	assert.True(t, has.Value.Bool())
	missing, ok := in.scopes.GetVariable("missing")
	require.True(t, ok)
	assert.Equal(t, TagOptional, missing.Value.Tag)
	assert.False(t, optionalOf(missing.Value).IsSome)
}

func TestInterpretDictIndexResultIsValueTypeNotOptional(t *testing.T) {
	in, err := compileAndRun(t, `
		let m: [String: Int] = ["a": 1, "b": 2]
		let sum: Int = m["a"] + m["b"]
	`)
	require.NoError(t, err)
	sum, ok := in.scopes.GetVariable("sum")
	require.True(t, ok)
	assert.EqualValues(t, 3, sum.Value.Int())
}

func TestInterpretClassConstructionAndInheritance(t *testing.T) {
	in, err := compileAndRun(t, `
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
		let d: Dog = Dog{name: "Rex"}
		let greeting: String = d.speak()
	`)
	require.NoError(t, err)
	greeting, ok := in.scopes.GetVariable("greeting")
	require.True(t, ok)
	assert.Equal(t, "Rex", stringOf(greeting.Value).Bytes)
}

func TestInterpretOptionalChainingShortCircuits(t *testing.T) {
	in, err := compileAndRun(t, `
		struct Box {
			value: Int
		}
		let b: Box? = nil
		let v: Int? = b?.value
	`)
	require.NoError(t, err)
	v, ok := in.scopes.GetVariable("v")
	require.True(t, ok)
	assert.Equal(t, TagOptional, v.Value.Tag)
	assert.False(t, optionalOf(v.Value).IsSome)
}

func TestInterpretNegativeArrayIndexing(t *testing.T) {
	in, err := compileAndRun(t, `
		let xs: [Int] = [10, 20, 30]
		let last: Int = xs[-1]
	`)
	require.NoError(t, err)
	last, ok := in.scopes.GetVariable("last")
	require.True(t, ok)
	assert.EqualValues(t, 30, last.Value.Int())
}

func TestInterpretRangeBuiltin(t *testing.T) {
	in, err := compileAndRun(t, `
		let total: Int = 0
		for i in range(5) {
			total += i
		}
	`)
	require.NoError(t, err)
	total, ok := in.scopes.GetVariable("total")
	require.True(t, ok)
	assert.EqualValues(t, 10, total.Value.Int())
}

func TestInterpretFunctionWithDefaultArgument(t *testing.T) {
	in, err := compileAndRun(t, `
		def greet(name: String, greeting: String = "hello") -> String {
			return greeting + " " + name
		}
		let g: String = greet("bob")
	`)
	require.NoError(t, err)
	g, ok := in.scopes.GetVariable("g")
	require.True(t, ok)
	assert.Equal(t, "hello bob", stringOf(g.Value).Bytes)
}
