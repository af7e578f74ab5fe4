package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeSource(t *testing.T, src string) error {
	t.Helper()
	p, err := NewParser(src, "test.bread")
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	a := NewAnalyzer("test.bread")
	return a.Analyze(prog)
}

func TestAnalyzeAcceptsMatchingVarDecl(t *testing.T) {
	err := analyzeSource(t, `let x: Int = 1`)
	assert.NoError(t, err)
}

func TestAnalyzeRejectsTypeMismatchInVarDecl(t *testing.T) {
	err := analyzeSource(t, `let x: Int = "oops"`)
	require.Error(t, err)
	me, ok := err.(*MultiError)
	require.True(t, ok)
	require.Len(t, me.Errors, 1)
	assert.Equal(t, ErrTypeMismatch, me.Errors[0].Category)
}

func TestAnalyzeAccumulatesMultipleErrors(t *testing.T) {
	err := analyzeSource(t, `
		let x: Int = "a"
		let y: Bool = 1
	`)
	require.Error(t, err)
	me, ok := err.(*MultiError)
	require.True(t, ok)
	assert.Len(t, me.Errors, 2, "analysis must keep checking after the first error instead of aborting")
}

func TestAnalyzeConstReassignmentRejected(t *testing.T) {
	err := analyzeSource(t, `
		const x: Int = 1
		x = 2
	`)
	require.Error(t, err)
}

func TestAnalyzeFunctionMissingReturnOnAllPaths(t *testing.T) {
	err := analyzeSource(t, `
		def f(a: Int) -> Int {
			if a > 0 {
				return a
			}
		}
	`)
	assert.Error(t, err)
}

func TestAnalyzeFunctionReturnsOnAllPathsViaIfElse(t *testing.T) {
	err := analyzeSource(t, `
		def f(a: Int) -> Int {
			if a > 0 {
				return a
			} else {
				return 0
			}
		}
	`)
	assert.NoError(t, err)
}

func TestAnalyzeBreakOutsideLoopRejected(t *testing.T) {
	err := analyzeSource(t, `break`)
	assert.Error(t, err)
}

func TestAnalyzeForInOverArrayBindsElementType(t *testing.T) {
	err := analyzeSource(t, `
		let xs: [Int] = [1, 2, 3]
		for x in xs {
			print(x + 1)
		}
	`)
	assert.NoError(t, err)
}

func TestAnalyzeArrayLiteralMismatchedElementTypes(t *testing.T) {
	err := analyzeSource(t, `let xs: [Int] = [1, "two"]`)
	assert.Error(t, err)
}

func TestAnalyzeClassAncestorWideningInArrayLiteral(t *testing.T) {
	err := analyzeSource(t, `
		class Animal {
			init() { }
		}
		class Dog extends Animal {
			init() { }
		}
		class Cat extends Animal {
			init() { }
		}
		let zoo: [Animal] = [Dog{}, Cat{}]
	`)
	assert.NoError(t, err)
}

func TestAnalyzeOptionalRequiresChainingOperator(t *testing.T) {
	err := analyzeSource(t, `
		struct Box {
			value: Int
		}
		let b: Box? = nil
		print(b.value)
	`)
	assert.Error(t, err)
}

func TestAnalyzeOptionalChainingAccepted(t *testing.T) {
	err := analyzeSource(t, `
		struct Box {
			value: Int
		}
		let b: Box? = nil
		print(b?.value)
	`)
	assert.NoError(t, err)
}

func TestAnalyzeFloatRejectedInArithmetic(t *testing.T) {
	err := analyzeSource(t, `
		def f(a: Float, b: Float) -> Float {
			return a + b
		}
	`)
	assert.Error(t, err, "Float must be rejected in arithmetic even though the grammar accepts it")
}

func TestAnalyzeUndefinedVariable(t *testing.T) {
	err := analyzeSource(t, `print(doesNotExist)`)
	require.Error(t, err)
	me := err.(*MultiError)
	assert.Equal(t, ErrUndefinedVariable, me.Errors[0].Category)
}

func TestAnalyzeStructLiteralMissingField(t *testing.T) {
	err := analyzeSource(t, `
		struct Point {
			x: Int
			y: Int
		}
		let p: Point = Point{x: 1}
	`)
	assert.Error(t, err)
}

func TestAnalyzeDictMissMethodsTypecheck(t *testing.T) {
	err := analyzeSource(t, `
		let d: [String: Int] = [:]
		d.set("a", 1)
		print(d.containsKey("a"))
	`)
	assert.NoError(t, err)
}
