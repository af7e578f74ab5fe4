package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWithErrorContext parses, analyzes, and interprets src against an
// ErrorContext whose exit/stderr hooks are intercepted, so a runtime
// abort can be observed without terminating the test process.
func runWithErrorContext(t *testing.T, src string) (*ErrorContext, []string, int, error) {
	t.Helper()
	p, err := NewParser(src, "test.bread")
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	a := NewAnalyzer("test.bread")
	require.NoError(t, a.Analyze(prog))

	ec := NewErrorContext()
	var stderr []string
	exitCode := -1
	ec.SetStderrFunc(func(s string) { stderr = append(stderr, s) })
	ec.SetExitFunc(func(code int) { exitCode = code })

	in := NewInterpreter(a.Registry(), ec)
	runErr := in.Run(prog)
	return ec, stderr, exitCode, runErr
}

func TestRuntimeErrorAbortsAndPrintsBanner(t *testing.T) {
	ec, stderr, exitCode, err := runWithErrorContext(t, `
		let a: Int = 1
		let b: Int = 0
		let c: Int = a / b
	`)
	require.Error(t, err)
	assert.True(t, ec.Aborted(), "a runtime category error must call Abort")
	assert.Equal(t, 1, exitCode, "Abort must exit with a non-zero status")
	require.Len(t, stderr, 1)
	assert.Contains(t, stderr[0], "Division by Zero")
}

func TestRuntimeErrorCategoryIsAbortCategory(t *testing.T) {
	assert.True(t, ErrDivisionByZero.isRuntimeCategory())
	assert.True(t, ErrIndexOutOfBounds.isRuntimeCategory())
	assert.True(t, ErrRuntimeError.isRuntimeCategory())
	assert.True(t, ErrMemoryAllocation.isRuntimeCategory())
	assert.False(t, ErrTypeMismatch.isRuntimeCategory())
	assert.False(t, ErrUndefinedVariable.isRuntimeCategory())
}

func TestCompileCategoryErrorDoesNotAbort(t *testing.T) {
	ec := NewErrorContext()
	exited := false
	ec.SetExitFunc(func(code int) { exited = true })
	ec.SetWithContext(ErrTypeMismatch, "bad types", "test.bread", 1, 1, "")
	assert.False(t, ec.Aborted())
	assert.False(t, exited, "a compile category error must never call Abort")
	assert.True(t, ec.HasCompilationErrors())
}
