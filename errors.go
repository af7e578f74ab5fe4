package bread

import (
	"fmt"
	"os"
	"strings"

	"github.com/breadlang/bread/ascii"
)

// ErrorCategory is BreadLang's diagnostic taxonomy, mirroring the
// original runtime's BreadErrorType enum.
type ErrorCategory int

const (
	ErrNone ErrorCategory = iota
	ErrTypeMismatch
	ErrIndexOutOfBounds
	ErrDivisionByZero
	ErrUndefinedVariable
	ErrMemoryAllocation
	ErrRuntimeError
	ErrSyntaxError
	ErrParseError
	ErrCompileError
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrNone:
		return "No Error"
	case ErrTypeMismatch:
		return "Type Mismatch"
	case ErrIndexOutOfBounds:
		return "Index Out of Bounds"
	case ErrDivisionByZero:
		return "Division by Zero"
	case ErrUndefinedVariable:
		return "Undefined Variable"
	case ErrMemoryAllocation:
		return "Memory Allocation Error"
	case ErrRuntimeError:
		return "Runtime Error"
	case ErrSyntaxError:
		return "Syntax Error"
	case ErrParseError:
		return "Parse Error"
	case ErrCompileError:
		return "Compile Error"
	default:
		return "Unknown Error"
	}
}

// isCompileCategory reports whether errors of this category should
// mark the sticky compilation-failed flag instead of aborting.
func (c ErrorCategory) isCompileCategory() bool {
	switch c {
	case ErrTypeMismatch, ErrUndefinedVariable, ErrSyntaxError, ErrParseError, ErrCompileError:
		return true
	default:
		return false
	}
}

// isRuntimeCategory reports whether errors of this category abort the
// process once printed.
func (c ErrorCategory) isRuntimeCategory() bool {
	switch c {
	case ErrIndexOutOfBounds, ErrDivisionByZero, ErrRuntimeError, ErrMemoryAllocation:
		return true
	default:
		return false
	}
}

// BreadError is a single diagnostic with source location and
// optional context line, formatted the same way across compile-time
// and runtime faults.
type BreadError struct {
	Category ErrorCategory
	Message  string
	Filename string
	Line     int
	Column   int
	Context  string
}

func (e *BreadError) Error() string {
	return e.Format()
}

// Format renders the diagnostic banner:
//
//	<category> at <file>:<line>:<col>: <message>
//	Context: <line-source>
//	        ^
func (e *BreadError) Format() string {
	if e == nil || e.Category == ErrNone {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Category.String())
	if e.Filename != "" && e.Line > 0 {
		fmt.Fprintf(&b, " at %s:%d", e.Filename, e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ":%d", e.Column)
		}
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, "\nContext: %s\n", e.Context)
		col := e.Column
		if col < 1 {
			col = 1
		}
		b.WriteString(strings.Repeat(" ", len("Context: ")+col-1))
		b.WriteString("^")
	}
	return b.String()
}

// errorContextFrame is a call-site frame pushed while evaluating
// nested expressions, used to build nested diagnostic context the way
// original_source's bread_error_context_push/pop does.
type errorContextFrame struct {
	File     string
	Line     int
	Column   int
	Function string
}

const maxErrorContextDepth = 32

// ErrorContext is the per-session error slot plus sticky
// compilation-failed flag. Spec §5 explicitly allows internalizing
// the "process-wide" error slot as per-session state; this struct is
// that session.
type ErrorContext struct {
	current            *BreadError
	compilationFailed  bool
	contextStack       []errorContextFrame
	aborted            bool
	exit               func(code int)
	stderr             func(string)
}

// NewErrorContext creates a fresh error slot.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{
		exit:   defaultExit,
		stderr: defaultStderr,
	}
}

// Set replaces the current error slot.
func (ec *ErrorContext) Set(category ErrorCategory, message, filename string, line, column int) {
	ec.SetWithContext(category, message, filename, line, column, "")
}

// SetWithContext replaces the current error slot, additionally
// recording the offending source line.
func (ec *ErrorContext) SetWithContext(category ErrorCategory, message, filename string, line, column int, context string) {
	ec.current = &BreadError{
		Category: category,
		Message:  message,
		Filename: filename,
		Line:     line,
		Column:   column,
		Context:  context,
	}
	if category.isCompileCategory() {
		ec.compilationFailed = true
	}
}

// Clear empties the error slot without touching the compilation-failed flag.
func (ec *ErrorContext) Clear() {
	ec.current = nil
}

// Current returns the current error, or nil.
func (ec *ErrorContext) Current() *BreadError { return ec.current }

// HasError reports whether the slot is non-empty.
func (ec *ErrorContext) HasError() bool { return ec.current != nil }

// HasCompilationErrors reports the sticky compilation-failed flag.
func (ec *ErrorContext) HasCompilationErrors() bool { return ec.compilationFailed }

// MarkCompilationFailed sets the sticky flag without touching the error slot.
func (ec *ErrorContext) MarkCompilationFailed() { ec.compilationFailed = true }

// ResetCompilationState clears the sticky flag (used between independent compiles in one process).
func (ec *ErrorContext) ResetCompilationState() { ec.compilationFailed = false }

// PushFrame records a nested call-site context frame; a full stack
// silently drops further pushes (matches the bounded C stack's
// overflow-protection behavior).
func (ec *ErrorContext) PushFrame(file string, line, column int, function string) {
	if len(ec.contextStack) >= maxErrorContextDepth {
		return
	}
	ec.contextStack = append(ec.contextStack, errorContextFrame{file, line, column, function})
}

// PopFrame removes the innermost context frame, if any.
func (ec *ErrorContext) PopFrame() {
	if len(ec.contextStack) > 0 {
		ec.contextStack = ec.contextStack[:len(ec.contextStack)-1]
	}
}

// CurrentFrame returns the innermost context frame, or nil.
func (ec *ErrorContext) CurrentFrame() *errorContextFrame {
	if len(ec.contextStack) == 0 {
		return nil
	}
	return &ec.contextStack[len(ec.contextStack)-1]
}

// Print writes the formatted current error to the configured stderr
// sink, colored by category the way the teacher's diagnostics use
// ascii.Theme (runtime faults in ascii.DefaultTheme.Error, compile
// faults in ascii.DefaultTheme.Warning).
func (ec *ErrorContext) Print() {
	if ec.current == nil {
		return
	}
	color := ascii.DefaultTheme.Error
	if ec.current.Category.isCompileCategory() {
		color = ascii.DefaultTheme.Warning
	}
	ec.stderr(ascii.Color(color, "Error: %s", ec.current.Format()) + "\n")
}

// Abort prints the current error and terminates the process; only
// runtime categories should reach this per spec §4.6/§7.
func (ec *ErrorContext) Abort() {
	ec.Print()
	ec.aborted = true
	ec.exit(1)
}

// Aborted reports whether Abort has been called (used by tests that
// override exit to avoid actually terminating).
func (ec *ErrorContext) Aborted() bool { return ec.aborted }

// SetExitFunc overrides the process-exit hook, primarily for tests.
func (ec *ErrorContext) SetExitFunc(fn func(code int)) { ec.exit = fn }

// SetStderrFunc overrides the diagnostic sink, primarily for tests.
func (ec *ErrorContext) SetStderrFunc(fn func(string)) { ec.stderr = fn }

func defaultExit(code int) { os.Exit(code) }

func defaultStderr(s string) { fmt.Fprint(os.Stderr, s) }
