package bread

import (
	"fmt"
	"os"
)

// Config holds the knobs a driver (CLI, test harness, embedder) sets
// before compiling and running a program, separated from Interpreter
// and Analyzer so a caller can construct several independent sessions
// in one process, as spec §5 explicitly permits.
type Config struct {
	// EntryPath is the root source file passed to the linker.
	EntryPath string

	// ImportSearchPaths lists extra directories a RelativeImportLoader
	// consults, in order, after the absolute and relative-to-importer
	// resolution steps fail (spec's "File format: module path
	// resolution", step 3).
	ImportSearchPaths []string

	// DebugMemory enables MemoryTracker bookkeeping and, at shutdown,
	// a leak report to stderr.
	DebugMemory bool

	// PrintAST, when set, makes the CLI stop after loading, linking
	// and type-checking the program instead of running it (the
	// "-ast-only" flag). Nothing is printed on success; the AST itself
	// is not dumped.
	PrintAST bool
}

// DefaultConfig returns the zero-value Config with DebugMemory off.
func DefaultConfig() Config {
	return Config{}
}

// Session ties one Config to its own ErrorContext; each Compile builds
// a fresh Analyzer (with its own Registry and ScopeStack) and each Run
// a fresh Interpreter. The memory tracker and the string intern pool
// are package-level and shared by every session in the process.
type Session struct {
	Config Config
	Errors *ErrorContext
}

// NewSession creates a session, enabling the global memory tracker
// when cfg.DebugMemory is set.
func NewSession(cfg Config) *Session {
	if cfg.DebugMemory {
		EnableDebugMode()
	} else {
		DisableDebugMode()
	}
	return &Session{Config: cfg, Errors: NewErrorContext()}
}

// Compile loads, links, and type-checks the module graph rooted at
// cfg.EntryPath, returning the linked root Module and its Analyzer
// (whose Registry the caller passes to NewInterpreter).
func (s *Session) Compile(loader ImportLoader) (*Module, *Analyzer, error) {
	linker := NewLinker(loader)
	root, err := linker.Load(s.Config.EntryPath)
	if err != nil {
		return nil, nil, err
	}
	analyzer := NewAnalyzer(root.Path)
	if err := analyzer.Analyze(root.Program); err != nil {
		return root, analyzer, err
	}
	return root, analyzer, nil
}

// Run compiles and then interprets cfg.EntryPath, returning the first
// error encountered at either stage.
func (s *Session) Run(loader ImportLoader) error {
	root, analyzer, err := s.Compile(loader)
	if err != nil {
		return err
	}
	interp := NewInterpreter(analyzer.Registry(), s.Errors)
	err = interp.Run(root.Program)
	if s.Config.DebugMemory {
		for _, leak := range globalMemoryTracker.Report() {
			fmt.Fprintln(os.Stderr, leak.String())
		}
	}
	return err
}
