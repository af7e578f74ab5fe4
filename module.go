package bread

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImportLoader resolves an import path relative to the importing
// file and fetches its source text, grounded directly on the
// teacher's RelativeImportLoader/InMemoryImportLoader pair
// (go/grammar_import_loaders.go) — same two-method shape, generalized
// from grammar source files to BreadLang modules.
type ImportLoader interface {
	GetPath(importPath, parentPath string) (string, error)
	GetContent(path string) ([]byte, error)
}

// RelativeImportLoader resolves imports against the filesystem,
// following the three-step rule of spec's "File format: module path
// resolution": absolute path, then relative to the importing file's
// directory, then each configured search path in order, each step
// tried with and without the ".bread" suffix.
type RelativeImportLoader struct {
	SearchPaths []string
}

// NewRelativeImportLoader builds a loader consulting searchPaths, in
// order, after the absolute and relative-to-importer steps fail.
func NewRelativeImportLoader(searchPaths ...string) *RelativeImportLoader {
	return &RelativeImportLoader{SearchPaths: searchPaths}
}

func (r *RelativeImportLoader) GetPath(importPath, parentPath string) (string, error) {
	if importPath == parentPath {
		return importPath, nil
	}
	return resolveImportPath(importPath, parentPath, r.SearchPaths, fileExistsAndRegular)
}

func (r *RelativeImportLoader) GetContent(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func fileExistsAndRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// InMemoryImportLoader serves module sources from a map, used by
// tests that build multi-module programs without touching disk. It
// implements the same three-step resolution as RelativeImportLoader,
// checking path existence against its in-memory file set instead of
// the filesystem.
type InMemoryImportLoader struct {
	files       map[string][]byte
	SearchPaths []string
}

func NewInMemoryImportLoader() *InMemoryImportLoader {
	return &InMemoryImportLoader{files: map[string][]byte{}}
}

func (l *InMemoryImportLoader) Add(path string, content []byte) {
	l.files[path] = content
}

func (l *InMemoryImportLoader) GetPath(importPath, parentPath string) (string, error) {
	if importPath == parentPath {
		return importPath, nil
	}
	return resolveImportPath(importPath, parentPath, l.SearchPaths, func(p string) bool {
		_, ok := l.files[p]
		return ok
	})
}

func (l *InMemoryImportLoader) GetContent(path string) ([]byte, error) {
	b, ok := l.files[path]
	if !ok {
		return nil, fmt.Errorf("import not found: %s", path)
	}
	return b, nil
}

// resolveImportPath implements the three-step rule in spec's "File
// format: module path resolution": an absolute importPath is tried
// as-is then with ".bread" appended; otherwise the path is tried
// relative to parentPath's directory, then relative to each of
// searchPaths in declaration order, each with and without the
// ".bread" suffix. Grounded on original_source/src/core/module.c's
// module_resolve_path/try_path_with_extension.
func resolveImportPath(importPath, parentPath string, searchPaths []string, exists func(string) bool) (string, error) {
	try := func(base string) (string, bool) {
		if exists(base) {
			return base, true
		}
		if !strings.HasSuffix(base, ".bread") {
			withExt := base + ".bread"
			if exists(withExt) {
				return withExt, true
			}
		}
		return "", false
	}

	if filepath.IsAbs(importPath) {
		if resolved, ok := try(importPath); ok {
			return resolved, nil
		}
		return "", fmt.Errorf("module file not found: %s", importPath)
	}

	if parentPath != "" {
		rel := filepath.Join(filepath.Dir(parentPath), importPath)
		if resolved, ok := try(rel); ok {
			return resolved, nil
		}
	}

	for _, sp := range searchPaths {
		candidate := filepath.Join(sp, importPath)
		if resolved, ok := try(candidate); ok {
			return resolved, nil
		}
	}

	return "", fmt.Errorf("module file not found: %s", importPath)
}

// Module is one compiled source file: its own statement list, the
// subset it exports by name, and the name of its default export if
// any (spec §4.7, glossary "Default export").
type Module struct {
	Path          string
	Program       *Program
	Exports       map[string]Stmt
	DefaultExport string
}

// CircularDependency reports an import cycle, naming the chain that closed it.
type CircularDependency struct {
	Chain []string
}

func (e *CircularDependency) Error() string {
	return fmt.Sprintf("circular import detected: %v", e.Chain)
}

// Linker loads, parses, and links a module graph rooted at an entry
// file, splicing each import's exported declarations into the
// importer's statement list ahead of the statements that follow it
// (spec §4.7's "imports resolve before the statements that follow
// them run").
type Linker struct {
	loader  ImportLoader
	loaded  map[string]*Module
	loading map[string]bool
	chain   []string
}

// NewLinker creates a linker over loader.
func NewLinker(loader ImportLoader) *Linker {
	return &Linker{
		loader:  loader,
		loaded:  map[string]*Module{},
		loading: map[string]bool{},
	}
}

// Load parses and links path (and everything it transitively
// imports), returning the fully-spliced root Module.
func (l *Linker) Load(path string) (*Module, error) {
	return l.load(path, path)
}

func (l *Linker) load(path, parentPath string) (*Module, error) {
	resolved, err := l.loader.GetPath(path, parentPath)
	if err != nil {
		return nil, err
	}
	if m, ok := l.loaded[resolved]; ok {
		return m, nil
	}
	if l.loading[resolved] {
		return nil, &CircularDependency{Chain: append(append([]string{}, l.chain...), resolved)}
	}

	src, err := l.loader.GetContent(resolved)
	if err != nil {
		return nil, err
	}
	p, err := NewParser(string(src), resolved)
	if err != nil {
		return nil, err
	}
	prog, err := p.ParseProgram()
	if err != nil {
		return nil, err
	}

	l.loading[resolved] = true
	l.chain = append(l.chain, resolved)
	defer func() {
		l.chain = l.chain[:len(l.chain)-1]
		delete(l.loading, resolved)
	}()

	spliced, exports, defaultExport, err := l.resolveImports(prog.Stmts, resolved)
	if err != nil {
		return nil, err
	}
	m := &Module{Path: resolved, Program: &Program{Stmts: spliced}, Exports: exports, DefaultExport: defaultExport}
	l.loaded[resolved] = m
	return m, nil
}

// resolveImports walks stmts in order, splicing each ImportStmt's
// target module's exports in place (under their own names — export
// does not rename) and collecting this module's own ExportDeclStmt
// declarations and, if any, its single default export's name. An
// aliased import additionally declares its alias as a const variable
// bound to the target module's default export (spec §4.7 point 3).
func (l *Linker) resolveImports(stmts []Stmt, selfPath string) ([]Stmt, map[string]Stmt, string, error) {
	exports := map[string]Stmt{}
	defaultExport := ""
	var out []Stmt
	for _, s := range stmts {
		switch v := s.(type) {
		case *ImportStmt:
			dep, err := l.load(v.Path, selfPath)
			if err != nil {
				return nil, nil, "", err
			}
			for _, decl := range dep.Exports {
				out = append(out, decl)
			}
			if v.Alias != "" {
				if dep.DefaultExport == "" {
					return nil, nil, "", fmt.Errorf("module %q has no default export to bind alias %q", v.Path, v.Alias)
				}
				defaultDecl, ok := dep.Exports[dep.DefaultExport].(*VarDeclStmt)
				if !ok {
					return nil, nil, "", fmt.Errorf("default export %q of module %q must be a variable", dep.DefaultExport, v.Path)
				}
				out = append(out, &VarDeclStmt{
					stmtBase:     stmtBase{v.Position()},
					Kind:         DeclConst,
					Name:         v.Alias,
					DeclaredType: defaultDecl.DeclaredType.Clone(),
					Init:         &Ident{node{pos: v.Position()}, dep.DefaultExport},
				})
			}
		case *ExportDeclStmt:
			out = append(out, v.Inner)
			exports[v.Name] = v.Inner
			if v.IsDefault {
				if defaultExport != "" {
					return nil, nil, "", fmt.Errorf("module %q already has a default export", selfPath)
				}
				defaultExport = v.Name
			}
		default:
			out = append(out, s)
		}
	}
	return out, exports, defaultExport, nil
}
