package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkerSplicesPlainExport(t *testing.T) {
	loader := NewInMemoryImportLoader()
	loader.Add("util.bread", []byte(`
		export def double(x: Int) -> Int {
			return x * 2
		}
	`))
	loader.Add("main.bread", []byte(`
		import "./util.bread"
		let y: Int = double(21)
	`))

	linker := NewLinker(loader)
	root, err := linker.Load("main.bread")
	require.NoError(t, err)

	var sawFunc, sawVarDecl bool
	for _, s := range root.Program.Stmts {
		switch s.(type) {
		case *FuncDeclStmt:
			sawFunc = true
		case *VarDeclStmt:
			sawVarDecl = true
		}
	}
	assert.True(t, sawFunc, "imported export must be spliced into the importer's statement list")
	assert.True(t, sawVarDecl)
}

func TestLinkerAliasedImportBindsDefaultExport(t *testing.T) {
	loader := NewInMemoryImportLoader()
	loader.Add("util.bread", []byte(`
		export default let value: Int = 42
	`))
	loader.Add("main.bread", []byte(`
		import "./util.bread" as u
	`))

	linker := NewLinker(loader)
	root, err := linker.Load("main.bread")
	require.NoError(t, err)

	var alias *VarDeclStmt
	for _, s := range root.Program.Stmts {
		if vd, ok := s.(*VarDeclStmt); ok && vd.Name == "u" {
			alias = vd
		}
	}
	require.NotNil(t, alias, "import alias must be declared as a const variable bound to the default export")
	assert.Equal(t, DeclConst, alias.Kind)
	ident, ok := alias.Init.(*Ident)
	require.True(t, ok)
	assert.Equal(t, "value", ident.Name)
}

func TestLinkerAliasedImportWithoutDefaultExportErrors(t *testing.T) {
	loader := NewInMemoryImportLoader()
	loader.Add("util.bread", []byte(`
		export def helper() -> Int {
			return 1
		}
	`))
	loader.Add("main.bread", []byte(`
		import "./util.bread" as u
	`))

	linker := NewLinker(loader)
	_, err := linker.Load("main.bread")
	assert.Error(t, err, "aliasing a module with no default export must fail")
}

func TestLinkerDetectsCircularImport(t *testing.T) {
	loader := NewInMemoryImportLoader()
	loader.Add("a.bread", []byte(`import "./b.bread"`))
	loader.Add("b.bread", []byte(`import "./a.bread"`))

	linker := NewLinker(loader)
	_, err := linker.Load("a.bread")
	require.Error(t, err)
	_, ok := err.(*CircularDependency)
	assert.True(t, ok, "a cycle must surface as *CircularDependency, got %T", err)
}

func TestLinkerResolvesBareImportViaSearchPath(t *testing.T) {
	loader := NewInMemoryImportLoader()
	loader.SearchPaths = []string{"lib"}
	loader.Add("lib/util.bread", []byte(`
		export def double(x: Int) -> Int {
			return x * 2
		}
	`))
	loader.Add("main.bread", []byte(`
		import "util.bread"
		let y: Int = double(21)
	`))

	linker := NewLinker(loader)
	_, err := linker.Load("main.bread")
	require.NoError(t, err, "a bare import must fall back to each configured search path")
}

func TestLinkerRejectsUnresolvableImport(t *testing.T) {
	loader := NewInMemoryImportLoader()
	loader.Add("main.bread", []byte(`import "nowhere"`))

	linker := NewLinker(loader)
	_, err := linker.Load("main.bread")
	assert.Error(t, err)
}

func TestLinkerCachesAlreadyLoadedModule(t *testing.T) {
	loader := NewInMemoryImportLoader()
	loader.Add("shared.bread", []byte(`
		export def identity(x: Int) -> Int {
			return x
		}
	`))
	loader.Add("a.bread", []byte(`import "./shared.bread"`))
	loader.Add("main.bread", []byte(`
		import "./a.bread"
		import "./shared.bread"
	`))

	linker := NewLinker(loader)
	_, err := linker.Load("main.bread")
	require.NoError(t, err)
}
