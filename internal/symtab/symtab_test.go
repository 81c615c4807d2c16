package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopemux/scopemux/internal/ast"
)

func TestRegisterAndLookup(t *testing.T) {
	idx := NewIndex(8)
	e := idx.Register(1, "widgets.Button", 3, "/proj/a.py", ScopeGlobal, ast.Python, ast.Class)
	assert.Equal(t, "Button", e.SimpleName)

	got, ok := idx.Lookup("widgets.Button")
	require.True(t, ok)
	assert.Same(t, e, got)

	_, ok = idx.Lookup("missing")
	assert.False(t, ok)
}

func TestScopeLookupWalksAncestorsInnermostOutward(t *testing.T) {
	idx := NewIndex(8)
	idx.Register(1, "pkg.Widget.build", 5, "/proj/a.py", ScopeClass, ast.Python, ast.Method)

	e, ok := idx.ScopeLookup("build", "pkg.Widget", ast.Python)
	require.True(t, ok)
	assert.Equal(t, "pkg.Widget.build", e.QualifiedName)
}

func TestScopeLookupFallsBackToScopePrefix(t *testing.T) {
	idx := NewIndex(8)
	idx.AddScopePrefix("std")
	idx.Register(1, "std::vector", 2, "/proj/a.cpp", ScopeGlobal, ast.CPP, ast.Class)

	e, ok := idx.ScopeLookup("vector", "", ast.CPP)
	require.True(t, ok)
	assert.Equal(t, "std::vector", e.QualifiedName)
}

func TestRemoveByFileIsIsolated(t *testing.T) {
	idx := NewIndex(8)
	idx.Register(1, "a.foo", 1, "/proj/a.py", ScopeGlobal, ast.Python, ast.Function)
	idx.Register(2, "b.bar", 1, "/proj/b.py", ScopeGlobal, ast.Python, ast.Function)

	idx.RemoveByFile("/proj/a.py")
	assert.Equal(t, 1, idx.Count())
	_, ok := idx.Lookup("a.foo")
	assert.False(t, ok)
	_, ok = idx.Lookup("b.bar")
	assert.True(t, ok)
}

func TestRehashPreservesLookups(t *testing.T) {
	idx := NewIndex(2)
	names := []string{"a.one", "a.two", "a.three", "a.four", "a.five", "a.six"}
	for i, n := range names {
		idx.Register(1, n, ast.NodeID(i), "/proj/a.py", ScopeGlobal, ast.Python, ast.Function)
	}

	for _, n := range names {
		_, ok := idx.Lookup(n)
		require.True(t, ok, n)
	}
}

func TestGetByTypeFiltersByNodeKind(t *testing.T) {
	idx := NewIndex(8)
	idx.Register(1, "widgets.Button", 3, "/proj/a.py", ScopeGlobal, ast.Python, ast.Class)
	idx.Register(1, "widgets.Label", 4, "/proj/a.py", ScopeGlobal, ast.Python, ast.Class)
	idx.Register(1, "widgets.Button.render", 5, "/proj/a.py", ScopeClass, ast.Python, ast.Method)

	classes := idx.GetByType(ast.Class)
	require.Len(t, classes, 2)
	names := []string{classes[0].SimpleName, classes[1].SimpleName}
	assert.ElementsMatch(t, []string{"Button", "Label"}, names)

	methods := idx.GetByType(ast.Method)
	require.Len(t, methods, 1)
	assert.Equal(t, "render", methods[0].SimpleName)

	assert.Empty(t, idx.GetByType(ast.Interface))
}

func TestGetByScopeFiltersByScopeKind(t *testing.T) {
	idx := NewIndex(8)
	idx.Register(1, "a", 1, "/proj/a.py", ScopeModule, ast.Python, ast.Module)
	idx.Register(1, "a.foo", 2, "/proj/a.py", ScopeGlobal, ast.Python, ast.Function)

	global := idx.GetByScope(ScopeGlobal)
	require.Len(t, global, 1)
	assert.Equal(t, "a.foo", global[0].QualifiedName)

	module := idx.GetByScope(ScopeModule)
	require.Len(t, module, 1)
	assert.Equal(t, "a", module[0].QualifiedName)
}

func TestCompactStringRoundTrips(t *testing.T) {
	id := ID{File: 42, Local: 7}
	s := id.CompactString()
	require.NotEmpty(t, s)

	got, err := ParseCompactString(s)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestZeroIDIsInvalid(t *testing.T) {
	assert.False(t, ID{}.IsValid())
	assert.True(t, ID{File: 1}.IsValid())
}
