package project

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopemux/scopemux/internal/resolve"
	"github.com/scopemux/scopemux/internal/scmerrors"
	"github.com/scopemux/scopemux/internal/symtab"
)

type memFile struct {
	name    string
	content []byte
	isDir   bool
}

func (m memFile) Name() string               { return m.name }
func (m memFile) IsDir() bool                 { return m.isDir }
func (m memFile) Type() fs.FileMode           { return 0 }
func (m memFile) Info() (fs.FileInfo, error)  { return nil, nil }

type memFS struct {
	files map[string][]byte
	dirs  map[string][]string
}

func newMemFS() *memFS {
	return &memFS{files: map[string][]byte{}, dirs: map[string][]string{}}
}

func (m *memFS) put(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *memFS) Stat(path string) (fs.FileInfo, error) { return nil, nil }

func (m *memFS) ReadFile(path string) ([]byte, error) {
	c, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return c, nil
}

func (m *memFS) ReadDir(path string) ([]fs.DirEntry, error) {
	var out []fs.DirEntry
	for _, name := range m.dirs[path] {
		out = append(out, memFile{name: name})
	}
	return out, nil
}

func (m *memFS) Exists(path string) bool { _, ok := m.files[path]; return ok }
func (m *memFS) IsDir(path string) bool  { _, ok := m.dirs[path]; return ok }
func (m *memFS) IsFile(path string) bool { _, ok := m.files[path]; return ok }

func TestAddFileDeduplicatesExactPath(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/proj/a.c", "int main(){}")
	p := New("/proj", Configuration{}, fsys)

	require.NoError(t, p.AddFile("/proj/a.c"))
	require.NoError(t, p.AddFile("/proj/a.c"))
	assert.Equal(t, 1, len(p.discovered))
}

func TestAddFileRelativePathJoinsRoot(t *testing.T) {
	fsys := newMemFS()
	p := New("/proj", Configuration{}, fsys)
	require.NoError(t, p.AddFile("sub/a.c"))
	assert.Equal(t, []string{"/proj/sub/a.c"}, p.discovered)
}

func TestTwoFileCProjectEndToEnd(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/proj/a.c", "int f(int x) { return x; }\nint g = 0;\n")
	fsys.put("/proj/b.c", "extern int g;\nint h() { return f(g); }\n")

	p := New("/proj", Configuration{}, fsys)
	require.NoError(t, p.AddFile("/proj/a.c"))
	require.NoError(t, p.AddFile("/proj/b.c"))
	require.NoError(t, p.ParseAllFiles(context.Background()))

	fEntry, ok := p.LookupSymbol("f")
	require.True(t, ok)
	assert.Equal(t, symtab.ScopeGlobal, fEntry.Scope)

	_, ok = p.LookupSymbol("g")
	require.True(t, ok)

	status := p.ResolveAll()
	assert.Equal(t, resolve.Success, status)

	stats := p.GetStats()
	assert.Equal(t, 2, stats.FilesParsed)
	assert.Equal(t, 2, stats.Resolve.Total)
	assert.Equal(t, 2, stats.Resolve.Resolved)
}

func TestIncludeDepthCap(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/proj/a.c", `#include "b.c"`+"\nint a_marker;\n")
	fsys.put("/proj/b.c", `#include "c.c"`+"\nint b_marker;\n")
	fsys.put("/proj/c.c", `#include "d.c"`+"\nint c_marker;\n")
	fsys.put("/proj/d.c", "int d_marker;\n")

	p := New("/proj", Configuration{MaxIncludeDepth: 2, FollowIncludes: true}, fsys)
	require.NoError(t, p.AddFile("/proj/a.c"))
	require.NoError(t, p.ParseAllFiles(context.Background()))

	stats := p.GetStats()
	assert.Equal(t, 3, stats.FilesParsed)

	_, ok := p.pathToFile["/proj/d.c"]
	assert.False(t, ok)

	lastErr, ok := p.LastError()
	require.True(t, ok)
	assert.Equal(t, scmerrors.IncludeDepth, lastErr.Code)
}

func TestParseAllFilesIsIdempotent(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/proj/a.c", "int main(){}")

	p := New("/proj", Configuration{}, fsys)
	require.NoError(t, p.AddFile("/proj/a.c"))
	require.NoError(t, p.ParseAllFiles(context.Background()))
	first := p.GetStats().FilesParsed

	require.NoError(t, p.AddFile("/proj/a.c"))
	require.NoError(t, p.ParseAllFiles(context.Background()))
	assert.Equal(t, first, p.GetStats().FilesParsed)
}

func TestRemoveFileClearsSymbolsNotOthers(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/proj/a.c", "int foo(){ return 0; }")
	fsys.put("/proj/b.c", "int bar(){ return 0; }")

	p := New("/proj", Configuration{}, fsys)
	require.NoError(t, p.AddFile("/proj/a.c"))
	require.NoError(t, p.AddFile("/proj/b.c"))
	require.NoError(t, p.ParseAllFiles(context.Background()))

	p.RemoveFile("/proj/a.c")
	_, ok := p.LookupSymbol("foo")
	assert.False(t, ok)
	_, ok = p.LookupSymbol("bar")
	assert.True(t, ok)
}

func TestAddDependencyAutoAddsMissingFiles(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/proj/a.c", "int a(){}")
	fsys.put("/proj/b.c", "int b(){}")

	p := New("/proj", Configuration{}, fsys)
	require.NoError(t, p.AddDependency("/proj/a.c", "/proj/b.c"))

	deps := p.GetDependencies("/proj/a.c")
	assert.Equal(t, []string{"/proj/b.c"}, deps)
}

func TestResolveAllWithSuggestions(t *testing.T) {
	fsys := newMemFS()
	fsys.put("/proj/a.c", "int compute(){ return 0; }\nint wrapper(){ return comput(); }\n")

	p := New("/proj", Configuration{SuggestOnNotFound: true}, fsys)
	require.NoError(t, p.AddFile("/proj/a.c"))
	require.NoError(t, p.ParseAllFiles(context.Background()))

	status := p.ResolveAll()
	assert.NotEqual(t, resolve.Success, status)
}

func TestWatchDebounceDefaultsWhenUnset(t *testing.T) {
	c := Configuration{}
	assert.Equal(t, 250*time.Millisecond, c.watchDebounce())
}
