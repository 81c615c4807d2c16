// Package symtab implements ScopeMux's project-wide global symbol index: a
// bucketed hash map from qualified name to symbol-entry chains, plus the
// composite symbol identifier used to address entries across files.
package symtab

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/scopemux/scopemux/internal/ast"
)

// ScopeKind is the canonical symbol-scope enum spec.md §9 settles on,
// resolving the source's two conflicting SymbolScope enums.
type ScopeKind int

const (
	ScopeUnknown ScopeKind = iota
	ScopeLocal
	ScopeFile
	ScopeModule
	ScopeGlobal
	ScopeExternal
	ScopeClass
)

func (s ScopeKind) String() string {
	switch s {
	case ScopeLocal:
		return "Local"
	case ScopeFile:
		return "File"
	case ScopeModule:
		return "Module"
	case ScopeGlobal:
		return "Global"
	case ScopeExternal:
		return "External"
	case ScopeClass:
		return "Class"
	default:
		return "Unknown"
	}
}

// ID is the composite identifier for a symbol: the owning file plus a
// symbol index local to that file. Composite rather than a single integer
// so entries remain addressable after a file is reparsed in isolation.
type ID struct {
	File  ast.FileID
	Local uint32
}

// String is the fast, human-readable form used for debugging.
func (id ID) String() string {
	return fmt.Sprintf("Symbol[F:%d,L:%d]", id.File, id.Local)
}

var compactAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"

// CompactString returns a dense base-63 encoding suitable for external APIs.
func (id ID) CompactString() string {
	combined := uint64(id.File) | (uint64(id.Local) << 32)
	if combined == 0 {
		return ""
	}
	var buf []byte
	const base = 63
	for combined > 0 {
		buf = append(buf, compactAlphabet[combined%base])
		combined /= base
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ParseCompactString inverts CompactString.
func ParseCompactString(s string) (ID, error) {
	if s == "" {
		return ID{}, fmt.Errorf("symtab: empty compact string")
	}
	var combined uint64
	const base = 63
	for _, c := range s {
		idx := -1
		for i, a := range compactAlphabet {
			if a == c {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ID{}, fmt.Errorf("symtab: invalid character %q in compact string", c)
		}
		combined = combined*base + uint64(idx)
	}
	return ID{File: ast.FileID(combined & 0xFFFFFFFF), Local: uint32(combined >> 32)}, nil
}

// IsValid reports whether at least one component is non-zero.
func (id ID) IsValid() bool {
	return id.File != 0 || id.Local != 0
}

// Entry is one row of the project-wide index (spec.md §3's "Symbol entry").
type Entry struct {
	ID            ID
	QualifiedName string
	SimpleName    string
	FilePath      string
	Node          ast.NodeID
	Scope         ScopeKind
	NodeKind      ast.Kind
	Language      ast.Language
	IsDefinition  bool
	ModulePath    string
	Parent        *ID
}

type bucket struct {
	entries []*Entry
}

// Index is the bucketed global symbol index.
type Index struct {
	buckets    []bucket
	count      int
	collisions int
	scopePrefixes []string
	nextLocal  map[ast.FileID]uint32
}

// NewIndex allocates an Index with the given initial bucket count (rounded
// up to at least 8).
func NewIndex(initialBuckets int) *Index {
	if initialBuckets < 8 {
		initialBuckets = 8
	}
	return &Index{
		buckets:   make([]bucket, initialBuckets),
		nextLocal: make(map[ast.FileID]uint32),
	}
}

// AddScopePrefix registers an additional namespace-like prefix (e.g. "std")
// consulted by ScopeLookup, per spec.md §3's "active scope prefixes".
func (idx *Index) AddScopePrefix(prefix string) {
	idx.scopePrefixes = append(idx.scopePrefixes, prefix)
}

func (idx *Index) hash(key string) uint64 {
	return xxhash.Sum64String(key)
}

func (idx *Index) bucketFor(key string) *bucket {
	h := idx.hash(key)
	return &idx.buckets[h%uint64(len(idx.buckets))]
}

// Register inserts a new entry, copying file FilePath is used for the
// registered result but the entry is stored by reference. Never fails
// silently: always returns the created entry.
func (idx *Index) Register(file ast.FileID, qname string, node ast.NodeID, filePath string, scope ScopeKind, language ast.Language, kind ast.Kind) *Entry {
	local := idx.nextLocal[file] + 1
	idx.nextLocal[file] = local

	simple := qname
	if i := lastIndexOf(qname, language.Separator()); i >= 0 {
		simple = qname[i+len(language.Separator()):]
	} else if i := lastIndexOf(qname, "."); i >= 0 {
		simple = qname[i+1:]
	}

	e := &Entry{
		ID:            ID{File: file, Local: local},
		QualifiedName: qname,
		SimpleName:    simple,
		FilePath:      filePath,
		Node:          node,
		Scope:         scope,
		NodeKind:      kind,
		Language:      language,
	}

	b := idx.bucketFor(qname)
	if len(b.entries) > 0 {
		idx.collisions++
	}
	b.entries = append(b.entries, e)
	idx.count++

	if idx.ShouldRehash() {
		idx.Rehash(len(idx.buckets) * 2)
	}
	return e
}

// Lookup returns the first entry exactly matching qname, ties broken by
// insertion order.
func (idx *Index) Lookup(qname string) (*Entry, bool) {
	b := idx.bucketFor(qname)
	for _, e := range b.entries {
		if e.QualifiedName == qname {
			return e, true
		}
	}
	return nil, false
}

// ScopeLookup implements spec.md §4.2's scope-aware lookup: if name is
// already fully qualified it behaves as Lookup; otherwise it retries name
// prefixed by currentScope's dotted ancestors from innermost outward, then
// unprefixed, then each registered scope prefix.
func (idx *Index) ScopeLookup(name string, currentScope string, language ast.Language) (*Entry, bool) {
	sep := language.Separator()
	if containsSeparator(name, sep) {
		return idx.Lookup(name)
	}

	scope := currentScope
	for scope != "" {
		if e, ok := idx.Lookup(scope + sep + name); ok {
			return e, ok
		}
		idx := lastIndexOf(scope, sep)
		if idx < 0 {
			break
		}
		scope = scope[:idx]
	}

	if e, ok := idx.Lookup(name); ok {
		return e, ok
	}
	for _, prefix := range idx.scopePrefixes {
		if e, ok := idx.Lookup(prefix + sep + name); ok {
			return e, ok
		}
	}
	return nil, false
}

func containsSeparator(s, sep string) bool {
	return lastIndexOf(s, sep) >= 0
}

func lastIndexOf(s, sep string) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		if s[i:i+len(sep)] == sep {
			return i
		}
	}
	return -1
}

// GetByScope returns every entry registered with the given symbol scope.
func (idx *Index) GetByScope(scope ScopeKind) []*Entry {
	var out []*Entry
	for _, b := range idx.buckets {
		for _, e := range b.entries {
			if e.Scope == scope {
				out = append(out, e)
			}
		}
	}
	return out
}

// GetByType returns every entry whose underlying AST node kind equals kind,
// per spec.md §4.2's get_by_type(kind)/§6's "enumerate symbols by kind".
func (idx *Index) GetByType(kind ast.Kind) []*Entry {
	var out []*Entry
	for _, b := range idx.buckets {
		for _, e := range b.entries {
			if e.NodeKind == kind {
				out = append(out, e)
			}
		}
	}
	return out
}

// GetByFile returns every entry registered for path.
func (idx *Index) GetByFile(path string) []*Entry {
	var out []*Entry
	for _, b := range idx.buckets {
		for _, e := range b.entries {
			if e.FilePath == path {
				out = append(out, e)
			}
		}
	}
	return out
}

// RemoveByFile deletes every entry whose FilePath equals path. Must be
// called before the owning AST is destroyed, so no symbol entry is left
// pointing into a destroyed AST (spec.md §3's AST-node-reference invariant).
// Reference edges stored on AST nodes are not touched.
func (idx *Index) RemoveByFile(path string) {
	for bi := range idx.buckets {
		b := &idx.buckets[bi]
		kept := b.entries[:0]
		for _, e := range b.entries {
			if e.FilePath == path {
				idx.count--
				continue
			}
			kept = append(kept, e)
		}
		b.entries = kept
	}
}

// ShouldRehash reports true once the load factor exceeds 0.75 or the
// collision rate exceeds 0.25, per spec.md §4.2.
func (idx *Index) ShouldRehash() bool {
	if len(idx.buckets) == 0 {
		return false
	}
	loadFactor := float64(idx.count) / float64(len(idx.buckets))
	if loadFactor > 0.75 {
		return true
	}
	if idx.count == 0 {
		return false
	}
	collisionRate := float64(idx.collisions) / float64(idx.count)
	return collisionRate > 0.25
}

// Rehash reallocates the bucket array to newCapacity and reinserts every
// entry, preserving lookup results exactly (spec.md §4.2's rehash
// invariant).
func (idx *Index) Rehash(newCapacity int) {
	if newCapacity < 8 {
		newCapacity = 8
	}
	old := idx.buckets
	idx.buckets = make([]bucket, newCapacity)
	idx.collisions = 0
	for _, b := range old {
		for _, e := range b.entries {
			nb := idx.bucketFor(e.QualifiedName)
			if len(nb.entries) > 0 {
				idx.collisions++
			}
			nb.entries = append(nb.entries, e)
		}
	}
}

// Count returns the number of live entries.
func (idx *Index) Count() int { return idx.count }
