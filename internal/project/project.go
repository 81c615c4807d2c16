// Package project implements the ScopeMux project driver (spec.md §4.5):
// file/directory discovery, parsing, include chasing, symbol registration
// and dependency-edge bookkeeping over one project's file set.
package project

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/scopemux/scopemux/internal/ast"
	"github.com/scopemux/scopemux/internal/fsutil"
	"github.com/scopemux/scopemux/internal/logr"
	"github.com/scopemux/scopemux/internal/resolve"
	"github.com/scopemux/scopemux/internal/scmerrors"
	"github.com/scopemux/scopemux/internal/symtab"
	"github.com/scopemux/scopemux/internal/tsadapter"
)

// Stats is the project-wide counters the embedding host surface exposes.
type Stats struct {
	FilesDiscovered int
	FilesParsed     int
	Resolve         resolve.Stats
}

// Project owns one project's root directory, discovered/parsed files, the
// global symbol index and resolver registry, configuration, and the
// last-error slot (spec.md §3's "Project state").
type Project struct {
	Root   string
	Config Configuration

	fs       fsutil.FileSystem
	index    *symtab.Index
	registry *resolve.Registry
	lastErr  scmerrors.LastErrorSlot

	files       []*ast.Tree
	pathToFile  map[string]ast.FileID
	fileToPath  map[ast.FileID]string
	contentHash map[ast.FileID]uint64
	nextFileID  ast.FileID

	discovered    []string
	discoveredSet map[string]bool
	discoverDepth map[string]uint

	gitignoreLoaded   bool
	gitignoreExcludes []string

	dependencies map[string]map[string]bool
}

// New creates a Project rooted at root using fs for all filesystem access.
// A nil fs defaults to the real operating-system filesystem.
func New(root string, cfg Configuration, fs fsutil.FileSystem) *Project {
	if fs == nil {
		fs = fsutil.Real{}
	}
	if cfg.AutoExcludeBuildArtifacts {
		detected := NewBuildArtifactDetector(root).DetectOutputDirectories()
		cfg.ExcludeGlobs = DeduplicatePatterns(append(append([]string{}, cfg.ExcludeGlobs...), detected...))
	}
	return &Project{
		Root:          root,
		Config:        cfg,
		fs:            fs,
		index:         symtab.NewIndex(64),
		registry:      resolve.NewRegistry(),
		pathToFile:    make(map[string]ast.FileID),
		fileToPath:    make(map[ast.FileID]string),
		contentHash:   make(map[ast.FileID]uint64),
		discoveredSet: make(map[string]bool),
		discoverDepth: make(map[string]uint),
		dependencies:  make(map[string]map[string]bool),
	}
}

// normalizePath implements spec.md §6's normalization rule: absolute iff
// the path's first byte is '/', otherwise joined to the project root via a
// single '/'.
func (p *Project) normalizePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return filepath.ToSlash(filepath.Join(p.Root, path))
}

// AddFile discovers path for later parsing, at chain depth 0 (a directly
// requested file, not one reached by following an include/import). Parsing
// itself is deferred to ParseAllFiles.
func (p *Project) AddFile(path string) error {
	return p.addFileAtDepth(path, 0)
}

// addFileAtDepth is AddFile's internal form used by include chasing, which
// tracks the shallowest chain depth at which a file has been discovered (spec.md §9
// open question #1: the include-depth counter accumulates along a chain of
// includes rather than resetting at each file).
func (p *Project) addFileAtDepth(path string, depth uint) error {
	if p.Config.MaxIncludeDepth > 0 && depth > p.Config.MaxIncludeDepth {
		err := scmerrors.New(scmerrors.IncludeDepth, "add_file", nil).WithFile(path)
		p.lastErr.Set(err)
		return err
	}
	if p.Config.MaxFiles > 0 && uint(p.numKnownFiles()) >= p.Config.MaxFiles {
		err := scmerrors.New(scmerrors.TooManyFiles, "add_file", nil).WithFile(path)
		p.lastErr.Set(err)
		return err
	}

	normalized := p.normalizePath(path)
	if existing, known := p.discoverDepth[normalized]; known && depth >= existing {
		return nil
	}
	p.discoverDepth[normalized] = depth
	if p.discoveredSet[normalized] {
		return nil
	}
	if _, already := p.pathToFile[normalized]; already {
		return nil
	}
	p.discovered = append(p.discovered, normalized)
	p.discoveredSet[normalized] = true
	return nil
}

func (p *Project) numKnownFiles() int {
	return len(p.files) + len(p.discovered)
}

// AddDirectory walks dir (recursively when recursive is true), filtering by
// Config.ExtensionFilter (case-insensitive, glob-capable) when non-empty,
// and calls AddFile for every matching entry.
func (p *Project) AddDirectory(dir string, recursive bool) error {
	p.loadGitignoreOnce()
	normalized := p.normalizePath(dir)
	return p.walkDirectory(normalized, recursive)
}

func (p *Project) loadGitignoreOnce() {
	if p.gitignoreLoaded || !p.Config.RespectGitignore {
		return
	}
	p.gitignoreLoaded = true
	parser := NewGitignoreParser()
	if err := parser.LoadGitignore(p.Root); err != nil {
		logr.Warnf("add_directory: could not load .gitignore: %v", err)
		return
	}
	p.gitignoreExcludes = parser.GetExclusionPatterns()
}

func (p *Project) walkDirectory(dir string, recursive bool) error {
	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		wrapped := scmerrors.New(scmerrors.IO, "add_directory", err).WithFile(dir)
		p.lastErr.Set(wrapped)
		return wrapped
	}
	for _, entry := range entries {
		full := filepath.ToSlash(filepath.Join(dir, entry.Name()))
		if p.pathExcluded(full) {
			continue
		}
		if entry.IsDir() {
			if recursive {
				if err := p.walkDirectory(full, recursive); err != nil {
					logr.Warnf("add_directory: skipping %s: %v", full, err)
				}
			}
			continue
		}
		if !p.extensionAllowed(full) {
			continue
		}
		if err := p.AddFile(full); err != nil {
			logr.Warnf("add_directory: could not add %s: %v", full, err)
		}
	}
	return nil
}

// pathExcluded reports whether path matches a Config.ExcludeGlobs or loaded
// .gitignore pattern, evaluated before extension filtering so a matching
// directory is skipped without descending into it.
func (p *Project) pathExcluded(path string) bool {
	lower := strings.ToLower(path)
	for _, pattern := range p.Config.ExcludeGlobs {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), lower); ok {
			return true
		}
	}
	for _, pattern := range p.gitignoreExcludes {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), lower); ok {
			return true
		}
	}
	return false
}

func (p *Project) extensionAllowed(path string) bool {
	if len(p.Config.ExtensionFilter) == 0 {
		return true
	}
	lower := strings.ToLower(path)
	for _, pattern := range p.Config.ExtensionFilter {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), lower); ok {
			return true
		}
		if strings.HasSuffix(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// ParseAllFiles iterates discovered paths, parsing each with the
// tree-sitter adapter, chasing includes/imports, and registering symbols.
// Because include chasing may add new discovered files, the driver
// re-enters until a pass adds nothing new or the file cap is hit.
func (p *Project) ParseAllFiles(ctx context.Context) error {
	for {
		progressed, err := p.parsePendingPass(ctx)
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
		if p.Config.MaxFiles > 0 && uint(len(p.files)) >= p.Config.MaxFiles {
			return nil
		}
	}
}

func (p *Project) parsePendingPass(ctx context.Context) (bool, error) {
	pending := p.discovered
	p.discovered = nil
	for _, path := range pending {
		delete(p.discoveredSet, path)
	}

	progressed := false
	var multi []error
	for _, path := range pending {
		if _, already := p.pathToFile[path]; already {
			continue
		}
		if err := p.parseOneFile(ctx, path); err != nil {
			multi = append(multi, err)
			continue
		}
		progressed = true
	}
	if agg := scmerrors.NewMulti(multi); agg != nil {
		logr.Warnf("parse_all_files: %v", agg)
	}
	return progressed || len(pending) > 0, nil
}

func (p *Project) parseOneFile(ctx context.Context, path string) error {
	source, err := p.fs.ReadFile(path)
	if err != nil {
		wrapped := scmerrors.New(scmerrors.IO, "parse_all_files", err).WithFile(path)
		p.lastErr.Set(wrapped)
		return wrapped
	}

	hash := xxhash.Sum64(source)
	language := tsadapter.DetectLanguage(path, source)

	file := p.nextFileID + 1
	p.nextFileID = file

	tree, err := tsadapter.Parse(ctx, file, path, source, language)
	if err != nil {
		p.nextFileID--
		wrapped := scmerrors.New(scmerrors.ParseFailed, "parse_all_files", err).WithFile(path)
		p.lastErr.Set(wrapped)
		return wrapped
	}

	p.files = append(p.files, tree)
	p.pathToFile[path] = file
	p.fileToPath[file] = path
	p.contentHash[file] = hash

	depth := p.discoverDepth[path]
	p.extractAndProcessIncludes(tree, depth)

	p.registerFileSymbols(tree)
	return nil
}

// TreeForFile implements resolve.FileTrees.
func (p *Project) TreeForFile(file ast.FileID) (*ast.Tree, bool) {
	for _, t := range p.files {
		if t.File == file {
			return t, true
		}
	}
	return nil, false
}

// FileIDForPath implements resolve.FileTrees.
func (p *Project) FileIDForPath(path string) (ast.FileID, bool) {
	id, ok := p.pathToFile[p.normalizePath(path)]
	return id, ok
}

// RemoveFile frees path's AST and compacts the file list. symbol_index is
// swept first so no symbol entry is left pointing into the removed AST.
// Resolved reference edges in other files that target the removed file are
// left as they are.
func (p *Project) RemoveFile(path string) {
	normalized := p.normalizePath(path)
	file, ok := p.pathToFile[normalized]
	if !ok {
		return
	}
	p.index.RemoveByFile(normalized)

	kept := p.files[:0]
	for _, t := range p.files {
		if t.File != file {
			kept = append(kept, t)
		}
	}
	p.files = kept
	delete(p.pathToFile, normalized)
	delete(p.fileToPath, file)
	delete(p.contentHash, file)
	delete(p.dependencies, normalized)
}

// AddDependency records a non-owning edge from src to tgt, auto-adding
// either file to the project's discovered set if it is not already known.
func (p *Project) AddDependency(src, tgt string) error {
	nsrc := p.normalizePath(src)
	ntgt := p.normalizePath(tgt)
	if _, ok := p.pathToFile[nsrc]; !ok {
		if err := p.AddFile(nsrc); err != nil {
			return err
		}
	}
	if _, ok := p.pathToFile[ntgt]; !ok {
		if err := p.AddFile(ntgt); err != nil {
			return err
		}
	}
	if p.dependencies[nsrc] == nil {
		p.dependencies[nsrc] = make(map[string]bool)
	}
	p.dependencies[nsrc][ntgt] = true
	return nil
}

// GetDependencies returns a copied list of files path depends on.
func (p *Project) GetDependencies(path string) []string {
	normalized := p.normalizePath(path)
	set := p.dependencies[normalized]
	out := make([]string, 0, len(set))
	for tgt := range set {
		out = append(out, tgt)
	}
	return out
}

// ResolveAll runs the resolver registry over every parsed file, in
// file_contexts order, per spec.md §4.4/§5.
func (p *Project) ResolveAll() resolve.Status {
	var suggest resolve.SuggestFunc
	if p.Config.SuggestOnNotFound {
		suggest = resolve.JaroWinklerSuggest(0.82)
	}
	ctx := &resolve.Context{Index: p.index, Trees: p, Suggest: suggest}
	status := p.registry.ResolveAll(ctx, p.files)
	if p.Config.ResolveExternalSymbols {
		p.recordUnresolvedExternalSymbols()
	}
	return status
}

// recordUnresolvedExternalSymbols walks every Import/Include reference left
// unresolved by ResolveAll and records a scmerrors.UnresolvedExternal
// failure for its owning file. Only called when
// Configuration.ResolveExternalSymbols opts into treating an unresolved
// external module as an error instead of the default silent accept.
func (p *Project) recordUnresolvedExternalSymbols() {
	for _, tree := range p.files {
		tree.Walk(func(n *ast.Node) {
			for _, ref := range n.References {
				if ref.Resolved || ref.Kind != ast.RefImport {
					continue
				}
				err := scmerrors.New(scmerrors.UnresolvedExternal, "resolve_all", nil).WithFile(tree.FilePath)
				p.lastErr.Set(err)
			}
		})
	}
}

// LookupSymbol exposes the global symbol index's exact-match lookup.
func (p *Project) LookupSymbol(qname string) (*symtab.Entry, bool) {
	return p.index.Lookup(qname)
}

// SymbolsByScope enumerates every registered symbol of the given scope.
func (p *Project) SymbolsByScope(scope symtab.ScopeKind) []*symtab.Entry {
	return p.index.GetByScope(scope)
}

// SymbolsByKind enumerates every registered symbol whose AST node kind
// equals kind (spec.md §4.2's get_by_type(kind)), e.g. every Class or every
// Function across the project.
func (p *Project) SymbolsByKind(kind ast.Kind) []*symtab.Entry {
	return p.index.GetByType(kind)
}

// ReferencesTo finds every reference edge across every parsed file that
// points at (file, node), i.e. spec.md §6's "enumerate references to a
// node".
func (p *Project) ReferencesTo(file ast.FileID, node ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, tree := range p.files {
		tree.Walk(func(n *ast.Node) {
			for _, ref := range n.References {
				if ref.Resolved && ref.TargetFile == file && ref.TargetNode == node {
					out = append(out, n.ID)
				}
			}
		})
	}
	return out
}

// GetStats returns the project's current counters.
func (p *Project) GetStats() Stats {
	return Stats{
		FilesDiscovered: len(p.discovered),
		FilesParsed:     len(p.files),
		Resolve:         p.registry.GetStats(),
	}
}

// LastError returns the most recently recorded failure, if any.
func (p *Project) LastError() (scmerrors.EngineError, bool) {
	return p.lastErr.LastError()
}

// ContentUnchangedSince reports whether path's last-parsed content hash
// still matches source, letting callers confirm ParseAllFiles performed no
// additional parsing on a repeat call over unmodified files.
func (p *Project) ContentUnchangedSince(path string, source []byte) bool {
	file, ok := p.pathToFile[p.normalizePath(path)]
	if !ok {
		return false
	}
	return p.contentHash[file] == xxhash.Sum64(source)
}
