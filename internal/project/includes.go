package project

import (
	"path/filepath"
	"strings"

	"github.com/scopemux/scopemux/internal/ast"
	"github.com/scopemux/scopemux/internal/logr"
	"github.com/scopemux/scopemux/internal/scmerrors"
	"github.com/scopemux/scopemux/internal/symtab"
)

// extractAndProcessIncludes walks tree for Include/Import nodes, parses the
// raw span per spec.md §4.5's per-language rules, and discovers the
// resolved path at depth+1, i.e. one level deeper in the include chain than
// tree itself. Paths that would exceed Config.MaxIncludeDepth are dropped
// with a warning rather than erroring the whole file (spec.md §7:
// missing/over-deep includes are routine).
func (p *Project) extractAndProcessIncludes(tree *ast.Tree, depth uint) {
	dir := filepath.Dir(tree.FilePath)
	childDepth := depth + 1

	tree.Walk(func(n *ast.Node) {
		if n.Kind != ast.Include && n.Kind != ast.Import {
			return
		}
		resolved, system, ok := p.extractIncludePath(tree.Language, n)
		if !ok {
			return
		}
		if system && !p.Config.ParseHeaders {
			return
		}
		if !system && !p.Config.FollowIncludes {
			return
		}

		var full string
		if system {
			full = p.resolveSystemPath(resolved)
		} else {
			full = filepath.ToSlash(filepath.Join(dir, resolved))
		}

		if p.Config.MaxIncludeDepth > 0 && childDepth > p.Config.MaxIncludeDepth {
			err := scmerrors.New(scmerrors.IncludeDepth, "extract_and_process_includes", nil).WithFile(full)
			p.lastErr.Set(err)
			logr.Warnf("include depth exceeded, dropping %s (from %s)", full, tree.FilePath)
			return
		}

		if err := p.addFileAtDepth(full, childDepth); err != nil {
			logr.Warnf("could not add include %s: %v", full, err)
		}
	})
}

func (p *Project) resolveSystemPath(name string) string {
	roots := p.Config.systemIncludeRoots()
	return filepath.ToSlash(filepath.Join(roots[0], name))
}

// extractIncludePath parses n's RawContent according to language, returning
// the extracted path and whether it names a system include/absolute
// import.
func (p *Project) extractIncludePath(language ast.Language, n *ast.Node) (path string, system bool, ok bool) {
	switch language {
	case ast.C, ast.CPP:
		return extractCInclude(n.RawContent)
	case ast.Python:
		return n.Name, false, n.Name != ""
	case ast.JavaScript, ast.TypeScript:
		return extractJSImport(n.RawContent)
	default:
		return "", false, false
	}
}

func extractCInclude(raw string) (string, bool, bool) {
	if idx := strings.IndexByte(raw, '"'); idx >= 0 {
		rest := raw[idx+1:]
		if end := strings.IndexByte(rest, '"'); end >= 0 {
			return rest[:end], false, true
		}
	}
	if idx := strings.IndexByte(raw, '<'); idx >= 0 {
		rest := raw[idx+1:]
		if end := strings.IndexByte(rest, '>'); end >= 0 {
			return rest[:end], true, true
		}
	}
	return "", false, false
}

func extractJSImport(raw string) (string, bool, bool) {
	for _, marker := range []string{"from '", `from "`, "require('", `require("`} {
		idx := strings.Index(raw, marker)
		if idx < 0 {
			continue
		}
		rest := raw[idx+len(marker):]
		quote := marker[len(marker)-1]
		if end := strings.IndexByte(rest, quote); end >= 0 {
			return rest[:end], false, true
		}
	}
	return "", false, false
}

// registerFileSymbols emits a symbol entry for every node whose kind is one
// of the registrable kinds spec.md §4.5 lists, in pre-order traversal
// order.
func (p *Project) registerFileSymbols(tree *ast.Tree) {
	tree.Walk(func(n *ast.Node) {
		scope, ok := registrableScope(n.Kind)
		if !ok || n.Name == "" {
			return
		}
		qname := tree.QualifiedNameOf(n.ID)
		p.index.Register(tree.File, qname, n.ID, tree.FilePath, scope, tree.Language, n.Kind)
	})
}

func registrableScope(kind ast.Kind) (symtab.ScopeKind, bool) {
	switch kind {
	case ast.Function:
		return symtab.ScopeGlobal, true
	case ast.Method:
		return symtab.ScopeClass, true
	case ast.Class, ast.Struct, ast.Interface, ast.Enum, ast.Namespace:
		return symtab.ScopeGlobal, true
	case ast.Variable:
		return symtab.ScopeFile, true
	case ast.Module:
		return symtab.ScopeModule, true
	default:
		return symtab.ScopeUnknown, false
	}
}
