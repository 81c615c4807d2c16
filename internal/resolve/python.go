package resolve

import (
	"strings"

	"github.com/scopemux/scopemux/internal/ast"
)

// PythonResolver implements spec.md §4.3's Python resolution rules.
type PythonResolver struct{}

func (p *PythonResolver) Cleanup() {}

func (p *PythonResolver) ResolveRef(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int) Status {
	ref := node.References[refIdx]
	name := ref.TargetName

	if ref.Kind == ast.RefImport {
		module := name
		if strings.Contains(node.RawContent, "from ") {
			if m, ok := fromImportModule(node.RawContent); ok {
				module = m
			}
		}
		if entry, ok := ctx.Index.Lookup(module); ok {
			return completeSuccess(ctx, tree, node, refIdx, entry)
		}
		recordNotFoundSuggestion(ctx, module)
		return NotFound
	}

	if lhs, rhs, ok := splitLastOnce(name, "."); ok {
		if _, ok := ctx.Index.Lookup(lhs); ok {
			if entry, ok := ctx.Index.Lookup(lhs + "." + rhs); ok {
				return completeSuccess(ctx, tree, node, refIdx, entry)
			}
		}
	}

	if entry, ok := ctx.Index.Lookup(name); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}

	parentScope := ""
	if node.HasParent {
		parentScope = tree.QualifiedNameOf(node.Parent)
	}
	if entry, ok := ctx.Index.ScopeLookup(name, parentScope, ast.Python); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}

	if entry, ok := ctx.Index.Lookup("builtins." + name); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}

	recordNotFoundSuggestion(ctx, name)
	return NotFound
}

// fromImportModule extracts X from a raw "from X import Y" span via
// substring matching, per spec.md §4.3.
func fromImportModule(raw string) (string, bool) {
	const prefix = "from "
	idx := strings.Index(raw, prefix)
	if idx < 0 {
		return "", false
	}
	rest := raw[idx+len(prefix):]
	end := strings.Index(rest, " import")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
