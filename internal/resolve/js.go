package resolve

import (
	"strings"

	"github.com/scopemux/scopemux/internal/ast"
)

// JSResolver implements spec.md §4.3's JavaScript resolution rules.
type JSResolver struct{}

func (j *JSResolver) Cleanup() {}

func (j *JSResolver) ResolveRef(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int) Status {
	return j.resolve(ctx, tree, node, refIdx, ast.JavaScript)
}

func (j *JSResolver) resolve(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int, language ast.Language) Status {
	ref := node.References[refIdx]
	name := ref.TargetName

	if ref.Kind == ast.RefImport {
		if path, ok := quotedImportPath(name, node.RawContent); ok {
			if entry, ok := ctx.Index.Lookup(path); ok {
				return completeSuccess(ctx, tree, node, refIdx, entry)
			}
			recordNotFoundSuggestion(ctx, path)
			return NotFound
		}
	}

	for _, prefix := range []string{"module.exports.", "exports."} {
		if strings.HasPrefix(name, prefix) {
			stripped := strings.TrimPrefix(name, prefix)
			if entry, ok := ctx.Index.Lookup(stripped); ok {
				return completeSuccess(ctx, tree, node, refIdx, entry)
			}
			name = stripped
		}
	}

	if lhs, rhs, ok := splitOnce(name, ".prototype."); ok {
		if class, ok := ctx.Index.Lookup(lhs); ok {
			if entry, ok := ctx.Index.Lookup(lhs + "." + rhs); ok {
				return completeSuccess(ctx, tree, node, refIdx, entry)
			}
			_ = class
		}
	}

	if entry, ok := ctx.Index.Lookup(name); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}

	parentScope := ""
	if node.HasParent {
		parentScope = tree.QualifiedNameOf(node.Parent)
	}
	if entry, ok := ctx.Index.ScopeLookup(name, parentScope, language); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}

	recordNotFoundSuggestion(ctx, name)
	return NotFound
}

// quotedImportPath extracts the quoted path from `from '…'`, `from "…"`,
// `require('…')` or `require("…")` occurring in raw, per spec.md §4.3/§4.5.
func quotedImportPath(name, raw string) (string, bool) {
	for _, marker := range []string{"from '", `from "`, "require('", `require("`} {
		idx := strings.Index(raw, marker)
		if idx < 0 {
			continue
		}
		rest := raw[idx+len(marker):]
		quote := marker[len(marker)-1]
		end := strings.IndexByte(rest, quote)
		if end < 0 {
			continue
		}
		return rest[:end], true
	}
	return name, false
}
