package resolve

import (
	"strings"

	"github.com/scopemux/scopemux/internal/ast"
	"github.com/scopemux/scopemux/internal/symtab"
)

var tsPrimitives = map[string]bool{
	"string": true, "number": true, "boolean": true, "any": true,
	"void": true, "undefined": true, "null": true, "never": true,
	"object": true, "unknown": true,
}

// TSResolver extends JSResolver with spec.md §4.3's TypeScript-only rules:
// primitive type names, namespaced types, generics, and a target-kind
// check for Type/Interface references.
type TSResolver struct {
	*JSResolver
}

func (t *TSResolver) Cleanup() {}

func (t *TSResolver) ResolveRef(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int) Status {
	ref := node.References[refIdx]
	name := ref.TargetName

	if ref.Kind == ast.RefType || ref.Kind == ast.RefInheritance {
		if tsPrimitives[name] {
			// Success without adding a reference edge: the primitive has
			// no declaration node to point at.
			return Success
		}
		if lhs, rhs, ok := splitOnce(name, "."); ok {
			if _, ok := ctx.Index.Lookup(lhs); ok {
				if entry, ok := ctx.Index.Lookup(lhs + "." + rhs); ok && matchesTypeKind(ctx, entry) {
					return completeSuccess(ctx, tree, node, refIdx, entry)
				}
			}
		}
		if head, ok := genericHead(name); ok {
			if entry, ok := ctx.Index.Lookup(head); ok && matchesTypeKind(ctx, entry) {
				return completeSuccess(ctx, tree, node, refIdx, entry)
			}
			name = head
		}
		if entry, ok := ctx.Index.Lookup(name); ok && matchesTypeKind(ctx, entry) {
			return completeSuccess(ctx, tree, node, refIdx, entry)
		}
		recordNotFoundSuggestion(ctx, name)
		return NotFound
	}

	return t.JSResolver.resolve(ctx, tree, node, refIdx, ast.TypeScript)
}

// matchesTypeKind implements spec.md §4.3's requirement that Type/Interface
// references only resolve against a target node of kind
// {Interface, Typedef, Enum, Class} — Typedef stands in for TypeScript's
// type-alias construct, which has no dedicated ast.Kind of its own.
func matchesTypeKind(ctx *Context, entry *symtab.Entry) bool {
	tree, ok := ctx.Trees.TreeForFile(entry.ID.File)
	if !ok {
		return false
	}
	switch tree.Node(entry.Node).Kind {
	case ast.Interface, ast.Typedef, ast.Enum, ast.Class:
		return true
	default:
		return false
	}
}

func genericHead(name string) (string, bool) {
	idx := strings.IndexByte(name, '<')
	if idx < 0 {
		return "", false
	}
	return name[:idx], true
}
