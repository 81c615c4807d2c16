package resolve

import "github.com/scopemux/scopemux/internal/ast"

// GenericResolver is the fallback resolver spec.md §4.3 describes: a direct
// lookup, then a scope-aware lookup using the node's parent's qualified
// name as the current scope, then NotFound.
type GenericResolver struct{}

func (g *GenericResolver) Cleanup() {}

func (g *GenericResolver) ResolveRef(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int) Status {
	name := node.References[refIdx].TargetName

	if entry, ok := ctx.Index.Lookup(name); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}

	parentScope := ""
	if node.HasParent {
		parentScope = tree.QualifiedNameOf(node.Parent)
	}
	if entry, ok := ctx.Index.ScopeLookup(name, parentScope, node.Language); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}

	recordNotFoundSuggestion(ctx, name)
	return NotFound
}
