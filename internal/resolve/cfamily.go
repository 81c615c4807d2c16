package resolve

import (
	"strings"

	"github.com/scopemux/scopemux/internal/ast"
)

// CFamilyResolver is the shared C/C++ core from spec.md §4.3. It is
// registered for both ast.C and ast.CPP; C++-only behavior (namespace
// qualification, templates) is gated on node.Language.
type CFamilyResolver struct{}

func (c *CFamilyResolver) Cleanup() {}

func (c *CFamilyResolver) ResolveRef(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int) Status {
	name := node.References[refIdx].TargetName

	if node.Language == ast.CPP {
		if lhs, rhs, ok := splitOnce(name, "::"); ok {
			if status := c.resolveQualified(ctx, tree, node, refIdx, lhs, rhs); status == Success {
				return status
			}
		}
		if head, ok := templateHead(name); ok {
			if entry, found := ctx.Index.Lookup(head); found {
				return completeSuccess(ctx, tree, node, refIdx, entry)
			}
		}
	}

	if lhs, rhs, ok := splitMember(name); ok {
		if status := c.resolveMember(ctx, tree, node, refIdx, lhs, rhs); status == Success {
			return status
		}
	}

	// Include, macro-like Use, and plain class-name lookups all reduce to
	// a direct name lookup against the symbol index.
	if entry, ok := ctx.Index.Lookup(name); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}

	recordNotFoundSuggestion(ctx, name)
	return NotFound
}

// resolveQualified handles C++'s `Namespace::member` references: resolve
// the namespace on the left, then look up the fully qualified name.
func (c *CFamilyResolver) resolveQualified(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int, lhs, rhs string) Status {
	if _, ok := ctx.Index.Lookup(lhs); !ok {
		return NotFound
	}
	if entry, ok := ctx.Index.Lookup(lhs + "::" + rhs); ok {
		return completeSuccess(ctx, tree, node, refIdx, entry)
	}
	return NotFound
}

// resolveMember handles `a.b` / `a->b` property-style access: resolve the
// struct/class on the left, then scan its recorded members for a name
// match on the right.
func (c *CFamilyResolver) resolveMember(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int, lhs, rhs string) Status {
	owner, ok := ctx.Index.Lookup(lhs)
	if !ok {
		return NotFound
	}
	ownerTree, ok := ctx.Trees.TreeForFile(owner.ID.File)
	if !ok {
		return NotFound
	}
	ownerNode := ownerTree.Node(owner.Node)
	for _, childID := range ownerNode.Children {
		child := ownerTree.Node(childID)
		if child.Name == rhs {
			tree.ResolveReference(node.ID, refIdx, owner.ID.File, childID)
			return Success
		}
	}
	return NotFound
}

func splitMember(name string) (string, string, bool) {
	if lhs, rhs, ok := splitOnce(name, "->"); ok {
		return lhs, rhs, true
	}
	if lhs, rhs, ok := splitLastOnce(name, "."); ok {
		return lhs, rhs, true
	}
	return "", "", false
}

func templateHead(name string) (string, bool) {
	idx := strings.IndexByte(name, '<')
	if idx < 0 {
		return "", false
	}
	return name[:idx], true
}
