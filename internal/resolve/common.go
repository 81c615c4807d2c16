package resolve

import (
	"strings"

	"github.com/scopemux/scopemux/internal/ast"
	"github.com/scopemux/scopemux/internal/symtab"
)

// completeSuccess resolves node's refIdx reference to entry's location and
// reports Success. Shared by every resolver so the bookkeeping (marking
// the edge resolved) never drifts between language implementations.
func completeSuccess(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int, entry *symtab.Entry) Status {
	tree.ResolveReference(node.ID, refIdx, entry.ID.File, entry.Node)
	return Success
}

// recordNotFoundSuggestion asks ctx.Suggest (if configured) for a "did you
// mean" candidate among the simple names of every Global-scope symbol.
// It never changes the caller's Status; the suggestion is recorded on ctx
// purely for diagnostics and read back via Context.LastSuggestion.
func recordNotFoundSuggestion(ctx *Context, name string) {
	if ctx == nil || ctx.Suggest == nil || ctx.Index == nil {
		return
	}
	candidates := ctx.Index.GetByScope(symtab.ScopeGlobal)
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.SimpleName)
	}
	suggestion, ok := ctx.Suggest(name, names)
	if !ok {
		return
	}
	ctx.mu.Lock()
	ctx.lastMissed = name
	ctx.lastSuggestion = suggestion
	ctx.mu.Unlock()
}

// splitOnce splits s at the first occurrence of sep, returning ok=false if
// sep does not occur.
func splitOnce(s, sep string) (string, string, bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}

// splitLastOnce splits s at the last occurrence of sep.
func splitLastOnce(s, sep string) (string, string, bool) {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}
