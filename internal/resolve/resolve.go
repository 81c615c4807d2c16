// Package resolve implements ScopeMux's per-language reference resolvers
// and the registry/dispatcher that sits in front of them (spec.md §4.3,
// §4.4). A resolver is a function over (node, ref_kind, name, symbol index,
// aux data) that reports a resolution status and, on success, leaves a
// resolved reference edge on the referring node.
package resolve

import (
	"sync"

	"github.com/scopemux/scopemux/internal/ast"
	"github.com/scopemux/scopemux/internal/symtab"
)

// Status is the tagged variant over resolution outcomes.
type Status int

const (
	Success Status = iota
	NotFound
	Ambiguous
	Circular
	Error
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case NotFound:
		return "NotFound"
	case Ambiguous:
		return "Ambiguous"
	case Circular:
		return "Circular"
	default:
		return "Error"
	}
}

// FileTrees resolves a file path to the Tree that owns it, letting
// resolvers follow Import/Include edges into another file's symbols. The
// project driver supplies the concrete implementation.
type FileTrees interface {
	TreeForFile(file ast.FileID) (*ast.Tree, bool)
	FileIDForPath(path string) (ast.FileID, bool)
}

// Context bundles everything a resolver needs beyond the node itself.
type Context struct {
	Index   *symtab.Index
	Trees   FileTrees
	Suggest SuggestFunc

	mu             sync.Mutex
	lastMissed     string
	lastSuggestion string
}

// LastSuggestion returns the most recent "did you mean" candidate recorded
// against a NotFound outcome, if Suggest produced one.
func (c *Context) LastSuggestion() (missed, suggestion string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMissed, c.lastSuggestion, c.lastSuggestion != ""
}

// SuggestFunc computes a "did you mean" candidate for a NotFound outcome.
// It never changes the Status — purely diagnostic (spec.md §2.12).
type SuggestFunc func(name string, candidates []string) (string, bool)

// Resolver resolves one pending reference on node, identified by its index
// into node.References, and reports the outcome. On Success it calls
// tree.ResolveReference itself, except where the target has no declaration
// node (TSResolver's primitive type names), which leaves the edge unresolved.
type Resolver interface {
	ResolveRef(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int) Status
	// Cleanup releases any aux data the resolver owns. Called by the
	// registry before the resolver is replaced or unregistered.
	Cleanup()
}

// Stats mirrors spec.md §4.4's get_stats() result.
type Stats struct {
	Total    int
	Resolved int
}

// Unresolved returns Total - Resolved.
func (s Stats) Unresolved() int { return s.Total - s.Resolved }

const maxRegisteredLanguages = 16

// Registry is the resolver registry/dispatcher (spec.md §4.4). Built-in
// resolvers are registered live at construction time — this spec rejects
// the source's NULL-function-pointer init path (spec.md §9 open question).
type Registry struct {
	mu       sync.Mutex
	byLang   map[ast.Language]Resolver
	fallback Resolver
	total    int
	resolved int
}

// NewRegistry builds a dispatcher with real C/C++, Python, JavaScript,
// TypeScript and generic-fallback resolvers already installed.
func NewRegistry() *Registry {
	r := &Registry{
		byLang:   make(map[ast.Language]Resolver),
		fallback: &GenericResolver{},
	}
	cxx := &CFamilyResolver{}
	r.Register(ast.C, cxx)
	r.Register(ast.CPP, cxx)
	r.Register(ast.Python, &PythonResolver{})
	js := &JSResolver{}
	r.Register(ast.JavaScript, js)
	r.Register(ast.TypeScript, &TSResolver{JSResolver: js})
	return r
}

// Register installs resolver for language, cleaning up and replacing any prior
// resolver. Returns false if the table is already at capacity and
// language is not already registered.
func (r *Registry) Register(language ast.Language, resolver Resolver) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byLang[language]; ok {
		prev.Cleanup()
	} else if len(r.byLang) >= maxRegisteredLanguages {
		return false
	}
	r.byLang[language] = resolver
	return true
}

// Unregister removes the resolver for language after cleaning it up.
func (r *Registry) Unregister(language ast.Language) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byLang[language]; ok {
		prev.Cleanup()
		delete(r.byLang, language)
	}
}

// Find returns the resolver registered for language, if any.
func (r *Registry) Find(language ast.Language) (Resolver, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byLang[language]
	return res, ok
}

// ResolveNode resolves the refIdx'th pending reference on node, dispatching
// by node.Language, falling back to the generic resolver when no
// language-specific resolver matches or it reports anything but Success.
func (r *Registry) ResolveNode(ctx *Context, tree *ast.Tree, node *ast.Node, refIdx int) Status {
	r.mu.Lock()
	r.total++
	resolver, ok := r.byLang[node.Language]
	fallback := r.fallback
	r.mu.Unlock()

	var status Status
	if ok {
		status = resolver.ResolveRef(ctx, tree, node, refIdx)
	} else {
		status = NotFound
	}

	if status != Success && fallback != nil {
		status = fallback.ResolveRef(ctx, tree, node, refIdx)
	}

	if status == Success {
		r.mu.Lock()
		r.resolved++
		r.mu.Unlock()
	}
	return status
}

// ResolveFile walks tree's nodes in a bounded BFS, invoking ResolveNode for
// every pending (unresolved) reference edge it finds. The overall status is
// Success until the first non-Success outcome, which then sticks as the
// file's overall status; later successes do not change it — mirroring
// spec.md §4.4's aggregation rule (success dominates; first non-success
// sticks in the overall).
func (r *Registry) ResolveFile(ctx *Context, tree *ast.Tree) Status {
	overall := Success
	seenFailure := false

	queue := []ast.NodeID{tree.Root()}
	const maxQueue = 1 << 20
	for len(queue) > 0 {
		if len(queue) > maxQueue {
			break
		}
		id := queue[0]
		queue = queue[1:]
		node := tree.Node(id)

		for i, ref := range node.References {
			if ref.Resolved {
				continue
			}
			status := r.ResolveNode(ctx, tree, node, i)
			if status == Success {
				if !seenFailure {
					overall = Success
				}
			} else if !seenFailure {
				overall = status
				seenFailure = true
			}
		}
		queue = append(queue, node.Children...)
	}
	return overall
}

// ResolveAll resolves every tree in files, in order, aggregating the same
// way ResolveFile does across nodes.
func (r *Registry) ResolveAll(ctx *Context, files []*ast.Tree) Status {
	overall := Success
	seenFailure := false
	for _, tree := range files {
		status := r.ResolveFile(ctx, tree)
		if status != Success && !seenFailure {
			overall = status
			seenFailure = true
		}
	}
	return overall
}

// GetStats returns the running total/resolved counters.
func (r *Registry) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Total: r.total, Resolved: r.resolved}
}
