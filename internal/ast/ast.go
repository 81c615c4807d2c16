// Package ast defines the ScopeMux AST node model: a tagged-variant node
// kind, an arena-addressed tree with owning parent/child edges, and a
// separate non-owning reference-edge list for cross-node links such as
// calls, type uses and imports.
//
// Nodes are addressed by NodeID rather than by pointer (spec.md §9's
// redesign note on pointer graphs with back-edges): a Tree owns a flat
// arena of Node values, parent/child links are indices into that arena,
// and reference edges name a (FileID, NodeID) pair so they can point across
// file boundaries without complicating ownership.
package ast

import "strings"

// Kind is the tagged variant over every AST node shape spec.md §3 names.
type Kind int

const (
	Root Kind = iota
	Function
	Method
	Class
	Struct
	Union
	Interface
	Enum
	Typedef
	Namespace
	Module
	Variable
	Parameter
	FunctionCall
	Include
	Import
	Other
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Function:
		return "Function"
	case Method:
		return "Method"
	case Class:
		return "Class"
	case Struct:
		return "Struct"
	case Union:
		return "Union"
	case Interface:
		return "Interface"
	case Enum:
		return "Enum"
	case Typedef:
		return "Typedef"
	case Namespace:
		return "Namespace"
	case Module:
		return "Module"
	case Variable:
		return "Variable"
	case Parameter:
		return "Parameter"
	case FunctionCall:
		return "FunctionCall"
	case Include:
		return "Include"
	case Import:
		return "Import"
	default:
		return "Other"
	}
}

// Language is the tagged variant over the five supported source languages
// plus Unknown, used both on nodes and to tag whole files.
type Language int

const (
	Unknown Language = iota
	C
	CPP
	Python
	JavaScript
	TypeScript
)

func (l Language) String() string {
	switch l {
	case C:
		return "C"
	case CPP:
		return "C++"
	case Python:
		return "Python"
	case JavaScript:
		return "JavaScript"
	case TypeScript:
		return "TypeScript"
	default:
		return "Unknown"
	}
}

// Separator returns the scope-qualification separator spec.md §4.1/§4.2
// uses for this language: "::" for C++, "." otherwise.
func (l Language) Separator() string {
	if l == CPP {
		return "::"
	}
	return "."
}

// LanguageFromExtension implements the extension half of spec.md §4.1's
// language-detection policy.
func LanguageFromExtension(ext string) Language {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "c", "h":
		return C
	case "cpp", "cc", "cxx", "hpp", "hh":
		return CPP
	case "py":
		return Python
	case "js", "jsx", "mjs", "cjs":
		return JavaScript
	case "ts", "tsx":
		return TypeScript
	default:
		return Unknown
	}
}

// FileID identifies one source file within a project; zero is never valid.
type FileID uint32

// NodeID addresses one Node within a single file's Tree arena; zero is the
// always-present Root node of that tree.
type NodeID uint32

// SourceRange is a byte/line/column span within one file.
type SourceRange struct {
	StartByte, EndByte     uint32
	StartLine, StartColumn uint32
	EndLine, EndColumn     uint32
}

// ReferenceKind is the tagged variant over the reference-edge shapes a
// resolver can produce, per spec.md §4.3.
type ReferenceKind int

const (
	RefUnknown ReferenceKind = iota
	RefCall
	RefType
	RefInheritance
	RefImport
	RefImplementation
	RefOverride
	RefUse
	RefExtension
	RefTemplate
)

func (k ReferenceKind) String() string {
	switch k {
	case RefCall:
		return "Call"
	case RefType:
		return "Type"
	case RefInheritance:
		return "Inheritance"
	case RefImport:
		return "Import"
	case RefImplementation:
		return "Implementation"
	case RefOverride:
		return "Override"
	case RefUse:
		return "Use"
	case RefExtension:
		return "Extension"
	case RefTemplate:
		return "Template"
	default:
		return "Unknown"
	}
}

// ReferenceEdge is a non-owning cross-node link: a FunctionCall, Type use,
// Inheritance, Import, etc. recorded on the referring node. Before
// resolution, Resolved is false and TargetName carries the raw name the
// dispatcher must still resolve; after a successful resolve, Resolved is
// true and TargetFile/TargetNode name the located node.
type ReferenceEdge struct {
	Kind       ReferenceKind
	TargetName string
	Resolved   bool
	TargetFile FileID
	TargetNode NodeID
}

// Node is one entry in a Tree's arena. Children and Parent are indices into
// the same arena; References name nodes possibly owned by a different file.
type Node struct {
	ID            NodeID
	Kind          Kind
	Language      Language
	Name          string
	QualifiedName string
	Range         SourceRange
	FilePath      string
	RawContent    string
	IsDefinition  bool
	Parent        NodeID
	HasParent     bool
	Children      []NodeID
	References    []ReferenceEdge
	Properties    map[string]string
}

// Tree is one file's AST: an arena of Nodes rooted at index 0.
type Tree struct {
	File     FileID
	FilePath string
	Language Language
	nodes    []Node
}

// NewTree allocates a Tree with its Root node already present at NodeID 0.
func NewTree(file FileID, filePath string, language Language) *Tree {
	t := &Tree{File: file, FilePath: filePath, Language: language}
	t.nodes = append(t.nodes, Node{
		ID:       0,
		Kind:     Root,
		Language: language,
		FilePath: filePath,
	})
	return t
}

// Root returns the tree's root node id, always 0.
func (t *Tree) Root() NodeID { return 0 }

// Node dereferences id. The caller must only pass ids returned by this tree.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of nodes currently allocated, including Root.
func (t *Tree) Len() int { return len(t.nodes) }

// AddChild allocates a new node owned by parent and appends it to parent's
// Children in source order, maintaining the "every non-root node has
// exactly one parent" invariant from spec.md §3.
func (t *Tree) AddChild(parent NodeID, kind Kind, name string) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		ID:       id,
		Kind:     kind,
		Language: t.Language,
		Name:     name,
		FilePath: t.FilePath,
		Parent:   parent,
		HasParent: true,
	})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// QualifiedNameOf walks id's parent chain to build the scope-qualified name
// using the tree's language separator, joining each ancestor's Name (skipping
// the Root, which has no name) from outermost to innermost.
func (t *Tree) QualifiedNameOf(id NodeID) string {
	var parts []string
	cur := id
	for {
		n := t.Node(cur)
		if n.Kind == Root {
			break
		}
		if n.Name != "" {
			parts = append([]string{n.Name}, parts...)
		}
		if !n.HasParent {
			break
		}
		cur = n.Parent
	}
	return strings.Join(parts, t.Language.Separator())
}

// AddReference appends a non-owning reference edge to node id, doubling the
// backing slice's capacity from an initial 4 as spec.md §4.3's generic
// fallback describes.
func (t *Tree) AddReference(id NodeID, edge ReferenceEdge) {
	n := &t.nodes[id]
	if n.References == nil {
		n.References = make([]ReferenceEdge, 0, 4)
	}
	n.References = append(n.References, edge)
}

// AddPendingReference records an unresolved placeholder reference produced
// during AST construction (spec.md §4.4's resolve_file walks exactly these
// placeholders). kind/name describe what the resolver must still locate.
func (t *Tree) AddPendingReference(id NodeID, kind ReferenceKind, name string) {
	t.AddReference(id, ReferenceEdge{Kind: kind, TargetName: name})
}

// ResolveReference marks reference index i on node id as resolved, pointing
// at (targetFile, targetNode).
func (t *Tree) ResolveReference(id NodeID, i int, targetFile FileID, targetNode NodeID) {
	n := &t.nodes[id]
	n.References[i].Resolved = true
	n.References[i].TargetFile = targetFile
	n.References[i].TargetNode = targetNode
}

// Walk performs a depth-first pre-order traversal over the tree starting at
// Root, invoking visit for every node including Root itself.
func (t *Tree) Walk(visit func(*Node)) {
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := t.Node(id)
		visit(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root())
}
