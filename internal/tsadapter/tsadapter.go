// Package tsadapter is the external-concrete-syntax-tree collaborator
// (spec.md §4.1, §6): it drives tree-sitter over one file's source buffer
// and converts the resulting concrete tree into a ScopeMux AST rooted at a
// single Root node.
//
// Parsing and language detection are kept together here because the
// detection policy (extension first, content heuristics second) and the
// per-language node-kind mapping are both keyed off the same Language tag.
package tsadapter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/scopemux/scopemux/internal/ast"
	"github.com/scopemux/scopemux/internal/scmerrors"
)

// DetectLanguage implements spec.md §4.1's two-stage language-detection
// policy: first by extension, then — only when the extension is not
// recognized — by content heuristics, ties broken toward C.
func DetectLanguage(path string, source []byte) ast.Language {
	ext := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		ext = path[i:]
	} else {
		ext = ""
	}
	if lang := ast.LanguageFromExtension(ext); lang != ast.Unknown {
		return lang
	}
	return detectFromContent(string(source))
}

func detectFromContent(src string) ast.Language {
	hasAny := func(substrs ...string) bool {
		for _, s := range substrs {
			if strings.Contains(src, s) {
				return true
			}
		}
		return false
	}

	if hasAny("import ", "def ", "class ") && !hasAny("function ", "=>") {
		return ast.Python
	}
	if hasAny("function ", "const ", "=>", "interface ") {
		if hasAny(": string", ": number", "interface ") {
			return ast.TypeScript
		}
		return ast.JavaScript
	}
	if hasAny("#include", "int main(") {
		return ast.CPP
	}
	// Tie broken toward C when nothing else matched.
	return ast.C
}

func grammarFor(lang ast.Language) (*sitter.Language, error) {
	switch lang {
	case ast.C:
		return c.GetLanguage(), nil
	case ast.CPP:
		return cpp.GetLanguage(), nil
	case ast.Python:
		return python.GetLanguage(), nil
	case ast.JavaScript:
		return javascript.GetLanguage(), nil
	case ast.TypeScript:
		return tstypescript.GetLanguage(), nil
	default:
		return nil, scmerrors.New(scmerrors.UnknownLanguage, "grammar_for", fmt.Errorf("no grammar for language %s", lang))
	}
}

// Parse consumes source for one file, tagged with language (which may be
// ast.Unknown, triggering DetectLanguage), and produces a ScopeMux AST.
func Parse(ctx context.Context, file ast.FileID, path string, source []byte, language ast.Language) (*ast.Tree, error) {
	if language == ast.Unknown {
		language = DetectLanguage(path, source)
	}

	grammar, err := grammarFor(language)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	concrete, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, scmerrors.New(scmerrors.ParseFailed, "parse", err).WithFile(path)
	}
	if concrete == nil || concrete.RootNode() == nil {
		return nil, scmerrors.New(scmerrors.ParseFailed, "parse", fmt.Errorf("empty concrete tree")).WithFile(path)
	}

	tree := ast.NewTree(file, path, language)
	b := &builder{tree: tree, source: source, language: language}
	b.visitChildren(concrete.RootNode(), tree.Root())
	return tree, nil
}

type builder struct {
	tree     *ast.Tree
	source   []byte
	language ast.Language
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.source[n.StartByte():n.EndByte()])
}

func (b *builder) rangeOf(n *sitter.Node) ast.SourceRange {
	sp, ep := n.StartPoint(), n.EndPoint()
	return ast.SourceRange{
		StartByte:   n.StartByte(),
		EndByte:     n.EndByte(),
		StartLine:   sp.Row,
		StartColumn: sp.Column,
		EndLine:     ep.Row,
		EndColumn:   ep.Column,
	}
}

// visitChildren walks n's children (skipping n itself, since the caller
// already has a ScopeMux node for it) recognizing constructs from the
// language's query set. Unrecognized subtrees are skipped at this level but
// still descended into, so nested recognized constructs are not lost.
func (b *builder) visitChildren(n *sitter.Node, parent ast.NodeID) {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		b.visitNode(child, parent)
	}
}

func (b *builder) visitNode(n *sitter.Node, parent ast.NodeID) {
	kind, name, ok := b.classify(n)
	if !ok {
		// Unrecognized construct: skip emitting a node but keep descending,
		// so e.g. a function nested inside an unmodeled wrapper is found.
		b.visitChildren(n, parent)
		return
	}

	id := b.tree.AddChild(parent, kind, name)
	node := b.tree.Node(id)
	node.Range = b.rangeOf(n)
	node.QualifiedName = b.tree.QualifiedNameOf(id)
	if kind == ast.Include || kind == ast.Import {
		node.RawContent = b.text(n)
	}
	if isDefinitionKind(kind) {
		node.IsDefinition = true
	}
	b.attachReference(n, id, kind, name)

	b.visitChildren(n, id)
}

// attachReference leaves a pending ReferenceEdge on every use-site node so
// the resolver registry (internal/resolve) has something real to chase
// once parsing is done: calls, includes/imports, and — for TypeScript
// variables — a type annotation, per spec.md §4.3's per-language resolver
// rules.
func (b *builder) attachReference(n *sitter.Node, id ast.NodeID, kind ast.Kind, name string) {
	switch kind {
	case ast.FunctionCall:
		if name != "" {
			b.tree.AddPendingReference(id, ast.RefCall, name)
		}
	case ast.Include, ast.Import:
		if name != "" {
			b.tree.AddPendingReference(id, ast.RefImport, name)
		}
	case ast.Variable:
		if b.language == ast.TypeScript {
			if t := n.ChildByFieldName("type"); t != nil {
				if typeName := b.typeAnnotationText(t); typeName != "" {
					b.tree.AddPendingReference(id, ast.RefType, typeName)
				}
			}
		}
	case ast.Other:
		// field_expression / qualified_identifier / bare-identifier-argument
		// nodes (classifyC) and attribute nodes (classifyPython) carry the
		// dotted/scoped name as their Name.
		if name == "" {
			return
		}
		switch b.language {
		case ast.C, ast.CPP, ast.Python:
			b.tree.AddPendingReference(id, ast.RefUse, name)
		}
	}
}

// typeAnnotationText extracts the type expression text out of a TypeScript
// type_annotation node (the ": Type" suffix), whose sole named child is the
// actual type.
func (b *builder) typeAnnotationText(t *sitter.Node) string {
	if t.NamedChildCount() == 0 {
		return ""
	}
	return b.text(t.NamedChild(0))
}

func isDefinitionKind(k ast.Kind) bool {
	switch k {
	case ast.Function, ast.Method, ast.Class, ast.Struct, ast.Union,
		ast.Interface, ast.Enum, ast.Typedef, ast.Namespace, ast.Module:
		return true
	default:
		return false
	}
}

// classify maps a concrete-tree node type onto a ScopeMux Kind and
// identifier name, per language. ok is false for node types this adapter
// does not recognize.
func (b *builder) classify(n *sitter.Node) (ast.Kind, string, bool) {
	switch b.language {
	case ast.C, ast.CPP:
		return b.classifyC(n)
	case ast.Python:
		return b.classifyPython(n)
	case ast.JavaScript, ast.TypeScript:
		return b.classifyJS(n)
	default:
		return ast.Other, "", false
	}
}

func (b *builder) nameOfField(n *sitter.Node, field string) string {
	c := n.ChildByFieldName(field)
	if c == nil {
		return ""
	}
	return b.text(c)
}

func (b *builder) classifyC(n *sitter.Node) (ast.Kind, string, bool) {
	switch n.Type() {
	case "function_definition", "function_declarator":
		decl := n.ChildByFieldName("declarator")
		name := b.nameOfField(n, "declarator")
		if decl != nil {
			if inner := decl.ChildByFieldName("declarator"); inner != nil {
				name = b.text(inner)
			}
		}
		if name == "" {
			return ast.Other, "", false
		}
		return ast.Function, name, true
	case "struct_specifier":
		return ast.Struct, b.nameOfField(n, "name"), b.nameOfField(n, "name") != ""
	case "union_specifier":
		return ast.Union, b.nameOfField(n, "name"), b.nameOfField(n, "name") != ""
	case "enum_specifier":
		return ast.Enum, b.nameOfField(n, "name"), b.nameOfField(n, "name") != ""
	case "class_specifier":
		return ast.Class, b.nameOfField(n, "name"), b.nameOfField(n, "name") != ""
	case "namespace_definition":
		return ast.Namespace, b.nameOfField(n, "name"), true
	case "type_definition":
		return ast.Typedef, b.lastIdentifier(n), true
	case "preproc_include":
		path, _ := cIncludePath(b.text(n))
		return ast.Include, path, true
	case "parameter_declaration":
		return ast.Parameter, b.nameOfField(n, "declarator"), true
	case "call_expression":
		return ast.FunctionCall, b.nameOfField(n, "function"), b.nameOfField(n, "function") != ""
	case "field_expression", "qualified_identifier":
		if isCallCallee(n) {
			// Already captured whole as the enclosing call's target name.
			return ast.Other, "", false
		}
		return ast.Other, b.text(n), true
	case "identifier":
		if isArgumentUse(n) {
			return ast.Other, b.text(n), true
		}
		return ast.Other, "", false
	case "declaration":
		if name := b.nameOfField(n, "declarator"); name != "" {
			return ast.Variable, name, true
		}
		return ast.Other, "", false
	default:
		return ast.Other, "", false
	}
}

func (b *builder) lastIdentifier(n *sitter.Node) string {
	count := int(n.NamedChildCount())
	for i := count - 1; i >= 0; i-- {
		c := n.NamedChild(i)
		if c.Type() == "type_identifier" || c.Type() == "identifier" {
			return b.text(c)
		}
	}
	return ""
}

// isCallCallee reports whether n is the "function" field of its parent
// call_expression, i.e. whether its text is already captured whole as that
// call's FunctionCall name and would otherwise be double-counted as a
// separate qualified/member-use reference. *sitter.Node equality isn't
// reliable, so identity is checked by start offset.
func isCallCallee(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != "call_expression" {
		return false
	}
	fn := parent.ChildByFieldName("function")
	return fn != nil && fn.StartByte() == n.StartByte()
}

// isArgumentUse reports whether n (a bare identifier) sits directly inside
// an argument_list, the common case of a plain variable or function name
// passed by value rather than declared or invoked.
func isArgumentUse(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "argument_list"
}

// cIncludePath extracts the quoted or angle-bracketed path out of a raw
// #include directive's source text.
func cIncludePath(raw string) (string, bool) {
	if idx := strings.IndexByte(raw, '"'); idx >= 0 {
		rest := raw[idx+1:]
		if end := strings.IndexByte(rest, '"'); end >= 0 {
			return rest[:end], true
		}
	}
	if idx := strings.IndexByte(raw, '<'); idx >= 0 {
		rest := raw[idx+1:]
		if end := strings.IndexByte(rest, '>'); end >= 0 {
			return rest[:end], true
		}
	}
	return "", false
}

func (b *builder) classifyPython(n *sitter.Node) (ast.Kind, string, bool) {
	switch n.Type() {
	case "function_definition":
		name := b.nameOfField(n, "name")
		if inMethodContext(n) {
			return ast.Method, name, name != ""
		}
		return ast.Function, name, name != ""
	case "class_definition":
		return ast.Class, b.nameOfField(n, "name"), true
	case "import_statement", "import_from_statement":
		name := pythonImportModuleName(b.text(n))
		return ast.Import, name, name != ""
	case "call":
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return ast.Other, "", false
		}
		return ast.FunctionCall, b.text(fn), true
	case "attribute":
		if isPythonCallCallee(n) {
			return ast.Other, "", false
		}
		return ast.Other, b.text(n), true
	case "assignment":
		if target := n.ChildByFieldName("left"); target != nil && target.Type() == "identifier" {
			return ast.Variable, b.text(target), true
		}
		return ast.Other, "", false
	default:
		return ast.Other, "", false
	}
}

// isPythonCallCallee reports whether n is the "function" field of its parent
// call node, i.e. is already captured whole as that call's FunctionCall
// name rather than a standalone attribute-use reference.
func isPythonCallCallee(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil || parent.Type() != "call" {
		return false
	}
	fn := parent.ChildByFieldName("function")
	return fn != nil && fn.StartByte() == n.StartByte()
}

// pythonImportModuleName extracts the module path out of an import or
// from-import statement's raw source text, e.g. "import a.b" -> "a.b" and
// "from a import foo" -> "a". Used both as the node's Name (so
// internal/project's include-chasing resolves a real file path instead of
// the whole statement) and as the pending reference's target.
func pythonImportModuleName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(trimmed, "from "); ok {
		rest = strings.TrimSpace(rest)
		if end := strings.IndexAny(rest, " \t\n"); end >= 0 {
			return rest[:end]
		}
		return rest
	}
	if rest, ok := strings.CutPrefix(trimmed, "import "); ok {
		rest = strings.TrimSpace(rest)
		if end := strings.IndexAny(rest, " \t\n,"); end >= 0 {
			rest = rest[:end]
		}
		return rest
	}
	return ""
}

func inMethodContext(n *sitter.Node) bool {
	p := n.Parent()
	for p != nil {
		if p.Type() == "class_definition" {
			return true
		}
		if p.Type() == "function_definition" || p.Type() == "module" {
			return false
		}
		p = p.Parent()
	}
	return false
}

func (b *builder) classifyJS(n *sitter.Node) (ast.Kind, string, bool) {
	switch n.Type() {
	case "function_declaration":
		return ast.Function, b.nameOfField(n, "name"), b.nameOfField(n, "name") != ""
	case "method_definition":
		name := b.nameOfField(n, "name")
		return ast.Method, name, name != ""
	case "class_declaration":
		return ast.Class, b.nameOfField(n, "name"), true
	case "interface_declaration":
		if b.language == ast.TypeScript {
			return ast.Interface, b.nameOfField(n, "name"), true
		}
		return ast.Other, "", false
	case "enum_declaration":
		if b.language == ast.TypeScript {
			return ast.Enum, b.nameOfField(n, "name"), true
		}
		return ast.Other, "", false
	case "import_statement":
		return ast.Import, b.text(n), true
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return ast.Other, "", false
		}
		if fn.Type() == "identifier" && b.text(fn) == "require" {
			return ast.Import, b.text(n), true
		}
		return ast.FunctionCall, b.text(fn), true
	case "variable_declarator":
		return ast.Variable, b.nameOfField(n, "name"), b.nameOfField(n, "name") != ""
	default:
		return ast.Other, "", false
	}
}
