package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeHasRoot(t *testing.T) {
	tr := NewTree(1, "/proj/a.c", C)
	root := tr.Node(tr.Root())
	assert.Equal(t, Root, root.Kind)
	assert.Equal(t, C, root.Language)
	assert.Equal(t, 1, tr.Len())
}

func TestAddChildMaintainsParentInvariant(t *testing.T) {
	tr := NewTree(1, "/proj/a.cpp", CPP)
	ns := tr.AddChild(tr.Root(), Namespace, "widgets")
	fn := tr.AddChild(ns, Function, "make")

	nsNode := tr.Node(ns)
	require.Len(t, nsNode.Children, 1)
	assert.Equal(t, fn, nsNode.Children[0])

	fnNode := tr.Node(fn)
	assert.True(t, fnNode.HasParent)
	assert.Equal(t, ns, fnNode.Parent)
}

func TestQualifiedNameOfUsesLanguageSeparator(t *testing.T) {
	cpp := NewTree(1, "/proj/a.cpp", CPP)
	ns := cpp.AddChild(cpp.Root(), Namespace, "widgets")
	cls := cpp.AddChild(ns, Class, "Button")
	assert.Equal(t, "widgets::Button", cpp.QualifiedNameOf(cls))

	py := NewTree(2, "/proj/a.py", Python)
	mod := py.AddChild(py.Root(), Module, "pkg")
	cls2 := py.AddChild(mod, Class, "Widget")
	assert.Equal(t, "pkg.Widget", py.QualifiedNameOf(cls2))
}

func TestQualifiedNameOfRootIsEmpty(t *testing.T) {
	tr := NewTree(1, "/proj/a.c", C)
	assert.Equal(t, "", tr.QualifiedNameOf(tr.Root()))
}

func TestAddPendingReferenceThenResolve(t *testing.T) {
	tr := NewTree(1, "/proj/a.c", C)
	call := tr.AddChild(tr.Root(), FunctionCall, "helper")
	tr.AddPendingReference(call, RefCall, "helper")

	node := tr.Node(call)
	require.Len(t, node.References, 1)
	assert.False(t, node.References[0].Resolved)

	tr.ResolveReference(call, 0, 1, 7)
	node = tr.Node(call)
	assert.True(t, node.References[0].Resolved)
	assert.Equal(t, NodeID(7), node.References[0].TargetNode)
}

func TestWalkVisitsInSourceOrder(t *testing.T) {
	tr := NewTree(1, "/proj/a.c", C)
	tr.AddChild(tr.Root(), Function, "first")
	tr.AddChild(tr.Root(), Function, "second")

	var names []string
	tr.Walk(func(n *Node) {
		if n.Kind == Function {
			names = append(names, n.Name)
		}
	})
	assert.Equal(t, []string{"first", "second"}, names)
}

func TestLanguageFromExtension(t *testing.T) {
	cases := map[string]Language{
		".c": C, ".h": C, ".cpp": CPP, ".hh": CPP,
		".py": Python, ".js": JavaScript, ".ts": TypeScript,
		".md": Unknown,
	}
	for ext, want := range cases {
		assert.Equal(t, want, LanguageFromExtension(ext), ext)
	}
}
