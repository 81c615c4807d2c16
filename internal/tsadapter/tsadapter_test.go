package tsadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopemux/scopemux/internal/ast"
)

func TestDetectLanguagePrefersExtension(t *testing.T) {
	assert.Equal(t, ast.Python, DetectLanguage("main.py", []byte("#include <x>")))
	assert.Equal(t, ast.CPP, DetectLanguage("widget.cpp", nil))
}

func TestDetectLanguageFallsBackToContent(t *testing.T) {
	assert.Equal(t, ast.Python, DetectLanguage("script", []byte("def f():\n    pass\n")))
	assert.Equal(t, ast.TypeScript, DetectLanguage("module", []byte("interface Foo { x: number }")))
	assert.Equal(t, ast.JavaScript, DetectLanguage("module", []byte("const f = () => 1")))
	assert.Equal(t, ast.CPP, DetectLanguage("thing", []byte("#include <stdio.h>\nint main(){}")))
}

func TestDetectLanguageTiesTowardC(t *testing.T) {
	assert.Equal(t, ast.C, DetectLanguage("mystery", []byte("hello world")))
}

func TestParseCFunctionDefinition(t *testing.T) {
	source := []byte("int add(int a, int b) {\n  return a + b;\n}\n")
	tree, err := Parse(context.Background(), 1, "add.c", source, ast.C)
	require.NoError(t, err)

	var found bool
	tree.Walk(func(n *ast.Node) {
		if n.Kind == ast.Function && n.Name == "add" {
			found = true
		}
	})
	assert.True(t, found)
}

func TestParsePythonClassAndMethod(t *testing.T) {
	source := []byte("class Widget:\n    def build(self):\n        pass\n")
	tree, err := Parse(context.Background(), 1, "w.py", source, ast.Python)
	require.NoError(t, err)

	var sawClass, sawMethod bool
	tree.Walk(func(n *ast.Node) {
		if n.Kind == ast.Class && n.Name == "Widget" {
			sawClass = true
		}
		if n.Kind == ast.Method && n.Name == "build" {
			sawMethod = true
		}
	})
	assert.True(t, sawClass)
	assert.True(t, sawMethod)
}

func TestParseCCallAttachesPendingCallReference(t *testing.T) {
	source := []byte("int f(int x) { return x; }\nint g() { return f(1); }\n")
	tree, err := Parse(context.Background(), 1, "a.c", source, ast.C)
	require.NoError(t, err)

	var call *ast.Node
	tree.Walk(func(n *ast.Node) {
		if n.Kind == ast.FunctionCall {
			call = n
		}
	})
	require.NotNil(t, call)
	require.Len(t, call.References, 1)
	assert.Equal(t, ast.RefCall, call.References[0].Kind)
	assert.Equal(t, "f", call.References[0].TargetName)
	assert.False(t, call.References[0].Resolved)
}

func TestParseCIncludeAttachesPendingImportReference(t *testing.T) {
	source := []byte(`#include "util.h"` + "\nint main() { return 0; }\n")
	tree, err := Parse(context.Background(), 1, "a.c", source, ast.C)
	require.NoError(t, err)

	var include *ast.Node
	tree.Walk(func(n *ast.Node) {
		if n.Kind == ast.Include {
			include = n
		}
	})
	require.NotNil(t, include)
	assert.Equal(t, "util.h", include.Name)
	require.Len(t, include.References, 1)
	assert.Equal(t, ast.RefImport, include.References[0].Kind)
	assert.Equal(t, "util.h", include.References[0].TargetName)
}

func TestParsePythonImportUsesBareModuleName(t *testing.T) {
	source := []byte("import widgets\n")
	tree, err := Parse(context.Background(), 1, "a.py", source, ast.Python)
	require.NoError(t, err)

	var imp *ast.Node
	tree.Walk(func(n *ast.Node) {
		if n.Kind == ast.Import {
			imp = n
		}
	})
	require.NotNil(t, imp)
	assert.Equal(t, "widgets", imp.Name)
	require.Len(t, imp.References, 1)
	assert.Equal(t, ast.RefImport, imp.References[0].Kind)
	assert.Equal(t, "widgets", imp.References[0].TargetName)
}

func TestParsePythonAttributeUseAttachesPendingReference(t *testing.T) {
	source := []byte("class Widget:\n    pass\n\nw = Widget()\nx = w.value\n")
	tree, err := Parse(context.Background(), 1, "a.py", source, ast.Python)
	require.NoError(t, err)

	var sawUse bool
	tree.Walk(func(n *ast.Node) {
		for _, ref := range n.References {
			if ref.Kind == ast.RefUse && ref.TargetName == "w.value" {
				sawUse = true
			}
		}
	})
	assert.True(t, sawUse)
}

func TestParseUnknownLanguageDetectsFromExtension(t *testing.T) {
	source := []byte("function greet() { return 1; }")
	tree, err := Parse(context.Background(), 1, "greet.js", source, ast.Unknown)
	require.NoError(t, err)
	assert.Equal(t, ast.JavaScript, tree.Language)
}
