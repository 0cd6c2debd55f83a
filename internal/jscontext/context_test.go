package jscontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unscrambl/jsderef/internal/arborist"
)

func mustTree(t *testing.T, src string) *arborist.Tree {
	t.Helper()
	tr, err := arborist.New(context.Background(), []byte(src))
	require.NoError(t, err)
	return tr
}

func TestContextOfLocalFunctionIncludesDeclaration(t *testing.T) {
	tr := mustTree(t, "function add(a, b) {\n  return a + b;\n}\nadd(1, 2);\n")
	calls := tr.TypeMap(arborist.KindCallExpression)
	require.Len(t, calls, 1)
	call := calls[0]

	funcName := call.Callee
	require.NotNil(t, funcName)
	scope := arborist.EnclosingScope(funcName)
	require.NotNil(t, scope)
	binding := scope.Resolve(funcName.Name)
	require.NotNil(t, binding)
	require.NotNil(t, binding.DeclNode.Parent)

	frag := OrderedSource(ContextOf(binding.DeclNode.Parent))
	assert.Contains(t, frag, "function add(a, b)")
	assert.Contains(t, frag, "return a + b;")
}

func TestContextOfDragsInMutationSites(t *testing.T) {
	tr := mustTree(t, "var arr = [1, 2];\narr.push(3);\nvar x = arr;\n")
	decls := tr.TypeMap(arborist.KindVariableDeclarator)
	require.NotEmpty(t, decls)

	var arrDecl *arborist.Node
	for _, d := range decls {
		if d.TargetID != nil && d.TargetID.Name == "arr" {
			arrDecl = d
		}
	}
	require.NotNil(t, arrDecl)

	frag := OrderedSource(ContextOf(arrDecl))
	assert.Contains(t, frag, "var arr = [1, 2];")
	assert.Contains(t, frag, "arr.push(3);")
}

func TestOrderedSourceDedupesByID(t *testing.T) {
	tr := mustTree(t, "var a = 1;\n")
	decls := tr.TypeMap(arborist.KindVariableDeclaration)
	require.Len(t, decls, 1)

	frag := OrderedSource([]*arborist.Node{decls[0], decls[0]})
	assert.Equal(t, 1, countOccurrences(frag, "var a = 1;"))
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
			i += len(substr) - 1
		}
	}
	return count
}

func TestOrderedSourceRelocatesIIFEToEnd(t *testing.T) {
	tr := mustTree(t, "(function () { globalThis.x = 1; })();\nvar y = 2;\n")
	program := tr.Root
	require.Len(t, program.Body, 2)

	frag := OrderedSource([]*arborist.Node{program.Body[0], program.Body[1]})
	assert.True(t, indexOf(frag, "var y = 2;") < indexOf(frag, "globalThis.x = 1;"))
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
