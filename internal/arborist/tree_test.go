package arborist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTree(t *testing.T, src string) *Tree {
	t.Helper()
	tr, err := New(context.Background(), []byte(src))
	require.NoError(t, err)
	return tr
}

func TestParseAndPrintRoundTrip(t *testing.T) {
	tr := mustTree(t, "var a = 1 + 2;\nfunction f(x) {\n  return x;\n}\n")
	out := tr.Script()
	assert.Contains(t, out, "var a = 1 + 2;")
	assert.Contains(t, out, "function f(x) {")
	assert.Contains(t, out, "return x;")
}

func TestTypeMapBucketsByKind(t *testing.T) {
	tr := mustTree(t, "var a = 1; var b = 2;")
	decls := tr.TypeMap(KindVariableDeclaration)
	assert.Len(t, decls, 2)
	lits := tr.TypeMap(KindLiteral)
	assert.Len(t, lits, 2)
}

func TestScopeResolvesReferenceToDeclarator(t *testing.T) {
	tr := mustTree(t, "var a = 1; a = a + 1;")
	decls := tr.TypeMap(KindVariableDeclarator)
	require.Len(t, decls, 1)
	binding := tr.Root.Scope.Bindings["a"]
	require.NotNil(t, binding)
	assert.GreaterOrEqual(t, len(binding.References), 2)
}

func TestApplyChangesCommitsMarkAndReparses(t *testing.T) {
	tr := mustTree(t, "var a = 1 + 2;")
	lits := tr.TypeMap(KindLiteral)
	require.Len(t, lits, 2)

	replacement := &Node{Kind: KindLiteral, LiteralType: literalNumber, NumValue: 3}
	tr.MarkNode(lits[0], replacement, "test-fold")
	tr.MarkRemove(lits[1], "test-fold")

	next, err := tr.ApplyChanges(context.Background())
	require.NoError(t, err)
	assert.Contains(t, next.Script(), "var a = 3")
}

func TestPrecedencePreservedOnPrint(t *testing.T) {
	tr := mustTree(t, "var a = (1 + 2) * 3;")
	assert.Contains(t, tr.Script(), "(1 + 2) * 3")
}

func TestForOfVersusForIn(t *testing.T) {
	tr := mustTree(t, "for (const k in obj) { f(k); }\nfor (const v of arr) { g(v); }")
	assert.Contains(t, tr.Script(), "for (const k in obj)")
	assert.Contains(t, tr.Script(), "for (const v of arr)")
}
