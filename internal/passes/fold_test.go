package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
)

func mustTree(t *testing.T, src string) *arborist.Tree {
	t.Helper()
	tr, err := arborist.New(context.Background(), []byte(src))
	require.NoError(t, err)
	return tr
}

func TestResolveDefiniteBinaryExpressionsFoldsArithmetic(t *testing.T) {
	tr := mustTree(t, "var x = 2 + 3 * 4;")
	out, changed, err := runResolveDefiniteBinaryExpressions(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "14")
}

func TestResolveDefiniteBinaryExpressionsCollapsesDoubleNegation(t *testing.T) {
	tr := mustTree(t, "var x = !!0;")
	out, changed, err := runResolveDefiniteBinaryExpressions(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "false")
}

func TestResolveDeterministicConditionalExpressionsPicksLiveBranch(t *testing.T) {
	tr := mustTree(t, "var x = (1 < 2) ? alive() : dead();")
	out, changed, err := runResolveDeterministicConditionalExpressions(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "alive()")
	assert.NotContains(t, out.Script(), "dead()")
}

func TestResolveDefiniteMemberExpressionsFoldsStringIndexAndLength(t *testing.T) {
	tr := mustTree(t, "var x = 'hello'[0]; var y = 'hello'.length;")
	out, changed, err := runResolveDefiniteMemberExpressions(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "'h'")
	assert.Contains(t, out.Script(), "5")
}

func TestResolveDefiniteMemberExpressionsRefusesOutOfBoundsIndex(t *testing.T) {
	tr := mustTree(t, "var x = 'test'[99];")
	_, changed, err := runResolveDefiniteMemberExpressions(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResolveMinimalAlphabetFoldsArrayDerivedIdiom(t *testing.T) {
	tr := mustTree(t, "var x = +[]; var y = ![];")
	out, changed, err := runResolveMinimalAlphabet(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "0")
	assert.Contains(t, out.Script(), "false")
}

func TestResolveBuiltinCallsFoldsAtob(t *testing.T) {
	tr := mustTree(t, "var x = atob('c29sdmVkIQ==');")
	out, changed, err := runResolveBuiltinCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "solved!")
}

func TestResolveBuiltinCallsLeavesShadowedGlobalAlone(t *testing.T) {
	tr := mustTree(t, "function atob() { return 1; } atob('test');")
	_, changed, err := runResolveBuiltinCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResolveBuiltinCallsFoldsJSONStringify(t *testing.T) {
	tr := mustTree(t, `var x = JSON.stringify({"a":1});`)
	out, changed, err := runResolveBuiltinCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), `'{"a":1}'`)
}
