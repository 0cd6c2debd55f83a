package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveLocalCallsInlinesFunctionDeclaration(t *testing.T) {
	tr := mustTree(t, "function add(a, b) { return a + b; } var x = add(1, 2);")
	out, changed, err := runResolveLocalCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "3")
	assert.NotContains(t, out.Script(), "add(1, 2)")
}

func TestResolveLocalCallsInlinesVarBoundFunctionExpression(t *testing.T) {
	tr := mustTree(t, "var mul = function (a, b) { return a * b; }; var x = mul(3, 4);")
	out, changed, err := runResolveLocalCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "12")
}

func TestResolveLocalCallsSkipsTrivialWrapper(t *testing.T) {
	tr := mustTree(t, "function id(a) { return a; } var x = id(7);")
	_, changed, err := runResolveLocalCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResolveLocalCallsSkipsWhenArgumentNotLiteralLike(t *testing.T) {
	tr := mustTree(t, "function add(a, b) { return a + b; } var x = add(a, 2);")
	_, changed, err := runResolveLocalCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResolveFunctionToArrayInlinesDataTable(t *testing.T) {
	tr := mustTree(t, "function table() { return ['a', 'b', 'c']; } var x = table();")
	out, changed, err := runResolveFunctionToArray(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "'a'")
	assert.Contains(t, out.Script(), "'c'")
}

func TestResolveFunctionToArraySkipsParameterizedFunction(t *testing.T) {
	tr := mustTree(t, "function table(n) { return ['a', 'b']; } var x = table(1);")
	_, changed, err := runResolveFunctionToArray(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}
