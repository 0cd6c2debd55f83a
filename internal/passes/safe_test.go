package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeComputedMemberToDotRewritesIdentifierKey(t *testing.T) {
	tr := mustTree(t, "var x = a['b'];")
	out, changed, err := runNormalizeComputedMemberToDot(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "a.b")
}

func TestNormalizeComputedMemberToDotLeavesNonIdentifierKeyAlone(t *testing.T) {
	tr := mustTree(t, "var x = a['not-an-id'];")
	_, changed, err := runNormalizeComputedMemberToDot(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRemoveEmptyStatementsDropsStrayBareSemicolons(t *testing.T) {
	tr := mustTree(t, "var x = 1;;;")
	out, changed, err := runRemoveEmptyStatements(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.NotContains(t, out.Script(), ";;")
}

func TestIsIdentifierName(t *testing.T) {
	assert.True(t, isIdentifierName("foo"))
	assert.True(t, isIdentifierName("_bar$1"))
	assert.False(t, isIdentifierName(""))
	assert.False(t, isIdentifierName("1abc"))
	assert.False(t, isIdentifierName("not-an-id"))
}
