package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunDeadCodeCleanupRemovesUnreachableTail(t *testing.T) {
	tr := mustTree(t, "function f() { return 1; var dead = 2; console.log(dead); }")
	out, changed, err := RunDeadCodeCleanup(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.NotContains(t, out.Script(), "console.log(dead)")
}

func TestRunDeadCodeCleanupRemovesUnreferencedDeclarator(t *testing.T) {
	tr := mustTree(t, "function f() { var unused = 1; return 2; }")
	out, changed, err := RunDeadCodeCleanup(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.NotContains(t, out.Script(), "unused")
}

func TestRunDeadCodeCleanupKeepsReferencedDeclarator(t *testing.T) {
	tr := mustTree(t, "function f() { var used = 1; return used; }")
	out, changed, err := RunDeadCodeCleanup(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Contains(t, out.Script(), "used")
}

func TestRunDeadCodeCleanupKeepsDeclaratorWithCallInitializer(t *testing.T) {
	tr := mustTree(t, "function f() { var sideEffect = doThing(); return 1; }")
	out, changed, err := RunDeadCodeCleanup(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Contains(t, out.Script(), "doThing()")
}
