package passes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveInjectedPrototypeMethodCallsBindsThis(t *testing.T) {
	src := "String.prototype.secret = function () { return 'secret ' + this; }; var x = 'hello'.secret();"
	tr := mustTree(t, src)
	out, changed, err := runResolveInjectedPrototypeMethodCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, out.Script(), "secret hello")
}

func TestResolveInjectedPrototypeMethodCallsIgnoresUninstalledMethod(t *testing.T) {
	src := "var x = 'hello'.toUpperCase();"
	tr := mustTree(t, src)
	_, changed, err := runResolveInjectedPrototypeMethodCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResolveInjectedPrototypeMethodCallsSkipsNonLiteralArgument(t *testing.T) {
	src := "String.prototype.repeatN = function (n) { return this + this; }; var x = 'a'.repeatN(n);"
	tr := mustTree(t, src)
	_, changed, err := runResolveInjectedPrototypeMethodCalls(context.Background(), tr, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.False(t, changed)
}
