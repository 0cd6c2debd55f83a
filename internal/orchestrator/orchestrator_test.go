package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string, cfg Config) Result {
	t.Helper()
	res, err := Run(context.Background(), []byte(src), cfg, nil)
	require.NoError(t, err)
	return res
}

func TestRunFoldsDefiniteBinaryExpression(t *testing.T) {
	res := run(t, "var x = 2 + 3;", Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "5")
}

func TestRunFoldsDeterministicConditional(t *testing.T) {
	res := run(t, "var x = true ? 'a' : 'b';", Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "'a'")
	assert.NotContains(t, res.Source, "'b'")
}

func TestRunResolvesLocalCall(t *testing.T) {
	res := run(t, "function add(a, b) { return a + b; } add(1, 2);", Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "3")
}

func TestRunResolvesInjectedPrototypeMethod(t *testing.T) {
	src := "String.prototype.secret = function () { return 'secret ' + this; }; 'hello'.secret();"
	res := run(t, src, Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "secret hello")
}

func TestRunLeavesUnresolvableLogicalChainAlone(t *testing.T) {
	src := "!variable || !obj.prop || !func();"
	res := run(t, src, Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "variable")
	assert.Contains(t, res.Source, "func()")
}

func TestRunLeavesHostAPICallAlone(t *testing.T) {
	src := "document.querySelector('div');"
	res := run(t, src, Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "document.querySelector")
}

func TestRunDoesNotInlineLocalFunctionShadowingBuiltin(t *testing.T) {
	src := "function atob() { return 1; } atob('test');"
	res := run(t, src, Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "atob(")
}

func TestRunLeavesComputedMemberWithCallPropertyAlone(t *testing.T) {
	src := "'test'[getValue()];"
	res := run(t, src, Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "getValue()")
}

func TestRunLeavesUnresolvedCallPlusLiteralAlone(t *testing.T) {
	src := "foo() + 5;"
	res := run(t, src, Config{MaxIterations: 10})
	assert.Contains(t, res.Source, "foo()")
}

func TestRunMaxIterationsZeroReturnsUnchanged(t *testing.T) {
	src := "var   x   =   2 + 3;"
	res := run(t, src, Config{MaxIterations: 0})
	assert.Equal(t, 0, res.IterationsUsed)
	assert.False(t, strings.Contains(res.Source, " = 5"))
}

func TestRunStopsWhenNoProgress(t *testing.T) {
	src := "var x = 1;"
	res := run(t, src, Config{MaxIterations: 100})
	assert.Less(t, res.IterationsUsed, 100)
}

func TestRunCleanupRemovesDeadDeclarator(t *testing.T) {
	src := "function f() { var unused = 1; return 2; } f();"
	res := run(t, src, Config{MaxIterations: 10, Clean: true})
	assert.True(t, res.CleanupApplied)
	assert.NotContains(t, res.Source, "unused")
}
