package sandbox

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unscrambl/jsderef/internal/arborist"
)

func funcDeclOf(t *testing.T, src string) *arborist.Node {
	t.Helper()
	tr, err := arborist.New(context.Background(), []byte(src))
	require.NoError(t, err)
	require.Len(t, tr.Root.Body, 1)
	return tr.Root.Body[0]
}

func TestCallFunctionAddsArgs(t *testing.T) {
	fn := funcDeclOf(t, "function add(a, b) { return a + b; }")
	v, err := CallFunction(fn, []any{1.0, 2.0}, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestCallFunctionIfElseBranches(t *testing.T) {
	fn := funcDeclOf(t, "function abs(x) { if (x < 0) { return -x; } else { return x; } }")
	v, err := CallFunction(fn, []any{-5.0}, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	v, err = CallFunction(fn, []any{5.0}, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestCallFunctionMissingArgIsUndefined(t *testing.T) {
	fn := funcDeclOf(t, "function f(a, b) { return b; }")
	v, err := CallFunction(fn, []any{1.0}, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, Undefined, v)
}

func TestCallFunctionWithReceiverBindsThis(t *testing.T) {
	fn := funcDeclOf(t, "function secret() { return 'secret ' + this; }")
	v, err := CallFunctionWithReceiver(fn, "hello", nil, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, "secret hello", v)
}

func TestCallFunctionRejectsLoop(t *testing.T) {
	fn := funcDeclOf(t, "function f() { while (true) { return 1; } }")
	_, err := CallFunction(fn, nil, DefaultBudget())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCallFunctionCallsSiblingLocalFunction(t *testing.T) {
	tr, err := arborist.New(context.Background(), []byte("function helper(x) { return x * 2; } function f(a) { return helper(a) + 1; }"))
	require.NoError(t, err)
	require.Len(t, tr.Root.Body, 2)
	f := tr.Root.Body[1]
	v, err := CallFunction(f, []any{3.0}, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)
}

func TestCallFunctionDelegatesToGlobalBuiltin(t *testing.T) {
	fn := funcDeclOf(t, "function decode(a) { return atob(a); }")
	v, err := CallFunction(fn, []any{"c29sdmVkIQ=="}, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, "solved!", v)
}

func TestCallFunctionBigIntArithmetic(t *testing.T) {
	fn := funcDeclOf(t, "function total(a, b) { return a + b; }")
	v, err := CallFunction(fn, []any{&BigInt{Int: big.NewInt(3)}, &BigInt{Int: big.NewInt(4)}}, DefaultBudget())
	require.NoError(t, err)
	b, ok := v.(*BigInt)
	require.True(t, ok)
	assert.Equal(t, "7", b.Int.String())
}

func TestCallFunctionRegexTest(t *testing.T) {
	fn := funcDeclOf(t, "function isDigits(s) { return /^[0-9]+$/.test(s); }")
	v, err := CallFunction(fn, []any{"4242"}, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestCallFunctionJSONRoundTrip(t *testing.T) {
	fn := funcDeclOf(t, `function roundtrip(s) { return JSON.stringify(JSON.parse(s)); }`)
	v, err := CallFunction(fn, []any{`{"x":1,"y":[2,3]}`}, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, `{"x":1,"y":[2,3]}`, v)
}
