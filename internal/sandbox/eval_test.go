package sandbox

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unscrambl/jsderef/internal/arborist"
)

func exprOf(t *testing.T, src string) *arborist.Node {
	t.Helper()
	tr, err := arborist.New(context.Background(), []byte(src+";"))
	require.NoError(t, err)
	require.Len(t, tr.Root.Body, 1)
	return tr.Root.Body[0].Expression
}

func TestEvalArithmeticAndStringCoercion(t *testing.T) {
	cases := map[string]any{
		"5 * 3":      15.0,
		"'2' + 2":    "22",
		"'10' - 1":   9.0,
		"'o' + 'k'":  "ok",
		"3 - -1":     4.0,
		"!true":      false,
		"1 < 2":      true,
		"'123'[0]":   "1",
		"'hello'.length": 5.0,
	}
	for src, want := range cases {
		n := exprOf(t, src)
		v, err := Eval(n, DefaultBudget())
		require.NoError(t, err, src)
		assert.Equal(t, want, v, src)
	}
}

func TestEvalAtob(t *testing.T) {
	n := exprOf(t, "atob('c29sdmVkIQ==')")
	v, err := Eval(n, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, "solved!", v)
}

func TestEvalRejectsIdentifiers(t *testing.T) {
	n := exprOf(t, "x + 1")
	_, err := Eval(n, DefaultBudget())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestLiteralizeRoundTrip(t *testing.T) {
	node, err := Literalize("secret hello")
	require.NoError(t, err)
	assert.Equal(t, arborist.KindLiteral, node.Kind)
	assert.Equal(t, "'secret hello'", arborist.PrintExpr(node))
}

func TestLiteralizeNegativeNumber(t *testing.T) {
	node, err := Literalize(-5.0)
	require.NoError(t, err)
	assert.Equal(t, arborist.KindUnaryExpression, node.Kind)
	assert.Equal(t, "-5", arborist.PrintExpr(node))
}

func TestLiteralizeNaNAndInfinity(t *testing.T) {
	nanNode, err := Literalize(float64(0) / func() float64 { return 0 }())
	require.NoError(t, err)
	assert.Equal(t, "NaN", arborist.PrintExpr(nanNode))
}

func TestEvalBigIntArithmeticAndRelational(t *testing.T) {
	n := exprOf(t, "10n + 5n")
	v, err := Eval(n, DefaultBudget())
	require.NoError(t, err)
	b, ok := v.(*BigInt)
	require.True(t, ok)
	assert.Equal(t, "15", b.Int.String())

	lt := exprOf(t, "5n < 10")
	v, err = Eval(lt, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, true, v)

	eq := exprOf(t, "10n === 10")
	v, err = Eval(eq, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestEvalBigIntRejectsMixedArithmetic(t *testing.T) {
	n := exprOf(t, "10n + 5")
	_, err := Eval(n, DefaultBudget())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestEvalBigIntToString(t *testing.T) {
	n := exprOf(t, "255n.toString()")
	v, err := Eval(n, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, "255", v)
}

func TestEvalRegexLiteralTestAndExec(t *testing.T) {
	n := exprOf(t, "/foo/.test('foobar')")
	v, err := Eval(n, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestEvalStringMatchWithRegex(t *testing.T) {
	n := exprOf(t, "'abc123'.match(/[0-9]+/)")
	v, err := Eval(n, DefaultBudget())
	require.NoError(t, err)
	arr, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, arr, 1)
	assert.Equal(t, "123", arr[0])
}

func TestEvalTypeofBigIntAndSymbol(t *testing.T) {
	n := exprOf(t, "typeof 1n")
	v, err := Eval(n, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, "bigint", v)

	n2 := exprOf(t, "typeof Symbol('x')")
	v, err = Eval(n2, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, "symbol", v)
}

func TestEvalJSONParseAndStringify(t *testing.T) {
	n := exprOf(t, `JSON.parse('{"a":1,"b":[2,3]}')`)
	v, err := Eval(n, DefaultBudget())
	require.NoError(t, err)
	obj, ok := v.(*Object)
	require.True(t, ok)
	a, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1.0, a)

	s := exprOf(t, `JSON.stringify({"a":1})`)
	v, err = Eval(s, DefaultBudget())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)
}

func TestLiteralizeBigIntAndRegexAndSymbol(t *testing.T) {
	node, err := Literalize(&BigInt{Int: big.NewInt(42)})
	require.NoError(t, err)
	assert.Equal(t, arborist.KindBigIntLiteral, node.Kind)
	assert.Equal(t, "42n", arborist.PrintExpr(node))

	reNode, err := Literalize(newRegexpValue("ab+c", "gi"))
	require.NoError(t, err)
	assert.Equal(t, arborist.KindRegExpLiteral, reNode.Kind)
	assert.Equal(t, "/ab+c/gi", arborist.PrintExpr(reNode))

	symNode, err := Literalize(&Symbol{Description: "tag"})
	require.NoError(t, err)
	assert.Equal(t, arborist.KindCallExpression, symNode.Kind)
	assert.Equal(t, `Symbol('tag')`, arborist.PrintExpr(symNode))
}
