package passes

import (
	"context"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
	"github.com/unscrambl/jsderef/internal/sandbox"
)

// runResolveDefiniteMemberExpressions folds indexing/property access on a
// literal array, string or object ('hello'.length, [1,2,3][0], {a:1}.a)
// down to the accessed value. Three shapes are refused even though the
// base is literal-like: the member is the target of an UpdateExpression
// (`a[0]++` needs a real assignable location, not a folded constant), the
// member is itself a call's callee (`[1,2].push(3)` — folding `.push`
// would hand the call a function value, not a useful constant), and an
// empty/out-of-bounds access, since the sandbox answers those with
// undefined and undefined is not a safe literal substitute.
func runResolveDefiniteMemberExpressions(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	matches := t.TypeMap(arborist.KindMemberExpression)
	return runSimple(ctx, "resolveDefiniteMemberExpressions", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if n.Object == nil || !n.Object.IsLiteralLike() {
			return false
		}
		if n.Computed && (n.Property == nil || !n.Property.IsLiteralLike()) {
			return false
		}
		if isUpdateTarget(n) || isCallCallee(n) {
			return false
		}
		v, err := evalFresh(n, logger, "resolveDefiniteMemberExpressions")
		if err != nil {
			return false
		}
		if v == sandbox.Undefined {
			return false
		}
		replacement, err := sandbox.Literalize(v)
		if err != nil {
			return false
		}
		t.MarkNode(n, replacement, "resolveDefiniteMemberExpressions")
		return true
	})
}

func isUpdateTarget(n *arborist.Node) bool {
	return n.Parent != nil && n.Parent.Kind == arborist.KindUpdateExpression && n.Parent.Argument == n
}

func isCallCallee(n *arborist.Node) bool {
	return n.Parent != nil && n.Parent.Kind == arborist.KindCallExpression && n.Parent.Callee == n
}

// runResolveMinimalAlphabet folds the unary/array idiom JSFuck-style
// obfuscators build their whole alphabet out of — `+[]` -> 0, `![]` ->
// false, `+!+[]` -> 1, `[]+[]` -> '' — by evaluating any Unary, Binary or
// Logical expression that bottoms out at an ArrayExpression somewhere in
// its literal-like operand tree. resolveDefiniteBinaryExpressions already
// folds plain literal arithmetic; this pass exists because the
// array-derived idiom is the one obfuscators actually emit and is worth
// naming and testing on its own. Mixed operands that aren't literal-like
// at all (`+this`) are already excluded by the IsLiteralLike() guard.
func runResolveMinimalAlphabet(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	var matches []*arborist.Node
	matches = append(matches, t.TypeMap(arborist.KindUnaryExpression)...)
	matches = append(matches, t.TypeMap(arborist.KindBinaryExpression)...)
	matches = append(matches, t.TypeMap(arborist.KindLogicalExpression)...)

	return runSimple(ctx, "resolveMinimalAlphabet", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if !n.IsLiteralLike() || !derivesFromArrayLiteral(n) {
			return false
		}
		return foldToLiteral(t, n, logger, "resolveMinimalAlphabet")
	})
}

// derivesFromArrayLiteral reports whether n's literal-like subtree
// contains at least one ArrayExpression — the signature of the JSFuck
// alphabet idiom, as opposed to plain numeric/string constant folding
// that resolveDefiniteBinaryExpressions already owns.
func derivesFromArrayLiteral(n *arborist.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case arborist.KindArrayExpression:
		return true
	case arborist.KindUnaryExpression:
		return derivesFromArrayLiteral(n.Argument)
	case arborist.KindBinaryExpression, arborist.KindLogicalExpression:
		return derivesFromArrayLiteral(n.Left) || derivesFromArrayLiteral(n.Right)
	case arborist.KindSequenceExpression:
		for _, e := range n.Expressions {
			if derivesFromArrayLiteral(e) {
				return true
			}
		}
	}
	return false
}
