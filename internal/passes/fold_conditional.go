package passes

import (
	"context"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
	"github.com/unscrambl/jsderef/internal/sandbox"
)

// runResolveDeterministicConditionalExpressions collapses `cond ? a : b`
// to just `a` or `b` whenever cond is literal-like, regardless of
// whether the branches themselves are — this is what lets an
// obfuscator's opaque-predicate dead branches disappear even when the
// live branch is an arbitrary expression full of identifiers.
func runResolveDeterministicConditionalExpressions(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	matches := t.TypeMap(arborist.KindConditionalExpression)
	return runSimple(ctx, "resolveDeterministicConditionalExpressions", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if n.Test == nil || !n.Test.IsLiteralLike() {
			return false
		}
		v, err := evalFresh(n.Test, logger, "resolveDeterministicConditionalExpressions")
		if err != nil {
			return false
		}
		branch := n.Alternate
		if sandbox.Truthy(v) {
			branch = n.Consequent
		}
		if branch == nil {
			return false
		}
		t.MarkNode(n, branch, "resolveDeterministicConditionalExpressions")
		return true
	})
}
