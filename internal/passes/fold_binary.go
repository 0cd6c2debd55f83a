package passes

import (
	"context"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// runResolveDefiniteBinaryExpressions folds any BinaryExpression,
// LogicalExpression or UnaryExpression whose operands are already
// literal-like down to a single literal, via the sandbox evaluator. This
// is the workhorse pass: most obfuscated arithmetic and string-building
// chains are sequences of operations over constants that only look
// opaque because they haven't been evaluated yet. This also covers the
// `!!x` double-negation idiom obfuscators use for ToBoolean coercion —
// `!!0` and `!!""` fold the same way a plain nested UnaryExpression over
// a literal-like argument does, so it needs no dedicated pass. `!!NaN`
// is not folded: NaN is an Identifier, which is not literal-like.
func runResolveDefiniteBinaryExpressions(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	var matches []*arborist.Node
	matches = append(matches, t.TypeMap(arborist.KindBinaryExpression)...)
	matches = append(matches, t.TypeMap(arborist.KindLogicalExpression)...)
	matches = append(matches, t.TypeMap(arborist.KindUnaryExpression)...)
	matches = append(matches, t.TypeMap(arborist.KindConditionalExpression)...)
	matches = append(matches, t.TypeMap(arborist.KindSequenceExpression)...)

	return runSimple(ctx, "resolveDefiniteBinaryExpressions", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if !n.IsLiteralLike() {
			return false
		}
		// ConditionalExpression with a literal-like test but a
		// non-literal branch is handled by
		// resolveDeterministicConditionalExpressions instead, so only
		// fully literal-like conditional/sequence expressions land here
		// (e.g. `1 ? 2 : 3`).
		return foldToLiteral(t, n, logger, "resolveDefiniteBinaryExpressions")
	})
}
