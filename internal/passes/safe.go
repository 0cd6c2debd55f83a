package passes

import (
	"context"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// runNormalizeComputedMemberToDot rewrites a['b'] to a.b whenever the
// computed key is a string literal that is itself a valid identifier
// name — purely syntactic, never changes behavior, and makes every
// later pass's job easier since it collapses two equivalent shapes into
// one before any semantic pass has to match against them.
func runNormalizeComputedMemberToDot(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	matches := t.TypeMap(arborist.KindMemberExpression)
	return runSimple(ctx, "normalizeComputedMemberToDot", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if !n.Computed || n.Property == nil || n.Property.Kind != arborist.KindLiteral {
			return false
		}
		if n.Property.LiteralType != "string" || !isIdentifierName(n.Property.StrValue) {
			return false
		}
		replacement := &arborist.Node{
			Kind:     arborist.KindMemberExpression,
			Object:   n.Object,
			Property: &arborist.Node{Kind: arborist.KindIdentifier, Name: n.Property.StrValue},
			Computed: false,
		}
		t.MarkNode(n, replacement, "normalizeComputedMemberToDot")
		return true
	})
}

// runRemoveEmptyStatements drops stray EmptyStatement nodes (bare `;`
// left over from earlier rewrites) from whatever statement list holds
// them.
func runRemoveEmptyStatements(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	matches := t.TypeMap(arborist.KindEmptyStatement)
	return runSimple(ctx, "removeEmptyStatements", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		t.MarkRemove(n, "removeEmptyStatements")
		return true
	})
}

func isIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := r == '_' || r == '$' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		isDigit := '0' <= r && r <= '9'
		if i == 0 {
			if !isLetter {
				return false
			}
			continue
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}
