package passes

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// runResolveBuiltinCalls folds calls to the pure-global/method allow-list
// the sandbox evaluator already implements (atob, btoa, String.fromCharCode,
// String.prototype.replace/split/..., Math.*, JSON.parse/stringify) whenever
// every argument is already literal-like. A bare Identifier callee is refused unless it
// resolves to nothing in scope (i.e. it really is the global, not a
// shadowing local declaration); a computed member callee with a
// non-literal property, or one that reads "constructor", is refused since
// neither is a call the sandbox's fixed method table can safely serve.
func runResolveBuiltinCalls(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	matches := t.TypeMap(arborist.KindCallExpression)
	return runSimple(ctx, "resolveBuiltinCalls", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if !isBuiltinCallCandidate(n) {
			return false
		}
		for _, a := range n.Arguments {
			if !a.IsLiteralLike() {
				return false
			}
		}
		return foldToLiteral(t, n, logger, "resolveBuiltinCalls")
	})
}

// isUnshadowedNamespace reports whether identifier id resolves to nothing
// in scope — i.e. it really does name the global (atob, Math, String),
// not a local declaration that happens to share the name.
func isUnshadowedNamespace(id *arborist.Node) bool {
	scope := arborist.EnclosingScope(id)
	if scope == nil {
		return true
	}
	return scope.Resolve(id.Name) == nil
}

func isBuiltinCallCandidate(n *arborist.Node) bool {
	switch n.Callee.Kind {
	case arborist.KindIdentifier:
		return isUnshadowedNamespace(n.Callee)

	case arborist.KindMemberExpression:
		m := n.Callee
		if m.Property == nil {
			return false
		}
		if m.Computed && (!m.Property.IsLiteralLike() || !m.Property.IsStringLiteral()) {
			return false
		}
		name := m.Property.Name
		if m.Computed {
			name = m.Property.StrValue
		}
		if name == "constructor" {
			return false
		}
		if m.Object == nil {
			return false
		}
		if m.Object.Kind == arborist.KindIdentifier && isUnshadowedNamespace(m.Object) {
			switch m.Object.Name {
			case "Math":
				return true
			case "String":
				return name == "fromCharCode"
			case "JSON":
				return name == "parse" || name == "stringify"
			}
			return false
		}
		return m.Object.IsLiteralLike()
	}
	return false
}

// runResolveEvalCallsOnNonLiterals folds `eval(expr)` where expr reduces
// to a literal string: the call is replaced not by that string value but
// by the expression the string source parses to, since `eval` runs the
// decoded source rather than returning it.
func runResolveEvalCallsOnNonLiterals(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	matches := t.TypeMap(arborist.KindCallExpression)
	return runSimple(ctx, "resolveEvalCallsOnNonLiterals", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if n.Callee.Kind != arborist.KindIdentifier || n.Callee.Name != "eval" {
			return false
		}
		if len(n.Arguments) != 1 || !n.Arguments[0].IsLiteralLike() {
			return false
		}
		v, err := evalFresh(n.Arguments[0], logger, "resolveEvalCallsOnNonLiterals")
		if err != nil {
			return false
		}
		src, ok := v.(string)
		if !ok {
			return false
		}
		replacement, ok := parseEvaledExpression(ctx, strings.TrimSpace(src))
		if !ok {
			return false
		}
		t.MarkNode(n, replacement, "resolveEvalCallsOnNonLiterals")
		return true
	})
}

// parseEvaledExpression re-parses src (the decoded argument to eval) as a
// standalone expression statement and pulls out its single expression.
// src that doesn't parse to exactly one ExpressionStatement is refused
// rather than guessed at.
func parseEvaledExpression(ctx context.Context, src string) (*arborist.Node, bool) {
	tree, err := arborist.New(ctx, []byte(src+";"))
	if err != nil {
		return nil, false
	}
	if tree.Root == nil || len(tree.Root.Body) != 1 {
		return nil, false
	}
	stmt := tree.Root.Body[0]
	if stmt.Kind != arborist.KindExpressionStatement || stmt.Expression == nil {
		return nil, false
	}
	return stmt.Expression, true
}
