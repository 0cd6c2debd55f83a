package passes

import (
	"context"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
	"github.com/unscrambl/jsderef/internal/sandbox"
)

// runResolveInjectedPrototypeMethodCalls finds `String.prototype.X =
// function (...) {...}` installations and folds later `"literal".X(...)`
// call sites by running the installed method against the literal
// receiver, `this` bound to it, the same way
// resolveBuiltinCalls folds calls to the real built-in string methods.
func runResolveInjectedPrototypeMethodCalls(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	installed := injectedStringPrototypeMethods(t)
	if len(installed) == 0 {
		return t, false, nil
	}

	matches := t.TypeMap(arborist.KindCallExpression)
	return runSimple(ctx, "resolveInjectedPrototypeMethodCalls", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		m := n.Callee
		if m == nil || m.Kind != arborist.KindMemberExpression || m.Computed {
			return false
		}
		if m.Object == nil || !m.Object.IsStringLiteral() || m.Property == nil {
			return false
		}
		fn, ok := installed[m.Property.Name]
		if !ok {
			return false
		}
		for _, a := range n.Arguments {
			if !a.IsLiteralLike() {
				return false
			}
		}

		receiver, err := evalFresh(m.Object, logger, "resolveInjectedPrototypeMethodCalls")
		if err != nil {
			return false
		}
		args := make([]any, len(n.Arguments))
		for i, a := range n.Arguments {
			v, err := evalFresh(a, logger, "resolveInjectedPrototypeMethodCalls")
			if err != nil {
				return false
			}
			args[i] = v
		}

		v, err := callWithReceiverFresh(fn, receiver, args, logger, "resolveInjectedPrototypeMethodCalls")
		if err != nil {
			return false
		}
		replacement, err := sandbox.Literalize(v)
		if err != nil {
			return false
		}
		t.MarkNode(n, replacement, "resolveInjectedPrototypeMethodCalls")
		return true
	})
}

// injectedStringPrototypeMethods collects every `String.prototype.X =
// function ...` installation in t, keyed by method name.
func injectedStringPrototypeMethods(t *arborist.Tree) map[string]*arborist.Node {
	out := make(map[string]*arborist.Node)
	for _, n := range t.TypeMap(arborist.KindAssignmentExpression) {
		if n.Operator != "=" || n.Right == nil || n.Right.Kind != arborist.KindFunctionExpression {
			continue
		}
		target := n.Left
		if target == nil || target.Kind != arborist.KindMemberExpression || target.Computed {
			continue
		}
		proto := target.Object
		if proto == nil || proto.Kind != arborist.KindMemberExpression || proto.Computed {
			continue
		}
		if proto.Object == nil || proto.Object.Kind != arborist.KindIdentifier || proto.Object.Name != "String" {
			continue
		}
		if proto.Property == nil || proto.Property.Name != "prototype" {
			continue
		}
		if target.Property == nil {
			continue
		}
		out[target.Property.Name] = n.Right
	}
	return out
}
