// Package passes is the pass catalogue: small, independently named
// rewrites, each either "safe" (purely syntactic, always sound to
// apply) or "unsafe" (depends on the sandbox evaluator or on
// scope/mutation analysis to be sound). The orchestrator drives the
// catalogue to a fixpoint; this package only defines what each pass
// does, not when it runs.
package passes

import (
	"context"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// Definition is one entry in the catalogue: a name for logging, whether
// it is safe or depends on the sandbox/mutation analysis, and its Run
// entry point. Run returns the tree to continue with (a freshly
// committed one if it staged any marks, or t unchanged otherwise) and
// whether it made progress this call.
type Definition struct {
	Name   string
	Unsafe bool
	Run    func(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error)
}

// Catalogue lists every pass, safe passes first. Each iteration of the
// orchestrator's fixpoint loop runs every safe pass once, in order, and
// then every unsafe pass once, in order.
func Catalogue() []Definition {
	var defs []Definition
	defs = append(defs, safePasses()...)
	defs = append(defs, unsafePasses()...)
	return defs
}

func safePasses() []Definition {
	return []Definition{
		{Name: "normalizeComputedMemberToDot", Unsafe: false, Run: runNormalizeComputedMemberToDot},
		{Name: "removeEmptyStatements", Unsafe: false, Run: runRemoveEmptyStatements},
	}
}

func unsafePasses() []Definition {
	return []Definition{
		{Name: "resolveDefiniteBinaryExpressions", Unsafe: true, Run: runResolveDefiniteBinaryExpressions},
		{Name: "resolveDefiniteMemberExpressions", Unsafe: true, Run: runResolveDefiniteMemberExpressions},
		{Name: "resolveMinimalAlphabet", Unsafe: true, Run: runResolveMinimalAlphabet},
		{Name: "resolveDeterministicConditionalExpressions", Unsafe: true, Run: runResolveDeterministicConditionalExpressions},
		{Name: "resolveBuiltinCalls", Unsafe: true, Run: runResolveBuiltinCalls},
		{Name: "resolveEvalCallsOnNonLiterals", Unsafe: true, Run: runResolveEvalCallsOnNonLiterals},
		{Name: "resolveLocalCalls", Unsafe: true, Run: runResolveLocalCalls},
		{Name: "resolveFunctionToArray", Unsafe: true, Run: runResolveFunctionToArray},
		{Name: "resolveInjectedPrototypeMethodCalls", Unsafe: true, Run: runResolveInjectedPrototypeMethodCalls},
		{Name: "resolveAugmentedFunctionWrappedArrayReplacements", Unsafe: true, Run: runResolveAugmentedFunctionWrappedArrayReplacements},
	}
}

// runSimple is the shared shape almost every pass follows: gather
// candidate nodes, try to stage a Mark against each, and if anything got
// staged, commit once. A ParseAfterRewriteError from the commit is
// swallowed (logged at Warn, treated as "no progress") rather than
// propagated, since a rewrite that fails to reparse is safer abandoned
// for this round than left to corrupt the tree.
func runSimple(
	ctx context.Context,
	name string,
	t *arborist.Tree,
	logger *zap.SugaredLogger,
	matches []*arborist.Node,
	transform func(*arborist.Tree, *arborist.Node) bool,
) (*arborist.Tree, bool, error) {
	applied := false
	for _, n := range matches {
		if t.HasPendingMark(n.ID) {
			continue
		}
		if transform(t, n) {
			applied = true
			if logger != nil {
				logger.Debugf("%s: rewrote node %d [%d,%d)", name, n.ID, n.StartByte, n.EndByte)
			}
		}
	}
	if !applied {
		return t, false, nil
	}
	next, err := t.ApplyChanges(ctx)
	if err != nil {
		if logger != nil {
			logger.Warnf("%s: commit failed, discarding this round's rewrites: %v", name, err)
		}
		return t, false, nil
	}
	return next, true, nil
}
