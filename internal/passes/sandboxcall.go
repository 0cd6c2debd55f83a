package passes

import (
	"errors"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
	"github.com/unscrambl/jsderef/internal/sandbox"
)

// evalFresh evaluates n against a freshly constructed budget. The
// sandbox's wall-clock budget is meant to bound a single call into the
// VM, not a whole job or pass, so every site that asks the sandbox to
// fold one candidate gets its own full allowance rather than draining a
// budget shared across the whole orchestrator run. A budget exhaustion
// is logged at Warn (distinct from every other reason a candidate might
// not fold) since it means this particular candidate was skipped for
// being too expensive to evaluate, not because the shape didn't match.
func evalFresh(n *arborist.Node, logger *zap.SugaredLogger, passName string) (any, error) {
	v, err := sandbox.Eval(n, sandbox.DefaultBudget())
	logBudgetExceeded(err, logger, passName, n)
	return v, err
}

// callFresh is evalFresh's counterpart for invoking a local function
// body (CallFunction), used by passes that must execute a declaration
// rather than just evaluate a literal-like expression.
func callFresh(fn *arborist.Node, args []any, logger *zap.SugaredLogger, passName string) (any, error) {
	v, err := sandbox.CallFunction(fn, args, sandbox.DefaultBudget())
	logBudgetExceeded(err, logger, passName, fn)
	return v, err
}

// callWithReceiverFresh is callFresh's counterpart for
// CallFunctionWithReceiver.
func callWithReceiverFresh(fn *arborist.Node, receiver any, args []any, logger *zap.SugaredLogger, passName string) (any, error) {
	v, err := sandbox.CallFunctionWithReceiver(fn, receiver, args, sandbox.DefaultBudget())
	logBudgetExceeded(err, logger, passName, fn)
	return v, err
}

func logBudgetExceeded(err error, logger *zap.SugaredLogger, passName string, n *arborist.Node) {
	if err == nil || logger == nil || !errors.Is(err, sandbox.ErrBudgetExceeded) {
		return
	}
	logger.Warnf("%s: sandbox budget exceeded evaluating node [%d,%d), skipping candidate", passName, n.StartByte, n.EndByte)
}

// foldToLiteral evaluates n against a fresh per-call budget and, on
// success, stages a Mark replacing it with the literalised result. It is
// shared by every pass that reduces an expression down to a constant.
func foldToLiteral(t *arborist.Tree, n *arborist.Node, logger *zap.SugaredLogger, passName string) bool {
	v, err := evalFresh(n, logger, passName)
	if err != nil {
		return false
	}
	replacement, err := sandbox.Literalize(v)
	if err != nil {
		return false
	}
	t.MarkNode(n, replacement, passName)
	return true
}
