package passes

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
	"github.com/unscrambl/jsderef/internal/jscontext"
	"github.com/unscrambl/jsderef/internal/mutation"
	"github.com/unscrambl/jsderef/internal/sandbox"
)

// runResolveLocalCalls inlines a call to a locally-declared function by
// rendering that declaration's context fragment (jscontext.ContextOf),
// appending the call's own source, reparsing the concatenation as a
// standalone program, and sandbox-evaluating the result. Candidates are
// sorted by how often their callee name recurs (descending) before
// rewriting, so the highest-leverage decoder functions in a file get
// folded first and feed literal-like operands to everything downstream
// within the same fixpoint iteration.
func runResolveLocalCalls(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	matches := t.TypeMap(arborist.KindCallExpression)
	candidates := make([]*arborist.Node, 0, len(matches))
	for _, n := range matches {
		if localCallCandidate(n) != nil {
			candidates = append(candidates, n)
		}
	}
	sortByCalleeFrequency(candidates)

	type byteRange struct{ start, end uint32 }
	var handled []byteRange
	return runSimple(ctx, "resolveLocalCalls", t, logger, candidates, func(t *arborist.Tree, n *arborist.Node) bool {
		for _, r := range handled {
			if n.StartByte >= r.start && n.EndByte <= r.end {
				return false
			}
		}
		decl := localCallCandidate(n)
		if decl == nil {
			return false
		}
		if isTrivialWrapper(decl) {
			return false
		}
		for _, a := range n.Arguments {
			if a.Kind == arborist.KindThisExpression || !a.IsLiteralLike() {
				return false
			}
		}

		origin := declarationOrigin(decl)
		fragment := jscontext.OrderedSource(jscontext.ContextOf(origin))
		source := fragment + arborist.PrintExpr(n) + ";\n"

		frag, err := arborist.New(ctx, []byte(source))
		if err != nil || frag.Root == nil || len(frag.Root.Body) == 0 {
			return false
		}
		last := frag.Root.Body[len(frag.Root.Body)-1]
		if last.Kind != arborist.KindExpressionStatement || last.Expression == nil ||
			last.Expression.Kind != arborist.KindCallExpression {
			return false
		}
		call := last.Expression
		if call.Callee == nil || call.Callee.Kind != arborist.KindIdentifier {
			return false
		}
		scope := arborist.EnclosingScope(call.Callee)
		if scope == nil {
			return false
		}
		b := scope.Resolve(call.Callee.Name)
		if b == nil || b.DeclNode == nil || b.DeclNode.Parent == nil {
			return false
		}
		fnNode := functionNodeOf(b.DeclNode.Parent)
		if fnNode == nil {
			return false
		}

		args := make([]any, len(call.Arguments))
		for i, a := range call.Arguments {
			v, err := evalFresh(a, logger, "resolveLocalCalls")
			if err != nil {
				return false
			}
			args[i] = v
		}
		v, err := callFresh(fnNode, args, logger, "resolveLocalCalls")
		if err != nil {
			return false
		}
		replacement, err := sandbox.Literalize(v)
		if err != nil {
			return false
		}

		t.MarkNode(n, replacement, "resolveLocalCalls")
		handled = append(handled, byteRange{n.StartByte, n.EndByte})
		return true
	})
}

// localCallCandidate reports the FunctionDeclaration/FunctionExpression n's
// callee resolves to, or nil if n isn't a call to a locally-declared
// function this pass can attempt (including when mutation.IsMutated
// reports the callee's binding as written somewhere).
func localCallCandidate(n *arborist.Node) *arborist.Node {
	if n.Callee == nil || n.Callee.Kind != arborist.KindIdentifier {
		return nil
	}
	scope := arborist.EnclosingScope(n.Callee)
	if scope == nil {
		return nil
	}
	b := scope.Resolve(n.Callee.Name)
	if b == nil || b.DeclNode == nil || b.DeclNode.Parent == nil {
		return nil
	}
	if mutation.IsMutated(b) {
		return nil
	}
	return functionNodeOf(b.DeclNode.Parent)
}

// functionNodeOf maps a resolved declaration (the FunctionDeclaration
// itself, or a VariableDeclarator whose initializer is a function
// expression) to the function node CallFunction can execute.
func functionNodeOf(decl *arborist.Node) *arborist.Node {
	switch decl.Kind {
	case arborist.KindFunctionDeclaration:
		return decl
	case arborist.KindVariableDeclarator:
		if decl.Init != nil && decl.Init.Kind == arborist.KindFunctionExpression {
			return decl.Init
		}
	}
	return nil
}

// declarationOrigin is the node jscontext.ContextOf should be collected
// from for decl: the FunctionDeclaration itself, or the owning
// VariableDeclaration when decl is a function expression bound to a var.
func declarationOrigin(fnNode *arborist.Node) *arborist.Node {
	if fnNode.Kind == arborist.KindFunctionDeclaration {
		return fnNode
	}
	if fnNode.Parent != nil && fnNode.Parent.Kind == arborist.KindVariableDeclarator && fnNode.Parent.Parent != nil {
		return fnNode.Parent.Parent
	}
	return fnNode
}

// isTrivialWrapper reports whether fn's body does nothing but return a
// bare identifier or literal — folding a call to one of these would just
// shuffle the obfuscation one level down rather than removing it, and
// risks fighting with resolveFunctionToArray and the member/binary
// folding passes over the same node.
func isTrivialWrapper(fn *arborist.Node) bool {
	if fn.FuncBody == nil || len(fn.FuncBody.Body) != 1 {
		return false
	}
	ret := fn.FuncBody.Body[0]
	if ret.Kind != arborist.KindReturnStatement {
		return false
	}
	if ret.Argument == nil {
		return true
	}
	switch ret.Argument.Kind {
	case arborist.KindIdentifier, arborist.KindLiteral:
		return true
	}
	return false
}

func sortByCalleeFrequency(candidates []*arborist.Node) {
	freq := make(map[string]int, len(candidates))
	for _, n := range candidates {
		freq[n.Callee.Name]++
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return freq[candidates[i].Callee.Name] > freq[candidates[j].Callee.Name]
	})
}

// runResolveFunctionToArray replaces a call to a parameterless function
// whose entire body is `return [...]` with the array literal itself — the
// "function wrapping a constant array" idiom obfuscators use to hide a
// plain data table behind a call.
func runResolveFunctionToArray(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	matches := t.TypeMap(arborist.KindCallExpression)
	return runSimple(ctx, "resolveFunctionToArray", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if len(n.Arguments) != 0 {
			return false
		}
		decl := localCallCandidate(n)
		if decl == nil || len(decl.Params) != 0 {
			return false
		}
		if decl.FuncBody == nil || len(decl.FuncBody.Body) != 1 {
			return false
		}
		ret := decl.FuncBody.Body[0]
		if ret.Kind != arborist.KindReturnStatement || ret.Argument == nil {
			return false
		}
		if ret.Argument.Kind != arborist.KindArrayExpression || !ret.Argument.IsLiteralLike() {
			return false
		}
		// decl takes no parameters, so the returned array never depends on
		// this particular call's (empty) argument list: evaluate the
		// array directly rather than through a call the plain evaluator
		// cannot itself invoke.
		v, err := evalFresh(ret.Argument, logger, "resolveFunctionToArray")
		if err != nil {
			return false
		}
		replacement, err := sandbox.Literalize(v)
		if err != nil {
			return false
		}
		t.MarkNode(n, replacement, "resolveFunctionToArray")
		return true
	})
}
