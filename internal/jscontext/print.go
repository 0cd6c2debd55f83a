package jscontext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// OrderedSource re-renders source in program order: given an unordered node list (as
// ContextOf returns), produce a source string that is a self-contained
// fragment a fresh arborist.New can parse and the sandbox can evaluate.
func OrderedSource(nodes []*arborist.Node) string {
	deduped := dedupeByID(nodes)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].StartByte < deduped[j].StartByte
	})

	var ordinary, iifes []*arborist.Node
	for _, n := range deduped {
		if isTopLevelIIFE(n) {
			iifes = append(iifes, n)
		} else {
			ordinary = append(ordinary, n)
		}
	}

	var sb strings.Builder
	for _, n := range ordinary {
		sb.WriteString(renderFragmentPiece(n))
	}
	for _, n := range iifes {
		sb.WriteString(renderFragmentPiece(n))
	}
	return sb.String()
}

func dedupeByID(nodes []*arborist.Node) []*arborist.Node {
	seen := make(map[int]bool, len(nodes))
	out := make([]*arborist.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

// renderFragmentPiece prints one collected node as a standalone, newline-
// terminated piece of source. Statement-shaped nodes print via the normal
// statement printer; a bare expression-shaped node (the call's own
// CallExpression, passed straight through by a caller rather than
// collected by ContextOf) gets an expression terminator the way an
// ExpressionStatement would have supplied one in the original program.
func renderFragmentPiece(n *arborist.Node) string {
	n = nameAnonymousIIFE(n)
	if n.Kind == arborist.KindVariableDeclarator && n.Parent != nil && n.Parent.Kind == arborist.KindVariableDeclaration {
		// A lone declarator prints inside its own declaration keyword so
		// the piece parses as a statement (`var arr = [1, 2];`).
		decl := shallowCopy(n.Parent)
		decl.Declarations = []*arborist.Node{n}
		return arborist.Print(decl)
	}
	if n.IsExpression() {
		return arborist.PrintExpr(n) + ";\n"
	}
	return arborist.Print(n)
}

// isTopLevelIIFE reports whether n is an ExpressionStatement whose
// expression is (possibly wrapped in a unary operator or an assignment)
// an immediately-invoked function/arrow expression — the shape
// §4.5 relocates to the end of the fragment, since IIFEs typically
// install prototype methods or mutate globals and later statements may
// depend on that having already happened.
func isTopLevelIIFE(n *arborist.Node) bool {
	if n.Kind != arborist.KindExpressionStatement {
		return false
	}
	return findIIFECall(n.Expression) != nil
}

// findIIFECall unwraps unary (!fn(), ~fn(), +fn()) and assignment
// (`x = fn()`) wrappers looking for a CallExpression whose callee is an
// anonymous function/arrow expression invoked in place.
func findIIFECall(e *arborist.Node) *arborist.Node {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case arborist.KindUnaryExpression:
		return findIIFECall(e.Argument)
	case arborist.KindAssignmentExpression:
		return findIIFECall(e.Right)
	case arborist.KindCallExpression:
		if e.Callee != nil && (e.Callee.Kind == arborist.KindFunctionExpression || e.Callee.Kind == arborist.KindArrowFunctionExpression) {
			return e
		}
	}
	return nil
}

// nameAnonymousIIFE rewrites an anonymous IIFE whose surrounding code
// assigns it to a name, or wraps it in a unary operator, to a named
// function expression (func<nodeId>) so the fragment can refer to the
// function value itself, not just its call result. Nodes are shallow-
// copied rather than mutated in place — ContextOf's caller may still hold
// the original tree.
func nameAnonymousIIFE(n *arborist.Node) *arborist.Node {
	if n.Kind != arborist.KindExpressionStatement {
		return n
	}
	call := findIIFECall(n.Expression)
	if call == nil || call.Callee == nil || call.Callee.Kind != arborist.KindFunctionExpression || call.Callee.FuncName != nil {
		return n
	}

	namedCallee := shallowCopy(call.Callee)
	namedCallee.FuncName = &arborist.Node{Kind: arborist.KindIdentifier, Name: fmt.Sprintf("func%d", call.Callee.ID)}

	namedCall := shallowCopy(call)
	namedCall.Callee = namedCallee

	return &arborist.Node{
		Kind:       arborist.KindExpressionStatement,
		Expression: rewriteCall(n.Expression, call, namedCall),
	}
}

// rewriteCall returns a shallow copy of expr with occurrence replaced by
// replacement, threading through the same unary/assignment wrappers
// findIIFECall unwraps.
func rewriteCall(expr, occurrence, replacement *arborist.Node) *arborist.Node {
	if expr == occurrence {
		return replacement
	}
	switch expr.Kind {
	case arborist.KindUnaryExpression:
		cp := shallowCopy(expr)
		cp.Argument = rewriteCall(expr.Argument, occurrence, replacement)
		return cp
	case arborist.KindAssignmentExpression:
		cp := shallowCopy(expr)
		cp.Right = rewriteCall(expr.Right, occurrence, replacement)
		return cp
	}
	return expr
}

func shallowCopy(n *arborist.Node) *arborist.Node {
	cp := *n
	return &cp
}
