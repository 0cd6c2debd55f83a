package passes

import (
	"context"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
	"github.com/unscrambl/jsderef/internal/sandbox"
)

// runResolveAugmentedFunctionWrappedArrayReplacements targets the
// string-table-rotation idiom: a literal array is bound to a name, an
// IIFE rotates it some fixed number of times via `arr.push(arr.shift())`,
// and a decoder function is marked with an extra property assignment
// once the rotation has run. Call sites of the decoder are folded
// against the array's final, post-rotation order.
//
// Only the plain while/for `push(shift())` rotation body is recognised;
// the self-defending try/catch variant some obfuscators wrap the same
// rotation in is out of scope.
func runResolveAugmentedFunctionWrappedArrayReplacements(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	tables := rotatedStringTables(t, logger)
	if len(tables) == 0 {
		return t, false, nil
	}

	matches := t.TypeMap(arborist.KindCallExpression)
	return runSimple(ctx, "resolveAugmentedFunctionWrappedArrayReplacements", t, logger, matches, func(t *arborist.Tree, n *arborist.Node) bool {
		if n.Callee == nil || n.Callee.Kind != arborist.KindIdentifier || len(n.Arguments) != 1 {
			return false
		}
		table, ok := tables[n.Callee.Name]
		if !ok || !n.Arguments[0].IsLiteralLike() {
			return false
		}
		idxV, err := evalFresh(n.Arguments[0], logger, "resolveAugmentedFunctionWrappedArrayReplacements")
		if err != nil {
			return false
		}
		i, ok := asArrayIndex(idxV, table.offset)
		if !ok || i < 0 || i >= len(table.rotated) {
			return false
		}
		replacement, err := sandbox.Literalize(table.rotated[i])
		if err != nil {
			return false
		}
		t.MarkNode(n, replacement, "resolveAugmentedFunctionWrappedArrayReplacements")
		return true
	})
}

type stringTable struct {
	rotated []any
	offset  float64
}

// rotatedStringTables scans t for the full idiom and returns, per decoder
// function name, its rotated backing array and the constant offset its
// body subtracts from the call argument before indexing.
func rotatedStringTables(t *arborist.Tree, logger *zap.SugaredLogger) map[string]stringTable {
	out := make(map[string]stringTable)

	for _, call := range t.TypeMap(arborist.KindCallExpression) {
		arrName, count, ok := matchRotationIIFE(call)
		if !ok {
			continue
		}
		arrDecl := resolveArrayDeclarator(arrName)
		if arrDecl == nil || arrDecl.Init == nil || !arrDecl.Init.IsLiteralLike() {
			continue
		}
		arrVal, err := evalFresh(arrDecl.Init, logger, "resolveAugmentedFunctionWrappedArrayReplacements")
		if err != nil {
			continue
		}
		arr, ok := arrVal.([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		decoder, offset, ok := findDecoderFor(t, arrName.Name)
		if !ok {
			continue
		}
		if !isAugmented(t, decoder) {
			continue
		}
		rotations, err := evalFresh(count, logger, "resolveAugmentedFunctionWrappedArrayReplacements")
		if err != nil {
			continue
		}
		out[decoder.Name] = stringTable{rotated: rotateLeft(arr, toInt(rotations)), offset: offset}
	}
	return out
}

// matchRotationIIFE reports whether call is `(function(a, b) {
// <rotate a, b times> })(arrIdent, countLiteral)`.
func matchRotationIIFE(call *arborist.Node) (arrIdent *arborist.Node, count *arborist.Node, ok bool) {
	if call.Callee == nil || call.Callee.Kind != arborist.KindFunctionExpression {
		return nil, nil, false
	}
	if len(call.Arguments) != 2 || len(call.Callee.Params) != 2 {
		return nil, nil, false
	}
	arg0 := call.Arguments[0]
	if arg0.Kind != arborist.KindIdentifier {
		return nil, nil, false
	}
	arrParam := call.Callee.Params[0]
	if arrParam == nil || arrParam.Kind != arborist.KindIdentifier {
		return nil, nil, false
	}
	if call.Callee.FuncBody == nil || !containsRotateOnce(call.Callee.FuncBody, arrParam.Name) {
		return nil, nil, false
	}
	return arg0, call.Arguments[1], true
}

// containsRotateOnce reports whether n's subtree contains
// `arrName.push(arrName.shift())` as a statement, inside a while or for
// loop's body.
func containsRotateOnce(n *arborist.Node, arrName string) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case arborist.KindWhileStatement, arborist.KindForStatement:
		body := n.LoopBody
		return bodyRotatesOnce(body, arrName)
	case arborist.KindBlockStatement:
		for _, s := range n.Body {
			if containsRotateOnce(s, arrName) {
				return true
			}
		}
	case arborist.KindTryStatement:
		if containsRotateOnce(n.TryBlock, arrName) {
			return true
		}
	}
	return false
}

func bodyRotatesOnce(body *arborist.Node, arrName string) bool {
	if body == nil {
		return false
	}
	stmts := []*arborist.Node{body}
	if body.Kind == arborist.KindBlockStatement {
		stmts = body.Body
	}
	for _, s := range stmts {
		if isRotateCall(s, arrName) {
			return true
		}
	}
	return false
}

// isRotateCall reports whether s is the ExpressionStatement
// `arrName.push(arrName.shift())`.
func isRotateCall(s *arborist.Node, arrName string) bool {
	if s.Kind != arborist.KindExpressionStatement || s.Expression == nil {
		return false
	}
	push := s.Expression
	if push.Kind != arborist.KindCallExpression || push.Callee == nil {
		return false
	}
	pm := push.Callee
	if pm.Kind != arborist.KindMemberExpression || !isMemberName(pm, arrName, "push") {
		return false
	}
	if len(push.Arguments) != 1 {
		return false
	}
	shift := push.Arguments[0]
	if shift.Kind != arborist.KindCallExpression || shift.Callee == nil {
		return false
	}
	sm := shift.Callee
	return isMemberName(sm, arrName, "shift") && len(shift.Arguments) == 0
}

func isMemberName(m *arborist.Node, objName, propName string) bool {
	if m.Computed || m.Object == nil || m.Property == nil {
		return false
	}
	return m.Object.Kind == arborist.KindIdentifier && m.Object.Name == objName && m.Property.Name == propName
}

func resolveArrayDeclarator(id *arborist.Node) *arborist.Node {
	scope := arborist.EnclosingScope(id)
	if scope == nil {
		return nil
	}
	b := scope.Resolve(id.Name)
	if b == nil || b.DeclNode == nil || b.DeclNode.Parent == nil {
		return nil
	}
	if b.DeclNode.Parent.Kind == arborist.KindVariableDeclarator {
		return b.DeclNode.Parent
	}
	return nil
}

// findDecoderFor locates a one-parameter function whose body is `return
// arrName[idx]` or `return arrName[idx - K]`, returning its name and K
// (0 when absent).
func findDecoderFor(t *arborist.Tree, arrName string) (decl *arborist.Node, offset float64, ok bool) {
	for _, fn := range t.TypeMap(arborist.KindFunctionDeclaration) {
		if off, matched := decoderShape(fn, arrName); matched {
			return fn.FuncName, off, true
		}
	}
	return nil, 0, false
}

func decoderShape(fn *arborist.Node, arrName string) (offset float64, ok bool) {
	if fn.FuncName == nil || len(fn.Params) != 1 || fn.FuncBody == nil || len(fn.FuncBody.Body) != 1 {
		return 0, false
	}
	idxParam := fn.Params[0]
	if idxParam == nil || idxParam.Kind != arborist.KindIdentifier {
		return 0, false
	}
	ret := fn.FuncBody.Body[0]
	if ret.Kind != arborist.KindReturnStatement || ret.Argument == nil {
		return 0, false
	}
	m := ret.Argument
	if m.Kind != arborist.KindMemberExpression || !m.Computed || m.Object == nil || m.Property == nil {
		return 0, false
	}
	if m.Object.Kind != arborist.KindIdentifier || m.Object.Name != arrName {
		return 0, false
	}
	switch m.Property.Kind {
	case arborist.KindIdentifier:
		if m.Property.Name == idxParam.Name {
			return 0, true
		}
	case arborist.KindBinaryExpression:
		if m.Property.Operator == "-" && m.Property.Left != nil && m.Property.Left.Kind == arborist.KindIdentifier &&
			m.Property.Left.Name == idxParam.Name && m.Property.Right != nil && m.Property.Right.Kind == arborist.KindLiteral {
			return m.Property.Right.NumValue, true
		}
	}
	return 0, false
}

// isAugmented reports whether decoder's identifier is the target of a
// `decoderName.prop = <literal>` assignment elsewhere in t — the
// "augmentation" marker obfuscators attach to the decoder once rotation
// has run.
func isAugmented(t *arborist.Tree, decoder *arborist.Node) bool {
	for _, n := range t.TypeMap(arborist.KindAssignmentExpression) {
		if n.Operator != "=" || n.Left == nil || n.Left.Kind != arborist.KindMemberExpression {
			continue
		}
		obj := n.Left.Object
		if obj == nil || obj.Kind != arborist.KindIdentifier || obj.Name != decoder.Name {
			continue
		}
		if n.Right != nil && n.Right.IsLiteralLike() {
			return true
		}
	}
	return false
}

func rotateLeft(arr []any, n int) []any {
	if len(arr) == 0 {
		return arr
	}
	n = ((n % len(arr)) + len(arr)) % len(arr)
	out := make([]any, len(arr))
	copy(out, arr[n:])
	copy(out[len(arr)-n:], arr[:n])
	return out
}

func toInt(v any) int {
	f, _ := v.(float64)
	return int(f)
}

func asArrayIndex(v any, offset float64) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f - offset), true
}
