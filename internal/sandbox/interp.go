package sandbox

import (
	"fmt"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// env is a lexical environment for the small statement interpreter
// CallFunction drives — one level per function call, since the decoder
// helpers resolveLocalCalls inlines are simple straight-line functions,
// not closures capturing mutable outer state across calls.
type env struct {
	vars   map[string]any
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: make(map[string]any), parent: parent}
}

func (e *env) get(name string) (any, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *env) set(name string, v any) {
	e.vars[name] = v
}

// CallFunction invokes fn (a FunctionDeclaration or FunctionExpression
// node) against already-evaluated args, interpreting its body as the
// small statement subset resolveLocalCalls's inlining needs: variable
// declarations, expression statements, if/else, and return. Loops and
// anything else in the bad-statement set return ErrUnsupported rather
// than being approximated, keeping the interpreter fail-closed the same
// way the pure expression evaluator is.
func CallFunction(fn *arborist.Node, args []any, budget *Budget) (any, error) {
	return CallFunctionWithReceiver(fn, Undefined, args, budget)
}

// CallFunctionWithReceiver is CallFunction with `this` bound to receiver,
// for injected prototype methods (resolveInjectedPrototypeMethodCalls)
// invoked against a literal receiver.
func CallFunctionWithReceiver(fn *arborist.Node, receiver any, args []any, budget *Budget) (any, error) {
	if fn.FuncBody == nil || fn.FuncBody.Kind != arborist.KindBlockStatement {
		return nil, fmt.Errorf("%w: function has no block body", ErrUnsupported)
	}
	e := newEnv(nil)
	e.set("this", receiver)
	for i, p := range fn.Params {
		if p == nil || p.Kind != arborist.KindIdentifier {
			return nil, fmt.Errorf("%w: non-identifier parameter", ErrUnsupported)
		}
		var v any = Undefined
		if i < len(args) {
			v = args[i]
		}
		e.set(p.Name, v)
	}

	v, returned, err := execBlock(fn.FuncBody.Body, e, budget)
	if err != nil {
		return nil, err
	}
	if !returned {
		return Undefined, nil
	}
	return v, nil
}

func execBlock(stmts []*arborist.Node, e *env, budget *Budget) (any, bool, error) {
	for _, s := range stmts {
		v, returned, err := execStatement(s, e, budget)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return v, true, nil
		}
	}
	return Undefined, false, nil
}

func execStatement(n *arborist.Node, e *env, budget *Budget) (any, bool, error) {
	if err := budget.tick(); err != nil {
		return nil, false, err
	}
	switch n.Kind {
	case arborist.KindEmptyStatement:
		return Undefined, false, nil

	case arborist.KindVariableDeclaration:
		for _, d := range n.Declarations {
			if d.TargetID == nil || d.TargetID.Kind != arborist.KindIdentifier {
				return nil, false, fmt.Errorf("%w: destructuring declarator", ErrUnsupported)
			}
			v := any(Undefined)
			if d.Init != nil {
				var err error
				v, err = evalWithEnv(d.Init, e, budget)
				if err != nil {
					return nil, false, err
				}
			}
			e.set(d.TargetID.Name, v)
		}
		return Undefined, false, nil

	case arborist.KindExpressionStatement:
		if _, err := evalWithEnv(n.Expression, e, budget); err != nil {
			return nil, false, err
		}
		return Undefined, false, nil

	case arborist.KindReturnStatement:
		if n.Argument == nil {
			return Undefined, true, nil
		}
		v, err := evalWithEnv(n.Argument, e, budget)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil

	case arborist.KindIfStatement:
		test, err := evalWithEnv(n.Test, e, budget)
		if err != nil {
			return nil, false, err
		}
		if truthy(test) {
			return execStatement(n.Consequent, e, budget)
		}
		if n.Alternate != nil {
			return execStatement(n.Alternate, e, budget)
		}
		return Undefined, false, nil

	case arborist.KindBlockStatement:
		return execBlock(n.Body, newEnv(e), budget)
	}
	return nil, false, fmt.Errorf("%w: statement kind %s", ErrUnsupported, n.Kind)
}

// evalWithEnv is the expression evaluator CallFunction's statement
// interpreter uses: it handles the same node kinds as the pure, env-free
// Eval, each case re-implemented here rather than delegated to Eval, and
// adds Identifier and `this` lookups, assignment to identifiers, and
// calls to other local functions. Binary operators share applyBinary
// with Eval.
func evalWithEnv(n *arborist.Node, e *env, budget *Budget) (any, error) {
	if err := budget.tick(); err != nil {
		return nil, err
	}
	if n == nil {
		return Undefined, nil
	}

	switch n.Kind {
	case arborist.KindIdentifier:
		if v, ok := e.get(n.Name); ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: unbound identifier %q", ErrUnsupported, n.Name)

	case arborist.KindThisExpression:
		if v, ok := e.get("this"); ok {
			return v, nil
		}
		return Undefined, nil

	case arborist.KindLiteral:
		return evalLiteral(n)

	case arborist.KindRegExpLiteral:
		return newRegexpValue(n.Pattern, n.Flags), nil

	case arborist.KindBigIntLiteral:
		return parseBigIntLiteral(n.Raw)

	case arborist.KindArrayExpression:
		out := make([]any, 0, len(n.Body))
		for _, el := range n.Body {
			if el == nil {
				out = append(out, Undefined)
				continue
			}
			v, err := evalWithEnv(el, e, budget)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case arborist.KindObjectExpression:
		obj := NewObject()
		for _, p := range n.Body {
			if p.Kind != arborist.KindProperty || p.PropKind != "init" {
				return nil, fmt.Errorf("%w: non-init object member", ErrUnsupported)
			}
			key, err := propertyKey(p.Key)
			if err != nil {
				return nil, err
			}
			v, err := evalWithEnv(p.Value, e, budget)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return obj, nil

	case arborist.KindUnaryExpression:
		v, err := evalWithEnv(n.Argument, e, budget)
		if err != nil {
			return nil, err
		}
		return applyUnary(n.Operator, v)

	case arborist.KindBinaryExpression:
		l, err := evalWithEnv(n.Left, e, budget)
		if err != nil {
			return nil, err
		}
		r, err := evalWithEnv(n.Right, e, budget)
		if err != nil {
			return nil, err
		}
		return applyBinary(n.Operator, l, r)

	case arborist.KindLogicalExpression:
		l, err := evalWithEnv(n.Left, e, budget)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "&&":
			if !truthy(l) {
				return l, nil
			}
			return evalWithEnv(n.Right, e, budget)
		case "||":
			if truthy(l) {
				return l, nil
			}
			return evalWithEnv(n.Right, e, budget)
		case "??":
			if l != nil && l != Undefined {
				return l, nil
			}
			return evalWithEnv(n.Right, e, budget)
		}
		return nil, fmt.Errorf("%w: logical operator %q", ErrUnsupported, n.Operator)

	case arborist.KindConditionalExpression:
		test, err := evalWithEnv(n.Test, e, budget)
		if err != nil {
			return nil, err
		}
		if truthy(test) {
			return evalWithEnv(n.Consequent, e, budget)
		}
		return evalWithEnv(n.Alternate, e, budget)

	case arborist.KindSequenceExpression:
		var v any = Undefined
		var err error
		for _, expr := range n.Expressions {
			v, err = evalWithEnv(expr, e, budget)
			if err != nil {
				return nil, err
			}
		}
		return v, nil

	case arborist.KindAssignmentExpression:
		if n.Left == nil || n.Left.Kind != arborist.KindIdentifier {
			return nil, fmt.Errorf("%w: assignment to non-identifier target", ErrUnsupported)
		}
		rv, err := evalWithEnv(n.Right, e, budget)
		if err != nil {
			return nil, err
		}
		if n.Operator != "=" {
			return nil, fmt.Errorf("%w: compound assignment %q", ErrUnsupported, n.Operator)
		}
		e.set(n.Left.Name, rv)
		return rv, nil

	case arborist.KindMemberExpression:
		obj, err := evalWithEnv(n.Object, e, budget)
		if err != nil {
			return nil, err
		}
		var key string
		if n.Computed {
			k, err := evalWithEnv(n.Property, e, budget)
			if err != nil {
				return nil, err
			}
			key = toJSString(k)
		} else {
			key = n.Property.Name
		}
		return memberGet(obj, key)

	case arborist.KindCallExpression:
		return evalCallWithEnv(n, e, budget)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupported, n.Kind)
}

func evalCallWithEnv(n *arborist.Node, e *env, budget *Budget) (any, error) {
	args := make([]any, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := evalWithEnv(a, e, budget)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if n.Callee.Kind == arborist.KindIdentifier {
		if _, bound := e.get(n.Callee.Name); !bound {
			if decl := resolveGlobalOrLocalCallee(n.Callee); decl != nil {
				return CallFunction(decl, args, budget)
			}
			return evalGlobalCallWithArgs(n, args, budget)
		}
	}

	if n.Callee.Kind != arborist.KindMemberExpression {
		return nil, fmt.Errorf("%w: call target is not a member or global", ErrUnsupported)
	}
	if obj := n.Callee.Object; obj.Kind == arborist.KindIdentifier {
		if v, handled, err := callNamespaceMethod(obj.Name, n.Callee.Property.Name, args); handled {
			return v, err
		}
	}
	recv, err := evalWithEnv(n.Callee.Object, e, budget)
	if err != nil {
		return nil, err
	}
	return callMethod(recv, n.Callee.Property.Name, args)
}

// evalGlobalCallWithArgs re-literalizes already-evaluated args (which may
// depend on the interpreter's env, unlike evalGlobalCall's own arg
// evaluation) and delegates to evalGlobalCall's builtin table, so a
// decoder function like `function f(a) { return atob(a); }` resolves its
// parameter before reaching the allow-listed global.
func evalGlobalCallWithArgs(n *arborist.Node, args []any, budget *Budget) (any, error) {
	litArgs := make([]*arborist.Node, len(args))
	for i, v := range args {
		ln, ok := literalNodeForPrimitive(v)
		if !ok {
			return nil, fmt.Errorf("%w: non-primitive argument to global call", ErrUnsupported)
		}
		litArgs[i] = ln
	}
	synthetic := &arborist.Node{Kind: arborist.KindCallExpression, Callee: n.Callee, Arguments: litArgs}
	return evalGlobalCall(synthetic, budget)
}

func literalNodeForPrimitive(v any) (*arborist.Node, bool) {
	switch x := v.(type) {
	case string:
		return arborist.NewStringLiteral(x), true
	case float64:
		return arborist.NewNumberLiteral(x), true
	case bool:
		return arborist.NewBoolLiteral(x), true
	case nil:
		return arborist.NewNullLiteral(), true
	}
	return nil, false
}

// resolveGlobalOrLocalCallee looks up a bare identifier callee against
// the arborist's own scope model (as opposed to the interpreter's local
// env) so a function can call a sibling function declared alongside it
// in the same fragment.
func resolveGlobalOrLocalCallee(id *arborist.Node) *arborist.Node {
	scope := arborist.EnclosingScope(id)
	if scope == nil {
		return nil
	}
	b := scope.Resolve(id.Name)
	if b == nil || b.DeclNode == nil || b.DeclNode.Parent == nil {
		return nil
	}
	decl := b.DeclNode.Parent
	switch decl.Kind {
	case arborist.KindFunctionDeclaration, arborist.KindFunctionExpression:
		return decl
	case arborist.KindVariableDeclarator:
		if decl.Init != nil && (decl.Init.Kind == arborist.KindFunctionExpression) {
			return decl.Init
		}
	}
	return nil
}

func applyUnary(op string, v any) (any, error) {
	switch op {
	case "-":
		if b, ok := v.(*BigInt); ok {
			return negateBigInt(b), nil
		}
		return -toNumber(v), nil
	case "+":
		if _, ok := v.(*BigInt); ok {
			return nil, fmt.Errorf("%w: unary + on a BigInt", ErrUnsupported)
		}
		return toNumber(v), nil
	case "!":
		return !truthy(v), nil
	case "~":
		return float64(^toInt32(v)), nil
	case "typeof":
		return jsTypeof(v), nil
	case "void":
		return Undefined, nil
	}
	return nil, fmt.Errorf("%w: unary operator %q", ErrUnsupported, op)
}
