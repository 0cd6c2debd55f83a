package sandbox

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// Eval folds n down to a host value if n lies entirely within the
// literal-only subset this evaluator accepts: literals, array/object
// literals built from more of the same, and the arithmetic/logical/
// member/call operators that can be fully resolved against them without
// any host I/O. Anything reaching an Identifier, a non-literal operand,
// or a call to something off the builtin allow-list returns
// ErrUnsupported.
func Eval(n *arborist.Node, budget *Budget) (any, error) {
	if err := budget.tick(); err != nil {
		return nil, err
	}
	if n == nil {
		return Undefined, nil
	}

	switch n.Kind {
	case arborist.KindLiteral:
		return evalLiteral(n)

	case arborist.KindRegExpLiteral:
		return newRegexpValue(n.Pattern, n.Flags), nil

	case arborist.KindBigIntLiteral:
		return parseBigIntLiteral(n.Raw)

	case arborist.KindArrayExpression:
		out := make([]any, 0, len(n.Body))
		for _, el := range n.Body {
			if el == nil { // elision/hole
				out = append(out, Undefined)
				continue
			}
			v, err := Eval(el, budget)
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
			v, err := Eval(p.Value, budget)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return obj, nil

	case arborist.KindUnaryExpression:
		return evalUnary(n, budget)

	case arborist.KindBinaryExpression:
		return evalBinary(n, budget)

	case arborist.KindLogicalExpression:
		return evalLogical(n, budget)

	case arborist.KindConditionalExpression:
		test, err := Eval(n.Test, budget)
		if err != nil {
			return nil, err
		}
		if truthy(test) {
			return Eval(n.Consequent, budget)
		}
		return Eval(n.Alternate, budget)

	case arborist.KindMemberExpression:
		return evalMember(n, budget)

	case arborist.KindCallExpression:
		return evalCall(n, budget)

	case arborist.KindSequenceExpression:
		var v any = Undefined
		var err error
		for _, e := range n.Expressions {
			v, err = Eval(e, budget)
			if err != nil {
				return nil, err
			}
		}
		return v, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupported, n.Kind)
}

func evalLiteral(n *arborist.Node) (any, error) {
	switch n.LiteralType {
	case "string":
		return n.StrValue, nil
	case "number":
		return n.NumValue, nil
	case "boolean":
		return n.BoolValue, nil
	case "null":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unrecognised literal", ErrUnsupported)
}

func propertyKey(key *arborist.Node) (string, error) {
	switch key.Kind {
	case arborist.KindIdentifier:
		return key.Name, nil
	case arborist.KindLiteral:
		v, err := evalLiteral(key)
		if err != nil {
			return "", err
		}
		return toJSString(v), nil
	}
	return "", fmt.Errorf("%w: computed object key", ErrUnsupported)
}

func evalUnary(n *arborist.Node, budget *Budget) (any, error) {
	// typeof on an Identifier is common in obfuscated guards but the
	// operand isn't itself a value we can fold (no scope available
	// here), so only typeof of an already-literal operand is supported.
	v, err := Eval(n.Argument, budget)
	if err != nil {
		if n.Operator == "typeof" {
			return nil, err
		}
		return nil, err
	}
	switch n.Operator {
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
	return nil, fmt.Errorf("%w: unary operator %q", ErrUnsupported, n.Operator)
}

func evalBinary(n *arborist.Node, budget *Budget) (any, error) {
	l, err := Eval(n.Left, budget)
	if err != nil {
		return nil, err
	}
	r, err := Eval(n.Right, budget)
	if err != nil {
		return nil, err
	}
	return applyBinary(n.Operator, l, r)
}

func evalLogical(n *arborist.Node, budget *Budget) (any, error) {
	l, err := Eval(n.Left, budget)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "&&":
		if !truthy(l) {
			return l, nil
		}
		return Eval(n.Right, budget)
	case "||":
		if truthy(l) {
			return l, nil
		}
		return Eval(n.Right, budget)
	case "??":
		if l != nil && l != Undefined {
			return l, nil
		}
		return Eval(n.Right, budget)
	}
	return nil, fmt.Errorf("%w: logical operator %q", ErrUnsupported, n.Operator)
}

func evalMember(n *arborist.Node, budget *Budget) (any, error) {
	obj, err := Eval(n.Object, budget)
	if err != nil {
		return nil, err
	}
	var key string
	if n.Computed {
		k, err := Eval(n.Property, budget)
		if err != nil {
			return nil, err
		}
		key = toJSString(k)
	} else {
		key = n.Property.Name
	}
	return memberGet(obj, key)
}

func memberGet(obj any, key string) (any, error) {
	switch v := obj.(type) {
	case string:
		if key == "length" {
			return float64(len([]rune(v))), nil
		}
		if idx, err := strconv.Atoi(key); err == nil {
			r := []rune(v)
			if idx < 0 || idx >= len(r) {
				return Undefined, nil
			}
			return string(r[idx]), nil
		}
		return nil, fmt.Errorf("%w: string member %q", ErrUnsupported, key)
	case []any:
		if key == "length" {
			return float64(len(v)), nil
		}
		if idx, err := strconv.Atoi(key); err == nil {
			if idx < 0 || idx >= len(v) {
				return Undefined, nil
			}
			return v[idx], nil
		}
		return nil, fmt.Errorf("%w: array member %q", ErrUnsupported, key)
	case *Object:
		if val, ok := v.Get(key); ok {
			return val, nil
		}
		return Undefined, nil
	case *Regexp:
		switch key {
		case "source":
			return v.Pattern, nil
		case "flags":
			return v.Flags, nil
		case "global":
			return strings.Contains(v.Flags, "g"), nil
		case "ignoreCase":
			return strings.Contains(v.Flags, "i"), nil
		}
		return nil, fmt.Errorf("%w: RegExp member %q", ErrUnsupported, key)
	case *Symbol:
		if key == "description" {
			return v.Description, nil
		}
		return nil, fmt.Errorf("%w: Symbol member %q", ErrUnsupported, key)
	}
	return nil, fmt.Errorf("%w: member access on unsupported value", ErrUnsupported)
}

func evalCall(n *arborist.Node, budget *Budget) (any, error) {
	if n.Callee.Kind == arborist.KindIdentifier {
		return evalGlobalCall(n, budget)
	}
	if n.Callee.Kind != arborist.KindMemberExpression {
		return nil, fmt.Errorf("%w: call target is not a member or global", ErrUnsupported)
	}

	// Math.xxx(...), String.fromCharCode(...) and JSON.parse/stringify
	// are special-cased global-style calls since Math, String (used as
	// a namespace rather than invoked as a conversion function) and
	// JSON are not themselves values this evaluator models.
	if obj := n.Callee.Object; obj.Kind == arborist.KindIdentifier {
		args, err := evalArgs(n.Arguments, budget)
		if err != nil {
			return nil, err
		}
		if v, handled, err := callNamespaceMethod(obj.Name, n.Callee.Property.Name, args); handled {
			return v, err
		}
	}

	recv, err := Eval(n.Callee.Object, budget)
	if err != nil {
		return nil, err
	}
	args, err := evalArgs(n.Arguments, budget)
	if err != nil {
		return nil, err
	}
	return callMethod(recv, n.Callee.Property.Name, args)
}

func evalArgs(argNodes []*arborist.Node, budget *Budget) ([]any, error) {
	args := make([]any, len(argNodes))
	for i, a := range argNodes {
		v, err := Eval(a, budget)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// evalGlobalCall handles the bare-identifier builtins obfuscated code
// leans on most: atob/btoa, parseInt/parseFloat, String/Number/Boolean
// used as conversion functions rather than constructors.
func evalGlobalCall(n *arborist.Node, budget *Budget) (any, error) {
	args, err := evalArgs(n.Arguments, budget)
	if err != nil {
		return nil, err
	}
	arg0 := func() any {
		if len(args) == 0 {
			return Undefined
		}
		return args[0]
	}

	switch n.Callee.Name {
	case "atob":
		decoded, err := base64.StdEncoding.DecodeString(toJSString(arg0()))
		if err != nil {
			return nil, fmt.Errorf("%w: atob of invalid base64", ErrUnsupported)
		}
		return string(decoded), nil
	case "btoa":
		return base64.StdEncoding.EncodeToString([]byte(toJSString(arg0()))), nil
	case "String":
		return toJSString(arg0()), nil
	case "Number":
		return toNumber(arg0()), nil
	case "Boolean":
		return truthy(arg0()), nil
	case "parseInt":
		s := strings.TrimSpace(toJSString(arg0()))
		base := 10
		if len(args) > 1 {
			base = int(toNumber(args[1]))
		}
		end := 0
		for end < len(s) && isDigitInBase(s[end], base) {
			end++
		}
		if end == 0 {
			return math.NaN(), nil
		}
		i, err := strconv.ParseInt(s[:end], base, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return float64(i), nil
	case "parseFloat":
		s := strings.TrimSpace(toJSString(arg0()))
		end := 0
		for end < len(s) && (s[end] == '-' || s[end] == '+' || s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
			end++
		}
		f, err := strconv.ParseFloat(s[:end], 64)
		if err != nil {
			return math.NaN(), nil
		}
		return f, nil
	case "isNaN":
		return math.IsNaN(toNumber(arg0())), nil
	case "BigInt":
		return bigIntFromValue(arg0())
	case "Symbol":
		desc := ""
		if len(args) > 0 {
			desc = toJSString(args[0])
		}
		return &Symbol{Description: desc}, nil
	case "RegExp":
		pattern := toJSString(arg0())
		flags := ""
		if len(args) > 1 {
			flags = toJSString(args[1])
		}
		return newRegexpValue(pattern, flags), nil
	}
	return nil, fmt.Errorf("%w: call to %q", ErrUnsupported, n.Callee.Name)
}

func isDigitInBase(c byte, base int) bool {
	var v int
	switch {
	case c >= '0' && c <= '9':
		v = int(c - '0')
	case c >= 'a' && c <= 'z':
		v = int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = int(c-'A') + 10
	default:
		return false
	}
	return v < base
}
