package sandbox

import (
	"fmt"
	"math"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// Literalize converts a host value produced by Eval back into a syntax
// node, following the literalisation table: negative numbers and -0
// become a UnaryExpression('-', ...) rather than a Literal carrying a
// negative NumValue (there is no negative-number token in JS grammar,
// only unary minus applied to a positive one); NaN, Infinity and
// undefined are Identifier references to their global bindings rather
// than Literal nodes, since JS has no literal syntax for them either.
func Literalize(v any) (*arborist.Node, error) {
	switch x := v.(type) {
	case nil:
		return arborist.NewNullLiteral(), nil

	case undefinedType:
		return identifier("undefined"), nil

	case bool:
		return arborist.NewBoolLiteral(x), nil

	case string:
		return arborist.NewStringLiteral(x), nil

	case float64:
		return literalizeNumber(x), nil

	case *BigInt:
		return &arborist.Node{Kind: arborist.KindBigIntLiteral, Raw: x.Int.String() + "n"}, nil

	case *Regexp:
		return &arborist.Node{Kind: arborist.KindRegExpLiteral, Pattern: x.Pattern, Flags: x.Flags}, nil

	case *Symbol:
		// Symbol has no literal syntax of its own — re-embedding it as
		// the Symbol(...) call that would produce an equivalent (if not
		// identical) value is the same move Literalize already makes for
		// undefined, which also lacks a literal token.
		args := []*arborist.Node(nil)
		if x.Description != "" {
			args = []*arborist.Node{arborist.NewStringLiteral(x.Description)}
		}
		return &arborist.Node{Kind: arborist.KindCallExpression, Callee: identifier("Symbol"), Arguments: args}, nil

	case []any:
		elems := make([]*arborist.Node, 0, len(x))
		for _, el := range x {
			ln, err := Literalize(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ln)
		}
		return &arborist.Node{Kind: arborist.KindArrayExpression, Body: elems}, nil

	case *Object:
		props := make([]*arborist.Node, 0, len(x.Keys))
		for _, k := range x.Keys {
			val, _ := x.Get(k)
			valNode, err := Literalize(val)
			if err != nil {
				return nil, err
			}
			props = append(props, &arborist.Node{
				Kind:     arborist.KindProperty,
				PropKind: "init",
				Key:      propertyKeyNode(k),
				Value:    valNode,
			})
		}
		return &arborist.Node{Kind: arborist.KindObjectExpression, Body: props}, nil
	}

	return nil, fmt.Errorf("%w: value has no literal form", ErrUnsupported)
}

func literalizeNumber(f float64) *arborist.Node {
	switch {
	case math.IsNaN(f):
		return identifier("NaN")
	case math.IsInf(f, 1):
		return identifier("Infinity")
	case math.IsInf(f, -1):
		return negate(identifier("Infinity"))
	case f < 0:
		return negate(numberLiteral(-f))
	case f == 0 && math.Signbit(f):
		return negate(numberLiteral(0))
	default:
		return numberLiteral(f)
	}
}

func numberLiteral(f float64) *arborist.Node {
	return arborist.NewNumberLiteral(f)
}

func negate(arg *arborist.Node) *arborist.Node {
	return &arborist.Node{Kind: arborist.KindUnaryExpression, Operator: "-", Argument: arg}
}

func identifier(name string) *arborist.Node {
	return &arborist.Node{Kind: arborist.KindIdentifier, Name: name}
}

// propertyKeyNode renders k as a bare Identifier when it is a valid
// JavaScript identifier name, falling back to a string Literal (so
// `{'1': ...}` and `{'not-an-id': ...}` still round-trip correctly).
func propertyKeyNode(k string) *arborist.Node {
	if isJSIdentifierName(k) {
		return identifier(k)
	}
	return arborist.NewStringLiteral(k)
}

func isJSIdentifierName(s string) bool {
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
