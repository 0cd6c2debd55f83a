package sandbox

import (
	"fmt"
	"math"
	"math/big"
)

// applyBinary implements every binary operator this evaluator supports,
// shared by Eval's pure expression path and CallFunction's statement
// interpreter so the two don't drift. BigInt operands are dispatched to
// bigIntBinary and refuse to mix with a Number operand in arithmetic (a
// TypeError in real JS); loose/strict equality, relational comparison
// and concatenation with a string are permitted across the two types.
func applyBinary(op string, l, r any) (any, error) {
	lb, lIsBig := l.(*BigInt)
	rb, rIsBig := r.(*BigInt)
	if lIsBig || rIsBig {
		return applyBigIntBinary(op, l, r, lb, rb, lIsBig, rIsBig)
	}

	switch op {
	case "+":
		if ls, ok := l.(string); ok {
			return ls + toJSString(r), nil
		}
		if rs, ok := r.(string); ok {
			return toJSString(l) + rs, nil
		}
		return toNumber(l) + toNumber(r), nil
	case "-":
		return toNumber(l) - toNumber(r), nil
	case "*":
		return toNumber(l) * toNumber(r), nil
	case "/":
		return toNumber(l) / toNumber(r), nil
	case "%":
		return math.Mod(toNumber(l), toNumber(r)), nil
	case "**":
		return math.Pow(toNumber(l), toNumber(r)), nil
	case "==", "===":
		return looseOrStrictEqual(l, r), nil
	case "!=", "!==":
		return !looseOrStrictEqual(l, r), nil
	case "<":
		return compare(l, r) < 0, nil
	case ">":
		return compare(l, r) > 0, nil
	case "<=":
		return compare(l, r) <= 0, nil
	case ">=":
		return compare(l, r) >= 0, nil
	case "&":
		return float64(toInt32(l) & toInt32(r)), nil
	case "|":
		return float64(toInt32(l) | toInt32(r)), nil
	case "^":
		return float64(toInt32(l) ^ toInt32(r)), nil
	case "<<":
		return float64(toInt32(l) << (uint32(toInt32(r)) & 31)), nil
	case ">>":
		return float64(toInt32(l) >> (uint32(toInt32(r)) & 31)), nil
	case ">>>":
		return float64(uint32(toInt32(l)) >> (uint32(toInt32(r)) & 31)), nil
	}
	return nil, fmt.Errorf("%w: binary operator %q", ErrUnsupported, op)
}

func applyBigIntBinary(op string, l, r any, lb, rb *BigInt, lIsBig, rIsBig bool) (any, error) {
	if lIsBig && rIsBig {
		return bigIntBinary(op, lb, rb)
	}
	// Exactly one side is a BigInt: arithmetic never mixes BigInt and
	// Number in real JS, but relational comparison and equality do, and
	// concatenation with a string coerces the BigInt via its own
	// ToString (no "n" suffix).
	switch op {
	case "==":
		return bigIntLooseEqualNumber(lb, rb, l, r, lIsBig), nil
	case "!=":
		return !bigIntLooseEqualNumber(lb, rb, l, r, lIsBig), nil
	case "===":
		return false, nil
	case "!==":
		return true, nil
	case "<", ">", "<=", ">=":
		return bigIntRelational(op, lb, rb, l, r, lIsBig)
	case "+":
		if ls, ok := l.(string); ok {
			return ls + toJSString(r), nil
		}
		if rs, ok := r.(string); ok {
			return toJSString(l) + rs, nil
		}
	}
	return nil, fmt.Errorf("%w: mixing BigInt and Number in operator %q", ErrUnsupported, op)
}

func bigIntRelational(op string, lb, rb *BigInt, l, r any, lIsBig bool) (any, error) {
	var bi *BigInt
	var numVal float64
	if lIsBig {
		bi, numVal = lb, toNumber(r)
	} else {
		bi, numVal = rb, toNumber(l)
	}
	cmp := new(big.Float).SetInt(bi.Int).Cmp(big.NewFloat(numVal))
	var lt, gt bool
	if lIsBig {
		lt, gt = cmp < 0, cmp > 0
	} else {
		lt, gt = cmp > 0, cmp < 0
	}
	switch op {
	case "<":
		return lt, nil
	case ">":
		return gt, nil
	case "<=":
		return lt || cmp == 0, nil
	case ">=":
		return gt || cmp == 0, nil
	}
	return nil, fmt.Errorf("%w: BigInt relational operator %q", ErrUnsupported, op)
}

func bigIntLooseEqualNumber(lb, rb *BigInt, l, r any, lIsBig bool) bool {
	var bi *BigInt
	var other any
	if lIsBig {
		bi, other = lb, r
	} else {
		bi, other = rb, l
	}
	f, ok := other.(float64)
	if !ok || f != math.Trunc(f) {
		return false
	}
	return bi.Int.IsInt64() && bi.Int.Int64() == int64(f)
}
