package sandbox

import (
	"fmt"
	"math/big"
	"strings"
)

// parseBigIntLiteral parses the arborist's verbatim BigIntLiteral text
// (e.g. "123n", "0x1Fn") into a BigInt, stripping the trailing "n" the
// grammar requires but big.Int.SetString doesn't expect.
func parseBigIntLiteral(raw string) (*BigInt, error) {
	digits := strings.TrimSuffix(raw, "n")
	i, ok := new(big.Int).SetString(digits, 0)
	if !ok {
		return nil, fmt.Errorf("%w: malformed BigInt literal %q", ErrUnsupported, raw)
	}
	return newBigInt(i), nil
}

// bigIntFromValue implements the BigInt() conversion function: a number
// argument must already be an integer (BigInt(1.5) throws in real JS),
// a string argument is parsed the same way a literal's digits are.
func bigIntFromValue(v any) (*BigInt, error) {
	switch x := v.(type) {
	case *BigInt:
		return x, nil
	case float64:
		if x != float64(int64(x)) {
			return nil, fmt.Errorf("%w: BigInt of a non-integer number", ErrUnsupported)
		}
		return newBigInt(big.NewInt(int64(x))), nil
	case string:
		i, ok := new(big.Int).SetString(strings.TrimSpace(x), 10)
		if !ok {
			return nil, fmt.Errorf("%w: BigInt of a non-numeric string", ErrUnsupported)
		}
		return newBigInt(i), nil
	case bool:
		if x {
			return newBigInt(big.NewInt(1)), nil
		}
		return newBigInt(big.NewInt(0)), nil
	}
	return nil, fmt.Errorf("%w: BigInt of unsupported value", ErrUnsupported)
}

func negateBigInt(b *BigInt) *BigInt {
	return newBigInt(new(big.Int).Neg(b.Int))
}

// bigIntBinary implements the arithmetic/comparison operators JS allows
// between two BigInts. Mixing a BigInt with a Number operand is a
// TypeError in real JS (except loose equality), so callers must refuse
// that combination before reaching here.
func bigIntBinary(op string, l, r *BigInt) (any, error) {
	switch op {
	case "+":
		return newBigInt(new(big.Int).Add(l.Int, r.Int)), nil
	case "-":
		return newBigInt(new(big.Int).Sub(l.Int, r.Int)), nil
	case "*":
		return newBigInt(new(big.Int).Mul(l.Int, r.Int)), nil
	case "/":
		if r.Int.Sign() == 0 {
			return nil, fmt.Errorf("%w: BigInt division by zero", ErrUnsupported)
		}
		return newBigInt(new(big.Int).Quo(l.Int, r.Int)), nil
	case "%":
		if r.Int.Sign() == 0 {
			return nil, fmt.Errorf("%w: BigInt division by zero", ErrUnsupported)
		}
		return newBigInt(new(big.Int).Rem(l.Int, r.Int)), nil
	case "**":
		if r.Int.Sign() < 0 {
			return nil, fmt.Errorf("%w: BigInt exponent must be non-negative", ErrUnsupported)
		}
		return newBigInt(new(big.Int).Exp(l.Int, r.Int, nil)), nil
	case "&":
		return newBigInt(new(big.Int).And(l.Int, r.Int)), nil
	case "|":
		return newBigInt(new(big.Int).Or(l.Int, r.Int)), nil
	case "^":
		return newBigInt(new(big.Int).Xor(l.Int, r.Int)), nil
	case "==", "===":
		return l.Int.Cmp(r.Int) == 0, nil
	case "!=", "!==":
		return l.Int.Cmp(r.Int) != 0, nil
	case "<":
		return l.Int.Cmp(r.Int) < 0, nil
	case ">":
		return l.Int.Cmp(r.Int) > 0, nil
	case "<=":
		return l.Int.Cmp(r.Int) <= 0, nil
	case ">=":
		return l.Int.Cmp(r.Int) >= 0, nil
	}
	return nil, fmt.Errorf("%w: BigInt operator %q", ErrUnsupported, op)
}
