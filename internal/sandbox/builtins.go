package sandbox

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// callMath implements the Math.* functions obfuscated arithmetic
// actually reaches for.
func callMath(name string, args []any) (any, error) {
	arg := func(i int) float64 {
		if i >= len(args) {
			return math.NaN()
		}
		return toNumber(args[i])
	}
	switch name {
	case "abs":
		return math.Abs(arg(0)), nil
	case "floor":
		return math.Floor(arg(0)), nil
	case "ceil":
		return math.Ceil(arg(0)), nil
	case "round":
		return math.Floor(arg(0) + 0.5), nil
	case "trunc":
		return math.Trunc(arg(0)), nil
	case "sqrt":
		return math.Sqrt(arg(0)), nil
	case "pow":
		return math.Pow(arg(0), arg(1)), nil
	case "max":
		m := math.Inf(-1)
		for i := range args {
			m = math.Max(m, arg(i))
		}
		return m, nil
	case "min":
		m := math.Inf(1)
		for i := range args {
			m = math.Min(m, arg(i))
		}
		return m, nil
	case "sign":
		v := arg(0)
		switch {
		case v > 0:
			return 1.0, nil
		case v < 0:
			return -1.0, nil
		default:
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: Math.%s", ErrUnsupported, name)
}

// stringFromCharCode implements String.fromCharCode, the complement to
// charCodeAt obfuscators use to rebuild strings from numeric code points.
func stringFromCharCode(args []any) string {
	runes := make([]rune, len(args))
	for i, a := range args {
		runes[i] = rune(int32(toNumber(a)))
	}
	return string(runes)
}

// callMethod implements the pure, side-effect-free String/Array prototype
// methods obfuscated code uses most: the ones this evaluator is
// expected to hand back a literalisable result for.
func callMethod(recv any, name string, args []any) (any, error) {
	switch r := recv.(type) {
	case string:
		if re, ok := firstRegexpArg(name, args); ok {
			v, handled, err := stringMatchesRegex(r, name, re, args[1:])
			if handled {
				return v, err
			}
		}
		return callStringMethod(r, name, args)
	case []any:
		return callArrayMethod(r, name, args)
	case *Regexp:
		return regexMethod(r, name, args)
	case *BigInt:
		if name == "toString" {
			return r.Int.String(), nil
		}
		return nil, fmt.Errorf("%w: BigInt.prototype.%s", ErrUnsupported, name)
	}
	return nil, fmt.Errorf("%w: method %q on unsupported receiver", ErrUnsupported, name)
}

// firstRegexpArg reports whether name is a String.prototype method that
// takes a RegExp as its first argument (match, replace) and args[0]
// actually is one — callStringMethod's plain-string table handles the
// String-argument overloads of the same method names.
func firstRegexpArg(name string, args []any) (*Regexp, bool) {
	if name != "match" && name != "replace" {
		return nil, false
	}
	if len(args) == 0 {
		return nil, false
	}
	re, ok := args[0].(*Regexp)
	return re, ok
}

func callStringMethod(s string, name string, args []any) (any, error) {
	runes := []rune(s)
	argNum := func(i int) int {
		if i >= len(args) {
			return 0
		}
		return int(toNumber(args[i]))
	}
	argStr := func(i int) string {
		if i >= len(args) {
			return ""
		}
		return toJSString(args[i])
	}

	switch name {
	case "charAt":
		i := argNum(0)
		if i < 0 || i >= len(runes) {
			return "", nil
		}
		return string(runes[i]), nil
	case "charCodeAt":
		i := argNum(0)
		if i < 0 || i >= len(runes) {
			return math.NaN(), nil
		}
		return float64(runes[i]), nil
	case "toUpperCase":
		return strings.ToUpper(s), nil
	case "toLowerCase":
		return strings.ToLower(s), nil
	case "trim":
		return strings.TrimSpace(s), nil
	case "indexOf":
		return float64(strings.Index(s, argStr(0))), nil
	case "includes":
		return strings.Contains(s, argStr(0)), nil
	case "repeat":
		n := argNum(0)
		if n < 0 {
			return nil, fmt.Errorf("%w: repeat with negative count", ErrUnsupported)
		}
		return strings.Repeat(s, n), nil
	case "concat":
		out := s
		for _, a := range args {
			out += toJSString(a)
		}
		return out, nil
	case "split":
		sep := argStr(0)
		var parts []string
		if len(args) == 0 {
			parts = []string{s}
		} else if sep == "" {
			for _, r := range runes {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out, nil
	case "replace":
		return strings.Replace(s, argStr(0), argStr(1), 1), nil
	case "replaceAll":
		return strings.ReplaceAll(s, argStr(0), argStr(1)), nil
	case "slice", "substring":
		start, end := sliceBounds(len(runes), args)
		return string(runes[start:end]), nil
	case "padStart":
		return padString(s, argNum(0), padArg(args), true), nil
	case "padEnd":
		return padString(s, argNum(0), padArg(args), false), nil
	}
	return nil, fmt.Errorf("%w: String.prototype.%s", ErrUnsupported, name)
}

func padArg(args []any) string {
	if len(args) < 2 {
		return " "
	}
	return toJSString(args[1])
}

func padString(s string, target int, pad string, start bool) string {
	need := target - len([]rune(s))
	if need <= 0 || pad == "" {
		return s
	}
	var b strings.Builder
	for b.Len() < need {
		b.WriteString(pad)
	}
	padding := string([]rune(b.String())[:need])
	if start {
		return padding + s
	}
	return s + padding
}

func sliceBounds(length int, args []any) (int, int) {
	norm := func(i int) int {
		if i < 0 {
			i += length
		}
		if i < 0 {
			return 0
		}
		if i > length {
			return length
		}
		return i
	}
	start := 0
	end := length
	if len(args) > 0 {
		start = norm(int(toNumber(args[0])))
	}
	if len(args) > 1 {
		end = norm(int(toNumber(args[1])))
	}
	if end < start {
		end = start
	}
	return start, end
}

func callArrayMethod(arr []any, name string, args []any) (any, error) {
	switch name {
	case "join":
		sep := ","
		if len(args) > 0 {
			sep = toJSString(args[0])
		}
		parts := make([]string, len(arr))
		for i, v := range arr {
			if v == nil || v == Undefined {
				parts[i] = ""
			} else {
				parts[i] = toJSString(v)
			}
		}
		return strings.Join(parts, sep), nil
	case "concat":
		out := append([]any{}, arr...)
		for _, a := range args {
			if sub, ok := a.([]any); ok {
				out = append(out, sub...)
			} else {
				out = append(out, a)
			}
		}
		return out, nil
	case "indexOf":
		if len(args) == 0 {
			return -1.0, nil
		}
		for i, v := range arr {
			if looseOrStrictEqual(v, args[0]) {
				return float64(i), nil
			}
		}
		return -1.0, nil
	case "includes":
		if len(args) == 0 {
			return false, nil
		}
		for _, v := range arr {
			if looseOrStrictEqual(v, args[0]) {
				return true, nil
			}
		}
		return false, nil
	case "slice":
		start, end := sliceBounds(len(arr), args)
		out := make([]any, end-start)
		copy(out, arr[start:end])
		return out, nil
	case "reverse":
		out := append([]any{}, arr...)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		return out, nil
	case "sort":
		out := append([]any{}, arr...)
		sort.SliceStable(out, func(i, j int) bool {
			return toJSString(out[i]) < toJSString(out[j])
		})
		return out, nil
	}
	return nil, fmt.Errorf("%w: Array.prototype.%s", ErrUnsupported, name)
}
