package sandbox

import (
	"math"
	"strconv"
)

// toNumber implements the handful of ToNumber coercions obfuscated
// literal expressions actually rely on: numbers pass through, booleans
// become 0/1, strings parse (or NaN), null is 0, undefined is NaN.
func toNumber(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := trimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case nil:
		return 0
	case undefinedType:
		return math.NaN()
	}
	return math.NaN()
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isJSSpace(s[start]) {
		start++
	}
	for end > start && isJSSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isJSSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func toInt32(v any) int32 {
	f := toNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(int64(f))
}

// toJSString implements the ToString coercions the binary "+" operator
// and the builtin allow-list need.
func toJSString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatNumber(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	case undefinedType:
		return "undefined"
	case *BigInt:
		return x.Int.String()
	case *Regexp:
		return "/" + x.Pattern + "/" + x.Flags
	case []any:
		parts := make([]string, len(x))
		for i, el := range x {
			if el == nil {
				parts[i] = ""
			} else if el == Undefined {
				parts[i] = ""
			} else {
				parts[i] = toJSString(el)
			}
		}
		return joinComma(parts)
	case *Object:
		return "[object Object]"
	}
	return "<bad value>"
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Truthy implements JavaScript's ToBoolean coercion for the value types
// this sandbox produces.
func Truthy(v any) bool {
	return truthy(v)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil, undefinedType:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	case *BigInt:
		return x.Int.Sign() != 0
	}
	return true
}

func jsTypeof(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case undefinedType:
		return "undefined"
	case nil:
		return "object"
	case *BigInt:
		return "bigint"
	case *Symbol:
		return "symbol"
	case []any, *Object, *Regexp:
		return "object"
	}
	return "object"
}

func looseOrStrictEqual(l, r any) bool {
	switch lv := l.(type) {
	case float64:
		if rv, ok := r.(float64); ok {
			return lv == rv
		}
	case string:
		if rv, ok := r.(string); ok {
			return lv == rv
		}
	case bool:
		if rv, ok := r.(bool); ok {
			return lv == rv
		}
	case nil:
		return r == nil
	case undefinedType:
		return r == Undefined
	case *BigInt:
		if rv, ok := r.(*BigInt); ok {
			return lv.Int.Cmp(rv.Int) == 0
		}
	case *Symbol:
		return l == r
	case *Regexp:
		return l == r
	}
	// Cross-type comparisons (the "==" loose-equality coercion table) are
	// deliberately unsupported: obfuscators rarely rely on them, and
	// getting the coercion matrix wrong silently would be worse than
	// refusing to fold.
	return false
}

func compare(l, r any) int {
	ln, lok := l.(float64)
	rn, rok := r.(float64)
	if lok && rok {
		switch {
		case ln < rn:
			return -1
		case ln > rn:
			return 1
		default:
			return 0
		}
	}
	ls, rs := toJSString(l), toJSString(r)
	switch {
	case ls < rs:
		return -1
	case ls > rs:
		return 1
	default:
		return 0
	}
}
