package sandbox

import (
	"encoding/json"
	"fmt"
	"sort"
)

// jsonParse implements JSON.parse against the sandbox's own value model
// by decoding into interface{} and converting: numbers, strings and
// booleans already land as the sandbox's own types, and fromJSONValue
// translates JSON's []interface{}/map[string]interface{} shape into the
// sandbox's []any/*Object. Object keys are inserted in sorted order, not
// in the order they appear in the source text.
func jsonParse(args []any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: JSON.parse with no argument", ErrUnsupported)
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: JSON.parse of a non-string", ErrUnsupported)
	}
	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, fmt.Errorf("%w: JSON.parse of invalid JSON: %v", ErrUnsupported, err)
	}
	return fromJSONValue(decoded), nil
}

func fromJSONValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string:
		return x
	case float64:
		return x
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			out[i] = fromJSONValue(el)
		}
		return out
	case map[string]any:
		obj := NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, fromJSONValue(x[k]))
		}
		return obj
	}
	return Undefined
}

// jsonStringify implements JSON.stringify for the sandbox's value
// model. Only the single-argument form is supported: the replacer and
// indentation parameters real JSON.stringify takes are never used by
// the plain data-literal tables this evaluator folds.
func jsonStringify(args []any) (any, error) {
	if len(args) == 0 {
		return Undefined, nil
	}
	v, ok := toJSONValue(args[0])
	if !ok {
		return Undefined, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: JSON.stringify failed: %v", ErrUnsupported, err)
	}
	return string(b), nil
}

func toJSONValue(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case undefinedType:
		return nil, false
	case bool, string, float64:
		return x, true
	case []any:
		out := make([]any, len(x))
		for i, el := range x {
			jv, ok := toJSONValue(el)
			if !ok {
				jv = nil
			}
			out[i] = jv
		}
		return out, true
	case *Object:
		out := make(map[string]any, len(x.Keys))
		for _, k := range x.Keys {
			val, _ := x.Get(k)
			if jv, ok := toJSONValue(val); ok {
				out[k] = jv
			}
		}
		return out, true
	}
	return nil, false
}
