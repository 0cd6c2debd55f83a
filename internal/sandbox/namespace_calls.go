package sandbox

// callNamespaceMethod dispatches obj.prop(...) calls against the
// handful of global namespace objects (Math, String, JSON) this
// evaluator treats as fixed tables rather than real values. Both Eval's
// call site and CallFunction's statement interpreter share this so a
// decoder function that calls JSON.parse internally folds the same way
// a literal-only Eval call site does. handled is false when objName
// isn't one of these namespaces, so the caller falls through to
// evaluating obj as an ordinary receiver expression instead.
func callNamespaceMethod(objName, propName string, args []any) (v any, handled bool, err error) {
	switch {
	case objName == "Math":
		v, err = callMath(propName, args)
		return v, true, err
	case objName == "String" && propName == "fromCharCode":
		return stringFromCharCode(args), true, nil
	case objName == "JSON" && propName == "parse":
		v, err = jsonParse(args)
		return v, true, err
	case objName == "JSON" && propName == "stringify":
		v, err = jsonStringify(args)
		return v, true, err
	}
	return nil, false, nil
}
