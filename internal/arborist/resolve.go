package arborist

// resolveScopes wires up Scope.Parent pointers, declares every binding and
// resolves every identifier reference against the scope it occurs in. It
// runs once per build/ApplyChanges commit, after the builder has produced
// the full Node tree, mirroring the teacher's own "parse, then walk to
// build the symbol model" two-step in scala/parser.go.
func resolveScopes(root *Node) {
	linkScopeParents(root, nil)
	declareBindings(root)
	resolveReferences(root)
}

func enclosingScope(n *Node) *Scope {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Scope != nil {
			return cur.Scope
		}
	}
	return nil
}

func linkScopeParents(n *Node, parent *Node) {
	if n == nil {
		return
	}
	if n.Scope != nil && n.Parent != nil {
		n.Scope.Parent = enclosingScope(n.Parent)
	}
	for _, c := range n.Children() {
		linkScopeParents(c, n)
	}
}

// declareBindings walks pre-order, registering every binding-introducing
// occurrence: declarators, function/param names, catch parameters.
func declareBindings(n *Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case KindVariableDeclarator:
		if n.TargetID != nil && n.TargetID.Kind == KindIdentifier {
			declKind := "var"
			if n.Parent != nil && n.Parent.Kind == KindVariableDeclaration {
				declKind = n.Parent.DeclKind
			}
			scope := enclosingScope(n)
			if scope != nil {
				scope.declare(n.TargetID.Name, n.TargetID, declKind)
			}
		}

	case KindFunctionDeclaration:
		if n.FuncName != nil {
			if outer := enclosingScope(n.Parent); outer != nil {
				outer.declare(n.FuncName.Name, n.FuncName, "function")
			}
		}
		declareParams(n)

	case KindFunctionExpression:
		if n.FuncName != nil && n.Scope != nil {
			n.Scope.declare(n.FuncName.Name, n.FuncName, "function")
		}
		declareParams(n)

	case KindArrowFunctionExpression:
		declareParams(n)

	case KindCatchClause:
		if n.CatchParm != nil && n.CatchParm.Kind == KindIdentifier && n.Scope != nil {
			n.Scope.declare(n.CatchParm.Name, n.CatchParm, "catch")
		}
	}

	for _, c := range n.Children() {
		declareBindings(c)
	}
}

func declareParams(fn *Node) {
	if fn.Scope == nil {
		return
	}
	for _, p := range fn.Params {
		if p != nil && p.Kind == KindIdentifier {
			fn.Scope.declare(p.Name, p, "param")
		}
	}
}

// resolveReferences walks pre-order a second time, resolving every
// Identifier that is used as a value (not a declaring occurrence and not
// a non-computed property/key name) against its enclosing scope.
func resolveReferences(n *Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case KindIdentifier:
		if !isBindingOccurrence(n) {
			if scope := enclosingScope(n); scope != nil {
				if b := scope.resolve(n.Name); b != nil {
					b.References = append(b.References, n)
				}
			}
		}
	}

	for _, c := range referenceChildren(n) {
		resolveReferences(c)
	}
}

// isBindingOccurrence reports whether identifier n is itself the
// declaring occurrence (handled by declareBindings) rather than a use, so
// resolveReferences does not also record it as a reference to itself.
func isBindingOccurrence(n *Node) bool {
	p := n.Parent
	if p == nil {
		return false
	}
	switch p.Kind {
	case KindVariableDeclarator:
		return p.TargetID == n
	case KindFunctionDeclaration, KindFunctionExpression:
		return p.FuncName == n
	case KindCatchClause:
		return p.CatchParm == n
	}
	if p.Kind == KindFunctionDeclaration || p.Kind == KindFunctionExpression || p.Kind == KindArrowFunctionExpression {
		for _, param := range p.Params {
			if param == n {
				return true
			}
		}
	}
	return false
}

// referenceChildren is Children() minus the slots that hold names rather
// than value expressions: non-computed member/property keys and labels,
// which are not variable references even though they are Identifier
// nodes.
func referenceChildren(n *Node) []*Node {
	all := n.Children()
	if n.Kind == KindMemberExpression && !n.Computed {
		out := make([]*Node, 0, len(all)-1)
		for _, c := range all {
			if c == n.Property {
				continue
			}
			out = append(out, c)
		}
		return out
	}
	if n.Kind == KindProperty {
		if n.Shorthand {
			return []*Node{n.Value}
		}
		out := make([]*Node, 0, len(all))
		for _, c := range all {
			if c == n.Key {
				continue
			}
			out = append(out, c)
		}
		return out
	}
	if n.Kind == KindLabeledStatement || n.Kind == KindBreakStatement || n.Kind == KindContinueStatement {
		out := make([]*Node, 0, len(all))
		for _, c := range all {
			if c == n.Label {
				continue
			}
			out = append(out, c)
		}
		return out
	}
	return all
}
