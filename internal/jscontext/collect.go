// Package jscontext implements the context collector and ordered-source
// fragment printer: given a candidate node,
// gather the smallest set of surrounding declarations that make it
// self-contained, then render that set back to source the sandbox can
// evaluate as a standalone program. It generalizes the teacher's
// recursive-walk style into the explicit work-stack §9's "coroutine-style
// traversal" design note asks for, using gods' arraystack the same way
// the arborist's scope model already reaches for gods' treeset.
package jscontext

import (
	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// ContextOf returns the smallest set of nodes whose ordered source (see
// OrderedSource) is a self-contained fragment behaviourally equivalent to
// evaluating origin.
func ContextOf(origin *arborist.Node) []*arborist.Node {
	if origin == nil {
		return nil
	}

	visited := make(map[int]bool)
	var collected []*arborist.Node

	isRedundant := func(n *arborist.Node) bool {
		for _, c := range collected {
			if n.StartByte >= c.StartByte && n.EndByte <= c.EndByte {
				return true
			}
		}
		return false
	}

	stack := arraystack.New()
	stack.Push(origin)

	push := func(n *arborist.Node) {
		if n == nil || visited[n.ID] {
			return
		}
		stack.Push(n)
	}

	pushChildren := func(n *arborist.Node) {
		for _, c := range n.Children() {
			push(c)
		}
	}

	for !stack.Empty() {
		v, _ := stack.Pop()
		n, ok := v.(*arborist.Node)
		if !ok || n == nil || visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		if isRedundant(n) {
			continue
		}
		collected = append(collected, n)

		switch n.Kind {
		case arborist.KindVariableDeclarator:
			discoverDeclaratorWrites(n, push)

		case arborist.KindAssignmentExpression:
			push(n.Right)

		case arborist.KindCallExpression:
			for _, a := range n.Arguments {
				if a.Kind == arborist.KindIdentifier {
					push(a)
				}
			}

		case arborist.KindMemberExpression:
			push(n.Property)

		case arborist.KindIdentifier:
			if decl := resolveDeclaration(n); decl != nil {
				push(decl)
			}
		}

		// Through-set closure (step 4): every free variable this node's
		// own scope referenced across a boundary drags its declaration
		// (and that declaration's children, so nested references resolve
		// too) into the fragment.
		scope := n.Scope
		if scope == nil {
			scope = arborist.EnclosingScope(n)
		}
		if scope != nil {
			for _, v := range scope.Through.Values() {
				name, _ := v.(string)
				b := scope.Resolve(name)
				if b == nil || b.DeclNode == nil {
					continue
				}
				decl := declarationOf(b.DeclNode)
				push(decl)
				pushChildren(decl)
			}
		}
	}

	return filterLeaves(collected)
}

// resolveDeclaration looks up the binding id refers to and returns the
// node that should represent its declaration in a fragment.
func resolveDeclaration(id *arborist.Node) *arborist.Node {
	scope := arborist.EnclosingScope(id)
	if scope == nil {
		return nil
	}
	b := scope.Resolve(id.Name)
	if b == nil || b.DeclNode == nil {
		return nil
	}
	return declarationOf(b.DeclNode)
}

// declarationOf maps a Binding.DeclNode (the bare identifier a binding was
// introduced by) to the enclosing node that should be emitted as its
// declaration: the whole VariableDeclaration for a var/let/const binding,
// or the owning function/catch node for a param, function name or catch
// parameter.
func declarationOf(declNode *arborist.Node) *arborist.Node {
	p := declNode.Parent
	if p == nil {
		return declNode
	}
	if p.Kind == arborist.KindVariableDeclarator {
		if p.Parent != nil {
			return p.Parent
		}
		return p
	}
	return p
}

// discoverDeclaratorWrites implements step 3's VariableDeclarator case:
// every direct assignment to the binding, every content-modifying
// property assignment or mutating-method call on it, and every call that
// passes it as an argument (an augmenting function), identified by
// walking the binding's recorded references.
func discoverDeclaratorWrites(declarator *arborist.Node, push func(*arborist.Node)) {
	if declarator.TargetID == nil {
		return
	}
	scope := arborist.EnclosingScope(declarator)
	if scope == nil {
		return
	}
	b := scope.Resolve(declarator.TargetID.Name)
	if b == nil {
		return
	}

	for _, ref := range b.References {
		p := ref.Parent
		if p == nil {
			continue
		}

		switch p.Kind {
		case arborist.KindAssignmentExpression:
			if p.Left == ref {
				push(statementOf(p))
			}

		case arborist.KindMemberExpression:
			if p.Object != ref {
				continue
			}
			if gp := p.Parent; gp != nil && gp.Kind == arborist.KindAssignmentExpression && gp.Left == p {
				push(statementOf(gp))
			}
			if call := p.Parent; call != nil && call.Kind == arborist.KindCallExpression && call.Callee == p &&
				!p.Computed && p.Property != nil && arborist.IsMutatingProperty(p.Property.Name) {
				push(statementOf(call))
			}

		case arborist.KindCallExpression:
			for _, a := range p.Arguments {
				if a == ref {
					push(statementOf(p))
					break
				}
			}
		}
	}
}

// statementOf climbs from n to the nearest ancestor that is itself a
// direct element of a Program or BlockStatement body — the smallest unit
// that can be emitted as a standalone piece of source.
func statementOf(n *arborist.Node) *arborist.Node {
	cur := n
	for cur.Parent != nil {
		switch cur.Parent.Kind {
		case arborist.KindProgram, arborist.KindBlockStatement:
			return cur
		}
		cur = cur.Parent
	}
	return cur
}

// filterLeaves drops pure-leaf nodes (step 6): bare literals, identifiers
// and member expressions contribute nothing as a standalone statement.
func filterLeaves(nodes []*arborist.Node) []*arborist.Node {
	out := make([]*arborist.Node, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case arborist.KindLiteral, arborist.KindRegExpLiteral, arborist.KindBigIntLiteral,
			arborist.KindIdentifier, arborist.KindMemberExpression, arborist.KindThisExpression:
			continue
		}
		out = append(out, n)
	}
	return out
}
