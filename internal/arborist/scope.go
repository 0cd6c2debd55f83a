package arborist

import "github.com/emirpasic/gods/sets/treeset"

// Binding is one declared name: the node that introduced it, every
// identifier node that reads or writes it, and what introduced it (so
// passes like resolveLocalCalls can tell a function declaration binding
// from a plain var).
type Binding struct {
	Name       string
	DeclNode   *Node // VariableDeclarator target, function name, param, or catch param
	DeclKind   string // "var", "let", "const", "param", "function", "catch"
	References []*Node
}

// Scope is attached to Program, BlockStatement, every function kind and
// CatchClause — anything that can own bindings per JS's var/let scoping
// rules (functions and Program are function-scopes; blocks are
// block-scopes for let/const only, so var declarations inside a block
// bubble up to the nearest enclosing function/Program scope at resolve
// time; see resolveScopes in resolve.go and Scope.declare below).
type Scope struct {
	Owner    *Node
	Parent   *Scope
	Function bool // true for Program/Function* scopes, false for bare blocks
	Bindings map[string]*Binding

	// Through holds the names referenced inside this scope that resolve
	// to a binding in an ancestor scope rather than locally — the
	// "through set" used to decide which outer declarations
	// a self-contained fragment must drag along with it.
	Through *treeset.Set
}

// EnclosingScope returns the nearest scope that owns n or one of its
// ancestors — exported for passes outside this package that need to
// resolve an identifier's binding without walking the tree themselves.
func EnclosingScope(n *Node) *Scope {
	return enclosingScope(n)
}

// Resolve looks up name starting from s and walking outward, exactly as
// the internal reference-resolution pass does.
func (s *Scope) Resolve(name string) *Binding {
	return s.resolve(name)
}

func newScope(owner *Node, parent *Scope, isFunction bool) *Scope {
	return &Scope{
		Owner:    owner,
		Parent:   parent,
		Function: isFunction,
		Bindings: make(map[string]*Binding),
		Through:  treeset.NewWithStringComparator(),
	}
}

// declare registers name as bound in s (or, for "var", in the nearest
// enclosing function scope, modeling JS hoisting).
func (s *Scope) declare(name string, declNode *Node, declKind string) *Binding {
	target := s
	if declKind == "var" {
		for target.Parent != nil && !target.Function {
			target = target.Parent
		}
	}
	if b, ok := target.Bindings[name]; ok {
		return b
	}
	b := &Binding{Name: name, DeclNode: declNode, DeclKind: declKind}
	target.Bindings[name] = b
	return b
}

// resolve finds the binding for name visible from s, walking outward, and
// records a through-set entry on every scope the lookup had to cross.
func (s *Scope) resolve(name string) *Binding {
	cur := s
	var crossed []*Scope
	for cur != nil {
		if b, ok := cur.Bindings[name]; ok {
			for _, c := range crossed {
				c.Through.Add(name)
			}
			return b
		}
		crossed = append(crossed, cur)
		cur = cur.Parent
	}
	return nil
}
