// Package mutation answers one question the pass catalogue leans on
// heavily: for a given binding, is there any reachable write to it after
// its initial declaration? resolveLocalCalls and resolveFunctionToArray
// (through their shared localCallCandidate check) skip a call whose
// callee binding this reports as mutated, so a function that is
// reassigned somewhere is never inlined.
package mutation

import "github.com/unscrambl/jsderef/internal/arborist"

// IsMutated reports whether any reference to b is a write: a direct
// assignment target, an increment/decrement operand, a for-in/for-of
// loop target, a delete operand, or the receiver of a call to one of the
// mutating prototype methods (push, splice, sort, ...).
// Destructuring-pattern targets are not detected: the arborist keeps
// destructuring patterns as Opaque nodes, so a write through one is not
// reported as a mutation.
func IsMutated(b *arborist.Binding) bool {
	for _, ref := range b.References {
		if isWriteOccurrence(ref) {
			return true
		}
	}
	return false
}

func isWriteOccurrence(ref *arborist.Node) bool {
	p := ref.Parent
	if p == nil {
		return false
	}

	switch p.Kind {
	case arborist.KindAssignmentExpression:
		if p.Left == ref {
			return true
		}
	case arborist.KindUpdateExpression:
		if p.Argument == ref {
			return true
		}
	case arborist.KindForInStatement, arborist.KindForOfStatement:
		if p.ForLeft == ref {
			return true
		}
	case arborist.KindUnaryExpression:
		if p.Operator == "delete" && p.Argument == ref {
			return true
		}
	}

	if isMutatingMethodReceiver(ref) {
		return true
	}

	return false
}

// isMutatingMethodReceiver reports whether ref is the object of a member
// expression that is itself the callee of a call to a name in the
// mutating-properties set (arr.push(x) mutates arr, even though arr is
// only ever read as a value by the member-expression evaluation itself).
func isMutatingMethodReceiver(ref *arborist.Node) bool {
	member := ref.Parent
	if member == nil || member.Kind != arborist.KindMemberExpression || member.Object != ref {
		return false
	}
	call := member.Parent
	if call == nil || call.Kind != arborist.KindCallExpression || call.Callee != member {
		return false
	}
	if member.Computed || member.Property == nil {
		return false
	}
	return arborist.IsMutatingProperty(member.Property.Name)
}
