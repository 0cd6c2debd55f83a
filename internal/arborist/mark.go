package arborist

// Mark is a staged replacement or removal, exactly as
// describes it: passes never mutate a Node in place, they stage a Mark
// against its id and the arborist resolves every staged Mark during the
// next ApplyChanges/commit.
type Mark struct {
	TargetID    int
	Replacement *Node // nil means "remove target from its containing list/slot"
	PassName    string
}

// MarkNode stages replacing target with replacement. Both must belong to
// this tree (replacement is typically freshly literalised and carries no
// meaningful ID yet; ApplyChanges only cares about TargetID).
func (t *Tree) MarkNode(target *Node, replacement *Node, passName string) {
	if target == nil {
		return
	}
	t.marks[target.ID] = &Mark{TargetID: target.ID, Replacement: replacement, PassName: passName}
}

// MarkRemove stages removing target entirely (from a statement list, an
// array/object literal, an argument list, ...).
func (t *Tree) MarkRemove(target *Node, passName string) {
	if target == nil {
		return
	}
	t.marks[target.ID] = &Mark{TargetID: target.ID, Replacement: nil, PassName: passName}
}

// HasMarks reports whether any mark is staged.
func (t *Tree) HasMarks() bool {
	return len(t.marks) > 0
}

// ClearMarks discards every staged mark without applying them, used when a
// pass's match fires but its guard later decides not to transform after
// all.
func (t *Tree) ClearMarks() {
	for k := range t.marks {
		delete(t.marks, k)
	}
}
