package arborist

// rebuild returns a copy of n with every staged mark applied: a node
// whose id has a Mark is replaced wholesale by its Replacement (or
// dropped if Replacement is nil), and every other node is copied with its
// children recursively rebuilt. This is how ApplyChanges produces the
// text it reparses — structural substitution first, commit-via-reparse
// second.
func rebuild(n *Node, marks map[int]*Mark) *Node {
	if n == nil {
		return nil
	}
	if m, ok := marks[n.ID]; ok {
		return m.Replacement
	}

	cp := *n
	cp.Body = rebuildList(n.Body, marks)
	cp.Argument = rebuild(n.Argument, marks)
	cp.Left = rebuild(n.Left, marks)
	cp.Right = rebuild(n.Right, marks)
	cp.Expressions = rebuildList(n.Expressions, marks)
	cp.Test = rebuild(n.Test, marks)
	cp.Consequent = rebuild(n.Consequent, marks)
	cp.Alternate = rebuild(n.Alternate, marks)
	cp.Object = rebuild(n.Object, marks)
	cp.Property = rebuild(n.Property, marks)
	cp.Callee = rebuild(n.Callee, marks)
	cp.Arguments = rebuildList(n.Arguments, marks)
	cp.FuncName = rebuild(n.FuncName, marks)
	cp.Params = rebuildList(n.Params, marks)
	cp.FuncBody = rebuild(n.FuncBody, marks)
	cp.Declarations = rebuildList(n.Declarations, marks)
	cp.TargetID = rebuild(n.TargetID, marks)
	cp.Init = rebuild(n.Init, marks)
	cp.Expression = rebuild(n.Expression, marks)
	cp.ForInit = rebuild(n.ForInit, marks)
	cp.ForTest = rebuild(n.ForTest, marks)
	cp.ForUpdate = rebuild(n.ForUpdate, marks)
	cp.ForLeft = rebuild(n.ForLeft, marks)
	cp.ForRight = rebuild(n.ForRight, marks)
	cp.LoopBody = rebuild(n.LoopBody, marks)
	cp.Discriminant = rebuild(n.Discriminant, marks)
	cp.Cases = rebuildList(n.Cases, marks)
	cp.TryBlock = rebuild(n.TryBlock, marks)
	cp.Handler = rebuild(n.Handler, marks)
	cp.Finalizer = rebuild(n.Finalizer, marks)
	cp.CatchParm = rebuild(n.CatchParm, marks)
	cp.Label = rebuild(n.Label, marks)
	cp.LabeledBody = rebuild(n.LabeledBody, marks)
	cp.Key = rebuild(n.Key, marks)
	cp.Value = rebuild(n.Value, marks)
	return &cp
}

func rebuildList(list []*Node, marks map[int]*Mark) []*Node {
	if list == nil {
		return nil
	}
	out := make([]*Node, 0, len(list))
	for _, c := range list {
		if c == nil {
			continue
		}
		if m, ok := marks[c.ID]; ok {
			if m.Replacement != nil {
				out = append(out, m.Replacement)
			}
			continue
		}
		if rc := rebuild(c, marks); rc != nil {
			out = append(out, rc)
		}
	}
	return out
}
