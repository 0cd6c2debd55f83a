package passes

import (
	"context"

	"go.uber.org/zap"

	"github.com/unscrambl/jsderef/internal/arborist"
)

// RunDeadCodeCleanup implements the `-c/--clean` cleanup pass §4.7 runs
// to its own fixpoint after the main rewrite loop: drop unreferenced
// variable declarators with no side-effecting initializer, and drop
// statements that can never execute because they follow a
// return/throw/break/continue within the same block. It is kept separate
// from Catalogue() since the orchestrator only runs it when cleanup is
// requested, never as part of the ordinary safe/unsafe fixpoint.
func RunDeadCodeCleanup(ctx context.Context, t *arborist.Tree, logger *zap.SugaredLogger) (*arborist.Tree, bool, error) {
	changedAny := false
	for {
		next, changed, err := runSimple(ctx, "deadCode:unreachable", t, logger, collectBlocks(t), func(t *arborist.Tree, block *arborist.Node) bool {
			return removeUnreachableTail(t, block)
		})
		if err != nil {
			return t, changedAny, err
		}
		t = next
		if changed {
			changedAny = true
			continue
		}

		next, changed, err = runSimple(ctx, "deadCode:unusedDeclarators", t, logger, t.TypeMap(arborist.KindVariableDeclaration), func(t *arborist.Tree, decl *arborist.Node) bool {
			return removeDeadDeclarators(t, decl)
		})
		if err != nil {
			return t, changedAny, err
		}
		t = next
		if changed {
			changedAny = true
			continue
		}
		break
	}
	return t, changedAny, nil
}

// collectBlocks returns every Program and BlockStatement node, the two
// statement-list shapes a terminator can cut short.
func collectBlocks(t *arborist.Tree) []*arborist.Node {
	var out []*arborist.Node
	out = append(out, t.Root)
	out = append(out, t.TypeMap(arborist.KindBlockStatement)...)
	return out
}

// removeUnreachableTail stages removal of every statement in block's body
// after the first unconditional terminator (return/throw/break/continue),
// which can never run.
func removeUnreachableTail(t *arborist.Tree, block *arborist.Node) bool {
	cut := -1
	for i, s := range block.Body {
		if isTerminator(s) {
			cut = i
			break
		}
	}
	if cut == -1 || cut == len(block.Body)-1 {
		return false
	}
	removed := false
	for _, s := range block.Body[cut+1:] {
		t.MarkRemove(s, "deadCode:unreachable")
		removed = true
	}
	return removed
}

func isTerminator(s *arborist.Node) bool {
	switch s.Kind {
	case arborist.KindReturnStatement, arborist.KindThrowStatement,
		arborist.KindBreakStatement, arborist.KindContinueStatement:
		return true
	}
	return false
}

// removeDeadDeclarators drops a VariableDeclarator whose binding is never
// referenced and whose initializer (if any) cannot itself perform a
// side effect — a literal, identifier reference, or nothing at all. A
// call, assignment or other expression in Init is left alone even when
// the binding itself is unreferenced, since evaluating it once may still
// matter.
func removeDeadDeclarators(t *arborist.Tree, decl *arborist.Node) bool {
	live := make([]*arborist.Node, 0, len(decl.Declarations))
	changed := false
	for _, d := range decl.Declarations {
		if isDeadDeclarator(d) {
			changed = true
			continue
		}
		live = append(live, d)
	}
	if !changed {
		return false
	}
	if len(live) == 0 {
		t.MarkRemove(decl, "deadCode:unusedDeclarators")
		return true
	}
	replacement := &arborist.Node{Kind: arborist.KindVariableDeclaration, DeclKind: decl.DeclKind, Declarations: live}
	t.MarkNode(decl, replacement, "deadCode:unusedDeclarators")
	return true
}

func isDeadDeclarator(d *arborist.Node) bool {
	if d.TargetID == nil || d.TargetID.Kind != arborist.KindIdentifier {
		return false
	}
	scope := arborist.EnclosingScope(d)
	if scope == nil {
		return false
	}
	b := scope.Resolve(d.TargetID.Name)
	if b == nil || len(b.References) != 0 {
		return false
	}
	if d.Init == nil {
		return true
	}
	switch d.Init.Kind {
	case arborist.KindLiteral, arborist.KindRegExpLiteral, arborist.KindBigIntLiteral, arborist.KindIdentifier:
		return true
	}
	return d.Init.IsLiteralLike()
}
