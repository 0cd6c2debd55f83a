// Package jsparse is the thin tree-sitter front end: it turns source text
// into a concrete syntax tree and nothing else. Everything downstream
// (the arborist) treats this as the pure parse(text) -> Tree half of the
// engine; jsparse itself carries no rewrite logic.
package jsparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JAVASCRIPT is the tree-sitter grammar used for every parse in this module.
var JAVASCRIPT = javascript.GetLanguage()

// ErrParse is returned when the source cannot be parsed at all.
type ErrParse struct {
	Reason string
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// Result bundles the parsed tree with the exact bytes it was parsed from,
// since tree-sitter nodes reference their source by byte range rather than
// holding a copy of the text themselves.
type Result struct {
	Tree   *sitter.Tree
	Source []byte
}

// Close releases the tree-sitter tree. Safe to call on a zero Result.
func (r *Result) Close() {
	if r != nil && r.Tree != nil {
		r.Tree.Close()
	}
}

// Parse builds a concrete syntax tree for source. The root node is always a
// "program" node even for empty or whitespace-only input.
func Parse(ctx context.Context, source []byte) (*Result, error) {
	p := sitter.NewParser()
	p.SetLanguage(JAVASCRIPT)

	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		return nil, &ErrParse{Reason: "tree-sitter returned no root node"}
	}
	if root.Type() == "ERROR" {
		return nil, &ErrParse{Reason: "source does not parse as JavaScript: " + describeError(root, source)}
	}

	return &Result{Tree: tree, Source: source}, nil
}

// describeError renders the first parse error tree-sitter found, in the same
// "line N: <source line>" shape the teacher's scala parser used for its own
// ERROR-query diagnostics (scala/parser.go's queryErrors).
func describeError(root *sitter.Node, source []byte) string {
	if !root.HasError() {
		return "unknown error"
	}

	var walk func(n *sitter.Node) *sitter.Node
	walk = func(n *sitter.Node) *sitter.Node {
		if n.Type() == "ERROR" || n.IsMissing() {
			return n
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil && c.HasError() {
				if found := walk(c); found != nil {
					return found
				}
			}
		}
		return nil
	}

	errNode := walk(root)
	if errNode == nil {
		return "unknown error"
	}

	point := errNode.StartPoint()
	return fmt.Sprintf("line %d: %s", point.Row+1, errNode.Content(source))
}
