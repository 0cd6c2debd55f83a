package arborist

import (
	"context"
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"

	"github.com/unscrambl/jsderef/internal/jsparse"
)

// Tree is the arborist substrate the rewrite engine operates over: a flat,
// id-addressable forest view over a JavaScript program, with staged
// Marks that only take effect once ApplyChanges commits them by
// re-printing the whole program and reparsing it from scratch. Nothing
// in this package ever patches node metadata in place after a rewrite;
// every commit rebuilds the model, the same way the teacher's
// CachingParser always hands back a freshly parsed tree rather than
// patching a cached one (parse/caching.go).
type Tree struct {
	Root   *Node
	Source []byte

	nodes   map[int]*Node
	typeMap map[Kind]*treeset.Set
	marks   map[int]*Mark
	nextID  int
}

// New parses source with jsparse and builds the arborist's Node tree plus
// its scope model over it.
func New(ctx context.Context, source []byte) (*Tree, error) {
	res, err := jsparse.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("arborist: %w", err)
	}
	defer res.Close()

	b := newBuilder(source)
	root := b.build(res.Tree.RootNode(), nil)
	resolveScopes(root)

	t := &Tree{
		Root:    root,
		Source:  source,
		nodes:   b.nodes,
		typeMap: make(map[Kind]*treeset.Set),
		marks:   make(map[int]*Mark),
		nextID:  b.nextID,
	}
	t.indexTypes()
	return t, nil
}

func (t *Tree) indexTypes() {
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		set, ok := t.typeMap[n.Kind]
		if !ok {
			set = treeset.NewWith(func(a, b interface{}) int {
				return a.(*Node).ID - b.(*Node).ID
			})
			t.typeMap[n.Kind] = set
		}
		set.Add(n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(t.Root)
}

// Nodes returns every node in the tree, ascending by id.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for i := 1; i <= t.nextID; i++ {
		if n, ok := t.nodes[i]; ok {
			out = append(out, n)
		}
	}
	return out
}

// TypeMap returns every node of the given Kind currently in the tree, in
// ascending id order — the bucketed lookup this package calls "typeMap",
// used by passes that match on a single Kind across the whole program.
func (t *Tree) TypeMap(k Kind) []*Node {
	set, ok := t.typeMap[k]
	if !ok {
		return nil
	}
	vals := set.Values()
	out := make([]*Node, len(vals))
	for i, v := range vals {
		out[i] = v.(*Node)
	}
	return out
}

// Script renders the tree's current state, ignoring any staged-but-not-
// yet-committed marks.
func (t *Tree) Script() string {
	return Print(t.Root)
}

// HasPendingMark reports whether node id has a staged mark.
func (t *Tree) HasPendingMark(id int) bool {
	_, ok := t.marks[id]
	return ok
}

// ApplyChanges commits every staged Mark: it substitutes each marked node
// for its replacement (or removes it), prints the resulting structure,
// and reparses the printed text into a brand-new Tree. The receiver is
// left untouched; callers swap in the returned Tree. An empty mark set
// goes through the same print and reparse and returns a fresh Tree, so
// callers can always uniformly loop on the return value.
func (t *Tree) ApplyChanges(ctx context.Context) (*Tree, error) {
	newRoot := rebuild(t.Root, t.marks)
	text := Print(newRoot)
	next, err := New(ctx, []byte(text))
	if err != nil {
		return nil, &ErrParseAfterRewrite{Inner: err, Source: text}
	}
	return next, nil
}
