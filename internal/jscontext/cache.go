package jscontext

import (
	"strconv"

	"github.com/unscrambl/jsderef/internal/arborist"
	"github.com/unscrambl/jsderef/internal/cache"
)

// Collector memoises ContextOf+OrderedSource results the way
// asks for: cached under both a "node-id+content-hash" key and a
// "content-hash-only" key, so two structurally identical origins
// (common in obfuscated code that repeats the same decoder boilerplate)
// share one fragment computation even when their node ids differ. It
// wraps the same single-generation cache.Cache the fingerprint cache
// uses, scoped to the tree's current source fingerprint.
type Collector struct {
	bySource *cache.Cache[string]
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{bySource: cache.New[string]()}
}

// Source returns the ordered-source fragment for origin within tree,
// computing it on first request and serving cached text on every
// subsequent request against the same tree generation for either the
// exact same node id or a different node with identical source text.
func (c *Collector) Source(tree *arborist.Tree, origin *arborist.Node) string {
	fingerprint := cache.Fingerprint(tree.Source)
	var contentKey string
	if origin.IsExpression() {
		contentKey = arborist.PrintExpr(origin)
	} else {
		contentKey = arborist.Print(origin)
	}

	if v, ok := c.bySource.Get(fingerprint, contentKey); ok {
		return v
	}
	nodeKey := contentKey + "#" + strconv.Itoa(origin.ID)
	if v, ok := c.bySource.Get(fingerprint, nodeKey); ok {
		return v
	}

	fragment := OrderedSource(ContextOf(origin))
	c.bySource.Set(fingerprint, contentKey, fragment)
	c.bySource.Set(fingerprint, nodeKey, fragment)
	return fragment
}
