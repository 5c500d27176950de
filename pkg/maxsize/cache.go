package maxsize

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/wireschema/wireschema/pkg/schema"
)

type bound struct {
	n  int
	ok bool
}

// Cache memoizes Engine results per descriptor. Descriptors never change
// after construction, so entries never go stale. Safe for concurrent use.
type Cache struct {
	engine *Engine
	bounds *xsync.MapOf[*schema.NamedType, bound]
}

// NewCache wraps e. A nil e uses the default engine.
func NewCache(e *Engine) *Cache {
	if e == nil {
		e = defaultEngine
	}
	return &Cache{
		engine: e,
		bounds: xsync.NewMapOf[*schema.NamedType, bound](),
	}
}

// Named returns the bound of nt, computing it at most once per descriptor
// under concurrent callers.
func (c *Cache) Named(nt *schema.NamedType) (int, bool) {
	b, _ := c.bounds.LoadOrCompute(nt, func() bound {
		n, ok := c.engine.Named(nt)
		return bound{n: n, ok: ok}
	})
	return b.n, b.ok
}

// Len returns the number of cached descriptors.
func (c *Cache) Len() int {
	return c.bounds.Size()
}
