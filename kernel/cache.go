package kernel

import (
	"sync"

	"github.com/wippyai/typeconv/layout"
	"github.com/wippyai/typeconv/types"
)

// Cache memoises programs per (type, meta) pair. Every program in a cache
// shares the cache's options, and with them its host.
type Cache struct {
	opts []Option
	into sync.Map // cacheKey -> *IntoProgram
	from sync.Map // cacheKey -> *FromProgram
}

type cacheKey struct {
	typ  *types.Type
	meta *layout.Meta
}

// NewCache creates a cache instantiating programs with opts.
func NewCache(opts ...Option) *Cache {
	return &Cache{opts: opts}
}

// Into returns the into program for t and meta, building it on first use.
func (c *Cache) Into(t *types.Type, meta *layout.Meta) (*IntoProgram, error) {
	key := cacheKey{typ: t, meta: meta}
	if cached, ok := c.into.Load(key); ok {
		return cached.(*IntoProgram), nil
	}
	p, err := InstantiateInto(t, meta, c.opts...)
	if err != nil {
		return nil, err
	}
	if actual, loaded := c.into.LoadOrStore(key, p); loaded {
		p.Close()
		return actual.(*IntoProgram), nil
	}
	return p, nil
}

// From returns the from program for t and meta, building it on first use.
func (c *Cache) From(t *types.Type, meta *layout.Meta) (*FromProgram, error) {
	key := cacheKey{typ: t, meta: meta}
	if cached, ok := c.from.Load(key); ok {
		return cached.(*FromProgram), nil
	}
	p, err := InstantiateFrom(t, meta, c.opts...)
	if err != nil {
		return nil, err
	}
	if actual, loaded := c.from.LoadOrStore(key, p); loaded {
		p.Close()
		return actual.(*FromProgram), nil
	}
	return p, nil
}

// Close closes and forgets every cached program.
func (c *Cache) Close() {
	c.into.Range(func(k, v any) bool {
		v.(*IntoProgram).Close()
		c.into.Delete(k)
		return true
	})
	c.from.Range(func(k, v any) bool {
		v.(*FromProgram).Close()
		c.from.Delete(k)
		return true
	})
}
