package tregex

import (
	"container/list"
	"sync"
)

const defaultCacheSize = 256

type cacheEntry struct {
	src     string
	pattern *Pattern
}

// Compiler compiles patterns against one Config and keeps the most recently
// used results in an LRU cache. It is safe for concurrent use.
type Compiler struct {
	cfg Config

	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// NewCompiler returns a Compiler caching up to size patterns.
// A size <= 0 selects a default of 256.
func NewCompiler(cfg Config, size int) *Compiler {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Compiler{
		cfg:      cfg,
		capacity: size,
		ll:       list.New(),
		items:    make(map[string]*list.Element, size),
	}
}

// Compile returns the cached pattern for src, compiling it on a miss.
// Errors are not cached.
func (c *Compiler) Compile(src string) (*Pattern, error) {
	if p, ok := c.get(src); ok {
		return p, nil
	}
	p, err := Compile(src, c.cfg)
	if err != nil {
		return nil, err
	}
	c.put(src, p)
	return p, nil
}

// Len returns the number of cached patterns.
func (c *Compiler) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Compiler) get(src string) (*Pattern, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[src]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).pattern, true
}

func (c *Compiler) put(src string, p *Pattern) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[src]; ok {
		el.Value.(*cacheEntry).pattern = p
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		if oldest := c.ll.Back(); oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).src)
		}
	}
	c.items[src] = c.ll.PushFront(&cacheEntry{src: src, pattern: p})
}
