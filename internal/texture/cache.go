package texture

import (
	"image"
	"sync"
)

// Resolver resolves a texture name to a decoded image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache is a concurrency-safe read-through texture cache shared by all
// batch workers.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]*image.NRGBA // nil value: load failed
	index  *Index
	failed func(path string, err error)
}

// NewCache creates a cache backed by index. onError, when set, is told
// about every file that fails to load; it is called once per file.
func NewCache(index *Index, onError func(path string, err error)) *Cache {
	return &Cache{
		items:  make(map[string]*image.NRGBA),
		index:  index,
		failed: onError,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}

	c.mu.RLock()
	img, exists := c.items[path]
	c.mu.RUnlock()
	if exists {
		return img
	}

	img, err := LoadTexture(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, exists := c.items[path]; exists {
		return cached
	}
	c.items[path] = img
	if err != nil && c.failed != nil {
		c.failed(path, err)
	}
	return img
}
