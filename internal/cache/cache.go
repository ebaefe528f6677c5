// Package cache keeps the most recently loaded snapshot collection of each visited file.
package cache

import (
	"sync"

	"github.com/rcliao/file-snapshot/internal/model"
)

// Cache maps a file key to a private copy of its collection. Values never alias the
// collections handed in or out.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*model.Collection
}

func New() *Cache {
	return &Cache{entries: make(map[string]*model.Collection)}
}

// Get returns a copy of the cached collection for key.
func (c *Cache) Get(key string) (*model.Collection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return v.Clone(), true
}

// Put stores a copy of col under key. An empty collection evicts key instead.
func (c *Cache) Put(key string, col *model.Collection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col.Len() == 0 {
		delete(c.entries, key)
		return
	}
	c.entries[key] = col.Clone()
}

// Delete evicts key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear evicts everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*model.Collection)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
