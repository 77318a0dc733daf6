// Package engine orchestrates compilation: a per-source LRU+TTL cache of
// phase-indexed trees, a dependency graph with reverse-closure queries, and
// the compile entry point that keeps both coherent.
package engine

import (
	"container/list"
	"sync"
	"time"

	"go.uber.org/zap"

	"groovylsp/internal/ast"
	"groovylsp/internal/compiler"
	"groovylsp/internal/source"
)

// CacheEntry is one cached compile result. Entries are immutable once
// inserted; readers share them without copying.
type CacheEntry struct {
	ContentHash source.ContentHash
	Tree        *ast.Module
	Phase       compiler.Phase
	InsertedAt  time.Time
}

// Cache is a thread-safe LRU+TTL cache keyed by source id. Reads take the
// shared lock on the map; LRU ordering has its own mutex so recency updates
// never block concurrent readers of the map.
type Cache struct {
	mu      sync.RWMutex
	entries map[source.ID]*cacheSlot

	lruMu   sync.Mutex
	lru     *list.List // front = most recent; values are source.ID
	maxSize int
	ttl     time.Duration
	log     *zap.Logger

	now func() time.Time
}

type cacheSlot struct {
	entry   CacheEntry
	lruElem *list.Element
}

// NewCache builds a cache bounded by maxSize entries and the given TTL.
func NewCache(maxSize int, ttl time.Duration, log *zap.Logger) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		entries: make(map[source.ID]*cacheSlot),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		log:     log.Named("cache"),
		now:     time.Now,
	}
}

// Get returns the cached tree when the hash matches, the stored phase covers
// minPhase, and the entry has not expired.
func (c *Cache) Get(id source.ID, hash source.ContentHash, minPhase compiler.Phase) (*ast.Module, bool) {
	c.mu.RLock()
	slot, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	entry := slot.entry
	if entry.ContentHash != hash {
		return nil, false
	}
	if entry.Phase < minPhase {
		return nil, false
	}
	if c.now().Sub(entry.InsertedAt) > c.ttl {
		return nil, false
	}
	c.touch(slot)
	return entry.Tree, true
}

func (c *Cache) touch(slot *cacheSlot) {
	c.lruMu.Lock()
	if slot.lruElem != nil {
		c.lru.MoveToFront(slot.lruElem)
	}
	c.lruMu.Unlock()
}

// Put inserts or replaces the entry for id, evicting the least recently used
// entry when the cache is full.
func (c *Cache) Put(id source.ID, entry CacheEntry) {
	if entry.InsertedAt.IsZero() {
		entry.InsertedAt = c.now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lruMu.Lock()
	defer c.lruMu.Unlock()

	if slot, ok := c.entries[id]; ok {
		c.entries[id] = &cacheSlot{entry: entry, lruElem: slot.lruElem}
		c.lru.MoveToFront(slot.lruElem)
		return
	}
	for len(c.entries) >= c.maxSize {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		victim := oldest.Value.(source.ID)
		c.lru.Remove(oldest)
		delete(c.entries, victim)
		c.log.Debug("evicted cache entry", zap.String("source", string(victim)))
	}
	elem := c.lru.PushFront(id)
	c.entries[id] = &cacheSlot{entry: entry, lruElem: elem}
}

// Invalidate removes the entry for id, if present.
func (c *Cache) Invalidate(id source.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.entries[id]
	if !ok {
		return
	}
	c.lruMu.Lock()
	c.lru.Remove(slot.lruElem)
	c.lruMu.Unlock()
	delete(c.entries, id)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lruMu.Lock()
	c.lru.Init()
	c.lruMu.Unlock()
	c.entries = make(map[source.ID]*cacheSlot)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
