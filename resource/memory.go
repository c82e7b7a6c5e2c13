// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"container/list"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rendertask/gpucache"
)

// DefaultMemoryCacheCapacity is the default number of resident images.
const DefaultMemoryCacheCapacity = 1024

// MemoryStats contains MemoryCache statistics.
type MemoryStats struct {
	Resident  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// String returns a human-readable summary.
func (s MemoryStats) String() string {
	return fmt.Sprintf("Images[%d resident, %d hits, %d misses, %d evictions]",
		s.Resident, s.Hits, s.Misses, s.Evictions)
}

type memoryEntry struct {
	item    CacheItem
	element *list.Element
}

// MemoryCache is an in-memory Cache with LRU eviction of resident images.
// Image properties are never evicted.
//
// MemoryCache is safe for concurrent use, so an upload goroutine may mark
// images resident while a frame is being built.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	props    map[ImageKey]ImageProperties
	resident map[ImageRequest]*memoryEntry
	lru      *list.List // front = most recently used

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewMemoryCache creates a cache holding up to capacity resident images.
// If capacity <= 0, DefaultMemoryCacheCapacity is used.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultMemoryCacheCapacity
	}
	return &MemoryCache{
		capacity: capacity,
		props:    make(map[ImageKey]ImageProperties),
		resident: make(map[ImageRequest]*memoryEntry),
		lru:      list.New(),
	}
}

// Register records the properties of an image.
func (c *MemoryCache) Register(key ImageKey, props ImageProperties) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.props[key] = props
}

// MarkResident records that req is uploaded to layer of texture at uv.
func (c *MemoryCache) MarkResident(req ImageRequest, texture CacheTextureID, layer int, uv image.Rectangle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := CacheItem{
		Texture:      CacheTexture(texture),
		Layer:        layer,
		UVRect:       uv,
		UVRectHandle: new(gpucache.Handle),
	}
	if e, ok := c.resident[req]; ok {
		e.item = item
		c.lru.MoveToFront(e.element)
		return
	}

	for c.lru.Len() >= c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		victim := c.lru.Remove(oldest).(ImageRequest)
		delete(c.resident, victim)
		c.evictions.Add(1)
	}

	e := &memoryEntry{item: item}
	e.element = c.lru.PushFront(req)
	c.resident[req] = e
}

// Evict drops req from the resident set.
func (c *MemoryCache) Evict(req ImageRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.resident[req]
	if !ok {
		return false
	}
	c.lru.Remove(e.element)
	delete(c.resident, req)
	c.evictions.Add(1)
	return true
}

// ImageProperties implements Cache.
func (c *MemoryCache) ImageProperties(key ImageKey) (ImageProperties, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.props[key]
	return p, ok
}

// CachedImage implements Cache. Items of the same request share one UV-rect
// handle, so the rect is written to the GPU cache once per frame.
func (c *MemoryCache) CachedImage(req ImageRequest) (CacheItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.resident[req]
	if !ok {
		c.misses.Add(1)
		return CacheItem{}, fmt.Errorf("image %d: %w", req.Key, ErrNotResident)
	}
	c.lru.MoveToFront(e.element)
	c.hits.Add(1)
	return e.item, nil
}

// Stats returns a snapshot of the cache statistics.
func (c *MemoryCache) Stats() MemoryStats {
	c.mu.Lock()
	resident := len(c.resident)
	c.mu.Unlock()
	return MemoryStats{
		Resident:  resident,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
