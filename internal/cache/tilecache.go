package cache

import (
	"fmt"
	"log"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxTiles is the default cache capacity in tiles. At the typical
// 30-60 KB per tile that keeps the cache under ~120 MB.
const DefaultMaxTiles = 2048

// TileCache is an in-memory LRU cache of raw tile bytes keyed by panorama
// ID, zoom level and tile coordinate. Safe for concurrent use.
type TileCache struct {
	entries *lru.Cache[string, []byte]
	hits    int64
	misses  int64
}

// NewTileCache creates a cache holding up to maxTiles tiles. Zero or
// negative falls back to DefaultMaxTiles.
func NewTileCache(maxTiles int) (*TileCache, error) {
	if maxTiles <= 0 {
		maxTiles = DefaultMaxTiles
	}
	entries, err := lru.New[string, []byte](maxTiles)
	if err != nil {
		return nil, fmt.Errorf("failed to create tile cache: %w", err)
	}
	return &TileCache{entries: entries}, nil
}

func tileKey(panoramaID string, zoom, x, y int) string {
	return fmt.Sprintf("%s/%d/%d/%d", panoramaID, zoom, x, y)
}

// Get retrieves a tile from the cache.
func (c *TileCache) Get(panoramaID string, zoom, x, y int) ([]byte, bool) {
	data, ok := c.entries.Get(tileKey(panoramaID, zoom, x, y))
	if ok {
		atomic.AddInt64(&c.hits, 1)
	} else {
		atomic.AddInt64(&c.misses, 1)
	}
	return data, ok
}

// Set stores a tile, evicting the least recently used tile when full.
func (c *TileCache) Set(panoramaID string, zoom, x, y int, data []byte) {
	c.entries.Add(tileKey(panoramaID, zoom, x, y), data)
}

// Stats returns the entry count and hit/miss counters.
func (c *TileCache) Stats() (entries int, hits, misses int64) {
	return c.entries.Len(), atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Clear drops all cached tiles.
func (c *TileCache) Clear() {
	c.entries.Purge()
}

// LogStats writes the cache counters to the log.
func (c *TileCache) LogStats() {
	entries, hits, misses := c.Stats()
	log.Printf("[Cache] %d tiles cached, %d hits, %d misses", entries, hits, misses)
}
