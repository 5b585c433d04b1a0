package core

import (
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// loadCache memoises parsed/evaluated module sources by content hash,
// adapted from the teacher's Stream.ensureParsed caching in
// lang/stream.go: a source string is hashed with xxh3 once, and
// `load`ing the identical source again (e.g. two modules `use`-ing a
// shared file) skips re-evaluating it.
type loadCache struct {
	mu      sync.Mutex
	entries map[string]*Module
}

func newLoadCache() *loadCache {
	return &loadCache{entries: make(map[string]*Module)}
}

// hashSource returns the cache key for a module source string.
func hashSource(source string) string {
	return strconv.FormatUint(xxh3.HashString(source), 36)
}

func (c *loadCache) get(source string) (*Module, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.entries[hashSource(source)]

	return m, ok
}

func (c *loadCache) put(source string, m *Module) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[hashSource(source)] = m
}
