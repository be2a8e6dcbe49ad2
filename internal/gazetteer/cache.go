package gazetteer

import (
	"fmt"
	"sync"
)

// SnapshotCache is a run-scoped holder for the loaded gazetteer index. The
// snapshot is expensive to build, so it is loaded on first use and reused by
// every worker until Teardown at run end. The lifecycle is explicit:
// init-on-first-use, teardown-on-run-end; callers own a cache instance per
// run rather than sharing an implicit global.
type SnapshotCache struct {
	path string

	mu     sync.Mutex
	once   *sync.Once
	index  *Index
	loadEr error
}

// NewSnapshotCache prepares a cache for the given snapshot path without
// loading anything.
func NewSnapshotCache(path string) *SnapshotCache {
	return &SnapshotCache{path: path, once: new(sync.Once)}
}

// Get loads the snapshot on first call and returns the shared read-only
// index afterwards. Concurrent callers block until the single load finishes.
func (c *SnapshotCache) Get() (*Index, error) {
	c.mu.Lock()
	once := c.once
	c.mu.Unlock()

	once.Do(func() {
		idx, err := LoadIndex(c.path)
		c.mu.Lock()
		c.index, c.loadEr = idx, err
		c.mu.Unlock()
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadEr != nil {
		return nil, fmt.Errorf("gazetteer snapshot load: %w", c.loadEr)
	}
	return c.index, nil
}

// Teardown releases the snapshot at run end. A subsequent Get loads a fresh
// immutable snapshot; the old index is never mutated.
func (c *SnapshotCache) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = nil
	c.loadEr = nil
	c.once = new(sync.Once)
}
