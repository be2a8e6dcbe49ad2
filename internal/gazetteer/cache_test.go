package gazetteer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeSnapshot(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestSnapshotCacheLoadsOnceAndShares(t *testing.T) {
	t.Parallel()

	path := writeSnapshot(t, "- name: Springfield\n  entity_type: place\n")
	cache := NewSnapshotCache(path)

	const workers = 16
	indexes := make([]*Index, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx, err := cache.Get()
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}
			indexes[i] = idx
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if indexes[i] != indexes[0] {
			t.Fatal("concurrent callers should share one snapshot instance")
		}
	}
}

func TestSnapshotCacheTeardownForcesFreshLoad(t *testing.T) {
	t.Parallel()

	path := writeSnapshot(t, "- name: Springfield\n  entity_type: place\n")
	cache := NewSnapshotCache(path)

	first, err := cache.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	cache.Teardown()
	second, err := cache.Get()
	if err != nil {
		t.Fatalf("Get() after teardown error = %v", err)
	}
	if first == second {
		t.Fatal("teardown should force a fresh snapshot on next use")
	}
}

func TestSnapshotCachePropagatesLoadError(t *testing.T) {
	t.Parallel()

	cache := NewSnapshotCache(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := cache.Get(); err == nil {
		t.Fatal("expected load error for missing snapshot")
	}
}
