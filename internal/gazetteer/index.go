package gazetteer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one canonical gazetteer record.
type Entry struct {
	Name           string `yaml:"name"`
	NormalizedName string `yaml:"-"`
	EntityType     string `yaml:"entity_type"`
}

// Index is an immutable snapshot of the gazetteer, shared read-only by all
// resolution calls for the duration of a run. A new run loads a fresh
// snapshot; the index is never mutated in place.
type Index struct {
	byNormalized map[string]*Entry
	entries      []*Entry
}

// NewIndex normalizes every entry once and builds the exact-match map.
// When two names normalize identically the first entry wins.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		byNormalized: make(map[string]*Entry, len(entries)),
		entries:      make([]*Entry, 0, len(entries)),
	}
	for i := range entries {
		e := entries[i]
		e.NormalizedName = Normalize(e.Name)
		if e.NormalizedName == "" {
			continue
		}
		entry := &e
		idx.entries = append(idx.entries, entry)
		if _, exists := idx.byNormalized[e.NormalizedName]; !exists {
			idx.byNormalized[e.NormalizedName] = entry
		}
	}
	return idx
}

// LoadIndex reads a YAML snapshot file and builds the index.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer snapshot: %w", err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse gazetteer snapshot: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("gazetteer snapshot %s is empty", path)
	}
	return NewIndex(entries), nil
}

// Lookup returns the entry for an already-normalized name.
func (idx *Index) Lookup(normalized string) (*Entry, bool) {
	e, ok := idx.byNormalized[normalized]
	return e, ok
}

// Entries exposes the full candidate list for fuzzy scans.
func (idx *Index) Entries() []*Entry {
	return idx.entries
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}
