package gazetteer

import (
	"context"

	"github.com/agnivade/levenshtein"
)

// MatchKind distinguishes how a match was found.
type MatchKind string

// Match kinds.
const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)

// Match is the transient result of one resolution call.
type Match struct {
	Entry *Entry
	Score float64
	Kind  MatchKind
}

// ResolverConfig tunes the fuzzy fallback.
type ResolverConfig struct {
	// FuzzyThreshold is the minimum similarity score accepted (default 0.85).
	FuzzyThreshold float64
	// MaxFuzzyEntries disables fallback entirely when the gazetteer exceeds
	// this size, trading recall for bounded latency (default 50000).
	MaxFuzzyEntries int
}

// Resolver maps entity mentions to canonical gazetteer records.
type Resolver struct {
	cfg ResolverConfig
}

// NewResolver applies defaults to zero config values.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = 0.85
	}
	if cfg.MaxFuzzyEntries <= 0 {
		cfg.MaxFuzzyEntries = 50000
	}
	return &Resolver{cfg: cfg}
}

// Resolve links an entity mention to a gazetteer record, or returns nil when
// nothing matches. Absence of a match is an expected result, not an error;
// Resolve never fails. Exact match is always attempted first and wins
// regardless of fuzzy configuration.
func (r *Resolver) Resolve(ctx context.Context, entityText string, idx *Index) *Match {
	if idx == nil {
		return nil
	}
	normalized := Normalize(entityText)
	if normalized == "" {
		return nil
	}
	if entry, ok := idx.Lookup(normalized); ok {
		return &Match{Entry: entry, Score: 1.0, Kind: MatchExact}
	}
	if idx.Len() > r.cfg.MaxFuzzyEntries {
		return nil
	}
	return r.resolveFuzzy(ctx, normalized, idx)
}

// resolveFuzzy scans every candidate and keeps the best similarity score.
// The comparator is an O(n*m) byte-level edit distance with sub-millisecond
// per-comparison cost, so a full scan stays within the resolve timeout at
// gazetteer sizes in the tens of thousands.
func (r *Resolver) resolveFuzzy(ctx context.Context, normalized string, idx *Index) *Match {
	var (
		best      *Entry
		bestScore float64
	)
	for i, entry := range idx.Entries() {
		// Check cancellation periodically rather than per comparison.
		if i%1024 == 0 && ctx.Err() != nil {
			return nil
		}
		score := similarity(normalized, entry.NormalizedName)
		if score > bestScore {
			best, bestScore = entry, score
		}
	}
	if best == nil || bestScore < r.cfg.FuzzyThreshold {
		return nil
	}
	return &Match{Entry: best, Score: bestScore, Kind: MatchFuzzy}
}

// similarity converts edit distance to a [0,1] score: 1 - dist/maxLen.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
