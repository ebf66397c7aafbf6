package engine

import (
	"github.com/hailam/vidro/internal/board"
)

// EvalEntry stores a cached evaluation.
type EvalEntry struct {
	Key   board.Hash
	Prior board.Hash
	Score int16
	used  bool
}

// EvalCache is a direct-mapped cache in front of an Evaluator. The key includes
// the prior hash because evaluators may look at the repetition rule. It is not
// safe for concurrent use; each search owns its own cache.
type EvalCache struct {
	eval    Evaluator
	entries []EvalEntry
	mask    uint64

	hits   uint64
	probes uint64
}

// NewEvalCache wraps eval with a cache of at least size entries (rounded up to a power of 2).
func NewEvalCache(eval Evaluator, size int) *EvalCache {
	n := 1
	for n < size {
		n *= 2
	}
	return &EvalCache{
		eval:    eval,
		entries: make([]EvalEntry, n),
		mask:    uint64(n - 1),
	}
}

func (c *EvalCache) index(key, prior board.Hash) uint64 {
	h := uint64(key) ^ uint64(key)>>23 ^ uint64(prior)*0x9E3779B97F4A7C15
	return (h ^ h>>32) & c.mask
}

// Evaluate returns the cached score or computes and stores it.
func (c *EvalCache) Evaluate(s board.Snapshot) int {
	key := s.Hash()
	c.probes++
	entry := &c.entries[c.index(key, s.Prior)]
	if entry.used && entry.Key == key && entry.Prior == s.Prior {
		c.hits++
		return int(entry.Score)
	}
	score := clampEval(c.eval.Evaluate(s))
	*entry = EvalEntry{Key: key, Prior: s.Prior, Score: int16(score), used: true}
	return score
}

// HitRate returns the cache hit rate as a percentage.
func (c *EvalCache) HitRate() float64 {
	if c.probes == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.probes) * 100
}

// Clear clears the cache.
func (c *EvalCache) Clear() {
	for i := range c.entries {
		c.entries[i] = EvalEntry{}
	}
	c.hits = 0
	c.probes = 0
}
