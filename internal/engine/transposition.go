package engine

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/hailam/vidro/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

func (f TTFlag) String() string {
	switch f {
	case TTExact:
		return "exact"
	case TTLowerBound:
		return "lower"
	case TTUpperBound:
		return "upper"
	}
	return "?"
}

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	BestMove board.Move `json:"move"`
	Score    int16      `json:"score"`
	Depth    int8       `json:"depth"`
	Flag     TTFlag     `json:"flag"`
	Age      uint8      `json:"age"`
}

// TTRecord is a key/entry pair, used to export and import the table.
type TTRecord struct {
	Key   board.Hash `json:"key"`
	Entry TTEntry    `json:"entry"`
}

// DefaultTTCapacity is the number of entries of a table created with capacity 0.
const DefaultTTCapacity = 1 << 20

// TranspositionTable is a fixed capacity LRU of search results keyed by the
// compressed position hash. The search thread and the progress reporter share
// it, so every access takes the mutex.
type TranspositionTable struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[board.Hash, TTEntry]
	capacity int
	age      uint8

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a table holding at most capacity entries.
func NewTranspositionTable(capacity int) *TranspositionTable {
	if capacity <= 0 {
		capacity = DefaultTTCapacity
	}
	lru, err := simplelru.NewLRU[board.Hash, TTEntry](capacity, nil)
	if err != nil {
		// Only returned for a non-positive size.
		panic(fmt.Sprintf("engine: transposition table: %v", err))
	}
	return &TranspositionTable{lru: lru, capacity: capacity}
}

// Probe looks up a position and marks it as recently used.
// Returns the entry and true if found, otherwise returns empty entry and false.
func (tt *TranspositionTable) Probe(key board.Hash) (TTEntry, bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	tt.probes++
	entry, ok := tt.lru.Get(key)
	if ok {
		tt.hits++
	}
	return entry, ok
}

// Store saves a search result.
//
// Replacement strategy:
// - Keep the existing entry if it is from the current search and strictly deeper
// - Otherwise overwrite (and evict the least recently used entry when full)
func (tt *TranspositionTable) Store(key board.Hash, depth int, score int, flag TTFlag, bestMove board.Move) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if old, ok := tt.lru.Peek(key); ok && old.Age == tt.age && int(old.Depth) > depth {
		return
	}
	tt.lru.Add(key, TTEntry{
		BestMove: bestMove,
		Score:    int16(score),
		Depth:    int8(depth),
		Flag:     flag,
		Age:      tt.age,
	})
}

// NewSearch increments the age counter for a new search.
func (tt *TranspositionTable) NewSearch() {
	tt.mu.Lock()
	tt.age++
	tt.mu.Unlock()
}

// Clear removes every entry and resets the statistics.
func (tt *TranspositionTable) Clear() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.lru.Purge()
	tt.age = 0
	tt.hits = 0
	tt.probes = 0
}

// Len returns the number of stored entries.
func (tt *TranspositionTable) Len() int {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return tt.lru.Len()
}

// Capacity returns the maximum number of entries.
func (tt *TranspositionTable) Capacity() int {
	return tt.capacity
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Entries exports the table from least to most recently used.
func (tt *TranspositionTable) Entries() []TTRecord {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	keys := tt.lru.Keys()
	records := make([]TTRecord, 0, len(keys))
	for _, k := range keys {
		if e, ok := tt.lru.Peek(k); ok {
			records = append(records, TTRecord{Key: k, Entry: e})
		}
	}
	return records
}

// Load inserts exported records in order, so the last record ends up most
// recently used. Loaded entries belong to an older search generation.
func (tt *TranspositionTable) Load(records []TTRecord) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	for _, r := range records {
		e := r.Entry
		e.Age = tt.age - 1
		tt.lru.Add(r.Key, e)
	}
}

// AdjustScoreFromTT converts a stored mate score back to the distance from the root.
func AdjustScoreFromTT(score int, ply int) int {
	if score > WinScore-MaxPly {
		return score - ply
	}
	if score < -WinScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT makes a mate score relative to the node before storing it.
func AdjustScoreToTT(score int, ply int) int {
	if score > WinScore-MaxPly {
		return score + ply
	}
	if score < -WinScore+MaxPly {
		return score - ply
	}
	return score
}
