package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/vidro/internal/board"
	"github.com/hailam/vidro/internal/engine"
)

// Storage keys
const (
	keyStats      = "stats"
	keyGameSeq    = "seq/game"
	prefixGame    = "game/"
	prefixWeights = "weights/"
	prefixTable   = "table/"
)

// Game ids leased from the sequence per round trip
const gameSeqBandwidth = 64

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// GameRecord is a finished game.
type GameRecord struct {
	ID       uint64        `json:"id"`
	Players  [2]string     `json:"players"`
	Moves    []string      `json:"moves"`
	Winner   board.Side    `json:"winner"` // 0 for a draw
	Reason   string        `json:"reason"` // Why the game ended
	Duration time.Duration `json:"duration"`
	Played   time.Time     `json:"played"`
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed   int            `json:"games_played"`
	FirstWins     int            `json:"first_wins"`
	SecondWins    int            `json:"second_wins"`
	Draws         int            `json:"draws"`
	TotalPlies    int            `json:"total_plies"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
	ByReason      map[string]int `json:"by_reason"`
	LongestGame   int            `json:"longest_game"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{ByReason: make(map[string]int)}
}

// FirstWinRate returns the share of games won by the first player as a percentage (0-100)
func (s *GameStats) FirstWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.FirstWins) / float64(s.GamesPlayed) * 100
}

// AveragePlies returns the mean game length.
func (s *GameStats) AveragePlies() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalPlies) / float64(s.GamesPlayed)
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging
	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	seq, err := db.GetSequence([]byte(keyGameSeq), gameSeqBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("game sequence: %w", err)
	}
	return &Storage{db: db, seq: seq}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	if s.seq != nil {
		if err := s.seq.Release(); err != nil {
			s.db.Close()
			return err
		}
	}
	return s.db.Close()
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the value at key into v. Returns ErrNotFound if the key is missing.
func (s *Storage) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	if err := s.get(keyStats, stats); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if stats.ByReason == nil {
		stats.ByReason = make(map[string]int)
	}
	return stats, nil
}

func gameKey(id uint64) []byte {
	key := make([]byte, len(prefixGame)+8)
	copy(key, prefixGame)
	binary.BigEndian.PutUint64(key[len(prefixGame):], id)
	return key
}

// RecordGame stores a finished game and updates statistics. The record gets
// the next game id.
func (s *Storage) RecordGame(rec *GameRecord) error {
	id, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next game id: %w", err)
	}
	rec.ID = id
	if rec.Played.IsZero() {
		rec.Played = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.GamesPlayed++
	stats.TotalPlies += len(rec.Moves)
	stats.TotalPlayTime += rec.Duration
	stats.ByReason[rec.Reason]++
	if len(rec.Moves) > stats.LongestGame {
		stats.LongestGame = len(rec.Moves)
	}
	switch rec.Winner {
	case board.First:
		stats.FirstWins++
	case board.Second:
		stats.SecondWins++
	default:
		stats.Draws++
	}
	statsData, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(gameKey(id), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
}

// Games returns up to limit recorded games, most recent first. limit <= 0 returns all.
func (s *Storage) Games(limit int) ([]GameRecord, error) {
	var games []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixGame)
		// Reverse iteration starts at the largest key not above the seek key
		seek := append(gameKey(math.MaxUint64), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			games = append(games, rec)
			if limit > 0 && len(games) >= limit {
				break
			}
		}
		return nil
	})
	return games, err
}

// SaveWeights stores an evaluator weight vector under name.
func (s *Storage) SaveWeights(name string, weights []float32) error {
	return s.put(prefixWeights+name, weights)
}

// LoadWeights loads the weight vector saved under name.
func (s *Storage) LoadWeights(name string) ([]float32, error) {
	var weights []float32
	if err := s.get(prefixWeights+name, &weights); err != nil {
		return nil, err
	}
	return weights, nil
}

func tableKey(capacity int) string {
	return prefixTable + strconv.Itoa(capacity)
}

// SaveTable stores a transposition table snapshot. Snapshots are keyed by the
// table capacity so a table only reloads into one of the same size.
func (s *Storage) SaveTable(tt *engine.TranspositionTable) error {
	return s.put(tableKey(tt.Capacity()), tt.Entries())
}

// LoadTable fills tt from the snapshot saved for its capacity and returns the
// number of loaded entries.
func (s *Storage) LoadTable(tt *engine.TranspositionTable) (int, error) {
	var records []engine.TTRecord
	if err := s.get(tableKey(tt.Capacity()), &records); err != nil {
		return 0, err
	}
	tt.Load(records)
	return len(records), nil
}
