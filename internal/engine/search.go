package engine

import (
	"github.com/hailam/vidro/internal/board"
)

// Search constants
const (
	Infinity  = 32000
	WinScore  = 30000 // Score of a line on the board, minus the ply it appears at
	DrawScore = 0
	EvalLimit = 29000 // Heuristic scores are clamped to ±EvalLimit
	MaxPly    = 64
)

// IsWinScore returns true if the score encodes a proven win or loss.
func IsWinScore(score int) bool {
	return score >= WinScore-MaxPly || score <= -WinScore+MaxPly
}

// Evaluator scores a position heuristically from the first player's point of
// view. Implementations must be pure and safe to call from the search goroutine.
type Evaluator interface {
	Evaluate(s board.Snapshot) int
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(s board.Snapshot) int

// Evaluate calls f(s).
func (f EvaluatorFunc) Evaluate(s board.Snapshot) int {
	return f(s)
}

// clampEval bounds a heuristic score so it never looks like a proven result.
func clampEval(score int) int {
	if score > EvalLimit {
		return EvalLimit
	}
	if score < -EvalLimit {
		return -EvalLimit
	}
	return score
}

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs the alpha-beta search.
// It wraps a single Worker that owns a private copy of the position.
type Searcher struct {
	worker *Worker
}

// NewSearcher creates a new searcher.
func NewSearcher(tt *TranspositionTable, eval Evaluator, opts *Options) *Searcher {
	return &Searcher{worker: NewWorker(tt, eval, opts)}
}

// Reset resets the searcher for a new search.
func (s *Searcher) Reset() {
	s.worker.Reset()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.worker.Nodes()
}

// Search performs a full-window search at the given depth.
func (s *Searcher) Search(pos *board.Position, depth int, prior board.Hash) (board.Move, int) {
	return s.SearchWithBounds(pos, depth, prior, -Infinity, Infinity)
}

// SearchWithBounds performs search with custom alpha/beta bounds (null windows for MTD(f)).
func (s *Searcher) SearchWithBounds(pos *board.Position, depth int, prior board.Hash, alpha, beta int) (board.Move, int) {
	s.worker.InitSearch(pos, prior)
	return s.worker.SearchDepth(depth, alpha, beta)
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	return s.worker.GetPV()
}
