package engine

import (
	"github.com/hailam/vidro/internal/board"
)

// Move ordering priorities
const (
	WinningMoveScore  = 10000000  // Move that completes a line for the mover
	RejectedMoveScore = -10000000 // Move that breaks the repetition rule
)

// MoveOrderer sorts moves for the search.
type MoveOrderer struct {
	eval   Evaluator
	scores [MaxPly][board.MaxMoves]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer(eval Evaluator) *MoveOrderer {
	return &MoveOrderer{eval: eval}
}

// ScoreMoves scores every move by a one-ply static look: the evaluation of the
// resulting position from the mover's point of view. Immediate wins come first,
// moves rejected by the repetition rule last.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, prior board.Hash) []int {
	scores := mo.scores[ply][:moves.Len()]
	mover := pos.SideToMove
	hash := pos.Hash()

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if !pos.ApplyChecked(m, prior) {
			scores[i] = RejectedMoveScore
			continue
		}
		switch w := pos.WinTurn(); {
		case w == mover:
			scores[i] = WinningMoveScore
		case w == -mover:
			scores[i] = -WinningMoveScore
		case pos.GameOver():
			scores[i] = DrawScore
		default:
			scores[i] = clampEval(mo.eval.Evaluate(pos.Snapshot(hash))) * int(mover)
		}
		pos.Undo(m)
	}
	return scores
}

// Order arranges moves for a node: a full static sort when sort is set, then the
// TT move (if present in the list) at the front.
func (mo *MoveOrderer) Order(pos *board.Position, moves *board.MoveList, ply int, prior board.Hash, ttMove board.Move, sort bool) {
	if sort && moves.Len() > 1 {
		SortMoves(moves, mo.ScoreMoves(pos, moves, ply, prior))
	}
	if ttMove != board.NoMove {
		moves.MoveToFront(ttMove)
	}
}

// SortMoves sorts moves by their scores (descending). Equal scores keep
// generation order.
func SortMoves(moves *board.MoveList, scores []int) {
	// Insertion sort (sufficient for at most 65 moves)
	for i := 1; i < moves.Len(); i++ {
		m, s := moves.Get(i), scores[i]
		j := i - 1
		for j >= 0 && scores[j] < s {
			moves.Set(j+1, moves.Get(j))
			scores[j+1] = scores[j]
			j--
		}
		moves.Set(j+1, m)
		scores[j+1] = s
	}
}
