// Package eval provides position evaluators for the search engine.
// Scores are from the first player's point of view.
package eval

import (
	"github.com/hailam/vidro/internal/board"
	"github.com/hailam/vidro/internal/engine"
)

// Pattern weights
const (
	semiOpenTwoScore   = 300 // o x x _ or _ x x o along a line
	splitOneScore      = 300 // x _ x
	handPieceWeight    = 100 // Per piece of difference in hand
	placeMobilityScore = 10  // Per legal placement cell
	reachWeight        = 15  // Per placed piece when the side that just moved has a reach
	ownThreatScore     = 25  // Per threat move of the side to move
	oppThreatScore     = 150 // Per threat move of the opponent
)

// Centre > corners > edge centres > the rest
var cellScores = [board.Cells]int{
	10, 0, 9, 0, 10,
	0, 2, 4, 2, 0,
	9, 4, 12, 4, 9,
	0, 2, 4, 2, 0,
	10, 0, 9, 0, 10,
}

// Shifts of the four line directions on the padded lattice: E, N, NW, NE.
var patternSteps = [4]uint{1, board.Width, board.Width - 1, board.Width + 1}

// Static is the hand-written evaluator.
type Static struct{}

var _ engine.Evaluator = Static{}

// NewStatic returns the hand-written evaluator.
func NewStatic() Static {
	return Static{}
}

// Evaluate scores a snapshot.
func (Static) Evaluate(s board.Snapshot) int {
	pos := s.Position()
	return Patterns(s.Players) +
		handPieceWeight*(int(s.Hand[1])-int(s.Hand[0])) +
		Placement(s.Players, s.Hand) +
		Reach(pos, s.Prior) +
		Threats(pos, s.Prior)
}

// Patterns scores two-in-a-row shapes with one open end and split pairs.
func Patterns(players [2]board.Bitboard) int {
	blank := board.FieldMask &^ (players[0] | players[1])
	total := 0
	for p := 0; p < 2; p++ {
		me, opp := players[p], players[1-p]
		score := 0
		for _, d := range patternSteps {
			pair := (me >> d) & (me >> (2 * d))
			semiA := opp & pair & (blank >> (3 * d))
			semiB := blank & pair & (opp >> (3 * d))
			split := me & (blank >> d) & (me >> (2 * d))
			score += (semiA.PopCount() + semiB.PopCount()) * semiOpenTwoScore
			score += split.PopCount() * splitOneScore
		}
		if p == 0 {
			total += score
		} else {
			total -= score
		}
	}
	return total
}

// Placement scores the cell table and the number of cells each player could
// place on.
func Placement(players [2]board.Bitboard, hand [2]uint8) int {
	score := 0
	for i, sign := range [2]int{1, -1} {
		b := players[i]
		for b != 0 {
			score += sign * cellScores[b.PopLSB().Index()]
		}
	}
	targets := (board.FieldMask &^ (players[0] | players[1]).Spread()).PopCount()
	for i, sign := range [2]int{1, -1} {
		if hand[i] > 0 {
			score += sign * targets * placeMobilityScore
		}
	}
	return score
}

// Reach rewards the side that just moved when it would win with a flick if it
// could move again. The bonus grows with the number of pieces on the board.
func Reach(pos *board.Position, prior board.Hash) int {
	if !pos.IsReach(prior) {
		return 0
	}
	placed := pos.Placed(board.First) + pos.Placed(board.Second)
	return int(-pos.SideToMove) * placed * reachWeight
}

// Threats counts the moves that create a reach for either side. Threats of the
// opponent of the side to move weigh more since it moves next after them.
func Threats(pos *board.Position, prior board.Hash) int {
	var ml board.MoveList
	pos.ThreatMoves(prior, &ml)
	mine := ml.Len()

	pos.SideToMove = -pos.SideToMove
	pos.ThreatMoves(prior, &ml)
	pos.SideToMove = -pos.SideToMove
	theirs := ml.Len()

	return int(pos.SideToMove) * (mine*ownThreatScore - theirs*oppThreatScore)
}
