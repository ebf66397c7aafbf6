package engine

import (
	"github.com/hailam/vidro/internal/board"
)

// MateValue is the outcome class of a mate query.
type MateValue uint8

const (
	MateUnknown MateValue = iota // No proof within the budget
	MateProven                   // Forced result proven
)

func (v MateValue) String() string {
	if v == MateProven {
		return "proven"
	}
	return "unknown"
}

// MateResult is the answer of the mate oracle. For a proven result Sign is the
// winning side (0 for a drawn terminal) and Line holds the moves from the queried
// position to the end of the game, attacker first, assuming the longest defence.
type MateResult struct {
	Value MateValue
	Sign  board.Side
	Line  []board.Move
}

// Proven returns true if the result carries a proof.
func (r MateResult) Proven() bool {
	return r.Value == MateProven
}

// MateOracle is a bounded OR/AND prover for forced wins of the side to move.
// It is conservative: any defence it cannot refute within the budget makes the
// answer Unknown, never a false proof.
type MateOracle struct {
	// MaxNodes limits the nodes of one Solve call; 0 means no limit.
	// Running out yields Unknown.
	MaxNodes uint64

	nodes   uint64
	aborted bool
}

// NewMateOracle creates an oracle without a node limit.
func NewMateOracle() *MateOracle {
	return &MateOracle{}
}

// Nodes returns the nodes visited by the last Solve call.
func (o *MateOracle) Nodes() uint64 {
	return o.nodes
}

// Solve looks for a forced win of the side to move within budget plies.
// prior is the position before the opponent's last move (NoHash if none).
// The position is restored before Solve returns.
func (o *MateOracle) Solve(pos *board.Position, budget int, prior board.Hash) MateResult {
	o.nodes = 0
	o.aborted = false

	if pos.GameOver() {
		return MateResult{Value: MateProven, Sign: pos.WinTurn()}
	}

	attacker := pos.SideToMove
	line, ok := o.attack(pos, budget, prior)
	if !ok || o.aborted {
		return MateResult{Value: MateUnknown}
	}
	return MateResult{Value: MateProven, Sign: attacker, Line: line}
}

func (o *MateOracle) visit() bool {
	o.nodes++
	if o.MaxNodes > 0 && o.nodes > o.MaxNodes {
		o.aborted = true
	}
	return !o.aborted
}

// attack is the OR layer: the side to move needs one move that wins within budget.
// Prefers the shortest line.
func (o *MateOracle) attack(pos *board.Position, budget int, prior board.Hash) ([]board.Move, bool) {
	if budget < 1 || !o.visit() {
		return nil, false
	}
	// Placements never complete a line, so the attacker needs three pieces on
	// the board by the time the last move is played.
	if pos.Placed(pos.SideToMove)+(budget+1)/2 < 3 {
		return nil, false
	}

	var ml board.MoveList
	pos.GenerateLegalMoves(&ml)
	mover := pos.SideToMove
	hash := pos.Hash()

	for _, m := range ml.Slice() {
		if !pos.ApplyChecked(m, prior) {
			continue
		}
		won := pos.WinTurn() == mover
		pos.Undo(m)
		if won {
			return []board.Move{m}, true
		}
	}
	if budget < 2 {
		return nil, false
	}

	var best []board.Move
	limit := budget
	for _, m := range ml.Slice() {
		if limit < 2 || o.aborted {
			break
		}
		if !pos.ApplyChecked(m, prior) {
			continue
		}
		if !pos.GameOver() {
			if defence, ok := o.defend(pos, limit-1, hash); ok {
				best = append([]board.Move{m}, defence...)
				limit = len(best) - 1
			}
		}
		pos.Undo(m)
	}
	return best, best != nil
}

// defend is the AND layer: every defence of the side to move must still lose
// within budget. Returns the longest losing line.
func (o *MateOracle) defend(pos *board.Position, budget int, prior board.Hash) ([]board.Move, bool) {
	if budget < 1 || !o.visit() {
		return nil, false
	}

	var ml board.MoveList
	pos.GenerateLegalMoves(&ml)
	attacker := -pos.SideToMove
	hash := pos.Hash()

	var longest []board.Move
	defended := false
	for _, m := range ml.Slice() {
		if !pos.ApplyChecked(m, prior) {
			continue
		}
		defended = true

		var line []board.Move
		switch {
		case pos.GameOver() && pos.WinTurn() == attacker:
			line = []board.Move{m}
		case pos.GameOver():
			// Own line or a double line escapes the loss.
			pos.Undo(m)
			return nil, false
		default:
			cont, ok := o.attack(pos, budget-1, hash)
			if !ok {
				pos.Undo(m)
				return nil, false
			}
			line = append([]board.Move{m}, cont...)
		}
		pos.Undo(m)

		if len(line) > len(longest) {
			longest = line
		}
	}
	// A defender without moves is not counted as a proof, the line could not be replayed.
	if !defended {
		return nil, false
	}
	return longest, true
}
