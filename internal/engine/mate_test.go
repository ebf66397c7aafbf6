package engine

import (
	"testing"

	"github.com/hailam/vidro/internal/board"
)

// forcedWin is a brute-force reference for the oracle without pruning.
func forcedWin(pos *board.Position, budget int, prior board.Hash) bool {
	if budget < 1 {
		return false
	}
	mover := pos.SideToMove
	hash := pos.Hash()
	for _, m := range pos.LegalMoves().Slice() {
		if !pos.ApplyChecked(m, prior) {
			continue
		}
		won := pos.WinTurn() == mover ||
			(!pos.GameOver() && allDefencesLose(pos, budget-1, hash))
		pos.Undo(m)
		if won {
			return true
		}
	}
	return false
}

func allDefencesLose(pos *board.Position, budget int, prior board.Hash) bool {
	if budget < 1 {
		return false
	}
	attacker := -pos.SideToMove
	hash := pos.Hash()
	defended := false
	for _, m := range pos.LegalMoves().Slice() {
		if !pos.ApplyChecked(m, prior) {
			continue
		}
		defended = true
		var lost bool
		if pos.GameOver() {
			lost = pos.WinTurn() == attacker
		} else {
			lost = forcedWin(pos, budget-1, hash)
		}
		pos.Undo(m)
		if !lost {
			return false
		}
	}
	return defended
}

// replayLine plays a proven line and checks that it ends with a win for sign.
func replayLine(t *testing.T, pos *board.Position, prior board.Hash, r MateResult) {
	t.Helper()
	p := pos.Copy()
	for i, m := range r.Line {
		if p.GameOver() {
			t.Fatalf("line %s: game over before move %d", PVString(r.Line), i)
		}
		before := p.Hash()
		if err := p.Play(m, prior); err != nil {
			t.Fatalf("line %s: move %d: %v", PVString(r.Line), i, err)
		}
		prior = before
	}
	if p.WinTurn() != r.Sign {
		t.Fatalf("line %s ends with winner %v, want %v", PVString(r.Line), p.WinTurn(), r.Sign)
	}
}

func TestMateInOne(t *testing.T) {
	pos := board.MustParseNotation("...../...../...o./...../xx.x. x")
	o := NewMateOracle()

	r := o.Solve(pos, 1, board.NoHash)
	if !r.Proven() || r.Sign != board.First || len(r.Line) != 1 {
		t.Fatalf("Solve = %+v, want a one-move win for x", r)
	}
	replayLine(t, pos, board.NoHash, r)
	if pos.Notation() != "...../...../...o./...../xx.x. x" {
		t.Errorf("position not restored: %s", pos.Notation())
	}
	if o.Nodes() == 0 {
		t.Error("no nodes counted")
	}
}

func TestMateTerminal(t *testing.T) {
	tests := []struct {
		notation string
		sign     board.Side
	}{
		{"...../...../...../...../xxx.. o", board.First},
		{"...../ooo../...../...../x.x.x x", board.Second},
		{"...../...../ooo../...../xxx.. x", 0},
	}
	for _, tc := range tests {
		pos := board.MustParseNotation(tc.notation)
		r := NewMateOracle().Solve(pos, 3, board.NoHash)
		if !r.Proven() || r.Sign != tc.sign || len(r.Line) != 0 {
			t.Errorf("%s: Solve = %+v, want proven %v with an empty line", tc.notation, r, tc.sign)
		}
	}
}

func TestMateUnknown(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		budget   int
	}{
		{"empty board", board.StartNotation, 3},
		{"zero budget", "...../...../...o./...../xx.x. x", 0},
		{"too few pieces", "...../...../...../..o../x.... x", 3},
	}
	for _, tc := range tests {
		pos := board.MustParseNotation(tc.notation)
		if r := NewMateOracle().Solve(pos, tc.budget, board.NoHash); r.Proven() {
			t.Errorf("%s: got proof %s", tc.name, PVString(r.Line))
		}
	}
}

func TestMateNodeLimit(t *testing.T) {
	pos := board.MustParseNotation("...../.o.o./...../...../x.x.o x")
	o := NewMateOracle()
	o.MaxNodes = 1
	if r := o.Solve(pos, 3, board.NoHash); r.Proven() {
		t.Errorf("aborted solve returned a proof %s", PVString(r.Line))
	}
}

// The oracle must agree with the unpruned reference and never invent a proof.
func TestMateSoundness(t *testing.T) {
	r := board.NewPRNG(2024)
	proven := 0
	for i := 0; i < 150; i++ {
		pos, prior := board.RandomPosition(r, 6+r.Intn(14))
		if pos.GameOver() {
			continue
		}
		for _, budget := range []int{1, 3} {
			res := NewMateOracle().Solve(pos, budget, prior)
			want := forcedWin(pos.Copy(), budget, prior)
			if res.Proven() != want {
				t.Fatalf("%s budget %d: proven=%v, reference=%v", pos.Notation(), budget, res.Proven(), want)
			}
			if !res.Proven() {
				continue
			}
			proven++
			if res.Sign != pos.SideToMove {
				t.Fatalf("%s: sign %v, want %v", pos.Notation(), res.Sign, pos.SideToMove)
			}
			if len(res.Line) == 0 || len(res.Line) > budget {
				t.Fatalf("%s budget %d: bad line length %d", pos.Notation(), budget, len(res.Line))
			}
			replayLine(t, pos, prior, res)
		}
	}
	t.Logf("%d proofs checked", proven)
}
