package board

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	DebugValidation = true
	os.Exit(m.Run())
}

// perft counts the leaf nodes at the given depth, honouring the repetition rule.
func perft(p *Position, depth int, prior Hash) int64 {
	if depth == 0 {
		return 1
	}

	var moves MoveList
	p.GenerateLegalMoves(&moves)

	hash := p.Hash()
	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if !p.ApplyChecked(m, prior) {
			continue
		}
		nodes += perft(p, depth-1, hash)
		p.Undo(m)
	}
	return nodes
}

// TestPerftStartingPosition tests move generation from the empty board.
// Depth 2: a corner placement blocks 4 cells, an edge one 6, an interior one 9.
func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 25},
		{2, 4*21 + 12*19 + 9*16},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth, NoHash)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}

	if got := pos.Notation(); got != StartNotation {
		t.Errorf("perft changed the position: %s", got)
	}
}

// TestPerftDeeperIsStable checks that a deeper perft leaves the position intact.
func TestPerftDeeperIsStable(t *testing.T) {
	pos := MustParseNotation("...../.x.o./...../..x../o.... x")
	before := *pos

	nodes := perft(pos, 3, NoHash)
	if nodes == 0 {
		t.Fatal("perft(3) found no nodes")
	}
	if *pos != before {
		t.Errorf("position changed after perft:\n%s\nwant\n%s", pos, &before)
	}
	t.Logf("perft(3) = %d", nodes)
}
