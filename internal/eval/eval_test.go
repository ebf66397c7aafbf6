package eval

import (
	"errors"
	"testing"

	"github.com/hailam/vidro/internal/board"
)

func mirror(s board.Snapshot) board.Snapshot {
	return board.Snapshot{
		Players:    [2]board.Bitboard{s.Players[1], s.Players[0]},
		Hand:       [2]uint8{s.Hand[1], s.Hand[0]},
		SideToMove: -s.SideToMove,
		Prior:      board.NoHash,
	}
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		want     int
	}{
		{"empty", board.StartNotation, 0},
		{"blocked two", "...../...../...../...../oxx.. x", semiOpenTwoScore},
		{"split", "...../...../...../...../x.x.. o", splitOneScore},
		{"their split", "...../...../o.o../...../..... x", -splitOneScore},
		{"open two", "...../...../...../...../.xx.. o", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := board.MustParseNotation(tc.notation)
			if got := Patterns(pos.Players); got != tc.want {
				t.Errorf("Patterns = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPlacement(t *testing.T) {
	if got := Placement(board.NewPosition().Players, [2]uint8{5, 5}); got != 0 {
		t.Errorf("empty board: %d, want 0", got)
	}
	// A centre piece for x: 12 for the cell, placements equal for both sides.
	pos := board.MustParseNotation("...../...../..x../...../..... o")
	if got := Placement(pos.Players, pos.Hand); got != 12 {
		t.Errorf("centre piece: %d, want 12", got)
	}
	// Only o can still place.
	pos.Hand[0] = 0
	targets := (board.FieldMask &^ pos.Occupied().Spread()).PopCount()
	if got := Placement(pos.Players, pos.Hand); got != 12-targets*placeMobilityScore {
		t.Errorf("empty hand: %d, want %d", got, 12-targets*placeMobilityScore)
	}
}

func TestReach(t *testing.T) {
	// x just moved and could complete a1-c1 by flicking d1 west.
	pos := board.MustParseNotation("...../...../...o./...../xx.x. o")
	if got, want := Reach(pos, board.NoHash), 4*reachWeight; got != want {
		t.Errorf("Reach = %d, want %d", got, want)
	}
	if pos.SideToMove != board.Second {
		t.Error("side to move not restored")
	}
	if got := Reach(board.NewPosition(), board.NoHash); got != 0 {
		t.Errorf("empty board: %d", got)
	}
}

func TestStaticSymmetry(t *testing.T) {
	r := board.NewPRNG(7)
	ev := NewStatic()
	for i := 0; i < 200; i++ {
		pos, _ := board.RandomPosition(r, r.Intn(16))
		s := pos.Snapshot(board.NoHash)
		a, b := ev.Evaluate(s), ev.Evaluate(mirror(s))
		if a != -b {
			t.Fatalf("%s: %d, mirrored %d", pos.Notation(), a, b)
		}
	}
}

func TestStaticPrefersCentre(t *testing.T) {
	ev := NewStatic()
	centre := board.MustParseNotation("...../...../..x../...../..... o")
	edge := board.MustParseNotation("...../...../...../...../.x... o")
	if ev.Evaluate(centre.Snapshot(board.NoHash)) <= ev.Evaluate(edge.Snapshot(board.NoHash)) {
		t.Error("centre placement should score higher than an edge cell")
	}
}

func TestNewLinear(t *testing.T) {
	if NumFeatures != 2514 {
		t.Errorf("NumFeatures = %d", NumFeatures)
	}
	_, err := NewLinear(make([]float32, 10))
	if !errors.Is(err, ErrNoWeights) {
		t.Errorf("short vector: err = %v", err)
	}
	if _, err := NewLinear(make([]float32, NumFeatures)); err != nil {
		t.Errorf("NewLinear: %v", err)
	}
}

func TestFeatures(t *testing.T) {
	got := Features(board.NewPosition().Snapshot(board.NoHash), nil)
	want := []int{turnFeature, biasFeature, handFeatures + 5, handFeatures + 6 + 5}
	if len(got) != len(want) {
		t.Fatalf("Features = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("feature %d = %d, want %d", i, got[i], want[i])
		}
	}

	r := board.NewPRNG(11)
	for i := 0; i < 100; i++ {
		pos, _ := board.RandomPosition(r, r.Intn(20))
		pieces := pos.Occupied().PopCount()
		fs := Features(pos.Snapshot(board.NoHash), nil)

		extra := 3
		if pos.SideToMove == board.First {
			extra = 4
		}
		if len(fs) != pieces*(pieces+1)/2+extra {
			t.Fatalf("%s: %d features for %d pieces", pos.Notation(), len(fs), pieces)
		}
		seen := make(map[int]bool)
		for _, f := range fs {
			if f < 0 || f >= NumFeatures || seen[f] {
				t.Fatalf("%s: bad or repeated feature %d", pos.Notation(), f)
			}
			seen[f] = true
		}
	}
}

func TestLinearEvaluate(t *testing.T) {
	w := make([]float32, NumFeatures)
	w[biasFeature] = 0.5
	l, err := NewLinear(w)
	if err != nil {
		t.Fatal(err)
	}

	first := board.NewPosition()
	second := board.MustParseNotation("...../...../..x../...../..... o")
	if got := l.Evaluate(first.Snapshot(board.NoHash)); got != 500 {
		t.Errorf("first to move: %d, want 500", got)
	}
	if got := l.Evaluate(second.Snapshot(board.NoHash)); got != -500 {
		t.Errorf("second to move: %d, want -500", got)
	}
	if p := l.WinProbability(first.Snapshot(board.NoHash)); p <= 0.5 || p >= 1 {
		t.Errorf("WinProbability = %v", p)
	}

	w[biasFeature] = 100
	if got := l.Evaluate(first.Snapshot(board.NoHash)); got != 29000 {
		t.Errorf("large logit not clamped: %d", got)
	}
}
