package match

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/vidro/internal/board"
	"github.com/hailam/vidro/internal/engine"
	"github.com/hailam/vidro/internal/eval"
	"github.com/hailam/vidro/internal/storage"
)

func scripted(t *testing.T, moves ...string) *ScriptedPlayer {
	t.Helper()
	p, err := NewScriptedPlayer(moves...)
	if err != nil {
		t.Fatalf("NewScriptedPlayer: %v", err)
	}
	return p
}

// replay checks that the recorded moves lead from start to the final position.
func replay(t *testing.T, start *board.Position, res Result) {
	t.Helper()
	pos := board.NewPosition()
	if start != nil {
		pos = start.Copy()
	}
	prior := board.NoHash
	for i, m := range res.Moves {
		before := pos.Hash()
		if err := pos.Play(m, prior); err != nil {
			t.Fatalf("move %d (%s): %v", i, m, err)
		}
		prior = before
	}
	if pos.Notation() != res.Final.Notation() {
		t.Fatalf("replay ends in %s, result has %s", pos.Notation(), res.Final.Notation())
	}
}

func TestRandomGames(t *testing.T) {
	reasons := map[string]int{}
	for seed := uint64(1); seed <= 40; seed++ {
		players := [2]Player{NewRandomPlayer(seed), NewRandomPlayer(seed * 31)}
		res, err := Run(context.Background(), players, Options{Seed: seed})
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		reasons[res.Reason]++
		replay(t, nil, res)

		switch res.Reason {
		case ReasonLine:
			if res.Final.WinTurn() != res.Winner || res.Winner == 0 {
				t.Errorf("seed %d: winner %v but board says %v", seed, res.Winner, res.Final.WinTurn())
			}
		case ReasonCycle, ReasonMoveLimit, ReasonDoubleLine:
			if res.Winner != 0 {
				t.Errorf("seed %d: %s should be a draw", seed, res.Reason)
			}
		case ReasonNoMove:
			if res.Winner != -res.Final.SideToMove {
				t.Errorf("seed %d: stuck side %v won", seed, res.Final.SideToMove)
			}
		default:
			t.Errorf("seed %d: unexpected reason %s", seed, res.Reason)
		}
		if len(res.Moves) > DefaultMaxMoves {
			t.Errorf("seed %d: %d moves", seed, len(res.Moves))
		}
	}
	t.Logf("reasons: %v", reasons)
}

func TestCycleIsDraw(t *testing.T) {
	start := board.MustParseNotation("o..../...../...../...../x.... x")
	players := [2]Player{
		scripted(t, "a1:e", "e1:w", "a1:e"),
		scripted(t, "a5:e", "e5:w", "a5:e"),
	}
	res, err := Run(context.Background(), players, Options{Start: start})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != ReasonCycle || res.Winner != 0 || len(res.Moves) != 4 {
		t.Errorf("got %s winner %v after %d moves", res.Reason, res.Winner, len(res.Moves))
	}
	replay(t, start, res)
}

func TestIllegalMoveLoses(t *testing.T) {
	tests := []struct {
		name string
		o    string
	}{
		{"occupied", "c3"},
		{"adjacent", "d4"},
		{"not own piece", "c3:n"},
		{"garbage", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var o Player = scripted(t)
			if tc.o != "" {
				o = scripted(t, tc.o)
			}
			res, err := Run(context.Background(), [2]Player{scripted(t, "c3"), o}, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if res.Reason != ReasonIllegal || res.Winner != board.First {
				t.Errorf("got %s winner %v", res.Reason, res.Winner)
			}
			if len(res.Moves) != 1 {
				t.Errorf("rejected move was recorded: %v", res.Moves)
			}
		})
	}
}

func TestNoMoveLoses(t *testing.T) {
	start := board.MustParseNotation("...../.o.o./...../.o.o./..... x")
	res, err := Run(context.Background(), [2]Player{scripted(t), scripted(t)}, Options{Start: start})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != ReasonNoMove || res.Winner != board.Second || len(res.Moves) != 0 {
		t.Errorf("got %s winner %v after %d moves", res.Reason, res.Winner, len(res.Moves))
	}
}

func TestMoveLimit(t *testing.T) {
	players := [2]Player{NewRandomPlayer(1), NewRandomPlayer(2)}
	res, err := Run(context.Background(), players, Options{MaxMoves: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != ReasonMoveLimit || res.Winner != 0 || len(res.Moves) != 2 {
		t.Errorf("got %s winner %v after %d moves", res.Reason, res.Winner, len(res.Moves))
	}
}

func TestRandomOpening(t *testing.T) {
	res, err := Run(context.Background(), [2]Player{scripted(t), scripted(t)}, Options{RandomOpening: 4, Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	// Four random plies, then x plays nothing and loses.
	if len(res.Moves) != 4 || res.Reason != ReasonIllegal || res.Winner != board.Second {
		t.Errorf("got %s winner %v after %d moves", res.Reason, res.Winner, len(res.Moves))
	}
	replay(t, nil, res)
}

func TestEngineTakesWin(t *testing.T) {
	start := board.MustParseNotation("...../...../...o./...../xx.x. x")
	eng := engine.NewEngine(engine.DefaultOptions(), eval.NewStatic(), zerolog.Nop())
	players := [2]Player{NewEnginePlayer("engine", eng, 3), NewRandomPlayer(5)}

	var plies []int
	opts := Options{
		Start:  start,
		OnMove: func(ply int, m board.Move, pos *board.Position) { plies = append(plies, ply) },
	}
	res, err := Run(context.Background(), players, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != ReasonLine || res.Winner != board.First || len(res.Moves) != 1 {
		t.Errorf("got %s winner %v after %s", res.Reason, res.Winner, engine.PVString(res.Moves))
	}
	if len(plies) != 1 || plies[0] != 0 {
		t.Errorf("OnMove plies = %v", plies)
	}
}

func TestEngineWithClock(t *testing.T) {
	flat := engine.EvaluatorFunc(func(board.Snapshot) int { return 0 })
	eng := engine.NewEngine(engine.DefaultOptions(), flat, zerolog.Nop())
	players := [2]Player{NewEnginePlayer("engine", eng, 30), NewRandomPlayer(3)}
	clock := engine.TimeControl{MoveTime: 20 * time.Millisecond}

	res, err := Run(context.Background(), players, Options{Clock: clock, MaxMoves: 6})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason == ReasonIllegal {
		t.Errorf("engine lost by %s", res.Reason)
	}
	replay(t, nil, res)
}

func TestTimeLoss(t *testing.T) {
	slow := scripted(t, "c3").WithDelay(100 * time.Millisecond)
	clock := engine.TimeControl{Time: [2]time.Duration{20 * time.Millisecond, time.Second}}
	res, err := Run(context.Background(), [2]Player{slow, NewRandomPlayer(1)}, Options{Clock: clock})
	if err != nil {
		t.Fatal(err)
	}
	if res.Reason != ReasonTime || res.Winner != board.Second {
		t.Errorf("got %s winner %v", res.Reason, res.Winner)
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, [2]Player{NewRandomPlayer(1), NewRandomPlayer(2)}, Options{}); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestRecord(t *testing.T) {
	players := [2]Player{NewRandomPlayer(4), NewRandomPlayer(8)}
	res, err := Run(context.Background(), players, Options{})
	if err != nil {
		t.Fatal(err)
	}

	s, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	rec := res.Record([2]string{players[0].Name(), players[1].Name()})
	if err := s.RecordGame(rec); err != nil {
		t.Fatal(err)
	}
	games, err := s.Games(0)
	if err != nil || len(games) != 1 {
		t.Fatalf("Games = %d, %v", len(games), err)
	}
	if games[0].Reason != res.Reason || len(games[0].Moves) != len(res.Moves) {
		t.Errorf("record = %+v", games[0])
	}
	for i, text := range games[0].Moves {
		m, err := board.ParseMove(text)
		if err != nil || m != res.Moves[i] {
			t.Errorf("move %d: %q", i, text)
		}
	}
}
