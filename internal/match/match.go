// Package match plays complete games between two players and enforces the
// rules the search relies on: the repetition rule, the loss of a player
// without a move and the end of the game on a line.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/hailam/vidro/internal/board"
	"github.com/hailam/vidro/internal/engine"
	"github.com/hailam/vidro/internal/storage"
)

// End reasons
const (
	ReasonLine       = "line"        // A line was completed
	ReasonDoubleLine = "double_line" // Both players got a line with one flick
	ReasonNoMove     = "no_move"     // The mover had no legal move
	ReasonIllegal    = "illegal"     // The mover played an illegal or repeating move
	ReasonTime       = "time"        // The mover ran out of time
	ReasonCycle      = "cycle"       // A position came up again
	ReasonMoveLimit  = "move_limit"  // The game reached the move limit
)

// DefaultMaxMoves bounds the length of a game.
const DefaultMaxMoves = 200

// Player chooses moves. Move returns NoMove when it has nothing to play.
type Player interface {
	Name() string
	Move(ctx context.Context, pos *board.Position, prior board.Hash, clock engine.TimeControl, ply int) (board.Move, error)
}

// Options configures a game.
type Options struct {
	Start         *board.Position    // nil starts from the empty board
	MaxMoves      int                // 0 uses DefaultMaxMoves
	RandomOpening int                // Plies played at random before the players take over
	Seed          uint64             // Seed of the opening moves
	Clock         engine.TimeControl // Time per player; the zero value means no clock
	Logger        zerolog.Logger

	// OnMove is called after every move.
	OnMove func(ply int, m board.Move, pos *board.Position)
}

// Result is a finished game.
type Result struct {
	Winner   board.Side // 0 for a draw
	Reason   string
	Moves    []board.Move
	Final    *board.Position
	Duration time.Duration
}

// Record converts the result for storage.
func (r Result) Record(players [2]string) *storage.GameRecord {
	return &storage.GameRecord{
		Players:  players,
		Moves:    lo.Map(r.Moves, func(m board.Move, _ int) string { return m.String() }),
		Winner:   r.Winner,
		Reason:   r.Reason,
		Duration: r.Duration,
	}
}

// Run plays one game. An error is returned only when a player fails or ctx is
// cancelled; rule violations end the game with a loss for the mover.
func Run(ctx context.Context, players [2]Player, opts Options) (Result, error) {
	pos := board.NewPosition()
	if opts.Start != nil {
		if err := opts.Start.Validate(); err != nil {
			return Result{}, fmt.Errorf("start position: %w", err)
		}
		pos = opts.Start.Copy()
	}
	maxMoves := opts.MaxMoves
	if maxMoves <= 0 {
		maxMoves = DefaultMaxMoves
	}
	log := opts.Logger

	start := time.Now()
	prior := board.NoHash
	clock := opts.Clock
	seen := map[board.Hash]bool{}
	res := Result{}
	rng := board.NewPRNG(opts.Seed)

	finish := func(winner board.Side, reason string) (Result, error) {
		res.Winner = winner
		res.Reason = reason
		res.Final = pos
		res.Duration = time.Since(start)
		log.Info().Str("winner", sideName(winner)).Str("reason", reason).
			Int("plies", len(res.Moves)).Dur("elapsed", res.Duration).Msg("game over")
		return res, nil
	}

	for ply := 0; ; ply++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if pos.GameOver() {
			winner := pos.WinTurn()
			if winner == 0 {
				return finish(0, ReasonDoubleLine)
			}
			return finish(winner, ReasonLine)
		}
		mover := pos.SideToMove
		hash := pos.Hash()
		if seen[hash] {
			return finish(0, ReasonCycle)
		}
		seen[hash] = true
		if ply >= maxMoves {
			return finish(0, ReasonMoveLimit)
		}
		if !hasMove(pos, prior) {
			return finish(-mover, ReasonNoMove)
		}

		var m board.Move
		if ply < opts.RandomOpening {
			m = pos.RandomMove(rng, prior)
		} else {
			p := players[mover.Index()]
			moveStart := time.Now()
			var err error
			m, err = p.Move(ctx, pos.Copy(), prior, clock, ply)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return res, err
				}
				return res, fmt.Errorf("player %s at ply %d: %w", p.Name(), ply, err)
			}
			if !clock.Unlimited() && clock.MoveTime == 0 {
				idx := mover.Index()
				clock.Time[idx] -= time.Since(moveStart)
				if clock.Time[idx] <= 0 {
					log.Warn().Str("player", p.Name()).Int("ply", ply).Msg("flag fell")
					return finish(-mover, ReasonTime)
				}
				clock.Time[idx] += clock.Inc[idx]
			}
		}

		if err := pos.Play(m, prior); err != nil {
			log.Warn().Err(err).Str("move", m.String()).Int("ply", ply).Msg("rejected move")
			return finish(-mover, ReasonIllegal)
		}
		prior = hash
		res.Moves = append(res.Moves, m)
		log.Debug().Int("ply", ply).Str("move", m.String()).Str("position", pos.Notation()).Msg("move")
		if opts.OnMove != nil {
			opts.OnMove(ply, m, pos)
		}
	}
}

// hasMove reports whether the side to move has a move that passes the repetition rule.
func hasMove(pos *board.Position, prior board.Hash) bool {
	for _, m := range pos.LegalMoves().Slice() {
		if pos.ApplyChecked(m, prior) {
			pos.Undo(m)
			return true
		}
	}
	return false
}

func sideName(s board.Side) string {
	if s == 0 {
		return "draw"
	}
	return s.String()
}
