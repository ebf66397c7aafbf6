package match

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hailam/vidro/internal/board"
	"github.com/hailam/vidro/internal/engine"
)

// EnginePlayer searches with an Engine. With a running clock the time manager
// turns the remaining time into a deadline for the search context; without a
// clock the search runs to Depth.
type EnginePlayer struct {
	name  string
	eng   *engine.Engine
	tm    *engine.TimeManager
	depth int
}

// NewEnginePlayer creates a player that searches at most depth plies.
func NewEnginePlayer(name string, eng *engine.Engine, depth int) *EnginePlayer {
	return &EnginePlayer{name: name, eng: eng, tm: engine.NewTimeManager(), depth: depth}
}

// Name returns the player name.
func (p *EnginePlayer) Name() string { return p.name }

// Engine returns the engine of the player.
func (p *EnginePlayer) Engine() *engine.Engine { return p.eng }

// Move searches the position.
func (p *EnginePlayer) Move(ctx context.Context, pos *board.Position, prior board.Hash, clock engine.TimeControl, ply int) (board.Move, error) {
	if !clock.Unlimited() {
		p.tm.Init(clock, pos.SideToMove, ply)
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, p.tm.Deadline())
		defer cancel()
	}
	res, err := p.eng.Search(ctx, pos, p.depth, prior)
	if err != nil {
		return board.NoMove, fmt.Errorf("search: %w", err)
	}
	return res.Move, nil
}

// RandomPlayer plays uniformly random legal moves.
type RandomPlayer struct {
	mu  sync.Mutex
	rng *board.PRNG
}

// NewRandomPlayer creates a random player.
func NewRandomPlayer(seed uint64) *RandomPlayer {
	return &RandomPlayer{rng: board.NewPRNG(seed)}
}

// Name returns the player name.
func (p *RandomPlayer) Name() string { return "random" }

// Move picks a random move.
func (p *RandomPlayer) Move(_ context.Context, pos *board.Position, prior board.Hash, _ engine.TimeControl, _ int) (board.Move, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return pos.RandomMove(p.rng, prior), nil
}

// ScriptedPlayer replays a fixed list of moves and then returns NoMove.
type ScriptedPlayer struct {
	moves []board.Move
	next  int
	delay time.Duration
}

// NewScriptedPlayer creates a player from move strings such as "c3" or "a1:ne".
func NewScriptedPlayer(moves ...string) (*ScriptedPlayer, error) {
	p := &ScriptedPlayer{}
	for _, s := range moves {
		m, err := board.ParseMove(s)
		if err != nil {
			return nil, err
		}
		p.moves = append(p.moves, m)
	}
	return p, nil
}

// WithDelay makes every move take at least d.
func (p *ScriptedPlayer) WithDelay(d time.Duration) *ScriptedPlayer {
	p.delay = d
	return p
}

// Name returns the player name.
func (p *ScriptedPlayer) Name() string { return "script" }

// Move returns the next scripted move.
func (p *ScriptedPlayer) Move(ctx context.Context, _ *board.Position, _ board.Hash, _ engine.TimeControl, _ int) (board.Move, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return board.NoMove, ctx.Err()
		}
	}
	if p.next >= len(p.moves) {
		return board.NoMove, nil
	}
	m := p.moves[p.next]
	p.next++
	return m, nil
}
