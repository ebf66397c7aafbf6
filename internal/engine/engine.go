package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/vidro/internal/board"
)

// Search drivers
const (
	DriverMTDF = "mtdf"
	DriverID   = "id"
)

// Options configures the search.
type Options struct {
	TTCapacity       int           // Transposition table entries
	Driver           string        // DriverMTDF or DriverID
	LeafMateBudget   int           // Mate oracle plies at depth-zero nodes
	SortDepth        int           // Static one-ply sort at remaining depth <= SortDepth
	LMRMinDepth      int           // Minimum remaining depth for late-move reduction
	LMRMinMoves      int           // Moves searched at full depth before reducing
	LMRReduction     int           // Plies removed by a reduction
	ProgressInterval time.Duration // Observer poll period
	EvalCacheSize    int           // Evaluation cache entries, 0 disables the cache

	// Feature toggles for tests and benchmarks
	UseTT       bool
	UseLMR      bool
	UseSort     bool
	UseLeafMate bool
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		TTCapacity:       1 << 17,
		Driver:           DriverMTDF,
		LeafMateBudget:   1,
		SortDepth:        4,
		LMRMinDepth:      3,
		LMRMinMoves:      3,
		LMRReduction:     1,
		ProgressInterval: 200 * time.Millisecond,
		EvalCacheSize:    1 << 16,
		UseTT:            true,
		UseLMR:           true,
		UseSort:          true,
		UseLeafMate:      true,
	}
}

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth   int
	Score   int
	Nodes   uint64
	Elapsed time.Duration
	PV      []board.Move
	TTLen   int
}

// Result is the outcome of a search. Move is NoMove when the side to move has
// no legal move, which the caller must treat as a loss.
type Result struct {
	Move    board.Move
	Score   int
	Depth   int
	PV      []board.Move
	Nodes   uint64
	Elapsed time.Duration
	Stopped bool // Cancelled before reaching the requested depth
}

// progress is the record shared with the observer goroutine.
type progress struct {
	mu   sync.Mutex
	info SearchInfo
	seq  uint64
}

func (p *progress) publish(info SearchInfo) {
	p.mu.Lock()
	p.info = info
	p.seq++
	p.mu.Unlock()
}

func (p *progress) load() (SearchInfo, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info, p.seq
}

// Engine is the game AI engine. A single Engine runs one search at a time.
type Engine struct {
	searcher *Searcher
	tt       *TranspositionTable
	opts     Options
	log      zerolog.Logger
	progress progress

	// Callbacks, invoked from the observer goroutine
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine that scores leaves with eval.
func NewEngine(opts Options, eval Evaluator, logger zerolog.Logger) *Engine {
	tt := NewTranspositionTable(opts.TTCapacity)
	if opts.EvalCacheSize > 0 {
		eval = NewEvalCache(eval, opts.EvalCacheSize)
	}
	e := &Engine{
		tt:   tt,
		opts: opts,
		log:  logger,
	}
	e.searcher = NewSearcher(tt, eval, &e.opts)
	return e
}

// Options returns the engine settings.
func (e *Engine) Options() Options {
	return e.opts
}

// TT returns the transposition table.
func (e *Engine) TT() *TranspositionTable {
	return e.tt
}

// Clear clears the transposition table.
func (e *Engine) Clear() {
	e.tt.Clear()
}

// Search finds the best move with the configured driver.
func (e *Engine) Search(ctx context.Context, pos *board.Position, maxDepth int, prior board.Hash) (Result, error) {
	if e.opts.Driver == DriverID {
		return e.IterativeDeepening(ctx, pos, maxDepth, prior)
	}
	return e.MTDF(ctx, pos, maxDepth, prior, 0)
}

// IterativeDeepening runs full-window searches of depth 1..maxDepth and stops
// early on a proven score. ctx is checked between depths.
func (e *Engine) IterativeDeepening(ctx context.Context, pos *board.Position, maxDepth int, prior board.Hash) (Result, error) {
	return e.run(ctx, pos, maxDepth, func(ctx context.Context, start time.Time, maxDepth int) Result {
		var res Result
		for depth := 1; depth <= maxDepth; depth++ {
			if depth > 1 && ctx.Err() != nil {
				res.Stopped = true
				break
			}

			move, score := e.searcher.Search(pos, depth, prior)
			res.Move = move
			res.Score = score
			res.Depth = depth
			res.PV = e.searcher.GetPV()
			e.report(res, start)

			if move == board.NoMove || IsWinScore(score) {
				break
			}
		}
		return res
	})
}

// MTDF runs, for every depth 1..maxDepth, null-window passes around a guess
// until the bounds meet. The best move is taken from the last pass that failed
// high. The first guess is guess; later depths start from the previous score.
func (e *Engine) MTDF(ctx context.Context, pos *board.Position, maxDepth int, prior board.Hash, guess int) (Result, error) {
	return e.run(ctx, pos, maxDepth, func(ctx context.Context, start time.Time, maxDepth int) Result {
		var res Result
		g := guess
		for depth := 1; depth <= maxDepth; depth++ {
			lower, upper := -Infinity, Infinity
			depthMove := board.NoMove
			var pv []board.Move

			for lower < upper {
				if depth > 1 && ctx.Err() != nil {
					res.Stopped = true
					return res
				}
				beta := g
				if g == lower {
					beta = g + 1
				}
				var move board.Move
				move, g = e.searcher.SearchWithBounds(pos, depth, prior, beta-1, beta)
				if move == board.NoMove {
					// No legal move at the root: the score is exact.
					res.Move, res.Score, res.Depth, res.PV = board.NoMove, g, depth, nil
					e.report(res, start)
					return res
				}
				if g < beta {
					upper = g
				} else {
					lower = g
					depthMove = move
					pv = e.searcher.GetPV()
				}
				e.log.Debug().Int("depth", depth).Int("beta", beta).Int("score", g).
					Int("lower", lower).Int("upper", upper).Msg("mtdf pass")
			}

			if depthMove == board.NoMove {
				// Every pass failed low; keep the previous depth's move if any.
				depthMove = res.Move
				if depthMove == board.NoMove {
					depthMove, _ = e.searcher.Search(pos, depth, prior)
				}
				pv = []board.Move{depthMove}
			}
			res.Move = depthMove
			res.Score = g
			res.Depth = depth
			res.PV = pv
			e.report(res, start)

			if IsWinScore(g) {
				break
			}
		}
		return res
	})
}

// run validates the root, starts the search goroutine and, when OnInfo is set,
// the progress observer.
func (e *Engine) run(ctx context.Context, pos *board.Position, maxDepth int, search func(context.Context, time.Time, int) Result) (Result, error) {
	if err := pos.Validate(); err != nil {
		return Result{}, fmt.Errorf("search root: %w", err)
	}
	if maxDepth < 1 {
		return Result{}, fmt.Errorf("search depth %d: must be at least 1", maxDepth)
	}
	if maxDepth > MaxPly-2 {
		maxDepth = MaxPly - 2
	}

	e.searcher.Reset()
	e.tt.NewSearch()
	e.progress.publish(SearchInfo{})
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	var res Result

	g.Go(func() error {
		defer close(done)
		res = search(gctx, start, maxDepth)
		res.Nodes = e.searcher.Nodes()
		res.Elapsed = time.Since(start)
		return nil
	})
	if e.OnInfo != nil {
		g.Go(func() error {
			e.observe(done)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	e.log.Info().
		Str("move", res.Move.String()).
		Int("score", res.Score).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Bool("stopped", res.Stopped).
		Msg("search done")
	return res, nil
}

// report publishes a finished depth into the progress record.
func (e *Engine) report(res Result, start time.Time) {
	pv := append([]board.Move(nil), res.PV...)
	info := SearchInfo{
		Depth:   res.Depth,
		Score:   res.Score,
		Nodes:   e.searcher.Nodes(),
		Elapsed: time.Since(start),
		PV:      pv,
		TTLen:   e.tt.Len(),
	}
	e.progress.publish(info)
	e.log.Debug().Int("depth", info.Depth).Int("score", info.Score).
		Uint64("nodes", info.Nodes).Str("pv", PVString(pv)).Msg("depth done")
}

// observe polls the progress record until done is closed and forwards every
// new record to OnInfo. It only reads the record.
func (e *Engine) observe(done <-chan struct{}) {
	interval := e.opts.ProgressInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last uint64
	forward := func() {
		info, seq := e.progress.load()
		if seq != last && info.Depth > 0 {
			last = seq
			e.OnInfo(info)
		}
	}
	for {
		select {
		case <-done:
			forward()
			return
		case <-ticker.C:
			forward()
		}
	}
}

// Progress returns the latest published search info.
func (e *Engine) Progress() SearchInfo {
	info, _ := e.progress.load()
	return info
}

// Perft counts leaf nodes to the given depth, honouring the repetition rule.
func (e *Engine) Perft(pos *board.Position, depth int, prior board.Hash) uint64 {
	if depth == 0 {
		return 1
	}

	var moves board.MoveList
	pos.GenerateLegalMoves(&moves)

	hash := pos.Hash()
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		if !pos.ApplyChecked(move, prior) {
			continue
		}
		nodes += e.Perft(pos, depth-1, hash)
		pos.Undo(move)
	}
	return nodes
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score >= WinScore-MaxPly {
		return "win in " + strconv.Itoa(WinScore-score)
	}
	if score <= -WinScore+MaxPly {
		return "loss in " + strconv.Itoa(WinScore+score)
	}
	return strconv.Itoa(score)
}

// PVString joins a principal variation with spaces.
func PVString(pv []board.Move) string {
	return strings.Join(lo.Map(pv, func(m board.Move, _ int) string { return m.String() }), " ")
}
