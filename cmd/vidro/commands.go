package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/vidro/internal/board"
	"github.com/hailam/vidro/internal/config"
	"github.com/hailam/vidro/internal/engine"
	"github.com/hailam/vidro/internal/eval"
	"github.com/hailam/vidro/internal/match"
	"github.com/hailam/vidro/internal/storage"
)

// stdout is where command results go; logs go to stderr.
var stdout io.Writer = os.Stdout

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

// positionArg parses the optional position argument. No argument is the empty board.
func positionArg(args []string) (*board.Position, error) {
	switch len(args) {
	case 0:
		return board.NewPosition(), nil
	case 1:
		return board.ParseNotation(args[0])
	}
	return nil, fmt.Errorf("%w: expected one position, got %d arguments", errUsage, len(args))
}

// priorArg parses the position before the opponent's last move.
func priorArg(text string) (board.Hash, error) {
	if text == "" {
		return board.NoHash, nil
	}
	pos, err := board.ParseNotation(text)
	if err != nil {
		return board.NoHash, fmt.Errorf("prior: %w", err)
	}
	return pos.Hash(), nil
}

// newEvaluator builds the configured evaluator. Linear weights come from
// storage; without stored weights the static evaluator is used.
func newEvaluator(cfg config.Config, st *storage.Storage) (engine.Evaluator, error) {
	if cfg.Evaluator != config.EvalLinear {
		return eval.NewStatic(), nil
	}
	weights, err := st.LoadWeights(cfg.WeightsName)
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn().Str("name", cfg.WeightsName).Msg("no stored weights, using the static evaluator")
		return eval.NewStatic(), nil
	}
	if err != nil {
		return nil, err
	}
	return eval.NewLinear(weights)
}

// needsStorage reports whether a search command has to open the database.
func needsStorage(cfg config.Config) bool {
	return cfg.Evaluator == config.EvalLinear || cfg.PersistTable
}

func newEngine(cfg config.Config, st *storage.Storage) (*engine.Engine, error) {
	ev, err := newEvaluator(cfg, st)
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}
	eng := engine.NewEngine(cfg.EngineOptions(), ev, log.Logger)
	if cfg.PersistTable {
		n, err := st.LoadTable(eng.TT())
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("load table: %w", err)
		default:
			log.Info().Int("entries", n).Msg("loaded transposition table")
		}
	}
	return eng, nil
}

func runSearch(ctx context.Context, cfg config.Config, args []string) error {
	fs := newFlagSet("search")
	depth := fs.Int("depth", cfg.Depth, "maximum search depth")
	moveTime := fs.Duration("movetime", cfg.MoveTime(), "time per move, 0 searches to depth")
	driver := fs.String("driver", cfg.Driver, "search driver (mtdf or id)")
	priorText := fs.String("prior", "", "position before the opponent's last move")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg.Depth = *depth
	cfg.Driver = *driver
	if err := cfg.Validate(); err != nil {
		return err
	}
	pos, err := positionArg(fs.Args())
	if err != nil {
		return err
	}
	prior, err := priorArg(*priorText)
	if err != nil {
		return err
	}

	var st *storage.Storage
	if needsStorage(cfg) {
		if st, err = openStorage(cfg); err != nil {
			return err
		}
		defer st.Close()
	}
	eng, err := newEngine(cfg, st)
	if err != nil {
		return err
	}
	eng.OnInfo = func(info engine.SearchInfo) {
		log.Info().
			Int("depth", info.Depth).
			Str("score", engine.ScoreToString(info.Score)).
			Uint64("nodes", info.Nodes).
			Int("tt", info.TTLen).
			Dur("elapsed", info.Elapsed).
			Str("pv", engine.PVString(info.PV)).
			Msg("info")
	}

	if *moveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *moveTime)
		defer cancel()
	}
	fmt.Fprintln(stdout, pos)
	res, err := eng.Search(ctx, pos, cfg.Depth, prior)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "bestmove %s score %s depth %d nodes %d time %s\n",
		res.Move, engine.ScoreToString(res.Score), res.Depth, res.Nodes, res.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(stdout, "pv %s\n", engine.PVString(res.PV))

	if cfg.PersistTable {
		if err := st.SaveTable(eng.TT()); err != nil {
			return fmt.Errorf("save table: %w", err)
		}
		log.Info().Int("entries", eng.TT().Len()).Msg("saved transposition table")
	}
	return nil
}

func runMate(cfg config.Config, args []string) error {
	fs := newFlagSet("mate")
	budget := fs.Int("budget", 5, "plies the prover may look ahead")
	maxNodes := fs.Uint64("nodes", 0, "node limit, 0 for none")
	priorText := fs.String("prior", "", "position before the opponent's last move")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: mate needs a position", errUsage)
	}
	pos, err := board.ParseNotation(fs.Arg(0))
	if err != nil {
		return err
	}
	prior, err := priorArg(*priorText)
	if err != nil {
		return err
	}

	oracle := engine.NewMateOracle()
	oracle.MaxNodes = *maxNodes
	start := time.Now()
	res := oracle.Solve(pos, *budget, prior)
	log.Debug().Uint64("nodes", oracle.Nodes()).Dur("elapsed", time.Since(start)).Msg("mate search")

	if !res.Proven() {
		fmt.Fprintf(stdout, "unknown within %d plies (%d nodes)\n", *budget, oracle.Nodes())
		return nil
	}
	winner := "draw"
	if res.Sign != 0 {
		winner = res.Sign.String()
	}
	fmt.Fprintf(stdout, "proven %s wins in %d plies: %s\n", winner, len(res.Line), engine.PVString(res.Line))
	return nil
}

func runPerft(cfg config.Config, args []string) error {
	fs := newFlagSet("perft")
	depth := fs.Int("depth", 3, "perft depth")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	pos, err := positionArg(fs.Args())
	if err != nil {
		return err
	}
	if err := pos.Validate(); err != nil {
		return err
	}
	eng := engine.NewEngine(cfg.EngineOptions(), eval.NewStatic(), log.Logger)
	for d := 1; d <= *depth; d++ {
		start := time.Now()
		nodes := eng.Perft(pos, d, board.NoHash)
		fmt.Fprintf(stdout, "perft %d: %d (%s)\n", d, nodes, time.Since(start).Round(time.Microsecond))
	}
	return nil
}

func runSelfPlay(ctx context.Context, cfg config.Config, args []string) error {
	fs := newFlagSet("selfplay")
	games := fs.Int("games", 1, "number of games")
	random := fs.Bool("random", false, "play the engine against a random player")
	record := fs.Bool("record", false, "store the games in the database")
	depth := fs.Int("depth", cfg.Depth, "maximum search depth")
	seed := fs.Uint64("seed", uint64(time.Now().UnixNano()), "seed of the random moves")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var st *storage.Storage
	if *record || needsStorage(cfg) {
		var err error
		if st, err = openStorage(cfg); err != nil {
			return err
		}
		defer st.Close()
	}

	clock := engine.TimeControl{MoveTime: cfg.MoveTime()}
	newPlayer := func(name string) (match.Player, error) {
		eng, err := newEngine(cfg, st)
		if err != nil {
			return nil, err
		}
		return match.NewEnginePlayer(name, eng, *depth), nil
	}

	score := map[board.Side]int{}
	for i := 0; i < *games; i++ {
		first, err := newPlayer("engine")
		if err != nil {
			return err
		}
		var second match.Player
		if *random {
			second = match.NewRandomPlayer(*seed + uint64(i)*7919)
		} else if second, err = newPlayer("engine"); err != nil {
			return err
		}
		players := [2]match.Player{first, second}
		if *random && i%2 == 1 {
			players[0], players[1] = players[1], players[0]
		}

		res, err := match.Run(ctx, players, match.Options{
			MaxMoves:      cfg.MaxGameMoves,
			RandomOpening: cfg.RandomOpening,
			Seed:          *seed + uint64(i),
			Clock:         clock,
			Logger:        log.Logger,
			OnMove: func(ply int, m board.Move, pos *board.Position) {
				log.Debug().Int("ply", ply).Str("move", m.String()).Str("position", pos.Notation()).Msg("move")
			},
		})
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		score[res.Winner]++
		fmt.Fprintf(stdout, "game %d: %s %s after %d plies: %s\n",
			i+1, winnerName(res.Winner, players), res.Reason, len(res.Moves), engine.PVString(res.Moves))

		if *record {
			rec := res.Record([2]string{players[0].Name(), players[1].Name()})
			if err := st.RecordGame(rec); err != nil {
				return fmt.Errorf("record game: %w", err)
			}
			log.Info().Uint64("id", rec.ID).Msg("recorded game")
		}
	}
	fmt.Fprintf(stdout, "x %d  o %d  draws %d\n", score[board.First], score[board.Second], score[0])
	return nil
}

func winnerName(s board.Side, players [2]match.Player) string {
	if s == 0 {
		return "draw by"
	}
	return fmt.Sprintf("%s (%s) wins by", s, players[s.Index()].Name())
}

func runStats(cfg config.Config, args []string) error {
	fs := newFlagSet("stats")
	limit := fs.Int("games", 10, "recent games to list")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.LoadStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "games %d  x %d  o %d  draws %d  first-player wins %.1f%%  average plies %.1f  longest %d\n",
		stats.GamesPlayed, stats.FirstWins, stats.SecondWins, stats.Draws,
		stats.FirstWinRate(), stats.AveragePlies(), stats.LongestGame)
	for reason, n := range stats.ByReason {
		fmt.Fprintf(stdout, "  %-10s %d\n", reason, n)
	}

	games, err := st.Games(*limit)
	if err != nil {
		return err
	}
	for _, g := range games {
		winner := "draw"
		if g.Winner != 0 {
			winner = g.Winner.String()
		}
		fmt.Fprintf(stdout, "#%d %s %s vs %s: %s by %s in %d plies\n",
			g.ID, g.Played.Format(time.DateTime), g.Players[0], g.Players[1], winner, g.Reason, len(g.Moves))
	}
	return nil
}
