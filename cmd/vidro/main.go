// Command vidro searches, solves and self-plays positions of the 5x5 flick game.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/vidro/internal/config"
	"github.com/hailam/vidro/internal/storage"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	logLevel   = flag.String("log", "", "log level (overrides the config file)")
	dataDir    = flag.String("data", "", "data directory (overrides the config file)")
)

const usage = `usage: vidro [flags] <command> [args]

commands:
  search   [-depth n] [-movetime 500ms] [-driver mtdf|id] [-prior position] [position]
  mate     [-budget n] [-nodes n] [-prior position] <position>
  perft    [-depth n] [position]
  selfplay [-games n] [-random] [-record] [-depth n] [-seed n]
  stats    [-games n]

positions use the notation "...../...../..x../...../..... o" (top row first, then the side to move)

flags:
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(realMain())
}

// realMain returns the exit code so deferred cleanup runs before exiting.
func realMain() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Error().Err(err).Msg("could not create CPU profile")
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error().Err(err).Msg("could not start CPU profile")
			return 1
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("cpu-profiling")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			return 2
		}
		log.Error().Err(err).Msg("failed")
		return 1
	}
	return 0
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	return cfg, cfg.Validate()
}

var errUsage = errors.New("usage")

func run(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "search":
		return runSearch(ctx, cfg, rest)
	case "mate":
		return runMate(cfg, rest)
	case "perft":
		return runPerft(cfg, rest)
	case "selfplay":
		return runSelfPlay(ctx, cfg, rest)
	case "stats":
		return runStats(cfg, rest)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// openStorage opens the database in the configured data directory.
func openStorage(cfg config.Config) (*storage.Storage, error) {
	if cfg.DataDir != "" {
		os.Setenv(storage.DataDirEnv, cfg.DataDir)
	}
	return storage.NewStorage()
}
