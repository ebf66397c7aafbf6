// Package config holds the engine and command line settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/vidro/internal/engine"
)

// Evaluator kinds
const (
	EvalStatic = "static"
	EvalLinear = "linear"
)

// Config is the JSON configuration file.
type Config struct {
	Depth              int    `json:"depth"`
	MoveTimeMs         int    `json:"move_time_ms"` // 0 searches to Depth without a clock
	Driver             string `json:"driver"`
	TTCapacity         int    `json:"tt_capacity"`
	LeafMateBudget     int    `json:"leaf_mate_budget"`
	SortDepth          int    `json:"sort_depth"`
	LMRMinDepth        int    `json:"lmr_min_depth"`
	LMRMinMoves        int    `json:"lmr_min_moves"`
	LMRReduction       int    `json:"lmr_reduction"`
	ProgressIntervalMs int    `json:"progress_interval_ms"`
	EvalCacheSize      int    `json:"eval_cache_size"`
	DisableTT          bool   `json:"disable_tt"`
	DisableLMR         bool   `json:"disable_lmr"`

	Evaluator   string `json:"evaluator"`
	WeightsName string `json:"weights_name"` // Storage key of the linear weights

	DataDir      string `json:"data_dir"` // Empty uses the platform data directory
	PersistTable bool   `json:"persist_table"`

	RandomOpening int `json:"random_opening"` // Random plies at the start of a self-play game
	MaxGameMoves  int `json:"max_game_moves"`

	LogLevel string `json:"log_level"`
}

// Default returns the production configuration.
func Default() Config {
	opts := engine.DefaultOptions()
	return Config{
		Depth:              8,
		Driver:             opts.Driver,
		TTCapacity:         opts.TTCapacity,
		LeafMateBudget:     opts.LeafMateBudget,
		SortDepth:          opts.SortDepth,
		LMRMinDepth:        opts.LMRMinDepth,
		LMRMinMoves:        opts.LMRMinMoves,
		LMRReduction:       opts.LMRReduction,
		ProgressIntervalMs: int(opts.ProgressInterval / time.Millisecond),
		EvalCacheSize:      opts.EvalCacheSize,

		Evaluator:   EvalStatic,
		WeightsName: "linear",

		RandomOpening: 2,
		MaxGameMoves:  200,

		LogLevel: "info",
	}
}

// Load reads a configuration file. Fields missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Save writes the configuration as indented JSON.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Depth < 1 || c.Depth > engine.MaxPly-2 {
		errs = append(errs, fmt.Errorf("depth %d: must be in [1, %d]", c.Depth, engine.MaxPly-2))
	}
	if c.MoveTimeMs < 0 {
		errs = append(errs, fmt.Errorf("move_time_ms %d: must not be negative", c.MoveTimeMs))
	}
	if c.Driver != engine.DriverMTDF && c.Driver != engine.DriverID {
		errs = append(errs, fmt.Errorf("driver %q: want %q or %q", c.Driver, engine.DriverMTDF, engine.DriverID))
	}
	if c.TTCapacity < 1 {
		errs = append(errs, fmt.Errorf("tt_capacity %d: must be positive", c.TTCapacity))
	}
	if c.LeafMateBudget < 0 || c.SortDepth < 0 || c.LMRMinDepth < 0 || c.LMRMinMoves < 0 || c.LMRReduction < 0 {
		errs = append(errs, errors.New("search parameters must not be negative"))
	}
	if c.EvalCacheSize < 0 {
		errs = append(errs, fmt.Errorf("eval_cache_size %d: must not be negative", c.EvalCacheSize))
	}
	if c.Evaluator != EvalStatic && c.Evaluator != EvalLinear {
		errs = append(errs, fmt.Errorf("evaluator %q: want %q or %q", c.Evaluator, EvalStatic, EvalLinear))
	}
	if c.MaxGameMoves < 1 {
		errs = append(errs, fmt.Errorf("max_game_moves %d: must be positive", c.MaxGameMoves))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// EngineOptions converts the search settings.
func (c Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Driver = c.Driver
	opts.TTCapacity = c.TTCapacity
	opts.LeafMateBudget = c.LeafMateBudget
	opts.UseLeafMate = c.LeafMateBudget > 0
	opts.SortDepth = c.SortDepth
	opts.LMRMinDepth = c.LMRMinDepth
	opts.LMRMinMoves = c.LMRMinMoves
	opts.LMRReduction = c.LMRReduction
	opts.ProgressInterval = time.Duration(c.ProgressIntervalMs) * time.Millisecond
	opts.EvalCacheSize = c.EvalCacheSize
	opts.UseTT = !c.DisableTT
	opts.UseLMR = !c.DisableLMR
	return opts
}

// MoveTime returns the per-move search time, 0 for none.
func (c Config) MoveTime() time.Duration {
	return time.Duration(c.MoveTimeMs) * time.Millisecond
}

// Level returns the configured log level, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
