package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hailam/vidro/internal/config"
	"github.com/hailam/vidro/internal/storage"
)

const winInOne = "...../...../...o./...../xx.x. x"

func runCommand(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()
	err := run(context.Background(), cfg, args)
	return buf.String(), err
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	t.Setenv(storage.DataDirEnv, cfg.DataDir)
	return cfg
}

func TestUsageErrors(t *testing.T) {
	cfg := testConfig(t)
	tests := [][]string{
		nil,
		{"fly"},
		{"search", "-depth"},
		{"mate"},
		{"perft", "a", "b"},
	}
	for _, args := range tests {
		if _, err := runCommand(t, cfg, args...); !errors.Is(err, errUsage) {
			t.Errorf("run(%q) = %v, want a usage error", args, err)
		}
	}
	if _, err := runCommand(t, cfg, "search", "not a position"); err == nil || errors.Is(err, errUsage) {
		t.Errorf("bad position: got %v", err)
	}
}

func TestPerftCommand(t *testing.T) {
	out, err := runCommand(t, testConfig(t), "perft", "-depth", "2")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"perft 1: 25 ", "perft 2: 456 "} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestSearchCommand(t *testing.T) {
	out, err := runCommand(t, testConfig(t), "search", "-depth", "3", winInOne)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "bestmove ") || !strings.Contains(out, "depth 1 ") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestMateCommand(t *testing.T) {
	cfg := testConfig(t)
	out, err := runCommand(t, cfg, "mate", "-budget", "3", winInOne)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "proven x wins in 1 plies") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runCommand(t, cfg, "mate", "-budget", "1", "...../...../..x../...../..... o")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "unknown") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestSelfPlayRecordsGames(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxGameMoves = 30
	out, err := runCommand(t, cfg, "selfplay", "-games", "2", "-random", "-record", "-depth", "1", "-seed", "3")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "game ") != 2 {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runCommand(t, cfg, "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "games 2 ") || strings.Count(out, "#") != 2 {
		t.Errorf("unexpected stats:\n%s", out)
	}
}
