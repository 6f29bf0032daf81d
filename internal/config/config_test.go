package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tic-tac-toe/internal/bot"
	"github.com/tic-tac-toe/internal/game"
)

var keys = []string{
	"PORT", "TTT_BOARD_SIZE", "TTT_MAX_BOARD_SIZE", "TTT_PIECE", "TTT_STRATEGY",
	"TTT_MAX_DEPTH", "TTT_WORKERS", "TTT_SEARCH_TIMEOUT", "TTT_WEIGHT_POTENTIAL",
	"TTT_WEIGHT_IMMEDIACY", "LOG_LEVEL", "LOG_PRETTY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.BoardSize != 3 || cfg.MaxBoardSize != 7 || cfg.HumanPiece != game.X {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Search.Strategy != bot.AlphaBeta || cfg.Search.MaxDepth != 0 || cfg.Search.Workers != 1 {
		t.Errorf("unexpected search defaults %+v", cfg.Search)
	}
	if cfg.SearchTimeout != 10*time.Second || cfg.LogLevel != "info" || cfg.LogPretty {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("TTT_BOARD_SIZE", "5")
	t.Setenv("TTT_PIECE", "o")
	t.Setenv("TTT_STRATEGY", "minimax")
	t.Setenv("TTT_WORKERS", "4")
	t.Setenv("TTT_SEARCH_TIMEOUT", "250ms")
	t.Setenv("TTT_WEIGHT_IMMEDIACY", "0")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.BoardSize != 5 || cfg.HumanPiece != game.O {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Search.Strategy != bot.Minimax || cfg.Search.Workers != 4 || cfg.Search.MaxDepth != bot.DefaultDepth(5) {
		t.Errorf("unexpected search options %+v", cfg.Search)
	}
	if cfg.Search.Weights.Immediacy != 0 || cfg.Search.Weights.Potential != bot.DefaultWeights().Potential {
		t.Errorf("unexpected weights %+v", cfg.Search.Weights)
	}
	if cfg.SearchTimeout != 250*time.Millisecond || !cfg.LogPretty {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"TTT_BOARD_SIZE":       "2",
		"TTT_MAX_BOARD_SIZE":   "x",
		"TTT_PIECE":            ".",
		"TTT_STRATEGY":         "random",
		"TTT_MAX_DEPTH":        "-2",
		"TTT_WORKERS":          "many",
		"TTT_SEARCH_TIMEOUT":   "soon",
		"TTT_WEIGHT_POTENTIAL": "high",
		"LOG_PRETTY":           "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%q should be rejected", key, value)
			}
		})
	}

	clearEnv(t)
	t.Setenv("TTT_BOARD_SIZE", "6")
	t.Setenv("TTT_MAX_BOARD_SIZE", "5")
	if _, err := Load(); err == nil {
		t.Error("a board larger than the limit should be rejected")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nPORT=9999\nTTT_BOARD_SIZE = 4\n\nTTT_PIECE=\"o\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("a missing file is optional, got %v", err)
	}

	if got := os.Getenv("PORT"); got != "7000" {
		t.Errorf("PORT = %q, existing variables must win", got)
	}
	if got := os.Getenv("TTT_BOARD_SIZE"); got != "4" {
		t.Errorf("TTT_BOARD_SIZE = %q, want 4", got)
	}
	if got := os.Getenv("TTT_PIECE"); got != "o" {
		t.Errorf("TTT_PIECE = %q, quotes should be stripped", got)
	}
}

func TestLoadEnvFileErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "bad.env")
	if err := os.WriteFile(path, []byte("PORT=1\nnot-a-pair\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := LoadEnvFile(path)
	if err == nil || !strings.Contains(err.Error(), ":2:") {
		t.Errorf("expected an error naming line 2, got %v", err)
	}

	// reading a directory fails after open succeeds
	if err := LoadEnvFile(dir); err == nil {
		t.Error("expected a read error for a directory")
	}
}

func TestLoadFixedDepth(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FixedDepth {
		t.Error("depth should follow the board size when TTT_MAX_DEPTH is unset")
	}

	t.Setenv("TTT_BOARD_SIZE", "5")
	t.Setenv("TTT_MAX_DEPTH", "0")
	if cfg, err = Load(); err != nil {
		t.Fatal(err)
	}
	if !cfg.FixedDepth || cfg.Search.MaxDepth != 0 {
		t.Errorf("TTT_MAX_DEPTH=0 must mean unlimited, got fixed=%v depth=%d", cfg.FixedDepth, cfg.Search.MaxDepth)
	}
}
