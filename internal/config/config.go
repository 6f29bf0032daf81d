package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tic-tac-toe/internal/bot"
	"github.com/tic-tac-toe/internal/game"
)

// Config holds runtime settings read from the environment
type Config struct {
	Port          string
	BoardSize     int
	MaxBoardSize  int
	HumanPiece    game.Piece
	Search        bot.Options
	FixedDepth    bool // TTT_MAX_DEPTH was set; otherwise depth follows board size
	SearchTimeout time.Duration
	LogLevel      string
	LogPretty     bool
}

// LoadEnvFile copies KEY=VALUE pairs from a dotenv file into the environment.
// Variables that are already set win. A missing file is not an error.
func LoadEnvFile(filename string) error {
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("%s:%d: expected KEY=VALUE", filename, lineNo)
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("%s:%d: %w", filename, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	return nil
}

// Load reads and validates the configuration.
// Unset variables fall back to defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Search:        bot.DefaultOptions(),
		SearchTimeout: 10 * time.Second,
	}

	var err error
	if cfg.BoardSize, err = getInt("TTT_BOARD_SIZE", game.MinSize); err != nil {
		return nil, err
	}
	if cfg.BoardSize < game.MinSize {
		return nil, fmt.Errorf("TTT_BOARD_SIZE: %w: got %d", game.ErrBoardTooSmall, cfg.BoardSize)
	}
	if cfg.MaxBoardSize, err = getInt("TTT_MAX_BOARD_SIZE", 7); err != nil {
		return nil, err
	}
	if cfg.MaxBoardSize < cfg.BoardSize {
		return nil, fmt.Errorf("TTT_MAX_BOARD_SIZE (%d) is smaller than TTT_BOARD_SIZE (%d)", cfg.MaxBoardSize, cfg.BoardSize)
	}

	if cfg.HumanPiece, err = game.ParsePlayer(getEnv("TTT_PIECE", "X")); err != nil {
		return nil, fmt.Errorf("TTT_PIECE: %w", err)
	}

	if cfg.Search.Strategy, err = bot.ParseStrategy(os.Getenv("TTT_STRATEGY")); err != nil {
		return nil, fmt.Errorf("TTT_STRATEGY: %w", err)
	}
	cfg.FixedDepth = os.Getenv("TTT_MAX_DEPTH") != ""
	if cfg.Search.MaxDepth, err = getInt("TTT_MAX_DEPTH", bot.DefaultDepth(cfg.BoardSize)); err != nil {
		return nil, err
	}
	if cfg.Search.MaxDepth < 0 {
		return nil, fmt.Errorf("TTT_MAX_DEPTH must not be negative, got %d", cfg.Search.MaxDepth)
	}
	if cfg.Search.Workers, err = getInt("TTT_WORKERS", 1); err != nil {
		return nil, err
	}
	if cfg.Search.Weights.Potential, err = getFloat("TTT_WEIGHT_POTENTIAL", cfg.Search.Weights.Potential); err != nil {
		return nil, err
	}
	if cfg.Search.Weights.Immediacy, err = getFloat("TTT_WEIGHT_IMMEDIACY", cfg.Search.Weights.Immediacy); err != nil {
		return nil, err
	}

	if v := os.Getenv("TTT_SEARCH_TIMEOUT"); v != "" {
		if cfg.SearchTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("TTT_SEARCH_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		if cfg.LogPretty, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("LOG_PRETTY: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
