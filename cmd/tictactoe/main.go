package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tic-tac-toe/internal/bot"
	"github.com/tic-tac-toe/internal/config"
	"github.com/tic-tac-toe/internal/game"
	"github.com/tic-tac-toe/internal/logging"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	size := flag.Int("n", cfg.BoardSize, "board size (N×N, at least 3)")
	pieceFlag := flag.String("piece", cfg.HumanPiece.String(), "your piece, X or O (X moves first)")
	name := flag.String("name", "Player", "your name")
	strategyFlag := flag.String("strategy", cfg.Search.Strategy.String(), "search strategy: alphabeta or minimax")
	depth := flag.Int("depth", -1, "search depth limit, 0 for unlimited (default depends on board size)")
	workers := flag.Int("workers", cfg.Search.Workers, "goroutines used to search root moves")
	selfPlay := flag.Bool("selfplay", false, "let the engine play both sides")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.Parse()

	if err := logging.Setup(os.Stderr, *logLevel, true); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}

	human, err := game.ParsePlayer(*pieceFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid piece")
	}
	opts := cfg.Search
	if opts.Strategy, err = bot.ParseStrategy(*strategyFlag); err != nil {
		log.Fatal().Err(err).Msg("invalid strategy")
	}
	opts.Workers = *workers
	if !cfg.FixedDepth {
		opts.MaxDepth = bot.DefaultDepth(*size)
	}
	if *depth >= 0 {
		opts.MaxDepth = *depth
	}

	playerX := &game.Player{Name: "Computer", IsBot: true}
	playerO := &game.Player{Name: "Computer", IsBot: true}
	if !*selfPlay {
		if human == game.X {
			playerX = &game.Player{Name: *name}
		} else {
			playerO = &game.Player{Name: *name}
		}
	}

	g, err := game.NewGame(*size, playerX, playerO)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot start game")
	}
	log.Info().Str("game", g.ID).Int("size", *size).Str("strategy", opts.Strategy.String()).Int("depth", opts.MaxDepth).Msg("game started")

	engine := bot.NewBot(human.Opponent(), opts)
	if err := play(g, engine, bufio.NewScanner(os.Stdin), os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("game aborted")
	}
}

// play runs the turn loop until the game finishes or input ends
func play(g *game.Game, selector game.MoveSelector, in *bufio.Scanner, out io.Writer) error {
	fmt.Fprint(out, g.Board.String())
	for !g.IsOver() {
		piece := g.Turn()
		player := g.PlayerFor(piece)

		if player.IsBot {
			move, ok, err := g.MakeBotMove(selector)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "%s (%s) plays %s\n", player.Name, piece, move)
			}
		} else if err := humanTurn(g, piece, in, out); err != nil {
			return err
		}
		fmt.Fprint(out, g.Board.String())
	}

	state := g.GetState()
	switch {
	case state.Result == string(game.ResultDraw):
		fmt.Fprintln(out, "It's a draw.")
	case state.Result == string(game.ResultForfeit):
		fmt.Fprintf(out, "%s wins by forfeit.\n", state.Winner)
	default:
		fmt.Fprintf(out, "%s wins with a %s.\n", state.Winner, state.WinShape)
	}
	return nil
}

// humanTurn reads "row col" until a legal move is entered; "q" concedes
func humanTurn(g *game.Game, piece game.Piece, in *bufio.Scanner, out io.Writer) error {
	n := g.Board.Size()
	for {
		fmt.Fprintf(out, "%s to move, enter row and column (0 to %d), or q to quit: ", piece, n-1)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			return io.ErrUnexpectedEOF
		}
		line := strings.TrimSpace(in.Text())
		if strings.EqualFold(line, "q") {
			g.Forfeit(piece)
			return nil
		}

		row, col, err := parseCoords(line)
		if err != nil {
			fmt.Fprintln(out, "Invalid input. Please enter two numbers.")
			continue
		}
		if err := g.MakeMove(piece, row, col); err != nil {
			if errors.Is(err, game.ErrInvalidMove) {
				fmt.Fprintln(out, "Invalid move. Try again.")
				continue
			}
			return err
		}
		return nil
	}
}

func parseCoords(line string) (int, int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want 2 numbers, got %d", len(fields))
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}
