package bot

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tic-tac-toe/internal/game"
)

// Bot represents the AI player
type Bot struct {
	piece  game.Piece
	engine *Engine
}

// NewBot creates a new bot instance
func NewBot(piece game.Piece, opts Options) *Bot {
	return &Bot{
		piece:  piece,
		engine: NewEngine(opts),
	}
}

// Piece returns the side the bot plays
func (bot *Bot) Piece() game.Piece {
	return bot.piece
}

// Engine returns the search engine behind the bot
func (bot *Bot) Engine() *Engine {
	return bot.engine
}

// GetBestMove returns the best move for the bot's own piece
func (bot *Bot) GetBestMove(board *game.Board) (game.Move, bool, error) {
	return bot.SelectMove(board, bot.piece)
}

// SelectMove returns the chosen move for piece, or false when no legal move remains.
// It satisfies game.MoveSelector.
func (bot *Bot) SelectMove(board *game.Board, piece game.Piece) (game.Move, bool, error) {
	result, err := bot.SelectMoveContext(context.Background(), board, piece)
	if err != nil {
		log.Error().Err(err).Str("piece", piece.String()).Msg("search failed")
		return game.Move{}, false, err
	}
	return result.Move, result.Found, nil
}

// SelectMoveContext is SelectMove with cancellation and the full search result
func (bot *Bot) SelectMoveContext(ctx context.Context, board *game.Board, piece game.Piece) (Result, error) {
	result, err := bot.engine.Search(ctx, board, piece)
	if err != nil {
		return result, err
	}

	if result.Found {
		log.Info().
			Str("piece", piece.String()).
			Str("move", result.Move.String()).
			Int("score", result.Score).
			Int64("nodes", result.Nodes).
			Str("strategy", result.Strategy.String()).
			Msg("best move")
	} else {
		log.Info().Str("piece", piece.String()).Msg("no legal moves")
	}
	return result, nil
}
