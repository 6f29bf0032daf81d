package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tic-tac-toe/internal/bot"
	"github.com/tic-tac-toe/internal/config"
	"github.com/tic-tac-toe/internal/game"
)

// Handlers holds API handler dependencies
type Handlers struct {
	defaults     bot.Options
	fixedDepth   bool
	maxBoardSize int
	timeout      time.Duration
}

// NewHandlers creates a new API handlers instance
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{
		defaults:     cfg.Search,
		fixedDepth:   cfg.FixedDepth,
		maxBoardSize: cfg.MaxBoardSize,
		timeout:      cfg.SearchTimeout,
	}
}

// RegisterRoutes registers API routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/move", h.SelectMove)
	r.Post("/analyze", h.Analyze)
	r.Get("/status", h.GetStatus)
}

type moveRequest struct {
	Board    []string `json:"board"`
	Piece    string   `json:"piece"`
	Strategy string   `json:"strategy,omitempty"`
	MaxDepth *int     `json:"maxDepth,omitempty"`
}

type moveResponse struct {
	RequestID string       `json:"requestId"`
	Move      *game.Move   `json:"move,omitempty"`
	Found     bool         `json:"found"`
	Score     int          `json:"score"`
	Nodes     int64        `json:"nodes"`
	Strategy  bot.Strategy `json:"strategy"`
	ElapsedMs int64        `json:"elapsedMs"`
}

type analyzeRequest struct {
	Board []string `json:"board"`
}

type analyzeResponse struct {
	Winner     game.Piece  `json:"winner"`
	Shape      game.Shape  `json:"shape"`
	Terminal   bool        `json:"terminal"`
	Full       bool        `json:"full"`
	LegalMoves []game.Move `json:"legalMoves"`
	UtilityX   *int        `json:"utilityX,omitempty"`
	UtilityO   *int        `json:"utilityO,omitempty"`
}

// SelectMove searches the posted position and returns the chosen move
func (h *Handlers) SelectMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	board, err := h.parseBoard(req.Board)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	piece, err := game.ParsePlayer(req.Piece)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := h.searchOptions(req, board.Size())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	requestID := uuid.New().String()
	result, err := bot.NewEngine(opts).Search(ctx, board, piece)
	if err != nil {
		log.Warn().Err(err).Str("requestId", requestID).Int64("nodes", result.Nodes).Msg("search aborted")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			http.Error(w, "Search did not finish in time", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}

	resp := moveResponse{
		RequestID: requestID,
		Found:     result.Found,
		Score:     result.Score,
		Nodes:     result.Nodes,
		Strategy:  result.Strategy,
		ElapsedMs: result.Elapsed.Milliseconds(),
	}
	if result.Found {
		move := result.Move
		resp.Move = &move
	}

	log.Info().
		Str("requestId", requestID).
		Str("piece", piece.String()).
		Int("size", board.Size()).
		Bool("found", result.Found).
		Int64("nodes", result.Nodes).
		Msg("move selected")

	respondJSON(w, resp)
}

// Analyze reports winner, terminal state and legal moves for a position
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	board, err := h.parseBoard(req.Board)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	winner, shape := game.WinningShape(board)
	resp := analyzeResponse{
		Winner:     winner,
		Shape:      shape,
		Terminal:   game.IsTerminal(board),
		Full:       board.IsFull(),
		LegalMoves: board.LegalMoves(),
	}
	if resp.Terminal {
		ux, uo := game.Utility(board, game.X), game.Utility(board, game.O)
		resp.UtilityX = &ux
		resp.UtilityO = &uo
	}

	respondJSON(w, resp)
}

// GetStatus returns server status
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"status":       "ok",
		"strategy":     h.defaults.Strategy,
		"workers":      h.defaults.Workers,
		"maxBoardSize": h.maxBoardSize,
		"timeoutMs":    h.timeout.Milliseconds(),
	})
}

func (h *Handlers) parseBoard(rows []string) (*game.Board, error) {
	if len(rows) > h.maxBoardSize {
		return nil, fmt.Errorf("board size %d exceeds limit %d", len(rows), h.maxBoardSize)
	}
	return game.ParseRows(rows)
}

func (h *Handlers) searchOptions(req moveRequest, size int) (bot.Options, error) {
	opts := h.defaults
	if req.Strategy != "" {
		strategy, err := bot.ParseStrategy(req.Strategy)
		if err != nil {
			return opts, err
		}
		opts.Strategy = strategy
	}

	if !h.fixedDepth {
		opts.MaxDepth = bot.DefaultDepth(size)
	}
	if req.MaxDepth != nil {
		if *req.MaxDepth < 0 {
			return opts, fmt.Errorf("maxDepth must not be negative")
		}
		opts.MaxDepth = *req.MaxDepth
	}
	return opts, nil
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
