package bot

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tic-tac-toe/internal/game"
)

// Strategy selects the search algorithm
type Strategy int

const (
	// AlphaBeta searches from a fixed perspective with a max/min pair,
	// heuristic ordering at the root and alpha-beta pruning.
	AlphaBeta Strategy = iota
	// Minimax alternates sides explicitly and explores every line.
	Minimax
)

func (s Strategy) String() string {
	switch s {
	case AlphaBeta:
		return "alphabeta"
	case Minimax:
		return "minimax"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy converts a name to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "alphabeta", "alpha-beta", "ab", "":
		return AlphaBeta, nil
	case "minimax", "exhaustive":
		return Minimax, nil
	}
	return AlphaBeta, fmt.Errorf("unknown strategy %q", name)
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Options configures an Engine
type Options struct {
	Strategy Strategy
	// MaxDepth limits the number of plies below the root; 0 searches to the end.
	// Nodes at the horizon score as a draw.
	MaxDepth int
	// Workers > 1 searches root moves concurrently, each on its own board copy.
	Workers int
	// PreferFastWins pushes win and loss scores away from zero by the number
	// of empty cells left, so quicker wins and slower losses rank higher.
	PreferFastWins bool
	Weights        Weights
}

// DefaultOptions returns alpha-beta with full depth and the stock weights
func DefaultOptions() Options {
	return Options{
		Strategy:       AlphaBeta,
		Workers:        1,
		PreferFastWins: true,
		Weights:        DefaultWeights(),
	}
}

// DefaultDepth is the depth limit used for an n×n board when none is configured.
// 3×3 is searched to the end.
func DefaultDepth(n int) int {
	if n <= game.MinSize {
		return 0
	}
	return 4
}

// Result is the outcome of a search
type Result struct {
	Move     game.Move     `json:"move"`
	Found    bool          `json:"found"`
	Score    int           `json:"score"`
	Nodes    int64         `json:"nodes"`
	Strategy Strategy      `json:"strategy"`
	Elapsed  time.Duration `json:"-"`
}

// Engine picks moves by game-tree search
type Engine struct {
	opts   Options
	scorer *Scorer
}

// NewEngine creates an engine
func NewEngine(opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Engine{opts: opts, scorer: NewScorer(opts.Weights)}
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.opts
}

// Search returns the best move for piece on board.
// The board is not modified. Found is false only when no legal move exists;
// on a board that is already won every move scores alike and the first
// ordered move is returned.
func (e *Engine) Search(ctx context.Context, board *game.Board, piece game.Piece) (Result, error) {
	if !piece.IsPlayer() {
		return Result{}, fmt.Errorf("%w: cannot search for %q", game.ErrInvalidPiece, piece.String())
	}
	start := time.Now()
	root := board.Clone()

	moves := root.LegalMoves()
	if e.opts.Strategy == AlphaBeta {
		moves = e.scorer.Order(root, piece)
	}

	result := Result{Strategy: e.opts.Strategy}
	if len(moves) == 0 {
		result.Elapsed = time.Since(start)
		return result, nil
	}

	var err error
	if e.opts.Workers > 1 && len(moves) > 1 {
		result, err = e.searchParallel(ctx, root, piece, moves)
	} else {
		s := e.newSearcher(ctx, root, piece)
		result.Move, result.Score, err = s.root(moves)
		result.Nodes = s.nodes
	}
	result.Strategy = e.opts.Strategy
	result.Elapsed = time.Since(start)
	if err != nil {
		return result, err
	}
	result.Found = true

	log.Debug().
		Str("strategy", e.opts.Strategy.String()).
		Str("piece", piece.String()).
		Int("size", root.Size()).
		Int("score", result.Score).
		Int64("nodes", result.Nodes).
		Dur("elapsed", result.Elapsed).
		Msg("search-done")

	return result, nil
}

// searchParallel scores every root move on its own goroutine and board copy.
// Ties go to the earliest move so the answer matches a sequential search.
func (e *Engine) searchParallel(ctx context.Context, root *game.Board, piece game.Piece, moves []game.Move) (Result, error) {
	scores := make([]int, len(moves))
	nodes := make([]int64, len(moves))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			s := e.newSearcher(gctx, root.Clone(), piece)
			score, err := s.child(m, math.MinInt, math.MaxInt)
			scores[i] = score
			nodes[i] = s.nodes
			return err
		})
	}

	result := Result{}
	err := g.Wait()
	for _, n := range nodes {
		result.Nodes += n
	}
	if err != nil {
		return result, err
	}

	best := 0
	for i := 1; i < len(moves); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	result.Move = moves[best]
	result.Score = scores[best]
	return result, nil
}

// checkInterval is how many nodes pass between context checks, minus one
const checkInterval = 1<<10 - 1

// searcher owns one board and mutates it in place with place/undo.
// Every call restores the board before returning to its parent.
type searcher struct {
	ctx      context.Context
	board    *game.Board
	me       game.Piece
	opp      game.Piece
	strategy Strategy
	maxDepth int
	fastWins bool
	nodes    int64
}

func (e *Engine) newSearcher(ctx context.Context, board *game.Board, piece game.Piece) *searcher {
	return &searcher{
		ctx:      ctx,
		board:    board,
		me:       piece,
		opp:      piece.Opponent(),
		strategy: e.opts.Strategy,
		maxDepth: e.opts.MaxDepth,
		fastWins: e.opts.PreferFastWins,
	}
}

// root tries each move in order and keeps the first one with the highest score
func (s *searcher) root(moves []game.Move) (game.Move, int, error) {
	if err := s.visit(); err != nil {
		return game.Move{}, 0, err
	}
	alpha, beta := math.MinInt, math.MaxInt
	best := math.MinInt
	bestMove := moves[0]
	for _, m := range moves {
		score, err := s.child(m, alpha, beta)
		if err != nil {
			return bestMove, best, err
		}
		if score > best {
			best = score
			bestMove = m
		}
		if s.strategy == AlphaBeta {
			alpha = max(alpha, best)
		}
	}
	return bestMove, best, nil
}

// child plays a root move for the engine and scores the reply position
func (s *searcher) child(m game.Move, alpha, beta int) (int, error) {
	s.play(s.me, m)
	defer s.board.Undo(m)
	if s.strategy == Minimax {
		return s.minimax(s.opp, 1)
	}
	return s.minValue(1, alpha, beta)
}

// maxValue is the engine's turn
func (s *searcher) maxValue(depth, alpha, beta int) (int, error) {
	if err := s.visit(); err != nil {
		return 0, err
	}
	if v, ok := s.leaf(depth); ok {
		return v, nil
	}

	v := math.MinInt
	for _, m := range s.board.LegalMoves() {
		s.play(s.me, m)
		score, err := s.minValue(depth+1, alpha, beta)
		s.board.Undo(m)
		if err != nil {
			return 0, err
		}
		v = max(v, score)
		if v >= beta {
			break
		}
		alpha = max(alpha, v)
	}
	return v, nil
}

// minValue is the opponent's turn
func (s *searcher) minValue(depth, alpha, beta int) (int, error) {
	if err := s.visit(); err != nil {
		return 0, err
	}
	if v, ok := s.leaf(depth); ok {
		return v, nil
	}

	v := math.MaxInt
	for _, m := range s.board.LegalMoves() {
		s.play(s.opp, m)
		score, err := s.maxValue(depth+1, alpha, beta)
		s.board.Undo(m)
		if err != nil {
			return 0, err
		}
		v = min(v, score)
		if v <= alpha {
			break
		}
		beta = min(beta, v)
	}
	return v, nil
}

// minimax tracks the side to move; the engine's piece maximizes
func (s *searcher) minimax(toMove game.Piece, depth int) (int, error) {
	if err := s.visit(); err != nil {
		return 0, err
	}
	if v, ok := s.leaf(depth); ok {
		return v, nil
	}

	maximizing := toMove == s.me
	best := initScore(maximizing)
	for _, m := range s.board.LegalMoves() {
		s.play(toMove, m)
		score, err := s.minimax(toMove.Opponent(), depth+1)
		s.board.Undo(m)
		if err != nil {
			return 0, err
		}
		if (maximizing && score > best) || (!maximizing && score < best) {
			best = score
		}
	}
	return best, nil
}

// leaf scores terminal and horizon nodes
func (s *searcher) leaf(depth int) (int, bool) {
	if game.IsTerminal(s.board) {
		u := game.Utility(s.board, s.me)
		if s.fastWins && u != game.DrawScore {
			tempo := s.board.EmptyCount()
			if u > 0 {
				u += tempo
			} else {
				u -= tempo
			}
		}
		return u, true
	}
	if s.maxDepth > 0 && depth >= s.maxDepth {
		return game.DrawScore, true
	}
	return 0, false
}

func (s *searcher) play(piece game.Piece, m game.Move) {
	if !s.board.Place(piece, m.Row, m.Col) {
		// moves come from LegalMoves on the same board
		panic(fmt.Sprintf("search: %s cannot play %s", piece, m))
	}
}

func (s *searcher) visit() error {
	s.nodes++
	if s.nodes&checkInterval == 0 {
		return s.ctx.Err()
	}
	return nil
}

func initScore(maximizing bool) int {
	if maximizing {
		return math.MinInt
	}
	return math.MaxInt
}
