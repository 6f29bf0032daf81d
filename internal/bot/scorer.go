package bot

import (
	"sort"

	"github.com/tic-tac-toe/internal/game"
)

// Weights tunes the move-ordering heuristic.
// Potential and Immediacy reward the same signal (threat categories held after
// the move); they are kept as separate weights so either can be switched off.
type Weights struct {
	ImmediateWin      float64 `json:"immediateWin"`
	Block             float64 `json:"block"`
	Potential         float64 `json:"potential"`
	Immediacy         float64 `json:"immediacy"`
	CornerCounter     float64 `json:"cornerCounter"`
	LateGameThreshold int     `json:"lateGameThreshold"`
	LateGameFactor    float64 `json:"lateGameFactor"`
}

// DefaultWeights returns the stock tuning
func DefaultWeights() Weights {
	return Weights{
		ImmediateWin:      1000,
		Block:             500,
		Potential:         30,
		Immediacy:         50,
		CornerCounter:     20,
		LateGameThreshold: 5,
		LateGameFactor:    1.5,
	}
}

// Scorer ranks candidate moves. It never mutates the board it is given.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score estimates how promising move is for player
func (s *Scorer) Score(board *game.Board, player game.Piece, move game.Move) float64 {
	w := s.weights
	opponent := player.Opponent()
	score := 0.0

	// Immediate win
	if game.CompletesShape(board, player, move) {
		score += w.ImmediateWin
	}

	// Block opponent's immediate win
	if game.CompletesShape(board, opponent, move) {
		score += w.Block
	}

	// Multiple end goals and immediacy
	categories := float64(game.ShapesAfter(board, player, move).Categories())
	score += categories * w.Potential
	score += categories * w.Immediacy

	if holdsCorner(board, opponent) {
		score += w.CornerCounter
	}

	// Late game: favour decisive and blocking moves
	if board.EmptyCount()-1 <= w.LateGameThreshold {
		score *= w.LateGameFactor
	}

	return score
}

// Order returns the legal moves sorted by descending score.
// Equal scores keep their row-major order.
func (s *Scorer) Order(board *game.Board, player game.Piece) []game.Move {
	moves := board.LegalMoves()
	scores := make([]float64, len(moves))
	for i, m := range moves {
		scores[i] = s.Score(board, player, m)
	}

	idx := make([]int, len(moves))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	ordered := make([]game.Move, len(moves))
	for i, j := range idx {
		ordered[i] = moves[j]
	}
	return ordered
}

func holdsCorner(board *game.Board, piece game.Piece) bool {
	last := board.Size() - 1
	corners := [4]game.Move{{Row: 0, Col: 0}, {Row: 0, Col: last}, {Row: last, Col: 0}, {Row: last, Col: last}}
	for _, c := range corners {
		if board.At(c.Row, c.Col) == piece {
			return true
		}
	}
	return false
}
