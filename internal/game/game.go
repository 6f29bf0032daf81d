package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the current state of the game
type GameStatus string

const (
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// GameResult represents the outcome of a game
type GameResult string

const (
	ResultWinX    GameResult = "x_win"
	ResultWinO    GameResult = "o_win"
	ResultDraw    GameResult = "draw"
	ResultForfeit GameResult = "forfeit"
)

// MoveSelector picks a move for piece on a snapshot of the board.
// ok is false when no legal move exists; a failed search returns an error.
type MoveSelector interface {
	SelectMove(board *Board, piece Piece) (move Move, ok bool, err error)
}

// Player represents one side of the game
type Player struct {
	Name  string
	Piece Piece
	IsBot bool
}

// MoveRecord represents a single move in the game
type MoveRecord struct {
	Piece     Piece     `json:"piece"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Timestamp time.Time `json:"timestamp"`
}

// Game holds the turn-loop state of one match
type Game struct {
	ID          string
	PlayerX     *Player
	PlayerO     *Player
	Board       *Board
	CurrentTurn Piece
	Status      GameStatus
	Winner      *Player
	WinShape    Shape
	Result      GameResult
	Moves       []MoveRecord
	StartTime   time.Time
	EndTime     time.Time
	mu          sync.RWMutex
}

// NewGame creates a new game on an empty n×n board. X always moves first.
func NewGame(n int, playerX, playerO *Player) (*Game, error) {
	board, err := NewBoard(n)
	if err != nil {
		return nil, err
	}
	if playerX == nil || playerO == nil {
		return nil, errors.New("both players are required")
	}
	playerX.Piece = X
	playerO.Piece = O
	return &Game{
		ID:          uuid.New().String(),
		PlayerX:     playerX,
		PlayerO:     playerO,
		Board:       board,
		CurrentTurn: X,
		Status:      StatusPlaying,
		Moves:       make([]MoveRecord, 0, n*n),
		StartTime:   time.Now(),
	}, nil
}

// PlayerFor returns the player holding piece
func (g *Game) PlayerFor(piece Piece) *Player {
	if piece == X {
		return g.PlayerX
	}
	if piece == O {
		return g.PlayerO
	}
	return nil
}

// Turn returns the piece to move
func (g *Game) Turn() Piece {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.CurrentTurn
}

// IsOver reports whether the game has finished
func (g *Game) IsOver() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Status == StatusFinished
}

// MakeMove makes a move for the specified piece
func (g *Game) MakeMove(piece Piece, row, col int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.makeMoveLocked(piece, row, col)
}

func (g *Game) makeMoveLocked(piece Piece, row, col int) error {
	if g.Status != StatusPlaying {
		return ErrGameNotInProgress
	}
	if g.CurrentTurn != piece {
		return ErrNotYourTurn
	}
	if !g.Board.Place(piece, row, col) {
		return fmt.Errorf("%w: (%d,%d)", ErrInvalidMove, row, col)
	}

	g.Moves = append(g.Moves, MoveRecord{
		Piece:     piece,
		Row:       row,
		Col:       col,
		Timestamp: time.Now(),
	})

	if winner, shape := WinningShape(g.Board); winner != None {
		g.finish(g.PlayerFor(winner), resultFor(winner))
		g.WinShape = shape
		return nil
	}
	if g.Board.IsFull() {
		g.finish(nil, ResultDraw)
		return nil
	}

	g.CurrentTurn = piece.Opponent()
	return nil
}

// MakeBotMove asks selector for a move for the side to move and plays it.
// When no legal move remains the game is declared a draw. A selector error
// is returned and leaves the game in progress.
func (g *Game) MakeBotMove(selector MoveSelector) (Move, bool, error) {
	g.mu.RLock()
	if g.Status != StatusPlaying {
		g.mu.RUnlock()
		return Move{}, false, ErrGameNotInProgress
	}
	piece := g.CurrentTurn
	snapshot := g.Board.Clone()
	g.mu.RUnlock()

	move, ok, err := selector.SelectMove(snapshot, piece)
	if err != nil {
		return Move{}, false, fmt.Errorf("selecting move for %s: %w", piece, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !ok {
		if n := g.Board.EmptyCount(); n > 0 {
			return Move{}, false, fmt.Errorf("%w: no move chosen with %d empty cells", ErrInvalidMove, n)
		}
		if g.Status == StatusPlaying {
			g.finish(nil, ResultDraw)
		}
		return Move{}, false, nil
	}
	if err := g.makeMoveLocked(piece, move.Row, move.Col); err != nil {
		return move, true, err
	}
	return move, true, nil
}

// Forfeit ends the game with the given side conceding
func (g *Game) Forfeit(loser Piece) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Status != StatusPlaying {
		return
	}
	g.finish(g.PlayerFor(loser.Opponent()), ResultForfeit)
}

func (g *Game) finish(winner *Player, result GameResult) {
	g.Status = StatusFinished
	g.EndTime = time.Now()
	g.Winner = winner
	g.Result = result
}

func resultFor(winner Piece) GameResult {
	if winner == X {
		return ResultWinX
	}
	return ResultWinO
}

// GetDuration returns the game duration
func (g *Game) GetDuration() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.EndTime.IsZero() {
		return time.Since(g.StartTime)
	}
	return g.EndTime.Sub(g.StartTime)
}

// GetState returns the current game state for rendering and serialization
func (g *Game) GetState() *GameState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	state := &GameState{
		ID:          g.ID,
		PlayerX:     g.PlayerX.Name,
		PlayerO:     g.PlayerO.Name,
		Board:       g.Board.Rows(),
		CurrentTurn: g.CurrentTurn,
		Status:      g.Status,
		MoveCount:   len(g.Moves),
		Result:      string(g.Result),
	}
	if g.Winner != nil {
		state.Winner = g.Winner.Name
	}
	if g.WinShape != ShapeNone {
		state.WinShape = g.WinShape.String()
	}
	if len(g.Moves) > 0 {
		last := g.Moves[len(g.Moves)-1]
		state.LastMove = &Move{Row: last.Row, Col: last.Col}
	}
	return state
}

// GameState represents the serializable game state
type GameState struct {
	ID          string     `json:"id"`
	PlayerX     string     `json:"playerX"`
	PlayerO     string     `json:"playerO"`
	Board       []string   `json:"board"`
	CurrentTurn Piece      `json:"currentTurn"`
	Status      GameStatus `json:"status"`
	Winner      string     `json:"winner,omitempty"`
	WinShape    string     `json:"winShape,omitempty"`
	Result      string     `json:"result,omitempty"`
	LastMove    *Move      `json:"lastMove,omitempty"`
	MoveCount   int        `json:"moveCount"`
}
