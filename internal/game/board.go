package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MinSize is the smallest playable board
const MinSize = 3

// Move is a (row, col) coordinate on the board
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
}

// Board represents an N×N tic-tac-toe grid.
// Cells are stored row-major; a Board never shares its cells with another Board.
type Board struct {
	size  int
	cells []Piece
}

// NewBoard creates an empty n×n board
func NewBoard(n int) (*Board, error) {
	if n < MinSize {
		return nil, fmt.Errorf("%w: got %d", ErrBoardTooSmall, n)
	}
	return &Board{size: n, cells: make([]Piece, n*n)}, nil
}

// Size returns N
func (b *Board) Size() int {
	return b.size
}

// Clone creates a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make([]Piece, len(b.cells))
	copy(cells, b.cells)
	return &Board{size: b.size, cells: cells}
}

// InBounds reports whether (row, col) lies on the board
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < b.size && col < b.size
}

// At returns the piece at (row, col). The coordinate must be in bounds.
func (b *Board) At(row, col int) Piece {
	return b.cells[row*b.size+col]
}

// IsEmpty reports whether (row, col) is in bounds and unoccupied
func (b *Board) IsEmpty(row, col int) bool {
	return b.InBounds(row, col) && b.At(row, col) == None
}

// Place puts piece at (row, col).
// It returns false without touching the board when the cell is out of bounds,
// already occupied, or piece is not a side.
func (b *Board) Place(piece Piece, row, col int) bool {
	if !piece.IsPlayer() || !b.IsEmpty(row, col) {
		return false
	}
	b.cells[row*b.size+col] = piece
	return true
}

// Undo clears a cell placed during search simulation
func (b *Board) Undo(m Move) {
	if b.InBounds(m.Row, m.Col) {
		b.cells[m.Row*b.size+m.Col] = None
	}
}

// Apply returns a copy of the board with m played for piece.
// The receiver is left untouched.
func (b *Board) Apply(piece Piece, m Move) (*Board, error) {
	next := b.Clone()
	if !next.Place(piece, m.Row, m.Col) {
		return nil, fmt.Errorf("%w: %s cannot play %s", ErrInvalidMove, piece, m)
	}
	return next, nil
}

// LegalMoves returns every empty cell in row-major order
func (b *Board) LegalMoves() []Move {
	moves := make([]Move, 0, len(b.cells))
	for i, cell := range b.cells {
		if cell == None {
			moves = append(moves, Move{Row: i / b.size, Col: i % b.size})
		}
	}
	return moves
}

// EmptyCount returns the number of unoccupied cells
func (b *Board) EmptyCount() int {
	count := 0
	for _, cell := range b.cells {
		if cell == None {
			count++
		}
	}
	return count
}

// IsFull checks if the board is completely full
func (b *Board) IsFull() bool {
	for _, cell := range b.cells {
		if cell == None {
			return false
		}
	}
	return true
}

// Rows converts the board to one string per row using X, O and '.'
func (b *Board) Rows() []string {
	rows := make([]string, b.size)
	buf := make([]byte, b.size)
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			buf[c] = b.At(r, c).Symbol()
		}
		rows[r] = string(buf)
	}
	return rows
}

// ParseRows rebuilds a board from its Rows form
func ParseRows(rows []string) (*Board, error) {
	b, err := NewBoard(len(rows))
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != b.size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedBoard, r, len(row), b.size)
		}
		for c := 0; c < len(row); c++ {
			p, ok := pieceFromSymbol(row[c])
			if !ok {
				return nil, fmt.Errorf("%w: row %d col %d: unknown cell %q", ErrMalformedBoard, r, c, row[c])
			}
			b.cells[r*b.size+c] = p
		}
	}
	return b, nil
}

// MarshalJSON encodes the board as its rows
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBoard, err)
	}
	parsed, err := ParseRows(rows)
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}

// String renders the grid with row and column indices for the terminal
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < b.size; c++ {
		fmt.Fprintf(&sb, "%2d", c)
	}
	sb.WriteByte('\n')
	for r := 0; r < b.size; r++ {
		fmt.Fprintf(&sb, "%2d ", r)
		for c := 0; c < b.size; c++ {
			sb.WriteByte(' ')
			sb.WriteByte(b.At(r, c).Symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
