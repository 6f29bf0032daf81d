package game

import "strings"

// Shape is one of the winning patterns
type Shape uint8

const (
	ShapeRow Shape = 1 << iota
	ShapeColumn
	ShapeDiagonal
	ShapeSquare
	ShapePlus
)

// ShapeNone is returned when nothing is complete
const ShapeNone Shape = 0

// scanOrder is the order Winner checks shapes in
var scanOrder = []Shape{ShapeRow, ShapeColumn, ShapeDiagonal, ShapeSquare, ShapePlus}

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeRow:
		return "row"
	case ShapeColumn:
		return "column"
	case ShapeDiagonal:
		return "diagonal"
	case ShapeSquare:
		return "square"
	case ShapePlus:
		return "plus"
	}
	return "unknown"
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ShapeSet is a bitmask of shapes
type ShapeSet uint8

// Has reports whether s is in the set
func (set ShapeSet) Has(s Shape) bool {
	return set&ShapeSet(s) != 0
}

// Categories counts the distinct threat categories in the set:
// any straight line, a square, and a plus each count once.
func (set ShapeSet) Categories() int {
	n := 0
	if set.Has(ShapeRow) || set.Has(ShapeColumn) || set.Has(ShapeDiagonal) {
		n++
	}
	if set.Has(ShapeSquare) {
		n++
	}
	if set.Has(ShapePlus) {
		n++
	}
	return n
}

func (set ShapeSet) String() string {
	if set == 0 {
		return "none"
	}
	var names []string
	for _, s := range scanOrder {
		if set.Has(s) {
			names = append(names, s.String())
		}
	}
	return strings.Join(names, "|")
}

// grid is the read-only view the detector works on
type grid interface {
	Size() int
	At(row, col int) Piece
}

// overlay shows a board as if piece had been played at move
type overlay struct {
	board *Board
	move  Move
	piece Piece
}

func (o overlay) Size() int {
	return o.board.size
}

func (o overlay) At(row, col int) Piece {
	if row == o.move.Row && col == o.move.Col {
		return o.piece
	}
	return o.board.At(row, col)
}

// Winner returns the piece holding a complete shape, or None.
// Shapes are scanned row, column, diagonal, square, plus; the first match wins.
func Winner(b *Board) Piece {
	p, _ := WinningShape(b)
	return p
}

// WinningShape is Winner that also reports which shape matched
func WinningShape(b *Board) (Piece, Shape) {
	return winnerOf(b)
}

// HasWin reports whether any side holds a complete shape
func HasWin(b *Board) bool {
	return Winner(b) != None
}

// ShapesFor returns every shape piece currently completes
func ShapesFor(b *Board, piece Piece) ShapeSet {
	return shapesOf(b, piece)
}

// ShapesAfter returns the shapes piece would complete by playing move.
// The board is never modified.
func ShapesAfter(b *Board, piece Piece, move Move) ShapeSet {
	if !piece.IsPlayer() || !b.IsEmpty(move.Row, move.Col) {
		return 0
	}
	return shapesOf(overlay{board: b, move: move, piece: piece}, piece)
}

// CompletesShape reports whether playing move would give piece a win
func CompletesShape(b *Board, piece Piece, move Move) bool {
	return ShapesAfter(b, piece, move) != 0
}

func winnerOf(g grid) (Piece, Shape) {
	for _, s := range scanOrder {
		if p := scan(g, s, None); p != None {
			return p, s
		}
	}
	return None, ShapeNone
}

func shapesOf(g grid, piece Piece) ShapeSet {
	var set ShapeSet
	for _, s := range scanOrder {
		if scan(g, s, piece) != None {
			set |= ShapeSet(s)
		}
	}
	return set
}

// scan looks for shape s. want restricts the match to one piece; None accepts either side.
func scan(g grid, s Shape, want Piece) Piece {
	switch s {
	case ShapeRow:
		return rowWinner(g, want)
	case ShapeColumn:
		return columnWinner(g, want)
	case ShapeDiagonal:
		return diagonalWinner(g, want)
	case ShapeSquare:
		return squareWinner(g, want)
	case ShapePlus:
		return plusWinner(g, want)
	}
	return None
}

func accepts(p, want Piece) bool {
	return p != None && (want == None || p == want)
}

func rowWinner(g grid, want Piece) Piece {
	n := g.Size()
	for r := 0; r < n; r++ {
		if p := g.At(r, 0); accepts(p, want) && fullRow(g, r, p) {
			return p
		}
	}
	return None
}

func columnWinner(g grid, want Piece) Piece {
	n := g.Size()
	for c := 0; c < n; c++ {
		if p := g.At(0, c); accepts(p, want) && fullColumn(g, c, p) {
			return p
		}
	}
	return None
}

func diagonalWinner(g grid, want Piece) Piece {
	n := g.Size()
	if p := g.At(0, 0); accepts(p, want) {
		i := 1
		for ; i < n && g.At(i, i) == p; i++ {
		}
		if i == n {
			return p
		}
	}
	if p := g.At(0, n-1); accepts(p, want) {
		i := 1
		for ; i < n && g.At(i, n-1-i) == p; i++ {
		}
		if i == n {
			return p
		}
	}
	return None
}

// squareWinner checks every 2×2 block; only boards of size 4 and up
func squareWinner(g grid, want Piece) Piece {
	n := g.Size()
	if n < 4 {
		return None
	}
	for r := 0; r < n-1; r++ {
		for c := 0; c < n-1; c++ {
			p := g.At(r, c)
			if accepts(p, want) && g.At(r, c+1) == p && g.At(r+1, c) == p && g.At(r+1, c+1) == p {
				return p
			}
		}
	}
	return None
}

// plusWinner checks the full middle row and middle column; only boards of size 4 and up
func plusWinner(g grid, want Piece) Piece {
	n := g.Size()
	if n < 4 {
		return None
	}
	mid := n / 2
	p := g.At(mid, mid)
	if accepts(p, want) && fullRow(g, mid, p) && fullColumn(g, mid, p) {
		return p
	}
	return None
}

func fullRow(g grid, row int, p Piece) bool {
	for c := 0; c < g.Size(); c++ {
		if g.At(row, c) != p {
			return false
		}
	}
	return true
}

func fullColumn(g grid, col int, p Piece) bool {
	for r := 0; r < g.Size(); r++ {
		if g.At(r, col) != p {
			return false
		}
	}
	return true
}
