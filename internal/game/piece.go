package game

import (
	"fmt"
	"strings"
)

// Piece identifies the occupant of a cell. None marks an empty cell.
type Piece int8

const (
	None Piece = iota
	X
	O
)

// Opponent returns the other side. None has no opponent.
func (p Piece) Opponent() Piece {
	switch p {
	case X:
		return O
	case O:
		return X
	default:
		return None
	}
}

// Symbol returns the single-character form used in board rows
func (p Piece) Symbol() byte {
	switch p {
	case X:
		return 'X'
	case O:
		return 'O'
	default:
		return '.'
	}
}

func (p Piece) String() string {
	return string(p.Symbol())
}

// IsPlayer reports whether p is one of the two sides
func (p Piece) IsPlayer() bool {
	return p == X || p == O
}

// ParsePiece converts "X", "O" or the empty marker ("." or "") to a Piece
func ParsePiece(s string) (Piece, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	case ".", "":
		return None, nil
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidPiece, s)
}

// pieceFromSymbol maps one board cell, exactly as Symbol writes it
// (X and O in either case), back to a Piece
func pieceFromSymbol(c byte) (Piece, bool) {
	switch c {
	case 'X', 'x':
		return X, true
	case 'O', 'o':
		return O, true
	case '.':
		return None, true
	}
	return None, false
}

// ParsePlayer is like ParsePiece but rejects the empty marker
func ParsePlayer(s string) (Piece, error) {
	p, err := ParsePiece(s)
	if err != nil {
		return None, err
	}
	if !p.IsPlayer() {
		return None, fmt.Errorf("%w: empty marker is not a side", ErrInvalidPiece)
	}
	return p, nil
}

// MarshalText lets pieces appear as "X"/"O"/"." in JSON
func (p Piece) MarshalText() ([]byte, error) {
	return []byte{p.Symbol()}, nil
}

func (p *Piece) UnmarshalText(text []byte) error {
	parsed, err := ParsePiece(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
