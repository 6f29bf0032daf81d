package game

// Utility values, always from one side's perspective
const (
	WinScore  = 10
	DrawScore = 0
	LossScore = -10
)

// IsTerminal reports whether the game is over: someone won or no cell is left
func IsTerminal(b *Board) bool {
	return HasWin(b) || b.IsFull()
}

// Utility scores a terminal board for perspective.
// Callers must check IsTerminal first; a non-terminal board scores as a draw.
func Utility(b *Board, perspective Piece) int {
	switch Winner(b) {
	case None:
		return DrawScore
	case perspective:
		return WinScore
	default:
		return LossScore
	}
}
