package game

// Errors
var (
	ErrInvalidMove       = &GameError{"invalid move"}
	ErrBoardTooSmall     = &GameError{"board size must be at least 3"}
	ErrInvalidPiece      = &GameError{"invalid piece"}
	ErrMalformedBoard    = &GameError{"malformed board"}
	ErrGameNotInProgress = &GameError{"game is not in progress"}
	ErrNotYourTurn       = &GameError{"not your turn"}
)

type GameError struct {
	msg string
}

func (e *GameError) Error() string {
	return e.msg
}
