package bot

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tic-tac-toe/internal/game"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

var strategies = []Strategy{AlphaBeta, Minimax}

func newEngine(strategy Strategy, depth int) *Engine {
	opts := DefaultOptions()
	opts.Strategy = strategy
	opts.MaxDepth = depth
	return NewEngine(opts)
}

func search(t *testing.T, e *Engine, b *game.Board, piece game.Piece) Result {
	t.Helper()
	res, err := e.Search(context.Background(), b, piece)
	if err != nil {
		t.Fatalf("Search(%v): %v", piece, err)
	}
	return res
}

func TestSelfPlayDraws(t *testing.T) {
	for _, s := range strategies {
		t.Run(s.String(), func(t *testing.T) {
			e := newEngine(s, 0)
			b, _ := game.NewBoard(3)
			piece := game.X
			for !game.IsTerminal(b) {
				res := search(t, e, b, piece)
				if !res.Found {
					t.Fatalf("no move found on\n%s", b)
				}
				b.Place(piece, res.Move.Row, res.Move.Col)
				piece = piece.Opponent()
			}
			if w := game.Winner(b); w != game.None {
				t.Errorf("perfect play should draw, %v won:\n%s", w, b)
			}
		})
	}
}

func TestSearchPositions(t *testing.T) {
	cases := []struct {
		name  string
		rows  []string
		piece game.Piece
		depth int
		want  game.Move
	}{
		{"x completes top row", []string{"XX.", "OO.", "..."}, game.X, 0, game.Move{Row: 0, Col: 2}},
		{"o takes its own win", []string{"XX.", "OO.", "..."}, game.O, 0, game.Move{Row: 1, Col: 2}},
		{"x blocks", []string{"X..", "OO.", "X.."}, game.X, 0, game.Move{Row: 1, Col: 2}},
		{"4x4 square", []string{"O..O", ".XX.", ".X..", "...O"}, game.X, DefaultDepth(4), game.Move{Row: 2, Col: 2}},
	}
	for _, tc := range cases {
		for _, s := range strategies {
			t.Run(tc.name+"/"+s.String(), func(t *testing.T) {
				b := mustRows(t, tc.rows...)
				res := search(t, newEngine(s, tc.depth), b, tc.piece)
				if !res.Found || res.Move != tc.want {
					t.Errorf("got %v (found=%v), want %v", res.Move, res.Found, tc.want)
				}
				if res.Strategy != s {
					t.Errorf("result strategy %v, want %v", res.Strategy, s)
				}
			})
		}
	}
}

func TestSearchFastWinScore(t *testing.T) {
	b := mustRows(t, "XX.", "OO.", "...")
	res := search(t, newEngine(AlphaBeta, 0), b, game.O)
	// win with four empty cells left
	if res.Score != game.WinScore+4 {
		t.Errorf("score = %d, want %d", res.Score, game.WinScore+4)
	}

	opts := DefaultOptions()
	opts.PreferFastWins = false
	res = search(t, NewEngine(opts), b, game.O)
	if res.Score != game.WinScore {
		t.Errorf("score without tempo = %d, want %d", res.Score, game.WinScore)
	}
}

func TestSearchFullBoard(t *testing.T) {
	b := mustRows(t, "XOX", "XOO", "OXX")
	for _, s := range strategies {
		res := search(t, newEngine(s, 0), b, game.X)
		if res.Found {
			t.Errorf("%v found %v on a full board", s, res.Move)
		}
	}
}

func TestSearchWonBoardStillReturnsMove(t *testing.T) {
	won := mustRows(t, "XXX", "OO.", "...")
	for _, s := range strategies {
		res := search(t, newEngine(s, 0), won, game.O)
		if !res.Found {
			t.Fatalf("%v: no move on a won board with %d empty cells", s, won.EmptyCount())
		}
		// every reply scores alike, so the first ordered move is kept
		if res.Move != (game.Move{Row: 1, Col: 2}) {
			t.Errorf("%v: got %v, want (1,2)", s, res.Move)
		}
	}
}

func TestSearchRejectsEmptyPiece(t *testing.T) {
	b, _ := game.NewBoard(3)
	if _, err := newEngine(AlphaBeta, 0).Search(context.Background(), b, game.None); !errors.Is(err, game.ErrInvalidPiece) {
		t.Errorf("expected ErrInvalidPiece, got %v", err)
	}
}

func TestSearchLeavesBoardUntouched(t *testing.T) {
	b := mustRows(t, "X...", ".O..", "..X.", "....")
	before := b.Rows()
	for _, s := range strategies {
		search(t, newEngine(s, 3), b, game.O)
	}
	if !reflect.DeepEqual(before, b.Rows()) {
		t.Errorf("board changed: %v -> %v", before, b.Rows())
	}
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, _ := game.NewBoard(3)

	for _, workers := range []int{1, 4} {
		opts := DefaultOptions()
		opts.Strategy = Minimax
		opts.Workers = workers
		_, err := NewEngine(opts).Search(ctx, b, game.X)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: expected context.Canceled, got %v", workers, err)
		}
	}
}

// randomPosition plays random legal moves from an empty board and
// returns a non-terminal position with the side to move.
func randomPosition(rng *rand.Rand, n int) (*game.Board, game.Piece) {
	for {
		b, _ := game.NewBoard(n)
		piece := game.X
		plies := rng.Intn(n * n)
		for i := 0; i < plies && !game.IsTerminal(b); i++ {
			moves := b.LegalMoves()
			m := moves[rng.Intn(len(moves))]
			b.Place(piece, m.Row, m.Col)
			piece = piece.Opponent()
		}
		if !game.IsTerminal(b) {
			return b, piece
		}
	}
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ab := newEngine(AlphaBeta, 0)
	mm := newEngine(Minimax, 0)

	for i := 0; i < 60; i++ {
		b, piece := randomPosition(rng, 3)
		got := search(t, ab, b, piece)
		want := search(t, mm, b, piece)
		if got.Score != want.Score {
			t.Fatalf("alpha-beta score %d, minimax %d for %v on\n%s", got.Score, want.Score, piece, b)
		}

		// the alpha-beta choice must be worth the minimax value
		s := mm.newSearcher(context.Background(), b.Clone(), piece)
		v, err := s.child(got.Move, math.MinInt, math.MaxInt)
		if err != nil {
			t.Fatal(err)
		}
		if v != want.Score {
			t.Fatalf("alpha-beta chose %v worth %d, best is %d on\n%s", got.Move, v, want.Score, b)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, s := range strategies {
		seq := newEngine(s, 0)
		opts := seq.Options()
		opts.Workers = 4
		par := NewEngine(opts)

		for i := 0; i < 25; i++ {
			b, piece := randomPosition(rng, 3)
			a := search(t, seq, b, piece)
			p := search(t, par, b, piece)
			if a.Move != p.Move || a.Score != p.Score {
				t.Fatalf("%v: sequential %v/%d, parallel %v/%d on\n%s", s, a.Move, a.Score, p.Move, p.Score, b)
			}
		}
	}
}

// neverLoses lets the opponent try every reply and checks the engine never loses
func neverLoses(t *testing.T, e *Engine, b *game.Board, me, toMove game.Piece, seen map[string]bool) {
	key := strings.Join(b.Rows(), "/") + toMove.String()
	if seen[key] {
		return
	}
	seen[key] = true

	if game.IsTerminal(b) {
		if game.Winner(b) == me.Opponent() {
			t.Fatalf("engine playing %v lost:\n%s", me, b)
		}
		return
	}
	if toMove == me {
		res := search(t, e, b, me)
		next, err := b.Apply(me, res.Move)
		if err != nil {
			t.Fatal(err)
		}
		neverLoses(t, e, next, me, me.Opponent(), seen)
		return
	}
	for _, m := range b.LegalMoves() {
		next, _ := b.Apply(toMove, m)
		neverLoses(t, e, next, me, me, seen)
	}
}

func TestNeverLosesOn3x3(t *testing.T) {
	e := newEngine(AlphaBeta, 0)
	for _, me := range []game.Piece{game.X, game.O} {
		t.Run(me.String(), func(t *testing.T) {
			b, _ := game.NewBoard(3)
			neverLoses(t, e, b, me, game.X, map[string]bool{})
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"":           AlphaBeta,
		"alphabeta":  AlphaBeta,
		"Alpha-Beta": AlphaBeta,
		"minimax":    Minimax,
		"exhaustive": Minimax,
	} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseStrategy("mcts"); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

func TestDefaultDepth(t *testing.T) {
	if DefaultDepth(3) != 0 || DefaultDepth(4) == 0 || DefaultDepth(7) == 0 {
		t.Errorf("DefaultDepth = %d, %d, %d", DefaultDepth(3), DefaultDepth(4), DefaultDepth(7))
	}
}
