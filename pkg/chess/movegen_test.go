package chess

import (
	"math/rand"
	"sort"
	"testing"

	notnil "github.com/notnil/chess"

	"github.com/google/go-cmp/cmp"
)

func legalMoveStrings(p *Position) []string {
	var result []string
	for _, m := range p.GenerateLegalMoves() {
		result = append(result, m.String())
	}
	sort.Strings(result)
	return result
}

func referenceMoveStrings(t *testing.T, fen string) []string {
	t.Helper()
	var opt, err = notnil.FEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	var game = notnil.NewGame(opt, notnil.UseNotation(notnil.UCINotation{}))
	var result []string
	for _, m := range game.ValidMoves() {
		result = append(result, m.String())
	}
	sort.Strings(result)
	return result
}

// Cross-check the generator against an independent implementation on
// fixed positions and on random walks from the initial position.
func TestGenerateMovesCrossCheck(t *testing.T) {
	for _, fen := range testFENs {
		var p, err = NewPositionFromFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		var got = legalMoveStrings(&p)
		var want = referenceMoveStrings(t, fen)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%v (-want +got):\n%s", fen, diff)
		}
	}
}

func TestGenerateMovesRandomWalk(t *testing.T) {
	var rnd = rand.New(rand.NewSource(3))
	for game := 0; game < 20; game++ {
		var p, err = NewPositionFromFEN(InitialPositionFEN)
		if err != nil {
			t.Fatal(err)
		}
		for ply := 0; ply < 80; ply++ {
			var got = legalMoveStrings(&p)
			var want = referenceMoveStrings(t, p.String())
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("%v (-want +got):\n%s", p.String(), diff)
			}
			if len(got) == 0 {
				break
			}
			var m = p.ParseMoveLAN(got[rnd.Intn(len(got))])
			var child Position
			if !p.MakeMove(m, &child) {
				t.Fatalf("legal move rejected: %v in %v", m, p.String())
			}
			p = child
		}
	}
}

func TestGenerateCapturesSubset(t *testing.T) {
	for _, fen := range testFENs {
		var p, err = NewPositionFromFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		var all = make(map[Move]bool)
		var buffer [MaxMoves]Move
		for _, m := range GenerateMoves(buffer[:], &p) {
			all[m] = true
		}
		var captures [MaxMoves]Move
		for _, m := range GenerateCaptures(captures[:], &p, true) {
			if !all[m] {
				t.Errorf("%v: capture generator emitted %v not in full list", fen, m)
			}
		}
	}
}
