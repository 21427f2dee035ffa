package engine

import (
	"context"
	"testing"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

// plain material count, enough for the search tests: mates do not
// depend on the evaluator
type materialEval struct{}

func (materialEval) Evaluate(p *chess.Position) int {
	var score = 0
	var values = [...]int{chess.Pawn: 100, chess.Knight: 400, chess.Bishop: 400,
		chess.Rook: 600, chess.Queen: 1200, chess.King: 0}
	for pt := chess.Pawn; pt <= chess.Queen; pt++ {
		score += values[pt] *
			(chess.PopCount(p.Pieces[pt]&p.Colors[chess.White]) -
				chess.PopCount(p.Pieces[pt]&p.Colors[chess.Black]))
	}
	if p.Side != chess.White {
		score = -score
	}
	return score
}

func newTestEngine(threads int) *Engine {
	var e = NewEngine(func() interface{} { return materialEval{} })
	e.Hash = 4
	e.Threads = threads
	return e
}

func searchFEN(t *testing.T, e *Engine, fen string, limits LimitsType) SearchInfo {
	t.Helper()
	var p, err = chess.NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	return e.Search(context.Background(), SearchParams{
		Positions: []chess.Position{p},
		Limits:    limits,
	})
}

func TestSearchMate(t *testing.T) {
	var tests = []struct {
		fen  string
		mate int
		best string
	}{
		{"6k1/5ppp/8/8/8/8/8/4R2K w - - 0 1", 1, "e1e8"},
		{"1r4k1/5ppp/8/8/8/8/4Q3/4R2K w - - 0 1", 2, ""},
		{"k7/2K5/8/8/8/8/8/1R6 w - - 0 1", 1, "b1b8"},
	}
	var e = newTestEngine(1)
	for _, test := range tests {
		e.Clear()
		var info = searchFEN(t, e, test.fen, LimitsType{Depth: 7})
		if info.Score.Mate != test.mate {
			t.Errorf("%v: mate = %v, want %v", test.fen, info.Score.Mate, test.mate)
		}
		if test.best != "" &&
			(len(info.MainLine) == 0 || info.MainLine[0].String() != test.best) {
			t.Errorf("%v: best = %v, want %v", test.fen, info.MainLine, test.best)
		}
	}
}

func TestSearchTinyBudgetStillMoves(t *testing.T) {
	var e = newTestEngine(1)
	var info = searchFEN(t, e, chess.InitialPositionFEN, LimitsType{Nodes: 1})
	if len(info.MainLine) == 0 {
		t.Fatal("no move returned")
	}
	assertLegalLine(t, chess.InitialPositionFEN, info.MainLine[:1])
}

func TestSearchTerminalPositions(t *testing.T) {
	var terminal = []string{
		// mated
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 0 3",
		// stalemated
		"k7/8/1Q6/8/8/8/8/7K b - - 0 1",
	}
	var e = newTestEngine(1)
	for _, fen := range terminal {
		var info = searchFEN(t, e, fen, LimitsType{Depth: 3})
		if len(info.MainLine) != 0 {
			t.Errorf("%v: got moves %v from a terminal position", fen, info.MainLine)
		}
	}
}

func TestSearchSingleReply(t *testing.T) {
	// king in check with exactly one evasion
	const fen = "k7/8/8/8/8/8/1q5P/K7 w - - 0 1"
	var e = newTestEngine(1)
	var info = searchFEN(t, e, fen, LimitsType{Depth: 3})
	if len(info.MainLine) != 1 || info.MainLine[0].String() != "a1b2" {
		t.Fatalf("forced reply not returned: %v", info.MainLine)
	}
}

func TestSearchParallelLegalLine(t *testing.T) {
	const fen = "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"
	var e = newTestEngine(4)
	var info = searchFEN(t, e, fen, LimitsType{Depth: 8})
	if info.Depth < 8 {
		t.Errorf("stopped at depth %v", info.Depth)
	}
	if len(info.MainLine) == 0 {
		t.Fatal("no move returned")
	}
	assertLegalLine(t, fen, info.MainLine)
}

// assertLegalLine plays the line from fen and fails on the first move
// that is not legal in its position.
func assertLegalLine(t *testing.T, fen string, line []chess.Move) {
	t.Helper()
	var p, err = chess.NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range line {
		var found = false
		for _, legal := range p.GenerateLegalMoves() {
			if legal == m {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("illegal move %v in line %v", m, line)
		}
		var child chess.Position
		p.MakeMove(m, &child)
		p = child
	}
}

func playLine(t *testing.T, fen string, lans []string) []chess.Position {
	t.Helper()
	var p, err = chess.NewPositionFromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	var line = []chess.Position{p}
	for _, lan := range lans {
		var cur = line[len(line)-1]
		var m = cur.ParseMoveLAN(lan)
		var child chess.Position
		if m == chess.MoveEmpty || !cur.MakeMove(m, &child) {
			t.Fatalf("bad setup move %v", lan)
		}
		line = append(line, child)
	}
	return line
}

func TestRepetitionDetection(t *testing.T) {
	var e = newTestEngine(1)
	e.Prepare()
	var th = &e.threads[0]

	// knight shuffle back to the starting position inside the search
	// stack
	var line = playLine(t, chess.InitialPositionFEN,
		[]string{"g1f3", "g8f6", "f3g1", "f6g8"})
	for i, p := range line {
		th.stack[i].position = p
	}
	if !th.isRepeat(4) {
		t.Error("stack repetition missed")
	}
	if th.isRepeat(3) {
		t.Error("false repetition")
	}

	// the same shuffle in the game history counts against the map
	e.historyKeys = getHistoryKeys(line)
	if e.historyKeys[line[0].Key] < 2 {
		t.Error("history keys missed the repeated position")
	}
}

func TestBetterLine(t *testing.T) {
	var tests = []struct {
		name               string
		candidate, current mainLine
		want               bool
	}{
		{"deeper wins", mainLine{depth: 9, score: -5}, mainLine{depth: 8, score: 50}, true},
		{"shallower loses", mainLine{depth: 7, score: 90}, mainLine{depth: 8, score: 10}, false},
		{"equal depth higher score", mainLine{depth: 8, score: 20}, mainLine{depth: 8, score: 10}, true},
		{"equal depth lower score", mainLine{depth: 8, score: 5}, mainLine{depth: 8, score: 10}, false},
		{"full tie lower worker", mainLine{depth: 8, score: 10, worker: 1}, mainLine{depth: 8, score: 10, worker: 3}, true},
		{"full tie higher worker", mainLine{depth: 8, score: 10, worker: 3}, mainLine{depth: 8, score: 10, worker: 1}, false},
		{"full tie same worker", mainLine{depth: 8, score: 10, worker: 2}, mainLine{depth: 8, score: 10, worker: 2}, false},
	}
	for _, test := range tests {
		if got := betterLine(test.candidate, test.current); got != test.want {
			t.Errorf("%v: betterLine = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestFiftyMoveDraw(t *testing.T) {
	var almostDrawn, err = chess.NewPositionFromFEN("k7/8/8/8/8/8/P7/K7 w - - 99 80")
	if err != nil {
		t.Fatal(err)
	}
	if isDraw(&almostDrawn) {
		t.Error("draw one halfmove early")
	}
	var drawn, err2 = chess.NewPositionFromFEN("k7/8/8/8/8/8/P7/K7 w - - 100 80")
	if err2 != nil {
		t.Fatal(err2)
	}
	if !isDraw(&drawn) {
		t.Error("hundredth halfmove not scored as a draw")
	}
}

func TestHistoryKeysStopAtIrreversible(t *testing.T) {
	var line = playLine(t, chess.InitialPositionFEN,
		[]string{"e2e4", "g8f6", "g1f3", "f6g8", "f3g1"})
	var keys = getHistoryKeys(line)
	// positions before the pawn push are irrelevant
	if _, ok := keys[line[0].Key]; ok {
		t.Error("keys include a position older than the last irreversible move")
	}
	if _, ok := keys[line[1].Key]; !ok {
		t.Error("keys miss the position right after the pawn push")
	}
}
