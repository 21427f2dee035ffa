package pesto

import (
	"testing"

	"github.com/zephyrchess/zephyr/internal/testutil"
	"github.com/zephyrchess/zephyr/pkg/chess"
)

var evalTestFENs = []string{
	chess.InitialPositionFEN,
	"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
	"8/8/1B6/7b/7k/8/2B1b3/7K b - - 0 1",
	"5k2/8/8/8/8/8/8/4K2R w K - 0 1",
	"8/8/3k4/8/8/3K4/3P4/8 w - - 0 1",
	"7k/8/8/8/8/8/8/NN5K w - - 0 1",
}

func TestEvalSymmetric(t *testing.T) {
	var e = NewEvaluationService()
	for _, fen := range evalTestFENs {
		var p, err = chess.NewPositionFromFEN(fen)
		testutil.AssertNoError(t, err, fen)
		var m = p.Mirror()
		testutil.AssertEqual(t, e.Evaluate(&m), e.Evaluate(&p), fen)
	}
}

func TestEvalMaterial(t *testing.T) {
	var e = NewEvaluationService()

	var p, _ = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	var v = e.Evaluate(&p)
	if v < -50 || v > 50 {
		t.Errorf("startpos eval out of range: %v", v)
	}

	// white is a queen up
	p, _ = chess.NewPositionFromFEN("rnb1kbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1")
	if v = e.Evaluate(&p); v < 500 {
		t.Errorf("queen-up eval too small: %v", v)
	}
	var flipped = p.Mirror()
	if v2 := e.Evaluate(&flipped); v2 != v {
		t.Errorf("mirrored queen-up eval: %v != %v", v2, v)
	}
}

func TestEvalDrawishScaling(t *testing.T) {
	var e = NewEvaluationService()

	// lone minor up with no pawns cannot win
	var p, _ = chess.NewPositionFromFEN("7k/8/8/8/8/8/8/B6K w - - 0 1")
	var bare, _ = chess.NewPositionFromFEN("7k/8/8/8/8/8/8/7K w - - 0 1")
	var vMinor = e.Evaluate(&p)
	var vBare = e.Evaluate(&bare)
	if vMinor > vBare+200 {
		t.Errorf("bare minor not scaled down: %v vs %v", vMinor, vBare)
	}

	// opposite colored bishops with level pawns
	p, _ = chess.NewPositionFromFEN("6k1/5pp1/8/3b4/8/8/5PP1/3B2K1 w - - 0 1")
	if v := e.Evaluate(&p); v < -100 || v > 100 {
		t.Errorf("ocb eval out of range: %v", v)
	}
}

func TestScorePacking(t *testing.T) {
	var cases = []struct{ mg, eg int16 }{
		{0, 0}, {100, 50}, {-100, 50}, {100, -50}, {-1, -1}, {3000, -3000},
	}
	for _, c := range cases {
		var s = S(c.mg, c.eg)
		if s.Middle() != c.mg || s.End() != c.eg {
			t.Errorf("S(%v,%v) unpacked to (%v,%v)", c.mg, c.eg, s.Middle(), s.End())
		}
		var d = s + S(7, -9)
		if d.Middle() != c.mg+7 || d.End() != c.eg-9 {
			t.Errorf("addition broke packing for S(%v,%v)", c.mg, c.eg)
		}
	}
}
