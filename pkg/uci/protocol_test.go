package uci

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zephyrchess/zephyr/internal/testutil"
	"github.com/zephyrchess/zephyr/pkg/chess"
	"github.com/zephyrchess/zephyr/pkg/engine"
)

type nullEngine struct{}

func (nullEngine) Prepare() {}
func (nullEngine) Clear()   {}
func (nullEngine) Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo {
	return engine.SearchInfo{}
}

func TestParseLimits(t *testing.T) {
	var tests = []struct {
		command string
		limits  engine.LimitsType
	}{
		{"infinite", engine.LimitsType{Infinite: true}},
		{"depth 10", engine.LimitsType{Depth: 10}},
		{"nodes 5000", engine.LimitsType{Nodes: 5000}},
		{"movetime 300", engine.LimitsType{MoveTime: 300}},
		{"wtime 60000 btime 60000 winc 1000 binc 1000",
			engine.LimitsType{WhiteTime: 60000, BlackTime: 60000, WhiteIncrement: 1000, BlackIncrement: 1000}},
		{"wtime 30000 btime 30000 movestogo 20",
			engine.LimitsType{WhiteTime: 30000, BlackTime: 30000, MovesToGo: 20}},
		{"mate 3", engine.LimitsType{Mate: 3}},
	}
	for _, test := range tests {
		var got, err = parseLimits(strings.Fields(test.command))
		testutil.AssertNoError(t, err, "%q", test.command)
		testutil.AssertEqual(t, got, test.limits, "%q", test.command)
	}
}

func TestParseLimitsRejectsGarbage(t *testing.T) {
	for _, command := range []string{
		"wtime abc",
		"depth",
		"movetime 1s",
	} {
		if _, err := parseLimits(strings.Fields(command)); err == nil {
			t.Errorf("%q: expected error", command)
		}
	}
}

func TestSearchInfoToUci(t *testing.T) {
	var p, _ = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	var move = p.ParseMoveLAN("e2e4")
	var tests = []struct {
		si   engine.SearchInfo
		want string
	}{
		{engine.SearchInfo{
			Depth:    12,
			Score:    engine.UciScore{Centipawns: 35},
			Nodes:    100000,
			Time:     time.Second,
			MainLine: []chess.Move{move},
		}, "info depth 12 score cp 35 nodes 100000 time 1000 nps 99900 pv e2e4"},
		{engine.SearchInfo{
			Depth: 7,
			Score: engine.UciScore{Mate: -2},
		}, "info depth 7 score mate -2 nodes 0 time 0 nps 0"},
	}
	for _, test := range tests {
		if got := searchInfoToUci(test.si); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
}

func TestPositionCommand(t *testing.T) {
	var protocol = New("test", "test", "dev", nullEngine{}, nil)

	if err := protocol.handle("position startpos moves e2e4 e7e5 g1f3"); err != nil {
		t.Fatal(err)
	}
	if len(protocol.positions) != 4 {
		t.Fatalf("expected 4 positions, got %v", len(protocol.positions))
	}
	var last = protocol.positions[len(protocol.positions)-1]
	if last.Side != chess.Black {
		t.Errorf("expected black to move")
	}

	if err := protocol.handle("position fen 8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	if len(protocol.positions) != 1 {
		t.Fatalf("expected 1 position, got %v", len(protocol.positions))
	}

	if err := protocol.handle("position startpos moves e2e5"); err == nil {
		t.Error("illegal move accepted")
	}
	if err := protocol.handle("position fen not a fen"); err == nil {
		t.Error("bad fen accepted")
	}
}

func TestSetOption(t *testing.T) {
	var hash = 16
	var protocol = New("test", "test", "dev", nullEngine{}, []Option{
		&IntOption{Name: "Hash", Min: 4, Max: 1024, Value: &hash},
	})

	if err := protocol.handle("setoption name Hash value 64"); err != nil {
		t.Fatal(err)
	}
	if hash != 64 {
		t.Errorf("hash = %v", hash)
	}
	if err := protocol.handle("setoption name Hash value 9999"); err == nil {
		t.Error("out of range value accepted")
	}
	if err := protocol.handle("setoption name Nonesuch value 1"); err == nil {
		t.Error("unknown option accepted")
	}
}
