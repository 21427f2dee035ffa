// Bench measures movegen and search speed: a perft sweep over
// reference positions and a tactic suite solved from an EPD file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrchess/zephyr/internal/evalbuilder"
	"github.com/zephyrchess/zephyr/pkg/chess"
	"github.com/zephyrchess/zephyr/pkg/engine"
)

var (
	flgEval        string
	flgEpd         string
	flgMoveTime    int
	flgDepth       int
	flgConcurrency int
)

func main() {
	flag.StringVar(&flgEval, "eval", "", "evaluation function")
	flag.StringVar(&flgEpd, "epd", "", "tactic suite in EPD format; perft only when empty")
	flag.IntVar(&flgMoveTime, "movetime", 3000, "time per test position in ms")
	flag.IntVar(&flgDepth, "depth", 6, "perft depth")
	flag.IntVar(&flgConcurrency, "concurrency", runtime.NumCPU(), "parallel test positions")
	flag.Parse()

	var logger = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)

	runPerft(flgDepth)

	if flgEpd != "" {
		if err := runTactics(context.Background(), flgEpd); err != nil {
			logger.Fatal(err)
		}
	}
}

var perftFENs = []string{
	chess.InitialPositionFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
}

func runPerft(depth int) {
	var start = time.Now()
	var total int
	for _, fen := range perftFENs {
		var p, err = chess.NewPositionFromFEN(fen)
		if err != nil {
			panic(err)
		}
		var nodes = chess.Perft(&p, depth)
		total += nodes
		fmt.Printf("perft %v %v %v\n", depth, nodes, fen)
	}
	var elapsed = time.Since(start)
	fmt.Printf("perft total %v nodes in %v (%v kNPS)\n",
		total, elapsed.Round(time.Millisecond), int64(total)/(elapsed.Milliseconds()+1))
}

type epdItem struct {
	content   string
	position  chess.Position
	bestMoves []chess.Move
}

func runTactics(ctx context.Context, path string) error {
	var tests, err = loadEpd(path)
	if err != nil {
		return err
	}
	fmt.Printf("loaded %v tests\n", len(tests))

	var start = time.Now()
	var solved, nodes int64
	var g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(flgConcurrency)
	for i := range tests {
		var test = &tests[i]
		g.Go(func() error {
			var eng = engine.NewEngine(evalbuilder.Get(flgEval))
			eng.Prepare()
			var result = eng.Search(gctx, engine.SearchParams{
				Positions: []chess.Position{test.position},
				Limits:    engine.LimitsType{MoveTime: flgMoveTime},
			})
			atomic.AddInt64(&nodes, result.Nodes)
			var passed = false
			if len(result.MainLine) != 0 {
				for _, bm := range test.bestMoves {
					if bm == result.MainLine[0] {
						passed = true
						break
					}
				}
			}
			if passed {
				atomic.AddInt64(&solved, 1)
			} else {
				fmt.Printf("failed: %v\n", test.content)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}
	var elapsed = time.Since(start)
	fmt.Printf("solved %v/%v in %v\n", solved, len(tests), elapsed.Round(time.Millisecond))
	fmt.Printf("nodes %v (%v kNPS)\n", nodes, nodes/(elapsed.Milliseconds()+1))
	return nil
}

func loadEpd(path string) ([]epdItem, error) {
	var file, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var result []epdItem
	var scanner = bufio.NewScanner(file)
	for scanner.Scan() {
		var item, ok = parseEpd(scanner.Text())
		if ok {
			result = append(result, item)
		}
	}
	return result, scanner.Err()
}

// parseEpd reads lines of the form
// "FEN bm Move1 Move2; id ...;" and resolves the best moves in SAN.
func parseEpd(line string) (epdItem, bool) {
	var bmBegin = strings.Index(line, "bm ")
	if bmBegin < 0 {
		return epdItem{}, false
	}
	var bmEnd = strings.Index(line[bmBegin:], ";")
	if bmEnd < 0 {
		return epdItem{}, false
	}
	bmEnd += bmBegin

	// EPD omits the clock fields
	var fen = strings.TrimSpace(line[:bmBegin]) + " 0 1"
	var p, err = chess.NewPositionFromFEN(fen)
	if err != nil {
		return epdItem{}, false
	}

	var bestMoves []chess.Move
	for _, san := range strings.Fields(line[bmBegin+len("bm "):bmEnd]) {
		var move = chess.ParseMoveSAN(&p, san)
		if move == chess.MoveEmpty {
			return epdItem{}, false
		}
		bestMoves = append(bestMoves, move)
	}
	if len(bestMoves) == 0 {
		return epdItem{}, false
	}
	return epdItem{content: line, position: p, bestMoves: bestMoves}, true
}
