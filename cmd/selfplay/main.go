// Selfplay runs engine-vs-engine matches and writes the games as PGN.
// It exists to compare two evaluators or option sets over many games.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrchess/zephyr/internal/evalbuilder"
	"github.com/zephyrchess/zephyr/pkg/chess"
	"github.com/zephyrchess/zephyr/pkg/engine"
)

var (
	flgEvalA       string
	flgEvalB       string
	flgGames       int
	flgNodes       int
	flgMoveTime    int
	flgOut         string
	flgConcurrency int
)

func main() {
	flag.StringVar(&flgEvalA, "evalA", "", "evaluation function of engine A")
	flag.StringVar(&flgEvalB, "evalB", "pesto", "evaluation function of engine B")
	flag.IntVar(&flgGames, "games", 16, "number of games")
	flag.IntVar(&flgNodes, "nodes", 1_000_000, "fixed nodes per move; 0 uses movetime")
	flag.IntVar(&flgMoveTime, "movetime", 100, "time per move in ms when nodes is 0")
	flag.StringVar(&flgOut, "out", "selfplay.pgn", "output PGN file")
	flag.IntVar(&flgConcurrency, "concurrency", runtime.NumCPU(), "parallel games")
	flag.Parse()

	var logger = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)
	if err := run(context.Background(), logger); err != nil {
		logger.Fatal(err)
	}
}

type matchScore struct {
	winsA, winsB, draws int
}

func run(ctx context.Context, logger *log.Logger) error {
	var out, err = os.Create(flgOut)
	if err != nil {
		return err
	}
	defer out.Close()

	var mu sync.Mutex
	var score matchScore

	var g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(flgConcurrency)
	for gameNumber := 1; gameNumber <= flgGames; gameNumber++ {
		var gameNumber = gameNumber
		g.Go(func() error {
			var engineA = newPlayer(flgEvalA)
			var engineB = newPlayer(flgEvalB)
			var aIsWhite = gameNumber%2 == 1
			var result, err = playGame(gctx, engineA, engineB, aIsWhite)
			if err != nil {
				return fmt.Errorf("game %v: %w", gameNumber, err)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case result.points == pointsDraw:
				score.draws++
			case result.points == pointsWhite == aIsWhite:
				score.winsA++
			default:
				score.winsB++
			}
			logger.Printf("game %v: %v (%v) +%v -%v =%v",
				gameNumber, resultTag(result.points), result.comment,
				score.winsA, score.winsB, score.draws)
			return writePgn(out, result, gameNumber, aIsWhite)
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}
	fmt.Printf("A vs B: +%v -%v =%v\n", score.winsA, score.winsB, score.draws)
	return nil
}

func newPlayer(evalName string) *engine.Engine {
	var eng = engine.NewEngine(evalbuilder.Get(evalName))
	eng.Hash = 64
	eng.Prepare()
	return eng
}

const (
	pointsWhite = iota
	pointsBlack
	pointsDraw
)

type gameRecord struct {
	positions []chess.Position
	points    int
	comment   string
}

func playGame(ctx context.Context, engineA, engineB *engine.Engine, aIsWhite bool) (gameRecord, error) {
	var startingPos, err = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	if err != nil {
		return gameRecord{}, err
	}

	var positions = []chess.Position{startingPos}
	var keys = make(map[uint64]int)

	for {
		var current = &positions[len(positions)-1]
		var ml = current.GenerateLegalMoves()

		if len(ml) == 0 {
			if current.IsCheck() {
				var points = pointsWhite
				if current.Side == chess.White {
					points = pointsBlack
				}
				return gameRecord{positions: positions, points: points, comment: "checkmate"}, nil
			}
			return gameRecord{positions: positions, points: pointsDraw, comment: "stalemate"}, nil
		}
		if current.Rule50 >= 100 {
			return gameRecord{positions: positions, points: pointsDraw, comment: "50 moves"}, nil
		}
		if isLowMaterial(current) {
			return gameRecord{positions: positions, points: pointsDraw, comment: "low material"}, nil
		}
		keys[current.Key]++
		if keys[current.Key] == 3 {
			return gameRecord{positions: positions, points: pointsDraw, comment: "threefold repetition"}, nil
		}

		var eng = engineB
		if (current.Side == chess.White) == aIsWhite {
			eng = engineA
		}
		var limits engine.LimitsType
		if flgNodes != 0 {
			limits.Nodes = flgNodes
		} else {
			limits.MoveTime = flgMoveTime
		}
		var searchResult = eng.Search(ctx, engine.SearchParams{
			Positions: positions,
			Limits:    limits,
		})
		if len(searchResult.MainLine) == 0 {
			return gameRecord{}, fmt.Errorf("engine returned no move")
		}
		var bestMove = searchResult.MainLine[0]
		var child chess.Position
		if !current.MakeMove(bestMove, &child) {
			return gameRecord{}, fmt.Errorf("engine returned illegal move %v", bestMove)
		}
		positions = append(positions, child)
	}
}

func isLowMaterial(p *chess.Position) bool {
	return p.Pieces[chess.Pawn]|p.Pieces[chess.Rook]|p.Pieces[chess.Queen] == 0 &&
		!chess.MoreThanOne(p.Pieces[chess.Knight]|p.Pieces[chess.Bishop])
}

func resultTag(points int) string {
	switch points {
	case pointsWhite:
		return "1-0"
	case pointsBlack:
		return "0-1"
	}
	return "1/2-1/2"
}
