// Package shell implements an interactive console game against the
// engine.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/zephyrchess/zephyr/pkg/chess"
	"github.com/zephyrchess/zephyr/pkg/engine"
)

const (
	whiteKing   = "♔"
	whiteQueen  = "♕"
	whiteRook   = "♖"
	whiteBishop = "♗"
	whiteKnight = "♘"
	whitePawn   = "♙"
	blackKing   = "♚"
	blackQueen  = "♛"
	blackRook   = "♜"
	blackBishop = "♝"
	blackKnight = "♞"
	blackPawn   = "♟"
)

var chessSymbols = [2][chess.King + 1]string{
	{" ", whitePawn, whiteKnight, whiteBishop, whiteRook, whiteQueen, whiteKing},
	{" ", blackPawn, blackKnight, blackBishop, blackRook, blackQueen, blackKing},
}

var (
	lightSquare = color.New(color.FgBlack, color.BgHiWhite)
	darkSquare  = color.New(color.FgBlack, color.BgHiCyan)
)

// PrintPosition draws the board from white's point of view, rank 8
// first, with checkered square backgrounds.
func PrintPosition(p *chess.Position) {
	for i := 0; i < 64; i++ {
		var sq = chess.FlipSquare(i)
		var symbol = " "
		if piece := p.PieceOn(sq); piece != chess.Empty {
			var side, _ = p.ColorOn(sq)
			symbol = chessSymbols[side][piece]
		}
		var paint = darkSquare
		if (chess.File(sq)+chess.Rank(sq))%2 == 1 {
			paint = lightSquare
		}
		if chess.File(sq) == chess.FileA {
			fmt.Printf("%v ", chess.Rank(sq)+1)
		}
		paint.Printf("%v ", symbol)
		if chess.File(sq) == chess.FileH {
			fmt.Println()
		}
	}
	fmt.Println("  a b c d e f g h")
}

// Engine is the subset of the search engine the console needs.
type Engine interface {
	Prepare()
	Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo
}

// Run plays a game between the user and the engine. The user enters
// moves in SAN or LAN; "quit" ends the game. humanWhite selects the
// user's color, moveTime bounds engine thinking in milliseconds.
func Run(eng Engine, humanWhite bool, moveTime int) {
	eng.Prepare()
	var pos, err = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	if err != nil {
		panic(err)
	}
	var positions = []chess.Position{pos}
	var scanner = bufio.NewScanner(os.Stdin)

	for {
		var current = &positions[len(positions)-1]
		PrintPosition(current)

		var legal = current.GenerateLegalMoves()
		if len(legal) == 0 {
			if current.IsCheck() {
				if current.Side == chess.White {
					fmt.Println("checkmate, black wins")
				} else {
					fmt.Println("checkmate, white wins")
				}
			} else {
				fmt.Println("stalemate")
			}
			return
		}

		var humanTurn = (current.Side == chess.White) == humanWhite
		var move chess.Move
		if humanTurn {
			move = readMove(scanner, current)
			if move == chess.MoveEmpty {
				return
			}
		} else {
			var result = eng.Search(context.Background(), engine.SearchParams{
				Positions: positions,
				Limits:    engine.LimitsType{MoveTime: moveTime},
			})
			if len(result.MainLine) == 0 {
				fmt.Println("engine resigns")
				return
			}
			move = result.MainLine[0]
			fmt.Printf("engine plays %v\n", chess.MoveToSAN(current, legal, move))
		}

		var child chess.Position
		if !current.MakeMove(move, &child) {
			fmt.Println("illegal move")
			continue
		}
		positions = append(positions, child)
	}
}

func readMove(scanner *bufio.Scanner, p *chess.Position) chess.Move {
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return chess.MoveEmpty
		}
		var input = strings.TrimSpace(scanner.Text())
		if input == "quit" {
			return chess.MoveEmpty
		}
		if move := p.ParseMoveLAN(input); move != chess.MoveEmpty {
			return move
		}
		if move := chess.ParseMoveSAN(p, input); move != chess.MoveEmpty {
			return move
		}
		fmt.Println("bad move")
	}
}
