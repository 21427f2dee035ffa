// Package uci speaks the universal chess interface over stdin/stdout.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/zephyrchess/zephyr/pkg/chess"
	"github.com/zephyrchess/zephyr/pkg/engine"
)

type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo
}

type Protocol struct {
	name         string
	author       string
	version      string
	options      []Option
	engine       Engine
	handlers     map[string]func(args []string) error
	positions    []chess.Position
	thinking     bool
	engineOutput chan engine.SearchInfo
	cancel       context.CancelFunc
}

func New(name, author, version string, eng Engine, options []Option) *Protocol {
	var initPosition, err = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	if err != nil {
		panic(err)
	}
	var uci = &Protocol{
		name:      name,
		author:    author,
		version:   version,
		engine:    eng,
		options:   options,
		positions: []chess.Position{initPosition},
	}
	uci.handlers = map[string]func(args []string) error{
		"uci":        uci.uciCommand,
		"setoption":  uci.setOptionCommand,
		"isready":    uci.isReadyCommand,
		"position":   uci.positionCommand,
		"go":         uci.goCommand,
		"ucinewgame": uci.uciNewGameCommand,
		"stop":       uci.stopCommand,
		"ponderhit":  uci.ponderhitCommand,
	}
	return uci
}

// Run processes commands until "quit" or the end of stdin. Search
// output is interleaved on the same goroutine so the protocol state
// needs no locking.
func (uci *Protocol) Run(logger *log.Logger) {
	var commands = make(chan string)

	go func() {
		defer close(commands)
		readCommands(commands)
	}()

	var searchResult engine.SearchInfo
	for {
		select {
		case si, ok := <-uci.engineOutput:
			if ok {
				fmt.Println(searchInfoToUci(si))
				searchResult = si
			} else {
				if len(searchResult.MainLine) != 0 {
					fmt.Printf("bestmove %v\n", searchResult.MainLine[0])
				}
				uci.thinking = false
				uci.cancel = nil
				uci.engineOutput = nil
				searchResult = engine.SearchInfo{}
			}
		case commandLine, ok := <-commands:
			if !ok {
				return
			}
			var err = uci.handle(commandLine)
			if err != nil {
				logger.Println(err)
			}
		}
	}
}

func readCommands(commands chan<- string) {
	var scanner = bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var commandLine = scanner.Text()
		if commandLine == "quit" {
			return
		}
		if commandLine != "" {
			commands <- commandLine
		}
	}
}

func (uci *Protocol) handle(commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}

	if uci.thinking && fields[0] != "stop" {
		return errors.New("search still run")
	}

	var h, ok = uci.handlers[fields[0]]
	if !ok {
		return fmt.Errorf("command not found %v", fields[0])
	}
	return h(fields[1:])
}

func (uci *Protocol) uciCommand(args []string) error {
	fmt.Printf("id name %s %s\n", uci.name, uci.version)
	fmt.Printf("id author %s\n", uci.author)
	for _, option := range uci.options {
		fmt.Println(option.UciString())
	}
	fmt.Println("uciok")
	return nil
}

// setOptionCommand accepts "name <id> value <x>" where the id may span
// several tokens, as the protocol allows.
func (uci *Protocol) setOptionCommand(args []string) error {
	if len(args) == 0 || args[0] != "name" {
		return errors.New("invalid setoption arguments")
	}
	var valueIndex = findIndexString(args, "value")
	if valueIndex < 2 || valueIndex+1 >= len(args) {
		return errors.New("invalid setoption arguments")
	}
	var name = strings.Join(args[1:valueIndex], " ")
	var value = strings.Join(args[valueIndex+1:], " ")
	for _, option := range uci.options {
		if strings.EqualFold(option.UciName(), name) {
			return option.Set(value)
		}
	}
	return fmt.Errorf("unhandled option %v", name)
}

func (uci *Protocol) isReadyCommand(args []string) error {
	uci.engine.Prepare()
	fmt.Println("readyok")
	return nil
}

func (uci *Protocol) positionCommand(args []string) error {
	if len(args) == 0 {
		return errors.New("invalid position arguments")
	}
	var fen string
	var movesIndex = findIndexString(args, "moves")
	switch args[0] {
	case "startpos":
		fen = chess.InitialPositionFEN
	case "fen":
		if movesIndex == -1 {
			fen = strings.Join(args[1:], " ")
		} else {
			fen = strings.Join(args[1:movesIndex], " ")
		}
	default:
		return errors.New("unknown position command")
	}
	var p, err = chess.NewPositionFromFEN(fen)
	if err != nil {
		return err
	}
	var positions = []chess.Position{p}
	if movesIndex >= 0 && movesIndex+1 < len(args) {
		for _, smove := range args[movesIndex+1:] {
			var last = &positions[len(positions)-1]
			var move = last.ParseMoveLAN(smove)
			if move == chess.MoveEmpty {
				return fmt.Errorf("parse move failed %v", smove)
			}
			var child chess.Position
			if !last.MakeMove(move, &child) {
				return fmt.Errorf("illegal move %v", smove)
			}
			positions = append(positions, child)
		}
	}
	uci.positions = positions
	return nil
}

func (uci *Protocol) goCommand(args []string) error {
	var limits, err = parseLimits(args)
	if err != nil {
		return err
	}
	var ctx, cancel = context.WithCancel(context.Background())
	uci.cancel = cancel
	uci.thinking = true
	uci.engineOutput = make(chan engine.SearchInfo, 3)
	var output = uci.engineOutput
	go func() {
		var searchResult = uci.engine.Search(ctx, engine.SearchParams{
			Positions: uci.positions,
			Limits:    limits,
			Progress: func(si engine.SearchInfo) {
				select {
				case output <- si:
				default:
				}
			},
		})
		output <- searchResult
		close(output)
	}()
	return nil
}

func (uci *Protocol) uciNewGameCommand(args []string) error {
	uci.engine.Clear()
	return nil
}

// A stray stop after the search already returned is not an error.
func (uci *Protocol) stopCommand(args []string) error {
	if uci.cancel != nil {
		uci.cancel()
	}
	return nil
}

func (uci *Protocol) ponderhitCommand(args []string) error {
	return errors.New("not implemented")
}

func searchInfoToUci(si engine.SearchInfo) string {
	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "info depth %v", si.Depth)
	if si.Score.Mate != 0 {
		fmt.Fprintf(sb, " score mate %v", si.Score.Mate)
	} else {
		fmt.Fprintf(sb, " score cp %v", si.Score.Centipawns)
	}
	var timeMs = si.Time.Milliseconds()
	var nps = si.Nodes * 1000 / (timeMs + 1)
	fmt.Fprintf(sb, " nodes %v time %v nps %v", si.Nodes, timeMs, nps)
	if len(si.MainLine) != 0 {
		fmt.Fprintf(sb, " pv")
		for _, move := range si.MainLine {
			sb.WriteString(" ")
			sb.WriteString(move.String())
		}
	}
	return sb.String()
}

// parseLimits rejects malformed arguments instead of searching forever
// on a clock it misread.
func parseLimits(args []string) (engine.LimitsType, error) {
	var result engine.LimitsType
	var intArg = func(i int, dst *int) error {
		if i >= len(args) {
			return fmt.Errorf("go %v: missing value", args[i-1])
		}
		var v, err = strconv.Atoi(args[i])
		if err != nil {
			return fmt.Errorf("go %v: %w", args[i-1], err)
		}
		*dst = v
		return nil
	}
	for i := 0; i < len(args); i++ {
		var err error
		switch args[i] {
		case "ponder":
			result.Ponder = true
		case "infinite":
			result.Infinite = true
		case "wtime":
			i++
			err = intArg(i, &result.WhiteTime)
		case "btime":
			i++
			err = intArg(i, &result.BlackTime)
		case "winc":
			i++
			err = intArg(i, &result.WhiteIncrement)
		case "binc":
			i++
			err = intArg(i, &result.BlackIncrement)
		case "movestogo":
			i++
			err = intArg(i, &result.MovesToGo)
		case "depth":
			i++
			err = intArg(i, &result.Depth)
		case "nodes":
			i++
			err = intArg(i, &result.Nodes)
		case "mate":
			i++
			err = intArg(i, &result.Mate)
		case "movetime":
			i++
			err = intArg(i, &result.MoveTime)
		}
		if err != nil {
			return engine.LimitsType{}, err
		}
	}
	return result, nil
}

func findIndexString(slice []string, value string) int {
	for p, v := range slice {
		if v == value {
			return p
		}
	}
	return -1
}
