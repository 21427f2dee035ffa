package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/zephyrchess/zephyr/internal/evalbuilder"
	"github.com/zephyrchess/zephyr/internal/shell"
	"github.com/zephyrchess/zephyr/pkg/engine"
	"github.com/zephyrchess/zephyr/pkg/uci"
)

const (
	name   = "Zephyr"
	author = "Zephyr authors"
)

var (
	versionName = "dev"
	flgEval     string
	flgPlay     bool
	flgBlack    bool
	flgMoveTime int
)

func main() {
	flag.StringVar(&flgEval, "eval", "", "evaluation function (nnue, pesto, material)")
	flag.BoolVar(&flgPlay, "play", false, "play a console game instead of speaking UCI")
	flag.BoolVar(&flgBlack, "black", false, "in console play, take the black pieces")
	flag.IntVar(&flgMoveTime, "movetime", 3000, "in console play, engine time per move in ms")
	flag.Parse()

	var logger = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)

	logger.Println(name,
		"VersionName", versionName,
		"RuntimeVersion", runtime.Version(),
		"GOARCH", runtime.GOARCH,
		"GOOS", runtime.GOOS,
		"NumCPU", runtime.NumCPU(),
	)

	var eng = engine.NewEngine(evalbuilder.Get(flgEval))

	if flgPlay {
		shell.Run(eng, !flgBlack, flgMoveTime)
		return
	}

	var protocol = uci.New(name, author, versionName, eng,
		[]uci.Option{
			&uci.IntOption{Name: "Hash", Min: 4, Max: 1 << 16, Value: &eng.Hash},
			&uci.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &eng.Threads},
			&uci.IntOption{Name: "MoveOverhead", Min: 0, Max: 10000, Value: &eng.MoveOverhead},
		},
	)
	protocol.Run(logger)
}
