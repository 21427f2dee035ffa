package engine

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

type Engine struct {
	Hash             int
	Threads          int
	MoveOverhead     int
	ProgressMinNodes int
	Options          Options
	evalBuilder      func() interface{}
	timeManager      TimeManager
	transTable       TransTable
	historyKeys      map[uint64]int
	threads          []thread
	progress         func(SearchInfo)
	mainLine         mainLine
	start            time.Time
	nodes            int64
}

type thread struct {
	engine              *Engine
	index               int
	evaluator           UpdatableEvaluator
	mainHistory         [1 << 13]int16
	continuationHistory [1 << 10][1 << 10]int16
	nodes               int64
	rootDepth           int
	stack               [stackSize]struct {
		position       chess.Position
		moveList       [chess.MaxMoves]orderedMove
		genBuffer      [chess.MaxMoves]chess.Move
		quietsSearched [chess.MaxMoves]chess.Move
		pv             pv
		staticEval     int
		killer1        chess.Move
		killer2        chess.Move
	}
}

type pv struct {
	items [stackSize]chess.Move
	size  int
}

type mainLine struct {
	moves  []chess.Move
	score  int
	depth  int
	nodes  int64
	worker int
}

// NewEngine builds an engine around an evaluator constructor. The
// constructor runs once per worker so each one owns its accumulator.
func NewEngine(evalBuilder func() interface{}) *Engine {
	return &Engine{
		Hash:             16,
		Threads:          1,
		MoveOverhead:     20,
		ProgressMinNodes: 200000,
		Options:          NewOptions(),
		evalBuilder:      evalBuilder,
	}
}

// Prepare (re)allocates the transposition table and the worker slots
// after an option change. Called lazily from Search as well.
func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Size() != e.Hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.Hash)
	}
	if len(e.threads) != e.Threads {
		e.threads = make([]thread, e.Threads)
		for i := range e.threads {
			var t = &e.threads[i]
			t.engine = e
			t.index = i
			t.evaluator = e.buildEvaluator()
		}
	}
}

// Search runs iterative deepening on the last position of
// params.Positions until the limits or ctx stop it. It returns the
// best line found; if the position has any legal move, the line is
// never empty, whatever the budget was.
func (e *Engine) Search(ctx context.Context, params SearchParams) SearchInfo {
	e.start = time.Now()
	e.Prepare()
	var p = &params.Positions[len(params.Positions)-1]
	ctx, tm := newTimeManager(ctx, e.start, params.Limits, p, e.MoveOverhead)
	e.timeManager = tm
	defer tm.Close()
	e.transTable.IncDate()
	e.historyKeys = getHistoryKeys(params.Positions)
	e.nodes = 0
	e.mainLine = mainLine{}
	for i := range e.threads {
		var t = &e.threads[i]
		t.nodes = 0
		t.stack[0].position = *p
	}
	e.progress = params.Progress
	lazySmp(ctx, e)
	return e.currentSearchResult()
}

// getHistoryKeys counts the keys of the game line still relevant for
// repetition detection, back to the last irreversible move.
func getHistoryKeys(positions []chess.Position) map[uint64]int {
	var result = make(map[uint64]int)
	for i := len(positions) - 1; i >= 0; i-- {
		var p = &positions[i]
		result[p.Key]++
		if p.Rule50 == 0 {
			break
		}
	}
	return result
}

// Clear wipes the transposition table and per-worker history, as on
// ucinewgame.
func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	for i := range e.threads {
		e.threads[i].clearHistory()
	}
}

func (e *Engine) currentSearchResult() SearchInfo {
	return SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    newUciScore(e.mainLine.score),
		Nodes:    e.mainLine.nodes,
		Time:     time.Since(e.start),
	}
}

func (t *thread) initMoveIterator(height int, transMove chess.Move) *moveIterator {
	var entry = &t.stack[height]
	var mi = &moveIterator{
		position:  &entry.position,
		buffer:    entry.moveList[:],
		scratch:   entry.genBuffer[:],
		history:   t.getHistoryContext(height),
		transMove: transMove,
		killer1:   entry.killer1,
		killer2:   entry.killer2,
	}
	mi.Init()
	return mi
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m chess.Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) toSlice() []chess.Move {
	var result = make([]chess.Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}

// evaluatorAdapter lets a plain evaluator serve where an incremental
// one is expected.
type evaluatorAdapter struct {
	evaluator Evaluator
}

func (e *evaluatorAdapter) Init(p *chess.Position)                    {}
func (e *evaluatorAdapter) MakeMove(p *chess.Position, m chess.Move)  {}
func (e *evaluatorAdapter) UnmakeMove()                               {}
func (e *evaluatorAdapter) EvaluateQuick(p *chess.Position) int       { return e.evaluator.Evaluate(p) }

func (e *Engine) buildEvaluator() UpdatableEvaluator {
	var service = e.evalBuilder()
	if ue, ok := service.(UpdatableEvaluator); ok {
		return ue
	}
	if ev, ok := service.(Evaluator); ok {
		return &evaluatorAdapter{evaluator: ev}
	}
	panic(errors.New("bad eval builder"))
}
