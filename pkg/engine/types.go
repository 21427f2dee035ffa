package engine

import (
	"time"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

type orderedMove struct {
	move chess.Move
	key  int32
}

// LimitsType mirrors the limits of the "go" command.
type LimitsType struct {
	Ponder         bool
	Infinite       bool
	WhiteTime      int
	BlackTime      int
	WhiteIncrement int
	BlackIncrement int
	MoveTime       int
	MovesToGo      int
	Depth          int
	Nodes          int
	Mate           int
}

// SearchParams carries the game line leading to the position to search.
// The last element of Positions is the root.
type SearchParams struct {
	Positions []chess.Position
	Limits    LimitsType
	Progress  func(si SearchInfo)
}

type SearchInfo struct {
	Score    UciScore
	Depth    int
	Nodes    int64
	Time     time.Duration
	MainLine []chess.Move
}

// UciScore is either a centipawn score or a signed distance to mate in
// full moves, never both.
type UciScore struct {
	Centipawns int
	Mate       int
}

type TimeManager interface {
	IsDone() bool
	OnNodesChanged(nodes int)
	OnIterationComplete(line mainLine)
	Close()
}

type Evaluator interface {
	Evaluate(p *chess.Position) int
}

// UpdatableEvaluator maintains internal state incrementally along the
// search path. Init anchors it at a root, MakeMove pushes the update
// for one move, UnmakeMove pops it.
type UpdatableEvaluator interface {
	Init(p *chess.Position)
	MakeMove(p *chess.Position, m chess.Move)
	UnmakeMove()
	EvaluateQuick(p *chess.Position) int
}

type TransTable interface {
	Size() (megabytes int)
	IncDate()
	Clear()
	Read(key uint64) (depth, score, bound int, move chess.Move, found bool)
	Update(key uint64, depth, score, bound int, move chess.Move)
}
