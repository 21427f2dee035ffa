package engine

import (
	"context"
	"time"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

const defaultMovesToGo = 40

// timeManager splits the clock budget in two: target is the share of
// the clock this move should normally take, maximum is how far a
// troubled search may overrun it. The maximum becomes a context
// deadline (the hard stop polled inside the tree); the target gates
// the start of the next iteration and grows when the score drops.
type timeManager struct {
	start     time.Time
	limits    LimitsType
	overhead  time.Duration
	target    time.Duration
	maximum   time.Duration
	lastScore int
	hasScore  bool
	ctx       context.Context
	cancel    context.CancelFunc
}

func newTimeManager(ctx context.Context, start time.Time,
	limits LimitsType, p *chess.Position, moveOverhead int) (context.Context, *timeManager) {

	var tm = &timeManager{
		start:    start,
		limits:   limits,
		overhead: time.Duration(moveOverhead) * time.Millisecond,
	}

	if limits.MoveTime > 0 {
		tm.maximum = time.Duration(limits.MoveTime) * time.Millisecond
	} else if limits.WhiteTime > 0 || limits.BlackTime > 0 {
		var main, inc time.Duration
		if p.Side == chess.White {
			main = time.Duration(limits.WhiteTime) * time.Millisecond
			inc = time.Duration(limits.WhiteIncrement) * time.Millisecond
		} else {
			main = time.Duration(limits.BlackTime) * time.Millisecond
			inc = time.Duration(limits.BlackIncrement) * time.Millisecond
		}
		var moves = limits.MovesToGo
		if moves == 0 {
			moves = defaultMovesToGo
		}
		tm.target = main/time.Duration(moves) + inc
		if tm.target > main {
			tm.target = main
		}
		tm.maximum = tm.target + (main-tm.target)/4
	}

	if tm.maximum != 0 {
		var deadline = tm.maximum - tm.overhead
		if deadline < time.Millisecond {
			deadline = time.Millisecond
		}
		ctx, tm.cancel = context.WithDeadline(ctx, start.Add(deadline))
	} else {
		ctx, tm.cancel = context.WithCancel(ctx)
	}
	tm.ctx = ctx
	return ctx, tm
}

func (tm *timeManager) IsDone() bool {
	return tm.ctx.Err() != nil
}

func (tm *timeManager) OnNodesChanged(nodes int) {
	if tm.limits.Nodes > 0 && nodes >= tm.limits.Nodes {
		tm.cancel()
	}
}

// OnIterationComplete decides whether the next iteration may start.
// An iteration rarely finishes under twice the elapsed time of the
// previous one, so deepening stops once half the target is spent.
func (tm *timeManager) OnIterationComplete(line mainLine) {
	if tm.limits.Infinite {
		return
	}
	if tm.limits.Depth != 0 && line.depth >= tm.limits.Depth {
		tm.cancel()
		return
	}
	if line.score >= winIn(line.depth-5) ||
		line.score <= lossIn(line.depth-5) {
		tm.cancel()
		return
	}
	if tm.target != 0 {
		tm.extendOnScoreDrop(line.score)
		if time.Since(tm.start)+tm.overhead > tm.target/2 {
			tm.cancel()
		}
	}
}

// A falling score means the previous best move is coming apart; buy
// the search more of the remaining budget to resolve it.
func (tm *timeManager) extendOnScoreDrop(score int) {
	var last = tm.lastScore
	tm.lastScore = score
	if !tm.hasScore {
		tm.hasScore = true
		return
	}
	switch diff := score - last; {
	case diff <= -75:
		tm.target = minDuration(tm.maximum, tm.target*3/2)
	case diff <= -25:
		tm.target = minDuration(tm.maximum, tm.target*5/4)
	}
}

func (tm *timeManager) Close() {
	tm.cancel()
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
