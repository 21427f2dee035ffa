package engine

import (
	"context"
	"testing"
	"time"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

func TestTimeManagerBudget(t *testing.T) {
	var p, err = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	if err != nil {
		t.Fatal(err)
	}
	var limits = LimitsType{WhiteTime: 10000, WhiteIncrement: 100}
	var _, tm = newTimeManager(context.Background(), time.Now(), limits, &p, 0)
	defer tm.Close()

	var wantTarget = 10000*time.Millisecond/defaultMovesToGo + 100*time.Millisecond
	if tm.target != wantTarget {
		t.Errorf("target = %v, want %v", tm.target, wantTarget)
	}
	var wantMaximum = wantTarget + (10000*time.Millisecond-wantTarget)/4
	if tm.maximum != wantMaximum {
		t.Errorf("maximum = %v, want %v", tm.maximum, wantMaximum)
	}
}

func TestTimeManagerTargetNeverExceedsClock(t *testing.T) {
	var p, err = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	if err != nil {
		t.Fatal(err)
	}
	// huge increment on a short clock: the target is capped by the
	// time actually left
	var limits = LimitsType{BlackTime: 200, BlackIncrement: 5000, MovesToGo: 1}
	var black = p.Mirror()
	var _, tm = newTimeManager(context.Background(), time.Now(), limits, &black, 0)
	defer tm.Close()

	if tm.target > 200*time.Millisecond {
		t.Errorf("target %v exceeds the remaining clock", tm.target)
	}
	if tm.maximum > 200*time.Millisecond {
		t.Errorf("maximum %v exceeds the remaining clock", tm.maximum)
	}
}

func TestTimeManagerExtendsOnScoreDrop(t *testing.T) {
	var p, err = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	if err != nil {
		t.Fatal(err)
	}
	var limits = LimitsType{WhiteTime: 60000}
	var _, tm = newTimeManager(context.Background(), time.Now(), limits, &p, 0)
	defer tm.Close()
	var target = tm.target

	// first score only sets the baseline
	tm.extendOnScoreDrop(40)
	if tm.target != target {
		t.Fatal("target moved before any score comparison was possible")
	}

	// mild drop: a quarter more time
	tm.extendOnScoreDrop(10)
	if tm.target != target*5/4 {
		t.Errorf("target = %v after a mild drop, want %v", tm.target, target*5/4)
	}

	// steep drop: half more again
	var before = tm.target
	tm.extendOnScoreDrop(-70)
	if tm.target != before*3/2 {
		t.Errorf("target = %v after a steep drop, want %v", tm.target, before*3/2)
	}

	// a stable score never shrinks the budget back
	var after = tm.target
	tm.extendOnScoreDrop(-70)
	if tm.target != after {
		t.Errorf("target moved on a stable score: %v", tm.target)
	}

	if tm.target > tm.maximum {
		t.Errorf("target %v escaped the maximum %v", tm.target, tm.maximum)
	}
}

func TestTimeManagerMoveTime(t *testing.T) {
	var p, err = chess.NewPositionFromFEN(chess.InitialPositionFEN)
	if err != nil {
		t.Fatal(err)
	}
	var limits = LimitsType{MoveTime: 300}
	var ctx, tm = newTimeManager(context.Background(), time.Now(), limits, &p, 0)
	defer tm.Close()
	var deadline, ok = ctx.Deadline()
	if !ok {
		t.Fatal("movetime did not set a deadline")
	}
	if until := time.Until(deadline); until > 300*time.Millisecond {
		t.Errorf("deadline %v past the requested movetime", until)
	}
}
