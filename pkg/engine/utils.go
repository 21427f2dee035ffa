package engine

import (
	"github.com/zephyrchess/zephyr/pkg/chess"
)

const (
	stackSize     = 128
	maxHeight     = stackSize - 1
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin
)

func winIn(height int) int {
	return valueMate - height
}

func lossIn(height int) int {
	return -valueMate + height
}

// Mate scores are stored relative to the node, not to the root, so a
// hashed mate stays valid when the node is reached along another path.
func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}
	if v <= valueLoss {
		return v - height
	}
	return v
}

func valueFromTT(v, height int) int {
	if v >= valueWin {
		return v - height
	}
	if v <= valueLoss {
		return v + height
	}
	return v
}

func newUciScore(v int) UciScore {
	if v >= valueWin {
		return UciScore{Mate: (valueMate - v + 1) / 2}
	} else if v <= valueLoss {
		return UciScore{Mate: (-valueMate - v) / 2}
	} else {
		return UciScore{Centipawns: v}
	}
}

// With only king and pawns left, zugzwang is common enough that the
// null-move observation ("doing nothing is worse than the best move")
// stops holding.
func hasNonPawnMaterial(p *chess.Position, side chess.Color) bool {
	return p.Colors[side]&^(p.Pieces[chess.Pawn]|p.Pieces[chess.King]) != 0
}
