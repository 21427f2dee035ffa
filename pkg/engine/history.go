package engine

import (
	"github.com/zephyrchess/zephyr/pkg/chess"
)

const historyMax = 1 << 14

// historyContext bundles the tables relevant to one node: the main
// side/from/to table and up to two continuation tables keyed by the
// previous moves on the path.
type historyContext struct {
	thread     *thread
	sideToMove chess.Color
	cont1      int
	cont2      int
}

func (h *historyContext) ReadTotal(m chess.Move) int {
	var score int
	score += int(h.thread.mainHistory[sideFromToIndex(h.sideToMove, m)])
	var pieceToIndex = pieceSquareIndex(h.sideToMove, m)
	if h.cont1 != -1 {
		score += int(h.thread.continuationHistory[h.cont1][pieceToIndex])
	}
	if h.cont2 != -1 {
		score += int(h.thread.continuationHistory[h.cont2][pieceToIndex])
	}
	return score
}

func (h *historyContext) Update(quietsSearched []chess.Move, bestMove chess.Move, depth int) {
	var bonus = chess.Min(depth*depth, 400)
	var t = h.thread

	for _, m := range quietsSearched {
		var good = m == bestMove

		updateHistory(&t.mainHistory[sideFromToIndex(h.sideToMove, m)], bonus, good)
		var pieceToIndex = pieceSquareIndex(h.sideToMove, m)
		if h.cont1 != -1 {
			updateHistory(&t.continuationHistory[h.cont1][pieceToIndex], bonus, good)
		}
		if h.cont2 != -1 {
			updateHistory(&t.continuationHistory[h.cont2][pieceToIndex], bonus, good)
		}

		if good {
			break
		}
	}
}

// Exponential moving average toward ±historyMax.
func updateHistory(v *int16, bonus int, good bool) {
	var newVal int
	if good {
		newVal = historyMax
	} else {
		newVal = -historyMax
	}
	*v += int16((newVal - int(*v)) * bonus / 512)
}

func (t *thread) clearHistory() {
	for i := range t.mainHistory {
		t.mainHistory[i] = 0
	}
	for i := range t.continuationHistory {
		for j := range t.continuationHistory[i] {
			t.continuationHistory[i][j] = 0
		}
	}
}

func (t *thread) getHistoryContext(height int) historyContext {
	var sideToMove = t.stack[height].position.Side
	var cont1 = -1
	{
		var prev1 = t.stack[height].position.LastMove
		if prev1 != chess.MoveEmpty {
			cont1 = pieceSquareIndex(sideToMove.Other(), prev1)
		}
	}
	var cont2 = -1
	if height > 0 {
		var prev2 = t.stack[height-1].position.LastMove
		if prev2 != chess.MoveEmpty {
			cont2 = pieceSquareIndex(sideToMove, prev2)
		}
	}
	return historyContext{
		thread:     t,
		sideToMove: sideToMove,
		cont1:      cont1,
		cont2:      cont2,
	}
}

func pieceSquareIndex(side chess.Color, move chess.Move) int {
	return int(side)<<9 | (move.Piece() << 6) | move.To()
}

func sideFromToIndex(side chess.Color, move chess.Move) int {
	return int(side)<<12 | (move.From() << 6) | move.To()
}
