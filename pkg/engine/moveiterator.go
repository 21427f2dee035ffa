package engine

import (
	"github.com/zephyrchess/zephyr/pkg/chess"
)

const sortTableKeyImportant = 100000

type moveIteratorQS struct {
	position  *chess.Position
	buffer    []orderedMove
	scratch   []chess.Move
	genChecks bool
	count     int
	index     int
}

func (mi *moveIteratorQS) Init() {
	var ml []chess.Move
	if mi.position.IsCheck() {
		ml = chess.GenerateMoves(mi.scratch, mi.position)
	} else {
		ml = chess.GenerateCaptures(mi.scratch, mi.position, mi.genChecks)
	}
	mi.count = len(ml)

	for i, m := range ml {
		var score int
		if m.IsCaptureOrPromotion() {
			score = 29000 + mvvlva(m)
		}
		mi.buffer[i] = orderedMove{move: m, key: int32(score)}
	}

	sortMoves(mi.buffer[:mi.count])
}

func (mi *moveIteratorQS) Reset() {
	mi.index = 0
}

func (mi *moveIteratorQS) Next() chess.Move {
	if mi.index >= mi.count {
		return chess.MoveEmpty
	}
	var m = mi.buffer[mi.index].move
	mi.index++
	return m
}

// moveIterator yields the full move list in stages: the hash move
// first, then winning captures, killers, quiets by history and losing
// captures. The first two picks are selection scans, the tail is
// sorted once.
type moveIterator struct {
	position  *chess.Position
	buffer    []orderedMove
	scratch   []chess.Move
	history   historyContext
	transMove chess.Move
	killer1   chess.Move
	killer2   chess.Move
	count     int
	index     int
}

func (mi *moveIterator) Init() {
	var ml = chess.GenerateMoves(mi.scratch, mi.position)
	mi.count = len(ml)

	for i, m := range ml {
		var score int
		if m == mi.transMove {
			score = sortTableKeyImportant + 2000
		} else if m.IsCaptureOrPromotion() {
			if seeGEZero(mi.position, m) {
				score = sortTableKeyImportant + 1000 + mvvlva(m)
			} else {
				score = mvvlva(m)
			}
		} else if m == mi.killer1 {
			score = sortTableKeyImportant + 1
		} else if m == mi.killer2 {
			score = sortTableKeyImportant
		} else {
			score = mi.history.ReadTotal(m)
		}
		mi.buffer[i] = orderedMove{move: m, key: int32(score)}
	}
}

func (mi *moveIterator) Reset() {
	mi.index = 0
}

func (mi *moveIterator) Next() chess.Move {
	if mi.index >= mi.count {
		return chess.MoveEmpty
	}
	const sortMovesIndex = 1
	if mi.index <= sortMovesIndex {
		if mi.index == sortMovesIndex {
			sortMoves(mi.buffer[mi.index:mi.count])
		} else {
			moveToTop(mi.buffer[mi.index:mi.count])
		}
	}
	var m = mi.buffer[mi.index].move
	mi.index++
	return m
}

var sortPieceValues = [...]int{
	chess.Empty: 0, chess.Pawn: 1, chess.Knight: 2, chess.Bishop: 3,
	chess.Rook: 4, chess.Queen: 5, chess.King: 6,
}

func mvvlva(move chess.Move) int {
	return 8*(sortPieceValues[move.Captured()]+
		sortPieceValues[move.Promotion()]) -
		sortPieceValues[move.Piece()]
}

// insertion sort, descending by key
func sortMoves(moves []orderedMove) {
	for i := 1; i < len(moves); i++ {
		j, t := i, moves[i]
		for ; j > 0 && moves[j-1].key < t.key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = t
	}
}

func moveToTop(ml []orderedMove) {
	var bestIndex = 0
	for i := 1; i < len(ml); i++ {
		if ml[i].key > ml[bestIndex].key {
			bestIndex = i
		}
	}
	if bestIndex != 0 {
		ml[0], ml[bestIndex] = ml[bestIndex], ml[0]
	}
}
