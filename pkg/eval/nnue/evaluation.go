package nnue

import (
	"github.com/zephyrchess/zephyr/pkg/chess"
)

const scale = 64

const maxHeight = 128

const (
	add    = 1
	remove = -add
)

// EvaluationService evaluates positions with the loaded network. The
// accumulator is maintained incrementally: every MakeMove pushes a
// fresh copy with only the changed features applied, UnmakeMove pops
// it. One service belongs to one search worker.
type EvaluationService struct {
	*Weights
	updates      updates
	accumulators [maxHeight][HiddenSize]int16
	current      int
}

type updates struct {
	indices [8]int16
	coeffs  [8]int8
	size    int
}

func (u *updates) add(index int16, coeff int8) {
	u.indices[u.size] = index
	u.coeffs[u.size] = coeff
	u.size++
}

func NewEvaluationService(weights *Weights) *EvaluationService {
	return &EvaluationService{Weights: weights}
}

// Init refreshes the accumulator from scratch for p and resets the
// snapshot stack.
func (e *EvaluationService) Init(p *chess.Position) {
	e.current = 0
	var acc = e.accumulators[0][:]
	copy(acc, e.InputBiases[:])

	for c := chess.White; c <= chess.Black; c++ {
		for pt := chess.Pawn; pt <= chess.King; pt++ {
			for b := p.Pieces[pt] & p.Colors[c]; b != 0; b &= b - 1 {
				var index = int(featureIndex(c, pt, chess.FirstOne(b))) * HiddenSize
				for j := range acc {
					acc[j] += e.InputWeights[index+j]
				}
			}
		}
	}
}

// EvaluateQuick reads the current accumulator through the output head
// of the material bucket, from the side to move's perspective.
func (e *EvaluationService) EvaluateQuick(p *chess.Position) int {
	var bucket = (chess.PopCount(p.All()) - 1) / 4
	var bucketIdx = bucket * HiddenSize

	var acc = &e.accumulators[e.current]
	var output = int32(e.OutputBiases[bucket])
	for j := 0; j < HiddenSize; j++ {
		output += clippedReLU(acc[j]) * int32(e.OutputWeights[bucketIdx+j])
	}
	var score = int(output / (scale * scale))
	if p.Side != chess.White {
		score = -score
	}
	return score
}

func (e *EvaluationService) Evaluate(p *chess.Position) int {
	e.Init(p)
	return e.EvaluateQuick(p)
}

func clippedReLU(x int16) int32 {
	if x < 0 {
		return 0
	}
	if x > scale {
		return scale
	}
	return int32(x)
}

// MakeMove is called with the position the move is played from, before
// the searcher descends.
func (e *EvaluationService) MakeMove(p *chess.Position, m chess.Move) {
	e.updates.size = 0

	// a null move changes no features, push the snapshot as is
	if m == chess.MoveEmpty {
		e.push()
		return
	}

	var us = p.Side
	var from = m.From()
	var to = m.To()
	var movingPiece = m.Piece()
	var capturedPiece = m.Captured()

	e.updates.add(featureIndex(us, movingPiece, from), remove)

	if capturedPiece != chess.Empty {
		var capSq = to
		if movingPiece == chess.Pawn && to == p.EpSquare {
			if us == chess.White {
				capSq = to - 8
			} else {
				capSq = to + 8
			}
		}
		e.updates.add(featureIndex(us.Other(), capturedPiece, capSq), remove)
	}

	var pieceAfterMove = movingPiece
	if promotion := m.Promotion(); promotion != chess.Empty {
		pieceAfterMove = promotion
	}
	e.updates.add(featureIndex(us, pieceAfterMove, to), add)

	if movingPiece == chess.King && chess.SquareDistance(from, to) == 2 {
		var rookFrom, rookTo int
		if to > from {
			rookFrom = to + 1
			rookTo = to - 1
		} else {
			rookFrom = to - 2
			rookTo = to + 1
		}
		e.updates.add(featureIndex(us, chess.Rook, rookFrom), remove)
		e.updates.add(featureIndex(us, chess.Rook, rookTo), add)
	}

	e.push()
}

func (e *EvaluationService) UnmakeMove() {
	e.current--
}

// push copies the top accumulator one slot up and applies the pending
// feature updates to the copy.
func (e *EvaluationService) push() {
	e.current++
	var acc = e.accumulators[e.current][:]
	copy(acc, e.accumulators[e.current-1][:])

	for i := 0; i < e.updates.size; i++ {
		var index = int(e.updates.indices[i]) * HiddenSize
		if e.updates.coeffs[i] == add {
			for j := range acc {
				acc[j] += e.InputWeights[index+j]
			}
		} else {
			for j := range acc {
				acc[j] -= e.InputWeights[index+j]
			}
		}
	}
}

func featureIndex(side chess.Color, pieceType, square int) int16 {
	var piece12 = pieceType - chess.Pawn
	if side == chess.Black {
		piece12 += 6
	}
	return int16(piece12<<6 | square)
}
