// Package pesto implements a tapered piece-square evaluation with
// endgame scaling. It is the fallback evaluator when no network
// weights are available.
package pesto

import (
	"github.com/zephyrchess/zephyr/pkg/chess"
)

const (
	minorPhase = 4
	rookPhase  = 6
	queenPhase = 12
	totalPhase = 2 * (4*minorPhase + 2*rookPhase + queenPhase)
)

const darkSquares = uint64(0xAA55AA55AA55AA55)

type EvaluationService struct {
	Weights
	pieceCount [2][chess.King + 1]int
	force      [2]int
}

func NewEvaluationService() *EvaluationService {
	var es = &EvaluationService{}
	es.Weights.init()
	return es
}

// Evaluate returns a centipawn score from the point of view of the
// side to move.
func (e *EvaluationService) Evaluate(p *chess.Position) int {
	var s Score

	for piece := chess.Pawn; piece <= chess.King; piece++ {
		e.pieceCount[chess.White][piece] = 0
		e.pieceCount[chess.Black][piece] = 0
	}

	for x := p.Colors[chess.White]; x != 0; x &= x - 1 {
		var sq = chess.FirstOne(x)
		var piece = p.PieceOn(sq)
		s += e.PST[chess.White][piece][sq]
		e.pieceCount[chess.White][piece]++
	}

	for x := p.Colors[chess.Black]; x != 0; x &= x - 1 {
		var sq = chess.FirstOne(x)
		var piece = p.PieceOn(sq)
		s += e.PST[chess.Black][piece][sq]
		e.pieceCount[chess.Black][piece]++
	}

	e.force[chess.White] = minorPhase*(e.pieceCount[chess.White][chess.Knight]+e.pieceCount[chess.White][chess.Bishop]) +
		rookPhase*e.pieceCount[chess.White][chess.Rook] + queenPhase*e.pieceCount[chess.White][chess.Queen]
	e.force[chess.Black] = minorPhase*(e.pieceCount[chess.Black][chess.Knight]+e.pieceCount[chess.Black][chess.Bishop]) +
		rookPhase*e.pieceCount[chess.Black][chess.Rook] + queenPhase*e.pieceCount[chess.Black][chess.Queen]

	if e.pieceCount[chess.White][chess.Bishop] >= 2 {
		s += e.BishopPairMaterial
	}
	if e.pieceCount[chess.Black][chess.Bishop] >= 2 {
		s -= e.BishopPairMaterial
	}

	var phase = e.force[chess.White] + e.force[chess.Black]
	if phase > totalPhase {
		phase = totalPhase
	}

	var result = (int(s.Middle())*phase + int(s.End())*(totalPhase-phase)) / totalPhase

	var bishops = p.Pieces[chess.Bishop]
	var ocb = e.force[chess.White] == minorPhase &&
		e.force[chess.Black] == minorPhase &&
		bishops&darkSquares != 0 &&
		bishops & ^darkSquares != 0

	if result > 0 {
		result = result * e.computeFactor(chess.White, ocb) / scaleNormal
	} else {
		result = result * e.computeFactor(chess.Black, ocb) / scaleNormal
	}

	if p.Side == chess.Black {
		result = -result
	}

	return result
}

const (
	scaleDraw   = 0
	scaleHard   = 1
	scaleNormal = 2
)

// computeFactor detects drawish endings where the stronger side cannot
// convert a nominal material edge.
func (e *EvaluationService) computeFactor(side chess.Color, ocb bool) int {
	var them = side.Other()
	if e.force[side] >= queenPhase+rookPhase {
		return scaleNormal
	}
	if e.pieceCount[side][chess.Pawn] == 0 {
		if e.force[side] <= minorPhase {
			return scaleHard
		}
		if e.force[side] == 2*minorPhase && e.pieceCount[side][chess.Knight] == 2 && e.pieceCount[them][chess.Pawn] == 0 {
			return scaleHard
		}
		if e.force[side]-e.force[them] <= minorPhase {
			return scaleHard
		}
	} else if e.pieceCount[side][chess.Pawn] == 1 {
		if e.force[side] <= minorPhase && e.pieceCount[them][chess.Knight]+e.pieceCount[them][chess.Bishop] != 0 {
			return scaleHard
		}
		if e.force[side] == e.force[them] && e.pieceCount[them][chess.Knight]+e.pieceCount[them][chess.Bishop] != 0 {
			return scaleHard
		}
	} else if ocb && e.pieceCount[side][chess.Pawn]-e.pieceCount[them][chess.Pawn] <= 2 {
		return scaleHard
	}
	return scaleNormal
}
