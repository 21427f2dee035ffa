// Package material counts material only. It exists for debugging the
// search and as a baseline in engine matches.
package material

import (
	"github.com/zephyrchess/zephyr/pkg/chess"
)

type EvaluationService struct{}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{}
}

func (e *EvaluationService) Evaluate(p *chess.Position) int {
	var white = p.Colors[chess.White]
	var black = p.Colors[chess.Black]
	var eval = 100*(chess.PopCount(p.Pieces[chess.Pawn]&white)-chess.PopCount(p.Pieces[chess.Pawn]&black)) +
		400*(chess.PopCount(p.Pieces[chess.Knight]&white)-chess.PopCount(p.Pieces[chess.Knight]&black)) +
		400*(chess.PopCount(p.Pieces[chess.Bishop]&white)-chess.PopCount(p.Pieces[chess.Bishop]&black)) +
		600*(chess.PopCount(p.Pieces[chess.Rook]&white)-chess.PopCount(p.Pieces[chess.Rook]&black)) +
		1200*(chess.PopCount(p.Pieces[chess.Queen]&white)-chess.PopCount(p.Pieces[chess.Queen]&black))
	if p.Side == chess.Black {
		eval = -eval
	}
	return eval
}
