package engine

import (
	"github.com/zephyrchess/zephyr/pkg/chess"
)

var pieceValuesSEE = [chess.King + 1]int{
	chess.Pawn:   1,
	chess.Knight: 4,
	chess.Bishop: 4,
	chess.Rook:   6,
	chess.Queen:  12,
	chess.King:   120,
}

func seeGEZero(p *chess.Position, move chess.Move) bool {
	return SeeGE(p, move, 0)
}

// SeeGE reports whether the static exchange balance of move meets the
// threshold. The swap loop plays out the full capture sequence on the
// target square, revealing x-ray attackers as blockers leave.
func SeeGE(pos *chess.Position, move chess.Move, threshold int) bool {
	var from = move.From()
	var to = move.To()
	var movingPiece = move.Piece()
	var capturedPiece = move.Captured()
	var promotionPiece = move.Promotion()

	var nextVictim = movingPiece
	if promotionPiece != chess.Empty {
		nextVictim = promotionPiece
	}

	var balance = pieceValuesSEE[capturedPiece]
	if promotionPiece != chess.Empty {
		balance += pieceValuesSEE[promotionPiece] - pieceValuesSEE[chess.Pawn]
	}
	balance -= threshold

	if balance < 0 {
		return false
	}

	balance -= pieceValuesSEE[nextVictim]
	if balance >= 0 {
		return true
	}

	var occupied = pos.All()&^chess.SquareMask[from] | chess.SquareMask[to]
	if movingPiece == chess.Pawn && to == pos.EpSquare {
		var capSq int
		if pos.Side == chess.White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		occupied &^= chess.SquareMask[capSq]
	}

	var attackers = pos.AttackersTo(to, occupied) & occupied

	var bishops = pos.Pieces[chess.Bishop] | pos.Pieces[chess.Queen]
	var rooks = pos.Pieces[chess.Rook] | pos.Pieces[chess.Queen]

	var side = pos.Side.Other()

	for {
		var myAttackers = attackers & pos.Colors[side]
		if myAttackers == 0 {
			break
		}

		var attackerType, attackerFrom = leastValuableAttacker(pos, myAttackers)

		occupied &^= chess.SquareMask[attackerFrom]

		if attackerType == chess.Pawn || attackerType == chess.Bishop || attackerType == chess.Queen {
			attackers |= chess.BishopAttacks(to, occupied) & bishops
		}
		if attackerType == chess.Rook || attackerType == chess.Queen {
			attackers |= chess.RookAttacks(to, occupied) & rooks
		}

		attackers &= occupied

		side = side.Other()

		balance = -balance - 1 - pieceValuesSEE[attackerType]
		if balance >= 0 {
			if attackerType == chess.King &&
				(attackers&pos.Colors[side]) != 0 {
				side = side.Other()
			}
			break
		}
	}

	return side != pos.Side
}

func leastValuableAttacker(p *chess.Position, attackers uint64) (attacker, from int) {
	for pt := chess.Pawn; pt <= chess.King; pt++ {
		if p.Pieces[pt]&attackers != 0 {
			return pt, chess.FirstOne(p.Pieces[pt] & attackers)
		}
	}
	return chess.Empty, chess.SquareNone
}
