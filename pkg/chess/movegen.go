package chess

var pawnPush = [2]int{8, -8}

var (
	pawnStartMask = [2]uint64{Rank2Mask, Rank7Mask}
	promotionMask = [2]uint64{Rank7Mask, Rank2Mask} // pawns here promote on their next push
)

type castleSide struct {
	right     int
	kingFrom  int
	kingTo    int
	emptyMask uint64
	safe      [2]int // squares that may not be attacked besides the target
}

var castleSides = [2][2]castleSide{
	{
		{WhiteKingSide, SquareE1, SquareG1,
			1<<SquareF1 | 1<<SquareG1,
			[2]int{SquareE1, SquareF1}},
		{WhiteQueenSide, SquareE1, SquareC1,
			1<<SquareB1 | 1<<SquareC1 | 1<<SquareD1,
			[2]int{SquareE1, SquareD1}},
	},
	{
		{BlackKingSide, SquareE8, SquareG8,
			1<<SquareF8 | 1<<SquareG8,
			[2]int{SquareE8, SquareF8}},
		{BlackQueenSide, SquareE8, SquareC8,
			1<<SquareB8 | 1<<SquareC8 | 1<<SquareD8,
			[2]int{SquareE8, SquareD8}},
	},
}

func addPromotions(ml []Move, m Move) int {
	ml[0] = m | Move(Queen<<18)
	ml[1] = m | Move(Rook<<18)
	ml[2] = m | Move(Bishop<<18)
	ml[3] = m | Move(Knight<<18)
	return 4
}

// GenerateMoves fills ml with the pseudo-legal moves of p and returns
// the used prefix. Moves leaving the own king attacked are rejected
// later by MakeMove; no legal move is ever omitted here.
func GenerateMoves(ml []Move, p *Position) []Move {
	var count = 0
	var us = p.Side
	var them = us.Other()
	var own = p.Colors[us]
	var opp = p.Colors[them]
	var all = p.All()
	var push = pawnPush[us]

	// with a single checker non-king moves must capture it or block;
	// with a double check only king moves can help and the legality
	// filter rejects the rest
	var target = ^own
	if p.Checkers != 0 {
		target = p.Checkers | Between(FirstOne(p.Checkers), p.KingSq(us))
	}

	var pawns = p.Pieces[Pawn] & own

	if p.EpSquare != SquareNone {
		for fromBB := PawnAttacks(p.EpSquare, them) & pawns; fromBB != 0; fromBB &= fromBB - 1 {
			ml[count] = newMove(FirstOne(fromBB), p.EpSquare, Pawn, Pawn)
			count++
		}
	}

	for fromBB := pawns &^ promotionMask[us]; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		if all&SquareMask[from+push] == 0 {
			ml[count] = newMove(from, from+push, Pawn, Empty)
			count++
			if SquareMask[from]&pawnStartMask[us] != 0 &&
				all&SquareMask[from+2*push] == 0 {
				ml[count] = newMove(from, from+2*push, Pawn, Empty)
				count++
			}
		}
		for toBB := PawnAttacks(from, us) & opp; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Pawn, p.PieceOn(to))
			count++
		}
	}

	for fromBB := pawns & promotionMask[us]; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		if all&SquareMask[from+push] == 0 {
			count += addPromotions(ml[count:], newMove(from, from+push, Pawn, Empty))
		}
		for toBB := PawnAttacks(from, us) & opp; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			count += addPromotions(ml[count:], newMove(from, to, Pawn, p.PieceOn(to)))
		}
	}

	for fromBB := p.Pieces[Knight] & own; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := KnightAttacks[from] & target; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Knight, p.PieceOn(to))
			count++
		}
	}

	for fromBB := p.Pieces[Bishop] & own; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := BishopAttacks(from, all) & target; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Bishop, p.PieceOn(to))
			count++
		}
	}

	for fromBB := p.Pieces[Rook] & own; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := RookAttacks(from, all) & target; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Rook, p.PieceOn(to))
			count++
		}
	}

	for fromBB := p.Pieces[Queen] & own; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := QueenAttacks(from, all) & target; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Queen, p.PieceOn(to))
			count++
		}
	}

	var kingFrom = p.KingSq(us)
	for toBB := KingAttacks[kingFrom] &^ own; toBB != 0; toBB &= toBB - 1 {
		var to = FirstOne(toBB)
		ml[count] = newMove(kingFrom, to, King, p.PieceOn(to))
		count++
	}

	if p.Checkers == 0 {
		for i := range castleSides[us] {
			var cs = &castleSides[us][i]
			if p.Castling&cs.right != 0 &&
				all&cs.emptyMask == 0 &&
				!p.isAttacked(cs.safe[0], them) &&
				!p.isAttacked(cs.safe[1], them) {
				ml[count] = newMove(cs.kingFrom, cs.kingTo, King, Empty)
				count++
			}
		}
	}

	return ml[:count]
}

// GenerateCaptures fills ml with pseudo-legal captures and queen
// promotions. With genChecks it also emits quiet direct checking moves
// of the minor and major pieces for the first quiescence ply.
func GenerateCaptures(ml []Move, p *Position, genChecks bool) []Move {
	var count = 0
	var us = p.Side
	var them = us.Other()
	var own = p.Colors[us]
	var opp = p.Colors[them]
	var all = p.All()
	var push = pawnPush[us]

	var pawns = p.Pieces[Pawn] & own

	if p.EpSquare != SquareNone {
		for fromBB := PawnAttacks(p.EpSquare, them) & pawns; fromBB != 0; fromBB &= fromBB - 1 {
			ml[count] = newMove(FirstOne(fromBB), p.EpSquare, Pawn, Pawn)
			count++
		}
	}

	for fromBB := pawns &^ promotionMask[us]; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := PawnAttacks(from, us) & opp; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Pawn, p.PieceOn(to))
			count++
		}
	}

	for fromBB := pawns & promotionMask[us]; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		if all&SquareMask[from+push] == 0 {
			ml[count] = newPromotionMove(from, from+push, Empty, Queen)
			count++
		}
		for toBB := PawnAttacks(from, us) & opp; toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newPromotionMove(from, to, p.PieceOn(to), Queen)
			count++
		}
	}

	// quiet checking squares per piece type
	var checksN, checksB, checksR uint64
	if genChecks {
		var oppKing = p.KingSq(them)
		checksN = KnightAttacks[oppKing] &^ all
		checksB = BishopAttacks(oppKing, all) &^ all
		checksR = RookAttacks(oppKing, all) &^ all
	}

	for fromBB := p.Pieces[Knight] & own; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := KnightAttacks[from] & (opp | checksN); toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Knight, p.PieceOn(to))
			count++
		}
	}

	for fromBB := p.Pieces[Bishop] & own; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := BishopAttacks(from, all) & (opp | checksB); toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Bishop, p.PieceOn(to))
			count++
		}
	}

	for fromBB := p.Pieces[Rook] & own; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := RookAttacks(from, all) & (opp | checksR); toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Rook, p.PieceOn(to))
			count++
		}
	}

	for fromBB := p.Pieces[Queen] & own; fromBB != 0; fromBB &= fromBB - 1 {
		var from = FirstOne(fromBB)
		for toBB := QueenAttacks(from, all) & (opp | checksB | checksR); toBB != 0; toBB &= toBB - 1 {
			var to = FirstOne(toBB)
			ml[count] = newMove(from, to, Queen, p.PieceOn(to))
			count++
		}
	}

	var kingFrom = p.KingSq(us)
	for toBB := KingAttacks[kingFrom] & opp; toBB != 0; toBB &= toBB - 1 {
		var to = FirstOne(toBB)
		ml[count] = newMove(kingFrom, to, King, p.PieceOn(to))
		count++
	}

	return ml[:count]
}

// GenerateLegalMoves returns the exact legal move list of p.
func (p *Position) GenerateLegalMoves() []Move {
	var buffer [MaxMoves]Move
	var child Position
	var result []Move
	for _, m := range GenerateMoves(buffer[:], p) {
		if p.MakeMove(m, &child) {
			result = append(result, m)
		}
	}
	return result
}
