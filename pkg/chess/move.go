package chess

import "strings"

// Move packs origin, destination, moving piece, captured piece and
// promotion piece into one word. Immutable once generated.
type Move uint32

const MoveEmpty Move = 0

func newMove(from, to, piece, captured int) Move {
	return Move(from | to<<6 | piece<<12 | captured<<15)
}

func newPromotionMove(from, to, captured, promotion int) Move {
	return Move(from | to<<6 | Pawn<<12 | captured<<15 | promotion<<18)
}

func (m Move) From() int {
	return int(m & 63)
}

func (m Move) To() int {
	return int((m >> 6) & 63)
}

func (m Move) Piece() int {
	return int((m >> 12) & 7)
}

func (m Move) Captured() int {
	return int((m >> 15) & 7)
}

func (m Move) Promotion() int {
	return int((m >> 18) & 7)
}

func (m Move) IsCaptureOrPromotion() bool {
	return m&(7<<15|7<<18) != 0
}

// String renders the move in long algebraic notation ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	var promotion = ""
	if m.Promotion() != Empty {
		promotion = string("nbrq"[m.Promotion()-Knight])
	}
	return SquareName(m.From()) + SquareName(m.To()) + promotion
}

// ParseMoveLAN finds the legal move matching a long-algebraic string.
func (p *Position) ParseMoveLAN(lan string) Move {
	for _, m := range p.GenerateLegalMoves() {
		if strings.EqualFold(m.String(), lan) {
			return m
		}
	}
	return MoveEmpty
}

// MoveToSAN renders the move in standard algebraic notation against the
// full legal move list of the position.
func MoveToSAN(p *Position, ml []Move, m Move) string {
	const pieceNames = "NBRQK"
	if m.Piece() == King && absDelta(File(m.From()), File(m.To())) == 2 {
		if File(m.To()) == FileG {
			return "O-O"
		}
		return "O-O-O"
	}
	var piece, disambig, capture, promotion string
	if m.Piece() != Pawn {
		piece = string(pieceNames[m.Piece()-Knight])
	}
	if m.Captured() != Empty {
		capture = "x"
		if m.Piece() == Pawn {
			disambig = SquareName(m.From())[:1]
		}
	}
	if m.Promotion() != Empty {
		promotion = "=" + string(pieceNames[m.Promotion()-Knight])
	}
	var ambiguity, sameFile, sameRank bool
	for _, m1 := range ml {
		if m1 == m || m1.From() == m.From() ||
			m1.To() != m.To() || m1.Piece() != m.Piece() {
			continue
		}
		ambiguity = true
		if File(m1.From()) == File(m.From()) {
			sameFile = true
		}
		if Rank(m1.From()) == Rank(m.From()) {
			sameRank = true
		}
	}
	if ambiguity {
		if !sameFile {
			disambig = SquareName(m.From())[:1]
		} else if !sameRank {
			disambig = SquareName(m.From())[1:2]
		} else {
			disambig = SquareName(m.From())
		}
	}
	return piece + disambig + capture + SquareName(m.To()) + promotion
}

// ParseMoveSAN finds the legal move matching a standard-algebraic string.
func ParseMoveSAN(p *Position, san string) Move {
	if i := strings.IndexAny(san, "+#?!"); i >= 0 {
		san = san[:i]
	}
	var ml = p.GenerateLegalMoves()
	for _, m := range ml {
		if san == MoveToSAN(p, ml, m) {
			return m
		}
	}
	return MoveEmpty
}
