package chess

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Position is a bitboard board state. All fields are value types, so a
// plain assignment copies the position; search keeps one Position per
// ply and undo is discarding the child copy.
type Position struct {
	Pieces   [King + 1]uint64 // by piece type, Pieces[Empty] unused
	Colors   [2]uint64
	Side     Color
	Castling int
	EpSquare int
	Rule50   int
	Fullmove int
	Key      uint64
	Checkers uint64
	LastMove Move
}

var castlingUpdate [64]int

func init() {
	var all = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
	for sq := range castlingUpdate {
		castlingUpdate[sq] = all
	}
	castlingUpdate[SquareA1] &^= WhiteQueenSide
	castlingUpdate[SquareE1] &^= WhiteKingSide | WhiteQueenSide
	castlingUpdate[SquareH1] &^= WhiteKingSide
	castlingUpdate[SquareA8] &^= BlackQueenSide
	castlingUpdate[SquareE8] &^= BlackKingSide | BlackQueenSide
	castlingUpdate[SquareH8] &^= BlackKingSide
}

func (p *Position) All() uint64 {
	return p.Colors[White] | p.Colors[Black]
}

func (p *Position) PieceOn(sq int) int {
	var b = SquareMask[sq]
	if p.All()&b == 0 {
		return Empty
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[pt]&b != 0 {
			return pt
		}
	}
	return Empty
}

func (p *Position) ColorOn(sq int) (Color, bool) {
	var b = SquareMask[sq]
	if p.Colors[White]&b != 0 {
		return White, true
	}
	if p.Colors[Black]&b != 0 {
		return Black, true
	}
	return White, false
}

func (p *Position) KingSq(c Color) int {
	return FirstOne(p.Pieces[King] & p.Colors[c])
}

func (p *Position) IsCheck() bool {
	return p.Checkers != 0
}

func (p *Position) IsDiscoveredCheck() bool {
	return p.Checkers&^SquareMask[p.LastMove.To()] != 0
}

func xorPiece(p *Position, c Color, pt, sq int) {
	var b = SquareMask[sq]
	p.Colors[c] ^= b
	p.Pieces[pt] ^= b
	p.Key ^= pieceKey(c, pt, sq)
}

func shiftPiece(p *Position, c Color, pt, from, to int) {
	var b = SquareMask[from] ^ SquareMask[to]
	p.Colors[c] ^= b
	p.Pieces[pt] ^= b
	p.Key ^= pieceKey(c, pt, from) ^ pieceKey(c, pt, to)
}

// isAttacked reports whether the square is attacked by any piece of the
// given color, with the current occupancy.
func (p *Position) isAttacked(sq int, by Color) bool {
	var enemy = p.Colors[by]
	if PawnAttacks(sq, by.Other())&p.Pieces[Pawn]&enemy != 0 {
		return true
	}
	if KnightAttacks[sq]&p.Pieces[Knight]&enemy != 0 {
		return true
	}
	if KingAttacks[sq]&p.Pieces[King]&enemy != 0 {
		return true
	}
	var occ = p.All()
	if BishopAttacks(sq, occ)&(p.Pieces[Bishop]|p.Pieces[Queen])&enemy != 0 {
		return true
	}
	if RookAttacks(sq, occ)&(p.Pieces[Rook]|p.Pieces[Queen])&enemy != 0 {
		return true
	}
	return false
}

// AttackersTo returns all pieces of both colors attacking the square
// under the given occupancy (used by static exchange evaluation).
func (p *Position) AttackersTo(sq int, occ uint64) uint64 {
	return (PawnAttacks(sq, Black) & p.Pieces[Pawn] & p.Colors[White]) |
		(PawnAttacks(sq, White) & p.Pieces[Pawn] & p.Colors[Black]) |
		(KnightAttacks[sq] & p.Pieces[Knight]) |
		(BishopAttacks(sq, occ) & (p.Pieces[Bishop] | p.Pieces[Queen])) |
		(RookAttacks(sq, occ) & (p.Pieces[Rook] | p.Pieces[Queen])) |
		(KingAttacks[sq] & p.Pieces[King])
}

func (p *Position) computeCheckers() uint64 {
	return p.AttackersTo(p.KingSq(p.Side), p.All()) & p.Colors[p.Side.Other()]
}

// isLegal reports that the side which just moved did not leave its own
// king attacked.
func (p *Position) isLegal() bool {
	var mover = p.Side.Other()
	return !p.isAttacked(p.KingSq(mover), p.Side)
}

// MakeMove writes the successor of p after m into child and reports
// whether the move is legal. On false the child content is undefined.
// Castling rights, en passant, the fifty-move clock and promotions are
// all handled here; p itself is never modified.
func (p *Position) MakeMove(m Move, child *Position) bool {
	var from = m.From()
	var to = m.To()
	var piece = m.Piece()
	var captured = m.Captured()
	var us = p.Side
	var them = us.Other()

	*child = Position{
		Pieces:   p.Pieces,
		Colors:   p.Colors,
		Side:     them,
		Castling: p.Castling & castlingUpdate[from] & castlingUpdate[to],
		EpSquare: SquareNone,
		Key:      p.Key ^ sideKey,
	}
	child.Key ^= castlingKeys[p.Castling^child.Castling]
	if p.EpSquare != SquareNone {
		child.Key ^= epFileKeys[File(p.EpSquare)]
	}

	if piece == Pawn || captured != Empty {
		child.Rule50 = 0
	} else {
		child.Rule50 = p.Rule50 + 1
	}
	child.Fullmove = p.Fullmove
	if us == Black {
		child.Fullmove++
	}

	if captured != Empty {
		if captured == Pawn && to == p.EpSquare {
			xorPiece(child, them, Pawn, to-pawnPush[us])
		} else {
			xorPiece(child, them, captured, to)
		}
	}

	shiftPiece(child, us, piece, from, to)

	switch piece {
	case Pawn:
		if to == from+2*pawnPush[us] {
			child.EpSquare = from + pawnPush[us]
			child.Key ^= epFileKeys[File(child.EpSquare)]
		} else if promotion := m.Promotion(); promotion != Empty {
			xorPiece(child, us, Pawn, to)
			xorPiece(child, us, promotion, to)
		}
	case King:
		if to-from == 2 { // king side
			shiftPiece(child, us, Rook, to+1, to-1)
		} else if from-to == 2 { // queen side
			shiftPiece(child, us, Rook, to-2, to+1)
		}
	}

	if !child.isLegal() {
		return false
	}
	child.Checkers = child.computeCheckers()
	child.LastMove = m
	return true
}

// MakeNullMove passes the turn. Used by null-move pruning only.
func (p *Position) MakeNullMove(child *Position) {
	*child = Position{
		Pieces:   p.Pieces,
		Colors:   p.Colors,
		Side:     p.Side.Other(),
		Castling: p.Castling,
		EpSquare: SquareNone,
		Rule50:   p.Rule50 + 1,
		Fullmove: p.Fullmove,
		Key:      p.Key ^ sideKey,
		LastMove: MoveEmpty,
	}
	if p.Side == Black {
		child.Fullmove++
	}
	if p.EpSquare != SquareNone {
		child.Key ^= epFileKeys[File(p.EpSquare)]
	}
}

// SameBoard reports whether two positions repeat each other for the
// purpose of draw detection (clocks excluded).
func (p *Position) SameBoard(other *Position) bool {
	return p.Pieces == other.Pieces &&
		p.Colors == other.Colors &&
		p.Side == other.Side &&
		p.Castling == other.Castling &&
		p.EpSquare == other.EpSquare
}

func parsePieceRune(ch rune) (pt int, c Color) {
	c = Black
	if unicode.IsUpper(ch) {
		c = White
	}
	var i = strings.IndexRune("pnbrqk", unicode.ToLower(ch))
	if i < 0 {
		return Empty, White
	}
	return Pawn + i, c
}

func pieceToRune(pt int, c Color) rune {
	var ch = rune("pnbrqk"[pt-Pawn])
	if c == White {
		ch = unicode.ToUpper(ch)
	}
	return ch
}

// NewPositionFromFEN parses a FEN record. Malformed or illegal board
// encodings are rejected here and never enter search.
func NewPositionFromFEN(fen string) (Position, error) {
	var tokens = strings.Fields(fen)
	if len(tokens) < 4 {
		return Position{}, fmt.Errorf("chess: bad fen %q", fen)
	}

	var p = Position{
		EpSquare: SquareNone,
		LastMove: MoveEmpty,
	}

	var i = 0
	for _, ch := range tokens[0] {
		switch {
		case ch == '/':
		case unicode.IsDigit(ch):
			i += int(ch - '0')
		default:
			var pt, c = parsePieceRune(ch)
			if pt == Empty || i > 63 {
				return Position{}, fmt.Errorf("chess: bad fen %q", fen)
			}
			xorPiece(&p, c, pt, FlipSquare(i))
			i++
		}
	}

	switch tokens[1] {
	case "w":
		p.Side = White
	case "b":
		p.Side = Black
	default:
		return Position{}, fmt.Errorf("chess: bad fen %q", fen)
	}

	if strings.Contains(tokens[2], "K") {
		p.Castling |= WhiteKingSide
	}
	if strings.Contains(tokens[2], "Q") {
		p.Castling |= WhiteQueenSide
	}
	if strings.Contains(tokens[2], "k") {
		p.Castling |= BlackKingSide
	}
	if strings.Contains(tokens[2], "q") {
		p.Castling |= BlackQueenSide
	}

	p.EpSquare = ParseSquare(tokens[3])

	p.Fullmove = 1
	if len(tokens) > 4 {
		var v, err = strconv.Atoi(tokens[4])
		if err != nil || v < 0 {
			return Position{}, fmt.Errorf("chess: bad fen %q", fen)
		}
		p.Rule50 = v
	}
	if len(tokens) > 5 {
		var v, err = strconv.Atoi(tokens[5])
		if err != nil || v < 1 {
			return Position{}, fmt.Errorf("chess: bad fen %q", fen)
		}
		p.Fullmove = v
	}

	if err := p.validate(); err != nil {
		return Position{}, fmt.Errorf("chess: bad fen %q: %w", fen, err)
	}

	p.Key = p.computeKey()
	p.Checkers = p.computeCheckers()
	return p, nil
}

func (p *Position) validate() error {
	for c := White; c <= Black; c++ {
		if PopCount(p.Pieces[King]&p.Colors[c]) != 1 {
			return fmt.Errorf("side %v must have exactly one king", c)
		}
	}
	if p.Pieces[Pawn]&(Rank1Mask|Rank8Mask) != 0 {
		return fmt.Errorf("pawn on back rank")
	}
	if p.EpSquare != SquareNone {
		var wanted = Rank6
		if p.Side == Black {
			wanted = Rank3
		}
		if Rank(p.EpSquare) != wanted {
			return fmt.Errorf("bad en passant square %v", SquareName(p.EpSquare))
		}
	}
	// the side not on move may not be in check
	var waiting = p.Side.Other()
	if p.isAttacked(p.KingSq(waiting), p.Side) {
		return fmt.Errorf("side not to move is in check")
	}
	return nil
}

// String renders the position as a FEN record.
func (p *Position) String() string {
	var sb strings.Builder

	var emptyCount = 0
	for i := 0; i < 64; i++ {
		var sq = FlipSquare(i)
		var pt = p.PieceOn(sq)
		if pt == Empty {
			emptyCount++
		} else {
			if emptyCount != 0 {
				sb.WriteString(strconv.Itoa(emptyCount))
				emptyCount = 0
			}
			var c, _ = p.ColorOn(sq)
			sb.WriteRune(pieceToRune(pt, c))
		}
		if File(sq) == FileH {
			if emptyCount != 0 {
				sb.WriteString(strconv.Itoa(emptyCount))
				emptyCount = 0
			}
			if Rank(sq) != Rank1 {
				sb.WriteString("/")
			}
		}
	}

	sb.WriteString(" ")
	sb.WriteString(p.Side.String())
	sb.WriteString(" ")

	if p.Castling == 0 {
		sb.WriteString("-")
	} else {
		if p.Castling&WhiteKingSide != 0 {
			sb.WriteString("K")
		}
		if p.Castling&WhiteQueenSide != 0 {
			sb.WriteString("Q")
		}
		if p.Castling&BlackKingSide != 0 {
			sb.WriteString("k")
		}
		if p.Castling&BlackQueenSide != 0 {
			sb.WriteString("q")
		}
	}

	sb.WriteString(" ")
	if p.EpSquare == SquareNone {
		sb.WriteString("-")
	} else {
		sb.WriteString(SquareName(p.EpSquare))
	}

	fmt.Fprintf(&sb, " %d %d", p.Rule50, p.Fullmove)
	return sb.String()
}

// Mirror returns the position with colors swapped and the board flipped
// vertically. Evaluation of a position and its mirror must agree.
func (p *Position) Mirror() Position {
	var result = Position{
		Side:     p.Side.Other(),
		Castling: (p.Castling >> 2) | ((p.Castling & 3) << 2),
		EpSquare: SquareNone,
		Rule50:   p.Rule50,
		Fullmove: p.Fullmove,
		LastMove: MoveEmpty,
	}
	for sq := 0; sq < 64; sq++ {
		var pt = p.PieceOn(sq)
		if pt != Empty {
			var c, _ = p.ColorOn(sq)
			xorPiece(&result, c.Other(), pt, FlipSquare(sq))
		}
	}
	if p.EpSquare != SquareNone {
		result.EpSquare = FlipSquare(p.EpSquare)
	}
	result.Key = result.computeKey()
	result.Checkers = result.computeCheckers()
	return result
}
