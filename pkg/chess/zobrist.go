package chess

import "math/rand"

// Zobrist keys. Built once from a fixed seed so that hashes are stable
// across runs and processes.
var (
	pieceKeys    [2][King + 1][64]uint64
	castlingKeys [16]uint64
	epFileKeys   [8]uint64
	sideKey      uint64
)

func init() {
	var r = rand.New(rand.NewSource(1070372))

	for c := range pieceKeys {
		for pt := Pawn; pt <= King; pt++ {
			for sq := 0; sq < 64; sq++ {
				pieceKeys[c][pt][sq] = r.Uint64()
			}
		}
	}

	var rights [4]uint64
	for i := range rights {
		rights[i] = r.Uint64()
	}
	for i := range castlingKeys {
		for j := 0; j < 4; j++ {
			if i&(1<<uint(j)) != 0 {
				castlingKeys[i] ^= rights[j]
			}
		}
	}

	for i := range epFileKeys {
		epFileKeys[i] = r.Uint64()
	}
	sideKey = r.Uint64()
}

func pieceKey(c Color, pt, sq int) uint64 {
	return pieceKeys[c][pt][sq]
}

// computeKey derives the zobrist key from the full board content. The
// incrementally maintained Position.Key must always equal it.
func (p *Position) computeKey() uint64 {
	var result = castlingKeys[p.Castling]
	if p.Side == White {
		result ^= sideKey
	}
	if p.EpSquare != SquareNone {
		result ^= epFileKeys[File(p.EpSquare)]
	}
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for b := p.Pieces[pt] & p.Colors[c]; b != 0; b &= b - 1 {
				result ^= pieceKey(c, pt, FirstOne(b))
			}
		}
	}
	return result
}
