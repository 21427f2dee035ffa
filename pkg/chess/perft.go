package chess

// Perft counts the leaf nodes of the legal move tree to the given
// depth. Reference values for known positions pin down move-generation
// correctness.
func Perft(p *Position, depth int) int {
	if depth <= 0 {
		return 1
	}
	var buffer [MaxMoves]Move
	var child Position
	var result = 0
	for _, m := range GenerateMoves(buffer[:], p) {
		if p.MakeMove(m, &child) {
			if depth > 1 {
				result += Perft(&child, depth-1)
			} else {
				result++
			}
		}
	}
	return result
}
