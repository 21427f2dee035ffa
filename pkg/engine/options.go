package engine

import (
	"math"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

// Options are the search feature toggles. All of them default to on;
// the switches exist for A/B testing between engine builds.
type Options struct {
	AspirationWindows bool
	NullMovePruning   bool
	ReverseFutility   bool
	Probcut           bool
	SingularExt       bool
	CheckExt          bool
	Lmp               bool
	Futility          bool
	See               bool
	reductions        [64][64]int
}

func NewOptions() Options {
	var result = Options{
		AspirationWindows: true,
		NullMovePruning:   true,
		ReverseFutility:   true,
		Probcut:           true,
		SingularExt:       true,
		CheckExt:          true,
		Lmp:               true,
		Futility:          true,
		See:               true,
	}
	result.initLmr(lmrMult)
	return result
}

func (o *Options) Lmr(d, m int) int {
	return o.reductions[chess.Min(d, 63)][chess.Min(m, 63)]
}

func (o *Options) initLmr(f func(d, m float64) float64) {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			o.reductions[d][m] = int(f(float64(d), float64(m)))
		}
	}
}

// The reduction grows with the log of both the remaining depth and
// the move number, so late moves deep in the tree shed the most.
func lmrMult(d, m float64) float64 {
	return 0.75 + math.Log(d)*math.Log(m)/2.25
}
