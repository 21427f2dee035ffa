package nnue

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

func randomWeights(seed int64) *Weights {
	var rnd = rand.New(rand.NewSource(seed))
	var w = &Weights{}
	// small values keep the int16 accumulator far from overflow
	for i := range w.InputWeights {
		w.InputWeights[i] = int16(rnd.Intn(65) - 32)
	}
	for i := range w.InputBiases {
		w.InputBiases[i] = int16(rnd.Intn(65) - 32)
	}
	for i := range w.OutputWeights {
		w.OutputWeights[i] = int16(rnd.Intn(65) - 32)
	}
	for i := range w.OutputBiases {
		w.OutputBiases[i] = int16(rnd.Intn(65) - 32)
	}
	return w
}

// The incremental accumulator must stay exactly equal to a full
// refresh along any move path, including captures, promotions,
// castling and en passant.
func TestIncrementalMatchesRefresh(t *testing.T) {
	var w = randomWeights(1)
	var incremental = NewEvaluationService(w)
	var fresh = NewEvaluationService(w)
	var rnd = rand.New(rand.NewSource(2))

	for game := 0; game < 20; game++ {
		var p, err = chess.NewPositionFromFEN(chess.InitialPositionFEN)
		if err != nil {
			t.Fatal(err)
		}
		incremental.Init(&p)
		for ply := 0; ply < 60; ply++ {
			var ml = p.GenerateLegalMoves()
			if len(ml) == 0 {
				break
			}
			var m = ml[rnd.Intn(len(ml))]
			var child chess.Position
			p.MakeMove(m, &child)
			incremental.MakeMove(&p, m)

			if got, want := incremental.EvaluateQuick(&child), fresh.Evaluate(&child); got != want {
				t.Fatalf("after %v in %v: incremental %v, refresh %v", m, p.String(), got, want)
			}

			if rnd.Intn(4) == 0 {
				// pop and redo, the snapshot must be intact
				incremental.UnmakeMove()
				if got, want := incremental.EvaluateQuick(&p), fresh.Evaluate(&p); got != want {
					t.Fatalf("after unmake in %v: incremental %v, refresh %v", p.String(), got, want)
				}
				incremental.MakeMove(&p, m)
			}
			p = child
		}
	}
}

func TestNullMoveKeepsAccumulator(t *testing.T) {
	var w = randomWeights(3)
	var e = NewEvaluationService(w)
	var p, err = chess.NewPositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	e.Init(&p)
	var child chess.Position
	p.MakeNullMove(&child)
	e.MakeMove(&p, chess.MoveEmpty)
	if got, want := e.EvaluateQuick(&child), NewEvaluationService(w).Evaluate(&child); got != want {
		t.Fatalf("null move: incremental %v, refresh %v", got, want)
	}
	e.UnmakeMove()
	if got, want := e.EvaluateQuick(&p), NewEvaluationService(w).Evaluate(&p); got != want {
		t.Fatalf("after null unmake: incremental %v, refresh %v", got, want)
	}
}

func encodeWeights(w *Weights) []byte {
	var buf bytes.Buffer
	var header = []uint32{weightsMagic, weightsVersion, InputSize, HiddenSize, Buckets}
	binary.Write(&buf, binary.LittleEndian, header)
	binary.Write(&buf, binary.LittleEndian, w.InputWeights[:])
	binary.Write(&buf, binary.LittleEndian, w.InputBiases[:])
	binary.Write(&buf, binary.LittleEndian, w.OutputWeights[:])
	binary.Write(&buf, binary.LittleEndian, w.OutputBiases[:])
	return buf.Bytes()
}

func TestLoadWeightsRoundTrip(t *testing.T) {
	var w = randomWeights(4)
	var got, err = LoadWeights(bytes.NewReader(encodeWeights(w)))
	if err != nil {
		t.Fatal(err)
	}
	if *got != *w {
		t.Fatal("weights distorted by the load")
	}
}

func TestLoadWeightsRejectsDamage(t *testing.T) {
	var blob = encodeWeights(randomWeights(5))

	var bad = map[string][]byte{
		"empty":     {},
		"short":     blob[:len(blob)/2],
		"truncated": blob[:len(blob)-1],
		"trailing":  append(append([]byte{}, blob...), 0),
	}
	var wrongMagic = append([]byte{}, blob...)
	wrongMagic[0] ^= 1
	bad["magic"] = wrongMagic
	var wrongVersion = append([]byte{}, blob...)
	wrongVersion[4] ^= 1
	bad["version"] = wrongVersion
	var wrongTopology = append([]byte{}, blob...)
	wrongTopology[8] ^= 1
	bad["topology"] = wrongTopology

	for name, data := range bad {
		if _, err := LoadWeights(bytes.NewReader(data)); err == nil {
			t.Errorf("%v: corrupted blob accepted", name)
		}
	}
}
