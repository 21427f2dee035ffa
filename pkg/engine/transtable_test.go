package engine

import (
	"sync/atomic"
	"testing"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

func TestTransTableRoundTrip(t *testing.T) {
	var tt = newTransTable(1)
	tt.IncDate()

	const key = 0x123456789abcdef0
	var move = chess.Move(0x1ffff)
	tt.Update(key, 7, 40, boundExact, move)

	depth, score, bound, gotMove, ok := tt.Read(key)
	if !ok {
		t.Fatal("stored entry not found")
	}
	if depth != 7 || score != 40 || bound != boundExact || gotMove != move {
		t.Fatal(depth, score, bound, gotMove)
	}

	// a key differing only above the index bits still fails the
	// checksum of the colliding slot
	if _, _, _, _, ok := tt.Read(key ^ (uint64(1) << 40)); ok {
		t.Fatal("verification passed for a foreign key")
	}
}

func TestTransTableNegativeScore(t *testing.T) {
	var tt = newTransTable(1)
	tt.IncDate()

	const key = 0x9e3779b97f4a7c15
	tt.Update(key, 3, -250, boundUpper, chess.MoveEmpty)
	if _, score, _, _, ok := tt.Read(key); !ok || score != -250 {
		t.Fatalf("negative score distorted: %v", score)
	}
}

func TestTransTableReplacement(t *testing.T) {
	var tt = newTransTable(1)
	tt.IncDate()

	const key = 0xfedcba9876543210
	tt.Update(key, 10, 1, boundExact, chess.MoveEmpty)

	// a shallower result from the same generation does not displace a
	// deeper one
	tt.Update(key, 2, 2, boundUpper, chess.MoveEmpty)
	if _, score, _, _, ok := tt.Read(key); !ok || score != 1 {
		t.Fatal("deep entry lost to a shallow one")
	}

	// an equal-depth result does
	tt.Update(key, 10, 3, boundLower, chess.MoveEmpty)
	if _, score, _, _, ok := tt.Read(key); !ok || score != 3 {
		t.Fatal("equal-depth entry not stored")
	}

	// after a generation bump any depth wins the slot
	tt.IncDate()
	tt.Update(key, 1, 4, boundUpper, chess.MoveEmpty)
	if _, score, _, _, ok := tt.Read(key); !ok || score != 4 {
		t.Fatal("stale entry not displaced")
	}
}

func TestTransTableTornEntryIsAMiss(t *testing.T) {
	var tt = newTransTable(1)
	tt.IncDate()

	const key = 0x0123456789abcdef
	tt.Update(key, 5, 17, boundExact, chess.MoveEmpty)

	// simulate an interleaved write to the same slot: the payload word
	// no longer matches the checksum, so the probe must miss
	var slot = &tt.slots[key&tt.mask]
	atomic.StoreUint64(&slot.data, atomic.LoadUint64(&slot.data)^0xff00)
	if _, _, _, _, ok := tt.Read(key); ok {
		t.Fatal("garbled entry accepted")
	}
}

func TestTransTableMateScores(t *testing.T) {
	// a mate found at height 3 must probe back as the same distance
	// from any height
	var score = winIn(3)
	var stored = valueToTT(score, 3)

	const key = 0xc0ffee0000000042

	var tt = newTransTable(1)
	tt.IncDate()
	tt.Update(key, 5, stored, boundExact, chess.MoveEmpty)

	_, got, _, _, ok := tt.Read(key)
	if !ok {
		t.Fatal("stored entry not found")
	}
	if valueFromTT(got, 3) != score {
		t.Fatalf("mate score distorted: want %v got %v", score, valueFromTT(got, 3))
	}
	if valueFromTT(got, 5) != winIn(5) {
		t.Fatalf("mate distance not relative to the probing height")
	}
}

func TestTransTableClear(t *testing.T) {
	const key = 0xdeadbeef00000007
	var tt = newTransTable(1)
	tt.IncDate()
	tt.Update(key, 3, 25, boundLower, chess.MoveEmpty)
	tt.Clear()
	if _, _, _, _, ok := tt.Read(key); ok {
		t.Fatal("entry survived Clear")
	}
}

func TestRoundPowerOfTwo(t *testing.T) {
	for _, test := range []struct{ in, out int }{
		{1, 1}, {2, 2}, {3, 2}, {4, 4}, {1000, 512}, {65536, 65536},
	} {
		if got := roundPowerOfTwo(test.in); got != test.out {
			t.Errorf("roundPowerOfTwo(%v) = %v, want %v", test.in, got, test.out)
		}
	}
}
