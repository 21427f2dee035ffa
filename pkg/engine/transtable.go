package engine

import (
	"sync/atomic"

	"github.com/zephyrchess/zephyr/pkg/chess"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

// Entry payload layout inside a single word. The move needs 21 bits,
// the rest fits around it with the score sign-extended from the top.
const (
	ttBoundShift = 21
	ttDepthShift = 23
	ttAgeShift   = 31
	ttScoreShift = 48
)

// A slot is a pair of words written without any lock. The first word
// holds key^data, so a reader that observes words from two different
// writers fails the checksum and treats the slot as empty. A torn
// write therefore costs a cache miss, never a wrong probe.
type transSlot struct {
	check uint64
	data  uint64
}

func packSlotData(depth, score, bound int, move chess.Move, age uint8) uint64 {
	return uint64(move) |
		uint64(bound)<<ttBoundShift |
		uint64(depth)<<ttDepthShift |
		uint64(age)<<ttAgeShift |
		uint64(uint16(int16(score)))<<ttScoreShift
}

func slotDepth(data uint64) int {
	return int(data >> ttDepthShift & 0xff)
}

func slotAge(data uint64) uint8 {
	return uint8(data >> ttAgeShift)
}

type transTable struct {
	megabytes int
	slots     []transSlot
	mask      uint64
	age       uint8
}

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

func newTransTable(megabytes int) *transTable {
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 16)
	return &transTable{
		megabytes: megabytes,
		slots:     make([]transSlot, size),
		mask:      uint64(size - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

func (tt *transTable) IncDate() {
	tt.age++
}

func (tt *transTable) Clear() {
	tt.age = 0
	for i := range tt.slots {
		tt.slots[i] = transSlot{}
	}
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move chess.Move, ok bool) {
	var slot = &tt.slots[key&tt.mask]
	var check = atomic.LoadUint64(&slot.check)
	var data = atomic.LoadUint64(&slot.data)
	if check^data != key {
		return
	}
	move = chess.Move(data & 0x1fffff)
	bound = int(data >> ttBoundShift & 3)
	depth = slotDepth(data)
	score = int(int16(data >> ttScoreShift))
	ok = true
	return
}

// Update overwrites the slot when the new result searched at least as
// deep as the stored one, or when the stored one is from an earlier
// search generation.
func (tt *transTable) Update(key uint64, depth, score, bound int, move chess.Move) {
	var slot = &tt.slots[key&tt.mask]
	var prior = atomic.LoadUint64(&slot.data)
	if depth < slotDepth(prior) && slotAge(prior) == tt.age {
		return
	}
	var data = packSlotData(depth, score, bound, move, tt.age)
	atomic.StoreUint64(&slot.data, data)
	atomic.StoreUint64(&slot.check, key^data)
}
