package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	InputSize  = 64 * 12
	HiddenSize = 256
	Buckets    = 8
)

const (
	weightsMagic   = 0x55_4E_4E_5A // "ZNNU", little endian on disk
	weightsVersion = 1
)

// Weights is one loaded network. The first layer feeds the
// accumulator, the output layer has one head per material bucket.
type Weights struct {
	InputWeights  [InputSize * HiddenSize]int16
	InputBiases   [HiddenSize]int16
	OutputWeights [Buckets * HiddenSize]int16
	OutputBiases  [Buckets]int16
}

// LoadWeights reads a network blob. The file must carry the exact
// topology this binary was compiled for; anything else, a short file
// or trailing bytes all fail hard. A damaged net must never play.
func LoadWeights(f io.Reader) (*Weights, error) {
	var header struct {
		Magic, Version             uint32
		Inputs, Hidden, OutBuckets uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("weights header: %w", err)
	}
	if header.Magic != weightsMagic {
		return nil, fmt.Errorf("weights magic %#x, expected %#x", header.Magic, weightsMagic)
	}
	if header.Version != weightsVersion {
		return nil, fmt.Errorf("weights version %d, expected %d", header.Version, weightsVersion)
	}
	if header.Inputs != InputSize || header.Hidden != HiddenSize || header.OutBuckets != Buckets {
		return nil, fmt.Errorf("weights topology %dx%dx%d, expected %dx%dx%d",
			header.Inputs, header.Hidden, header.OutBuckets,
			InputSize, HiddenSize, Buckets)
	}

	var w = &Weights{}
	for _, section := range []interface{}{
		w.InputWeights[:], w.InputBiases[:], w.OutputWeights[:], w.OutputBiases[:],
	} {
		if err := binary.Read(f, binary.LittleEndian, section); err != nil {
			return nil, fmt.Errorf("weights payload: %w", err)
		}
	}

	var trailer [1]byte
	if _, err := f.Read(trailer[:]); err != io.EOF {
		return nil, fmt.Errorf("weights file has trailing bytes")
	}

	return w, nil
}

func LoadWeightsFile(path string) (*Weights, error) {
	var f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	w, err := LoadWeights(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}
