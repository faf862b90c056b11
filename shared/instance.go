package shared

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mpcith/ssith/config"
)

// Instance is the public description of a subset-sum problem: an
// ordered sequence of weights and a target value, both over Z_2^64.
// Instances are immutable once constructed.
type Instance struct {
	Weights []uint64
	Target  uint64
}

func NewInstance(weights []uint64, target uint64) *Instance {
	w := make([]uint64, len(weights))
	copy(w, weights)
	return &Instance{Weights: w, Target: target}
}

// Witness is the secret selection vector. Every element is 0 or 1; the
// selected weights sum to the instance target mod 2^64. A witness is
// never serialized into a proof.
type Witness []uint8

// SanityCheck validates the shape of a witness-instance pair against
// the parameter set and recomputes the subset sum. It rejects before
// any cryptographic work is done.
func SanityCheck(witness Witness, instance *Instance, cfg config.Config) error {
	if uint(len(witness)) != cfg.Dimension {
		return fmt.Errorf("%w: expected: %d, given: %d", ErrBadWitnessLength, cfg.Dimension, len(witness))
	}
	if uint(len(instance.Weights)) != cfg.Dimension {
		return fmt.Errorf("%w: expected: %d, given: %d", ErrBadInstanceLength, cfg.Dimension, len(instance.Weights))
	}
	for i, b := range witness {
		if b > 1 {
			return fmt.Errorf("%w: witness element %d is not a bit", ErrBadWitnessOrInstance, i)
		}
	}

	var sum uint64
	for i, w := range instance.Weights {
		sum += uint64(witness[i]) * w
	}
	if sum != instance.Target {
		return ErrBadWitnessOrInstance
	}
	return nil
}

// NewRandomPair draws a random witness and a matching instance from
// the given randomness source. Intended for tests and the demo harness.
func NewRandomPair(rand io.Reader, cfg config.Config) (Witness, *Instance, error) {
	witness := make(Witness, cfg.Dimension)
	if _, err := io.ReadFull(rand, witness); err != nil {
		return nil, nil, fmt.Errorf("drawing witness: %w", err)
	}
	for i := range witness {
		witness[i] &= 1
	}

	weights := make([]uint64, cfg.Dimension)
	buf := make([]byte, 8)
	for i := range weights {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return nil, nil, fmt.Errorf("drawing weights: %w", err)
		}
		weights[i] = binary.LittleEndian.Uint64(buf)
	}

	var target uint64
	for i, w := range weights {
		target += uint64(witness[i]) * w
	}
	return witness, &Instance{Weights: weights, Target: target}, nil
}

// AppendCanonical appends the canonical encoding of the instance:
// weight count and every value in little-endian order. The encoding is
// stable; it feeds IV derivation and must never change shape.
func (inst *Instance) AppendCanonical(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(inst.Weights)))
	for _, w := range inst.Weights {
		dst = binary.LittleEndian.AppendUint64(dst, w)
	}
	return binary.LittleEndian.AppendUint64(dst, inst.Target)
}

// AppendCanonical appends the canonical encoding of the witness:
// length followed by the selection bits.
func (w Witness) AppendCanonical(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(w)))
	return append(dst, w...)
}
