package shared

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpcith/ssith/config"
)

func TestSanityCheck(t *testing.T) {
	r := require.New(t)

	cfg := config.DefaultConfig()
	cfg.Dimension = 4

	witness := Witness{1, 0, 1, 0}
	instance := NewInstance([]uint64{3, 5, 7, 2}, 10)
	r.NoError(SanityCheck(witness, instance, cfg))

	err := SanityCheck(Witness{1, 0, 1}, instance, cfg)
	r.ErrorIs(err, ErrBadWitnessLength)

	err = SanityCheck(witness, NewInstance([]uint64{3, 5, 7}, 10), cfg)
	r.ErrorIs(err, ErrBadInstanceLength)

	err = SanityCheck(Witness{1, 0, 2, 0}, instance, cfg)
	r.ErrorIs(err, ErrBadWitnessOrInstance)

	err = SanityCheck(witness, NewInstance([]uint64{3, 5, 7, 2}, 11), cfg)
	r.ErrorIs(err, ErrBadWitnessOrInstance)
}

func TestSanityCheckWrapping(t *testing.T) {
	r := require.New(t)

	cfg := config.DefaultConfig()
	cfg.Dimension = 2

	// The subset sum wraps mod 2^64.
	max := ^uint64(0)
	instance := NewInstance([]uint64{max, 3}, 2)
	r.NoError(SanityCheck(Witness{1, 1}, instance, cfg))
}

func TestNewRandomPair(t *testing.T) {
	r := require.New(t)

	cfg := config.DefaultConfig()
	witness, instance, err := NewRandomPair(rand.Reader, cfg)
	r.NoError(err)
	r.NoError(SanityCheck(witness, instance, cfg))
}

func TestNewInstanceCopies(t *testing.T) {
	r := require.New(t)

	weights := []uint64{1, 2, 3}
	instance := NewInstance(weights, 6)
	weights[0] = 99
	r.Equal(uint64(1), instance.Weights[0])
}

func TestAppendCanonical(t *testing.T) {
	r := require.New(t)

	a := NewInstance([]uint64{1, 2}, 3).AppendCanonical(nil)
	b := NewInstance([]uint64{1}, 2).AppendCanonical(nil)
	b = append(b, make([]byte, 8)...)

	// Same byte length, different framing.
	r.Len(b, len(a))
	r.NotEqual(a, b)
}
