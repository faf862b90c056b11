package mpc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpcith/ssith/shared"
)

func testParams() Params {
	return Params{Dimension: 16, Parties: 4, ShareMask: ^uint64(0)}
}

func TestBuildRepetition(t *testing.T) {
	r := require.New(t)

	var master shared.Seed
	master[0] = 9
	var iv shared.IV
	p := testParams()

	rep := BuildRepetition(master, iv, p)
	r.Len(rep.MaskBits, p.Dimension)
	r.Len(rep.Seeds, p.Parties)
	r.Len(rep.Openings, p.Parties)
	r.Len(rep.Shares, p.Parties)
	r.Len(rep.Coms, p.Parties)

	for _, b := range rep.MaskBits {
		r.LessOrEqual(b, uint8(1))
	}

	// Shares plus the correction vector recombine to the mask exactly.
	for j := 0; j < p.Dimension; j++ {
		var sum uint64
		for i := 0; i < p.Parties; i++ {
			sum += rep.Shares[i][j]
		}
		sum += rep.Deltas[j]
		r.Equal(uint64(rep.MaskBits[j]), sum)
	}

	// Deterministic in the master seed.
	r.Equal(rep, BuildRepetition(master, iv, p))

	var master2 shared.Seed
	master2[0] = 10
	r.NotEqual(rep.MaskBits, BuildRepetition(master2, iv, p).MaskBits)
}

func TestPartyShareMask(t *testing.T) {
	r := require.New(t)

	var seed shared.Seed
	var iv shared.IV

	p := testParams()
	p.ShareMask = 1<<14 - 1
	for _, s := range PartyShare(seed, iv, p) {
		r.Less(s, uint64(1<<14))
	}
}

func TestMaskWitness(t *testing.T) {
	r := require.New(t)

	witness := shared.Witness{1, 0, 1, 0}
	mask := []uint8{1, 1, 0, 0}
	r.Equal([]uint8{0, 1, 1, 0}, MaskWitness(witness, mask))
}

func TestTargetReconstruction(t *testing.T) {
	r := require.New(t)

	weights := []uint64{3, 5, 7, 2}
	witness := shared.Witness{1, 0, 1, 0}
	var target uint64 = 10

	var master shared.Seed
	master[5] = 1
	var iv shared.IV
	p := testParams()
	p.Dimension = len(weights)

	rep := BuildRepetition(master, iv, p)
	masked := MaskWitness(witness, rep.MaskBits)

	// The public term plus every party's broadcast sums to the target.
	sum := PublicTerm(weights, masked, rep.Deltas)
	for i := 0; i < p.Parties; i++ {
		sum += Broadcast(weights, masked, rep.Shares[i])
	}
	r.Equal(target, sum)
}

func TestTargetReconstructionTruncatedShares(t *testing.T) {
	r := require.New(t)

	weights := []uint64{1 << 40, 1 << 41, 12345, 999}
	witness := shared.Witness{0, 1, 1, 1}
	var target uint64
	for i, w := range weights {
		target += uint64(witness[i]) * w
	}

	var master shared.Seed
	master[7] = 3
	var iv shared.IV
	p := Params{Dimension: len(weights), Parties: 8, ShareMask: 1<<14 - 1}

	rep := BuildRepetition(master, iv, p)
	masked := MaskWitness(witness, rep.MaskBits)

	sum := PublicTerm(weights, masked, rep.Deltas)
	for i := 0; i < p.Parties; i++ {
		sum += Broadcast(weights, masked, rep.Shares[i])
	}
	r.Equal(target, sum)
}
