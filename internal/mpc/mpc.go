// Package mpc implements the emulated multi-party computation of the
// subset-sum check. The prover and the verifier both derive party
// views through this package, so the sharing and combination rules
// cannot drift apart.
//
// The scheme: a repetition master seed expands into a binary mask
// vector r and, through a GGM tree, into one (seed, opening) pair per
// party. Each party's seed expands into an additive share of r over
// Z_2^64; the public correction vector Δr makes the shares recombine
// to r exactly. For an executed repetition the prover publishes the
// masked witness x̃ = w ⊕ r, and every party broadcasts
//
//	t_i = Σ_j weight_j · (1 − 2·x̃_j) · share_ij  (mod 2^64).
//
// Since x_j = x̃_j + (1 − 2·x̃_j)·r_j equals w_j for bits, the sum of
// all broadcasts plus the public term recombines to the target iff the
// witness satisfies the instance.
package mpc

import (
	"github.com/mpcith/ssith/internal/primitives"
	"github.com/mpcith/ssith/shared"
)

// Params is the slice of the protocol configuration the party-view
// derivation depends on.
type Params struct {
	Dimension int
	Parties   int
	ShareMask uint64
}

// Repetition is the full prover-side state of one repetition: the
// secret mask, every party's seed-derived randomness and share, the
// public correction vector and the party commitments.
type Repetition struct {
	MasterSeed shared.Seed
	MaskBits   []uint8
	Seeds      []shared.Seed
	Openings   []shared.Opening
	Shares     [][]uint64
	ShareSum   []uint64
	Deltas     []uint64
	Coms       []shared.Commitment
	H1         shared.Digest
}

// BuildRepetition derives one repetition deterministically from its
// master seed. All parties are computed uniformly; nothing here
// depends on which party a later challenge hides.
func BuildRepetition(master shared.Seed, iv shared.IV, p Params) Repetition {
	maskBits := primitives.ExpandBits(master, iv, primitives.MaskOffset, p.Dimension)

	leaves := primitives.SeedTree(master, iv, 2*p.Parties)
	seeds := make([]shared.Seed, p.Parties)
	openings := make([]shared.Opening, p.Parties)
	for i := 0; i < p.Parties; i++ {
		seeds[i] = leaves[2*i]
		openings[i] = shared.Opening(leaves[2*i+1])
	}

	shares := make([][]uint64, p.Parties)
	coms := make([]shared.Commitment, p.Parties)
	for i := range shares {
		shares[i] = PartyShare(seeds[i], iv, p)
		coms[i] = primitives.Commit(seeds[i], openings[i])
	}

	shareSum := make([]uint64, p.Dimension)
	for _, share := range shares {
		for j, s := range share {
			shareSum[j] += s
		}
	}

	deltas := make([]uint64, p.Dimension)
	for j := range deltas {
		deltas[j] = uint64(maskBits[j]) - shareSum[j]
	}

	return Repetition{
		MasterSeed: master,
		MaskBits:   maskBits,
		Seeds:      seeds,
		Openings:   openings,
		Shares:     shares,
		ShareSum:   shareSum,
		Deltas:     deltas,
		Coms:       coms,
		H1:         primitives.Hash1(deltas, coms),
	}
}

// PartyShare expands one party's additive mask share from its seed.
func PartyShare(seed shared.Seed, iv shared.IV, p Params) []uint64 {
	share := primitives.ExpandWords(seed, iv, primitives.ShareOffset, p.Dimension)
	if p.ShareMask != ^uint64(0) {
		for j := range share {
			share[j] &= p.ShareMask
		}
	}
	return share
}

// MaskWitness computes the published masked witness x̃ = w ⊕ r.
func MaskWitness(witness shared.Witness, maskBits []uint8) []uint8 {
	masked := make([]uint8, len(witness))
	for j := range masked {
		masked[j] = witness[j] ^ maskBits[j]
	}
	return masked
}

// Broadcast computes one party's broadcast share of the target.
func Broadcast(weights []uint64, masked []uint8, share []uint64) uint64 {
	var t uint64
	for j, w := range weights {
		sign := uint64(1) - 2*uint64(masked[j])
		t += w * sign * share[j]
	}
	return t
}

// PublicTerm computes the challenge-independent part of the target
// reconstruction, determined by the masked witness and the public
// correction vector.
func PublicTerm(weights []uint64, masked []uint8, deltas []uint64) uint64 {
	var t uint64
	for j, w := range weights {
		sign := uint64(1) - 2*uint64(masked[j])
		t += w * (uint64(masked[j]) + sign*deltas[j])
	}
	return t
}
