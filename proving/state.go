package proving

import (
	"github.com/mpcith/ssith/internal/mpc"
	"github.com/mpcith/ssith/shared"
)

type phase int

const (
	phaseInit phase = iota
	phaseCommitted
	phaseExecuted
	phaseOpened
)

type execution struct {
	masked  []uint8
	tShares []uint64
	hp      shared.Digest
}

// State is the prover's working state for one proof. It owns every
// party view; only the openings the challenge selects ever leave it.
// The accessors return copies and exist for diagnostic dumps; they
// expose secret material and must never feed a verifier.
type State struct {
	phase     phase
	reps      []mpc.Repetition
	root      shared.Digest
	executed  []uint32
	exec      []execution
	closed    []shared.Seed
	shareRoot shared.Digest
}

// NumRepetitions returns the number of prepared repetitions.
func (s *State) NumRepetitions() int { return len(s.reps) }

// Root returns the commit-phase root digest.
func (s *State) Root() shared.Digest { return s.root }

// ShareRoot returns the execution-phase root digest, zero before the
// execution phase ran.
func (s *State) ShareRoot() shared.Digest { return s.shareRoot }

// Executed returns the executed repetition indices, nil before the
// execution phase ran.
func (s *State) Executed() []uint32 {
	return append([]uint32(nil), s.executed...)
}

// MasterSeed returns repetition e's master seed.
func (s *State) MasterSeed(e int) shared.Seed { return s.reps[e].MasterSeed }

// MaskBits returns repetition e's secret mask vector.
func (s *State) MaskBits(e int) []uint8 {
	return append([]uint8(nil), s.reps[e].MaskBits...)
}

// PartySeeds returns repetition e's per-party seeds.
func (s *State) PartySeeds(e int) []shared.Seed {
	return append([]shared.Seed(nil), s.reps[e].Seeds...)
}

// PartyOpenings returns repetition e's commitment opening randomness.
func (s *State) PartyOpenings(e int) []shared.Opening {
	return append([]shared.Opening(nil), s.reps[e].Openings...)
}

// Shares returns repetition e's per-party mask shares.
func (s *State) Shares(e int) [][]uint64 {
	out := make([][]uint64, len(s.reps[e].Shares))
	for i, share := range s.reps[e].Shares {
		out[i] = append([]uint64(nil), share...)
	}
	return out
}

// ShareSum returns the element-wise sum of repetition e's shares.
func (s *State) ShareSum(e int) []uint64 {
	return append([]uint64(nil), s.reps[e].ShareSum...)
}

// Deltas returns repetition e's public share correction vector.
func (s *State) Deltas(e int) []uint64 {
	return append([]uint64(nil), s.reps[e].Deltas...)
}

// Commitments returns repetition e's party commitments.
func (s *State) Commitments(e int) []shared.Commitment {
	return append([]shared.Commitment(nil), s.reps[e].Coms...)
}

// H1 returns repetition e's commit digest.
func (s *State) H1(e int) shared.Digest { return s.reps[e].H1 }

// Dump is a flat, human-readable snapshot of one repetition, built
// from the read-only accessors. The CLI renders it; the core does not
// care how.
type Dump struct {
	Repetition  int
	MasterSeed  shared.Seed
	MaskBits    []uint8
	Seeds       []shared.Seed
	Openings    []shared.Opening
	Shares      [][]uint64
	ShareSum    []uint64
	Deltas      []uint64
	Commitments []shared.Commitment
	H1          shared.Digest
}

// DumpRepetition snapshots repetition e for diagnostics.
func (s *State) DumpRepetition(e int) Dump {
	return Dump{
		Repetition:  e,
		MasterSeed:  s.MasterSeed(e),
		MaskBits:    s.MaskBits(e),
		Seeds:       s.PartySeeds(e),
		Openings:    s.PartyOpenings(e),
		Shares:      s.Shares(e),
		ShareSum:    s.ShareSum(e),
		Deltas:      s.Deltas(e),
		Commitments: s.Commitments(e),
		H1:          s.H1(e),
	}
}
