// Package rpc implements the interactive form of the protocol: typed
// prover/verifier messages, channel-based runners for in-process use,
// and a length-prefixed XDR codec for running the same exchange over a
// network connection.
package rpc

import (
	"github.com/mpcith/ssith/shared"
)

// Message kinds. A message arriving out of order fails the session
// with shared.ErrProtocol.
const (
	KindCommit uint32 = iota + 1
	KindExecute
	KindOpen
	KindChallengeExecuted
	KindChallengeHidden
	KindVerdict
)

// ProverMsg is any prover-to-verifier message; Kind selects which
// fields are meaningful.
type ProverMsg struct {
	Kind uint32

	// KindCommit
	IV   shared.IV
	Root shared.Digest

	// KindExecute
	ShareRoot   shared.Digest
	ClosedSeeds []shared.Seed

	// KindOpen
	Reps []shared.RepOpening
}

// VerifierMsg is any verifier-to-prover message.
type VerifierMsg struct {
	Kind uint32

	// KindChallengeExecuted / KindChallengeHidden
	Indices []uint32

	// KindVerdict
	Accepted bool
}
