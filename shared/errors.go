package shared

import "errors"

var (
	ErrBadWitnessLength     = errors.New("bad witness length")
	ErrBadInstanceLength    = errors.New("bad instance length")
	ErrBadWitnessOrInstance = errors.New("witness does not satisfy the instance")
	ErrBadChallenge         = errors.New("bad challenge")

	// ErrProofInvalid covers both structurally malformed and
	// cryptographically rejected proofs. The two are deliberately not
	// distinguishable from the error value.
	ErrProofInvalid = errors.New("proof is invalid")

	// ErrProtocol is returned by the interactive runners on an
	// out-of-order or unknown message.
	ErrProtocol = errors.New("protocol error, unexpected message")

	ErrProofNotExist = errors.New("proof doesn't exist")
)
