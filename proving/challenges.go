package proving

import (
	"fmt"
	"io"

	"github.com/mpcith/ssith/config"
	"github.com/mpcith/ssith/internal/primitives"
	"github.com/mpcith/ssith/shared"
)

// ChallengeSource supplies the two challenges Generate needs. The
// interactive protocol bypasses it entirely: there the verifier sends
// challenges and the caller feeds them to Execute and Open directly.
type ChallengeSource interface {
	// ExecutedSet picks which prepared repetitions to execute, given
	// the commit-phase root. Indices are strictly ascending.
	ExecutedSet(root shared.Digest, cfg config.Config) ([]uint32, error)

	// HiddenParties picks the party to keep hidden in each executed
	// repetition, given the execution-phase root and the revealed
	// master seeds.
	HiddenParties(shareRoot shared.Digest, closed []shared.Seed, cfg config.Config) ([]uint32, error)
}

// TranscriptChallenges derives challenges deterministically from the
// transcript digests through a keyed DRBG. This is the hook a
// non-interactive layering queries in place of verifier randomness;
// the core itself makes no Fiat-Shamir security claim.
type TranscriptChallenges struct{}

func (TranscriptChallenges) ExecutedSet(root shared.Digest, cfg config.Config) ([]uint32, error) {
	drbg := primitives.NewDRBG(primitives.ChallengeKey1(root))
	return primitives.SampleSubset(drbg, uint32(cfg.Prepared), uint32(cfg.Executed))
}

func (TranscriptChallenges) HiddenParties(shareRoot shared.Digest, closed []shared.Seed, cfg config.Config) ([]uint32, error) {
	drbg := primitives.NewDRBG(primitives.ChallengeKey2(shareRoot, closed))
	return primitives.SampleIndices(drbg, uint32(cfg.Parties), uint32(cfg.Executed))
}

// RandomChallenges draws challenges from an explicit randomness
// handle, the way an interactive verifier would.
type RandomChallenges struct {
	Rand io.Reader
}

func (c RandomChallenges) ExecutedSet(_ shared.Digest, cfg config.Config) ([]uint32, error) {
	subset, err := primitives.SampleSubset(c.Rand, uint32(cfg.Prepared), uint32(cfg.Executed))
	if err != nil {
		return nil, fmt.Errorf("sampling executed set: %w", err)
	}
	return subset, nil
}

func (c RandomChallenges) HiddenParties(_ shared.Digest, _ []shared.Seed, cfg config.Config) ([]uint32, error) {
	hidden, err := primitives.SampleIndices(c.Rand, uint32(cfg.Parties), uint32(cfg.Executed))
	if err != nil {
		return nil, fmt.Errorf("sampling hidden parties: %w", err)
	}
	return hidden, nil
}
