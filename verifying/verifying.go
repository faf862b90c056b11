package verifying

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mpcith/ssith/config"
	"github.com/mpcith/ssith/internal/mpc"
	"github.com/mpcith/ssith/internal/primitives"
	"github.com/mpcith/ssith/shared"
)

type (
	Config = config.Config
	Proof  = shared.Proof
)

type options struct {
	logger    *zap.Logger
	workers   int
	earlyExit bool
}

type OptionFunc func(*options) error

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithWorkers caps the repetition check worker pool.
func WithWorkers(n int) OptionFunc {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("invalid worker count: %d", n)
		}
		o.workers = n
		return nil
	}
}

// WithoutEarlyExit verifies every repetition even after one failed.
// The verdict is identical; only the amount of wasted work differs.
func WithoutEarlyExit() OptionFunc {
	return func(o *options) error {
		o.earlyExit = false
		return nil
	}
}

func applyOpts(opts ...OptionFunc) (*options, error) {
	o := &options{
		logger:    zap.NewNop(),
		workers:   runtime.NumCPU(),
		earlyExit: true,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Verify is the acceptance predicate over an instance and a proof. It
// returns nil iff every repetition passes every check; any failure,
// structural or cryptographic, surfaces as shared.ErrProofInvalid. It
// is deterministic and never retries.
//
// Verify trusts the challenges recorded in the proof: the executed set
// and each repetition's hidden party index. It is sound only when
// those challenges came from somewhere the prover does not control,
// either this verifier's own randomness in an interactive session
// (rpc.RunVerifier checks the openings against the challenges it
// issued) or an external non-interactive layering over the transcript
// digests.
func Verify(cfg Config, instance *shared.Instance, proof *Proof, opts ...OptionFunc) error {
	o, err := applyOpts(opts...)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if uint(len(instance.Weights)) != cfg.Dimension {
		return fmt.Errorf("%w: expected: %d, given: %d", shared.ErrBadInstanceLength, cfg.Dimension, len(instance.Weights))
	}
	if err := proof.Validate(cfg); err != nil {
		return err
	}

	v := &verifier{
		cfg:      cfg,
		instance: instance,
		proof:    proof,
		params: mpc.Params{
			Dimension: int(cfg.Dimension),
			Parties:   int(cfg.Parties),
			ShareMask: cfg.ShareMask(),
		},
	}

	h1s := make([]shared.Digest, cfg.Prepared)
	hps := make([]shared.Digest, cfg.Executed)

	eg, egCtx := errgroup.WithContext(context.Background())
	eg.SetLimit(o.workers)

	// errgroup cancels egCtx on the first failed repetition; skipping
	// the remaining checks is the early-exit strategy.
	skip := func() bool {
		if !o.earlyExit {
			return false
		}
		select {
		case <-egCtx.Done():
			return true
		default:
			return false
		}
	}

	// Audited repetitions: everything is re-derived from the revealed
	// master seed.
	closedIdx := v.closedIndices()
	for k, e := range closedIdx {
		k, e := k, e
		eg.Go(func() error {
			if skip() {
				return egCtx.Err()
			}
			rep := mpc.BuildRepetition(proof.ClosedSeeds[k], proof.IV, v.params)
			h1s[e] = rep.H1
			return nil
		})
	}

	// Executed repetitions: opened parties are recomputed, the hidden
	// party is trusted through its commitment and broadcast.
	for k, e := range proof.Executed {
		k, e := k, e
		eg.Go(func() error {
			if skip() {
				return egCtx.Err()
			}
			h1, hp, err := v.checkExecuted(k)
			if err != nil {
				return err
			}
			h1s[e] = h1
			hps[k] = hp
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		o.logger.Debug("proof rejected", zap.Error(err))
		return err
	}

	if primitives.Hash2(h1s) != proof.Root {
		return fmt.Errorf("%w: commit root mismatch", shared.ErrProofInvalid)
	}
	if primitives.Hash4(hps) != proof.ShareRoot {
		return fmt.Errorf("%w: execution root mismatch", shared.ErrProofInvalid)
	}

	o.logger.Debug("proof accepted",
		zap.Uint("repetitions", cfg.Prepared),
		zap.Uint("executed", cfg.Executed),
	)
	return nil
}

type verifier struct {
	cfg      Config
	instance *shared.Instance
	proof    *Proof
	params   mpc.Params
}

// closedIndices lists the repetition indices not selected by the first
// challenge, ascending, aligned with proof.ClosedSeeds.
func (v *verifier) closedIndices() []uint32 {
	closed := make([]uint32, 0, v.cfg.Prepared-v.cfg.Executed)
	next := 0
	for e := uint32(0); e < uint32(v.cfg.Prepared); e++ {
		if next < len(v.proof.Executed) && v.proof.Executed[next] == e {
			next++
			continue
		}
		closed = append(closed, e)
	}
	return closed
}

// checkExecuted verifies the k-th executed repetition: commitment
// openings, share recomputation for every opened party, and the global
// reconstruction of the target. It returns the repetition's commit and
// execution digests for the root checks.
func (v *verifier) checkExecuted(k int) (shared.Digest, shared.Digest, error) {
	rep := &v.proof.Reps[k]

	tShares := make([]uint64, v.cfg.Parties)
	tShares[rep.Hidden] = rep.HiddenShare

	sum := mpc.PublicTerm(v.instance.Weights, rep.Masked, rep.DeltaR) + rep.HiddenShare

	opened := 0
	for i := uint32(0); i < uint32(v.cfg.Parties); i++ {
		if i == rep.Hidden {
			continue
		}
		seed := rep.Seeds[opened]
		rho := rep.Openings[opened]
		opened++

		if !primitives.VerifyCommit(seed, rho, rep.Commitments[i]) {
			return shared.Digest{}, shared.Digest{}, fmt.Errorf(
				"%w: commitment mismatch in repetition %d", shared.ErrProofInvalid, v.proof.Executed[k])
		}

		share := mpc.PartyShare(seed, v.proof.IV, v.params)
		t := mpc.Broadcast(v.instance.Weights, rep.Masked, share)
		tShares[i] = t
		sum += t
	}

	if sum != v.instance.Target {
		return shared.Digest{}, shared.Digest{}, fmt.Errorf(
			"%w: target reconstruction failed in repetition %d", shared.ErrProofInvalid, v.proof.Executed[k])
	}

	h1 := primitives.Hash1(rep.DeltaR, rep.Commitments)
	hp := primitives.Hash3(rep.Masked, tShares)
	return h1, hp, nil
}
