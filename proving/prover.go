package proving

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
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

// Prover drives proof generation for one witness-instance pair. A
// prover is constructed over validated inputs and walks each proof
// through the commit, execute and open phases; repetitions inside a
// phase are independent and computed on a worker pool.
type Prover struct {
	cfg      Config
	instance *shared.Instance
	witness  shared.Witness
	iv       shared.IV

	logger     *zap.Logger
	randomness io.Reader
	workers    int
	challenges ChallengeSource
}

type OptionFunc func(*Prover) error

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(p *Prover) error {
		p.logger = logger
		return nil
	}
}

// WithRandomness sets the source the master seed is drawn from. The
// default is crypto/rand. A fixed reader makes proof generation fully
// deterministic.
func WithRandomness(r io.Reader) OptionFunc {
	return func(p *Prover) error {
		p.randomness = r
		return nil
	}
}

// WithWorkers caps the repetition worker pool.
func WithWorkers(n int) OptionFunc {
	return func(p *Prover) error {
		if n < 1 {
			return fmt.Errorf("invalid worker count: %d", n)
		}
		p.workers = n
		return nil
	}
}

// WithChallengeSource sets where Generate takes its challenges from.
// The default derives them from the transcript digests; an interactive
// caller supplies challenges directly to Execute and Open instead.
func WithChallengeSource(src ChallengeSource) OptionFunc {
	return func(p *Prover) error {
		p.challenges = src
		return nil
	}
}

// NewProver validates the parameter set and the witness-instance pair
// and builds a prover over them. Validation failures are fatal; an
// invalid witness never reaches cryptographic work.
func NewProver(cfg Config, instance *shared.Instance, witness shared.Witness, opts ...OptionFunc) (*Prover, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := shared.SanityCheck(witness, instance, cfg); err != nil {
		return nil, err
	}

	p := &Prover{
		cfg:        cfg,
		instance:   instance,
		witness:    witness,
		iv:         primitives.DeriveIV(witness, instance),
		logger:     zap.NewNop(),
		randomness: rand.Reader,
		workers:    runtime.NumCPU(),
		challenges: TranscriptChallenges{},
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// IV returns the per-proof initialization vector.
func (p *Prover) IV() shared.IV { return p.iv }

// Commit runs the commit phase: it draws a fresh master seed, prepares
// all repetitions in parallel and returns the state together with the
// commit-phase root the first challenge is drawn against.
func (p *Prover) Commit(ctx context.Context) (*State, shared.Digest, error) {
	var mseed shared.Seed
	if _, err := io.ReadFull(p.randomness, mseed[:]); err != nil {
		return nil, shared.Digest{}, fmt.Errorf("drawing master seed: %w", err)
	}

	masters := primitives.SeedTree(mseed, p.iv, int(p.cfg.Prepared))
	params := mpc.Params{
		Dimension: int(p.cfg.Dimension),
		Parties:   int(p.cfg.Parties),
		ShareMask: p.cfg.ShareMask(),
	}

	state := &State{
		phase: phaseCommitted,
		reps:  make([]mpc.Repetition, p.cfg.Prepared),
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)
	for e := range state.reps {
		e := e
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			state.reps[e] = mpc.BuildRepetition(masters[e], p.iv, params)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, shared.Digest{}, err
	}

	h1s := make([]shared.Digest, len(state.reps))
	for e := range state.reps {
		h1s[e] = state.reps[e].H1
	}
	state.root = primitives.Hash2(h1s)

	p.logger.Debug("commit phase complete",
		zap.Uint("repetitions", p.cfg.Prepared),
		zap.Uint("parties", p.cfg.Parties),
	)
	return state, state.root, nil
}

// Execute runs the execution phase against the first challenge: the
// set of repetition indices to execute. It computes the masked witness
// and every party's broadcast for each executed repetition and returns
// the execution-phase root together with the master seeds of all
// unexecuted repetitions.
func (p *Prover) Execute(state *State, executed []uint32) (shared.Digest, []shared.Seed, error) {
	if state.phase != phaseCommitted {
		return shared.Digest{}, nil, fmt.Errorf("%w: execute before commit", shared.ErrProtocol)
	}
	if err := p.checkExecutedSet(executed); err != nil {
		return shared.Digest{}, nil, err
	}

	state.executed = append([]uint32(nil), executed...)
	state.exec = make([]execution, len(executed))

	hps := make([]shared.Digest, len(executed))
	for k, e := range executed {
		rep := &state.reps[e]

		masked := mpc.MaskWitness(p.witness, rep.MaskBits)
		tShares := make([]uint64, p.cfg.Parties)
		for i := range tShares {
			tShares[i] = mpc.Broadcast(p.instance.Weights, masked, rep.Shares[i])
		}

		hps[k] = primitives.Hash3(masked, tShares)
		state.exec[k] = execution{masked: masked, tShares: tShares, hp: hps[k]}
	}
	state.shareRoot = primitives.Hash4(hps)

	state.closed = make([]shared.Seed, 0, p.cfg.Prepared-p.cfg.Executed)
	next := 0
	for e := uint32(0); e < uint32(p.cfg.Prepared); e++ {
		if next < len(executed) && executed[next] == e {
			next++
			continue
		}
		state.closed = append(state.closed, state.reps[e].MasterSeed)
	}

	state.phase = phaseExecuted
	p.logger.Debug("execution phase complete", zap.Int("executed", len(executed)))
	return state.shareRoot, state.closed, nil
}

// Open runs the opening phase against the second challenge: one hidden
// party index per executed repetition. Every other party's seed and
// opening randomness is revealed; the hidden party contributes only
// its commitment and broadcast value.
func (p *Prover) Open(state *State, hidden []uint32) ([]shared.RepOpening, error) {
	if state.phase != phaseExecuted {
		return nil, fmt.Errorf("%w: open before execute", shared.ErrProtocol)
	}
	if len(hidden) != len(state.executed) {
		return nil, fmt.Errorf("%w: hidden party count: expected: %d, given: %d",
			shared.ErrBadChallenge, len(state.executed), len(hidden))
	}
	for _, l := range hidden {
		if uint(l) >= p.cfg.Parties {
			return nil, fmt.Errorf("%w: hidden party index %d out of range", shared.ErrBadChallenge, l)
		}
	}

	openings := make([]shared.RepOpening, len(state.executed))
	for k, e := range state.executed {
		rep := &state.reps[e]
		exec := &state.exec[k]
		l := hidden[k]

		opened := shared.RepOpening{
			Commitments: append([]shared.Commitment(nil), rep.Coms...),
			Hidden:      l,
			Seeds:       make([]shared.Seed, 0, p.cfg.Parties-1),
			Openings:    make([]shared.Opening, 0, p.cfg.Parties-1),
			HiddenShare: exec.tShares[l],
			Masked:      append([]uint8(nil), exec.masked...),
			DeltaR:      append([]uint64(nil), rep.Deltas...),
		}
		for i := uint32(0); i < uint32(p.cfg.Parties); i++ {
			if i == l {
				continue
			}
			opened.Seeds = append(opened.Seeds, rep.Seeds[i])
			opened.Openings = append(opened.Openings, rep.Openings[i])
		}
		openings[k] = opened
	}

	state.phase = phaseOpened
	p.logger.Debug("opening phase complete")
	return openings, nil
}

// Generate drives all three phases with challenges taken from the
// configured source and finalizes the proof. Repetition openings are
// appended in challenge order; the unopened party views never leave
// the state object.
func (p *Prover) Generate(ctx context.Context) (*Proof, error) {
	state, root, err := p.Commit(ctx)
	if err != nil {
		return nil, err
	}

	executed, err := p.challenges.ExecutedSet(root, p.cfg)
	if err != nil {
		return nil, err
	}
	shareRoot, closed, err := p.Execute(state, executed)
	if err != nil {
		return nil, err
	}

	hidden, err := p.challenges.HiddenParties(shareRoot, closed, p.cfg)
	if err != nil {
		return nil, err
	}
	reps, err := p.Open(state, hidden)
	if err != nil {
		return nil, err
	}

	proof := &Proof{
		IV:          p.iv,
		Root:        root,
		Executed:    executed,
		ClosedSeeds: closed,
		ShareRoot:   shareRoot,
		Reps:        reps,
	}
	p.logger.Info("generated proof",
		zap.Uint("repetitions", p.cfg.Prepared),
		zap.Uint("executed", p.cfg.Executed),
	)
	return proof, nil
}

func (p *Prover) checkExecutedSet(executed []uint32) error {
	if uint(len(executed)) != p.cfg.Executed {
		return fmt.Errorf("%w: executed count: expected: %d, given: %d",
			shared.ErrBadChallenge, p.cfg.Executed, len(executed))
	}
	prev := -1
	for _, e := range executed {
		if uint(e) >= p.cfg.Prepared {
			return fmt.Errorf("%w: executed index %d out of range", shared.ErrBadChallenge, e)
		}
		if int(e) <= prev {
			return fmt.Errorf("%w: executed indices not strictly ascending", shared.ErrBadChallenge)
		}
		prev = int(e)
	}
	return nil
}
