package proving

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpcith/ssith/internal/primitives"
	"github.com/mpcith/ssith/shared"
	"github.com/mpcith/ssith/verifying"
)

func testConfig() Config {
	return Config{Dimension: 8, Parties: 4, Prepared: 10, Executed: 4, ShareBits: 64}
}

func testPair(t *testing.T, cfg Config) (shared.Witness, *shared.Instance) {
	witness, instance, err := shared.NewRandomPair(rand.Reader, cfg)
	require.NoError(t, err)
	return witness, instance
}

func TestNewProver(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	_, err := NewProver(cfg, instance, witness)
	r.NoError(err)

	badCfg := cfg
	badCfg.Parties = 1
	_, err = NewProver(badCfg, instance, witness)
	r.Error(err)

	_, err = NewProver(cfg, instance, witness[:4])
	r.ErrorIs(err, shared.ErrBadWitnessLength)

	badWitness := append(shared.Witness(nil), witness...)
	badWitness[0] ^= 1
	_, err = NewProver(cfg, instance, badWitness)
	r.ErrorIs(err, shared.ErrBadWitnessOrInstance)

	_, err = NewProver(cfg, instance, witness, WithWorkers(0))
	r.Error(err)
}

func TestGenerateDeterministic(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	generate := func() []byte {
		prover, err := NewProver(cfg, instance, witness,
			WithRandomness(primitives.NewDRBG(shared.Digest{42})))
		r.NoError(err)
		proof, err := prover.Generate(context.Background())
		r.NoError(err)
		data, err := proof.Bytes()
		r.NoError(err)
		return data
	}

	// A fixed randomness source pins the whole transcript.
	r.Equal(generate(), generate())

	prover, err := NewProver(cfg, instance, witness,
		WithRandomness(primitives.NewDRBG(shared.Digest{43})))
	r.NoError(err)
	proof, err := prover.Generate(context.Background())
	r.NoError(err)
	other, err := proof.Bytes()
	r.NoError(err)
	r.NotEqual(generate(), other)
}

func TestPhaseOrder(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	prover, err := NewProver(cfg, instance, witness)
	r.NoError(err)

	state, root, err := prover.Commit(context.Background())
	r.NoError(err)
	r.Equal(root, state.Root())

	_, err = prover.Open(state, []uint32{0, 0, 0, 0})
	r.ErrorIs(err, shared.ErrProtocol)

	executed := []uint32{0, 2, 5, 9}
	_, _, err = prover.Execute(state, executed)
	r.NoError(err)

	_, _, err = prover.Execute(state, executed)
	r.ErrorIs(err, shared.ErrProtocol)

	_, err = prover.Open(state, []uint32{0, 1, 2, 3})
	r.NoError(err)

	_, err = prover.Open(state, []uint32{0, 1, 2, 3})
	r.ErrorIs(err, shared.ErrProtocol)
}

func TestExecuteBadChallenge(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	commit := func() *State {
		prover, err := NewProver(cfg, instance, witness)
		r.NoError(err)
		state, _, err := prover.Commit(context.Background())
		r.NoError(err)
		return state
	}
	prover, err := NewProver(cfg, instance, witness)
	r.NoError(err)

	_, _, err = prover.Execute(commit(), []uint32{0, 1, 2})
	r.ErrorIs(err, shared.ErrBadChallenge)

	_, _, err = prover.Execute(commit(), []uint32{0, 1, 2, 10})
	r.ErrorIs(err, shared.ErrBadChallenge)

	_, _, err = prover.Execute(commit(), []uint32{0, 2, 1, 3})
	r.ErrorIs(err, shared.ErrBadChallenge)

	_, _, err = prover.Execute(commit(), []uint32{0, 1, 1, 3})
	r.ErrorIs(err, shared.ErrBadChallenge)
}

func TestOpenBadChallenge(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	prover, err := NewProver(cfg, instance, witness)
	r.NoError(err)
	state, _, err := prover.Commit(context.Background())
	r.NoError(err)
	_, _, err = prover.Execute(state, []uint32{0, 1, 2, 3})
	r.NoError(err)

	_, err = prover.Open(state, []uint32{0, 1, 2})
	r.ErrorIs(err, shared.ErrBadChallenge)

	_, err = prover.Open(state, []uint32{0, 1, 2, 4})
	r.ErrorIs(err, shared.ErrBadChallenge)
}

func TestClosedSeedsComplementExecuted(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	prover, err := NewProver(cfg, instance, witness)
	r.NoError(err)
	state, _, err := prover.Commit(context.Background())
	r.NoError(err)

	executed := []uint32{1, 3, 6, 8}
	_, closed, err := prover.Execute(state, executed)
	r.NoError(err)
	r.Len(closed, int(cfg.Prepared-cfg.Executed))

	want := []shared.Seed{
		state.MasterSeed(0), state.MasterSeed(2), state.MasterSeed(4),
		state.MasterSeed(5), state.MasterSeed(7), state.MasterSeed(9),
	}
	r.Equal(want, closed)
}

func TestGenerateVerifies(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	prover, err := NewProver(cfg, instance, witness)
	r.NoError(err)
	proof, err := prover.Generate(context.Background())
	r.NoError(err)

	r.NoError(verifying.Verify(cfg, instance, proof))
}

func TestGenerateWrongWitness(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	prover, err := NewProver(cfg, instance, witness)
	r.NoError(err)

	// A cheating prover swaps the witness after construction. Proof
	// generation itself cannot notice; verification must.
	bad := append(shared.Witness(nil), witness...)
	bad[0] ^= 1
	prover.witness = bad

	proof, err := prover.Generate(context.Background())
	r.NoError(err)
	r.ErrorIs(verifying.Verify(cfg, instance, proof), shared.ErrProofInvalid)
}

func TestGenerateWrongWitnessKnownInstance(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	cfg.Dimension = 4

	instance := shared.NewInstance([]uint64{3, 5, 7, 2}, 10)
	prover, err := NewProver(cfg, instance, shared.Witness{1, 0, 1, 0})
	r.NoError(err)

	// Selects {5, 7}, which sums to 12.
	prover.witness = shared.Witness{0, 1, 1, 0}

	proof, err := prover.Generate(context.Background())
	r.NoError(err)
	r.ErrorIs(verifying.Verify(cfg, instance, proof), shared.ErrProofInvalid)
}

func TestWrongWitnessManyTrials(t *testing.T) {
	r := require.New(t)

	// Deliberately weak parameters. A prover that runs the honest
	// algorithm over a wrong witness is still rejected every time; the
	// soundness bound only matters for adaptive cheating strategies.
	cfg := Config{Dimension: 4, Parties: 2, Prepared: 2, Executed: 1, ShareBits: 64}

	for i := 0; i < 50; i++ {
		witness, instance := testPair(t, cfg)
		prover, err := NewProver(cfg, instance, witness)
		r.NoError(err)

		bad := append(shared.Witness(nil), witness...)
		bad[i%4] ^= 1
		prover.witness = bad

		proof, err := prover.Generate(context.Background())
		r.NoError(err)
		r.ErrorIs(verifying.Verify(cfg, instance, proof), shared.ErrProofInvalid, "trial %d", i)
	}
}

func TestRandomChallenges(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()
	witness, instance := testPair(t, cfg)

	prover, err := NewProver(cfg, instance, witness,
		WithChallengeSource(RandomChallenges{Rand: rand.Reader}))
	r.NoError(err)
	proof, err := prover.Generate(context.Background())
	r.NoError(err)

	r.NoError(verifying.Verify(cfg, instance, proof))
}
