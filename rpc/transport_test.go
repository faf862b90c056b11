package rpc

import (
	"bytes"
	"context"
	"crypto/rand"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpcith/ssith/proving"
	"github.com/mpcith/ssith/shared"
)

func TestCodecRoundTrip(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	codec := NewCodec(&buf)

	sent := ProverMsg{
		Kind:        KindOpen,
		IV:          shared.IV{1},
		Root:        shared.Digest{2},
		ShareRoot:   shared.Digest{3},
		ClosedSeeds: []shared.Seed{{4}, {5}},
		Reps: []shared.RepOpening{{
			Commitments: []shared.Commitment{{6}, {7}},
			Hidden:      1,
			Seeds:       []shared.Seed{{8}},
			Openings:    []shared.Opening{{9}},
			HiddenShare: 10,
			Masked:      []uint8{1, 0, 1, 0},
			DeltaR:      []uint64{11, 12, 13, 14},
		}},
	}
	r.NoError(codec.SendProver(sent))

	got, err := codec.RecvProver()
	r.NoError(err)
	r.Equal(sent, got)

	vSent := VerifierMsg{Kind: KindChallengeExecuted, Indices: []uint32{0, 3, 7}}
	r.NoError(codec.SendVerifier(vSent))
	vGot, err := codec.RecvVerifier()
	r.NoError(err)
	r.Equal(vSent, vGot)
}

func TestCodecRejectsOversizedFrame(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0, 1, 0, 0, 0}) // length 2^32

	_, err := NewCodec(&buf).RecvProver()
	r.Error(err)
}

func TestCodecSession(t *testing.T) {
	r := require.New(t)
	cfg := testConfig()

	witness, instance, err := shared.NewRandomPair(rand.Reader, cfg)
	r.NoError(err)
	prover, err := proving.NewProver(cfg, instance, witness)
	r.NoError(err)

	proverConn, verifierConn := net.Pipe()
	defer proverConn.Close()
	defer verifierConn.Close()

	proverErr := make(chan error, 1)
	go func() {
		codec := NewCodec(proverConn)
		if err := RunProver(context.Background(), prover, codec); err != nil {
			proverErr <- err
			return
		}
		// Drain the verdict so the verifier's final write completes.
		_, err := codec.RecvVerifier()
		proverErr <- err
	}()

	r.NoError(RunVerifier(cfg, instance, rand.Reader, NewCodec(verifierConn)))
	r.NoError(<-proverErr)
}
