package rpc

import (
	"context"
	"fmt"
	"io"

	"github.com/mpcith/ssith/config"
	"github.com/mpcith/ssith/internal/primitives"
	"github.com/mpcith/ssith/proving"
	"github.com/mpcith/ssith/shared"
	"github.com/mpcith/ssith/verifying"
)

// Transport moves one message in each direction. The channel pair and
// the connection codec both satisfy it.
type Transport interface {
	SendProver(ProverMsg) error
	RecvProver() (ProverMsg, error)
	SendVerifier(VerifierMsg) error
	RecvVerifier() (VerifierMsg, error)
}

// RunProver drives a prover through one interactive session: it sends
// the commit root, answers both challenges and finishes after the
// opening message. The final verdict is the verifier's business; the
// prover does not wait for it.
func RunProver(ctx context.Context, p *proving.Prover, t Transport) error {
	state, root, err := p.Commit(ctx)
	if err != nil {
		return err
	}
	if err := t.SendProver(ProverMsg{Kind: KindCommit, IV: p.IV(), Root: root}); err != nil {
		return err
	}

	msg, err := t.RecvVerifier()
	if err != nil {
		return err
	}
	if msg.Kind != KindChallengeExecuted {
		return fmt.Errorf("%w: kind %d", shared.ErrProtocol, msg.Kind)
	}
	shareRoot, closed, err := p.Execute(state, msg.Indices)
	if err != nil {
		return err
	}
	if err := t.SendProver(ProverMsg{Kind: KindExecute, ShareRoot: shareRoot, ClosedSeeds: closed}); err != nil {
		return err
	}

	msg, err = t.RecvVerifier()
	if err != nil {
		return err
	}
	if msg.Kind != KindChallengeHidden {
		return fmt.Errorf("%w: kind %d", shared.ErrProtocol, msg.Kind)
	}
	reps, err := p.Open(state, msg.Indices)
	if err != nil {
		return err
	}
	return t.SendProver(ProverMsg{Kind: KindOpen, Reps: reps})
}

// RunVerifier drives the verifier's side: it draws both challenges
// from the supplied randomness handle, assembles the transcript into a
// proof object and runs the acceptance predicate on it. It sends the
// verdict back and returns nil iff the proof was accepted.
func RunVerifier(cfg config.Config, instance *shared.Instance, rand io.Reader, t Transport) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	msg, err := t.RecvProver()
	if err != nil {
		return err
	}
	if msg.Kind != KindCommit {
		return fmt.Errorf("%w: kind %d", shared.ErrProtocol, msg.Kind)
	}
	iv, root := msg.IV, msg.Root

	executed, err := primitives.SampleSubset(rand, uint32(cfg.Prepared), uint32(cfg.Executed))
	if err != nil {
		return err
	}
	if err := t.SendVerifier(VerifierMsg{Kind: KindChallengeExecuted, Indices: executed}); err != nil {
		return err
	}

	msg, err = t.RecvProver()
	if err != nil {
		return err
	}
	if msg.Kind != KindExecute {
		return fmt.Errorf("%w: kind %d", shared.ErrProtocol, msg.Kind)
	}
	shareRoot, closed := msg.ShareRoot, msg.ClosedSeeds

	hidden, err := primitives.SampleIndices(rand, uint32(cfg.Parties), uint32(cfg.Executed))
	if err != nil {
		return err
	}
	if err := t.SendVerifier(VerifierMsg{Kind: KindChallengeHidden, Indices: hidden}); err != nil {
		return err
	}

	msg, err = t.RecvProver()
	if err != nil {
		return err
	}
	if msg.Kind != KindOpen {
		return fmt.Errorf("%w: kind %d", shared.ErrProtocol, msg.Kind)
	}

	proof := &shared.Proof{
		IV:          iv,
		Root:        root,
		Executed:    executed,
		ClosedSeeds: closed,
		ShareRoot:   shareRoot,
		Reps:        msg.Reps,
	}
	verdict := verifying.Verify(cfg, instance, proof)
	if verdict == nil {
		// The openings must hide exactly the parties this session
		// challenged. A prover that picks its own hidden parties can
		// cheat one broadcast per repetition unpunished.
		for k, l := range hidden {
			if proof.Reps[k].Hidden != l {
				verdict = fmt.Errorf("%w: opening %d hides party %d, challenge named %d",
					shared.ErrProofInvalid, k, proof.Reps[k].Hidden, l)
				break
			}
		}
	}
	if err := t.SendVerifier(VerifierMsg{Kind: KindVerdict, Accepted: verdict == nil}); err != nil {
		return err
	}
	return verdict
}

// ChannelTransport runs a session over in-process channels. The two
// sides share one value, each reading the other's send channel.
type ChannelTransport struct {
	ProverCh   chan ProverMsg
	VerifierCh chan VerifierMsg
}

func NewChannelTransport() *ChannelTransport {
	return &ChannelTransport{
		ProverCh:   make(chan ProverMsg, 1),
		VerifierCh: make(chan VerifierMsg, 1),
	}
}

func (t *ChannelTransport) SendProver(m ProverMsg) error {
	t.ProverCh <- m
	return nil
}

func (t *ChannelTransport) RecvProver() (ProverMsg, error) {
	m, ok := <-t.ProverCh
	if !ok {
		return ProverMsg{}, io.EOF
	}
	return m, nil
}

func (t *ChannelTransport) SendVerifier(m VerifierMsg) error {
	t.VerifierCh <- m
	return nil
}

func (t *ChannelTransport) RecvVerifier() (VerifierMsg, error) {
	m, ok := <-t.VerifierCh
	if !ok {
		return VerifierMsg{}, io.EOF
	}
	return m, nil
}
