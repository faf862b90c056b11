package shared

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	xdr "github.com/nullstyle/go-xdr/xdr3"

	"github.com/mpcith/ssith/config"
)

// RepOpening is the opened portion of one executed repetition: all
// party commitments, the index of the party that stays hidden, the
// seeds and opening randomness of every other party, the hidden
// party's broadcast value, the masked witness and the public share
// correction vector.
type RepOpening struct {
	Commitments []Commitment
	Hidden      uint32
	Seeds       []Seed
	Openings    []Opening
	HiddenShare uint64
	Masked      []uint8
	DeltaR      []uint64
}

// Proof is the full transcript record across all repetitions. It is
// immutable once the prover finalizes it.
type Proof struct {
	// IV is the per-proof PRG initialization vector.
	IV IV

	// Root is the commit-phase digest over all prepared repetitions.
	Root Digest

	// Executed lists the repetition indices selected by the first
	// challenge, strictly ascending.
	Executed []uint32

	// ClosedSeeds holds the master seeds of the unexecuted
	// repetitions, in ascending repetition order. Revealing them lets
	// the verifier audit the share preparation in full.
	ClosedSeeds []Seed

	// ShareRoot is the execution-phase digest over the executed
	// repetitions.
	ShareRoot Digest

	// Reps holds one opening per executed repetition, in Executed
	// order.
	Reps []RepOpening
}

// Encode writes the XDR encoding of the proof.
func (p *Proof) Encode(w io.Writer) error {
	if _, err := xdr.Marshal(w, p); err != nil {
		return fmt.Errorf("serializing proof: %w", err)
	}
	return nil
}

// Bytes returns the XDR encoding of the proof.
func (p *Proof) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// maxProofElems caps every length prefix read while decoding. The cap
// is far above any sane parameter set; its point is to bound what a
// hostile length field can make the decoder allocate.
const maxProofElems = 1 << 20

// DecodeProofBytes decodes the XDR encoding produced by Encode and
// requires the buffer to contain nothing else. The proof layout is
// parsed explicitly rather than by reflection so that element counts
// are bounded before anything is allocated. Decoding failures surface
// as ErrProofInvalid; a truncated or padded stream is treated the same
// as any other malformed proof.
func DecodeProofBytes(data []byte) (*Proof, error) {
	d := proofDecoder{buf: data}
	proof := new(Proof)

	d.fixed(proof.IV[:])
	d.fixed(proof.Root[:])

	n := d.length()
	proof.Executed = make([]uint32, 0, n)
	for i := uint32(0); i < n && d.err == nil; i++ {
		proof.Executed = append(proof.Executed, d.uint32())
	}

	n = d.length()
	proof.ClosedSeeds = make([]Seed, n)
	for i := range proof.ClosedSeeds {
		d.fixed(proof.ClosedSeeds[i][:])
	}

	d.fixed(proof.ShareRoot[:])

	n = d.length()
	proof.Reps = make([]RepOpening, n)
	for k := range proof.Reps {
		rep := &proof.Reps[k]

		m := d.length()
		rep.Commitments = make([]Commitment, m)
		for i := range rep.Commitments {
			d.fixed(rep.Commitments[i][:])
		}

		rep.Hidden = d.uint32()

		m = d.length()
		rep.Seeds = make([]Seed, m)
		for i := range rep.Seeds {
			d.fixed(rep.Seeds[i][:])
		}

		m = d.length()
		rep.Openings = make([]Opening, m)
		for i := range rep.Openings {
			d.fixed(rep.Openings[i][:])
		}

		rep.HiddenShare = d.uint64()
		rep.Masked = d.opaque()

		m = d.length()
		rep.DeltaR = make([]uint64, 0, m)
		for i := uint32(0); i < m && d.err == nil; i++ {
			rep.DeltaR = append(rep.DeltaR, d.uint64())
		}
	}

	if d.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofInvalid, d.err)
	}
	if len(d.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrProofInvalid, len(d.buf))
	}
	return proof, nil
}

// proofDecoder walks the XDR byte layout: big-endian 32/64-bit words,
// length-prefixed sequences, opaque data padded to 4 bytes.
type proofDecoder struct {
	buf []byte
	err error
}

func (d *proofDecoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf) < n {
		d.err = io.ErrUnexpectedEOF
		return nil
	}
	out := d.buf[:n]
	d.buf = d.buf[n:]
	return out
}

func (d *proofDecoder) uint32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (d *proofDecoder) uint64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (d *proofDecoder) length() uint32 {
	n := d.uint32()
	if d.err == nil && n > maxProofElems {
		d.err = fmt.Errorf("length %d exceeds limit", n)
		return 0
	}
	return n
}

func (d *proofDecoder) fixed(dst []byte) {
	b := d.take(len(dst))
	if b != nil {
		copy(dst, b)
	}
}

func (d *proofDecoder) opaque() []byte {
	n := d.length()
	if d.err != nil {
		return nil
	}
	out := append([]byte(nil), d.take(int(n))...)
	if pad := (4 - int(n)%4) % 4; pad > 0 {
		for _, b := range d.take(pad) {
			if b != 0 {
				d.err = fmt.Errorf("nonzero padding")
			}
		}
	}
	if d.err != nil {
		return nil
	}
	return out
}

// Validate checks the structural shape of the proof against the
// parameter set: element counts, index ranges and bit-ness of the
// masked witness. It performs no cryptographic checks.
func (p *Proof) Validate(cfg config.Config) error {
	if uint(len(p.Executed)) != cfg.Executed {
		return fmt.Errorf("%w: executed count: expected: %d, given: %d", ErrProofInvalid, cfg.Executed, len(p.Executed))
	}
	if uint(len(p.ClosedSeeds)) != cfg.Prepared-cfg.Executed {
		return fmt.Errorf("%w: closed seed count: expected: %d, given: %d",
			ErrProofInvalid, cfg.Prepared-cfg.Executed, len(p.ClosedSeeds))
	}
	if uint(len(p.Reps)) != cfg.Executed {
		return fmt.Errorf("%w: opening count: expected: %d, given: %d", ErrProofInvalid, cfg.Executed, len(p.Reps))
	}

	prev := -1
	for _, e := range p.Executed {
		if uint(e) >= cfg.Prepared {
			return fmt.Errorf("%w: executed index %d out of range", ErrProofInvalid, e)
		}
		if int(e) <= prev {
			return fmt.Errorf("%w: executed indices not strictly ascending", ErrProofInvalid)
		}
		prev = int(e)
	}

	for k := range p.Reps {
		if err := p.Reps[k].validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (rep *RepOpening) validate(cfg config.Config) error {
	if uint(len(rep.Commitments)) != cfg.Parties {
		return fmt.Errorf("%w: commitment count: expected: %d, given: %d", ErrProofInvalid, cfg.Parties, len(rep.Commitments))
	}
	if uint(rep.Hidden) >= cfg.Parties {
		return fmt.Errorf("%w: hidden party index %d out of range", ErrProofInvalid, rep.Hidden)
	}
	if uint(len(rep.Seeds)) != cfg.Parties-1 {
		return fmt.Errorf("%w: opened seed count: expected: %d, given: %d", ErrProofInvalid, cfg.Parties-1, len(rep.Seeds))
	}
	if uint(len(rep.Openings)) != cfg.Parties-1 {
		return fmt.Errorf("%w: opening count: expected: %d, given: %d", ErrProofInvalid, cfg.Parties-1, len(rep.Openings))
	}
	if uint(len(rep.Masked)) != cfg.Dimension {
		return fmt.Errorf("%w: masked witness length: expected: %d, given: %d", ErrProofInvalid, cfg.Dimension, len(rep.Masked))
	}
	if uint(len(rep.DeltaR)) != cfg.Dimension {
		return fmt.Errorf("%w: correction vector length: expected: %d, given: %d", ErrProofInvalid, cfg.Dimension, len(rep.DeltaR))
	}
	for _, b := range rep.Masked {
		if b > 1 {
			return fmt.Errorf("%w: masked witness element is not a bit", ErrProofInvalid)
		}
	}
	return nil
}
