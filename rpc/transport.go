package rpc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	xdr "github.com/nullstyle/go-xdr/xdr3"
)

// maxFrameSize bounds a single message frame. Proofs for sane
// parameter sets are well under this; anything larger is a broken or
// hostile peer.
const maxFrameSize = 1 << 28

// Codec frames XDR-encoded messages over a byte stream with a
// little-endian 64-bit length prefix. Both protocol sides wrap their
// end of a connection in one.
type Codec struct {
	rw io.ReadWriter
}

func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{rw: rw}
}

func (c *Codec) send(v interface{}) error {
	var body bytes.Buffer
	if _, err := xdr.Marshal(&body, v); err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	payload := body.Bytes()

	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(len(payload)))
	if _, err := c.rw.Write(length[:]); err != nil {
		return fmt.Errorf("writing frame length: %w", err)
	}
	if _, err := c.rw.Write(payload); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (c *Codec) recv(v interface{}) error {
	var length [8]byte
	if _, err := io.ReadFull(c.rw, length[:]); err != nil {
		return err
	}
	n := binary.LittleEndian.Uint64(length[:])
	if n > maxFrameSize {
		return fmt.Errorf("frame of %d bytes exceeds limit", n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(c.rw, payload); err != nil {
		return fmt.Errorf("reading frame: %w", err)
	}
	if _, err := xdr.Unmarshal(bytes.NewReader(payload), v); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	return nil
}

func (c *Codec) SendProver(m ProverMsg) error { return c.send(&m) }

func (c *Codec) RecvProver() (ProverMsg, error) {
	var m ProverMsg
	err := c.recv(&m)
	return m, err
}

func (c *Codec) SendVerifier(m VerifierMsg) error { return c.send(&m) }

func (c *Codec) RecvVerifier() (VerifierMsg, error) {
	var m VerifierMsg
	err := c.recv(&m)
	return m, err
}
