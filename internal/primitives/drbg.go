package primitives

import (
	"golang.org/x/crypto/chacha20"

	"github.com/mpcith/ssith/shared"
)

// DRBG is a deterministic random byte stream keyed by a 32-byte
// digest. It backs transcript-derived challenges and fixed-seed test
// runs; it is not safe for concurrent use.
type DRBG struct {
	cipher *chacha20.Cipher
}

// NewDRBG builds a ChaCha20-based byte stream from a transcript
// digest. The nonce is fixed: a key is never used for two streams.
func NewDRBG(key shared.Digest) *DRBG {
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		panic("primitives: drbg setup: " + err.Error())
	}
	return &DRBG{cipher: cipher}
}

// Read fills p with keystream bytes. It never fails.
func (d *DRBG) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	d.cipher.XORKeyStream(p, p)
	return len(p), nil
}
