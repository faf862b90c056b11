package primitives

import (
	"crypto/subtle"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/mpcith/ssith/shared"
)

// Domain-separation tags. Every hash use in the protocol carries its
// own 8-byte tag; two uses never share one.
var (
	tagWitness  = []byte("witness-")
	tagInstance = []byte("instance")
	tagCommit   = []byte("commitme")
	tagH1Delta  = []byte("delta_rs")
	tagH1Com    = []byte("h1-coms-")
	tagH2       = []byte("h2------")
	tagH3       = []byte("h3------")
	tagH4       = []byte("h4------")
	tagChal1    = []byte("fs1-----")
	tagChal2    = []byte("fs2-----")
)

func lenBytes(n int) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	return buf[:]
}

// DeriveIV hashes the canonical encoding of a witness-instance pair
// into the per-proof PRG initialization vector. Deriving it from the
// pair itself is what prevents IV reuse across different statements.
func DeriveIV(witness shared.Witness, instance *shared.Instance) shared.IV {
	h := sha3.New256()
	h.Write(tagWitness)
	h.Write(witness.AppendCanonical(nil))
	h.Write(tagInstance)
	h.Write(instance.AppendCanonical(nil))

	var iv shared.IV
	copy(iv[:], h.Sum(nil)[:shared.BlockSize])
	return iv
}

// Commit binds a party seed under its opening randomness.
func Commit(seed shared.Seed, rho shared.Opening) shared.Commitment {
	h := sha3.New256()
	h.Write(tagCommit)
	h.Write(rho[:])
	h.Write(seed[:])

	var com shared.Commitment
	copy(com[:], h.Sum(nil))
	return com
}

// VerifyCommit recomputes a commitment and compares in constant time.
func VerifyCommit(seed shared.Seed, rho shared.Opening, com shared.Commitment) bool {
	actual := Commit(seed, rho)
	return subtle.ConstantTimeCompare(actual[:], com[:]) == 1
}

// Hash1 digests one repetition's share correction vector and party
// commitments.
func Hash1(deltas []uint64, coms []shared.Commitment) shared.Digest {
	h := sha3.New256()
	h.Write(tagH1Delta)
	h.Write(lenBytes(len(deltas)))
	var buf [8]byte
	for _, d := range deltas {
		binary.LittleEndian.PutUint64(buf[:], d)
		h.Write(buf[:])
	}
	h.Write(tagH1Com)
	h.Write(lenBytes(len(coms)))
	for _, com := range coms {
		h.Write(com[:])
	}

	var out shared.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Hash2 aggregates the per-repetition commit digests into the
// commit-phase root.
func Hash2(h1s []shared.Digest) shared.Digest {
	h := sha3.New256()
	h.Write(tagH2)
	h.Write(lenBytes(len(h1s)))
	for _, h1 := range h1s {
		h.Write(h1[:])
	}

	var out shared.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Hash3 digests one executed repetition: the masked witness and every
// party's broadcast share of the target.
func Hash3(masked []uint8, tShares []uint64) shared.Digest {
	h := sha3.New256()
	h.Write(tagH3)
	h.Write(lenBytes(len(masked)))
	h.Write(masked)
	h.Write(lenBytes(len(tShares)))
	var buf [8]byte
	for _, t := range tShares {
		binary.LittleEndian.PutUint64(buf[:], t)
		h.Write(buf[:])
	}

	var out shared.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Hash4 aggregates the executed repetitions' digests into the
// execution-phase root.
func Hash4(hps []shared.Digest) shared.Digest {
	h := sha3.New256()
	h.Write(tagH4)
	h.Write(lenBytes(len(hps)))
	for _, hp := range hps {
		h.Write(hp[:])
	}

	var out shared.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// ChallengeKey1 derives the DRBG key for the executed-set challenge
// from the commit-phase root. This is the hook a non-interactive layer
// queries in place of verifier randomness.
func ChallengeKey1(root shared.Digest) shared.Digest {
	h := sha3.New256()
	h.Write(tagChal1)
	h.Write(root[:])

	var out shared.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// ChallengeKey2 derives the DRBG key for the hidden-party challenge
// from the execution-phase root and the revealed master seeds.
func ChallengeKey2(shareRoot shared.Digest, closed []shared.Seed) shared.Digest {
	h := sha3.New256()
	h.Write(tagChal2)
	h.Write(shareRoot[:])
	h.Write(lenBytes(len(closed)))
	for _, seed := range closed {
		h.Write(seed[:])
	}

	var out shared.Digest
	copy(out[:], h.Sum(nil))
	return out
}
