package shared

const (
	// SeedSize is the size of a PRG seed, which doubles as the AES key
	// and block size.
	SeedSize = 16

	// BlockSize is the PRG output block size.
	BlockSize = 16

	// OpeningSize is the size of the commitment opening randomness.
	OpeningSize = 16

	// DigestSize is the SHA3-256 output size.
	DigestSize = 32
)

// Seed is a PRG seed. Seeds are secret until explicitly opened and are
// never reused across repetitions or proofs.
type Seed [SeedSize]byte

// IV is the per-proof PRG initialization vector, derived from the
// witness-instance pair.
type IV [BlockSize]byte

// Opening is the hiding randomness of a commitment.
type Opening [OpeningSize]byte

// Digest is a SHA3-256 output.
type Digest [DigestSize]byte

// Commitment is a binding, hiding digest of a party seed.
type Commitment [DigestSize]byte
