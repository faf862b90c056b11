package shared

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProofFilename returns the path a named proof is persisted under.
func ProofFilename(datadir, name string) string {
	if name == "" {
		name = "0"
	}
	return filepath.Join(datadir, name+".proof")
}

// PersistProof writes the XDR encoding of a proof under datadir.
func PersistProof(datadir, name string, proof *Proof) error {
	if err := os.MkdirAll(datadir, 0o700); err != nil {
		return fmt.Errorf("dir creation failure: %w", err)
	}

	f, err := os.Create(ProofFilename(datadir, name))
	if err != nil {
		return fmt.Errorf("file creation failure: %w", err)
	}
	defer f.Close()

	return proof.Encode(f)
}

// FetchProof reads a persisted proof back from datadir.
func FetchProof(datadir, name string) (*Proof, error) {
	data, err := os.ReadFile(ProofFilename(datadir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProofNotExist
		}
		return nil, fmt.Errorf("read failure: %w", err)
	}
	return DecodeProofBytes(data)
}
