// Package primitives holds the cryptographic building blocks the proof
// engine consumes: the AES-CTR pseudorandom generator, the GGM seed
// tree, domain-separated SHA3-256 hashing, the commitment scheme and
// bias-free challenge sampling.
//
// All functions here are total: a failure of an underlying primitive
// is a configuration error and panics rather than returning an error.
package primitives

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/mpcith/ssith/shared"
)

// Counter-space allocation for a single (seed, IV) pair. Tree
// expansion of a node key always consumes blocks 0 and 1; any other
// use of the same key must start at a disjoint offset.
const (
	treeOffset = 0
	// MaskOffset is where mask-bit expansion of a repetition master
	// seed starts, past the blocks its child derivation consumes.
	MaskOffset = 2
	// ShareOffset is where share expansion of a leaf party seed
	// starts. Leaf seeds are never tree-expanded, so the full counter
	// space is theirs.
	ShareOffset = 0
)

// ExpandBlocks returns `count` keystream blocks of the AES-128-CTR PRG
// for the given seed and IV, starting at block `offset`. The counter
// is the big-endian 64-bit word in iv[8:16]; iv[0:8] is carried into
// every counter block unchanged.
func ExpandBlocks(seed shared.Seed, iv shared.IV, offset uint64, count int) [][shared.BlockSize]byte {
	c, err := aes.NewCipher(seed[:])
	if err != nil {
		panic("primitives: aes key setup: " + err.Error())
	}

	ctr := binary.BigEndian.Uint64(iv[8:])
	var block [shared.BlockSize]byte
	copy(block[:8], iv[:8])

	out := make([][shared.BlockSize]byte, count)
	for i := range out {
		binary.BigEndian.PutUint64(block[8:], ctr+offset+uint64(i))
		c.Encrypt(out[i][:], block[:])
	}
	return out
}

// ExpandBits returns n pseudorandom bits, one per byte, expanded from
// the keystream least-significant bit first.
func ExpandBits(seed shared.Seed, iv shared.IV, offset uint64, n int) []uint8 {
	if n < 1 {
		panic("primitives: bit expansion of empty range")
	}
	blocks := ExpandBlocks(seed, iv, offset, n/(shared.BlockSize*8)+1)

	out := make([]uint8, n)
	i := 0
	for _, block := range blocks {
		for _, b := range block {
			for shift := 0; shift < 8; shift++ {
				out[i] = (b >> shift) & 1
				i++
				if i == n {
					return out
				}
			}
		}
	}
	return out
}

// ExpandWords returns n pseudorandom 64-bit words. One word is taken
// from the low half of each keystream block.
func ExpandWords(seed shared.Seed, iv shared.IV, offset uint64, n int) []uint64 {
	blocks := ExpandBlocks(seed, iv, offset, n)
	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(blocks[i][:8])
	}
	return out
}

func expandDouble(seed shared.Seed, iv shared.IV) (shared.Seed, shared.Seed) {
	blocks := ExpandBlocks(seed, iv, treeOffset, 2)
	return blocks[0], blocks[1]
}

// SeedTree derives n seeds from one root seed with a GGM-style
// length-doubling tree. The queue traversal builds an unbalanced tree
// for n that is not a power of two.
func SeedTree(seed shared.Seed, iv shared.IV, n int) []shared.Seed {
	queue := make([]shared.Seed, 0, 2*n)
	queue = append(queue, seed)
	for len(queue) < n {
		next := queue[0]
		queue = queue[1:]
		left, right := expandDouble(next, iv)
		queue = append(queue, left, right)
	}
	return queue[:n]
}
