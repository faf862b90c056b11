package primitives

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

// SampleIndex draws a uniform integer in [0, n) from the randomness
// source. Draws use rejection sampling on 32-bit words: values at or
// above the largest multiple of n are discarded, so the result carries
// no modulo bias.
func SampleIndex(rand io.Reader, n uint32) (uint32, error) {
	if n == 0 {
		return 0, fmt.Errorf("sampling from empty range")
	}
	bound := math.MaxUint32 / n * n

	var buf [4]byte
	for {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return 0, fmt.Errorf("reading randomness: %w", err)
		}
		v := binary.LittleEndian.Uint32(buf[:])
		if v < bound {
			return v % n, nil
		}
	}
}

// SampleSubset draws a uniform size-count subset of [0, n) and returns
// it in ascending order. The subset is the prefix of a Fisher-Yates
// shuffle driven by SampleIndex draws.
func SampleSubset(rand io.Reader, n, count uint32) ([]uint32, error) {
	if count > n {
		return nil, fmt.Errorf("subset larger than range: %d > %d", count, n)
	}
	if n == 0 {
		return nil, nil
	}

	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	for i := uint32(n - 1); i > 0; i-- {
		j, err := SampleIndex(rand, i+1)
		if err != nil {
			return nil, err
		}
		idx[i], idx[j] = idx[j], idx[i]
	}

	subset := idx[:count]
	sort.Slice(subset, func(a, b int) bool { return subset[a] < subset[b] })
	return subset, nil
}

// SampleIndices draws count independent uniform integers in [0, n).
func SampleIndices(rand io.Reader, n, count uint32) ([]uint32, error) {
	out := make([]uint32, count)
	for i := range out {
		v, err := SampleIndex(rand, n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
