package util

import "time"

// 48-bit linear congruential generator, same constants as java.util.Random.
const (
	multiplier = int64(0x5DEECE66D)

	seedUniquifier int64 = 8682522807148012

	mask int64 = (1 << 48) - 1

	addend int64 = 0xB
)

// Random is a seeded LCG. A given seed always yields the same sequence,
// which lets generated data files be reproduced exactly.
type Random struct {
	seed int64
}

// NewRandom returns a generator seeded with seed.
func NewRandom(seed int64) *Random {
	return &Random{seed: (seed ^ multiplier) & mask}
}

// NewTimeSeededRandom seeds from the wall clock.
func NewTimeSeededRandom() *Random {
	return NewRandom(seedUniquifier + time.Now().UTC().UnixNano())
}

func (r *Random) next(bits uint) int64 {
	r.seed = (r.seed*multiplier + addend) & mask
	return r.seed >> (48 - bits)
}

// NextInt returns a value in [0, bound). bound must be positive.
func (r *Random) NextInt(bound int64) int64 {
	if bound <= 0 {
		panic("util: NextInt bound must be positive")
	}
	if bound <= 1<<31 {
		return r.next(31) % bound
	}
	hi := r.next(31)
	lo := r.next(31)
	return ((hi << 31) | lo) % bound
}

// NextRange returns a value in [min, max].
func (r *Random) NextRange(min, max int64) int64 {
	if max <= min {
		return min
	}
	span := uint64(max) - uint64(min)
	if span < 1<<31 {
		return min + r.NextInt(int64(span)+1)
	}
	raw := uint64(r.next(32))<<32 | uint64(r.next(32))
	if span == ^uint64(0) {
		return int64(raw)
	}
	return min + int64(raw%(span+1))
}

// RandomBytes fills a fresh slice of size bytes.
func (r *Random) RandomBytes(size int) []byte {
	result := make([]byte, size)
	for i := 0; i < size; i++ {
		result[i] = byte(r.next(8))
	}
	return result
}
