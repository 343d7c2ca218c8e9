package util

import (
	"github.com/OneOfOne/xxhash"
)

// HashCode 将一个键进行Hash
func HashCode(key []byte) uint64 {
	h := xxhash.New64()
	h.Write(key)
	return h.Sum64()
}

// MultisetHash accumulates an order-independent digest of a sequence of
// byte strings. Two sequences holding the same elements in any order produce
// the same digest, which is what a permutation check after an in-place sort
// needs.
type MultisetHash struct {
	sum   uint64
	xor   uint64
	count uint64
}

// Add folds one element into the digest.
func (m *MultisetHash) Add(element []byte) {
	h := xxhash.Checksum64(element)
	m.sum += h
	m.xor ^= h
	m.count++
}

// Count returns how many elements were added.
func (m *MultisetHash) Count() uint64 {
	return m.count
}

// Sum64 returns the combined digest.
func (m *MultisetHash) Sum64() uint64 {
	return HashCode(append(append(ConvertULong8Bytes(m.sum), ConvertULong8Bytes(m.xor)...), ConvertULong8Bytes(m.count)...))
}

// Equal reports whether both digests saw the same multiset.
func (m *MultisetHash) Equal(other *MultisetHash) bool {
	return m.sum == other.sum && m.xor == other.xor && m.count == other.count
}

// ConvertULong8Bytes encodes i as 8 big-endian bytes.
func ConvertULong8Bytes(i uint64) []byte {
	return []byte{
		byte(i >> 56), byte(i >> 48), byte(i >> 40), byte(i >> 32),
		byte(i >> 24), byte(i >> 16), byte(i >> 8), byte(i),
	}
}
