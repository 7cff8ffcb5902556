package util

import (
	"encoding/binary"
	"hash/fnv"
)

// HashPartsToUInt64 hashes the parts in order with FNV-64a. Each part is
// prefixed with its length, so ("ab", "c") and ("a", "bc") hash differently.
func HashPartsToUInt64(parts ...[]byte) uint64 {
	h := fnv.New64a()
	var size [8]byte
	for _, part := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(part)))
		h.Write(size[:])
		h.Write(part)
	}
	return h.Sum64()
}
