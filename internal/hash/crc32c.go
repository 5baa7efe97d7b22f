package hash

import (
	"fmt"
	"hash"
	"hash/crc32"
	"strconv"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a streaming CRC32-Castagnoli hash.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Format renders sum as eight lower-case hex digits.
func Format(sum uint32) string {
	return fmt.Sprintf("%08x", sum)
}

// Parse is the inverse of Format.
func Parse(s string) (uint32, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("hash: checksum %q: want 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("hash: checksum %q: %w", s, err)
	}
	return uint32(v), nil
}
