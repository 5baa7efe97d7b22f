// Package hash provides the CRC32-Castagnoli checksum used to detect damaged
// snapshot files.
//
// For one-shot checksums:
//
//	sum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk)
//	sum := h.Sum32()
package hash
