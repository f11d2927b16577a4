// Package testutils provides deterministic, checksummable synthetic
// frame generators for the ring and detection property tests, playing
// the same role the teacher's testutils package played for synthetic
// IQ waveforms: a generator plus a verifier that can detect torn or
// misordered reads.
package testutils

import (
	"encoding/binary"
)

// minSentinelSize is the smallest frame Sentinel can build: a leading
// and trailing uint32 copy of the tag.
const minSentinelSize = 8

// Sentinel builds a frame of the given size tagging it with n: the
// first four bytes and last four bytes both encode n (the "trailing
// copy" testable property 5 in spec.md §8), and every byte in between
// is filled with byte(n), so a torn or short read is detectable.
func Sentinel(n uint32, size int) []byte {
	if size < minSentinelSize {
		size = minSentinelSize
	}
	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf[:4], n)
	binary.BigEndian.PutUint32(buf[len(buf)-4:], n)
	for i := 4; i < len(buf)-4; i++ {
		buf[i] = byte(n)
	}
	return buf
}

// Verify decodes a frame built by Sentinel and reports whether the
// leading tag, trailing tag, and body fill are all mutually
// consistent, returning the decoded tag either way.
func Verify(buf []byte) (n uint32, ok bool) {
	if len(buf) < minSentinelSize {
		return 0, false
	}
	head := binary.BigEndian.Uint32(buf[:4])
	tail := binary.BigEndian.Uint32(buf[len(buf)-4:])
	if head != tail {
		return head, false
	}
	for i := 4; i < len(buf)-4; i++ {
		if buf[i] != byte(head) {
			return head, false
		}
	}
	return head, true
}
