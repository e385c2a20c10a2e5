package lzma

import "math/bits"

// match is a candidate returned by a match finder. The distance is counted
// from 1.
type match struct {
	dist uint32
	n    int
}

// matchFinder finds matches in the window data. Every position must be
// passed to either find or skip exactly once and in ascending order. The
// finders count positions themselves; the index cur is only used to access
// the data.
type matchFinder interface {
	// reset forgets all positions; it is required after a dictionary
	// reset.
	reset()
	// find appends the candidates for data[cur:] to dst. The lengths of
	// the candidates are strictly increasing; for equal lengths the
	// nearest distance is returned.
	find(data []byte, cur int, dst []match) []match
	// skip adds the position cur without searching.
	skip(data []byte, cur int)
}

// newMatchFinder creates the match finder selected by the configuration.
// The argument histSize limits the distances and may be smaller than the
// dictionary size if less data is expected.
func newMatchFinder(cfg *WriterConfig, histSize int) matchFinder {
	switch cfg.MatchFinder {
	case HashChain4:
		return newHashChain(histSize, cfg.NiceLen, cfg.Depth)
	case BinaryTree4:
		return newBinTree(histSize, cfg.NiceLen, cfg.Depth)
	}
	panic("lzma: unsupported match finder")
}

// Sizes of the hash tables used by both match finders.
const (
	hash3Bits   = 16
	minHashBits = 16
	maxHashBits = 24
)

// normLimit is the position at which the match finders normalize their
// position values to prevent overflows.
const normLimit = 1 << 31

// hashBits computes the number of bits for the 4-byte hash table from the
// dictionary size.
func hashBits(dictSize int) int {
	n := bits.Len32(uint32(dictSize-1)) - 1
	if n < minHashBits {
		return minHashBits
	}
	if n > maxHashBits {
		return maxHashBits
	}
	return n
}

// hash3 and hash4 compute multiplicative hashes of the first three or four
// bytes of p.
func hash3(p []byte, shift uint) uint32 {
	x := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
	return (x * 506832829) >> shift
}

func hash4(p []byte, shift uint) uint32 {
	x := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 |
		uint32(p[3])<<24
	return (x * 2654435761) >> shift
}

// normalizeLinks subtracts sub from all position values. Values that would
// become zero or negative are cleared.
func normalizeLinks(a []uint32, sub uint32) {
	for i, v := range a {
		if v <= sub {
			a[i] = 0
		} else {
			a[i] = v - sub
		}
	}
}

// lenLimit returns the maximum length for a match at data[cur:].
func lenLimit(data []byte, cur int, niceLen int) int {
	n := len(data) - cur
	if n > niceLen {
		n = niceLen
	}
	return n
}

// matchLen returns the number of bytes at data[i:] that match the bytes at
// distance dist. The comparison stops after limit bytes.
func matchLen(data []byte, i int, dist uint32, limit int) int {
	a := data[i:]
	if limit > len(a) {
		limit = len(a)
	}
	b := data[i-int(dist):]
	n := 0
	for n < limit && a[n] == b[n] {
		n++
	}
	return n
}
