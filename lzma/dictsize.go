package lzma

import "fmt"

// maxDictSizeCode is the largest valid code of the LZMA2 dictionary size
// byte. It stands for 4 GiB - 1.
const maxDictSizeCode = 40

// decodeDictSize decodes a code without checking its range.
func decodeDictSize(c byte) int64 {
	return (2 | int64(c)&1) << (11 + (c>>1)&0x1f)
}

// DecodeDictSize converts the dictionary size byte used by LZMA2
// containers into the dictionary size.
func DecodeDictSize(c byte) (n int64, err error) {
	switch {
	case c < maxDictSizeCode:
		return decodeDictSize(c), nil
	case c == maxDictSizeCode:
		return 1<<32 - 1, nil
	}
	return 0, corrupt("dictionary size", 0, "invalid code %d", c)
}

// EncodeDictSize returns the code for the smallest encodable dictionary
// size that is greater or equal n. Sizes beyond the maximum return the
// maximum code.
func EncodeDictSize(n int64) byte {
	a, b := byte(0), byte(maxDictSizeCode)
	for a < b {
		c := a + (b-a)>>1
		if n <= decodeDictSize(c) {
			b = c
		} else {
			a = c + 1
		}
	}
	return a
}

// formatDictSize is used in log messages.
func formatDictSize(n int64) string {
	switch {
	case n%(1<<20) == 0:
		return fmt.Sprintf("%d MiB", n>>20)
	case n%(1<<10) == 0:
		return fmt.Sprintf("%d KiB", n>>10)
	}
	return fmt.Sprintf("%d B", n)
}
