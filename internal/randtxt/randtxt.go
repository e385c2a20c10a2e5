// Package randtxt generates deterministic pseudo text. The text consists of
// words drawn from a fixed vocabulary with a Zipf distribution, so it
// compresses similar to natural language.
package randtxt

import (
	"io"
	"math/rand"
)

var words = []string{
	"the", "of", "and", "to", "in", "a", "is", "that", "for", "it",
	"as", "was", "with", "be", "by", "on", "not", "he", "this", "are",
	"or", "his", "from", "at", "which", "but", "have", "an", "had", "they",
	"you", "were", "their", "one", "all", "we", "can", "her", "has", "there",
	"been", "if", "more", "when", "will", "would", "who", "so", "no", "stream",
	"dictionary", "range", "coder", "probability", "literal", "match",
	"distance", "length", "chunk", "window", "state", "encoder", "decoder",
	"buffer", "header", "properties", "position", "repeat", "finder", "hash",
}

// Reader produces an endless stream of words separated by spaces and
// occasional line breaks.
type Reader struct {
	rnd  *rand.Rand
	zipf *rand.Zipf
	buf  []byte
	line int
}

// NewReader creates a reader using the given random source.
func NewReader(src rand.Source) *Reader {
	rnd := rand.New(src)
	return &Reader{
		rnd:  rnd,
		zipf: rand.NewZipf(rnd, 1.2, 2, uint64(len(words)-1)),
	}
}

// Read fills p with text. It never returns an error.
func (r *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if len(r.buf) == 0 {
			w := words[r.zipf.Uint64()]
			r.buf = append(r.buf[:0], w...)
			r.line += len(w) + 1
			if r.line > 72 {
				r.buf = append(r.buf, '\n')
				r.line = 0
			} else {
				r.buf = append(r.buf, ' ')
			}
		}
		k := copy(p[n:], r.buf)
		r.buf = r.buf[k:]
		n += k
	}
	return n, nil
}

// Bytes returns n bytes of text generated from seed.
func Bytes(seed int64, n int) []byte {
	p := make([]byte, n)
	if _, err := io.ReadFull(NewReader(rand.NewSource(seed)), p); err != nil {
		panic(err)
	}
	return p
}
