package lzma

import (
	"bufio"
	"io"
	"math"

	"github.com/xzkit/xzcore/xlog"
)

// Reader decompresses a classic LZMA stream.
type Reader struct {
	h    Header
	dict decoderDict
	dec  decoder
	// bytes still to decode; negative if unknown
	remaining int64
	err       error
}

// NewReader reads the header of a classic LZMA stream and returns a reader
// for the decompressed data. The dictionary size is taken from the header;
// only the logger of the configuration is used.
func NewReader(r io.Reader, cfg ReaderConfig) (*Reader, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if int64(h.DictSize) > MaxDictSize {
		return nil, corrupt("header", 0, "dictionary size %d too large",
			h.DictSize)
	}
	dictSize := int(h.DictSize)
	if dictSize < MinDictSize {
		dictSize = MinDictSize
	}
	xlog.Printf(cfg.Logger, "lzma header: %v dict %s", h,
		formatDictSize(int64(dictSize)))
	z := &Reader{h: h, remaining: h.Size}
	z.dict.init(dictSize)
	z.dec.dict = &z.dict
	z.dec.state.init(h.Properties)
	if err = z.dec.rd.init(bufio.NewReader(r)); err != nil {
		return nil, wrapDecodeErr("range decoder init", 0, err)
	}
	return z, nil
}

// Header returns the header of the stream.
func (z *Reader) Header() Header {
	return z.h
}

// fill decodes data until at least n bytes are unread or the dictionary
// has no room for another match.
func (z *Reader) fill(n int) error {
	for z.dict.unread < n && z.dict.free() >= maxMatchLen {
		if z.remaining == 0 {
			return z.finish()
		}
		limit := z.remaining
		if limit < 0 {
			limit = math.MaxInt64
		}
		k, eos, err := z.dec.decodeOp(limit)
		if err != nil {
			return err
		}
		if eos {
			if z.remaining > 0 {
				return corrupt("end of stream", z.dict.head,
					"marker before declared size; %d bytes missing",
					z.remaining)
			}
			if !z.dec.rd.finished() {
				return corrupt("end of stream", z.dict.head,
					"range decoder not finished")
			}
			return io.EOF
		}
		if z.remaining > 0 {
			z.remaining -= int64(k)
		}
	}
	return nil
}

// finish is called after the declared size has been decoded. An optional
// end-of-stream marker may follow.
func (z *Reader) finish() error {
	if z.dec.rd.finished() {
		return io.EOF
	}
	_, eos, err := z.dec.decodeOp(0)
	if err != nil {
		return err
	}
	if !eos || !z.dec.rd.finished() {
		return corrupt("end of stream", z.dict.head,
			"data beyond declared size")
	}
	return io.EOF
}

// Read reads decompressed data.
func (z *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if z.dict.unread > 0 {
			k, _ := z.dict.Read(p[n:])
			n += k
			continue
		}
		if z.err != nil {
			return n, z.err
		}
		z.err = z.fill(len(p) - n)
	}
	return n, nil
}
