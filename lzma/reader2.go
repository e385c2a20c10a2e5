package lzma

import (
	"bufio"
	"io"
)

// Reader2 decompresses an LZMA2 stream. The stream must be terminated by the
// end-of-stream chunk; a missing chunk is reported as truncated input.
type Reader2 struct {
	r       *bufio.Reader
	dec     *ChunkDecoder
	payload []byte
	// decoded data not yet read
	out []byte
	off int
	err error
}

// NewReader2 creates a reader for the LZMA2 stream in r. The dictionary size
// of the configuration must not be smaller than the dictionary size used
// for compression.
func NewReader2(r io.Reader, cfg ReaderConfig) (*Reader2, error) {
	d, err := NewChunkDecoder(cfg)
	if err != nil {
		return nil, err
	}
	return &Reader2{
		r:       bufio.NewReader(r),
		dec:     d,
		payload: make([]byte, 0, maxCompressedChunkSize),
	}, nil
}

// readChunk reads and decodes the next chunk. It returns io.EOF after the
// end-of-stream chunk.
func (z *Reader2) readChunk() error {
	pos := z.dec.pos()
	h, err := ReadChunkHeader(z.r)
	if err != nil {
		return atPos(wrapDecodeErr("chunk header", pos, err), pos)
	}
	z.payload = z.payload[:h.PayloadLen()]
	if _, err = io.ReadFull(z.r, z.payload); err != nil {
		return wrapDecodeErr("chunk payload", pos, err)
	}
	z.out, err = z.dec.Decode(h, z.payload, z.out[:0])
	z.off = 0
	if err != nil {
		return err
	}
	if z.dec.Finished() {
		return io.EOF
	}
	return nil
}

// Read reads decompressed data.
func (z *Reader2) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if z.off < len(z.out) {
			k := copy(p[n:], z.out[z.off:])
			z.off += k
			n += k
			continue
		}
		if z.err != nil {
			return n, z.err
		}
		z.err = z.readChunk()
	}
	return n, nil
}

// WriteTo writes the decompressed data to w.
func (z *Reader2) WriteTo(w io.Writer) (n int64, err error) {
	for {
		if z.off < len(z.out) {
			k, err := w.Write(z.out[z.off:])
			z.off += k
			n += int64(k)
			if err != nil {
				return n, err
			}
			continue
		}
		if z.err != nil {
			if z.err == io.EOF {
				return n, nil
			}
			return n, z.err
		}
		z.err = z.readChunk()
	}
}
