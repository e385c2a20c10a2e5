package lzma

import (
	"io"
)

// Writer2 compresses data into an LZMA2 stream.
type Writer2 struct {
	cw  chunkWriter
	cfg WriterConfig
}

// NewWriter2 creates an LZMA2 writer using the given configuration. Zero
// values of the configuration are replaced by defaults. The Size, EOS and
// SizeInHeader fields are ignored.
func NewWriter2(w io.Writer, cfg WriterConfig) (*Writer2, error) {
	c := cfg.normalized()
	if err := c.VerifyLZMA2(); err != nil {
		return nil, err
	}
	z := &Writer2{cfg: c}
	z.cw.init(w, &z.cfg, writerCapacity(c.DictSize), c.DictSize)
	return z, nil
}

// Reset discards the state of the writer and starts a new stream written
// to w. The configuration is kept and the buffers are reused. Data that has
// not been flushed is lost.
func (z *Writer2) Reset(w io.Writer) {
	z.cw.reset(w)
}

// DictSize returns the dictionary size used by the writer.
func (z *Writer2) DictSize() int {
	return z.cfg.DictSize
}

// Write compresses the data in p.
func (z *Writer2) Write(p []byte) (n int, err error) {
	return z.cw.Write(p)
}

// Flush writes all buffered data as complete chunks. The dictionary is
// kept, so further data may still refer to data written before.
func (z *Writer2) Flush() error {
	return z.cw.flush()
}

// Close flushes all data and writes the end-of-stream chunk. It doesn't
// close the underlying writer.
func (z *Writer2) Close() error {
	if z.cw.err == ErrClosed {
		return ErrClosed
	}
	if err := z.cw.flush(); err != nil {
		return err
	}
	z.cw.err = ErrClosed
	_, err := z.cw.w.Write([]byte{byte(ChunkEOS)})
	return err
}
