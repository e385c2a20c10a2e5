package lzma

import (
	"bufio"
	"errors"
	"io"

	"github.com/xzkit/xzcore/xlog"
)

// Writer compresses data into a classic LZMA stream. The writer must be
// closed to write the end of the stream.
type Writer struct {
	encoder
	bw  *bufio.Writer
	cfg WriterConfig
	// number of bytes written
	n   int64
	err error
}

// errSize reports a mismatch between the declared and the written size.
var errSize = errors.New("lzma: number of bytes written differs from declared size")

// NewWriter creates a writer for a classic LZMA stream and writes the
// header. If the size is not stored in the header the stream is terminated
// by an end-of-stream marker.
func NewWriter(w io.Writer, cfg WriterConfig) (*Writer, error) {
	c := cfg.normalized()
	if err := c.Verify(); err != nil {
		return nil, err
	}
	h := Header{
		Properties: *c.Properties,
		DictSize:   uint32(c.DictSize),
		Size:       -1,
	}
	sizeHint := int64(-1)
	if c.SizeInHeader {
		h.Size = c.Size
		sizeHint = c.Size
	}
	z := &Writer{bw: bufio.NewWriter(w), cfg: c}
	p, err := h.AppendBinary(make([]byte, 0, HeaderLen))
	if err != nil {
		return nil, err
	}
	if _, err = z.bw.Write(p); err != nil {
		return nil, err
	}
	z.encoder.init(&z.cfg, c.DictSize+bufferSize,
		historySize(c.DictSize, sizeHint))
	z.re.init(z.bw)
	xlog.Printf(c.Logger, "lzma header: %v dict %s", h,
		formatDictSize(int64(c.DictSize)))
	return z, nil
}

// writeOps encodes all operations available in the window.
func (z *Writer) writeOps(flush bool) error {
	for {
		op, ok := z.nextOp(flush)
		if !ok {
			return nil
		}
		if err := z.writeOp(op); err != nil {
			return err
		}
		z.popOp(op)
	}
}

// Write compresses the data in p. Writing more bytes than declared in the
// header returns an error.
func (z *Writer) Write(p []byte) (n int, err error) {
	if z.err != nil {
		return 0, z.err
	}
	if z.cfg.SizeInHeader && int64(len(p)) > z.cfg.Size-z.n {
		p = p[:z.cfg.Size-z.n]
		err = errSize
	}
	for {
		k := z.win.write(p[n:])
		n += k
		z.n += int64(k)
		if n == len(p) {
			return n, err
		}
		if z.err = z.writeOps(false); z.err != nil {
			return n, z.err
		}
		z.compact(z.ecur)
	}
}

// Close encodes the remaining data and terminates the stream. It doesn't
// close the underlying writer.
func (z *Writer) Close() error {
	if z.err != nil {
		return z.err
	}
	z.err = ErrClosed
	if err := z.writeOps(true); err != nil {
		return err
	}
	if z.cfg.SizeInHeader && z.n != z.cfg.Size {
		return errSize
	}
	if z.cfg.EOS {
		if err := z.writeEOS(); err != nil {
			return err
		}
	}
	if err := z.re.Close(); err != nil {
		return err
	}
	return z.bw.Flush()
}
