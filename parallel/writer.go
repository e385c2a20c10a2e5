package parallel

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/xzkit/xzcore/lzma"
	"github.com/xzkit/xzcore/xlog"
)

// Writer compresses data into an LZMA2 stream using multiple goroutines.
// The output is identical to the concatenation of the EncodeChunks results
// for all segments followed by the end-of-stream chunk.
type Writer struct {
	w      io.Writer
	cfg    WriterConfig
	buf    []byte
	// ctx is done after the first error; parent follows the caller
	ctx    context.Context
	parent context.Context
	cancel context.CancelFunc
	g      *errgroup.Group
	// futures of the compressed segments in output order
	queue   chan chan []byte
	segment int
	err     error
}

// NewWriter creates a parallel LZMA2 writer. Cancelling the context stops
// all goroutines; the writer then returns an error matching the context
// error.
func NewWriter(ctx context.Context, w io.Writer, cfg WriterConfig) (*Writer,
	error) {
	cfg.ApplyDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers + 1)
	z := &Writer{
		w:      w,
		cfg:    cfg,
		buf:    make([]byte, 0, cfg.SegmentSize),
		ctx:    gctx,
		parent: ctx,
		cancel: cancel,
		g:      g,
		queue:  make(chan chan []byte, 2*cfg.Workers),
	}
	g.Go(z.output)
	return z, nil
}

// output writes the compressed segments in order.
func (z *Writer) output() error {
	for f := range z.queue {
		select {
		case p := <-f:
			if _, err := z.w.Write(p); err != nil {
				return err
			}
		case <-z.ctx.Done():
			return z.ctx.Err()
		}
	}
	return nil
}

// submit hands the buffered data to a worker.
func (z *Writer) submit() error {
	seg := z.buf
	z.buf = make([]byte, 0, z.cfg.SegmentSize)
	f := make(chan []byte, 1)
	select {
	case z.queue <- f:
	case <-z.ctx.Done():
		z.err = z.shutdown()
		return z.err
	}
	i := z.segment
	z.segment++
	cfg := z.cfg.WriterConfig
	cfg.Logger = xlog.WithPrefix(z.cfg.Logger,
		fmt.Sprintf("segment %d: ", i))
	z.g.Go(func() error {
		if err := z.ctx.Err(); err != nil {
			return err
		}
		p, err := cfg.EncodeChunks(nil, seg)
		if err != nil {
			return err
		}
		xlog.Printf(cfg.Logger, "%d -> %d bytes", len(seg), len(p))
		f <- p
		return nil
	})
	return nil
}

// shutdown waits for all goroutines and returns the first error.
func (z *Writer) shutdown() error {
	close(z.queue)
	err := z.g.Wait()
	if err == nil {
		err = z.parent.Err()
	}
	z.cancel()
	return err
}

// Write buffers the data and compresses full segments.
func (z *Writer) Write(p []byte) (n int, err error) {
	if z.err != nil {
		return 0, z.err
	}
	if z.ctx.Err() != nil {
		z.err = z.shutdown()
		return 0, z.err
	}
	for len(p) > 0 {
		k := z.cfg.SegmentSize - len(z.buf)
		if k > len(p) {
			k = len(p)
		}
		z.buf = append(z.buf, p[:k]...)
		n += k
		p = p[k:]
		if len(z.buf) == z.cfg.SegmentSize {
			if err = z.submit(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Close compresses the remaining data, waits for all workers and writes
// the end-of-stream chunk. It doesn't close the underlying writer.
func (z *Writer) Close() error {
	if z.err != nil {
		return z.err
	}
	if len(z.buf) > 0 {
		if err := z.submit(); err != nil {
			return err
		}
	}
	z.err = lzma.ErrClosed
	if err := z.shutdown(); err != nil {
		z.err = err
		return err
	}
	_, err := z.w.Write([]byte{byte(lzma.ChunkEOS)})
	return err
}
