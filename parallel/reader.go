package parallel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/xzkit/xzcore/lzma"
	"github.com/xzkit/xzcore/xlog"
)

// groupBuffer is the number of chunks a group buffers before decoding and
// the number of decoded chunks it buffers before they are written.
const groupBuffer = 8

// chunk is a chunk header together with its payload.
type chunk struct {
	h       lzma.ChunkHeader
	payload []byte
}

// group is a sequence of chunks starting with a dictionary reset. The
// splitter sends the chunks to in; the worker sends the decoded data of
// every chunk to out. Both channels are bounded, so a long group is
// decoded while it is read.
type group struct {
	in  chan chunk
	out chan []byte
	// uncompressed position of the group in the stream
	pos int64
}

// Reader decompresses an LZMA2 stream using multiple goroutines. Groups of
// chunks starting with a dictionary reset are decoded concurrently and
// written in order into a pipe. The number of chunks held in memory is
// bounded.
type Reader struct {
	pr     *io.PipeReader
	cancel context.CancelFunc
}

// NewReader creates a parallel LZMA2 reader. The first error of any
// goroutine is returned by Read; cancelling the context stops all of them.
func NewReader(ctx context.Context, r io.Reader, cfg ReaderConfig) (*Reader,
	error) {
	cfg.ApplyDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	d := &decompressor{
		r:      bufio.NewReader(r),
		pw:     pw,
		cfg:    cfg,
		groups: make(chan *group, cfg.Workers),
	}
	go d.run(ctx)
	return &Reader{pr: pr, cancel: cancel}, nil
}

// Read reads decompressed data.
func (z *Reader) Read(p []byte) (n int, err error) {
	return z.pr.Read(p)
}

// Close stops all goroutines. The underlying reader is not closed.
func (z *Reader) Close() error {
	z.cancel()
	return z.pr.Close()
}

// decompressor holds the goroutines of a reader.
type decompressor struct {
	r      *bufio.Reader
	pw     *io.PipeWriter
	cfg    ReaderConfig
	g      *errgroup.Group
	ctx    context.Context
	groups chan *group
	// uncompressed bytes in the chunks read so far
	pos int64
	// number of groups started
	n int
}

func (d *decompressor) run(ctx context.Context) {
	d.g, d.ctx = errgroup.WithContext(ctx)
	d.g.SetLimit(d.cfg.Workers + 2)
	d.g.Go(func() error {
		defer close(d.groups)
		return d.split()
	})
	d.g.Go(d.merge)
	d.pw.CloseWithError(d.g.Wait())
}

// truncated returns the error for a stream that ends prematurely.
func (d *decompressor) truncated(step string) error {
	return &lzma.CorruptError{Step: step, Pos: d.pos,
		Msg: "truncated input", Err: io.ErrUnexpectedEOF}
}

// split reads the chunks of the stream and hands them to the group they
// belong to. A new group is started at every dictionary reset.
func (d *decompressor) split() error {
	var grp *group
	defer func() {
		if grp != nil {
			close(grp.in)
		}
	}()
	for {
		if err := d.ctx.Err(); err != nil {
			return err
		}
		h, err := lzma.ReadChunkHeader(d.r)
		if err != nil {
			if err == io.EOF {
				return d.truncated("chunk header")
			}
			var e *lzma.CorruptError
			if errors.As(err, &e) {
				e.Pos = d.pos
			}
			return err
		}
		if grp != nil && (h.Kind.ResetsDict() || h.Kind == lzma.ChunkEOS) {
			close(grp.in)
			grp = nil
		}
		if h.Kind == lzma.ChunkEOS {
			return nil
		}
		p := make([]byte, h.PayloadLen())
		if _, err = io.ReadFull(d.r, p); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				err = d.truncated("chunk payload")
			}
			return err
		}
		if grp == nil {
			if grp, err = d.startGroup(); err != nil {
				return err
			}
		}
		select {
		case grp.in <- chunk{h: h, payload: p}:
		case <-d.ctx.Done():
			return d.ctx.Err()
		}
		d.pos += int64(h.Size)
	}
}

// startGroup creates a group at the current position and starts its
// worker.
func (d *decompressor) startGroup() (*group, error) {
	grp := &group{
		in:  make(chan chunk, groupBuffer),
		out: make(chan []byte, groupBuffer),
		pos: d.pos,
	}
	select {
	case d.groups <- grp:
	case <-d.ctx.Done():
		return nil, d.ctx.Err()
	}
	logger := xlog.WithPrefix(d.cfg.Logger,
		fmt.Sprintf("group %d: ", d.n))
	d.n++
	rcfg := d.cfg.ReaderConfig
	rcfg.Logger = logger
	d.g.Go(func() error {
		return d.decode(grp, rcfg)
	})
	return grp, nil
}

// decode decodes the chunks of a group. The output channel is only closed
// after the group has been decoded successfully.
func (d *decompressor) decode(grp *group, cfg lzma.ReaderConfig) error {
	dec, err := lzma.NewChunkDecoder(cfg)
	if err != nil {
		return err
	}
	var n int64
	for {
		var c chunk
		var ok bool
		select {
		case c, ok = <-grp.in:
		case <-d.ctx.Done():
			return d.ctx.Err()
		}
		if !ok {
			xlog.Printf(cfg.Logger, "%d bytes", n)
			close(grp.out)
			return nil
		}
		p, err := dec.Decode(c.h, c.payload, nil)
		if err != nil {
			var e *lzma.CorruptError
			if errors.As(err, &e) {
				e.Pos += grp.pos
			}
			return err
		}
		n += int64(len(p))
		if len(p) == 0 {
			continue
		}
		select {
		case grp.out <- p:
		case <-d.ctx.Done():
			return d.ctx.Err()
		}
	}
}

// merge writes the decoded groups in stream order into the pipe.
func (d *decompressor) merge() error {
	for grp := range d.groups {
		for {
			var p []byte
			var ok bool
			select {
			case p, ok = <-grp.out:
			case <-d.ctx.Done():
				return d.ctx.Err()
			}
			if !ok {
				break
			}
			if _, err := d.pw.Write(p); err != nil {
				return err
			}
		}
	}
	return nil
}
