package lzma

import (
	"bytes"
	"io"

	"github.com/xzkit/xzcore/xlog"
)

// maxOpBytes is an upper bound for the number of bytes a single operation
// may add to the range encoder output.
const maxOpBytes = 64

// chunkWriter encodes the data written to it as a sequence of LZMA2 chunks.
// The end-of-stream chunk is not written.
type chunkWriter struct {
	encoder
	w io.Writer
	// compressed data of the open chunk
	buf bytes.Buffer
	hdr []byte
	// window index of the first byte of the open chunk
	chunkStart int
	// uncompressed size of the open chunk
	n    int
	open bool

	needDictReset  bool
	needProps      bool
	needStateReset bool

	logger xlog.Logger
	err    error
}

// init initializes the chunk writer. The configuration must have been
// normalized and verified.
func (w *chunkWriter) init(z io.Writer, cfg *WriterConfig, capacity,
	histSize int) {
	w.encoder.init(cfg, capacity, histSize)
	w.logger = cfg.Logger
	w.start(z)
}

// reset starts a new stream written to z. The dictionary is cleared.
func (w *chunkWriter) reset(z io.Writer) {
	w.encoder.reset()
	w.start(z)
}

// start sets up the chunk writer for a new stream. The first chunk
// resets the dictionary.
func (w *chunkWriter) start(z io.Writer) {
	w.w = z
	w.buf.Reset()
	w.hdr = w.hdr[:0]
	w.chunkStart, w.n, w.open = 0, 0, false
	w.needDictReset = true
	w.needProps = true
	w.needStateReset = true
	w.err = nil
}

// writerCapacity returns the window capacity for a streaming writer.
func writerCapacity(dictSize int) int {
	n := dictSize
	if n < maxUncompressedChunkSize {
		n = maxUncompressedChunkSize
	}
	return n + bufferSize
}

// startChunk opens a new chunk at the current encoder position.
func (w *chunkWriter) startChunk() {
	w.buf.Reset()
	w.re.init(&w.buf)
	if w.needStateReset {
		w.state.reset()
	}
	w.chunkStart = w.ecur
	w.n = 0
	w.open = true
}

// writeOps encodes the operations that are available in the window. Chunks
// are finished before they exceed one of the size limits. If flush is set
// all data in the window is encoded.
func (w *chunkWriter) writeOps(flush bool) error {
	for {
		op, ok := w.nextOp(flush)
		if !ok {
			return nil
		}
		if !w.open {
			w.startChunk()
		} else if w.n+op.n > maxUncompressedChunkSize ||
			w.re.Pending()+maxOpBytes > maxCompressedChunkSize {
			if err := w.finishChunk(); err != nil {
				return err
			}
			w.startChunk()
		}
		if err := w.writeOp(op); err != nil {
			return err
		}
		w.popOp(op)
		w.n += op.n
	}
}

// finishChunk writes the open chunk. Data that doesn't compress is written
// as uncompressed chunks.
func (w *chunkWriter) finishChunk() error {
	if !w.open {
		return nil
	}
	w.open = false
	if err := w.re.Close(); err != nil {
		return err
	}
	data := w.win.data[w.chunkStart : w.chunkStart+w.n]
	k := int(w.re.Len())
	h := ChunkHeader{Size: w.n, CompressedSize: k}
	switch {
	case w.needDictReset:
		h.Kind = ChunkLZMAFullReset
	case w.needProps:
		h.Kind = ChunkLZMAPropsReset
	case w.needStateReset:
		h.Kind = ChunkLZMAStateReset
	default:
		h.Kind = ChunkLZMA
	}
	u := (w.n + maxCompressedChunkSize - 1) / maxCompressedChunkSize
	if k > maxCompressedChunkSize || k+h.Kind.headerLen() >= w.n+3*u {
		return w.writeUncompressed(data)
	}
	h.Props = w.state.Properties
	var err error
	if w.hdr, err = h.AppendBinary(w.hdr[:0]); err != nil {
		return err
	}
	xlog.Printf(w.logger, "chunk %v", h)
	if _, err = w.w.Write(w.hdr); err != nil {
		return err
	}
	if _, err = w.w.Write(w.buf.Bytes()); err != nil {
		return err
	}
	w.needDictReset = false
	w.needProps = false
	w.needStateReset = false
	return nil
}

// writeUncompressed writes the data as uncompressed chunks. The next LZMA
// chunk has to reset the state, because the decoder doesn't see the
// operations encoded for the data.
func (w *chunkWriter) writeUncompressed(data []byte) error {
	for len(data) > 0 {
		k := len(data)
		if k > maxCompressedChunkSize {
			k = maxCompressedChunkSize
		}
		h := ChunkHeader{Kind: ChunkUncompressed, Size: k}
		if w.needDictReset {
			h.Kind = ChunkUncompressedReset
			w.needDictReset = false
		}
		var err error
		if w.hdr, err = h.AppendBinary(w.hdr[:0]); err != nil {
			return err
		}
		xlog.Printf(w.logger, "chunk %v", h)
		if _, err = w.w.Write(w.hdr); err != nil {
			return err
		}
		if _, err = w.w.Write(data[:k]); err != nil {
			return err
		}
		data = data[k:]
	}
	w.needStateReset = true
	return nil
}

// Write puts the data into the window and encodes it if the window is
// full.
func (w *chunkWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	for {
		k := w.win.write(p[n:])
		n += k
		if n == len(p) {
			return n, nil
		}
		if err = w.writeOps(false); err != nil {
			w.err = err
			return n, err
		}
		keep := w.ecur
		if w.open {
			keep = w.chunkStart
		}
		w.chunkStart -= w.compact(keep)
	}
}

// flush encodes all data in the window and writes the open chunk.
func (w *chunkWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.writeOps(true); err != nil {
		w.err = err
		return err
	}
	if err := w.finishChunk(); err != nil {
		w.err = err
		return err
	}
	w.compact(w.ecur)
	return nil
}

// EncodeChunks compresses data into a sequence of LZMA2 chunks and appends
// them to dst. The first chunk resets the dictionary, so the chunks can be
// decoded independently of any preceding chunks. No end-of-stream chunk is
// written. Empty data produces no chunks.
func (cfg *WriterConfig) EncodeChunks(dst, data []byte) ([]byte, error) {
	c := cfg.normalized()
	if err := c.VerifyLZMA2(); err != nil {
		return dst, err
	}
	if len(data) == 0 {
		return dst, nil
	}
	buf := bytes.NewBuffer(dst)
	var w chunkWriter
	w.init(buf, &c, len(data), historySize(c.DictSize, int64(len(data))))
	if _, err := w.Write(data); err != nil {
		return dst, err
	}
	if err := w.flush(); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}
