package lzma

import (
	"bytes"
	"errors"
	"strings"

	"github.com/xzkit/xzcore/xlog"
)

// ChunkDecoder decodes a sequence of LZMA2 chunks. It keeps the dictionary
// and the LZMA state between chunks, so the chunks of a stream must be
// passed in order. A group of chunks starting with a dictionary reset can be
// decoded by its own ChunkDecoder.
type ChunkDecoder struct {
	dict   decoderDict
	dec    decoder
	cstate chunkState
	// bytes decoded before the last dictionary reset
	base   int64
	br     bytes.Reader
	logger xlog.Logger
}

// NewChunkDecoder creates a new chunk decoder. Only the dictionary size and
// the logger of the configuration are used.
func NewChunkDecoder(cfg ReaderConfig) (*ChunkDecoder, error) {
	cfg.ApplyDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	d := new(ChunkDecoder)
	d.dict.init(cfg.DictSize)
	d.dec.dict = &d.dict
	d.logger = cfg.Logger
	return d, nil
}

// Reset puts the decoder back into its initial state. The next chunk must
// reset the dictionary.
func (d *ChunkDecoder) Reset() {
	d.dict.reset()
	d.cstate = csStart
	d.base = 0
}

// pos returns the number of bytes decoded since the decoder has been
// created or reset.
func (d *ChunkDecoder) pos() int64 {
	return d.base + d.dict.head
}

// Finished reports whether the end-of-stream chunk has been decoded.
func (d *ChunkDecoder) Finished() bool {
	return d.cstate == csFinal
}

// start checks that the chunk is allowed at this point and applies the
// resets the header requests.
func (d *ChunkDecoder) start(h ChunkHeader) error {
	pos := d.dict.head
	s := d.cstate.next(h.Kind)
	if s == csErr {
		return corrupt("chunk sequence", pos,
			"unexpected chunk %v in state %v", h.Kind, d.cstate)
	}
	d.cstate = s
	if h.Kind.ResetsDict() {
		d.base += d.dict.head
		d.dict.reset()
	}
	switch h.Kind {
	case ChunkEOS:
		xlog.Println(d.logger, "end of stream")
	case ChunkLZMAFullReset, ChunkLZMAPropsReset:
		d.dec.state.init(h.Props)
		xlog.Printf(d.logger, "chunk %v: properties %v", h.Kind, h.Props)
	case ChunkLZMAStateReset:
		d.dec.state.reset()
	}
	return nil
}

// Decode decodes the chunk with header h. The payload must contain exactly
// the bytes following the header. The decoded bytes are appended to out.
// Corrupt data returns a CorruptError, whose position counts the bytes
// decoded since the decoder has been created or reset. The end-of-stream
// chunk appends nothing; every chunk that follows it is an error.
func (d *ChunkDecoder) Decode(h ChunkHeader, payload, out []byte,
) ([]byte, error) {
	out, err := d.decode(h, payload, out)
	if err != nil {
		var e *CorruptError
		if errors.As(err, &e) {
			e.Pos += d.base
		}
	}
	return out, err
}

func (d *ChunkDecoder) decode(h ChunkHeader, payload, out []byte,
) ([]byte, error) {
	if err := h.check(); err != nil {
		return out, corrupt("chunk header", d.dict.head, "%s",
			strings.TrimPrefix(err.Error(), "lzma: "))
	}
	if len(payload) != h.PayloadLen() {
		return out, corrupt("chunk payload", d.dict.head,
			"payload length %d doesn't match %d required by header",
			len(payload), h.PayloadLen())
	}
	if err := d.start(h); err != nil {
		return out, err
	}
	switch {
	case h.Kind == ChunkEOS:
		return out, nil
	case !h.Kind.IsLZMA():
		return d.copyUncompressed(payload, out), nil
	}
	return d.decodeLZMA(h, payload, out)
}

// copyUncompressed puts the payload into the dictionary and appends it to
// out.
func (d *ChunkDecoder) copyUncompressed(p, out []byte) []byte {
	for len(p) > 0 {
		k := d.dict.free()
		if k > len(p) {
			k = len(p)
		}
		d.dict.write(p[:k])
		out = d.dict.appendUnread(out)
		p = p[k:]
	}
	return out
}

// decodeLZMA decodes the compressed payload of an LZMA chunk.
func (d *ChunkDecoder) decodeLZMA(h ChunkHeader, payload, out []byte,
) ([]byte, error) {
	d.br.Reset(payload)
	start := d.dict.head
	if err := d.dec.rd.init(&d.br); err != nil {
		return out, wrapDecodeErr("range decoder init", start, err)
	}
	n := int64(h.Size)
	for n > 0 {
		if d.dict.free() < maxMatchLen {
			out = d.dict.appendUnread(out)
		}
		k, eos, err := d.dec.decodeOp(n)
		if err != nil {
			return d.dict.appendUnread(out), err
		}
		if eos {
			return d.dict.appendUnread(out), corrupt("chunk end",
				d.dict.head, "end-of-stream marker in LZMA2 chunk")
		}
		n -= int64(k)
	}
	out = d.dict.appendUnread(out)
	if !d.dec.rd.finished() {
		return out, corrupt("chunk end", d.dict.head,
			"range decoder not finished")
	}
	if d.br.Len() > 0 {
		return out, corrupt("chunk end", d.dict.head,
			"%d unused bytes of compressed data", d.br.Len())
	}
	return out, nil
}
