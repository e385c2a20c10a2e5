package lzma

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Limits for LZMA2 chunks.
const (
	// maximum size of the compressed data and of uncompressed chunks
	maxCompressedChunkSize = 1 << 16
	// maximum size of the uncompressed data of an LZMA chunk
	maxUncompressedChunkSize = 1 << 21
	// maximum length of a chunk header
	maxChunkHeaderLen = 6
)

// ChunkKind is the type of an LZMA2 chunk. The value is the control byte
// of the chunk header without the size bits.
type ChunkKind byte

// Chunk kinds supported by LZMA2.
const (
	// end of stream
	ChunkEOS ChunkKind = 0x00
	// uncompressed chunk with dictionary reset
	ChunkUncompressedReset ChunkKind = 0x01
	// uncompressed chunk without reset
	ChunkUncompressed ChunkKind = 0x02
	// LZMA chunk without reset
	ChunkLZMA ChunkKind = 0x80
	// LZMA chunk with state reset
	ChunkLZMAStateReset ChunkKind = 0xa0
	// LZMA chunk with state reset and new properties
	ChunkLZMAPropsReset ChunkKind = 0xc0
	// LZMA chunk with state reset, new properties and dictionary reset
	ChunkLZMAFullReset ChunkKind = 0xe0
)

// mask for the kind bits of an LZMA chunk control byte
const kindMask = 0xe0

var chunkKindNames = map[ChunkKind]string{
	ChunkEOS:               "EOS",
	ChunkUncompressedReset: "UD",
	ChunkUncompressed:      "U",
	ChunkLZMA:              "L",
	ChunkLZMAStateReset:    "LR",
	ChunkLZMAPropsReset:    "LRN",
	ChunkLZMAFullReset:     "LRND",
}

// String returns the short name of the chunk kind.
func (k ChunkKind) String() string {
	if s, ok := chunkKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ChunkKind(%#04x)", byte(k))
}

// IsLZMA returns whether the chunk contains LZMA compressed data.
func (k ChunkKind) IsLZMA() bool {
	return k&0x80 != 0
}

// ResetsDict returns whether the chunk resets the dictionary. Chunks of
// this kind can be decoded independently of their predecessors.
func (k ChunkKind) ResetsDict() bool {
	return k == ChunkUncompressedReset || k == ChunkLZMAFullReset
}

// headerLen returns the length of the header for the chunk kind.
func (k ChunkKind) headerLen() int {
	switch k {
	case ChunkEOS:
		return 1
	case ChunkUncompressed, ChunkUncompressedReset:
		return 3
	case ChunkLZMA, ChunkLZMAStateReset:
		return 5
	}
	return 6
}

// ChunkHeader represents the header of an LZMA2 chunk.
type ChunkHeader struct {
	Kind ChunkKind
	// size of the uncompressed data
	Size int
	// size of the compressed data; only used by LZMA chunks
	CompressedSize int
	// properties; only used by chunks with new properties
	Props Properties
}

// String returns a short description of the header.
func (h ChunkHeader) String() string {
	switch {
	case h.Kind == ChunkEOS:
		return h.Kind.String()
	case !h.Kind.IsLZMA():
		return fmt.Sprintf("%s %d", h.Kind, h.Size)
	case h.Kind == ChunkLZMAPropsReset || h.Kind == ChunkLZMAFullReset:
		return fmt.Sprintf("%s %d->%d %v", h.Kind, h.CompressedSize,
			h.Size, h.Props)
	}
	return fmt.Sprintf("%s %d->%d", h.Kind, h.CompressedSize, h.Size)
}

// PayloadLen returns the number of bytes following the header.
func (h ChunkHeader) PayloadLen() int {
	switch {
	case h.Kind == ChunkEOS:
		return 0
	case h.Kind.IsLZMA():
		return h.CompressedSize
	}
	return h.Size
}

// kindOf extracts the chunk kind from a control byte.
func kindOf(c byte) (ChunkKind, error) {
	if c&0x80 != 0 {
		return ChunkKind(c & kindMask), nil
	}
	k := ChunkKind(c)
	switch k {
	case ChunkEOS, ChunkUncompressedReset, ChunkUncompressed:
		return k, nil
	}
	return 0, corrupt("chunk header", 0,
		"unsupported control byte %#04x", c)
}

// ParseChunkHeader parses the chunk header at the start of p. It returns
// the header and its length. If p is too short a CorruptError unwrapping to
// io.ErrUnexpectedEOF is returned.
func ParseChunkHeader(p []byte) (h ChunkHeader, n int, err error) {
	if len(p) == 0 {
		return h, 0, wrapDecodeErr("chunk header", 0, io.ErrUnexpectedEOF)
	}
	if h.Kind, err = kindOf(p[0]); err != nil {
		return h, 0, err
	}
	n = h.Kind.headerLen()
	if len(p) < n {
		return h, 0, wrapDecodeErr("chunk header", 0, io.ErrUnexpectedEOF)
	}
	switch n {
	case 1:
		return h, n, nil
	case 3:
		h.Size = int(binary.BigEndian.Uint16(p[1:3])) + 1
		return h, n, nil
	}
	h.Size = int(p[0]&0x1f)<<16 + int(binary.BigEndian.Uint16(p[1:3])) + 1
	h.CompressedSize = int(binary.BigEndian.Uint16(p[3:5])) + 1
	if n == 6 {
		if err = h.Props.fromByte(p[5]); err != nil {
			return h, 0, corrupt("chunk header", 0, "%v %#04x", err, p[5])
		}
		if h.Props.LC+h.Props.LP > 4 {
			return h, 0, corrupt("chunk header", 0,
				"LC+LP of properties %v exceeds 4", h.Props)
		}
	}
	return h, n, nil
}

// ReadChunkHeader reads a chunk header from r. It returns io.EOF only if no
// byte could be read at all.
func ReadChunkHeader(r io.Reader) (h ChunkHeader, err error) {
	var p [maxChunkHeaderLen]byte
	if _, err = io.ReadFull(r, p[:1]); err != nil {
		return h, err
	}
	k, err := kindOf(p[0])
	if err != nil {
		return h, err
	}
	n := k.headerLen()
	if _, err = io.ReadFull(r, p[1:n]); err != nil {
		return h, wrapDecodeErr("chunk header", 0, err)
	}
	h, _, err = ParseChunkHeader(p[:n])
	return h, err
}

// check verifies that the values of the header are within the limits of
// its kind.
func (h ChunkHeader) check() error {
	switch h.Kind {
	case ChunkEOS:
		return nil
	case ChunkUncompressed, ChunkUncompressedReset:
		if !(1 <= h.Size && h.Size <= maxCompressedChunkSize) {
			return fmt.Errorf(
				"lzma: size %d out of range for uncompressed chunk",
				h.Size)
		}
		return nil
	case ChunkLZMA, ChunkLZMAStateReset, ChunkLZMAPropsReset,
		ChunkLZMAFullReset:
	default:
		return fmt.Errorf("lzma: invalid chunk kind %v", h.Kind)
	}
	if !(1 <= h.Size && h.Size <= maxUncompressedChunkSize) {
		return fmt.Errorf("lzma: chunk size %d out of range", h.Size)
	}
	if !(1 <= h.CompressedSize && h.CompressedSize <= maxCompressedChunkSize) {
		return fmt.Errorf("lzma: compressed chunk size %d out of range",
			h.CompressedSize)
	}
	if h.Kind.headerLen() == 6 {
		return h.Props.verifyLZMA2()
	}
	return nil
}

// AppendBinary appends the binary representation of the chunk header to p.
// An error is returned if the values of the header are inconsistent.
func (h ChunkHeader) AppendBinary(p []byte) ([]byte, error) {
	if err := h.check(); err != nil {
		return p, err
	}
	var d [maxChunkHeaderLen]byte
	d[0] = byte(h.Kind)
	switch n := h.Kind.headerLen(); n {
	case 1:
		return append(p, d[0]), nil
	case 3:
		binary.BigEndian.PutUint16(d[1:], uint16(h.Size-1))
		return append(p, d[:3]...), nil
	}
	us := h.Size - 1
	d[0] |= byte(us >> 16)
	binary.BigEndian.PutUint16(d[1:], uint16(us))
	binary.BigEndian.PutUint16(d[3:], uint16(h.CompressedSize-1))
	n := h.Kind.headerLen()
	if n == 6 {
		d[5] = h.Props.byte()
	}
	return append(p, d[:n]...), nil
}

// chunkState reflects the status of a chunk stream.
type chunkState byte

const (
	// start of the stream
	csStart chunkState = iota
	// dictionary has been reset; the next LZMA chunk must set the
	// properties
	csDict
	// properties are known
	csProps
	// end of stream has been read
	csFinal
	csErr
)

var chunkStateNames = [...]string{
	csStart: "start",
	csDict:  "dictionary reset",
	csProps: "properties set",
	csFinal: "end of stream",
	csErr:   "error",
}

// String returns a description of the chunk state.
func (s chunkState) String() string {
	if int(s) < len(chunkStateNames) {
		return chunkStateNames[s]
	}
	return fmt.Sprintf("chunkState(%d)", byte(s))
}

// next computes the state that follows after a chunk of the given kind.
// Invalid sequences of chunks result in csErr.
func (s chunkState) next(k ChunkKind) chunkState {
	if s == csFinal || s == csErr {
		return csErr
	}
	switch k {
	case ChunkEOS:
		return csFinal
	case ChunkUncompressedReset:
		return csDict
	case ChunkUncompressed:
		if s != csStart {
			return s
		}
	case ChunkLZMA, ChunkLZMAStateReset:
		if s == csProps {
			return csProps
		}
	case ChunkLZMAPropsReset:
		if s != csStart {
			return csProps
		}
	case ChunkLZMAFullReset:
		return csProps
	}
	return csErr
}
