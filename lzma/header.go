package lzma

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderLen is the length of the header of a classic LZMA stream.
const HeaderLen = 13

// noHeaderSize marks an unknown uncompressed size in the header.
const noHeaderSize uint64 = 1<<64 - 1

// Header represents the header of a classic LZMA stream.
type Header struct {
	Properties Properties
	DictSize   uint32
	// Size is the uncompressed size; -1 marks an unknown size.
	Size int64
}

// String returns a short description of the header.
func (h Header) String() string {
	return fmt.Sprintf("%v DictSize %d Size %d", h.Properties, h.DictSize,
		h.Size)
}

// AppendBinary appends the 13 bytes of the header to p.
func (h Header) AppendBinary(p []byte) ([]byte, error) {
	if err := h.Properties.Verify(); err != nil {
		return p, err
	}
	if h.Size < -1 {
		return p, configErrorf("Size", "%d is invalid", h.Size)
	}
	var b [HeaderLen]byte
	b[0] = h.Properties.byte()
	binary.LittleEndian.PutUint32(b[1:5], h.DictSize)
	u := noHeaderSize
	if h.Size >= 0 {
		u = uint64(h.Size)
	}
	binary.LittleEndian.PutUint64(b[5:], u)
	return append(p, b[:]...), nil
}

// UnmarshalBinary decodes the header from p.
func (h *Header) UnmarshalBinary(p []byte) error {
	if len(p) != HeaderLen {
		return corrupt("header", 0, "length %d; want %d", len(p),
			HeaderLen)
	}
	if err := h.Properties.fromByte(p[0]); err != nil {
		return corrupt("header", 0, "%v %#04x", err, p[0])
	}
	h.DictSize = binary.LittleEndian.Uint32(p[1:5])
	u := binary.LittleEndian.Uint64(p[5:])
	switch {
	case u == noHeaderSize:
		h.Size = -1
	case u > 1<<63-1:
		return corrupt("header", 0, "uncompressed size %d out of range",
			u)
	default:
		h.Size = int64(u)
	}
	return nil
}

// ReadHeader reads the classic LZMA header from r.
func ReadHeader(r io.Reader) (h Header, err error) {
	var p [HeaderLen]byte
	if _, err = io.ReadFull(r, p[:]); err != nil {
		return h, wrapDecodeErr("header", 0, err)
	}
	err = h.UnmarshalBinary(p[:])
	return h, err
}
