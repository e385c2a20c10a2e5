package lzma

import (
	"errors"
	"io"
)

// rangeEncoder implements range encoding of single bits. The low value can
// overflow therefore we need uint64. The cache value is used to handle
// overflows.
type rangeEncoder struct {
	w        io.ByteWriter
	nrange   uint32
	low      uint64
	cacheLen int64
	cache    byte
	// number of bytes written to w
	n int64
}

// init initializes the range encoder for a new stream written to w.
func (e *rangeEncoder) init(w io.ByteWriter) {
	*e = rangeEncoder{
		w:        w,
		nrange:   0xffffffff,
		cacheLen: 1,
	}
}

// Len returns the number of bytes actually written to the underlying
// writer.
func (e *rangeEncoder) Len() int64 {
	return e.n
}

// Pending returns the number of bytes the stream would have, if Close
// would be called now.
func (e *rangeEncoder) Pending() int64 {
	return e.n + e.cacheLen + 4
}

// writeByte writes a single byte to the underlying writer. The byte is only
// counted if the writer doesn't return an error.
func (e *rangeEncoder) writeByte(c byte) error {
	if err := e.w.WriteByte(c); err != nil {
		return err
	}
	e.n++
	return nil
}

// DirectEncodeBit encodes the least-significant bit of b with probability 1/2.
func (e *rangeEncoder) DirectEncodeBit(b uint32) error {
	e.nrange >>= 1
	e.low += uint64(e.nrange) & (0 - (uint64(b) & 1))
	return e.normalize()
}

// DirectEncode encodes the lowest bits of v starting with the most
// significant one. Each bit has a probability of 1/2.
func (e *rangeEncoder) DirectEncode(v uint32, bits int) error {
	for i := bits - 1; i >= 0; i-- {
		if err := e.DirectEncodeBit(v >> uint(i)); err != nil {
			return err
		}
	}
	return nil
}

// EncodeBit encodes the least significant bit of b. The p value will be
// updated by the function depending on the bit encoded.
func (e *rangeEncoder) EncodeBit(b uint32, p *prob) error {
	bound := p.bound(e.nrange)
	if b&1 == 0 {
		e.nrange = bound
		p.inc()
	} else {
		e.low += uint64(bound)
		e.nrange -= bound
		p.dec()
	}
	return e.normalize()
}

// Close writes a complete copy of the low value.
func (e *rangeEncoder) Close() error {
	for i := 0; i < 5; i++ {
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	return nil
}

// shiftLow shifts the low value for 8 bit. The shifted byte is written into
// the byte writer. The cache value is used to handle overflows.
func (e *rangeEncoder) shiftLow() error {
	if uint32(e.low) < 0xff000000 || (e.low>>32) != 0 {
		tmp := e.cache
		for {
			err := e.writeByte(tmp + byte(e.low>>32))
			if err != nil {
				return err
			}
			tmp = 0xff
			e.cacheLen--
			if e.cacheLen <= 0 {
				break
			}
		}
		e.cache = byte(uint32(e.low) >> 24)
	}
	e.cacheLen++
	e.low = uint64(uint32(e.low) << 8)
	return nil
}

// normalize handles shifts of nrange and low.
func (e *rangeEncoder) normalize() error {
	const top = 1 << 24
	if e.nrange >= top {
		return nil
	}
	e.nrange <<= 8
	return e.shiftLow()
}

// rangeDecoder decodes single bits of the range encoding stream.
type rangeDecoder struct {
	br     io.ByteReader
	nrange uint32
	code   uint32
}

// Errors detected by the initialization of the range decoder.
var (
	errFirstByte = errors.New("first byte of range coded stream not zero")
	errCodeRange = errors.New("range decoder code out of range")
)

// init initializes the range decoder, by reading from the byte reader.
func (d *rangeDecoder) init(br io.ByteReader) error {
	*d = rangeDecoder{br: br, nrange: 0xffffffff}

	b, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	if b != 0 {
		return errFirstByte
	}

	for i := 0; i < 4; i++ {
		if err = d.updateCode(); err != nil {
			return err
		}
	}

	if d.code >= d.nrange {
		return errCodeRange
	}

	return nil
}

// finished returns whether the decoder may be at the end of a stream. An
// encoder closing a stream leaves a code value of zero.
func (d *rangeDecoder) finished() bool {
	return d.code == 0
}

// DirectDecodeBit decodes a bit with probability 1/2. The return value b will
// contain the bit at the least-significant position. All other bits will be
// zero.
func (d *rangeDecoder) DirectDecodeBit() (b uint32, err error) {
	d.nrange >>= 1
	d.code -= d.nrange
	t := 0 - (d.code >> 31)
	d.code += d.nrange & t

	if err = d.normalize(); err != nil {
		return 0, err
	}

	b = (t + 1) & 1
	return b, nil
}

// DirectDecode decodes bits with probability 1/2 starting with the most
// significant bit.
func (d *rangeDecoder) DirectDecode(bits int) (v uint32, err error) {
	for i := 0; i < bits; i++ {
		b, err := d.DirectDecodeBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | b
	}
	return v, nil
}

// DecodeBit decodes a single bit. The bit will be returned at the
// least-significant position. All other bits will be zero. The probability
// value will be updated.
func (d *rangeDecoder) DecodeBit(p *prob) (b uint32, err error) {
	bound := p.bound(d.nrange)
	if d.code < bound {
		d.nrange = bound
		p.inc()
		b = 0
	} else {
		d.code -= bound
		d.nrange -= bound
		p.dec()
		b = 1
	}

	if err = d.normalize(); err != nil {
		return 0, err
	}

	return b, nil
}

// updateCode reads a new byte into the code.
func (d *rangeDecoder) updateCode() error {
	b, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	d.code = (d.code << 8) | uint32(b)
	return nil
}

// normalize the top value and update the code value.
func (d *rangeDecoder) normalize() error {
	const top = 1 << 24
	if d.nrange < top {
		d.nrange <<= 8
		if err := d.updateCode(); err != nil {
			return err
		}
	}
	return nil
}
