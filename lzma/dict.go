package lzma

// decoderDict provides the dictionary for the decoder. The buffer grows on
// demand until it reaches the dictionary size; afterwards it is used as a
// circular buffer. Decoded bytes stay in the dictionary until they are
// read.
type decoderDict struct {
	buf  []byte
	size int
	// index of the next byte to write in buf
	pos int
	// number of bytes written since the last reset
	head int64
	// number of bytes written but not read
	unread int
}

// init initializes the dictionary for the given size. Memory is only
// allocated when data is written.
func (d *decoderDict) init(size int) {
	*d = decoderDict{buf: d.buf[:0], size: size}
}

// reset makes the dictionary logically empty. The buffer is kept. Unread
// data is lost, so the dictionary must be drained before.
func (d *decoderDict) reset() {
	d.pos = 0
	d.head = 0
	d.unread = 0
}

// grow extends the buffer. It must only be called if pos equals the length
// of the buffer.
func (d *decoderDict) grow() {
	n := 2 * len(d.buf)
	if n < 1<<12 {
		n = 1 << 12
	}
	if n > d.size {
		n = d.size
	}
	if n <= cap(d.buf) {
		d.buf = d.buf[:n]
		return
	}
	buf := make([]byte, n)
	copy(buf, d.buf)
	d.buf = buf
}

// WriteByte writes a single byte into the dictionary.
func (d *decoderDict) WriteByte(c byte) error {
	if d.pos == len(d.buf) {
		if len(d.buf) < d.size {
			d.grow()
		} else {
			d.pos = 0
		}
	}
	d.buf[d.pos] = c
	d.pos++
	d.head++
	d.unread++
	return nil
}

// write copies p into the dictionary. The caller must ensure that the
// unread data doesn't exceed the dictionary size.
func (d *decoderDict) write(p []byte) {
	for len(p) > 0 {
		if d.pos == len(d.buf) {
			if len(d.buf) < d.size {
				d.grow()
			} else {
				d.pos = 0
			}
		}
		k := copy(d.buf[d.pos:], p)
		p = p[k:]
		d.pos += k
		d.head += int64(k)
		d.unread += k
	}
}

// available returns whether dist, counted from 1, refers to a byte in the
// dictionary.
func (d *decoderDict) available(dist uint32) bool {
	return 1 <= dist && int64(dist) <= d.head && int(dist) <= d.size
}

// byteAt returns the byte at distance dist. Distance 1 refers to the last
// byte written. Distances that don't refer to a byte in the dictionary
// return zero.
func (d *decoderDict) byteAt(dist uint32) byte {
	if !d.available(dist) {
		return 0
	}
	i := d.pos - int(dist)
	if i < 0 {
		i += len(d.buf)
	}
	return d.buf[i]
}

// copyMatch repeats n bytes from distance dist. The copy is done byte by
// byte, so the source may overlap the bytes written. The caller must check
// the distance with available.
func (d *decoderDict) copyMatch(dist uint32, n int) {
	for ; n > 0; n-- {
		c := d.byteAt(dist)
		d.WriteByte(c)
	}
}

// free returns the number of bytes that can be written without
// overwriting unread data.
func (d *decoderDict) free() int {
	return d.size - d.unread
}

// Read reads the unread data from the dictionary.
func (d *decoderDict) Read(p []byte) (n int, err error) {
	for n < len(p) && d.unread > 0 {
		i := d.pos - d.unread
		var end int
		if i < 0 {
			i += len(d.buf)
			end = len(d.buf)
		} else {
			end = d.pos
		}
		k := copy(p[n:], d.buf[i:end])
		n += k
		d.unread -= k
	}
	return n, nil
}

// appendUnread appends all unread bytes to p.
func (d *decoderDict) appendUnread(p []byte) []byte {
	for d.unread > 0 {
		i := d.pos - d.unread
		end := d.pos
		if i < 0 {
			i += len(d.buf)
			end = len(d.buf)
		}
		p = append(p, d.buf[i:end]...)
		d.unread -= end - i
	}
	return p
}
