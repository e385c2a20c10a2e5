package lzma

// window is the linear buffer of the encoder. It holds the history
// required for matches and the lookahead that still has to be encoded.
// The capacity of the data slice is fixed; discard removes old data from
// the front.
type window struct {
	data []byte
	// position of data[0] counted from the last dictionary reset
	pos0 int64
}

// init allocates the buffer with the given capacity.
func (w *window) init(capacity int) {
	if cap(w.data) >= capacity {
		w.data = w.data[:0:capacity]
	} else {
		w.data = make([]byte, 0, capacity)
	}
	w.pos0 = 0
}

// write appends as much of p as fits into the buffer.
func (w *window) write(p []byte) int {
	n := len(w.data)
	k := cap(w.data) - n
	if k > len(p) {
		k = len(p)
	}
	w.data = append(w.data, p[:k]...)
	return k
}

// discard removes the first k bytes of the buffer.
func (w *window) discard(k int) {
	if k <= 0 {
		return
	}
	n := copy(w.data, w.data[k:])
	w.data = w.data[:n]
	w.pos0 += int64(k)
}

// pos returns the position of data[i] since the dictionary reset.
func (w *window) pos(i int) int64 {
	return w.pos0 + int64(i)
}

// byteAt returns the byte at distance dist before index i. Distance 1
// refers to data[i-1]. Bytes before the dictionary reset are returned as
// zero.
func (w *window) byteAt(i int, dist uint32) byte {
	j := i - int(dist)
	if j < 0 {
		return 0
	}
	return w.data[j]
}
