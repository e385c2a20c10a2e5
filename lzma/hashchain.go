package lzma

// hashTables provides the hash tables and the position counters shared by
// both match finders. Positions start at 1; the value 0 marks an empty
// entry. The cyclic buffers of the finders have cyclicSize entries, which
// limits the distances to cyclicSize-1.
type hashTables struct {
	hash3      []uint32
	hash4      []uint32
	shift4     uint
	pos        uint32
	cyclicPos  uint32
	cyclicSize uint32
	niceLen    int
	depth      int
}

func (t *hashTables) init(histSize, niceLen, depth int) {
	hb := hashBits(histSize)
	*t = hashTables{
		hash3:      make([]uint32, 1<<hash3Bits),
		hash4:      make([]uint32, 1<<uint(hb)),
		shift4:     uint(32 - hb),
		cyclicSize: uint32(histSize) + 1,
		niceLen:    niceLen,
		depth:      depth,
	}
	t.resetTables()
}

func (t *hashTables) resetTables() {
	for i := range t.hash3 {
		t.hash3[i] = 0
	}
	for i := range t.hash4 {
		t.hash4[i] = 0
	}
	t.pos = 1
	t.cyclicPos = 0
}

// minPos returns the smallest position that may be used for a match.
func (t *hashTables) minPos() uint32 {
	if t.pos > t.cyclicSize {
		return t.pos - t.cyclicSize
	}
	return 0
}

// cyclicIndex returns the index into the cyclic buffer for the position
// delta bytes before the current one.
func (t *hashTables) cyclicIndex(delta uint32) uint32 {
	if delta <= t.cyclicPos {
		return t.cyclicPos - delta
	}
	return t.cyclicPos - delta + t.cyclicSize
}

// insert puts the current position into both hash tables and returns the
// previous entries.
func (t *hashTables) insert(p []byte) (m3, m4 uint32) {
	h3 := hash3(p, 32-hash3Bits)
	h4 := hash4(p, t.shift4)
	m3, m4 = t.hash3[h3], t.hash4[h4]
	t.hash3[h3] = t.pos
	t.hash4[h4] = t.pos
	return m3, m4
}

// movePos advances the position. The links are normalized together with
// the hash tables if the position reaches normLimit.
func (t *hashTables) movePos(links []uint32) {
	t.cyclicPos++
	if t.cyclicPos == t.cyclicSize {
		t.cyclicPos = 0
	}
	t.pos++
	if t.pos < normLimit {
		return
	}
	sub := t.pos - t.cyclicSize
	normalizeLinks(t.hash3, sub)
	normalizeLinks(t.hash4, sub)
	normalizeLinks(links, sub)
	t.pos -= sub
}

// hashChain is the HC4 match finder. The chain stores for every position
// the previous position with the same 4-byte hash.
type hashChain struct {
	hashTables
	chain []uint32
}

func newHashChain(histSize, niceLen, depth int) *hashChain {
	h := new(hashChain)
	h.init(histSize, niceLen, depth)
	h.chain = make([]uint32, h.cyclicSize)
	return h
}

func (h *hashChain) reset() {
	h.resetTables()
	for i := range h.chain {
		h.chain[i] = 0
	}
}

func (h *hashChain) skip(data []byte, cur int) {
	if len(data)-cur < 4 {
		h.chain[h.cyclicPos] = 0
	} else {
		_, m4 := h.insert(data[cur:])
		h.chain[h.cyclicPos] = m4
	}
	h.movePos(h.chain)
}

func (h *hashChain) find(data []byte, cur int, dst []match) []match {
	limit := lenLimit(data, cur, h.niceLen)
	if limit < 4 {
		h.chain[h.cyclicPos] = 0
		h.movePos(h.chain)
		return dst
	}
	p := data[cur:]
	minPos := h.minPos()
	m3, cm := h.insert(p)
	h.chain[h.cyclicPos] = cm

	best := 0
	if m3 > minPos {
		d := h.pos - m3
		if n := matchLen(data, cur, d, limit); n >= 3 {
			best = n
			dst = append(dst, match{dist: d, n: n})
		}
	}
	for depth := h.depth; depth > 0 && cm > minPos && best < limit; depth-- {
		d := h.pos - cm
		if data[cur-int(d)+best] == p[best] {
			n := matchLen(data, cur, d, limit)
			if n > best {
				best = n
				dst = append(dst, match{dist: d, n: n})
			}
		}
		cm = h.chain[h.cyclicIndex(d)]
	}
	h.movePos(h.chain)
	return dst
}
