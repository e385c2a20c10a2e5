package lzma

// binTree is the BT4 match finder. All positions with the same 4-byte hash
// are kept in a binary search tree ordered by the bytes that follow. Each
// position owns two links in the son slice: the smaller and the larger
// subtree. The tree for the current position is rebuilt while searching,
// so the current position becomes the new root.
type binTree struct {
	hashTables
	son []uint32
}

func newBinTree(histSize, niceLen, depth int) *binTree {
	t := new(binTree)
	t.init(histSize, niceLen, depth)
	t.son = make([]uint32, 2*t.cyclicSize)
	return t
}

func (t *binTree) reset() {
	t.resetTables()
	for i := range t.son {
		t.son[i] = 0
	}
}

func (t *binTree) clearNode() {
	i := 2 * t.cyclicPos
	t.son[i], t.son[i+1] = 0, 0
}

func (t *binTree) skip(data []byte, cur int) {
	limit := lenLimit(data, cur, t.niceLen)
	if limit < 4 {
		t.clearNode()
		t.movePos(t.son)
		return
	}
	_, cm := t.insert(data[cur:])
	t.walk(data, cur, cm, limit, 0, nil, false)
	t.movePos(t.son)
}

func (t *binTree) find(data []byte, cur int, dst []match) []match {
	limit := lenLimit(data, cur, t.niceLen)
	if limit < 4 {
		t.clearNode()
		t.movePos(t.son)
		return dst
	}
	minPos := t.minPos()
	m3, cm := t.insert(data[cur:])
	best := 0
	if m3 > minPos {
		d := t.pos - m3
		if n := matchLen(data, cur, d, limit); n >= 3 {
			best = n
			dst = append(dst, match{dist: d, n: n})
		}
	}
	dst = t.walk(data, cur, cm, limit, best, dst, true)
	t.movePos(t.son)
	return dst
}

// walk searches the tree starting at position cm and inserts the current
// position as new root. Matches longer than best are appended to dst if
// record is set.
func (t *binTree) walk(data []byte, cur int, cm uint32, limit int,
	best int, dst []match, record bool,
) []match {
	p := data[cur:]
	minPos := t.minPos()
	ptr0 := 2*t.cyclicPos + 1
	ptr1 := 2 * t.cyclicPos
	len0, len1 := 0, 0
	for depth := t.depth; ; depth-- {
		if cm <= minPos || depth == 0 {
			t.son[ptr0], t.son[ptr1] = 0, 0
			return dst
		}
		delta := t.pos - cm
		pair := 2 * t.cyclicIndex(delta)
		q := data[cur-int(delta):]
		n := len0
		if len1 < n {
			n = len1
		}
		if q[n] == p[n] {
			n++
			for n < limit && q[n] == p[n] {
				n++
			}
			if record && n > best {
				best = n
				dst = append(dst, match{dist: delta, n: n})
			}
			if n == limit {
				t.son[ptr1] = t.son[pair]
				t.son[ptr0] = t.son[pair+1]
				return dst
			}
		}
		if q[n] < p[n] {
			t.son[ptr1] = cm
			ptr1 = pair + 1
			cm = t.son[ptr1]
			len1 = n
		} else {
			t.son[ptr0] = cm
			ptr0 = pair
			cm = t.son[ptr0]
			len0 = n
		}
	}
}
