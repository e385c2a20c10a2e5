package lzma

import "github.com/ulikunitz/lz"

// blockLen limits the number of bytes covered by a single parsed block.
const blockLen = 1 << 16

// parser converts the window data into LZ sequences. It checks the repeat
// distances before the candidates of the match finder. The parser keeps its
// own copy of the repeat distances; the encoder doesn't rely on it.
type parser struct {
	mf       matchFinder
	mode     Mode
	niceLen  int
	dictSize int
	reps     reps
	matches  []match
	// next holds the candidates for the position following the last
	// parsed position if hasNext is set.
	next    []match
	hasNext bool
}

func (p *parser) init(mf matchFinder, cfg *WriterConfig) {
	*p = parser{
		mf:       mf,
		mode:     cfg.Mode,
		niceLen:  cfg.NiceLen,
		dictSize: cfg.DictSize,
		matches:  p.matches[:0],
		next:     p.next[:0],
	}
}

// reset prepares the parser for a new dictionary.
func (p *parser) reset() {
	p.mf.reset()
	p.reps = reps{}
	p.hasNext = false
}

// parse appends sequences for the data starting at index cur to blk. Only
// operations starting before end are generated, but matches may use all
// bytes in the window. The index following the last operation is returned.
func (p *parser) parse(blk *lz.Block, w *window, cur, end int) int {
	data := w.data
	start := cur
	var litLen uint32
	for cur < end && cur-start < blockLen {
		n, dist := p.decide(w, cur)
		if dist == 0 {
			blk.Literals = append(blk.Literals, data[cur])
			litLen++
			cur++
			continue
		}
		blk.Sequences = append(blk.Sequences, lz.Seq{
			LitLen:   litLen,
			MatchLen: uint32(n),
			Offset:   dist,
		})
		litLen = 0
		if i := p.reps.index(dist - 1); i >= 0 {
			p.reps.promote(i)
		} else {
			p.reps.push(dist - 1)
		}
		if n > 1 {
			k := cur + 1
			if p.hasNext {
				k++
				p.hasNext = false
			}
			for ; k < cur+n; k++ {
				p.mf.skip(data, k)
			}
		}
		cur += n
	}
	return cur
}

// candidates returns the match finder candidates for position cur.
func (p *parser) candidates(data []byte, cur int) []match {
	if p.hasNext {
		p.hasNext = false
		p.matches, p.next = p.next, p.matches
		return p.matches
	}
	p.matches = p.mf.find(data, cur, p.matches[:0])
	return p.matches
}

// validRep checks whether the repeat distance dist can be used at a
// position that has hist bytes of history.
func (p *parser) validRep(dist uint32, hist int64) bool {
	return int64(dist) <= hist && int(dist) <= p.dictSize
}

// longestRep returns the index and the length of the longest repeat match.
func (p *parser) longestRep(w *window, cur, limit int) (idx, n int) {
	hist := w.pos(cur)
	for i, r := range p.reps {
		dist := r + 1
		if !p.validRep(dist, hist) {
			continue
		}
		if k := matchLen(w.data, cur, dist, limit); k > n {
			idx, n = i, k
		}
	}
	return idx, n
}

// changePair returns whether the small distance should be preferred over
// the big distance for a match that is one byte shorter.
func changePair(small, big uint32) bool {
	return big>>7 > small
}

// decide selects the operation at position cur. A distance of zero
// indicates a literal; a length of one with a non-zero distance is a short
// repeat.
func (p *parser) decide(w *window, cur int) (n int, dist uint32) {
	data := w.data
	ms := p.candidates(data, cur)
	limit := len(data) - cur
	if limit > maxMatchLen {
		limit = maxMatchLen
	}
	if limit < minMatchLen {
		return p.literal(w, cur)
	}

	repIdx, repN := p.longestRep(w, cur, limit)
	if repN >= p.niceLen {
		return repN, p.reps[repIdx] + 1
	}

	var mainN int
	var mainDist uint32
	if k := len(ms); k > 0 {
		mainN, mainDist = ms[k-1].n, ms[k-1].dist
		if mainN >= p.niceLen {
			return matchLen(data, cur, mainDist, limit), mainDist
		}
		for ; k > 1; k-- {
			s := ms[k-2]
			if s.n+1 != mainN || !changePair(s.dist, mainDist) {
				break
			}
			mainN, mainDist = s.n, s.dist
		}
		if mainN == minMatchLen && mainDist >= 0x80 {
			mainN = 0
		}
	}

	if repN >= minMatchLen && (repN+1 >= mainN ||
		(repN+2 >= mainN && mainDist > 1<<9) ||
		(repN+3 >= mainN && mainDist > 1<<15)) {
		return repN, p.reps[repIdx] + 1
	}
	if mainN < minMatchLen {
		return p.literal(w, cur)
	}
	if p.mode == ModeNormal && cur+1 < len(data) && p.better(w, cur+1, mainN, mainDist) {
		return p.literal(w, cur)
	}
	return mainN, mainDist
}

// better looks at the next position and reports whether a literal followed
// by a match at the next position is expected to be better than the main
// match. The candidates of the next position are kept for the next call to
// decide.
func (p *parser) better(w *window, next int, mainN int, mainDist uint32) bool {
	p.next = p.mf.find(w.data, next, p.next[:0])
	p.hasNext = true
	if k := len(p.next); k > 0 {
		m := p.next[k-1]
		if (m.n >= mainN && m.dist < mainDist) ||
			(m.n == mainN+1 && !changePair(mainDist, m.dist)) ||
			m.n > mainN+1 ||
			(m.n+1 >= mainN && mainN >= 3 && changePair(m.dist, mainDist)) {
			return true
		}
	}
	limit := mainN - 1
	if limit < minMatchLen {
		limit = minMatchLen
	}
	hist := w.pos(next)
	for _, r := range p.reps {
		dist := r + 1
		if p.validRep(dist, hist) &&
			matchLen(w.data, next, dist, limit) == limit {
			return true
		}
	}
	return false
}

// literal returns a literal or, in normal mode, a short repeat if the
// byte at rep0 matches.
func (p *parser) literal(w *window, cur int) (n int, dist uint32) {
	if p.mode == ModeNormal {
		dist = p.reps[0] + 1
		if p.validRep(dist, w.pos(cur)) &&
			w.data[cur] == w.data[cur-int(dist)] {
			return 1, dist
		}
	}
	return 1, 0
}
