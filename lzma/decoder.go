package lzma

// decoder decodes LZMA operations and writes the resulting bytes into the
// dictionary.
type decoder struct {
	state state
	rd    rangeDecoder
	dict  *decoderDict
}

// decodeOp decodes a single operation. The argument limit gives the number
// of bytes that may still be produced. The function returns the number of
// bytes written into the dictionary and whether the end-of-stream marker
// has been read. The caller must ensure that the dictionary has room for
// at least maxMatchLen unread bytes.
func (d *decoder) decodeOp(limit int64) (n int, eos bool, err error) {
	pos := d.dict.head
	step := "match bit"
	defer func() {
		if err != nil {
			err = wrapDecodeErr(step, pos, err)
		}
	}()
	state, state2, posState := d.state.states(pos)

	b, err := d.rd.DecodeBit(&d.state.isMatch[state2])
	if err != nil {
		return 0, false, err
	}
	if b == 0 {
		step = "literal"
		if limit < 1 {
			return 0, false, corrupt(step, pos,
				"literal exceeds declared size")
		}
		prev := d.dict.byteAt(1)
		match := d.dict.byteAt(d.state.reps[0] + 1)
		litState := d.state.litState(prev, pos)
		c, err := d.state.litCodec.Decode(&d.rd, state, match, litState)
		if err != nil {
			return 0, false, err
		}
		d.dict.WriteByte(c)
		d.state.updateStateLiteral()
		return 1, false, nil
	}

	step = "rep bit"
	if b, err = d.rd.DecodeBit(&d.state.isRep[state]); err != nil {
		return 0, false, err
	}
	if b == 0 {
		step = "match length"
		l, err := d.state.lenCodec.Decode(&d.rd, posState)
		if err != nil {
			return 0, false, err
		}
		step = "distance"
		dist, err := d.state.distCodec.Decode(&d.rd, l)
		if err != nil {
			return 0, false, err
		}
		if dist == eosDist {
			return 0, true, nil
		}
		d.state.reps.push(dist)
		d.state.updateStateMatch()
		return d.copyMatch(step, dist, int(l)+minMatchLen, limit)
	}

	step = "rep selection"
	if b, err = d.rd.DecodeBit(&d.state.isRepG0[state]); err != nil {
		return 0, false, err
	}
	if b == 0 {
		if b, err = d.rd.DecodeBit(&d.state.isRep0Long[state2]); err != nil {
			return 0, false, err
		}
		if b == 0 {
			step = "short rep"
			d.state.updateStateShortRep()
			return d.copyMatch(step, d.state.reps[0], 1, limit)
		}
	} else {
		g := 1
		if b, err = d.rd.DecodeBit(&d.state.isRepG1[state]); err != nil {
			return 0, false, err
		}
		if b == 1 {
			if b, err = d.rd.DecodeBit(&d.state.isRepG2[state]); err != nil {
				return 0, false, err
			}
			g = 2 + int(b)
		}
		d.state.reps.promote(g)
	}
	step = "rep length"
	l, err := d.state.repLenCodec.Decode(&d.rd, posState)
	if err != nil {
		return 0, false, err
	}
	d.state.updateStateRep()
	return d.copyMatch(step, d.state.reps[0], int(l)+minMatchLen, limit)
}

// copyMatch checks the match and copies it. The argument dist is the
// distance decreased by one.
func (d *decoder) copyMatch(step string, dist uint32, n int, limit int64,
) (int, bool, error) {
	if !d.dict.available(dist + 1) {
		return 0, false, corrupt(step, d.dict.head,
			"distance %d beyond history of %d bytes",
			int64(dist)+1, d.dict.head)
	}
	if int64(n) > limit {
		return 0, false, corrupt(step, d.dict.head,
			"match length %d exceeds declared size", n)
	}
	d.dict.copyMatch(dist+1, n)
	return n, false, nil
}
