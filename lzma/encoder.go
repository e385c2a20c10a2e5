package lzma

import (
	"fmt"

	"github.com/ulikunitz/lz"
)

// bufferSize is the minimum number of bytes the encoder window accepts
// beyond the history it has to keep.
const bufferSize = 1 << 20

// operation describes a single LZMA operation taken from a parsed block. A
// zero distance marks a literal. A short repeat has length one.
type operation struct {
	dist uint32
	n    int
}

// encoder converts the data in the window into LZMA operations and encodes
// them with the range encoder. The parser runs ahead of the encoder; the
// parsed sequences are kept in blk until they are encoded.
type encoder struct {
	win      window
	parser   parser
	blk      lz.Block
	seqIdx   int
	litIdx   int
	dictSize int
	// index of the next byte to encode
	ecur int
	// index of the next byte to parse
	pcur  int
	state state
	re    rangeEncoder
}

// init initializes the encoder. The window capacity is computed by the
// caller; histSize limits the match distances.
func (e *encoder) init(cfg *WriterConfig, capacity, histSize int) {
	e.win.init(capacity)
	e.dictSize = cfg.DictSize
	e.parser.init(newMatchFinder(cfg, histSize), cfg)
	e.blk.Sequences = e.blk.Sequences[:0]
	e.blk.Literals = e.blk.Literals[:0]
	e.seqIdx, e.litIdx = 0, 0
	e.ecur, e.pcur = 0, 0
	e.state.init(*cfg.Properties)
}

// reset prepares the encoder for a new stream with the same configuration.
// The window and the match finder tables are reused.
func (e *encoder) reset() {
	e.win.init(cap(e.win.data))
	e.parser.reset()
	e.blk.Sequences = e.blk.Sequences[:0]
	e.blk.Literals = e.blk.Literals[:0]
	e.seqIdx, e.litIdx = 0, 0
	e.ecur, e.pcur = 0, 0
	e.state.init(e.state.Properties)
}

// historySize returns the number of bytes the match finder has to cover.
// It is smaller than the dictionary size if the size of the data is known
// in advance.
func historySize(dictSize int, sizeHint int64) int {
	if 0 <= sizeHint && sizeHint < int64(dictSize) {
		if sizeHint < MinDictSize {
			return MinDictSize
		}
		return int(sizeHint)
	}
	return dictSize
}

// peekOp returns the next operation of the parsed block.
func (e *encoder) peekOp() (op operation, ok bool) {
	if e.seqIdx < len(e.blk.Sequences) {
		s := &e.blk.Sequences[e.seqIdx]
		if s.LitLen > 0 {
			return operation{n: 1}, true
		}
		return operation{dist: s.Offset, n: int(s.MatchLen)}, true
	}
	if e.litIdx < len(e.blk.Literals) {
		return operation{n: 1}, true
	}
	return operation{}, false
}

// popOp removes the operation returned by peekOp.
func (e *encoder) popOp(op operation) {
	if op.dist == 0 {
		e.litIdx++
		if e.seqIdx < len(e.blk.Sequences) {
			e.blk.Sequences[e.seqIdx].LitLen--
		}
	} else {
		e.seqIdx++
	}
	e.ecur += op.n
}

// nextOp returns the next operation to encode. New data is parsed if the
// block is exhausted. Without flush the parser keeps enough lookahead for
// the longest match.
func (e *encoder) nextOp(flush bool) (op operation, ok bool) {
	if op, ok = e.peekOp(); ok {
		return op, true
	}
	end := len(e.win.data)
	if !flush {
		end -= maxMatchLen + 1
	}
	if e.pcur >= end {
		return operation{}, false
	}
	e.blk.Sequences = e.blk.Sequences[:0]
	e.blk.Literals = e.blk.Literals[:0]
	e.seqIdx, e.litIdx = 0, 0
	e.pcur = e.parser.parse(&e.blk, &e.win, e.pcur, end)
	return e.peekOp()
}

// compact removes data from the front of the window. The history required
// by the dictionary and all data from index keep on are retained. The
// number of bytes removed is returned.
func (e *encoder) compact(keep int) int {
	k := e.ecur - e.dictSize
	if keep < k {
		k = keep
	}
	if k <= 0 {
		return 0
	}
	e.win.discard(k)
	e.ecur -= k
	e.pcur -= k
	return k
}

// pos returns the position of the encoder since the dictionary reset.
func (e *encoder) pos() int64 {
	return e.win.pos(e.ecur)
}

// writeOp encodes the operation. A short repeat whose distance is not rep0
// is encoded as literal.
func (e *encoder) writeOp(op operation) error {
	if op.dist == 0 {
		return e.writeLiteral(e.blk.Literals[e.litIdx])
	}
	if op.n == 1 {
		if op.dist-1 != e.state.reps[0] {
			return e.writeLiteral(e.win.data[e.ecur])
		}
		return e.writeShortRep()
	}
	return e.writeMatch(op.dist-1, uint32(op.n))
}

// writeLiteral writes a literal.
func (e *encoder) writeLiteral(c byte) error {
	pos := e.pos()
	state, state2, _ := e.state.states(pos)
	var err error
	if err = e.re.EncodeBit(0, &e.state.isMatch[state2]); err != nil {
		return err
	}
	litState := e.state.litState(e.win.byteAt(e.ecur, 1), pos)
	match := e.win.byteAt(e.ecur, e.state.reps[0]+1)
	err = e.state.litCodec.Encode(&e.re, c, state, match, litState)
	if err != nil {
		return err
	}
	e.state.updateStateLiteral()
	return nil
}

// writeShortRep writes a single byte repeat at distance rep0.
func (e *encoder) writeShortRep() error {
	state, state2, _ := e.state.states(e.pos())
	var err error
	if err = e.re.EncodeBit(1, &e.state.isMatch[state2]); err != nil {
		return err
	}
	if err = e.re.EncodeBit(1, &e.state.isRep[state]); err != nil {
		return err
	}
	if err = e.re.EncodeBit(0, &e.state.isRepG0[state]); err != nil {
		return err
	}
	if err = e.re.EncodeBit(0, &e.state.isRep0Long[state2]); err != nil {
		return err
	}
	e.state.updateStateShortRep()
	return nil
}

func iverson(f bool) uint32 {
	if f {
		return 1
	}
	return 0
}

// writeMatch writes a match. The argument dist equals distance - 1. Repeat
// distances are used if possible.
func (e *encoder) writeMatch(dist, matchLen uint32) error {
	if !(minMatchLen <= matchLen && matchLen <= maxMatchLen) {
		return fmt.Errorf("lzma: match length %d out of range", matchLen)
	}
	state, state2, posState := e.state.states(e.pos())
	var err error
	if err = e.re.EncodeBit(1, &e.state.isMatch[state2]); err != nil {
		return err
	}
	g := e.state.reps.index(dist)
	b := iverson(g >= 0)
	if err = e.re.EncodeBit(b, &e.state.isRep[state]); err != nil {
		return err
	}
	n := matchLen - minMatchLen
	if b == 0 {
		// simple match
		e.state.reps.push(dist)
		e.state.updateStateMatch()
		if err = e.state.lenCodec.Encode(&e.re, n, posState); err != nil {
			return err
		}
		return e.state.distCodec.Encode(&e.re, dist, n)
	}
	b = iverson(g != 0)
	if err = e.re.EncodeBit(b, &e.state.isRepG0[state]); err != nil {
		return err
	}
	if b == 0 {
		// g == 0, long repeat
		if err = e.re.EncodeBit(1, &e.state.isRep0Long[state2]); err != nil {
			return err
		}
	} else {
		// g in {1,2,3}
		b = iverson(g != 1)
		if err = e.re.EncodeBit(b, &e.state.isRepG1[state]); err != nil {
			return err
		}
		if b == 1 {
			b = iverson(g != 2)
			if err = e.re.EncodeBit(b, &e.state.isRepG2[state]); err != nil {
				return err
			}
		}
		e.state.reps.promote(g)
	}
	e.state.updateStateRep()
	return e.state.repLenCodec.Encode(&e.re, n, posState)
}

// writeEOS writes the end-of-stream marker, a match with the maximum
// distance.
func (e *encoder) writeEOS() error {
	_, state2, posState := e.state.states(e.pos())
	state := e.state.state
	var err error
	if err = e.re.EncodeBit(1, &e.state.isMatch[state2]); err != nil {
		return err
	}
	if err = e.re.EncodeBit(0, &e.state.isRep[state]); err != nil {
		return err
	}
	if err = e.state.lenCodec.Encode(&e.re, 0, posState); err != nil {
		return err
	}
	return e.state.distCodec.Encode(&e.re, eosDist, 0)
}
