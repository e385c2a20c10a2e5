package lzma

// number of supported states
const states = 12

// state holds all adaptive probabilities of an LZMA stream together with
// the symbol state and the repeat distances. Each stream or worker owns its
// own value.
type state struct {
	isMatch     [states << maxPosBits]prob
	isRep       [states]prob
	isRepG0     [states]prob
	isRepG1     [states]prob
	isRepG2     [states]prob
	isRep0Long  [states << maxPosBits]prob
	litCodec    literalCodec
	lenCodec    lengthCodec
	repLenCodec lengthCodec
	distCodec   distCodec
	Properties
	reps       reps
	state      uint32
	posBitMask uint32
}

// init sets the properties and resets the state.
func (s *state) init(p Properties) {
	s.Properties = p
	s.reset()
}

// reset puts all probabilities back to the initial value, clears the repeat
// distances and sets the symbol state to zero. Allocated memory is reused.
func (s *state) reset() {
	initProbs(s.isMatch[:])
	initProbs(s.isRep[:])
	initProbs(s.isRepG0[:])
	initProbs(s.isRepG1[:])
	initProbs(s.isRepG2[:])
	initProbs(s.isRep0Long[:])
	s.litCodec.init(s.LC, s.LP)
	s.lenCodec.reset()
	s.repLenCodec.reset()
	s.distCodec.reset()
	s.reps = reps{}
	s.state = 0
	s.posBitMask = (1 << uint(s.PB)) - 1
}

// updateStateLiteral updates the state for a literal.
func (s *state) updateStateLiteral() {
	switch {
	case s.state < 4:
		s.state = 0
		return
	case s.state < 10:
		s.state -= 3
		return
	}
	s.state -= 6
}

// updateStateMatch updates the state for a match.
func (s *state) updateStateMatch() {
	if s.state < 7 {
		s.state = 7
	} else {
		s.state = 10
	}
}

// updateStateRep updates the state for a repetition.
func (s *state) updateStateRep() {
	if s.state < 7 {
		s.state = 8
	} else {
		s.state = 11
	}
}

// updateStateShortRep updates the state for a short repetition.
func (s *state) updateStateShortRep() {
	if s.state < 7 {
		s.state = 9
	} else {
		s.state = 11
	}
}

// states computes the indexes into the probability arrays. The position is
// counted from the last dictionary reset.
func (s *state) states(pos int64) (state, state2, posState uint32) {
	state = s.state
	posState = uint32(pos) & s.posBitMask
	state2 = (s.state << maxPosBits) | posState
	return
}

// litState computes the literal state.
func (s *state) litState(prev byte, pos int64) uint32 {
	lp, lc := uint(s.LP), uint(s.LC)
	return ((uint32(pos) & ((1 << lp) - 1)) << lc) |
		(uint32(prev) >> (8 - lc))
}
