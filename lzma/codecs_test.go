package lzma

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codecItem struct {
	c        byte
	state    uint32
	match    byte
	litState uint32
	l        uint32
	posState uint32
	dist     uint32
}

func TestCodecs(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	items := make([]codecItem, 3000)
	for i := range items {
		items[i] = codecItem{
			c:        byte(rnd.Intn(256)),
			state:    uint32(rnd.Intn(states)),
			match:    byte(rnd.Intn(256)),
			litState: uint32(rnd.Intn(8)),
			l:        uint32(rnd.Intn(maxMatchLen - minMatchLen + 1)),
			posState: uint32(rnd.Intn(1 << maxPosBits)),
			dist:     rnd.Uint32() >> uint(rnd.Intn(32)),
		}
	}
	items[0].dist = eosDist

	var buf bytes.Buffer
	var e rangeEncoder
	e.init(&buf)
	var lit literalCodec
	lit.init(3, 0)
	var lc lengthCodec
	lc.init()
	var dc distCodec
	dc.init()
	for _, it := range items {
		require.NoError(t, lit.Encode(&e, it.c, it.state, it.match,
			it.litState))
		require.NoError(t, lc.Encode(&e, it.l, it.posState))
		require.NoError(t, dc.Encode(&e, it.dist, it.l))
	}
	require.NoError(t, e.Close())

	lit.init(3, 0)
	lc.reset()
	dc.reset()
	br := bytes.NewReader(buf.Bytes())
	var d rangeDecoder
	require.NoError(t, d.init(br))
	for i, it := range items {
		c, err := lit.Decode(&d, it.state, it.match, it.litState)
		require.NoError(t, err)
		l, err := lc.Decode(&d, it.posState)
		require.NoError(t, err)
		dist, err := dc.Decode(&d, l)
		require.NoError(t, err)
		if c != it.c || l != it.l || dist != it.dist {
			t.Fatalf("item %d: got (%d, %d, %d); want (%d, %d, %d)",
				i, c, l, dist, it.c, it.l, it.dist)
		}
	}
	assert.True(t, d.finished())
	assert.Equal(t, 0, br.Len())
}

func TestPosSlot(t *testing.T) {
	tests := []struct {
		dist uint32
		slot uint32
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 4}, {6, 5},
		{7, 5}, {8, 6}, {1<<31 - 1, 61}, {eosDist, 63},
	}
	for _, tc := range tests {
		slot, _ := posSlot(tc.dist)
		assert.Equal(t, tc.slot, slot, "posSlot(%d)", tc.dist)
	}
}

func TestReps(t *testing.T) {
	var r reps
	assert.Equal(t, 0, r.index(0))
	assert.Equal(t, -1, r.index(5))
	r.push(5)
	r.push(9)
	r.push(7)
	assert.Equal(t, reps{7, 9, 5, 0}, r)
	r.promote(2)
	assert.Equal(t, reps{5, 7, 9, 0}, r)
	r.promote(0)
	assert.Equal(t, reps{5, 7, 9, 0}, r)
	r.push(5)
	assert.Equal(t, reps{5, 5, 7, 9}, r, "duplicates are allowed")
	r.promote(3)
	assert.Equal(t, reps{9, 5, 5, 7}, r)
}

func TestStateTransitions(t *testing.T) {
	var s state
	s.init(Properties{LC: 3, LP: 0, PB: 2})
	s.updateStateMatch()
	assert.Equal(t, uint32(7), s.state)
	s.updateStateRep()
	assert.Equal(t, uint32(11), s.state)
	s.updateStateLiteral()
	assert.Equal(t, uint32(5), s.state)
	s.updateStateShortRep()
	assert.Equal(t, uint32(9), s.state)
	s.updateStateLiteral()
	assert.Equal(t, uint32(6), s.state)
	s.updateStateLiteral()
	assert.Equal(t, uint32(3), s.state)
	s.updateStateLiteral()
	assert.Equal(t, uint32(0), s.state)

	_, state2, posState := s.states(7)
	assert.Equal(t, uint32(3), posState)
	assert.Equal(t, uint32(3), state2)
	assert.Equal(t, uint32(0x61>>5), s.litState(0x61, 7))
}

func TestEncoderRepeatDistances(t *testing.T) {
	// encode writes the same match repeatedly; clearReps forgets the
	// repeat distances before every match.
	encode := func(clearReps bool) (n int, after2 reps) {
		cfg := (&WriterConfig{}).normalized()
		var e encoder
		e.init(&cfg, 1<<16, 1<<16)
		var buf bytes.Buffer
		e.re.init(&buf)
		for i := 0; i < 100; i++ {
			if clearReps {
				e.state.reps = reps{}
			}
			require.NoError(t, e.writeMatch(998, 10))
			if i == 1 {
				after2 = e.state.reps
			}
		}
		require.NoError(t, e.re.Close())
		return buf.Len(), after2
	}
	nRep, r := encode(false)
	assert.Equal(t, reps{998, 0, 0, 0}, r,
		"second match must use the repeat distance")
	nPlain, r := encode(true)
	assert.Equal(t, reps{998, 0, 0, 0}, r)
	assert.Less(t, nRep, nPlain)
}
