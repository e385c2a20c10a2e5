package lzma

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeCoder(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	bits := make([]uint32, 20000)
	for i := range bits {
		if rnd.Intn(10) < 8 {
			bits[i] = 1
		}
	}
	probs := make([]prob, 4)
	initProbs(probs)

	var buf bytes.Buffer
	var e rangeEncoder
	e.init(&buf)
	for i, b := range bits {
		require.NoError(t, e.EncodeBit(b, &probs[i%4]))
	}
	require.NoError(t, e.DirectEncode(0x2a5, 10))
	pending := e.Pending()
	require.NoError(t, e.Close())
	assert.Equal(t, pending, e.Len(), "Pending before Close")
	assert.Equal(t, int64(buf.Len()), e.Len())
	assert.Less(t, buf.Len(), len(bits)/8, "skewed bits must compress")

	initProbs(probs)
	br := bytes.NewReader(buf.Bytes())
	var d rangeDecoder
	require.NoError(t, d.init(br))
	for i, want := range bits {
		b, err := d.DecodeBit(&probs[i%4])
		require.NoError(t, err)
		if b != want {
			t.Fatalf("bit %d: got %d; want %d", i, b, want)
		}
	}
	v, err := d.DirectDecode(10)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2a5), v)
	assert.True(t, d.finished())
	assert.Equal(t, 0, br.Len(), "decoder must consume all bytes")
}

func TestRangeDecoderInit(t *testing.T) {
	var d rangeDecoder
	err := d.init(bytes.NewReader([]byte{1, 0, 0, 0, 0}))
	assert.Equal(t, errFirstByte, err)

	err = d.init(bytes.NewReader([]byte{0, 0xff, 0xff, 0xff, 0xff}))
	assert.Equal(t, errCodeRange, err)

	err = d.init(bytes.NewReader([]byte{0, 0}))
	assert.Error(t, err)
	err = wrapDecodeErr("init", 0, err)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestEmptyRangeStream(t *testing.T) {
	var buf bytes.Buffer
	var e rangeEncoder
	e.init(&buf)
	require.NoError(t, e.Close())
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf.Bytes())
	var d rangeDecoder
	require.NoError(t, d.init(bytes.NewReader(buf.Bytes())))
	assert.True(t, d.finished())
}
