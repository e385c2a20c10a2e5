package lzma

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressClassic(t testing.TB, cfg WriterConfig, data []byte) []byte {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, cfg)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestClassicRoundTrip(t *testing.T) {
	data := testData(200000)
	tests := []struct {
		name         string
		sizeInHeader bool
		eos          bool
	}{
		{"eos", false, true},
		{"size", true, false},
		{"size+eos", true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := WriterConfig{
				DictSize:     1 << 16,
				SizeInHeader: tc.sizeInHeader,
				Size:         int64(len(data)),
				EOS:          tc.eos,
			}
			z := compressClassic(t, cfg, data)
			r, err := NewReader(bytes.NewReader(z), ReaderConfig{})
			require.NoError(t, err)
			h := r.Header()
			assert.Equal(t, uint32(1<<16), h.DictSize)
			if tc.sizeInHeader {
				assert.Equal(t, int64(len(data)), h.Size)
			} else {
				assert.Equal(t, int64(-1), h.Size)
			}
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(data, got))
		})
	}
}

func TestClassicEmpty(t *testing.T) {
	z := compressClassic(t, WriterConfig{}, nil)
	r, err := NewReader(bytes.NewReader(z), ReaderConfig{})
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)

	z = compressClassic(t, WriterConfig{SizeInHeader: true}, nil)
	assert.Len(t, z, HeaderLen+5)
	r, err = NewReader(bytes.NewReader(z), ReaderConfig{})
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClassicSizeMismatch(t *testing.T) {
	cfg := WriterConfig{SizeInHeader: true, Size: 10}
	w, err := NewWriter(io.Discard, cfg)
	require.NoError(t, err)
	n, err := w.Write(make([]byte, 11))
	assert.Equal(t, 10, n)
	assert.ErrorIs(t, err, errSize)

	w, err = NewWriter(io.Discard, cfg)
	require.NoError(t, err)
	_, err = w.Write(make([]byte, 9))
	require.NoError(t, err)
	assert.ErrorIs(t, w.Close(), errSize)
	assert.ErrorIs(t, w.Close(), ErrClosed)
}

func TestClassicTruncated(t *testing.T) {
	z := compressClassic(t, WriterConfig{DictSize: 1 << 16}, testData(50000))
	for _, n := range []int{0, 5, HeaderLen, HeaderLen + 3, len(z) / 2,
		len(z) - 1} {
		r, err := NewReader(bytes.NewReader(z[:n]), ReaderConfig{})
		if err == nil {
			_, err = io.ReadAll(r)
		}
		assert.ErrorIs(t, err, ErrCorrupt, "cut at %d", n)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "cut at %d", n)
	}
}

func TestClassicEOSBeforeSize(t *testing.T) {
	data := []byte("abcdefgh")
	z := compressClassic(t, WriterConfig{}, data)
	// declare a larger size in the header
	z[5] = byte(len(data) + 2)
	for i := 6; i < HeaderLen; i++ {
		z[i] = 0
	}
	r, err := NewReader(bytes.NewReader(z), ReaderConfig{})
	require.NoError(t, err)
	_, err = io.ReadAll(r)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestClassicSmallDictInHeader(t *testing.T) {
	data := testData(20000)
	z := compressClassic(t, WriterConfig{DictSize: MinDictSize}, data)
	// dictionary sizes below the minimum are accepted
	z[1], z[2], z[3], z[4] = 0x00, 0x01, 0, 0
	r, err := NewReader(bytes.NewReader(z), ReaderConfig{})
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestHeader(t *testing.T) {
	h := Header{
		Properties: Properties{LC: 3, LP: 0, PB: 2},
		DictSize:   1 << 23,
		Size:       -1,
	}
	p, err := h.AppendBinary(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x5d, 0, 0, 0x80, 0,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, p)
	var g Header
	require.NoError(t, g.UnmarshalBinary(p))
	assert.Equal(t, h, g)

	h.Size = 1234567
	p, err = h.AppendBinary(nil)
	require.NoError(t, err)
	g, err = ReadHeader(bytes.NewReader(p))
	require.NoError(t, err)
	assert.Equal(t, h, g)

	p[0] = 225
	assert.ErrorIs(t, g.UnmarshalBinary(p), ErrCorrupt)
	_, err = ReadHeader(bytes.NewReader(p[:7]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDictSizeCode(t *testing.T) {
	tests := []struct {
		code byte
		size int64
	}{
		{0, 4 << 10},
		{1, 6 << 10},
		{2, 8 << 10},
		{18, 2 << 20},
		{19, 3 << 20},
		{22, 8 << 20},
		{39, 3 << 30},
		{40, 1<<32 - 1},
	}
	for _, tc := range tests {
		n, err := DecodeDictSize(tc.code)
		require.NoError(t, err)
		assert.Equal(t, tc.size, n, "code %d", tc.code)
		assert.Equal(t, tc.code, EncodeDictSize(tc.size))
	}
	assert.Equal(t, byte(0), EncodeDictSize(1))
	assert.Equal(t, byte(2), EncodeDictSize(6<<10+1))
	assert.Equal(t, byte(40), EncodeDictSize(1<<40))
	_, err := DecodeDictSize(41)
	assert.ErrorIs(t, err, ErrCorrupt)
}
