package lzma

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xzkit/xzcore/internal/randtxt"
)

// compress2 compresses data with Writer2. The data is written in pieces of
// random size.
func compress2(t testing.TB, cfg WriterConfig, data []byte) []byte {
	var buf bytes.Buffer
	w, err := NewWriter2(&buf, cfg)
	require.NoError(t, err)
	rnd := rand.New(rand.NewSource(int64(len(data))))
	for p := data; len(p) > 0; {
		k := rnd.Intn(100000) + 1
		if k > len(p) {
			k = len(p)
		}
		n, err := w.Write(p[:k])
		require.NoError(t, err)
		require.Equal(t, k, n)
		p = p[k:]
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func decompress2(t testing.TB, dictSize int, z []byte) []byte {
	r, err := NewReader2(bytes.NewReader(z), ReaderConfig{DictSize: dictSize})
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.Bytes()
}

// chunkKinds parses the stream and returns the kinds of its chunks.
func chunkKinds(t testing.TB, z []byte) []ChunkKind {
	var kinds []ChunkKind
	for len(z) > 0 {
		h, n, err := ParseChunkHeader(z)
		require.NoError(t, err)
		kinds = append(kinds, h.Kind)
		z = z[n+h.PayloadLen():]
	}
	return kinds
}

func testData(n int) []byte {
	p := randtxt.Bytes(11, n)
	rnd := rand.New(rand.NewSource(12))
	// a block of random bytes and a long run
	i := n / 3
	rnd.Read(p[i : i+n/10])
	j := 2 * n / 3
	for k := j; k < j+n/20; k++ {
		p[k] = 'x'
	}
	return p
}

func randomBytes(seed int64, n int) []byte {
	p := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(p)
	return p
}

func TestWriter2RoundTripMatrix(t *testing.T) {
	data := testData(300000)
	for _, dictSize := range []int{MinDictSize, 64 << 10, 1 << 20} {
		for _, mf := range []MatchFinder{HashChain4, BinaryTree4} {
			for _, mode := range []Mode{ModeFast, ModeNormal} {
				name := fmt.Sprintf("%d-%v-%v", dictSize, mf, mode)
				t.Run(name, func(t *testing.T) {
					cfg := WriterConfig{
						DictSize:    dictSize,
						MatchFinder: mf,
						Mode:        mode,
					}
					z := compress2(t, cfg, data)
					assert.Less(t, len(z), len(data)/2)
					got := decompress2(t, dictSize, z)
					require.True(t, bytes.Equal(data, got),
						"decompressed data differs")
				})
			}
		}
	}
}

func TestPresetsRoundTrip(t *testing.T) {
	data := testData(100000)
	for level := 0; level <= 9; level++ {
		cfg := Preset(level)
		cfg.DictSize = 1 << 20
		z := compress2(t, cfg, data)
		got := decompress2(t, cfg.DictSize, z)
		require.True(t, bytes.Equal(data, got), "preset %d", level)
	}
}

func TestWriter2LargeStream(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	data := randtxt.Bytes(13, 5<<20)
	cfg := WriterConfig{DictSize: 1 << 20, MatchFinder: HashChain4,
		Mode: ModeFast}
	var buf bytes.Buffer
	w, err := NewWriter2(&buf, cfg)
	require.NoError(t, err)
	_, err = w.Write(data[:3<<20])
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	_, err = w.Write(data[3<<20:])
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), ErrClosed)
	_, err = w.Write([]byte{1})
	assert.ErrorIs(t, err, ErrClosed)

	kinds := chunkKinds(t, buf.Bytes())
	assert.Equal(t, ChunkLZMAFullReset, kinds[0])
	assert.Equal(t, ChunkEOS, kinds[len(kinds)-1])
	for _, k := range kinds[1 : len(kinds)-1] {
		assert.False(t, k.ResetsDict())
	}
	got := decompress2(t, 1<<20, buf.Bytes())
	require.True(t, bytes.Equal(data, got))
}

func TestWriter2Empty(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter2(&buf, WriterConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, []byte{0}, buf.Bytes())
	assert.Empty(t, decompress2(t, 0, buf.Bytes()))
}

func TestWriter2Short(t *testing.T) {
	for _, s := range []string{"a", "aaaa", "abcabcabcabc"} {
		z := compress2(t, WriterConfig{}, []byte(s))
		assert.Equal(t, s, string(decompress2(t, 0, z)))
	}
}

func TestWriter2Run(t *testing.T) {
	data := bytes.Repeat([]byte{0x41}, 100000)
	z := compress2(t, WriterConfig{}, data)
	assert.Less(t, len(z), 200)
	assert.Equal(t, data, decompress2(t, 0, z))
}

func TestWriter2Reps(t *testing.T) {
	// alternating between two distances exercises the repeat matches
	var buf bytes.Buffer
	a := []byte("the quick brown fox jumps over the lazy dog. ")
	b := []byte("pack my box with five dozen liquor jugs! ")
	for i := 0; i < 500; i++ {
		buf.Write(a)
		fmt.Fprintf(&buf, "%d", i%7)
		buf.Write(b)
		buf.WriteByte(byte('0' + i%3))
	}
	data := buf.Bytes()
	for _, mode := range []Mode{ModeFast, ModeNormal} {
		z := compress2(t, WriterConfig{Mode: mode}, data)
		assert.Less(t, len(z), len(data)/5)
		assert.Equal(t, data, decompress2(t, 0, z))
	}
}

func TestWriter2Incompressible(t *testing.T) {
	data := randomBytes(14, 300000)
	z := compress2(t, WriterConfig{}, data)
	assert.LessOrEqual(t, len(z), len(data)+len(data)/1000+16)
	kinds := chunkKinds(t, z)
	assert.Equal(t, ChunkUncompressedReset, kinds[0])
	assert.Contains(t, kinds, ChunkUncompressed)
	assert.Equal(t, data, decompress2(t, 0, z))
}

func TestWriter2Mixed(t *testing.T) {
	// incompressible data between text forces state resets
	rnd := rand.New(rand.NewSource(15))
	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		buf.Write(randtxt.Bytes(int64(i), 80000))
		p := make([]byte, 200000)
		rnd.Read(p)
		buf.Write(p)
	}
	data := buf.Bytes()
	z := compress2(t, WriterConfig{DictSize: 1 << 16}, data)
	kinds := chunkKinds(t, z)
	assert.Contains(t, kinds, ChunkUncompressed)
	assert.Contains(t, kinds, ChunkLZMAStateReset)
	assert.Equal(t, data, decompress2(t, 1<<16, z))
}

func TestEncodeChunks(t *testing.T) {
	cfg := WriterConfig{DictSize: 1 << 16}
	a := testData(200000)
	b := randtxt.Bytes(16, 150000)
	za, err := cfg.EncodeChunks(nil, a)
	require.NoError(t, err)
	zb, err := cfg.EncodeChunks(nil, b)
	require.NoError(t, err)

	again, err := cfg.EncodeChunks([]byte("prefix"), a)
	require.NoError(t, err)
	assert.Equal(t, "prefix", string(again[:6]))
	assert.Equal(t, za, again[6:], "output must be deterministic")

	z := append(append(append([]byte{}, za...), zb...), 0)
	got := decompress2(t, 1<<16, z)
	assert.Equal(t, append(append([]byte{}, a...), b...), got)

	// the second segment decodes on its own
	got = decompress2(t, 1<<16, append(zb, 0))
	assert.Equal(t, b, got)

	empty, err := cfg.EncodeChunks(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = (&WriterConfig{Properties: &Properties{LC: 4, LP: 1}}).
		EncodeChunks(nil, a)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestChunkDecoder(t *testing.T) {
	data := testData(150000)
	cfg := WriterConfig{DictSize: 1 << 16}
	z, err := cfg.EncodeChunks(nil, data)
	require.NoError(t, err)

	d, err := NewChunkDecoder(ReaderConfig{DictSize: 1 << 16})
	require.NoError(t, err)
	var out []byte
	for q := z; len(q) > 0; {
		h, n, err := ParseChunkHeader(q)
		require.NoError(t, err)
		k := n + h.PayloadLen()
		out, err = d.Decode(h, q[n:k], out)
		require.NoError(t, err)
		q = q[k:]
	}
	out, err = d.Decode(ChunkHeader{Kind: ChunkEOS}, nil, out)
	require.NoError(t, err)
	assert.True(t, d.Finished())
	assert.Equal(t, data, out)

	_, err = d.Decode(ChunkHeader{Kind: ChunkUncompressedReset, Size: 1},
		[]byte{1}, nil)
	assert.ErrorIs(t, err, ErrCorrupt, "chunk after end of stream")

	d.Reset()
	_, err = d.Decode(ChunkHeader{Kind: ChunkUncompressed, Size: 1},
		[]byte{1}, nil)
	assert.ErrorIs(t, err, ErrCorrupt, "first chunk without reset")

	d.Reset()
	_, err = d.Decode(ChunkHeader{Kind: ChunkUncompressedReset, Size: 2},
		[]byte{1}, nil)
	assert.ErrorIs(t, err, ErrCorrupt, "payload length")
}

func TestReader2Truncated(t *testing.T) {
	z := compress2(t, WriterConfig{DictSize: 1 << 16}, testData(100000))
	for _, n := range []int{0, 1, 3, 6, 100, len(z) / 2, len(z) - 1} {
		r, err := NewReader2(bytes.NewReader(z[:n]),
			ReaderConfig{DictSize: 1 << 16})
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		assert.ErrorIs(t, err, ErrCorrupt, "cut at %d", n)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "cut at %d", n)
	}
}

func TestReader2Corrupt(t *testing.T) {
	data := testData(60000)
	z := compress2(t, WriterConfig{DictSize: 1 << 16}, data)
	rnd := rand.New(rand.NewSource(17))
	for i := 0; i < 300; i++ {
		c := append([]byte{}, z...)
		k := rnd.Intn(len(c))
		c[k] ^= byte(1 + rnd.Intn(255))
		r, err := NewReader2(bytes.NewReader(c),
			ReaderConfig{DictSize: 1 << 16})
		require.NoError(t, err)
		_, err = io.ReadAll(r)
		if err != nil && !errors.Is(err, ErrCorrupt) {
			t.Fatalf("byte %d: unexpected error type %T: %v", k, err, err)
		}
	}
}

func TestReader2DictTooSmall(t *testing.T) {
	// repeats at 100000 bytes distance
	p := randtxt.Bytes(18, 100000)
	data := append(append([]byte{}, p...), p...)
	z := compress2(t, WriterConfig{DictSize: 1 << 20}, data)
	r, err := NewReader2(bytes.NewReader(z), ReaderConfig{DictSize: 1 << 16})
	require.NoError(t, err)
	_, err = io.ReadAll(r)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestReader2UncompressedOnly(t *testing.T) {
	var z []byte
	var err error
	z, err = ChunkHeader{Kind: ChunkUncompressedReset, Size: 3}.AppendBinary(z)
	require.NoError(t, err)
	z = append(z, "abc"...)
	z, err = ChunkHeader{Kind: ChunkUncompressed, Size: 2}.AppendBinary(z)
	require.NoError(t, err)
	z = append(z, "de"...)
	z = append(z, 0)
	assert.Equal(t, "abcde", string(decompress2(t, 0, z)))
}

func TestChunkDecoderInvalidHeader(t *testing.T) {
	cfg := WriterConfig{DictSize: 1 << 16}
	z, err := cfg.EncodeChunks(nil, testData(5000))
	require.NoError(t, err)
	first, _, err := ParseChunkHeader(z)
	require.NoError(t, err)
	require.Equal(t, ChunkLZMAFullReset, first.Kind)

	tests := []struct {
		name string
		edit func(h *ChunkHeader)
	}{
		{"pb too large", func(h *ChunkHeader) {
			h.Props = Properties{LC: 3, LP: 0, PB: 30}
		}},
		{"lc+lp too large", func(h *ChunkHeader) {
			h.Props = Properties{LC: 4, LP: 1, PB: 2}
		}},
		{"zero size", func(h *ChunkHeader) { h.Size = 0 }},
		{"size too large", func(h *ChunkHeader) {
			h.Size = maxUncompressedChunkSize + 1
		}},
		{"compressed size too large", func(h *ChunkHeader) {
			h.CompressedSize = maxCompressedChunkSize + 1
		}},
		{"uncompressed chunk too large", func(h *ChunkHeader) {
			*h = ChunkHeader{Kind: ChunkUncompressedReset,
				Size: maxCompressedChunkSize + 1}
		}},
		{"unknown kind", func(h *ChunkHeader) { h.Kind = ChunkKind(5) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := first
			tc.edit(&h)
			d, err := NewChunkDecoder(ReaderConfig{DictSize: 1 << 16})
			require.NoError(t, err)
			payload := make([]byte, h.PayloadLen())
			assert.NotPanics(t, func() {
				_, err = d.Decode(h, payload, nil)
			})
			var e *CorruptError
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "chunk header", e.Step)
		})
	}
}

func TestChunkDecoderPositionAfterReset(t *testing.T) {
	d, err := NewChunkDecoder(ReaderConfig{DictSize: 1 << 16})
	require.NoError(t, err)
	out, err := d.Decode(ChunkHeader{Kind: ChunkUncompressedReset, Size: 3},
		[]byte("abc"), nil)
	require.NoError(t, err)
	out, err = d.Decode(ChunkHeader{Kind: ChunkUncompressedReset, Size: 5},
		[]byte("hello"), out)
	require.NoError(t, err)
	assert.Equal(t, "abchello", string(out))

	// an LZMA chunk after a dictionary reset must set the properties
	_, err = d.Decode(ChunkHeader{Kind: ChunkLZMA, Size: 1,
		CompressedSize: 1}, []byte{0}, nil)
	var e *CorruptError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, int64(8), e.Pos)
	assert.Contains(t, e.Msg, "dictionary reset")

	d.Reset()
	_, err = d.Decode(ChunkHeader{Kind: ChunkLZMA, Size: 1,
		CompressedSize: 1}, []byte{0}, nil)
	require.ErrorAs(t, err, &e)
	assert.Equal(t, int64(0), e.Pos)
}

func TestReader2CorruptHeaderPosition(t *testing.T) {
	var z []byte
	var err error
	z, err = ChunkHeader{Kind: ChunkUncompressedReset, Size: 3}.AppendBinary(z)
	require.NoError(t, err)
	z = append(z, "abc"...)
	z, err = ChunkHeader{Kind: ChunkUncompressedReset, Size: 2}.AppendBinary(z)
	require.NoError(t, err)
	z = append(z, "de"...)
	z = append(z, 0x03)

	r, err := NewReader2(bytes.NewReader(z), ReaderConfig{DictSize: 1 << 16})
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	var e *CorruptError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "chunk header", e.Step)
	assert.Equal(t, int64(5), e.Pos)
	assert.Equal(t, "abcde", string(got))

	// truncated header
	r, err = NewReader2(bytes.NewReader(z[:len(z)-1]),
		ReaderConfig{DictSize: 1 << 16})
	require.NoError(t, err)
	_, err = io.ReadAll(r)
	require.ErrorAs(t, err, &e)
	assert.Equal(t, int64(5), e.Pos)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriter2Reset(t *testing.T) {
	cfg := WriterConfig{DictSize: 1 << 16}
	data := testData(200000)

	var want bytes.Buffer
	w, err := NewWriter2(&want, cfg)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var first, second bytes.Buffer
	w, err = NewWriter2(&first, cfg)
	require.NoError(t, err)
	_, err = w.Write(randtxt.Bytes(19, 150000))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Close(), ErrClosed)

	w.Reset(&second)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, want.Bytes(), second.Bytes())
	assert.Equal(t, data, decompress2(t, 1<<16, second.Bytes()))
}
