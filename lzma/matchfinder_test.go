package lzma

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xzkit/xzcore/internal/randtxt"
)

func checkMatchFinder(t *testing.T, mf matchFinder, data []byte,
	histSize, niceLen int) {
	var ms []match
	found := 0
	for cur := 0; cur < len(data); cur++ {
		if cur%3 == 2 {
			mf.skip(data, cur)
			continue
		}
		ms = mf.find(data, cur, ms[:0])
		prev := 0
		for _, m := range ms {
			require.Greater(t, m.n, prev, "position %d: %v", cur, ms)
			prev = m.n
			require.True(t, 1 <= m.dist && int(m.dist) <= cur &&
				int(m.dist) <= histSize,
				"position %d: distance %d", cur, m.dist)
			require.LessOrEqual(t, m.n, niceLen)
			j := cur - int(m.dist)
			require.True(t, bytes.Equal(data[j:j+m.n], data[cur:cur+m.n]),
				"position %d: match %v", cur, m)
		}
		found += len(ms)
	}
	assert.Greater(t, found, len(data)/10)
}

func TestHashChain(t *testing.T) {
	data := randtxt.Bytes(4, 100000)
	checkMatchFinder(t, newHashChain(MinDictSize, 32, 16), data,
		MinDictSize, 32)
}

func TestBinTree(t *testing.T) {
	data := randtxt.Bytes(5, 100000)
	checkMatchFinder(t, newBinTree(MinDictSize, 64, 32), data,
		MinDictSize, 64)
}

func TestMatchFinderFindsRepeat(t *testing.T) {
	data := []byte("0123456789abcdef-0123456789abcdef")
	for _, mf := range []matchFinder{
		newHashChain(MinDictSize, 273, 16),
		newBinTree(MinDictSize, 273, 16),
	} {
		var ms []match
		for cur := 0; cur < 17; cur++ {
			mf.skip(data, cur)
		}
		ms = mf.find(data, 17, ms)
		require.NotEmpty(t, ms)
		assert.Equal(t, match{dist: 17, n: 16}, ms[len(ms)-1])
		mf.reset()
		ms = mf.find(data, 17, ms[:0])
		assert.Empty(t, ms)
	}
}

func TestNormalizeLinks(t *testing.T) {
	var h hashTables
	h.init(MinDictSize, 32, 8)
	links := make([]uint32, h.cyclicSize)
	h.pos = normLimit - 1
	h.hash4[5] = normLimit - 100
	h.hash4[6] = 10
	links[3] = normLimit - 2
	h.movePos(links)
	assert.Equal(t, h.cyclicSize, h.pos)
	assert.Equal(t, h.cyclicSize-100, h.hash4[5])
	assert.Equal(t, uint32(0), h.hash4[6])
	assert.Equal(t, h.cyclicSize-2, links[3])
}

func TestHashBits(t *testing.T) {
	assert.Equal(t, minHashBits, hashBits(MinDictSize))
	assert.Equal(t, 22, hashBits(8<<20))
	assert.Equal(t, maxHashBits, hashBits(MaxDictSize))
}
