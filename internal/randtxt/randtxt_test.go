package randtxt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesDeterministic(t *testing.T) {
	a := Bytes(7, 5000)
	b := Bytes(7, 5000)
	require.Len(t, a, 5000)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Bytes(8, 5000))
}

func TestReaderWords(t *testing.T) {
	p := Bytes(1, 1<<14)
	assert.True(t, bytes.Contains(p, []byte("the ")))
	assert.Contains(t, string(p), "\n")
	for _, c := range p {
		ok := c == ' ' || c == '\n' || ('a' <= c && c <= 'z')
		require.True(t, ok, "unexpected byte %q", c)
	}
}
