package xlog

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilLogger(t *testing.T) {
	var l Logger
	Printf(l, "%d", 1)
	Println(l, "a")
	Print(l, "b")
	assert.Nil(t, WithPrefix(l, "x: "))
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf, "", 0)
	Printf(l, "chunk %d", 3)
	Println(WithPrefix(l, "worker 1: "), "done")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"chunk 3", "worker 1: done"}, lines)
}

func TestFunc(t *testing.T) {
	var got []string
	l := Func(func(s string) { got = append(got, s) })
	Print(WithPrefix(l, "p "), "a", "b")
	assert.Equal(t, []string{"p ab"}, got)
}
