package xml_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/midbel/xmlstream/xml"
)

func TestBytesSource(t *testing.T) {
	src := xml.Bytes([]byte("ab"))
	assert.Equal(t, byte('a'), src.Cur())
	assert.False(t, src.Done())
	src.Next()
	assert.Equal(t, byte('b'), src.Cur())
	src.Next()
	assert.Equal(t, byte(0), src.Cur())
	assert.True(t, src.Done())
	assert.False(t, src.Starved())
	src.Next()
	assert.True(t, src.Done())
}

func TestReaderSource(t *testing.T) {
	src := xml.Reader(strings.NewReader("xy"))
	assert.Equal(t, byte('x'), src.Cur())
	src.Next()
	assert.Equal(t, byte('y'), src.Cur())
	assert.False(t, src.Done())
	src.Next()
	assert.True(t, src.Done())
	assert.Equal(t, byte(0), src.Cur())
}

func TestChunkedSource(t *testing.T) {
	src := xml.Chunks()
	assert.True(t, src.Starved())
	assert.False(t, src.Done())

	src.Feed([]byte("a"))
	assert.False(t, src.Starved())
	assert.Equal(t, byte('a'), src.Cur())
	src.Next()
	assert.True(t, src.Starved())
	assert.Equal(t, byte(0), src.Cur())

	src.Feed([]byte("b"))
	assert.Equal(t, byte('b'), src.Cur())
	src.Next()
	assert.True(t, src.Starved())

	src.Close()
	assert.False(t, src.Starved())
	assert.True(t, src.Done())
}
