package xml

import (
	"bufio"
	"io"

	"github.com/midbel/xmlstream/charset"
)

// Bytes returns a source reading from an in-memory buffer.
func Bytes(data []byte) charset.Source {
	return &bytesSource{data: data}
}

type bytesSource struct {
	data []byte
	pos  int
}

func (s *bytesSource) Cur() byte {
	if s.pos >= len(s.data) {
		return 0
	}
	return s.data[s.pos]
}

func (s *bytesSource) Next() {
	if s.pos < len(s.data) {
		s.pos++
	}
}

func (s *bytesSource) Done() bool {
	return s.pos >= len(s.data)
}

func (s *bytesSource) Starved() bool {
	return false
}

// Reader returns a source pulling bytes from r through an internal
// buffer.
func Reader(r io.Reader) charset.Source {
	s := readerSource{
		inner: bufio.NewReader(r),
	}
	s.advance()
	return &s
}

type readerSource struct {
	inner *bufio.Reader
	cur   byte
	eof   bool
}

func (s *readerSource) Cur() byte {
	if s.eof {
		return 0
	}
	return s.cur
}

func (s *readerSource) Next() {
	if !s.eof {
		s.advance()
	}
}

func (s *readerSource) Done() bool {
	return s.eof
}

func (s *readerSource) Starved() bool {
	return false
}

func (s *readerSource) advance() {
	b, err := s.inner.ReadByte()
	if err != nil {
		s.eof = true
		return
	}
	s.cur = b
}

// ChunkedSource is fed piecewise. Between chunks it reports Starved so
// the scanner can park mid-token and resume once more bytes arrive;
// after Close it drains the remaining bytes and then reports Done.
type ChunkedSource struct {
	data   []byte
	pos    int
	closed bool
}

func Chunks() *ChunkedSource {
	return &ChunkedSource{}
}

// Feed appends a chunk. Bytes already consumed are discarded first to
// keep the backing buffer from growing with the document.
func (s *ChunkedSource) Feed(chunk []byte) {
	if s.pos > 0 {
		n := copy(s.data, s.data[s.pos:])
		s.data = s.data[:n]
		s.pos = 0
	}
	s.data = append(s.data, chunk...)
}

// Close marks that no more chunks will be fed.
func (s *ChunkedSource) Close() {
	s.closed = true
}

func (s *ChunkedSource) Cur() byte {
	if s.pos >= len(s.data) {
		return 0
	}
	return s.data[s.pos]
}

func (s *ChunkedSource) Next() {
	if s.pos < len(s.data) {
		s.pos++
	}
}

func (s *ChunkedSource) Done() bool {
	return s.closed && s.pos >= len(s.data)
}

func (s *ChunkedSource) Starved() bool {
	return !s.closed && s.pos >= len(s.data)
}
