package xml

import (
	"github.com/midbel/xmlstream/charset"
)

// Ctrl is the lexical class of the character under the cursor. State
// transitions of the scanner are keyed on it.
type Ctrl int8

const (
	Undef Ctrl = iota
	EndOfText
	Space
	Open      // <
	Close     // >
	Slash     // /
	Equal     // =
	Dquote    // "
	Squote    // '
	Question  // ?
	Bang      // !
	Amp       // &
	Semicolon // ;
	NameStart
	NameChar
	Any
)

var ctrlTable = buildCtrlTable()

func buildCtrlTable() [128]Ctrl {
	var tab [128]Ctrl
	for i := range tab {
		tab[i] = Any
	}
	tab[0] = EndOfText
	for _, ch := range []byte{' ', '\t', '\n', '\r'} {
		tab[ch] = Space
	}
	tab['<'] = Open
	tab['>'] = Close
	tab['/'] = Slash
	tab['='] = Equal
	tab['"'] = Dquote
	tab['\''] = Squote
	tab['?'] = Question
	tab['!'] = Bang
	tab['&'] = Amp
	tab[';'] = Semicolon
	for ch := 'a'; ch <= 'z'; ch++ {
		tab[ch] = NameStart
	}
	for ch := 'A'; ch <= 'Z'; ch++ {
		tab[ch] = NameStart
	}
	tab['_'] = NameStart
	for ch := '0'; ch <= '9'; ch++ {
		tab[ch] = NameChar
	}
	tab['-'] = NameChar
	tab['.'] = NameChar
	tab[':'] = NameStart
	return tab
}

// TextScanner lifts a byte source through a codec into a stream of
// classified Unicode scalars. Chr and Control look at the character
// under the cursor without consuming it; Skip consumes it.
type TextScanner struct {
	src     charset.Source
	codec   charset.Codec
	scratch charset.Scratch
}

func NewTextScanner(src charset.Source, codec charset.Codec) *TextScanner {
	return &TextScanner{
		src:   src,
		codec: codec,
	}
}

// Chr returns the scalar under the cursor, 0 at end of text or when
// the source is starved, charset.Invalid on undecodable input.
func (t *TextScanner) Chr() rune {
	return t.codec.Value(&t.scratch, t.src)
}

func (t *TextScanner) Control() Ctrl {
	if a := t.codec.ASCII(&t.scratch, t.src); a > 0 {
		return ctrlTable[a]
	}
	ch := t.Chr()
	switch {
	case ch == 0:
		return EndOfText
	case ch == charset.Invalid:
		return Undef
	default:
		return NameChar
	}
}

func (t *TextScanner) Skip() {
	t.codec.Skip(&t.scratch, t.src)
}

// Starved reports that the cursor ran dry on a source that may still
// be fed more data.
func (t *TextScanner) Starved() bool {
	return t.src.Starved()
}
