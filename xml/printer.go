package xml

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/midbel/xmlstream/charset"
)

var ErrPrinter = errors.New("invalid printer state")

type printState int8

const (
	prInit printState = iota
	prContent
	prTagElement
	prTagAttribute
)

const (
	attrEscChars = "<>'\"&\x00\x08\t\n\r"
	contEscChars = "<>&\x00\x08"
)

var (
	attrEscSubs = []string{"&lt;", "&gt;", "&apos;", "&quot;", "&amp;", "&#0;", "&#8;", "&#9;", "&#10;", "&#13;"}
	contEscSubs = []string{"&lt;", "&gt;", "&amp;", "&#0;", "&#8;"}
)

// Printer is the serialization counterpart of the scanner. Calls take
// UTF-8 strings and output goes through the selected character set.
// Whether an element closes as <name/> or </name> follows from the
// sequence of calls, not from a flag: CloseTag right after the open
// context self-closes.
type Printer struct {
	writer *bufio.Writer
	codec  charset.Codec
	enc    string

	state printState
	stack tagStack
	buf   []byte
}

// NewPrinter returns a printer writing to w in the named character
// set. The empty name selects UTF-8. Unknown names fail construction.
func NewPrinter(w io.Writer, enc string) (*Printer, error) {
	codec, err := charset.Lookup(enc)
	if err != nil {
		return nil, err
	}
	if enc == "" {
		enc = "UTF-8"
	}
	p := Printer{
		writer: bufio.NewWriter(w),
		codec:  codec,
		enc:    enc,
	}
	return &p, nil
}

// OpenTag closes any pending tag context and starts the element.
func (p *Printer) OpenTag(name string) error {
	if p.state == prTagAttribute {
		return ErrPrinter
	}
	p.exitTag()
	p.plain("<")
	p.plain(name)
	p.stack.push([]byte(name))
	p.state = prTagElement
	return p.commit()
}

// Attribute starts an attribute. Valid only right after OpenTag or a
// completed attribute value.
func (p *Printer) Attribute(name string) error {
	if p.state != prTagElement {
		return ErrPrinter
	}
	p.plain(" ")
	p.plain(name)
	p.plain("=")
	p.state = prTagAttribute
	return p.commit()
}

// Value prints an attribute value when one is pending, element
// content otherwise.
func (p *Printer) Value(value string) error {
	if p.state == prTagAttribute {
		p.plain("\"")
		p.escaped(value, attrEscChars, attrEscSubs)
		p.plain("\"")
		p.state = prTagElement
		return p.commit()
	}
	p.exitTag()
	p.escaped(value, contEscChars, contEscSubs)
	return p.commit()
}

// CloseTag closes the innermost open element, self-closing when no
// content was printed since its OpenTag.
func (p *Printer) CloseTag() error {
	if p.stack.empty() {
		return ErrPrinter
	}
	switch p.state {
	case prTagElement:
		p.plain("/>")
		p.state = prContent
	case prContent:
		p.plain("</")
		p.plain(string(p.stack.top()))
		p.plain(">")
	default:
		return ErrPrinter
	}
	p.stack.pop()
	return p.commit()
}

func (p *Printer) Flush() error {
	return p.writer.Flush()
}

func (p *Printer) exitTag() {
	switch p.state {
	case prInit:
		p.prolog()
	case prTagElement:
		p.plain(">")
	}
	p.state = prContent
}

func (p *Printer) prolog() {
	p.plain("<?xml version=\"1.0\" encoding=\"")
	p.plain(p.enc)
	p.plain("\" standalone=\"yes\"?>\n")
}

func (p *Printer) plain(str string) {
	for _, ch := range str {
		p.buf = p.codec.Print(p.buf, ch)
	}
}

func (p *Printer) escaped(str string, echr string, estr []string) {
	for _, ch := range str {
		if ch < 0x80 {
			if ix := strings.IndexByte(echr, byte(ch)); ix >= 0 {
				p.plain(estr[ix])
				continue
			}
		}
		p.buf = p.codec.Print(p.buf, ch)
	}
}

func (p *Printer) commit() error {
	if len(p.buf) == 0 {
		return nil
	}
	_, err := p.writer.Write(p.buf)
	p.buf = p.buf[:0]
	return err
}
