package xml

import (
	"bytes"
	"iter"
	"strconv"

	"github.com/midbel/xmlstream/charset"
)

type scanState int8

const (
	stContent scanState = iota
	stTagFirst
	stOpenName
	stTagInside
	stAttribName
	stAfterAttrib
	stExpectValue
	stValue
	stSelfClose
	stCloseName
	stEntity
	stHeaderName
	stHeaderEnd
	stBang
	stBangName
	stCommentOpen
	stComment
	stCDataKeyword
	stCData
	stDoctype
	stDoctypeValue
	stSubset
	stSkipMarkup
	stSkipPI
	stDone
	stFailed
)

// Scanner drives the XML lexical grammar over a character stream and
// produces one event per advance. All state lives in named fields so
// that an advance interrupted by a starved source resumes byte-exact
// on the next call.
//
// CDATA sections are surfaced as a Content event carrying the raw
// section bytes: no entity expansion, no whitespace tokenization.
// Comments and processing instructions after the prolog are skipped
// without an event.
type Scanner struct {
	text *TextScanner
	out  charset.Codec

	state scanState
	ret   scanState // state to resume after an entity reference

	buf   []byte // rolling token buffer, borrowed by events
	msg   []byte // error message once failed
	ent   []byte // entity name accumulator
	quote rune
	mark  int // terminator match progress, bracket depth
	ws    bool
	stack tagStack

	header    bool // scanning the xml declaration
	sawHeader bool
	started   bool
	emitted   bool

	// Tokenize collapses whitespace runs in content to a single
	// space and drops leading and trailing whitespace. It may be
	// flipped between any two events.
	Tokenize bool

	// Entities resolves named references in content and attribute
	// values. It must not be modified once scanning started.
	Entities *EntityMap
}

// NewScanner returns a scanner reading UTF-8 and emitting UTF-8
// content bytes.
func NewScanner(src charset.Source) *Scanner {
	s, err := NewScannerEncoding(src, "")
	if err != nil {
		panic("xml: default encoding rejected")
	}
	return s
}

// NewScannerEncoding returns a scanner decoding the source through the
// named character set. Event content is emitted in UTF-8 unless
// SetOutput changes it.
func NewScannerEncoding(src charset.Source, enc string) (*Scanner, error) {
	codec, err := charset.Lookup(enc)
	if err != nil {
		return nil, err
	}
	s := Scanner{
		text:     NewTextScanner(src, codec),
		out:      charset.UTF8{},
		Entities: NewEntityMap(),
	}
	return &s, nil
}

// SetOutput selects the character set used for event content bytes.
func (s *Scanner) SetOutput(enc string) error {
	codec, err := charset.Lookup(enc)
	if err != nil {
		return err
	}
	s.out = codec
	return nil
}

// Depth returns the number of currently open elements.
func (s *Scanner) Depth() int {
	return s.stack.depth()
}

// Events iterates the document. Iteration ends after the terminal
// Exit or ErrorOccurred event, or when a chunked source is starved.
func (s *Scanner) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			ev := s.Next()
			if ev.Kind == None {
				return
			}
			if !yield(ev) {
				return
			}
			if ev.Kind == Exit || ev.Kind == ErrorOccurred {
				return
			}
		}
	}
}

// Next advances to the next event. Exit and ErrorOccurred are
// terminal and re-emitted on further calls; None means a starved
// source and the same advance resumes once the source is fed.
func (s *Scanner) Next() Event {
	switch s.state {
	case stDone:
		return Event{Kind: Exit}
	case stFailed:
		return Event{Kind: ErrorOccurred, Content: s.msg}
	}
	if s.emitted {
		s.buf = s.buf[:0]
		s.emitted = false
	}
	for {
		cls := s.text.Control()
		if cls == EndOfText && s.text.Starved() {
			return Event{Kind: None}
		}
		if cls == Undef {
			return s.fail("text", "malformed character")
		}
		if ev, ok := s.step(cls); ok {
			return ev
		}
	}
}

func (s *Scanner) step(cls Ctrl) (Event, bool) {
	switch s.state {
	case stContent:
		return s.stepContent(cls)
	case stTagFirst:
		return s.stepTagFirst(cls)
	case stOpenName:
		return s.stepOpenName(cls)
	case stTagInside:
		return s.stepTagInside(cls)
	case stAttribName:
		return s.stepAttribName(cls)
	case stAfterAttrib:
		return s.stepAfterAttrib(cls)
	case stExpectValue:
		return s.stepExpectValue(cls)
	case stValue:
		return s.stepValue(cls)
	case stSelfClose:
		return s.stepSelfClose(cls)
	case stCloseName:
		return s.stepCloseName(cls)
	case stEntity:
		return s.stepEntity(cls)
	case stHeaderName:
		return s.stepHeaderName(cls)
	case stHeaderEnd:
		return s.stepHeaderEnd(cls)
	case stBang:
		return s.stepBang(cls)
	case stBangName:
		return s.stepBangName(cls)
	case stCommentOpen:
		return s.stepCommentOpen(cls)
	case stComment:
		return s.stepComment(cls)
	case stCDataKeyword:
		return s.stepCDataKeyword(cls)
	case stCData:
		return s.stepCData(cls)
	case stDoctype:
		return s.stepDoctype(cls)
	case stDoctypeValue:
		return s.stepDoctypeValue(cls)
	case stSubset:
		return s.stepSubset(cls)
	case stSkipMarkup:
		return s.stepSkipMarkup(cls)
	case stSkipPI:
		return s.stepSkipPI(cls)
	}
	return s.fail("scanner", "invalid state")
}

func (s *Scanner) stepContent(cls Ctrl) (Event, bool) {
	switch cls {
	case EndOfText:
		if ev, ok := s.flushContent(); ok {
			return ev, true
		}
		if !s.stack.empty() {
			return s.fail("document", "unexpected end of document")
		}
		s.state = stDone
		return Event{Kind: Exit}, true
	case Open:
		s.text.Skip()
		s.state = stTagFirst
		if ev, ok := s.flushContent(); ok {
			return ev, true
		}
	case Amp:
		s.text.Skip()
		s.ent = s.ent[:0]
		s.ret = stContent
		s.state = stEntity
	case Space:
		if s.Tokenize {
			s.text.Skip()
			s.ws = len(s.buf) > 0
			break
		}
		s.keep()
	default:
		s.pad()
		s.keep()
	}
	return Event{}, false
}

func (s *Scanner) stepTagFirst(cls Ctrl) (Event, bool) {
	switch cls {
	case Question:
		s.text.Skip()
		if s.started || s.sawHeader {
			s.state = stSkipPI
			s.mark = 0
		} else {
			s.state = stHeaderName
			s.header = true
			s.sawHeader = true
		}
	case Bang:
		s.text.Skip()
		s.state = stBang
	case Slash:
		s.text.Skip()
		s.state = stCloseName
	case NameStart:
		s.state = stOpenName
		s.keep()
	case EndOfText:
		return s.fail("element", "unexpected end of document")
	default:
		return s.fail("element", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) stepOpenName(cls Ctrl) (Event, bool) {
	switch cls {
	case NameStart, NameChar:
		s.keep()
	case Space:
		s.text.Skip()
		s.state = stTagInside
		return s.openElem()
	case Close:
		s.text.Skip()
		s.state = stContent
		return s.openElem()
	case Slash:
		s.text.Skip()
		s.state = stSelfClose
		return s.openElem()
	case EndOfText:
		return s.fail("element", "unexpected end of document")
	default:
		return s.fail("element", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) stepTagInside(cls Ctrl) (Event, bool) {
	switch cls {
	case Space:
		s.text.Skip()
	case NameStart:
		s.state = stAttribName
		s.keep()
	case Slash:
		if s.header {
			return s.fail("header", "unexpected character")
		}
		s.text.Skip()
		s.state = stSelfClose
	case Close:
		if s.header {
			return s.fail("header", "unexpected character")
		}
		s.text.Skip()
		s.state = stContent
	case Question:
		if !s.header {
			return s.fail("element", "unexpected character")
		}
		s.text.Skip()
		s.state = stHeaderEnd
	case EndOfText:
		return s.fail("element", "unexpected end of document")
	default:
		return s.fail("element", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) stepAttribName(cls Ctrl) (Event, bool) {
	switch cls {
	case NameStart, NameChar:
		s.keep()
	case Equal:
		s.text.Skip()
		s.state = stExpectValue
		return s.emit(s.attribName())
	case Space:
		s.text.Skip()
		s.state = stAfterAttrib
		return s.emit(s.attribName())
	case EndOfText:
		return s.fail("attribute", "unexpected end of document")
	default:
		return s.fail("attribute", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) stepAfterAttrib(cls Ctrl) (Event, bool) {
	switch cls {
	case Space:
		s.text.Skip()
	case Equal:
		s.text.Skip()
		s.state = stExpectValue
	case EndOfText:
		return s.fail("attribute", "unexpected end of document")
	default:
		return s.fail("attribute", "'=' expected")
	}
	return Event{}, false
}

func (s *Scanner) stepExpectValue(cls Ctrl) (Event, bool) {
	switch cls {
	case Space:
		s.text.Skip()
	case Dquote, Squote:
		s.quote = s.text.Chr()
		s.text.Skip()
		s.state = stValue
	case EndOfText:
		return s.fail("attribute", "unexpected end of document")
	default:
		return s.fail("attribute", "quote expected")
	}
	return Event{}, false
}

func (s *Scanner) stepValue(cls Ctrl) (Event, bool) {
	if cls == EndOfText {
		return s.fail("attribute", "unexpected end of document")
	}
	if ch := s.text.Chr(); ch == s.quote {
		s.text.Skip()
		s.state = stTagInside
		return s.emit(s.attribValue())
	}
	if cls == Amp {
		s.text.Skip()
		s.ent = s.ent[:0]
		s.ret = stValue
		s.state = stEntity
		return Event{}, false
	}
	s.keep()
	return Event{}, false
}

func (s *Scanner) stepSelfClose(cls Ctrl) (Event, bool) {
	switch cls {
	case Close:
		s.text.Skip()
		s.stack.pop()
		s.state = stContent
		s.emitted = true
		return Event{Kind: CloseTagIm}, true
	case EndOfText:
		return s.fail("element", "unexpected end of document")
	default:
		return s.fail("element", "'>' expected")
	}
}

func (s *Scanner) stepCloseName(cls Ctrl) (Event, bool) {
	switch cls {
	case NameStart, NameChar:
		s.keep()
	case Space:
		s.text.Skip()
	case Close:
		s.text.Skip()
		if !bytes.Equal(s.buf, s.stack.top()) {
			return s.fail("close tag", "element name mismatch")
		}
		s.stack.pop()
		s.state = stContent
		return s.emit(CloseTag)
	case EndOfText:
		return s.fail("close tag", "unexpected end of document")
	default:
		return s.fail("close tag", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) stepEntity(cls Ctrl) (Event, bool) {
	switch cls {
	case Semicolon:
		s.text.Skip()
		ch, err := s.resolveEntity()
		if err != "" {
			return s.fail("entity", err)
		}
		if s.ret == stContent {
			s.pad()
		}
		s.buf = s.out.Print(s.buf, ch)
		s.state = s.ret
	case NameStart, NameChar:
		s.ent = append(s.ent, byte(s.text.Chr()))
		s.text.Skip()
	case EndOfText:
		return s.fail("entity", "unexpected end of document")
	default:
		if ch := s.text.Chr(); ch == '#' && len(s.ent) == 0 {
			s.ent = append(s.ent, '#')
			s.text.Skip()
			break
		}
		return s.fail("entity", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) resolveEntity() (rune, string) {
	name := string(s.ent)
	if name == "" {
		return 0, "empty reference"
	}
	if name[0] == '#' {
		ch, ok := parseNumRef(name[1:])
		if !ok {
			return 0, "invalid character reference"
		}
		return ch, ""
	}
	ch, ok := s.Entities.Resolve(name)
	if !ok {
		return 0, "unknown entity"
	}
	return ch, ""
}

func parseNumRef(digits string) (rune, bool) {
	if digits == "" {
		return 0, false
	}
	base := 10
	if digits[0] == 'x' || digits[0] == 'X' {
		base = 16
		digits = digits[1:]
	}
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil || n <= 0 || n > 0x10FFFF {
		return 0, false
	}
	return rune(n), true
}

func (s *Scanner) stepHeaderName(cls Ctrl) (Event, bool) {
	switch cls {
	case NameStart, NameChar:
		s.keep()
	case Space:
		s.text.Skip()
		s.state = stTagInside
		return s.emit(HeaderStart)
	case Question:
		s.text.Skip()
		s.state = stHeaderEnd
		return s.emit(HeaderStart)
	case EndOfText:
		return s.fail("header", "unexpected end of document")
	default:
		return s.fail("header", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) stepHeaderEnd(cls Ctrl) (Event, bool) {
	switch cls {
	case Close:
		s.text.Skip()
		s.header = false
		s.state = stContent
		s.emitted = true
		return Event{Kind: HeaderEnd}, true
	case EndOfText:
		return s.fail("header", "unexpected end of document")
	default:
		return s.fail("header", "'>' expected")
	}
}

func (s *Scanner) stepBang(cls Ctrl) (Event, bool) {
	switch ch := s.text.Chr(); {
	case ch == '-':
		s.text.Skip()
		s.state = stCommentOpen
	case ch == '[':
		s.text.Skip()
		s.ent = s.ent[:0]
		s.state = stCDataKeyword
	case cls == NameStart:
		s.ent = append(s.ent[:0], byte(ch))
		s.text.Skip()
		s.state = stBangName
	case cls == EndOfText:
		return s.fail("markup", "unexpected end of document")
	default:
		return s.fail("markup", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) stepBangName(cls Ctrl) (Event, bool) {
	switch cls {
	case NameStart, NameChar:
		s.ent = append(s.ent, byte(s.text.Chr()))
		s.text.Skip()
	case Space:
		s.text.Skip()
		if string(s.ent) == "DOCTYPE" {
			s.state = stDoctype
		} else {
			s.state = stSkipMarkup
			s.mark = 0
		}
		s.ent = s.ent[:0]
	case Close:
		s.text.Skip()
		s.ent = s.ent[:0]
		s.state = stContent
	case EndOfText:
		return s.fail("markup", "unexpected end of document")
	default:
		return s.fail("markup", "unexpected character")
	}
	return Event{}, false
}

func (s *Scanner) stepCommentOpen(cls Ctrl) (Event, bool) {
	if cls == EndOfText {
		return s.fail("comment", "unexpected end of document")
	}
	if s.text.Chr() != '-' {
		return s.fail("comment", "unexpected character")
	}
	s.text.Skip()
	s.state = stComment
	s.mark = 0
	return Event{}, false
}

func (s *Scanner) stepComment(cls Ctrl) (Event, bool) {
	switch ch := s.text.Chr(); {
	case cls == EndOfText:
		return s.fail("comment", "unexpected end of document")
	case ch == '-':
		s.text.Skip()
		if s.mark < 2 {
			s.mark++
		}
	case ch == '>' && s.mark >= 2:
		s.text.Skip()
		s.state = stContent
		s.mark = 0
	default:
		s.text.Skip()
		s.mark = 0
	}
	return Event{}, false
}

func (s *Scanner) stepCDataKeyword(cls Ctrl) (Event, bool) {
	switch ch := s.text.Chr(); {
	case cls == EndOfText:
		return s.fail("character data", "unexpected end of document")
	case ch == '[':
		s.text.Skip()
		if string(s.ent) != "CDATA" {
			return s.fail("character data", "unknown section")
		}
		s.state = stCData
		s.mark = 0
	case ch > 0x7F:
		return s.fail("character data", "unknown section")
	default:
		s.ent = append(s.ent, byte(ch))
		s.text.Skip()
	}
	return Event{}, false
}

func (s *Scanner) stepCData(cls Ctrl) (Event, bool) {
	switch ch := s.text.Chr(); {
	case cls == EndOfText:
		return s.fail("character data", "unexpected end of document")
	case ch == ']':
		s.text.Skip()
		if s.mark == 2 {
			s.buf = s.out.Print(s.buf, ']')
		} else {
			s.mark++
		}
	case ch == '>' && s.mark == 2:
		s.text.Skip()
		s.mark = 0
		s.state = stContent
		return s.emit(Content)
	default:
		for ; s.mark > 0; s.mark-- {
			s.buf = s.out.Print(s.buf, ']')
		}
		s.keep()
	}
	return Event{}, false
}

func (s *Scanner) stepDoctype(cls Ctrl) (Event, bool) {
	switch ch := s.text.Chr(); {
	case cls == EndOfText:
		return s.fail("document type", "unexpected end of document")
	case cls == Space:
		s.text.Skip()
		if len(s.buf) > 0 {
			return s.emit(DocAttribValue)
		}
	case cls == Close:
		if len(s.buf) > 0 {
			return s.emit(DocAttribValue)
		}
		s.text.Skip()
		s.state = stContent
		s.emitted = true
		return Event{Kind: DocAttribEnd}, true
	case cls == Dquote || cls == Squote:
		s.quote = ch
		s.text.Skip()
		s.state = stDoctypeValue
	case ch == '[':
		if len(s.buf) > 0 {
			return s.emit(DocAttribValue)
		}
		s.text.Skip()
		s.mark = 1
		s.state = stSubset
	default:
		s.keep()
	}
	return Event{}, false
}

func (s *Scanner) stepDoctypeValue(cls Ctrl) (Event, bool) {
	if cls == EndOfText {
		return s.fail("document type", "unexpected end of document")
	}
	if ch := s.text.Chr(); ch == s.quote {
		s.text.Skip()
		s.state = stDoctype
		return s.emit(DocAttribValue)
	}
	s.keep()
	return Event{}, false
}

func (s *Scanner) stepSubset(cls Ctrl) (Event, bool) {
	switch ch := s.text.Chr(); {
	case cls == EndOfText:
		return s.fail("document type", "unexpected end of document")
	case ch == '[':
		s.mark++
		s.text.Skip()
	case ch == ']':
		s.mark--
		s.text.Skip()
		if s.mark == 0 {
			s.state = stDoctype
		}
	default:
		s.text.Skip()
	}
	return Event{}, false
}

func (s *Scanner) stepSkipMarkup(cls Ctrl) (Event, bool) {
	switch cls {
	case EndOfText:
		return s.fail("markup", "unexpected end of document")
	case Open:
		s.mark++
		s.text.Skip()
	case Close:
		s.text.Skip()
		if s.mark == 0 {
			s.state = stContent
		} else {
			s.mark--
		}
	default:
		s.text.Skip()
	}
	return Event{}, false
}

func (s *Scanner) stepSkipPI(cls Ctrl) (Event, bool) {
	switch cls {
	case EndOfText:
		return s.fail("processing instruction", "unexpected end of document")
	case Question:
		s.text.Skip()
		s.mark = 1
	case Close:
		s.text.Skip()
		if s.mark == 1 {
			s.mark = 0
			s.state = stContent
		}
	default:
		s.text.Skip()
		s.mark = 0
	}
	return Event{}, false
}

func (s *Scanner) attribName() Kind {
	if s.header {
		return HeaderAttribName
	}
	return TagAttribName
}

func (s *Scanner) attribValue() Kind {
	if s.header {
		return HeaderAttribValue
	}
	return TagAttribValue
}

func (s *Scanner) openElem() (Event, bool) {
	s.stack.push(s.buf)
	s.started = true
	return s.emit(OpenTag)
}

func (s *Scanner) emit(kind Kind) (Event, bool) {
	s.emitted = true
	return Event{Kind: kind, Content: s.buf}, true
}

func (s *Scanner) flushContent() (Event, bool) {
	s.ws = false
	if len(s.buf) == 0 {
		return Event{}, false
	}
	return s.emit(Content)
}

// keep appends the character under the cursor to the token buffer in
// the output character set and consumes it.
func (s *Scanner) keep() {
	s.buf = s.out.Print(s.buf, s.text.Chr())
	s.text.Skip()
}

// pad reinserts the single space a tokenized whitespace run collapsed
// to, once more content follows.
func (s *Scanner) pad() {
	if s.ws {
		s.buf = s.out.Print(s.buf, ' ')
		s.ws = false
	}
}

func (s *Scanner) fail(elem, msg string) (Event, bool) {
	s.state = stFailed
	s.msg = append(s.msg[:0], elem...)
	s.msg = append(s.msg, ": "...)
	s.msg = append(s.msg, msg...)
	return Event{Kind: ErrorOccurred, Content: s.msg}, true
}
