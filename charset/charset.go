package charset

import (
	"errors"
	"strings"
)

var ErrEncoding = errors.New("unsupported encoding")

// Invalid is returned by Value when the bytes under the cursor do not
// decode to a Unicode scalar in the codec.
const Invalid rune = -1

// Source is a cursor over an opaque byte sequence. Cur returns the
// byte under the cursor and 0 once the source is exhausted; Done
// disambiguates exhaustion from a literal NUL byte. A chunked source
// reports Starved between chunks instead of Done.
type Source interface {
	Cur() byte
	Next()
	Done() bool
	Starved() bool
}

// Scratch buffers the bytes fetched for the character under the
// cursor. It belongs to the scanner owning the source so that a
// starved source can resume a partially fetched character.
type Scratch struct {
	buf  [4]byte
	fill int
}

func (s *Scratch) Reset() {
	s.fill = 0
}

// Codec decodes characters from a source and encodes scalars back to
// bytes. Skip positions the source at the first byte of the next
// character and resets the scratch. ASCII returns -1 for any code
// point >= 128. Value returns 0 at end of text and Invalid when the
// bytes do not decode. Print appends the canonical encoding of ch to
// dst, or a question mark when the codec cannot represent ch.
type Codec interface {
	Skip(sc *Scratch, src Source)
	ASCII(sc *Scratch, src Source) int
	Value(sc *Scratch, src Source) rune
	Print(dst []byte, ch rune) []byte
}

const (
	fetchOk = iota
	fetchEnd
	fetchStarve
)

// fetch buffers want bytes of the current character, pulling from the
// source as needed. Bytes already buffered from an earlier starved
// attempt are kept.
func fetch(sc *Scratch, src Source, want int) int {
	for sc.fill < want {
		if src.Done() {
			return fetchEnd
		}
		if src.Starved() {
			return fetchStarve
		}
		sc.buf[sc.fill] = src.Cur()
		sc.fill++
		src.Next()
	}
	return fetchOk
}

// Lookup resolves an encoding label to its codec. Matching ignores
// case, spaces and hyphens: UTF-8, utf8 and "UTF 8" are equivalent.
// The empty label resolves to UTF-8.
func Lookup(name string) (Codec, error) {
	id := normalize(name)
	switch id {
	case "", "utf8":
		return UTF8{}, nil
	case "utf16", "utf16be":
		return UTF16BE{}, nil
	case "utf16le":
		return UTF16LE{}, nil
	case "ucs2", "ucs2be":
		return UCS2BE{}, nil
	case "ucs2le":
		return UCS2LE{}, nil
	case "ucs4", "ucs4be":
		return UCS4BE{}, nil
	case "ucs4le":
		return UCS4LE{}, nil
	}
	if page, ok := latinPage(id); ok {
		return Latin(page)
	}
	return nil, ErrEncoding
}

func normalize(name string) string {
	var str strings.Builder
	for _, ch := range name {
		if ch == ' ' || ch == '-' {
			continue
		}
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		str.WriteRune(ch)
	}
	return str.String()
}

func latinPage(id string) (int, bool) {
	var rest string
	switch {
	case strings.HasPrefix(id, "isolatin"):
		rest = strings.TrimPrefix(id, "isolatin")
	case strings.HasPrefix(id, "iso8859"):
		rest = strings.TrimPrefix(id, "iso8859")
	default:
		return 0, false
	}
	if rest == "" {
		return 1, true
	}
	var page int
	for _, ch := range rest {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		page = page*10 + int(ch-'0')
	}
	return page, true
}
