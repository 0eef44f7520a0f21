package charset

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var codepages = map[int]*charmap.Charmap{
	2:  charmap.ISO8859_2,
	3:  charmap.ISO8859_3,
	4:  charmap.ISO8859_4,
	5:  charmap.ISO8859_5,
	6:  charmap.ISO8859_6,
	7:  charmap.ISO8859_7,
	8:  charmap.ISO8859_8,
	9:  charmap.ISO8859_9,
	10: charmap.ISO8859_10,
	13: charmap.ISO8859_13,
	14: charmap.ISO8859_14,
	15: charmap.ISO8859_15,
	16: charmap.ISO8859_16,
}

// IsoLatin maps single bytes through an ISO-8859 codepage. Page 1 is
// the identity on the first 256 scalars; higher pages go through the
// charmap tables.
type IsoLatin struct {
	page int
	cm   *charmap.Charmap
}

// Latin returns the codec for the given ISO-8859 page.
func Latin(page int) (Codec, error) {
	if page == 0 || page == 1 {
		return IsoLatin{page: 1}, nil
	}
	cm, ok := codepages[page]
	if !ok {
		return nil, ErrEncoding
	}
	return IsoLatin{page: page, cm: cm}, nil
}

func (c IsoLatin) Skip(sc *Scratch, src Source) {
	if fetch(sc, src, 1) == fetchStarve {
		return
	}
	sc.Reset()
}

func (c IsoLatin) ASCII(sc *Scratch, src Source) int {
	if fetch(sc, src, 1) != fetchOk {
		return -1
	}
	if b := sc.buf[0]; b > 0 && b < 0x80 {
		return int(b)
	}
	return -1
}

func (c IsoLatin) Value(sc *Scratch, src Source) rune {
	if fetch(sc, src, 1) != fetchOk {
		return 0
	}
	b := sc.buf[0]
	if c.cm == nil {
		return rune(b)
	}
	ch := c.cm.DecodeByte(b)
	if ch == utf8.RuneError {
		return Invalid
	}
	return ch
}

func (c IsoLatin) Print(dst []byte, ch rune) []byte {
	if ch < 0 {
		return append(dst, '?')
	}
	if c.cm == nil {
		if ch > 0xFF {
			return append(dst, '?')
		}
		return append(dst, byte(ch))
	}
	b, ok := c.cm.EncodeRune(ch)
	if !ok {
		return append(dst, '?')
	}
	return append(dst, b)
}
