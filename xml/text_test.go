package xml_test

import (
	"testing"
	"unicode/utf16"

	"github.com/midbel/xmlstream/charset"
	"github.com/midbel/xmlstream/xml"
)

func utf16be(str string) []byte {
	var buf []byte
	for _, u := range utf16.Encode([]rune(str)) {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return buf
}

func TestTextScanner(t *testing.T) {
	data := []struct {
		Input string
		Want  []rune
	}{
		{Input: "<a>", Want: []rune{'<', 'a', '>'}},
		{Input: "é&;", Want: []rune{'é', '&', ';'}},
	}
	for _, d := range data {
		ts := xml.NewTextScanner(xml.Bytes([]byte(d.Input)), charset.UTF8{})
		for i, want := range d.Want {
			if got := ts.Chr(); got != want {
				t.Errorf("%s: char %d mismatched: want %c, got %c", d.Input, i, want, got)
			}
			ts.Skip()
		}
		if got := ts.Chr(); got != 0 {
			t.Errorf("%s: end of text expected, got %c", d.Input, got)
		}
	}
}

func TestTextScannerControl(t *testing.T) {
	data := []struct {
		Input string
		Want  []xml.Ctrl
	}{
		{
			Input: "<a1/> =\"'?!&;\t",
			Want: []xml.Ctrl{
				xml.Open, xml.NameStart, xml.NameChar, xml.Slash, xml.Close,
				xml.Space, xml.Equal, xml.Dquote, xml.Squote, xml.Question,
				xml.Bang, xml.Amp, xml.Semicolon, xml.Space, xml.EndOfText,
			},
		},
		{
			Input: "é+",
			Want:  []xml.Ctrl{xml.NameChar, xml.Any, xml.EndOfText},
		},
	}
	for _, d := range data {
		ts := xml.NewTextScanner(xml.Bytes([]byte(d.Input)), charset.UTF8{})
		for i, want := range d.Want {
			if got := ts.Control(); got != want {
				t.Errorf("%s: control %d mismatched: want %d, got %d", d.Input, i, want, got)
			}
			ts.Skip()
		}
	}
}

func TestTextScannerUTF16(t *testing.T) {
	ts := xml.NewTextScanner(xml.Bytes(utf16be("<é𝄞")), charset.UTF16BE{})
	if got := ts.Control(); got != xml.Open {
		t.Errorf("control mismatched: want open, got %d", got)
	}
	ts.Skip()
	if got := ts.Chr(); got != 'é' {
		t.Errorf("char mismatched: want é, got %c", got)
	}
	ts.Skip()
	if got := ts.Chr(); got != 0x1D11E {
		t.Errorf("char mismatched: want U+1D11E, got %U", got)
	}
	ts.Skip()
	if got := ts.Chr(); got != 0 {
		t.Errorf("end of text expected, got %U", got)
	}
}
