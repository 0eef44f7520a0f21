package xml_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/midbel/xmlstream/xml"
)

const prolog = "<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\n"

func TestPrinter(t *testing.T) {
	data := []struct {
		Name  string
		Print func(*xml.Printer) error
		Want  string
	}{
		{
			Name: "content",
			Print: func(p *xml.Printer) error {
				p.OpenTag("a")
				p.Value("x")
				return p.CloseTag()
			},
			Want: prolog + `<a>x</a>`,
		},
		{
			Name: "self closing",
			Print: func(p *xml.Printer) error {
				p.OpenTag("a")
				p.Attribute("k")
				p.Value("v")
				return p.CloseTag()
			},
			Want: prolog + `<a k="v"/>`,
		},
		{
			Name: "nested",
			Print: func(p *xml.Printer) error {
				p.OpenTag("a")
				p.OpenTag("b")
				p.CloseTag()
				p.Value("t")
				return p.CloseTag()
			},
			Want: prolog + `<a><b/>t</a>`,
		},
		{
			Name: "attribute escapes",
			Print: func(p *xml.Printer) error {
				p.OpenTag("a")
				p.Attribute("k")
				p.Value("<'\"&>\n")
				return p.CloseTag()
			},
			Want: prolog + `<a k="&lt;&apos;&quot;&amp;&gt;&#10;"/>`,
		},
		{
			Name: "content escapes",
			Print: func(p *xml.Printer) error {
				p.OpenTag("a")
				p.Value("1<2 \"quoted\" a&b\x00")
				return p.CloseTag()
			},
			Want: prolog + "<a>1&lt;2 \"quoted\" a&amp;b&#0;</a>",
		},
	}
	for _, d := range data {
		var (
			buf strings.Builder
			p   *xml.Printer
			err error
		)
		if p, err = xml.NewPrinter(&buf, ""); err != nil {
			t.Errorf("%s: fail to create printer: %s", d.Name, err)
			continue
		}
		if err := d.Print(p); err != nil {
			t.Errorf("%s: error printing: %s", d.Name, err)
			continue
		}
		p.Flush()
		if got := buf.String(); got != d.Want {
			t.Errorf("%s: result mismatched", d.Name)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestPrinterLatin(t *testing.T) {
	var buf strings.Builder
	p, err := xml.NewPrinter(&buf, "iso-8859-1")
	if err != nil {
		t.Fatalf("fail to create printer: %s", err)
	}
	p.OpenTag("a")
	p.Value("café")
	p.CloseTag()
	p.Flush()
	want := "<?xml version=\"1.0\" encoding=\"iso-8859-1\" standalone=\"yes\"?>\n<a>caf\xe9</a>"
	if got := buf.String(); got != want {
		t.Errorf("result mismatched")
		t.Logf("want: %q", want)
		t.Logf("got : %q", got)
	}
}

func TestPrinterUnknownEncoding(t *testing.T) {
	var buf strings.Builder
	if _, err := xml.NewPrinter(&buf, "klingon"); err == nil {
		t.Errorf("unknown encoding accepted")
	}
}

func TestPrinterStateViolations(t *testing.T) {
	var buf strings.Builder
	p, _ := xml.NewPrinter(&buf, "")

	if err := p.Attribute("k"); !errors.Is(err, xml.ErrPrinter) {
		t.Errorf("attribute before open tag: want state error, got %v", err)
	}
	if err := p.CloseTag(); !errors.Is(err, xml.ErrPrinter) {
		t.Errorf("close with empty stack: want state error, got %v", err)
	}

	p.OpenTag("a")
	p.Attribute("k")
	if err := p.OpenTag("b"); !errors.Is(err, xml.ErrPrinter) {
		t.Errorf("open tag with dangling attribute: want state error, got %v", err)
	}
	if err := p.CloseTag(); !errors.Is(err, xml.ErrPrinter) {
		t.Errorf("close with dangling attribute: want state error, got %v", err)
	}
	// the printer recovers once the value is supplied
	if err := p.Value("v"); err != nil {
		t.Errorf("value after dangling attribute: %s", err)
	}
	if err := p.CloseTag(); err != nil {
		t.Errorf("close after recovery: %s", err)
	}
}
