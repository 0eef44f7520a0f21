package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/midbel/cli"
	"github.com/midbel/xmlstream/xml"
)

var formatCmd = cli.Command{
	Name:    "format",
	Alias:   []string{"fmt"},
	Summary: "reprint an xml document through the printer",
	Handler: &FormatCmd{},
}

type FormatCmd struct {
	Input    string
	Output   string
	Tokenize bool
}

func (c *FormatCmd) Run(args []string) error {
	set := flag.NewFlagSet("format", flag.ContinueOnError)
	set.StringVar(&c.Input, "e", "", "input character set")
	set.StringVar(&c.Output, "o", "", "output character set")
	set.BoolVar(&c.Tokenize, "t", true, "collapse whitespace in content")
	if err := set.Parse(args); err != nil {
		return err
	}
	scan, closer, err := createScanner(set.Arg(0), c.Input, c.Tokenize)
	if err != nil {
		return err
	}
	defer closer.Close()

	p, err := xml.NewPrinter(os.Stdout, c.Output)
	if err != nil {
		return err
	}
	defer p.Flush()

	for ev := range scan.Events() {
		switch ev.Kind {
		case xml.OpenTag:
			err = p.OpenTag(string(ev.Content))
		case xml.TagAttribName:
			err = p.Attribute(string(ev.Content))
		case xml.TagAttribValue, xml.Content:
			err = p.Value(string(ev.Content))
		case xml.CloseTag, xml.CloseTagIm:
			err = p.CloseTag()
		case xml.ErrorOccurred:
			fmt.Fprintln(os.Stderr, string(ev.Content))
			return errFail
		default:
		}
		if err != nil {
			return err
		}
	}
	return nil
}
