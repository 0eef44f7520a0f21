package main

import (
	"io"
	"os"

	"github.com/midbel/xmlstream/charset"
	"github.com/midbel/xmlstream/xml"
)

// openSource wires a file, or stdin for "-", into a scanner source.
func openSource(file string) (charset.Source, io.Closer, error) {
	if file == "" || file == "-" {
		return xml.Reader(os.Stdin), io.NopCloser(nil), nil
	}
	r, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	return xml.Reader(r), r, nil
}

func createScanner(file, enc string, tokenize bool) (*xml.Scanner, io.Closer, error) {
	src, c, err := openSource(file)
	if err != nil {
		return nil, nil, err
	}
	scan, err := xml.NewScannerEncoding(src, enc)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	scan.Tokenize = tokenize
	return scan, c, nil
}
