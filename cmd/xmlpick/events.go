package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/midbel/cli"
	"github.com/midbel/xmlstream/xml"
)

var eventsCmd = cli.Command{
	Name:    "events",
	Alias:   []string{"dump"},
	Summary: "dump the event stream of an xml document",
	Handler: &EventsCmd{},
}

type EventsCmd struct {
	Encoding string
	Tokenize bool
}

func (c *EventsCmd) Run(args []string) error {
	set := flag.NewFlagSet("events", flag.ContinueOnError)
	set.StringVar(&c.Encoding, "e", "", "input character set")
	set.BoolVar(&c.Tokenize, "t", false, "collapse whitespace in content")
	if err := set.Parse(args); err != nil {
		return err
	}
	scan, closer, err := createScanner(set.Arg(0), c.Encoding, c.Tokenize)
	if err != nil {
		return err
	}
	defer closer.Close()

	for ev := range scan.Events() {
		if len(ev.Content) > 0 {
			fmt.Fprintf(os.Stdout, "%s: %s\n", ev.Name(), ev.Content)
		} else {
			fmt.Fprintln(os.Stdout, ev.Name())
		}
		if ev.Kind == xml.ErrorOccurred {
			return errFail
		}
	}
	return nil
}
