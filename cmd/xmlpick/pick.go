package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/midbel/cli"
	"github.com/midbel/xmlstream/query"
	"github.com/midbel/xmlstream/xml"
)

var pickCmd = cli.Command{
	Name:    "pick",
	Alias:   []string{"select"},
	Summary: "print values matching path expressions",
	Handler: &PickCmd{},
}

type PickCmd struct {
	Encoding string
	Tokenize bool
	Colorize bool
	Quiet    bool
}

func (c *PickCmd) Run(args []string) error {
	var (
		set   = flag.NewFlagSet("pick", flag.ContinueOnError)
		exprs []string
	)
	set.StringVar(&c.Encoding, "e", "", "input character set")
	set.BoolVar(&c.Tokenize, "t", false, "collapse whitespace in content")
	set.BoolVar(&c.Colorize, "c", false, "colorize matches")
	set.BoolVar(&c.Quiet, "n", false, "only count matches")
	set.Func("q", "path expression - repeatable", func(expr string) error {
		exprs = append(exprs, expr)
		return nil
	})
	if err := set.Parse(args); err != nil {
		return err
	}
	if len(exprs) == 0 {
		return fmt.Errorf("no path expression given")
	}
	atm := query.New()
	for ix, expr := range exprs {
		if err := atm.Define(expr, ix+1); err != nil {
			return err
		}
	}
	scan, closer, err := createScanner(set.Arg(0), c.Encoding, c.Tokenize)
	if err != nil {
		return err
	}
	defer closer.Close()

	var spin *Spinner
	if c.Quiet {
		spin = NewSpinner()
		spin.SetMessage("scanning")
		spin.Start()
		defer spin.Stop()
	}

	var (
		sel   = query.NewSelect(atm)
		total int
		tint  = color.New(color.FgGreen)
	)
	for ev := range scan.Events() {
		if ev.Kind == xml.ErrorOccurred {
			if spin != nil {
				spin.Stop()
			}
			fmt.Fprintln(os.Stderr, string(ev.Content))
			return errFail
		}
		sel.Push(ev)
		for m := range sel.Matches() {
			total++
			if c.Quiet {
				continue
			}
			if c.Colorize {
				fmt.Fprintf(os.Stdout, "%d: ", m.Type)
				tint.Fprintln(os.Stdout, string(m.Content))
			} else {
				fmt.Fprintf(os.Stdout, "%d: %s\n", m.Type, m.Content)
			}
		}
	}
	if c.Quiet {
		spin.Stop()
		fmt.Fprintf(os.Stdout, "%d match(es)\n", total)
	}
	if total == 0 {
		return errFail
	}
	return nil
}
