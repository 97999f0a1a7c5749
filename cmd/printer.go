package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// printer writes human readable command output.
type printer struct {
	out     io.Writer
	header  *color.Color
	success *color.Color
	warn    *color.Color
	failure *color.Color
	dim     *color.Color
}

func newPrinter(out io.Writer) *printer {
	p := &printer{
		out:     out,
		header:  color.New(color.Bold),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		failure: color.New(color.FgRed),
		dim:     color.New(color.Faint),
	}

	noColor := cfg == nil || !cfg.Logging.Color
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		noColor = true
	}
	if noColor {
		for _, c := range []*color.Color{p.header, p.success, p.warn, p.failure, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) Header(format string, args ...any) {
	p.header.Fprintf(p.out, format+"\n", args...)
	p.dim.Fprintln(p.out, strings.Repeat("-", 60))
}

func (p *printer) Item(format string, args ...any) {
	fmt.Fprintf(p.out, "• "+format+"\n", args...)
}

func (p *printer) Detail(label string, value any) {
	p.dim.Fprintf(p.out, "  %s: ", label)
	fmt.Fprintln(p.out, value)
}

func (p *printer) Success(format string, args ...any) {
	p.success.Fprintf(p.out, "✓ "+format+"\n", args...)
}

func (p *printer) Warn(format string, args ...any) {
	p.warn.Fprintf(p.out, "! "+format+"\n", args...)
}

func (p *printer) Failure(format string, args ...any) {
	p.failure.Fprintf(p.out, "✗ "+format+"\n", args...)
}

func (p *printer) Line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
