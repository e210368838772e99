// Package console prints colored status lines for the CLI.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Printer writes colored lines to Out. Colors are only emitted when Out is a
// terminal, unless ForceColor is set.
type Printer struct {
	Out        io.Writer
	ForceColor bool
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{Out: w}
}

// Green prints a success line.
func (p *Printer) Green(a ...any) { p.println(color.FgGreen, a...) }

// Cyan prints an informational line.
func (p *Printer) Cyan(a ...any) { p.println(color.FgCyan, a...) }

// Red prints an error line.
func (p *Printer) Red(a ...any) { p.println(color.FgRed, a...) }

func (p *Printer) println(attr color.Attribute, a ...any) {
	c := color.New(attr)
	if p.colorful() {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	_, _ = c.Fprintln(p.out(), a...)
}

func (p *Printer) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Printer) colorful() bool {
	if p.ForceColor {
		return true
	}
	f, ok := p.out().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Greenf is Green with a format string.
func (p *Printer) Greenf(format string, a ...any) { p.Green(fmt.Sprintf(format, a...)) }

// Cyanf is Cyan with a format string.
func (p *Printer) Cyanf(format string, a ...any) { p.Cyan(fmt.Sprintf(format, a...)) }

// Redf is Red with a format string.
func (p *Printer) Redf(format string, a ...any) { p.Red(fmt.Sprintf(format, a...)) }
