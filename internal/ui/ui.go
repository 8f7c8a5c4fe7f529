// Package ui renders colored status lines for the long-running commands.
// Data output (the catalog, reports, summaries) never goes through here;
// this is operator feedback.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mapsmith/tessera/internal/ansi"
)

// Printer writes colored status lines to a single writer.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w. A nil w means os.Stderr.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stderr
	}
	return &Printer{w: w}
}

// Infof prints a dim progress line.
func (p *Printer) Infof(format string, args ...any) {
	fmt.Fprintf(p.w, ansi.Dim+format+ansi.Reset+"\n", args...)
}

// Successf prints a green check line for a completed rebuild.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintf(p.w, ansi.Green+ansi.Bold+"✓ "+ansi.Reset+format+"\n", args...)
}

// Warnf prints a yellow warning line.
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintf(p.w, ansi.Yellow+ansi.Bold+"⚠ "+ansi.Reset+format+"\n", args...)
}

// Errorf prints a red error line.
func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintf(p.w, ansi.Red+ansi.Bold+"error: "+ansi.Reset+format+"\n", args...)
}
