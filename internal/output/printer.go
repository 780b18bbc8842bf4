// Package output implements the line-oriented output stream for sshfan.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Printer is the single writer for the output stream. Every line it emits
// has the form "<host>: <text>"; remote stderr carries an extra "ERROR: "
// marker and completion is announced with "DONE!". Both remote streams are
// folded into one local stream, only the prefix marks provenance.
type Printer struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewPrinter creates a printer writing to w, defaulting to stdout.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{writer: w}
}

// Line emits one stdout line from host.
func (p *Printer) Line(host, text string) {
	p.emit("%s: %s\n", host, text)
}

// ErrorLine emits one stderr or failure line from host.
func (p *Printer) ErrorLine(host, text string) {
	p.emit("%s: ERROR: %s\n", host, text)
}

// Done emits the completion marker for host.
func (p *Printer) Done(host string) {
	p.emit("%s: DONE!\n", host)
}

func (p *Printer) emit(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Write errors to the local stdout are not actionable here.
	_, _ = fmt.Fprintf(p.writer, format, args...)
}
