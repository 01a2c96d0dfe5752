// Package progress reports how much input has been packed into an image.
package progress

import (
	"fmt"
	"io"

	"github.com/gokrazy/mkf439/humanize"
)

// Reporter counts bytes written through Writer and prints a status line
// whenever Report is called. A nil *Reporter discards everything.
type Reporter struct {
	w     io.Writer
	total uint64

	transferred uint64
	status      string
}

// NewReporter returns a Reporter printing status lines to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Writer counts every write towards the transferred total.
type Writer struct{ r *Reporter }

func (w Writer) Write(p []byte) (n int, err error) {
	if w.r != nil {
		w.r.transferred += uint64(len(p))
	}
	return len(p), nil
}

// Writer returns an io.Writer whose writes are counted.
func (p *Reporter) Writer() io.Writer {
	return Writer{r: p}
}

func (p *Reporter) SetStatus(status string) {
	if p == nil {
		return
	}
	p.status = status
}

func (p *Reporter) SetTotal(total uint64) {
	if p == nil {
		return
	}
	p.total = total
}

// Transferred returns the number of bytes counted so far.
func (p *Reporter) Transferred() uint64 {
	if p == nil {
		return 0
	}
	return p.transferred
}

// Report prints the current status line.
func (p *Reporter) Report() {
	if p == nil || p.w == nil {
		return
	}
	status := humanize.Bytes(p.transferred)
	if p.total > 0 {
		pct := float64(p.transferred) / float64(p.total) * 100
		status = fmt.Sprintf("%02.2f%% of %s", pct, humanize.Bytes(p.total))
	}
	fmt.Fprintf(p.w, "[%s] %s\n", p.status, status)
}
