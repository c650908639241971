// Package report renders class vote fractions as "<label>: <fraction>" lines.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kailas-cloud/knnvote/internal/domain"
)

// Reporter writes classification results to an output stream.
type Reporter struct {
	w     io.Writer
	label *color.Color
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithColor highlights class labels. Off by default so the output format is exact.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		if !enabled {
			r.label = nil
			return
		}
		c := color.New(color.FgCyan, color.Bold)
		c.EnableColor()
		r.label = c
	}
}

// New creates a reporter writing to w.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{w: w}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Report emits one line per class in input order. labels and fractions
// must have equal length.
func (r *Reporter) Report(labels []string, fractions []float64) error {
	if len(labels) != len(fractions) {
		return domain.NewPrecondition(domain.InvariantLength,
			"%d labels but %d fractions", len(labels), len(fractions))
	}
	for i, label := range labels {
		if r.label != nil {
			label = r.label.Sprint(label)
		}
		if _, err := fmt.Fprintf(r.w, "%s: %v\n", label, fractions[i]); err != nil {
			return fmt.Errorf("write report line: %w", err)
		}
	}
	return nil
}
