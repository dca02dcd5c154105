// Package output provides report formatters for analysis results.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/genoskip/genoskip/internal/analyze"
)

// TabWriter writes analysis results in tab-delimited format, one row per
// therapy and track.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Therapy",
			"Expression",
			"Frame",
			"Track",
			"Remaining",
			"Percentage",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes all comparison rows of a single result.
func (tw *TabWriter) Write(r *analyze.Result) error {
	expression := r.Therapy.Expression
	if expression == "" {
		expression = "-"
	}

	frame := "preserved"
	if !r.Therapy.FramePreserved {
		frame = "frameshift"
	}

	for _, c := range r.Comparisons {
		values := []string{
			r.Therapy.Name,
			expression,
			frame,
			c.Track,
			c.Fraction,
			fmt.Sprintf("%.1f%%", 100*c.Percentage),
		}
		if _, err := tw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteAll writes the header and every result, then flushes.
func (tw *TabWriter) WriteAll(results []analyze.Result) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for i := range results {
		if err := tw.Write(&results[i]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
