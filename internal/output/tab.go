// Package output provides result formatters for the CLI and HTTP server.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-risk/internal/risk"
	"github.com/inodb/vibe-risk/internal/variant"
)

// TabWriter writes classified variants in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#File",
			"Location",
			"Gene",
			"Ref",
			"Alt",
			"Condition",
			"Pathogenicity",
			"Confidence",
			"Clinical_significance",
			"Risk_level",
			"Method",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes one classified variant found in file.
func (tw *TabWriter) Write(file string, method variant.Method, c risk.Classified) error {
	values := []string{
		orDash(file),
		c.Location(),
		orDash(c.Gene),
		orDash(c.Ref),
		orDash(c.Alt),
		orDash(c.Condition),
		fmt.Sprintf("%.4f", c.Pathogenicity),
		fmt.Sprintf("%.4f", c.Confidence),
		orDash(c.Significance),
		string(c.Tier),
		string(method),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteResult writes every classified variant of one file. A file without
// variants gets a single comment row carrying NoVariantsMessage.
func (tw *TabWriter) WriteResult(file string, res *variant.Result, classified []risk.Classified) error {
	if len(classified) == 0 {
		_, err := tw.w.WriteString("#" + orDash(file) + "\t" + NoVariantsMessage + "\n")
		return err
	}
	for _, c := range classified {
		if err := tw.Write(file, res.Method, c); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	// Tabs and newlines would break the row.
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
