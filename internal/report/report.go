// Package report assembles classified variants into a paginated PDF document.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/risk"
)

// Layout constants in millimetres on A4 portrait.
const (
	MarginLeft   = 20.0
	ContentWidth = 170.0
	TopY         = 20.0
	// PageLimit is the lowest baseline content may occupy before a page break.
	PageLimit = 250.0
)

const (
	Title = "Genetic Analysis Report"

	NoVariantsText = "No pathogenic variants detected."

	Disclaimer = "This report is generated by an automated analysis pipeline for research and " +
		"informational purposes only. It is not a clinical diagnosis. Results have not been " +
		"validated in a certified clinical laboratory and may contain false positives or false " +
		"negatives. Consult a qualified healthcare provider or genetic counselor before making " +
		"any medical decisions based on this report."
)

// Line is one rendered line of text.
type Line struct {
	Page int
	Y    float64 // baseline
	Size float64 // font size in points
	Text string
}

// Document is an assembled report. It is immutable once returned.
type Document struct {
	generated time.Time
	lines     []Line
	pages     int
	data      []byte
}

// Lines returns the rendered text lines in order.
func (d *Document) Lines() []Line {
	return d.lines
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.pages
}

// Generated returns the generation time printed in the header.
func (d *Document) Generated() time.Time {
	return d.generated
}

// Text returns the document text, one line per rendered line.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, l := range d.lines {
		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Bytes returns the PDF bytes.
func (d *Document) Bytes() []byte {
	return d.data
}

// WriteTo writes the PDF to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}

// Filename returns the suggested download name, e.g. genetic-analysis-report-2024-01-31.pdf.
func (d *Document) Filename() string {
	return Filename(d.generated)
}

// Filename returns the download name for a report generated at t.
func Filename(t time.Time) string {
	return "genetic-analysis-report-" + t.Format("2006-01-02") + ".pdf"
}

// Assembler builds report documents. It has no side effects beyond the
// returned Document.
type Assembler struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewAssembler creates an assembler using the wall clock.
func NewAssembler() *Assembler {
	return &Assembler{
		now:    time.Now,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (a *Assembler) SetLogger(l *zap.Logger) {
	a.logger = l
}

// SetClock overrides the generation time source.
func (a *Assembler) SetClock(now func() time.Time) {
	a.now = now
}

// Assemble renders the classified results into a document.
func (a *Assembler) Assemble(results []risk.Classified) (*Document, error) {
	generated := a.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetCreator("vibe-risk", true)
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(MarginLeft, TopY, MarginLeft)

	w := &writer{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	w.newPage()

	w.header(generated)
	w.summary(risk.Summarize(results))
	w.details(results)
	w.disclaimer()

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	a.logger.Debug("report assembled",
		zap.Int("variants", len(results)),
		zap.Int("pages", w.page),
		zap.Int("bytes", buf.Len()))

	return &Document{
		generated: generated,
		lines:     w.lines,
		pages:     w.page,
		data:      buf.Bytes(),
	}, nil
}
