package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/inodb/vibe-risk/internal/risk"
)

// sectionMinHeight is the space a variant heading needs below it so that it
// is not stranded at the bottom of a page.
const sectionMinHeight = 30.0

// writer tracks the vertical cursor and breaks pages before any line
// that would pass PageLimit.
type writer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	page  int
	y     float64
	lines []Line
}

func (w *writer) newPage() {
	w.pdf.AddPage()
	w.page++
	w.y = TopY
}

// ensure starts a new page unless h millimeters fit above PageLimit.
func (w *writer) ensure(h float64) {
	if w.y > TopY && w.y+h > PageLimit {
		w.newPage()
	}
}

// line emits one line at the cursor and advances it by step.
func (w *writer) line(text string, size, step float64, style string) {
	if w.y > PageLimit {
		w.newPage()
	}
	w.pdf.SetFont("Helvetica", style, size)
	w.pdf.Text(MarginLeft, w.y, w.tr(text))
	w.lines = append(w.lines, Line{Page: w.page, Y: w.y, Size: size, Text: text})
	w.y += step
}

// wrapped emits text wrapped to width, prefixing the first line with lead
// and indenting the rest to match.
func (w *writer) wrapped(text, lead string, size, step float64) {
	w.pdf.SetFont("Helvetica", "", size)
	indent := strings.Repeat(" ", len(lead))
	for i, part := range w.split(text, ContentWidth-w.pdf.GetStringWidth(w.tr(lead))) {
		prefix := indent
		if i == 0 {
			prefix = lead
		}
		w.line(prefix+part, size, step, "")
	}
}

// split wraps text on word boundaries to width using the current font metrics.
// A single word wider than width gets a line of its own.
func (w *writer) split(text string, width float64) []string {
	var lines []string
	cur := ""
	for _, word := range strings.Fields(text) {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if cur != "" && w.pdf.GetStringWidth(w.tr(next)) > width {
			lines = append(lines, cur)
			cur = word
			continue
		}
		cur = next
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// gap advances the cursor without emitting text.
func (w *writer) gap(h float64) {
	w.y += h
}

func (w *writer) header(generated time.Time) {
	w.line(Title, 20, 10, "B")
	w.line("Generated: "+generated.Format("January 2, 2006 15:04"), 10, 15, "")
}

func (w *writer) summary(s risk.Summary) {
	w.line("Summary", 16, 10, "B")
	w.line(fmt.Sprintf("Total Variants: %d", s.Total), 12, 7, "")
	w.line(fmt.Sprintf("High Risk: %d", s.High), 12, 7, "")
	w.line(fmt.Sprintf("Medium Risk: %d", s.Medium), 12, 7, "")
	w.line(fmt.Sprintf("Low Risk: %d", s.Low), 12, 7, "")
	w.gap(8)
}

func (w *writer) details(results []risk.Classified) {
	w.line("Detailed Results", 16, 10, "B")
	if len(results) == 0 {
		w.line(NoVariantsText, 12, 10, "")
		return
	}

	for i, c := range results {
		w.ensure(sectionMinHeight)
		w.line(fmt.Sprintf("%d. %s", i+1, c.Label()), 14, 8, "B")
		w.line("Location: "+c.Location(), 10, 6, "")
		w.line("Condition: "+c.Condition, 10, 6, "")
		w.line("Risk Level: "+strings.ToUpper(string(c.Tier)), 10, 6, "")
		w.line(fmt.Sprintf("Confidence: %.0f%%", c.Confidence*100), 10, 6, "")
		if c.Significance != "" {
			w.line("Clinical Significance: "+c.Significance, 10, 6, "")
		}
		w.wrapped(c.Description, "", 10, 5)
		if len(c.Recommendations) > 0 {
			w.line("Recommendations:", 10, 6, "B")
			for _, rec := range c.Recommendations {
				w.wrapped(rec, "- ", 10, 5)
			}
		}
		w.gap(5)
	}
}

func (w *writer) disclaimer() {
	w.gap(5)
	w.line("Disclaimer", 12, 7, "B")
	w.wrapped(Disclaimer, "", 9, 5)
}
