package report

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-risk/internal/catalog"
	"github.com/inodb/vibe-risk/internal/detect"
	"github.com/inodb/vibe-risk/internal/risk"
	"github.com/inodb/vibe-risk/internal/variant"
)

var fixedTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestAssembler() *Assembler {
	a := NewAssembler()
	a.SetClock(func() time.Time { return fixedTime })
	return a
}

// classifiedN returns n classified variants cycling through the built-in catalog.
func classifiedN(n int) []risk.Classified {
	sigs := catalog.Default().Signatures()
	c := risk.NewClassifier(risk.ModeCondition)

	var out []risk.Classified
	for i := 0; i < n; i++ {
		sig := sigs[i%len(sigs)]
		out = append(out, c.Classify(variant.Detected{
			Gene:          sig.Gene,
			Chrom:         sig.Chrom,
			Pos:           sig.Pos,
			Ref:           sig.Ref,
			Alt:           sig.Alt,
			Pathogenicity: detect.Pathogenicity(sig.BasePathogenicity, 100),
			Confidence:    0.99,
			Condition:     sig.Condition,
			Significance:  variant.Significance(sig.BasePathogenicity),
		}))
	}
	return out
}

func TestAssemble_Empty(t *testing.T) {
	doc, err := newTestAssembler().Assemble(nil)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.PageCount())
	text := doc.Text()
	assert.Contains(t, text, Title)
	assert.Contains(t, text, "Generated: March 15, 2024 10:30")
	assert.Contains(t, text, "Total Variants: 0")
	assert.Contains(t, text, NoVariantsText)
	assert.Contains(t, text, "Disclaimer")
	assert.True(t, bytes.HasPrefix(doc.Bytes(), []byte("%PDF-")))
}

func TestAssemble_SummaryCounts(t *testing.T) {
	results := classifiedN(3)
	results[1].Tier = risk.TierMedium
	results[2].Tier = risk.TierLow

	doc, err := newTestAssembler().Assemble(results)
	require.NoError(t, err)

	text := doc.Text()
	assert.Contains(t, text, "Total Variants: 3")
	assert.Contains(t, text, "High Risk: 1")
	assert.Contains(t, text, "Medium Risk: 1")
	assert.Contains(t, text, "Low Risk: 1")
	assert.NotContains(t, text, NoVariantsText)
}

func TestAssemble_VariantSection(t *testing.T) {
	results := classifiedN(1)

	doc, err := newTestAssembler().Assemble(results)
	require.NoError(t, err)

	text := doc.Text()
	assert.Contains(t, text, "1. BRCA1 G>A")
	assert.Contains(t, text, "Location: 17:43124096")
	assert.Contains(t, text, "Risk Level: HIGH")
	assert.Contains(t, text, "Confidence: 99%")
	assert.Contains(t, text, "Recommendations:")
	assert.Contains(t, text, "- Genetic counseling strongly recommended")
}

func TestAssemble_Paginates(t *testing.T) {
	doc, err := newTestAssembler().Assemble(classifiedN(25))
	require.NoError(t, err)

	require.Greater(t, doc.PageCount(), 1)
	lines := doc.Lines()
	require.NotEmpty(t, lines)

	for i, l := range lines {
		assert.LessOrEqual(t, l.Y, PageLimit, "line %d %q past page limit", i, l.Text)
		if i == 0 {
			continue
		}
		prev := lines[i-1]
		if l.Page == prev.Page {
			assert.Greater(t, l.Y, prev.Y, "line %d not below previous", i)
		} else {
			assert.Equal(t, prev.Page+1, l.Page)
			assert.Equal(t, TopY, l.Y)
		}
	}
	assert.Equal(t, doc.PageCount(), lines[len(lines)-1].Page)

	// Every variant section is present.
	text := doc.Text()
	for i := 1; i <= 25; i++ {
		assert.Contains(t, text, fmt.Sprintf("\n%d. ", i))
	}
}

func TestAssemble_VariantHeadingsKeepTheirSection(t *testing.T) {
	heading := regexp.MustCompile(`^\d+\. `)

	for _, n := range []int{3, 10, 25} {
		doc, err := newTestAssembler().Assemble(classifiedN(n))
		require.NoError(t, err)

		lines := doc.Lines()
		found := 0
		for i, l := range lines {
			if l.Size != 14 || !heading.MatchString(l.Text) {
				continue
			}
			found++
			assert.LessOrEqual(t, l.Y+sectionMinHeight, PageLimit, "n=%d heading %q too low", n, l.Text)
			require.Less(t, i+1, len(lines))
			next := lines[i+1]
			assert.True(t, strings.HasPrefix(next.Text, "Location: "), "n=%d heading %q followed by %q", n, l.Text, next.Text)
			assert.Equal(t, l.Page, next.Page, "n=%d heading %q split from its section", n, l.Text)
		}
		assert.Equal(t, n, found)
	}
}

func TestAssemble_DisclaimerAlwaysLast(t *testing.T) {
	for _, n := range []int{0, 1, 7, 12} {
		doc, err := newTestAssembler().Assemble(classifiedN(n))
		require.NoError(t, err)

		lines := doc.Lines()
		idx := -1
		for i, l := range lines {
			if l.Text == "Disclaimer" {
				idx = i
			}
		}
		require.NotEqual(t, -1, idx, "n=%d", n)
		rest := strings.Join(textOf(lines[idx+1:]), " ")
		assert.Equal(t, strings.Join(strings.Fields(Disclaimer), " "), rest, "n=%d", n)
	}
}

func TestAssemble_WrapsLongText(t *testing.T) {
	results := classifiedN(1)
	results[0].Description = strings.Repeat("pathogenic ", 60)

	doc, err := newTestAssembler().Assemble(results)
	require.NoError(t, err)

	var wrapped int
	for _, l := range doc.Lines() {
		if strings.HasPrefix(l.Text, "pathogenic") {
			wrapped++
		}
	}
	assert.Greater(t, wrapped, 1)
}

func TestDocument_WriteTo(t *testing.T) {
	doc, err := newTestAssembler().Assemble(classifiedN(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(doc.Bytes())), n)
	assert.Equal(t, doc.Bytes(), buf.Bytes())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "genetic-analysis-report-2024-03-15.pdf", Filename(fixedTime))

	doc, err := newTestAssembler().Assemble(nil)
	require.NoError(t, err)
	assert.Equal(t, "genetic-analysis-report-2024-03-15.pdf", doc.Filename())
	assert.Equal(t, fixedTime, doc.Generated())
}

func textOf(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
