package detect

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-risk/internal/catalog"
	"github.com/inodb/vibe-risk/internal/variant"
)

func findRecord(records []variant.Detected, gene string) (variant.Detected, bool) {
	for _, r := range records {
		if r.Gene == gene {
			return r, true
		}
	}
	return variant.Detected{}, false
}

func TestDetect_BRCA1Scenario(t *testing.T) {
	d := NewDetector(catalog.Default())

	content := "sample\tBRCA1\t43124096\tG\tA\n"
	records, totalLines := d.Detect(content)
	assert.Equal(t, 1, totalLines)

	rec, ok := findRecord(records, "BRCA1")
	require.True(t, ok, "BRCA1 should be detected")
	assert.Equal(t, "17", rec.Chrom)
	assert.Equal(t, int64(43124096), rec.Pos)
	assert.Equal(t, catalog.ConditionHBOC, rec.Condition)
	assert.Equal(t, variant.SignificancePathogenic, rec.Significance)
	// 0.95 * (0.8 + 0.2*0.01)
	assert.InDelta(t, 0.7619, rec.Pathogenicity, 1e-9)
	// Score >= 1.0 so confidence clamps at 0.99.
	assert.InDelta(t, 0.99, rec.Confidence, 1e-9)
}

func TestDetect_LowercaseInput(t *testing.T) {
	d := NewDetector(catalog.Default())

	records, _ := d.Detect("brca1 43124096 g a")
	_, ok := findRecord(records, "BRCA1")
	assert.True(t, ok)
}

func TestDetect_EmptyInput(t *testing.T) {
	d := NewDetector(catalog.Default())

	for _, content := range []string{"", "\n\n   \n", "##fileformat=VCFv4.2\n#CHROM\tPOS\n"} {
		records, totalLines := d.Detect(content)
		assert.Empty(t, records)
		assert.Zero(t, totalLines)

		r := d.Run(content)
		assert.Equal(t, 0, r.TotalAnalyzed)
		assert.True(t, r.Empty())
		assert.Equal(t, 0.7, r.ModelConfidence)
		assert.Equal(t, variant.MethodHeuristic, r.Method)
	}
}

func TestDetect_CommentLinesIgnored(t *testing.T) {
	d := NewDetector(catalog.Default())

	records, totalLines := d.Detect("# BRCA1 43124096 G A\n")
	assert.Zero(t, totalLines)
	_, ok := findRecord(records, "BRCA1")
	assert.False(t, ok)
}

func TestDetect_GeneOnlyDependsOnFingerprint(t *testing.T) {
	d := NewDetector(catalog.Default())

	content := "TP53"
	text, _ := Normalize(content)
	expected := WeightGene+WeightFingerprint*FingerprintFraction(Fingerprint(text)) > DetectionThreshold

	records, _ := d.Detect(content)
	_, ok := findRecord(records, "TP53")
	assert.Equal(t, expected, ok)
}

func TestEvaluate_FullMatchAlwaysDetected(t *testing.T) {
	d := NewDetector(catalog.Default())

	for _, sig := range catalog.Default().Signatures() {
		t.Run(sig.Gene+"_"+sig.Key(), func(t *testing.T) {
			content := strings.Join([]string{
				sig.Chrom, strconv.FormatInt(sig.Pos, 10), sig.Gene, sig.Ref, sig.Alt,
			}, "\t")
			evals, _ := d.Evaluate(content)

			var found bool
			for _, e := range evals {
				if e.Signature == sig {
					found = true
					assert.Equal(t, 4, e.Match.Count())
					assert.GreaterOrEqual(t, e.Match.BaseScore(), 0.85)
					assert.True(t, e.Emitted)
				}
			}
			assert.True(t, found)
		})
	}
}

func TestMatch_Monotonic(t *testing.T) {
	fps := []uint32{0, 499, 500, 999, 123456789}
	for mask := 0; mask < 16; mask++ {
		m := matchFromMask(mask)
		for bit := 0; bit < 4; bit++ {
			if mask&(1<<bit) != 0 {
				continue
			}
			more := matchFromMask(mask | 1<<bit)
			for _, fp := range fps {
				assert.GreaterOrEqual(t, more.Score(fp), m.Score(fp),
					"mask %04b + bit %d, fp %d", mask, bit, fp)
			}
		}
	}
}

func matchFromMask(mask int) Match {
	return Match{
		Gene:     mask&1 != 0,
		Position: mask&2 != 0,
		Ref:      mask&4 != 0,
		Alt:      mask&8 != 0,
	}
}

func TestMatch_ScoreNotClamped(t *testing.T) {
	m := Match{Gene: true, Position: true, Ref: true, Alt: true}
	assert.InDelta(t, 1.0+0.2*0.999, m.Score(999), 1e-9)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		base  float64
		want  float64
	}{
		{"clamped low", 0.51, 0.5, 0.75},
		{"mid range", 0.8, 0.6, 0.86},
		{"clamped high", 1.1, 0.95, 0.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.score, tt.base), 1e-9)
		})
	}
}

func TestPathogenicity(t *testing.T) {
	assert.InDelta(t, 0.8*0.9, Pathogenicity(0.9, 0), 1e-9)
	assert.InDelta(t, 0.9*0.9, Pathogenicity(0.9, 50), 1e-9)
	assert.InDelta(t, 0.9, Pathogenicity(0.9, 100), 1e-9)
	assert.InDelta(t, 0.9, Pathogenicity(0.9, 5000), 1e-9)
	assert.InDelta(t, 0.99, Pathogenicity(1.0, 5000), 1e-9)
}

func TestModelConfidence(t *testing.T) {
	assert.Equal(t, 0.7, ModelConfidence(0, 0, 9))
	assert.InDelta(t, 0.8, ModelConfidence(500, 0, 9), 1e-9)
	assert.InDelta(t, 0.9+0.1/9, ModelConfidence(1000, 1, 9), 1e-9)
	assert.Equal(t, 0.99, ModelConfidence(5000, 9, 9))
	assert.Equal(t, 0.7, ModelConfidence(0, 0, 0))
}
