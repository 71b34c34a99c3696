// Package detect implements the heuristic signature detector used when no
// structured analyzer is available.
package detect

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/catalog"
	"github.com/inodb/vibe-risk/internal/variant"
)

// Predicate weights. They sum past 1.0 on purpose: the score is not clamped
// before thresholding.
const (
	WeightGene        = 0.40
	WeightPosition    = 0.30
	WeightRef         = 0.15
	WeightAlt         = 0.15
	WeightFingerprint = 0.20

	// DetectionThreshold is exclusive: a signature is emitted iff score > 0.5.
	DetectionThreshold = 0.5
)

// Match records which textual predicates held for one signature.
type Match struct {
	Gene     bool
	Position bool
	Ref      bool
	Alt      bool
}

// Count returns the number of true predicates.
func (m Match) Count() int {
	n := 0
	for _, ok := range []bool{m.Gene, m.Position, m.Ref, m.Alt} {
		if ok {
			n++
		}
	}
	return n
}

// BaseScore is the predicate part of the score, without the fingerprint term.
func (m Match) BaseScore() float64 {
	score := 0.0
	if m.Gene {
		score += WeightGene
	}
	if m.Position {
		score += WeightPosition
	}
	if m.Ref {
		score += WeightRef
	}
	if m.Alt {
		score += WeightAlt
	}
	return score
}

// Score adds the fingerprint variation term to BaseScore.
func (m Match) Score(fingerprint uint32) float64 {
	return m.BaseScore() + WeightFingerprint*FingerprintFraction(fingerprint)
}

// MatchSignature tests the four predicates against normalized (uppercased) text.
func MatchSignature(sig catalog.Signature, text string) Match {
	return Match{
		Gene:     strings.Contains(text, strings.ToUpper(sig.Gene)),
		Position: strings.Contains(text, strconv.FormatInt(sig.Pos, 10)),
		Ref:      strings.Contains(text, strings.ToUpper(sig.Ref)),
		Alt:      strings.Contains(text, strings.ToUpper(sig.Alt)),
	}
}

// Evaluation is the scoring outcome for one signature.
type Evaluation struct {
	Signature catalog.Signature
	Match     Match
	Score     float64
	Emitted   bool
}

// Detector scans file text against a signature catalog.
type Detector struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewDetector creates a detector over the given catalog.
func NewDetector(c *catalog.Catalog) *Detector {
	return &Detector{
		catalog: c,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (d *Detector) SetLogger(l *zap.Logger) {
	d.logger = l
}

// Catalog returns the catalog the detector scores against.
func (d *Detector) Catalog() *catalog.Catalog {
	return d.catalog
}

// Evaluate scores every signature against the content.
// It returns the per-signature evaluations and the number of non-blank, non-comment lines.
func (d *Detector) Evaluate(content string) ([]Evaluation, int) {
	text, totalLines := Normalize(content)
	fp := Fingerprint(text)

	sigs := d.catalog.Signatures()
	evals := make([]Evaluation, 0, len(sigs))
	for _, sig := range sigs {
		m := MatchSignature(sig, text)
		score := m.Score(fp)
		evals = append(evals, Evaluation{
			Signature: sig,
			Match:     m,
			Score:     score,
			Emitted:   score > DetectionThreshold,
		})
	}
	return evals, totalLines
}

// Detect returns the detected variants in catalog order and the scanned line count.
func (d *Detector) Detect(content string) ([]variant.Detected, int) {
	evals, totalLines := d.Evaluate(content)

	var records []variant.Detected
	for _, e := range evals {
		if !e.Emitted {
			continue
		}
		sig := e.Signature
		d.logger.Debug("signature matched",
			zap.String("gene", sig.Gene),
			zap.String("location", sig.Key()),
			zap.Int("predicates", e.Match.Count()),
			zap.Float64("score", e.Score))

		records = append(records, variant.Detected{
			Gene:          sig.Gene,
			Chrom:         sig.Chrom,
			Pos:           sig.Pos,
			Ref:           sig.Ref,
			Alt:           sig.Alt,
			Pathogenicity: Pathogenicity(sig.BasePathogenicity, totalLines),
			Confidence:    Confidence(e.Score, sig.BasePathogenicity),
			Condition:     sig.Condition,
			Significance:  variant.Significance(sig.BasePathogenicity),
		})
	}
	return records, totalLines
}

// Run performs a full heuristic analysis and returns a tagged Result.
func (d *Detector) Run(content string) *variant.Result {
	records, totalLines := d.Detect(content)
	return &variant.Result{
		Variants:        records,
		TotalAnalyzed:   totalLines,
		Method:          variant.MethodHeuristic,
		ModelConfidence: ModelConfidence(totalLines, len(records), d.catalog.Len()),
		FileFormat:      string(DetectFormat(content)),
	}
}

// Confidence maps a detection score to [0.75, 0.99].
func Confidence(score, basePathogenicity float64) float64 {
	c := score*100 + basePathogenicity*10
	c = math.Max(75, math.Min(99, c))
	return c / 100
}

// Pathogenicity scales the base pathogenicity by a line-count quality factor, capped at 0.99.
func Pathogenicity(basePathogenicity float64, totalLines int) float64 {
	quality := math.Min(1, float64(totalLines)/100)
	p := basePathogenicity * (0.8 + 0.2*quality) * 100
	return math.Min(p, 99) / 100
}

// ModelConfidence is the overall confidence for one run, capped at 0.99.
func ModelConfidence(totalLines, emitted, catalogSize int) float64 {
	rate := 0.0
	if catalogSize > 0 {
		rate = float64(emitted) / float64(catalogSize)
	}
	c := 0.7 + 0.2*math.Min(1, float64(totalLines)/1000) + 0.1*rate
	return math.Min(0.99, c)
}
