// Package variant defines the detection records shared by the analysis pipeline.
package variant

import (
	"fmt"
	"time"
)

// Method identifies which analysis path produced a Result.
type Method string

const (
	MethodExternal  Method = "external"
	MethodHeuristic Method = "heuristic-fallback"
)

// Clinical significance labels.
const (
	SignificancePathogenic       = "Pathogenic"
	SignificanceLikelyPathogenic = "Likely Pathogenic"
)

// Significance returns the clinical-significance label for a base pathogenicity.
func Significance(basePathogenicity float64) string {
	if basePathogenicity > 0.9 {
		return SignificancePathogenic
	}
	return SignificanceLikelyPathogenic
}

// Detected is one matched signature for one analysis run.
type Detected struct {
	Gene          string  `json:"gene"`
	Chrom         string  `json:"chromosome"`
	Pos           int64   `json:"position"`
	Ref           string  `json:"ref"`
	Alt           string  `json:"alt"`
	Pathogenicity float64 `json:"pathogenicity"`
	Confidence    float64 `json:"confidence"`
	Condition     string  `json:"condition"`
	Significance  string  `json:"clinical_significance"`
}

// Label returns the gene-qualified allele change, e.g. "BRCA1 G>A".
func (d Detected) Label() string {
	if d.Ref == "" && d.Alt == "" {
		return d.Gene
	}
	return fmt.Sprintf("%s %s>%s", d.Gene, d.Ref, d.Alt)
}

// Location returns chrom:pos.
func (d Detected) Location() string {
	return fmt.Sprintf("%s:%d", d.Chrom, d.Pos)
}

// Result is the aggregate for one analysis request.
type Result struct {
	Variants        []Detected    `json:"pathogenic_variants"`
	TotalAnalyzed   int           `json:"total_variants_analyzed"`
	Method          Method        `json:"analysis_method"`
	ModelConfidence float64       `json:"model_confidence"`
	ProcessingTime  time.Duration `json:"-"`
	FileFormat      string        `json:"file_format,omitempty"`
}

// Empty reports whether no pathogenic variants were found.
func (r *Result) Empty() bool {
	return len(r.Variants) == 0
}

// FormatProcessingTime renders the processing time as seconds with one decimal, e.g. "1.5s".
func (r *Result) FormatProcessingTime() string {
	return fmt.Sprintf("%.1fs", r.ProcessingTime.Seconds())
}
