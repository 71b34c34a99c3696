package analyze

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/inodb/vibe-risk/internal/variant"
)

// payload is the JSON object the external analyzer prints on success.
type payload struct {
	Variants        *[]payloadVariant `json:"pathogenic_variants"`
	TotalAnalyzed   int               `json:"total_variants_analyzed"`
	ModelConfidence *float64          `json:"model_confidence"`
	Error           string            `json:"error"`
}

type payloadVariant struct {
	Variant       string      `json:"variant"` // chrom:pos:ref>alt
	Chromosome    flexString  `json:"chromosome"`
	Position      json.Number `json:"position"`
	Gene          string      `json:"gene"`
	Pathogenicity float64     `json:"pathogenic_probability"`
	Condition     string      `json:"disease_condition"`
	Confidence    float64     `json:"confidence"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

var errNoPayload = errors.New("no JSON object in analyzer output")

// parsePayload finds the first line of stdout that starts a decodable JSON
// object and converts it to a Result. Log lines before the object are skipped.
func parsePayload(stdout []byte) (*variant.Result, error) {
	var lastErr error = errNoPayload
	offset := 0
	for _, line := range bytes.SplitAfter(stdout, []byte("\n")) {
		start := offset
		offset += len(line)
		if !bytes.HasPrefix(bytes.TrimSpace(line), []byte("{")) {
			continue
		}

		var p payload
		dec := json.NewDecoder(bytes.NewReader(stdout[start:]))
		dec.UseNumber()
		if err := dec.Decode(&p); err != nil {
			lastErr = fmt.Errorf("decode analyzer output: %w", err)
			continue
		}
		return p.toResult()
	}
	return nil, lastErr
}

func (p *payload) toResult() (*variant.Result, error) {
	if p.Error != "" {
		return nil, fmt.Errorf("analyzer reported error: %s", p.Error)
	}
	if p.Variants == nil {
		return nil, errors.New("analyzer output missing pathogenic_variants")
	}

	records := make([]variant.Detected, 0, len(*p.Variants))
	var confSum float64
	for i, pv := range *p.Variants {
		d, err := pv.toDetected()
		if err != nil {
			return nil, fmt.Errorf("variant %d: %w", i, err)
		}
		confSum += d.Confidence
		records = append(records, d)
	}

	r := &variant.Result{
		Variants:      records,
		TotalAnalyzed: p.TotalAnalyzed,
	}
	switch {
	case p.ModelConfidence != nil:
		r.ModelConfidence = clamp01(*p.ModelConfidence)
	case len(records) > 0:
		r.ModelConfidence = confSum / float64(len(records))
	default:
		r.ModelConfidence = 0.7
	}
	return r, nil
}

func (pv payloadVariant) toDetected() (variant.Detected, error) {
	d := variant.Detected{
		Gene:          pv.Gene,
		Chrom:         string(pv.Chromosome),
		Pathogenicity: clamp01(pv.Pathogenicity),
		Confidence:    clamp01(pv.Confidence),
		Condition:     pv.Condition,
	}
	if pv.Position != "" {
		pos, err := strconv.ParseFloat(pv.Position.String(), 64)
		if err != nil {
			return d, fmt.Errorf("position %q: %w", pv.Position, err)
		}
		d.Pos = int64(pos)
	}

	// "chrom:pos:ref>alt"
	parts := strings.Split(pv.Variant, ":")
	if len(parts) == 3 {
		if ref, alt, ok := strings.Cut(parts[2], ">"); ok {
			d.Ref, d.Alt = ref, alt
		}
		if d.Chrom == "" {
			d.Chrom = parts[0]
		}
	}

	if d.Gene == "" {
		d.Gene = "Unknown"
	}
	d.Significance = variant.Significance(d.Pathogenicity)
	return d, nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
