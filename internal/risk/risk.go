// Package risk classifies detected variants into risk tiers and attaches
// clinical guidance text.
package risk

import (
	"fmt"

	"github.com/inodb/vibe-risk/internal/variant"
)

// Tier is a risk level derived only from pathogenicity.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Tier thresholds. Both are exclusive lower bounds.
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.6
)

// TierFor maps a pathogenicity score to its tier.
func TierFor(pathogenicity float64) Tier {
	switch {
	case pathogenicity > HighThreshold:
		return TierHigh
	case pathogenicity > MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Classified is a detected variant prepared for display and reporting.
type Classified struct {
	variant.Detected
	Tier            Tier     `json:"risk_level"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// Describe returns the free-text description of a detected variant.
func Describe(d variant.Detected) string {
	return fmt.Sprintf("Known pathogenic variant in %s gene with %.1f%% pathogenic probability. "+
		"This variant is documented in clinical databases.", d.Gene, d.Pathogenicity*100)
}

// Classifier attaches tiers and recommendations. It holds no state beyond
// its mode, so one instance may be shared by concurrent requests.
type Classifier struct {
	mode Mode
}

// NewClassifier creates a classifier. An unknown mode behaves as ModeFixed.
func NewClassifier(mode Mode) *Classifier {
	return &Classifier{mode: mode}
}

// Mode returns the recommendation mode.
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Classify classifies one variant.
func (c *Classifier) Classify(d variant.Detected) Classified {
	tier := TierFor(d.Pathogenicity)
	return Classified{
		Detected:        d,
		Tier:            tier,
		Description:     Describe(d),
		Recommendations: c.recommend(tier, d.Condition),
	}
}

// Normalize prepares a client-supplied record for display. The tier is
// always recomputed from pathogenicity; description and recommendations
// are kept when present.
func (c *Classifier) Normalize(v Classified) Classified {
	v.Tier = TierFor(v.Pathogenicity)
	if v.Recommendations == nil {
		v.Recommendations = c.recommend(v.Tier, v.Condition)
	}
	if v.Description == "" {
		v.Description = Describe(v.Detected)
	}
	return v
}

// ClassifyAll classifies variants in order. The result is never nil.
func (c *Classifier) ClassifyAll(ds []variant.Detected) []Classified {
	out := make([]Classified, 0, len(ds))
	for _, d := range ds {
		out = append(out, c.Classify(d))
	}
	return out
}

// Summary counts classified variants per tier.
type Summary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Summarize counts cs by tier.
func Summarize(cs []Classified) Summary {
	s := Summary{Total: len(cs)}
	for _, c := range cs {
		switch c.Tier {
		case TierHigh:
			s.High++
		case TierMedium:
			s.Medium++
		default:
			s.Low++
		}
	}
	return s
}
