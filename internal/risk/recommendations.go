package risk

import (
	"fmt"
	"strings"
)

// Mode selects how recommendation text is chosen.
type Mode string

const (
	// ModeFixed attaches the same four strings to every variant.
	ModeFixed Mode = "fixed"
	// ModeTiered attaches four strings chosen by risk tier.
	ModeTiered Mode = "tiered"
	// ModeCondition attaches condition-specific guidance, falling back to the fixed list.
	ModeCondition Mode = "condition"
)

// ParseMode parses a mode name. The empty string is ModeFixed.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeFixed, nil
	case ModeFixed, ModeTiered, ModeCondition:
		return m, nil
	default:
		return "", fmt.Errorf("unknown recommendation mode %q (want fixed, tiered or condition)", s)
	}
}

// FixedRecommendations is the tier-independent guidance list.
var FixedRecommendations = []string{
	"Consult with a genetic counselor",
	"Discuss results with your healthcare provider",
	"Consider family screening",
	"Follow up with regular medical monitoring",
}

var tieredRecommendations = map[Tier][]string{
	TierHigh: {
		"Genetic counseling strongly recommended",
		"Discuss results with your healthcare provider promptly",
		"Consider confirmatory clinical testing",
		"Family cascade testing advised",
	},
	TierMedium: {
		"Consult with a genetic counselor",
		"Discuss results with your healthcare provider",
		"Consider confirmatory clinical testing",
		"Follow up with regular medical monitoring",
	},
	TierLow: {
		"Discuss results with your healthcare provider",
		"Clinical correlation recommended",
		"Follow current medical guidelines",
		"Regular health monitoring",
	},
}

// conditionRule matches a condition label by substring. Rules are checked in order.
type conditionRule struct {
	keywords        []string
	recommendations []string
}

var conditionRules = []conditionRule{
	{
		keywords: []string{"Cancer", "Lynch", "Li-Fraumeni"},
		recommendations: []string{
			"Genetic counseling strongly recommended",
			"Enhanced cancer screening protocols",
			"Consider prophylactic surgical options",
			"Family cascade testing advised",
			"Regular oncology consultation",
		},
	},
	{
		keywords: []string{"Huntington"},
		recommendations: []string{
			"Neurological evaluation with movement disorder specialist",
			"Genetic counseling for family planning",
			"Cognitive and psychiatric assessment",
			"Presymptomatic testing considerations",
			"Support group referral",
		},
	},
	{
		keywords: []string{"Cystic Fibrosis"},
		recommendations: []string{
			"Pulmonary function testing",
			"Genetic counseling for family planning",
			"Specialized CF care team consultation",
			"Carrier screening for family members",
			"Respiratory therapy evaluation",
		},
	},
	{
		keywords: []string{"Marfan"},
		recommendations: []string{
			"Comprehensive cardiovascular evaluation",
			"Ophthalmologic examination",
			"Orthopedic assessment",
			"Activity restrictions as indicated",
			"Family screening recommended",
		},
	},
	{
		keywords: []string{"Alzheimer"},
		recommendations: []string{
			"Neuropsychological evaluation",
			"Lifestyle modifications for brain health",
			"Regular cognitive monitoring",
			"Genetic counseling consultation",
			"Consider research participation",
		},
	},
	{
		keywords: []string{"Cardiomyopathy", "Cardiovascular", "Long QT"},
		recommendations: []string{
			"Comprehensive cardiac evaluation",
			"Echocardiogram and ECG monitoring",
			"Activity restriction assessment",
			"Family cascade screening",
			"Cardiology consultation",
		},
	},
	{
		keywords: []string{"Hemochromatosis"},
		recommendations: []string{
			"Iron studies and ferritin monitoring",
			"Therapeutic phlebotomy if indicated",
			"Liver function assessment",
			"Family screening recommended",
			"Dietary iron counseling",
		},
	},
	{
		keywords: []string{"Parkinson"},
		recommendations: []string{
			"Movement disorder specialist evaluation",
			"Dopamine transporter imaging if indicated",
			"Genetic counseling consultation",
			"Regular neurological monitoring",
			"Consider research participation",
		},
	},
	{
		keywords: []string{"Hypercholesterolemia"},
		recommendations: []string{
			"Lipid profile monitoring and management",
			"Cardiovascular risk assessment",
			"Statin therapy consideration",
			"Lifestyle modifications counseling",
			"Family cascade screening",
		},
	},
}

// recommend returns the guidance list for a tier and condition.
// The returned slice is a copy and may be modified.
func (c *Classifier) recommend(tier Tier, condition string) []string {
	var recs []string
	switch c.mode {
	case ModeTiered:
		recs = tieredRecommendations[tier]
	case ModeCondition:
		recs = conditionRecommendations(condition)
	}
	if recs == nil {
		recs = FixedRecommendations
	}
	return append([]string(nil), recs...)
}

func conditionRecommendations(condition string) []string {
	for _, rule := range conditionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(condition, kw) {
				return rule.recommendations
			}
		}
	}
	return nil
}
