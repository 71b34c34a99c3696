// Package catalog provides the static table of known pathogenic variant signatures.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Index conditions every catalog must cover.
const (
	ConditionHBOC           = "Hereditary Breast and Ovarian Cancer"
	ConditionLiFraumeni     = "Li-Fraumeni Syndrome"
	ConditionCF             = "Cystic Fibrosis"
	ConditionHuntington     = "Huntington's Disease"
	ConditionMarfan         = "Marfan Syndrome"
	ConditionAlzheimer      = "Alzheimer's Disease"
	ConditionCardiomyopathy = "Hypertrophic Cardiomyopathy"
)

// IndexConditions lists the conditions a valid catalog must contain.
var IndexConditions = []string{
	ConditionHBOC,
	ConditionLiFraumeni,
	ConditionCF,
	ConditionHuntington,
	ConditionMarfan,
	ConditionAlzheimer,
	ConditionCardiomyopathy,
}

// Signature describes one known gene/position/allele/condition association.
type Signature struct {
	Gene              string  `yaml:"gene" json:"gene"`
	Chrom             string  `yaml:"chrom" json:"chromosome"`
	Pos               int64   `yaml:"pos" json:"position"` // 1-based
	Ref               string  `yaml:"ref" json:"ref"`
	Alt               string  `yaml:"alt" json:"alt"` // may be a symbolic token, e.g. a repeat marker
	Condition         string  `yaml:"condition" json:"condition"`
	BasePathogenicity float64 `yaml:"pathogenicity" json:"pathogenicity"`
}

// Key returns the chrom:pos identifier used in logs.
func (s Signature) Key() string {
	return fmt.Sprintf("%s:%d", s.Chrom, s.Pos)
}

// ValidationError reports a malformed catalog entry.
type ValidationError struct {
	Index   int
	Gene    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "catalog: " + e.Message
	}
	return fmt.Sprintf("catalog entry %d (%s): %s", e.Index, e.Gene, e.Message)
}

// Catalog is an immutable, validated list of signatures.
// It is safe for concurrent use because it is never mutated after New returns.
type Catalog struct {
	signatures []Signature
}

// New validates the signatures and returns a catalog holding a private copy.
func New(sigs []Signature) (*Catalog, error) {
	if err := Validate(sigs); err != nil {
		return nil, err
	}
	cp := make([]Signature, len(sigs))
	copy(cp, sigs)
	return &Catalog{signatures: cp}, nil
}

// MustNew is like New but panics on an invalid catalog.
func MustNew(sigs []Signature) *Catalog {
	c, err := New(sigs)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks field ranges, (gene, condition) uniqueness and index condition coverage.
func Validate(sigs []Signature) error {
	type pair struct{ gene, condition string }
	seen := make(map[pair]int, len(sigs))
	covered := make(map[string]bool)

	for i, s := range sigs {
		switch {
		case strings.TrimSpace(s.Gene) == "":
			return &ValidationError{Index: i, Gene: s.Gene, Message: "empty gene symbol"}
		case strings.TrimSpace(s.Chrom) == "":
			return &ValidationError{Index: i, Gene: s.Gene, Message: "empty chromosome"}
		case s.Pos <= 0:
			return &ValidationError{Index: i, Gene: s.Gene, Message: fmt.Sprintf("position %d is not 1-based", s.Pos)}
		case s.Ref == "" || s.Alt == "":
			return &ValidationError{Index: i, Gene: s.Gene, Message: "missing reference or alternate allele"}
		case strings.TrimSpace(s.Condition) == "":
			return &ValidationError{Index: i, Gene: s.Gene, Message: "empty condition"}
		case s.BasePathogenicity < 0 || s.BasePathogenicity > 1:
			return &ValidationError{Index: i, Gene: s.Gene, Message: fmt.Sprintf("base pathogenicity %.3f outside [0,1]", s.BasePathogenicity)}
		}

		k := pair{strings.ToUpper(s.Gene), s.Condition}
		if prev, dup := seen[k]; dup {
			return &ValidationError{Index: i, Gene: s.Gene, Message: fmt.Sprintf("duplicates entry %d for %q", prev, s.Condition)}
		}
		seen[k] = i
		covered[s.Condition] = true
	}

	var missing []string
	for _, c := range IndexConditions {
		if !covered[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Index: -1, Message: "missing index conditions: " + strings.Join(missing, ", ")}
	}
	return nil
}

// Signatures returns the catalog entries. Callers must not modify the slice.
func (c *Catalog) Signatures() []Signature {
	return c.signatures
}

// Len returns the number of signatures.
func (c *Catalog) Len() int {
	return len(c.signatures)
}

// Conditions returns the distinct conditions in sorted order.
func (c *Catalog) Conditions() []string {
	set := make(map[string]bool)
	for _, s := range c.signatures {
		set[s.Condition] = true
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ForGene returns every signature for the gene symbol (case-insensitive).
func (c *Catalog) ForGene(gene string) []Signature {
	var out []Signature
	for _, s := range c.signatures {
		if strings.EqualFold(s.Gene, gene) {
			out = append(out, s)
		}
	}
	return out
}
