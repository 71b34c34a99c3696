package catalog

// builtinSignatures is the catalog shipped with the binary (GRCh38 coordinates).
var builtinSignatures = []Signature{
	{Gene: "BRCA1", Chrom: "17", Pos: 43124096, Ref: "G", Alt: "A", Condition: ConditionHBOC, BasePathogenicity: 0.95},
	{Gene: "BRCA2", Chrom: "13", Pos: 32340301, Ref: "C", Alt: "T", Condition: ConditionHBOC, BasePathogenicity: 0.93},
	{Gene: "TP53", Chrom: "17", Pos: 7674220, Ref: "C", Alt: "T", Condition: ConditionLiFraumeni, BasePathogenicity: 0.95},
	{Gene: "CFTR", Chrom: "7", Pos: 117559590, Ref: "ATCT", Alt: "A", Condition: ConditionCF, BasePathogenicity: 0.98},
	{Gene: "HTT", Chrom: "4", Pos: 3074877, Ref: "CAG", Alt: "(CAG)36+", Condition: ConditionHuntington, BasePathogenicity: 0.99},
	{Gene: "FBN1", Chrom: "15", Pos: 48487333, Ref: "C", Alt: "T", Condition: ConditionMarfan, BasePathogenicity: 0.92},
	{Gene: "APOE", Chrom: "19", Pos: 44908684, Ref: "T", Alt: "C", Condition: ConditionAlzheimer, BasePathogenicity: 0.75},
	{Gene: "MYBPC3", Chrom: "11", Pos: 47332565, Ref: "C", Alt: "T", Condition: ConditionCardiomyopathy, BasePathogenicity: 0.94},
	{Gene: "MYH7", Chrom: "14", Pos: 23415244, Ref: "G", Alt: "A", Condition: ConditionCardiomyopathy, BasePathogenicity: 0.93},
}

var builtin = MustNew(builtinSignatures)

// Default returns the built-in catalog.
func Default() *Catalog {
	return builtin
}
