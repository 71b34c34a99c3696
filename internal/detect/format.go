package detect

import "strings"

// Format is the sniffed layout of an uploaded file. It is informational only
// and never changes scoring.
type Format string

const (
	FormatVCF     Format = "VCF"
	FormatFASTA   Format = "FASTA"
	FormatFASTQ   Format = "FASTQ"
	FormatRawDNA  Format = "RAW_DNA"
	FormatUnknown Format = "UNKNOWN"
)

// AcceptedExtensions are the upload extensions advertised to callers. They are a hint only.
var AcceptedExtensions = []string{".vcf", ".fastq", ".fasta", ".bam", ".gz"}

// HasAcceptedExtension reports whether the filename carries one of AcceptedExtensions.
func HasAcceptedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range AcceptedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// DetectFormat sniffs the format of decoded file content.
func DetectFormat(content string) Format {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return FormatUnknown
	}

	// VCF header
	if strings.HasPrefix(trimmed, "##fileformat=VCF") || strings.HasPrefix(trimmed, "#CHROM") {
		return FormatVCF
	}

	if strings.HasPrefix(trimmed, ">") {
		return FormatFASTA
	}

	lines := strings.Split(trimmed, "\n")
	if strings.HasPrefix(trimmed, "@") && len(lines) >= 3 && strings.HasPrefix(strings.TrimSpace(lines[2]), "+") {
		return FormatFASTQ
	}

	// Headerless VCF: tab-separated records whose first column is a chromosome.
	for _, line := range lines {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) >= 5 && isChromosome(fields[0]) {
			return FormatVCF
		}
		break
	}

	if onlyBases(trimmed) {
		return FormatRawDNA
	}
	return FormatUnknown
}

func isChromosome(s string) bool {
	s = strings.TrimPrefix(strings.ToLower(s), "chr")
	switch s {
	case "x", "y", "m", "mt":
		return true
	case "":
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func onlyBases(s string) bool {
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'A', 'C', 'G', 'T', 'N':
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
