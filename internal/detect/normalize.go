package detect

import "strings"

// CommentMarker starts a line that is excluded from scanning and line counts.
const CommentMarker = "#"

// Normalize uppercases content and drops blank and comment lines.
// It returns the remaining lines joined by '\n' and their count.
func Normalize(content string) (string, int) {
	var b strings.Builder
	b.Grow(len(content))

	lines := 0
	for _, line := range strings.Split(strings.ToUpper(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, CommentMarker) {
			continue
		}
		if lines > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		lines++
	}
	return b.String(), lines
}

// Fingerprint folds every code point into a 32-bit rolling hash (h*31 + c mod 2^32).
// It only injects reproducible per-file variation; it is not a security hash.
func Fingerprint(text string) uint32 {
	var h uint32
	for _, r := range text {
		h = h*31 + uint32(r)
	}
	return h
}

// FingerprintFraction maps a fingerprint to [0, 0.999].
func FingerprintFraction(fp uint32) float64 {
	return float64(fp%1000) / 1000
}
