package keywords

import "strings"

// FindMissing returns the keywords not present in resumeText, preserving
// input order. Presence is a case-insensitive substring test with no word
// boundaries, so "api" counts as present inside "rapid".
func FindMissing(resumeText string, keywords []string) []string {
	text := strings.ToLower(resumeText)
	missing := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if !strings.Contains(text, strings.ToLower(kw)) {
			missing = append(missing, kw)
		}
	}
	return missing
}

// CountPresent returns how many keywords occur in text under the same
// substring rule as FindMissing.
func CountPresent(text string, keywords []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
