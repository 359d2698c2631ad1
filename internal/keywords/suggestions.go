package keywords

import "fmt"

const maxSuggestions = 4

// Suggestions returns short feedback lines for an optimization result.
func Suggestions(score, addedCount int) []string {
	var out []string
	switch {
	case score >= 95:
		out = append(out,
			"Excellent keyword optimization! Your resume now has outstanding ATS compatibility.",
			"All critical keywords have been strategically integrated while maintaining natural flow.",
			"Resume format perfectly preserved with enhanced keyword density for maximum impact.",
		)
	case score >= 90:
		out = append(out,
			"Great keyword optimization! Strong alignment with job requirements achieved.",
			"Consider adding specific metrics and achievements to strengthen your application.",
			"ATS compatibility significantly improved with strategic keyword placement.",
		)
	default:
		out = append(out,
			"Good keyword optimization achieved with natural integration.",
			"Focus on quantifiable results that demonstrate your impact in previous roles.",
			"Additional keywords added to improve ATS scanning compatibility.",
		)
	}
	if addedCount > 0 {
		out = append(out, fmt.Sprintf("Successfully integrated %d critical keywords for better ATS compatibility.", addedCount))
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
