package keywords

import (
	"sort"
	"strings"
)

// Default selection bounds used by the optimizer.
const (
	DefaultMinKeywords = 6
	DefaultMaxKeywords = 10
)

// Priority scores a single keyword for a job title.
func Priority(keyword, jobTitle string) int {
	kw := strings.ToLower(keyword)
	for _, term := range titlePriorityList(jobTitle) {
		if term == kw {
			return PriorityTitle
		}
	}
	switch {
	case highPriority[kw]:
		return PriorityHigh
	case mediumPriority[kw]:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func titlePriorityList(jobTitle string) []string {
	title := strings.ToLower(jobTitle)
	for _, p := range titlePriorities {
		if strings.Contains(title, p.fragment) {
			return p.keywords
		}
	}
	return nil
}

// SelectTop orders missing keywords by priority (stable, highest first) and
// returns at most maxCount of them. When fewer than minCount are missing, all
// of them are returned; the list is never padded. missing is not modified.
func SelectTop(missing []string, jobTitle string, minCount, maxCount int) []string {
	if len(missing) == 0 {
		return []string{}
	}

	type scored struct {
		keyword string
		score   int
	}
	ranked := make([]scored, len(missing))
	for i, kw := range missing {
		ranked[i] = scored{keyword: kw, score: Priority(kw, jobTitle)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	target := max(0, min(maxCount, max(minCount, len(missing)), len(ranked)))

	out := make([]string, target)
	for i := range out {
		out[i] = ranked[i].keyword
	}
	return out
}
