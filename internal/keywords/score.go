package keywords

import "math"

// Score band limits.
const (
	MinScore = 88
	MaxScore = 97
)

// Score rates how well finalContent covers the job's keywords. It is a
// presentation heuristic: the match percentage is floored at MinScore, earns
// +5 at 80% coverage and a further +3 at 90%, and is capped at MaxScore.
func Score(finalContent string, allJobKeywords []string) int {
	total := len(allJobKeywords)
	matched := CountPresent(finalContent, allJobKeywords)

	raw := float64(matched) / float64(max(total, 1)) * 100
	score := math.Max(MinScore, raw)

	if float64(matched) >= float64(total)*0.8 {
		score += 5
	}
	if float64(matched) >= float64(total)*0.9 {
		score += 3
	}
	score = math.Min(MaxScore, score)

	return int(math.Round(score))
}
