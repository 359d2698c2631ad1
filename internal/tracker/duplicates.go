package tracker

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-portal/internal/types"
)

// SimilarityThreshold is the description word overlap above which two jobs
// with the same title and company count as duplicates.
const SimilarityThreshold = 0.8

// DuplicateResult describes whether a candidate job is already tracked.
type DuplicateResult struct {
	IsDuplicate bool       `json:"is_duplicate"`
	Existing    *types.Job `json:"existing,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// CheckDuplicate compares candidate with existing jobs. An exact match on
// normalized title, company and description is a duplicate; so is a job with
// the same title and company whose description is more than
// SimilarityThreshold similar.
func CheckDuplicate(candidate types.Job, existing []types.Job) DuplicateResult {
	title := normalize(candidate.Title)
	company := normalize(candidate.Company)
	desc := normalize(candidate.Description)

	for i := range existing {
		job := &existing[i]
		if normalize(job.Title) == title && normalize(job.Company) == company && normalize(job.Description) == desc {
			return DuplicateResult{
				IsDuplicate: true,
				Existing:    job,
				Message:     fmt.Sprintf("Already applied to this job: %s at %s", job.Title, job.Company),
			}
		}
	}

	for i := range existing {
		job := &existing[i]
		if normalize(job.Title) != title || normalize(job.Company) != company {
			continue
		}
		if Similarity(desc, normalize(job.Description)) > SimilarityThreshold {
			return DuplicateResult{
				IsDuplicate: true,
				Existing:    job,
				Message:     fmt.Sprintf("Very similar job already exists: %s at %s", job.Title, job.Company),
			}
		}
		// only the first same-title match is compared
		break
	}

	return DuplicateResult{}
}

// Similarity is the share of words longer than three characters that two
// normalized texts have in common, relative to the longer word list.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	wordsA := significantWords(a)
	wordsB := significantWords(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	inB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		inB[w] = true
	}
	common := 0
	for _, w := range wordsA {
		if inB[w] {
			common++
		}
	}
	return float64(common) / float64(max(len(wordsA), len(wordsB)))
}

func significantWords(text string) []string {
	var out []string
	for _, w := range strings.Split(text, " ") {
		if len(w) > 3 {
			out = append(out, w)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// DuplicateError is returned by stores that refuse to track a job twice.
type DuplicateError struct {
	Result DuplicateResult
}

func (e *DuplicateError) Error() string {
	return e.Result.Message
}
