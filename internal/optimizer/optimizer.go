// Package optimizer tailors resume text to a tracked job by running the
// keyword pipeline: extract, diff, select, inject, score.
package optimizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/keywords"
	"github.com/jonathan/career-portal/internal/types"
)

// MinInputLength is the shortest resume or job description accepted.
const MinInputLength = 50

// InputValidationError reports input too short to optimize.
type InputValidationError struct {
	Field  string
	Min    int
	Actual int
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("%s is too short: %d characters, need at least %d", e.Field, e.Actual, e.Min)
}

// Options tunes a single optimization.
type Options struct {
	MinKeywords int
	MaxKeywords int
	// Now and NewID are injectable for deterministic tests.
	Now   func() time.Time
	NewID func() uuid.UUID
}

func (o Options) withDefaults() Options {
	if o.MinKeywords <= 0 {
		o.MinKeywords = keywords.DefaultMinKeywords
	}
	if o.MaxKeywords <= 0 {
		o.MaxKeywords = keywords.DefaultMaxKeywords
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.New
	}
	return o
}

// Result is the outcome of one optimization.
type Result struct {
	Resume        types.OptimizedResume `json:"resume"`
	ATSScore      int                   `json:"ats_score"`
	AddedKeywords []string              `json:"added_keywords"`
	Summary       string                `json:"summary"`
	Analysis      types.KeywordAnalysis `json:"analysis"`
}

// Optimize tailors resumeText to job. It performs no I/O and is safe for
// concurrent use.
func Optimize(resumeText string, job types.Job, opts Options) (*Result, error) {
	if err := validateInput("resume text", resumeText); err != nil {
		return nil, err
	}
	if err := validateInput("job description", job.Description); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	jobKeywords := keywords.Extract(job.Description, job.Title)
	missing := keywords.FindMissing(resumeText, jobKeywords)
	selected := keywords.SelectTop(missing, job.Title, opts.MinKeywords, opts.MaxKeywords)
	content := keywords.Inject(resumeText, selected)
	score := keywords.Score(content, jobKeywords)

	now := opts.Now()
	resume := types.OptimizedResume{
		ID:              opts.NewID(),
		JobID:           job.ID,
		UserID:          job.UserID,
		JobTitle:        job.Title,
		CompanyName:     job.Company,
		Content:         content,
		OriginalContent: resumeText,
		MatchScore:      score,
		Suggestions:     keywords.Suggestions(score, len(selected)),
		Keywords:        selected,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return &Result{
		Resume:        resume,
		ATSScore:      score,
		AddedKeywords: selected,
		Summary:       fmt.Sprintf("Smart Keyword Optimization: Added %d strategic keywords, ATS Score: %d%%", len(selected), score),
		Analysis: types.KeywordAnalysis{
			TotalJobKeywords: len(jobKeywords),
			MatchedKeywords:  len(jobKeywords) - len(missing),
			MissingKeywords:  missing,
			AddedKeywords:    selected,
		},
	}, nil
}

func validateInput(field, text string) error {
	n := len(strings.TrimSpace(text))
	if n < MinInputLength {
		return &InputValidationError{Field: field, Min: MinInputLength, Actual: n}
	}
	return nil
}
