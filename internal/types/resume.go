package types

import (
	"time"

	"github.com/google/uuid"
)

// OptimizedResume is a resume tailored to one job. Content always contains
// OriginalContent with only insertions applied.
type OptimizedResume struct {
	ID              uuid.UUID `json:"id"`
	JobID           uuid.UUID `json:"job_id"`
	UserID          uuid.UUID `json:"user_id"`
	JobTitle        string    `json:"job_title"`
	CompanyName     string    `json:"company_name"`
	Content         string    `json:"content"`
	OriginalContent string    `json:"original_content"`
	MatchScore      int       `json:"match_score"`
	Suggestions     []string  `json:"suggestions"`
	Keywords        []string  `json:"keywords"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// KeywordAnalysis summarizes how a resume covered a job's keywords before
// optimization.
type KeywordAnalysis struct {
	TotalJobKeywords int      `json:"total_job_keywords"`
	MatchedKeywords  int      `json:"matched_keywords"`
	MissingKeywords  []string `json:"missing_keywords"`
	AddedKeywords    []string `json:"added_keywords"`
}

// BaseResume is a user-authored resume template.
type BaseResume struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	Skills     []string  `json:"skills"`
	Experience []string  `json:"experience"`
	Education  []string  `json:"education"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BaseResumeRequest creates or replaces a base resume.
type BaseResumeRequest struct {
	Name       string   `json:"name" validate:"required,min=1"`
	Content    string   `json:"content" validate:"required,min=1"`
	Skills     []string `json:"skills,omitempty"`
	Experience []string `json:"experience,omitempty"`
	Education  []string `json:"education,omitempty"`
}

// OptimizeRequest selects the resume text to optimize for a job: either
// literal text or a stored base resume.
type OptimizeRequest struct {
	ResumeText   string     `json:"resume_text,omitempty" validate:"required_without=BaseResumeID"`
	BaseResumeID *uuid.UUID `json:"base_resume_id,omitempty" validate:"required_without=ResumeText"`
}
