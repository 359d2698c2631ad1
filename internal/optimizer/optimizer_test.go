package optimizer

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
jane@example.com

Skills
Go, Rust, Linux administration

Experience
Acme Corp - Backend Engineer
• Built billing services handling millions of events`

func sampleJob() types.Job {
	return types.Job{
		ID:      uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		UserID:  uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Title:   "Senior Software Engineer",
		Company: "TechCorp",
		Description: "Develop web applications using React, Node.js and TypeScript. " +
			"Work with AWS and Docker. Strong SQL and communication skills. Agile team.",
	}
}

func TestOptimize(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	res, err := Optimize(sampleResume, sampleJob(), Options{
		Now:   func() time.Time { return fixed },
		NewID: func() uuid.UUID { return id },
	})
	require.NoError(t, err)

	r := res.Resume
	assert.Equal(t, id, r.ID)
	assert.Equal(t, sampleJob().ID, r.JobID)
	assert.Equal(t, sampleJob().UserID, r.UserID)
	assert.Equal(t, "TechCorp", r.CompanyName)
	assert.Equal(t, sampleResume, r.OriginalContent)
	assert.Equal(t, fixed, r.CreatedAt)

	assert.GreaterOrEqual(t, res.ATSScore, 88)
	assert.LessOrEqual(t, res.ATSScore, 97)
	assert.Equal(t, res.ATSScore, r.MatchScore)

	assert.NotEmpty(t, res.AddedKeywords)
	assert.LessOrEqual(t, len(res.AddedKeywords), 10)
	for _, kw := range res.AddedKeywords {
		assert.Contains(t, strings.ToLower(r.Content), kw)
	}

	assert.Equal(t, res.Analysis.TotalJobKeywords-len(res.Analysis.MissingKeywords), res.Analysis.MatchedKeywords)
	assert.Equal(t, res.AddedKeywords, res.Analysis.AddedKeywords)
	assert.True(t, strings.HasPrefix(res.Summary, "Smart Keyword Optimization: Added "))
	assert.NotEmpty(t, r.Suggestions)
	assert.LessOrEqual(t, len(r.Suggestions), 4)
}

func TestOptimize_PreservesOriginalText(t *testing.T) {
	res, err := Optimize(sampleResume, sampleJob(), Options{})
	require.NoError(t, err)

	content := res.Resume.Content
	i := 0
	for j := 0; j < len(content) && i < len(sampleResume); j++ {
		if content[j] == sampleResume[i] {
			i++
		}
	}
	assert.Equal(t, len(sampleResume), i, "original text must be a subsequence of the optimized text")
}

func TestOptimize_Deterministic(t *testing.T) {
	a, err := Optimize(sampleResume, sampleJob(), Options{})
	require.NoError(t, err)
	b, err := Optimize(sampleResume, sampleJob(), Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Resume.Content, b.Resume.Content)
	assert.Equal(t, a.AddedKeywords, b.AddedKeywords)
	assert.Equal(t, a.ATSScore, b.ATSScore)
}

func TestOptimize_InputValidation(t *testing.T) {
	tests := []struct {
		name   string
		resume string
		desc   string
		field  string
	}{
		{"short resume", "too short", sampleJob().Description, "resume text"},
		{"blank resume", strings.Repeat(" ", 80), sampleJob().Description, "resume text"},
		{"short description", sampleResume, "Go dev", "job description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := sampleJob()
			job.Description = tt.desc

			res, err := Optimize(tt.resume, job, Options{})
			require.Error(t, err)
			assert.Nil(t, res)

			var verr *InputValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, MinInputLength, verr.Min)
		})
	}
}

func TestOptimize_CustomBounds(t *testing.T) {
	res, err := Optimize(sampleResume, sampleJob(), Options{MinKeywords: 1, MaxKeywords: 2})
	require.NoError(t, err)
	assert.Len(t, res.AddedKeywords, 2)
}
