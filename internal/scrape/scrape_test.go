package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/career-portal/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingDescription = `We are seeking a Senior Software Engineer.

Requirements:
• 5+ years of experience in software development
• Proficiency in Go and PostgreSQL
• Excellent communication skills

Preferred Qualifications:
• Experience with Kubernetes`

func TestExtractRequirements(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        []string
	}{
		{
			name:        "stops at blank line",
			description: postingDescription,
			want: []string{
				"5+ years of experience in software development",
				"Proficiency in Go and PostgreSQL",
				"Excellent communication skills",
			},
		},
		{
			name:        "must have heading",
			description: "Must Have:\n• Go\nnot a bullet\n• SQL",
			want:        []string{"Go", "SQL"},
		},
		{
			name:        "no heading",
			description: "• Go\n• SQL",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRequirements(tt.description))
		})
	}
}

func TestValidateJobURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.linkedin.com/jobs/view/123", true},
		{"https://indeed.com/viewjob?jk=1", true},
		{"https://wellfound.com/jobs/1", true},
		{"https://angel.co/company/x/jobs/1", true},
		{"https://boards.greenhouse.io/acme/jobs/1", true},
		{"https://example.com/jobs/1", false},
		{"ftp://linkedin.com/jobs", false},
		{"linkedin.com/jobs", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateJobURL(tt.url))
		})
	}
}

func TestPartitionURLs(t *testing.T) {
	valid, invalid := PartitionURLs([]string{
		"https://www.indeed.com/viewjob?jk=1",
		"  ",
		"https://example.com/job",
		"https://www.indeed.com/viewjob?jk=1",
		"https://www.dice.com/job-detail/2",
	})

	assert.Equal(t, []string{"https://www.indeed.com/viewjob?jk=1", "https://www.dice.com/job-detail/2"}, valid)
	assert.Equal(t, []string{"https://example.com/job"}, invalid)
}

func TestParsePage_JSONLD(t *testing.T) {
	html := `<html><head>
	<meta property="og:title" content="Ignored Title">
	<script type="application/ld+json">{
		"@context": "https://schema.org",
		"@type": "JobPosting",
		"title": "Backend Engineer",
		"description": "<p>Build APIs</p><ul><li>Go</li></ul>",
		"hiringOrganization": {"@type": "Organization", "name": "Acme"},
		"jobLocation": [{"@type": "Place", "address": {"addressLocality": "Austin", "addressRegion": "TX"}}],
		"baseSalary": {"currency": "USD", "value": {"minValue": 120000, "maxValue": 150000, "unitText": "YEAR"}}
	}</script>
	</head><body></body></html>`

	job, err := ParsePage("https://www.indeed.com/viewjob?jk=1", html, "")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, "Austin, TX", job.Location)
	assert.Equal(t, "$120,000 - $150,000", job.Salary)
	assert.Equal(t, "Build APIs\n• Go", job.Description)
}

func TestParsePage_MetaFallbacks(t *testing.T) {
	html := `<html><head><meta property="og:site_name" content="Globex"></head>
	<body><h1> Data Scientist </h1></body></html>`

	job, err := ParsePage("https://jobs.example.com/1", html, postingDescription)
	require.NoError(t, err)
	assert.Equal(t, "Data Scientist", job.Title)
	assert.Equal(t, "Globex", job.Company)
	assert.Len(t, job.Requirements, 3)
}

func TestParsePage_HostCompany(t *testing.T) {
	job, err := ParsePage("https://careers.initech.com/1", "<html><body></body></html>", "Some posting text")
	require.NoError(t, err)
	assert.Equal(t, "Initech", job.Company)
	assert.Equal(t, "Untitled Position", job.Title)
}

func TestParsePage_NoDescription(t *testing.T) {
	_, err := ParsePage("https://example.com", "<html><body><h1>Title</h1></body></html>", "  ")
	assert.ErrorIs(t, err, ErrNoDescription)
}

func TestPageScraper_Scrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Platform Engineer | Acme</title></head>
		<body><div class="job-description"><p>Run Kubernetes clusters.</p></div></body></html>`))
	}))
	defer server.Close()

	scraper := NewPageScraper(fetch.NewCachedFetcher(nil, nil))
	job, err := scraper.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer | Acme", job.Title)
	assert.Equal(t, "Run Kubernetes clusters.", job.Description)
	assert.Equal(t, server.URL, job.URL)
}

type fakeScraper struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    []string
	fail     map[string]bool
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (*ScrapedJob, error) {
	f.mu.Lock()
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.fail[url] {
		return nil, errors.New("site may be blocking requests")
	}
	return &ScrapedJob{URL: url, Title: "Job " + url}, nil
}

func urlList(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://www.indeed.com/viewjob?jk=%d", i)
	}
	return urls
}

func TestBatch_GroupsOfFive(t *testing.T) {
	urls := urlList(12)
	scraper := &fakeScraper{fail: map[string]bool{urls[3]: true, urls[11]: true}}

	var batches []int
	result := Batch(context.Background(), scraper, urls, BatchOptions{
		Size:  5,
		Delay: time.Millisecond,
		OnBatch: func(_ int, done int) {
			batches = append(batches, done)
		},
	})

	assert.Equal(t, []int{5, 10, 12}, batches)
	assert.LessOrEqual(t, scraper.peak, 5)
	assert.Len(t, scraper.calls, 12)

	var want, got []string
	for i, u := range urls {
		if i != 3 && i != 11 {
			want = append(want, u)
		}
	}
	for _, job := range result.Successful {
		got = append(got, job.URL)
	}
	assert.Equal(t, want, got)

	require.Len(t, result.Failed, 2)
	assert.Equal(t, urls[3], result.Failed[0].URL)
	assert.Equal(t, "site may be blocking requests", result.Failed[0].Message())
	assert.Equal(t, urls[11], result.Failed[1].URL)
}

func TestBatch_DelayOnlyBetweenBatches(t *testing.T) {
	delay := 40 * time.Millisecond

	start := time.Now()
	Batch(context.Background(), &fakeScraper{}, urlList(5), BatchOptions{Size: 5, Delay: delay})
	assert.Less(t, time.Since(start), delay)

	start = time.Now()
	Batch(context.Background(), &fakeScraper{}, urlList(6), BatchOptions{Size: 5, Delay: delay})
	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scraper := &fakeScraper{}

	result := Batch(ctx, scraper, urlList(7), BatchOptions{
		Size:    5,
		Delay:   time.Second,
		OnBatch: func(int, int) { cancel() },
	})

	assert.Len(t, scraper.calls, 5)
	assert.Len(t, result.Successful, 5)
	require.Len(t, result.Failed, 2)
	assert.ErrorIs(t, result.Failed[0].Err, context.Canceled)
}

type ctxScraper struct{ failing string }

func (c ctxScraper) Scrape(ctx context.Context, url string) (*ScrapedJob, error) {
	if url == c.failing {
		return nil, errors.New("site may be blocking requests")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(10 * time.Millisecond):
	}
	return &ScrapedJob{URL: url}, nil
}

func TestBatch_FailureDoesNotCancelSiblings(t *testing.T) {
	urls := urlList(5)
	result := Batch(context.Background(), ctxScraper{failing: urls[0]}, urls, BatchOptions{Size: 5})

	assert.Len(t, result.Successful, 4)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, urls[0], result.Failed[0].URL)
}

func TestBatch_Empty(t *testing.T) {
	result := Batch(context.Background(), &fakeScraper{}, nil, DefaultBatchOptions())
	assert.Empty(t, result.Successful)
	assert.Empty(t, result.Failed)
}
