// Package scrape turns job posting URLs into structured job data. Pages are
// fetched through the fetch package and read with goquery; JSON-LD
// JobPosting metadata is preferred when a board publishes it.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-portal/internal/fetch"
)

// ErrNoDescription is returned when a page yields no posting text.
var ErrNoDescription = errors.New("no job description found on page")

// ScrapedJob is the data pulled from a posting page.
type ScrapedJob struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	Location     string   `json:"location,omitempty"`
	Salary       string   `json:"salary,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// Scraper fetches and parses a single posting.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*ScrapedJob, error)
}

// PageFetcher is the subset of fetch.CachedFetcher used by PageScraper.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.CachedResult, error)
}

// PageScraper scrapes postings over HTTP.
type PageScraper struct {
	fetcher PageFetcher
}

// NewPageScraper returns a scraper backed by fetcher.
func NewPageScraper(fetcher PageFetcher) *PageScraper {
	return &PageScraper{fetcher: fetcher}
}

// Scrape implements Scraper.
func (s *PageScraper) Scrape(ctx context.Context, rawURL string) (*ScrapedJob, error) {
	result, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return ParsePage(rawURL, result.HTML, result.Text)
}

// ParsePage builds a ScrapedJob from a fetched page. text is the extracted
// description; JSON-LD metadata fills in anything the markup lacks.
func ParsePage(rawURL, html, text string) (*ScrapedJob, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	job := &ScrapedJob{URL: rawURL}
	if posting, ok := findJobPosting(doc); ok {
		job.Title = posting.Title
		job.Company = posting.HiringOrganization.Name
		job.Location = posting.location()
		job.Salary = posting.salary()
		if text == "" {
			text = htmlToText(posting.Description)
		}
	}

	if job.Title == "" {
		job.Title = firstNonEmpty(
			metaContent(doc, "og:title"),
			strings.TrimSpace(doc.Find("h1").First().Text()),
			strings.TrimSpace(doc.Find("title").First().Text()),
		)
	}
	if job.Company == "" {
		job.Company = firstNonEmpty(
			metaContent(doc, "og:site_name"),
			strings.TrimSpace(doc.Find(".company-name, [data-company], .topcard__org-name-link").First().Text()),
			hostCompany(rawURL),
		)
	}

	job.Description = strings.TrimSpace(text)
	if job.Description == "" {
		return nil, ErrNoDescription
	}
	if job.Title == "" {
		job.Title = "Untitled Position"
	}
	job.Requirements = ExtractRequirements(job.Description)
	return job, nil
}

// jobPosting is the schema.org JobPosting subset boards commonly publish.
type jobPosting struct {
	Type               any    `json:"@type"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
	JobLocation json.RawMessage `json:"jobLocation"`
	BaseSalary  *struct {
		Currency string `json:"currency"`
		Value    struct {
			MinValue float64 `json:"minValue"`
			MaxValue float64 `json:"maxValue"`
			Value    float64 `json:"value"`
			UnitText string  `json:"unitText"`
		} `json:"value"`
	} `json:"baseSalary"`
}

type postalLocation struct {
	Address struct {
		Locality string `json:"addressLocality"`
		Region   string `json:"addressRegion"`
		Country  any    `json:"addressCountry"`
	} `json:"address"`
}

func (p jobPosting) isJobPosting() bool {
	switch t := p.Type.(type) {
	case string:
		return t == "JobPosting"
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func (p jobPosting) location() string {
	if len(p.JobLocation) == 0 {
		return ""
	}
	var locs []postalLocation
	if err := json.Unmarshal(p.JobLocation, &locs); err != nil {
		var single postalLocation
		if err := json.Unmarshal(p.JobLocation, &single); err != nil {
			return ""
		}
		locs = []postalLocation{single}
	}
	if len(locs) == 0 {
		return ""
	}
	addr := locs[0].Address
	var parts []string
	for _, s := range []string{addr.Locality, addr.Region} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func (p jobPosting) salary() string {
	if p.BaseSalary == nil {
		return ""
	}
	v := p.BaseSalary.Value
	symbol := p.BaseSalary.Currency + " "
	if p.BaseSalary.Currency == "USD" || p.BaseSalary.Currency == "" {
		symbol = "$"
	}
	switch {
	case v.MinValue > 0 && v.MaxValue > 0:
		return fmt.Sprintf("%s%s - %s%s", symbol, thousands(v.MinValue), symbol, thousands(v.MaxValue))
	case v.Value > 0:
		return symbol + thousands(v.Value)
	default:
		return ""
	}
}

func findJobPosting(doc *goquery.Document) (jobPosting, bool) {
	var found jobPosting
	ok := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := []byte(strings.TrimSpace(s.Text()))
		var single jobPosting
		if err := json.Unmarshal(raw, &single); err == nil && single.isJobPosting() {
			found, ok = single, true
			return false
		}
		var many []jobPosting
		if err := json.Unmarshal(raw, &many); err == nil {
			for _, p := range many {
				if p.isJobPosting() {
					found, ok = p, true
					return false
				}
			}
		}
		return true
	})
	return found, ok
}

func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, property, property)).First()
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}

func htmlToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	text, err := fetch.ExtractMainText("<html><body>"+fragment+"</body></html>", nil)
	if err != nil {
		return ""
	}
	return text
}

// hostCompany guesses a company from the second-level domain, e.g.
// careers.acme.com -> Acme.
func hostCompany(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(u.Hostname(), ".")
	if len(parts) < 2 {
		return ""
	}
	name := parts[len(parts)-2]
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func thousands(v float64) string {
	n := int64(v)
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
