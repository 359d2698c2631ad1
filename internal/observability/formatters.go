// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-portal/internal/bulk"
	"github.com/jonathan/career-portal/internal/optimizer"
	"github.com/jonathan/career-portal/internal/resumetext"
	"github.com/jonathan/career-portal/internal/scrape"
	"github.com/jonathan/career-portal/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted CLI output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList appends up to maxItemsToShow items under a heading.
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintScrapedJob outputs the fields pulled from a posting page.
func (p *Printer) PrintScrapedJob(job *scrape.ScrapedJob) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", job.Location))
	}
	if job.Salary != "" {
		sb.WriteString(fmt.Sprintf("Salary:   %s\n", job.Salary))
	}
	sb.WriteString(fmt.Sprintf("Length:   %d characters\n", len(job.Description)))
	if len(job.Requirements) > 0 {
		sb.WriteString("\n")
		writeList(&sb, "Requirements", job.Requirements)
	}

	p.printBox("SCRAPED JOB", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOptimization outputs the score, the keywords added and the
// suggestions of an optimization.
func (p *Printer) PrintOptimization(result *optimizer.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:       %s at %s\n", result.Resume.JobTitle, result.Resume.CompanyName))
	sb.WriteString(fmt.Sprintf("ATS Score: %d%%\n", result.ATSScore))
	sb.WriteString(fmt.Sprintf("Matched:   %d of %d job keywords\n",
		result.Analysis.MatchedKeywords, result.Analysis.TotalJobKeywords))
	sb.WriteString("\n")

	if len(result.AddedKeywords) == 0 {
		sb.WriteString("No keywords added\n")
	} else {
		sb.WriteString(fmt.Sprintf("Added Keywords: %s\n", strings.Join(result.AddedKeywords, ", ")))
	}
	if len(result.Resume.Suggestions) > 0 {
		sb.WriteString("\n")
		writeList(&sb, "Suggestions", result.Resume.Suggestions)
	}

	p.printBox("RESUME OPTIMIZATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintParsedResume outputs the contact details and sections found in a
// resume.
func (p *Printer) PrintParsedResume(parsed *resumetext.Parsed) {
	if parsed == nil {
		return
	}

	var sb strings.Builder
	c := parsed.Contact
	for _, field := range [][2]string{
		{"Name", c.Name}, {"Email", c.Email}, {"Phone", c.Phone}, {"LinkedIn", c.LinkedIn}, {"GitHub", c.GitHub},
	} {
		if field[1] != "" {
			sb.WriteString(fmt.Sprintf("%-9s %s\n", field[0]+":", field[1]))
		}
	}
	sb.WriteString("\n")
	writeList(&sb, "Skills", parsed.Skills)
	writeList(&sb, "Experience", parsed.Experience)
	writeList(&sb, "Education", parsed.Education)

	p.printBox("PARSED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintImportProgress writes a one-line progress update.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintImportProgress(progress types.ImportProgress) {
	fmt.Fprintf(p.out, "[%s] %d/%d processed, %d pending, %d errors\n",
		progress.Status, progress.Processed, progress.Total, progress.Pending, progress.Errors)
}

// PrintImportOutcome outputs the jobs a finished import tracked and the URLs
// that failed.
func (p *Printer) PrintImportOutcome(out *bulk.Outcome) {
	if out == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:   %s\n", out.Progress.Status))
	sb.WriteString(fmt.Sprintf("Tracked:  %d jobs\n", len(out.Jobs)))
	sb.WriteString(fmt.Sprintf("Resumes:  %d optimized\n", len(out.Resumes)))
	sb.WriteString(fmt.Sprintf("Errors:   %d\n", len(out.Errors)))

	titles := make([]string, 0, len(out.Jobs))
	for _, job := range out.Jobs {
		titles = append(titles, fmt.Sprintf("%s at %s", job.Title, job.Company))
	}
	if len(titles) > 0 || len(out.Errors) > 0 {
		sb.WriteString("\n")
	}
	writeList(&sb, "Jobs", titles)
	writeList(&sb, "Failures", out.Errors)

	p.printBox("BULK IMPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobs lists tracked jobs with their IDs.
func (p *Printer) PrintJobs(jobs []types.Job) {
	if len(jobs) == 0 {
		p.printBox("TRACKED JOBS", "No jobs tracked")
		return
	}

	var sb strings.Builder
	for i, job := range jobs {
		line := fmt.Sprintf("%-12s %s at %s", job.Status, job.Title, job.Company)
		if job.MatchScore != nil {
			line += fmt.Sprintf(" (%d%%)", *job.MatchScore)
		}
		sb.WriteString(line + "\n")
		sb.WriteString(fmt.Sprintf("  %s", job.ID))
		if i < len(jobs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("TRACKED JOBS (%d)", len(jobs)), sb.String())
}

// PrintStats outputs the per-status job counts.
func (p *Printer) PrintStats(stats types.DashboardStats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:        %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Saved:        %d\n", stats.Saved))
	sb.WriteString(fmt.Sprintf("Applied:      %d\n", stats.Applied))
	sb.WriteString(fmt.Sprintf("Interviewing: %d\n", stats.Interviewing))
	sb.WriteString(fmt.Sprintf("Offer:        %d\n", stats.Offer))
	sb.WriteString(fmt.Sprintf("Rejected:     %d", stats.Rejected))

	p.printBox("DASHBOARD", sb.String())
}
