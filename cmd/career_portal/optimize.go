package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/observability"
	"github.com/jonathan/career-portal/internal/optimizer"
	"github.com/jonathan/career-portal/internal/server"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/spf13/cobra"
)

var (
	optimizeResume      string
	optimizeJob         string
	optimizeTitle       string
	optimizeCompany     string
	optimizeMinKeywords int
	optimizeMaxKeywords int
	optimizeOut         string
	optimizeJSON        bool
	optimizeSave        bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Tailor a resume to a job posting",
	Long: `Add the posting's missing keywords to a resume and score the result.
--job is either a file holding the job description or a posting URL to scrape.`,
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeResume, "resume", "r", "", "Resume file, text or PDF (default: base_resume from --config)")
	optimizeCmd.Flags().StringVarP(&optimizeJob, "job", "j", "", "Job description file or posting URL (required)")
	optimizeCmd.Flags().StringVar(&optimizeTitle, "title", "", "Job title (required unless --job is a URL)")
	optimizeCmd.Flags().StringVar(&optimizeCompany, "company", "", "Company name")
	optimizeCmd.Flags().IntVar(&optimizeMinKeywords, "min-keywords", 0, "Minimum keywords to add (default 6)")
	optimizeCmd.Flags().IntVar(&optimizeMaxKeywords, "max-keywords", 0, "Maximum keywords to add (default 10)")
	optimizeCmd.Flags().StringVarP(&optimizeOut, "out", "o", "", "Write the optimized resume text to this file")
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "Print the full result as JSON")
	optimizeCmd.Flags().BoolVar(&optimizeSave, "save", false, "Track the job and keep the optimized resume in the local store")

	_ = optimizeCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	resumePath := optimizeResume
	if resumePath == "" {
		resumePath = fileConfig.BaseResume
	}
	if resumePath == "" {
		return fmt.Errorf("--resume is required")
	}
	resumeText, err := readResume(resumePath)
	if err != nil {
		return err
	}

	job, err := loadJob(cmd.Context(), optimizeJob, optimizeTitle, optimizeCompany)
	if err != nil {
		return err
	}

	opts := optimizer.Options{
		MinKeywords: firstPositive(optimizeMinKeywords, fileConfig.MinKeywords),
		MaxKeywords: firstPositive(optimizeMaxKeywords, fileConfig.MaxKeywords),
	}
	result, err := optimizer.Optimize(resumeText, *job, opts)
	if err != nil {
		return err
	}

	if optimizeSave {
		if err := saveOptimization(cmd.Context(), job, result); err != nil {
			return err
		}
	}
	if optimizeOut != "" {
		if err := writeOutput(nil, optimizeOut, []byte(result.Resume.Content)); err != nil {
			return err
		}
	}

	if optimizeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintOptimization(result)
	if optimizeOut == "" {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", result.Resume.Content)
	}
	return err
}

// loadJob builds the job to optimize against from a description file or a
// scraped posting.
func loadJob(ctx context.Context, source, title, company string) (*types.Job, error) {
	now := time.Now().UTC()
	job := &types.Job{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Company:   strings.TrimSpace(company),
		Status:    types.StatusSaved,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if isURL(source) {
		scrapeCfg, err := scrapeConfig()
		if err != nil {
			return nil, err
		}
		scraped, err := server.NewScraper(*scrapeCfg, nil).Scrape(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to scrape %s: %w", source, err)
		}
		observability.NewPrinter(os.Stderr).PrintScrapedJob(scraped)
		job.URL = scraped.URL
		job.Description = scraped.Description
		job.Location = scraped.Location
		job.Salary = scraped.Salary
		if job.Title == "" {
			job.Title = scraped.Title
		}
		if job.Company == "" {
			job.Company = scraped.Company
		}
		return job, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read job description: %w", err)
	}
	if job.Title == "" {
		return nil, errors.New("--title is required when --job is a file")
	}
	job.Description = string(data)
	return job, nil
}

// saveOptimization tracks job in the local store and keeps the optimized
// resume with it. A job that is already tracked gets the new resume.
func saveOptimization(ctx context.Context, job *types.Job, result *optimizer.Result) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	users := store.ForUser(userID)

	job.Timeline = []types.TimelineEntry{{Status: job.Status, Date: job.CreatedAt, Note: "Job added"}}
	if err := users.CreateJob(ctx, job); err != nil {
		var dup *tracker.DuplicateError
		if !errors.As(err, &dup) {
			return fmt.Errorf("failed to track job: %w", err)
		}
		job = dup.Result.Existing
		result.Resume.JobID = job.ID
	}
	if err := users.SaveOptimizedResume(ctx, &result.Resume); err != nil {
		return fmt.Errorf("failed to save optimized resume: %w", err)
	}

	score := result.Resume.MatchScore
	job.ResumeID = &result.Resume.ID
	job.MatchScore = &score
	if err := users.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to link optimized resume: %w", err)
	}
	return nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
