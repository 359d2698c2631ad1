package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/bulk"
	"github.com/jonathan/career-portal/internal/observability"
	"github.com/jonathan/career-portal/internal/optimizer"
	"github.com/jonathan/career-portal/internal/scrape"
	"github.com/jonathan/career-portal/internal/server"
	"github.com/jonathan/career-portal/internal/types"
	"github.com/spf13/cobra"
)

var (
	importFile     string
	importOptimize bool
	importResume   string
	importNoCache  bool
	importJSON     bool
)

var importJobsCmd = &cobra.Command{
	Use:   "import-jobs [url...]",
	Short: "Scrape job postings and track them in the local store",
	Long: `Scrape job posting URLs in batches, track every posting as a saved job and
optionally tailor a resume to each one. URLs come from the arguments and --file.
Press Ctrl+C to stop; jobs tracked so far are kept.`,
	RunE: runImportJobs,
}

func init() {
	importJobsCmd.Flags().StringVarP(&importFile, "file", "f", "", "File with one URL per line (- for stdin)")
	importJobsCmd.Flags().BoolVar(&importOptimize, "optimize", false, "Tailor a resume to each imported job")
	importJobsCmd.Flags().StringVarP(&importResume, "resume", "r", "", "Resume to tailor (default: base_resume from --config)")
	importJobsCmd.Flags().BoolVar(&importNoCache, "no-cache", false, "Fetch every page even when a recent copy is cached")
	importJobsCmd.Flags().BoolVar(&importJSON, "json", false, "Print the outcome as JSON")
	rootCmd.AddCommand(importJobsCmd)
}

func runImportJobs(cmd *cobra.Command, args []string) error {
	urls, err := readURLs(args, importFile)
	if err != nil {
		return err
	}
	valid, unsupported := scrape.PartitionURLs(urls)
	for _, u := range unsupported {
		slog.Warn("skipping unsupported job URL", slog.String("url", u))
	}
	if len(valid) == 0 {
		return fmt.Errorf("no supported job URLs given")
	}

	req := bulk.Request{URLs: valid, OptimizeResumes: importOptimize}
	if importOptimize {
		base, err := loadBaseResume(firstNonEmpty(importResume, fileConfig.BaseResume))
		if err != nil {
			return err
		}
		req.BaseResume = base
	}

	scrapeCfg, err := scrapeConfig()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var scraper *scrape.PageScraper
	if importNoCache {
		scraper = server.NewScraper(*scrapeCfg, nil)
	} else {
		scraper = server.NewScraper(*scrapeCfg, store)
	}

	cfg := bulk.DefaultConfig()
	cfg.Batch.Size = scrapeCfg.BatchSize
	cfg.Batch.Delay = scrapeCfg.BatchDelay
	cfg.Optimize = optimizer.Options{MinKeywords: fileConfig.MinKeywords, MaxKeywords: fileConfig.MaxKeywords}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	proc := bulk.NewProcessor(scraper, store.ForUser(userID), cfg, printer.PrintImportProgress)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigChan:
			slog.Info("stopping import")
			proc.Stop()
		case <-done:
		}
	}()

	start := time.Now()
	outcome, err := proc.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	for _, u := range unsupported {
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("Unsupported job URL %s", u))
	}
	slog.Debug("import finished", slog.Duration("elapsed", time.Since(start)))

	if importJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintImportOutcome(outcome)
	return nil
}

// loadBaseResume reads the resume file that imports tailor.
func loadBaseResume(path string) (*types.BaseResume, error) {
	if path == "" {
		return nil, bulk.ErrNoBaseResume
	}
	text, err := readResume(path)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &types.BaseResume{
		ID:        uuid.New(),
		Name:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content:   text,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
