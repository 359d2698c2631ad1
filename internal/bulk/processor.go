// Package bulk imports many job postings at once: it scrapes the URLs in
// batches, tracks each posting as a saved job and optionally tailors a base
// resume to every one of them. Imports can be paused, resumed and stopped
// while they run.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/optimizer"
	"github.com/jonathan/career-portal/internal/scrape"
	"github.com/jonathan/career-portal/internal/tracker"
	"github.com/jonathan/career-portal/internal/types"
)

// Defaults for Config.
const (
	DefaultPollInterval = time.Second
	DefaultJobDelay     = 500 * time.Millisecond
)

// ErrNoBaseResume is returned when optimization is requested without a base
// resume.
var ErrNoBaseResume = errors.New("a base resume is required to optimize resumes")

// JobSink persists what an import produces.
type JobSink interface {
	CreateJob(ctx context.Context, job *types.Job) error
	SaveOptimizedResume(ctx context.Context, resume *types.OptimizedResume) error
}

// Config tunes a Processor.
type Config struct {
	Batch scrape.BatchOptions
	// PollInterval is how often a paused import checks whether it may go on.
	PollInterval time.Duration
	// JobDelay is waited after each processed job.
	JobDelay time.Duration
	Optimize optimizer.Options
}

// DefaultConfig returns the standard pacing: batches of five, two seconds
// between batches, half a second between jobs.
func DefaultConfig() Config {
	return Config{
		Batch:        scrape.DefaultBatchOptions(),
		PollInterval: DefaultPollInterval,
		JobDelay:     DefaultJobDelay,
	}
}

// Request describes one import.
type Request struct {
	UserID          uuid.UUID
	URLs            []string
	OptimizeResumes bool
	BaseResume      *types.BaseResume
}

// Outcome is what a finished import produced.
type Outcome struct {
	Jobs     []types.Job             `json:"jobs"`
	Resumes  []types.OptimizedResume `json:"resumes"`
	Errors   []string                `json:"errors"`
	Progress types.ImportProgress    `json:"progress"`
}

// Processor runs a single import.
type Processor struct {
	scraper    scrape.Scraper
	sink       JobSink
	cfg        Config
	onProgress func(types.ImportProgress)
	now        func() time.Time

	paused  atomic.Bool
	stopped atomic.Bool

	mu       sync.Mutex
	progress types.ImportProgress
	cancel   context.CancelFunc
}

// NewProcessor returns a processor. onProgress may be nil; it is called
// synchronously from the import goroutine.
func NewProcessor(scraper scrape.Scraper, sink JobSink, cfg Config, onProgress func(types.ImportProgress)) *Processor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.JobDelay < 0 {
		cfg.JobDelay = 0
	}
	if onProgress == nil {
		onProgress = func(types.ImportProgress) {}
	}
	return &Processor{
		scraper:    scraper,
		sink:       sink,
		cfg:        cfg,
		onProgress: onProgress,
		now:        time.Now,
	}
}

// Pause holds the import before its next job.
func (p *Processor) Pause() {
	if p.stopped.Load() {
		return
	}
	p.paused.Store(true)
	p.setStatus(types.ImportPaused)
}

// Resume lets a paused import continue.
func (p *Processor) Resume() {
	if p.stopped.Load() {
		return
	}
	p.paused.Store(false)
	p.setStatus(types.ImportProcessing)
}

// Stop ends the import before its next job. Scraping still in progress and
// any pause or delay are cut short; a job already being saved completes.
func (p *Processor) Stop() {
	p.stopped.Store(true)
	p.paused.Store(false)
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Progress returns the current snapshot.
func (p *Processor) Progress() types.ImportProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// Run scrapes req.URLs and processes every posting that could be scraped.
// Per-URL and per-job failures are collected in Outcome.Errors; only an
// invalid request returns an error.
func (p *Processor) Run(ctx context.Context, req Request) (*Outcome, error) {
	if req.OptimizeResumes && req.BaseResume == nil {
		return nil, ErrNoBaseResume
	}

	// stopCtx is canceled by Stop; job writes use ctx so they are never torn.
	stopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.mu.Lock()
	p.cancel = cancel
	p.progress = types.ImportProgress{
		Total:   len(req.URLs),
		Pending: len(req.URLs),
		Status:  types.ImportProcessing,
	}
	if p.paused.Load() {
		p.progress.Status = types.ImportPaused
	}
	p.mu.Unlock()
	if p.stopped.Load() {
		cancel()
	}
	p.emit()

	out := &Outcome{}
	scraped := scrape.Batch(stopCtx, p.scraper, req.URLs, p.cfg.Batch)
	for _, f := range scraped.Failed {
		if p.stopped.Load() && errors.Is(f.Err, context.Canceled) {
			continue
		}
		out.Errors = append(out.Errors, fmt.Sprintf("Failed to scrape %s: %s", f.URL, f.Message()))
		p.update(func(pr *types.ImportProgress) { pr.Errors++ })
	}
	if len(scraped.Failed) > 0 {
		p.emit()
	}

	for _, s := range scraped.Successful {
		if p.stopped.Load() || ctx.Err() != nil {
			break
		}
		p.waitWhilePaused(stopCtx)
		if p.stopped.Load() || ctx.Err() != nil {
			break
		}

		if err := p.processOne(ctx, req, s, out); err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Error processing job %s: %v", s.Title, err))
			p.update(func(pr *types.ImportProgress) { pr.Errors++ })
			p.emit()
			continue
		}
		p.update(func(pr *types.ImportProgress) { pr.Processed++ })
		p.emit()
		sleep(stopCtx, p.cfg.JobDelay)
	}

	final := types.ImportCompleted
	if p.stopped.Load() || ctx.Err() != nil {
		final = types.ImportStopped
	}
	p.setStatus(final)
	p.emit()
	out.Progress = p.Progress()

	slog.Info("bulk import finished",
		slog.String("user_id", req.UserID.String()),
		slog.Int("total", out.Progress.Total),
		slog.Int("processed", out.Progress.Processed),
		slog.Int("errors", out.Progress.Errors),
		slog.String("status", string(final)))
	return out, nil
}

func (p *Processor) processOne(ctx context.Context, req Request, s *scrape.ScrapedJob, out *Outcome) error {
	now := p.now()
	job := types.Job{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Title:       s.Title,
		Company:     s.Company,
		Description: s.Description,
		URL:         s.URL,
		Location:    s.Location,
		Salary:      s.Salary,
		CreatedAt:   now,
	}
	tracker.ApplyStatus(&job, types.StatusSaved, "Imported from "+s.URL, now)

	// a posting too short to optimize is still tracked
	var resume *types.OptimizedResume
	if req.OptimizeResumes {
		opts := p.cfg.Optimize
		opts.Now = p.now
		result, err := optimizer.Optimize(req.BaseResume.Content, job, opts)
		if err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Skipped resume optimization for %s at %s: %v", job.Title, job.Company, err))
		} else {
			resume = &result.Resume
			score := result.ATSScore
			job.ResumeID = &resume.ID
			job.MatchScore = &score
		}
	}

	if err := p.sink.CreateJob(ctx, &job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	out.Jobs = append(out.Jobs, job)

	if resume != nil {
		if err := p.sink.SaveOptimizedResume(ctx, resume); err != nil {
			return fmt.Errorf("save optimized resume: %w", err)
		}
		out.Resumes = append(out.Resumes, *resume)
	}
	return nil
}

func (p *Processor) waitWhilePaused(ctx context.Context) {
	for p.paused.Load() && !p.stopped.Load() {
		if !sleep(ctx, p.cfg.PollInterval) {
			return
		}
	}
}

func (p *Processor) update(fn func(*types.ImportProgress)) {
	p.mu.Lock()
	fn(&p.progress)
	p.progress.Pending = max(0, p.progress.Total-p.progress.Processed-p.progress.Errors)
	p.mu.Unlock()
}

func (p *Processor) setStatus(status types.ImportStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// terminal states are final
	if p.progress.Status == types.ImportCompleted || p.progress.Status == types.ImportStopped {
		return
	}
	if p.progress.Status == "" && status == types.ImportPaused {
		return
	}
	p.progress.Status = status
}

func (p *Processor) emit() {
	p.onProgress(p.Progress())
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
