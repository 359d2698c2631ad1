package scrape

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Batch defaults.
const (
	DefaultBatchSize  = 5
	DefaultBatchDelay = 2 * time.Second
)

// BatchOptions controls how Batch groups requests.
type BatchOptions struct {
	// Size is the number of URLs scraped concurrently.
	Size int
	// Delay is waited between batches, never after the last one.
	Delay time.Duration
	// OnBatch, if set, is called after each batch with the batch index and
	// the number of URLs handled so far.
	OnBatch func(batch, done int)
}

// DefaultBatchOptions returns batches of five with a two second gap.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{Size: DefaultBatchSize, Delay: DefaultBatchDelay}
}

// Failure records a URL that could not be scraped.
type Failure struct {
	URL string `json:"url"`
	Err error  `json:"-"`
}

// Message returns the failure text.
func (f Failure) Message() string {
	if f.Err == nil {
		return "unknown error"
	}
	return f.Err.Error()
}

// BatchResult holds the outcome of a Batch call. Both slices keep input
// order.
type BatchResult struct {
	Successful []*ScrapedJob
	Failed     []Failure
}

// Batch scrapes urls in groups of opts.Size, running each group
// concurrently. A failing URL never aborts its siblings. Cancelling ctx stops
// further batches and marks the remaining URLs failed.
func Batch(ctx context.Context, scraper Scraper, urls []string, opts BatchOptions) BatchResult {
	if opts.Size <= 0 {
		opts.Size = DefaultBatchSize
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}

	jobs := make([]*ScrapedJob, len(urls))
	errs := make([]error, len(urls))

	batch := 0
	for start := 0; start < len(urls); start += opts.Size {
		end := min(start+opts.Size, len(urls))

		if err := ctx.Err(); err != nil {
			for i := start; i < len(urls); i++ {
				errs[i] = err
			}
			break
		}

		// Failures are recorded per URL and never returned, so one bad
		// posting does not cancel the rest of its batch.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Size)
		for i := start; i < end; i++ {
			g.Go(func() error {
				job, err := scraper.Scrape(gctx, urls[i])
				if err != nil {
					errs[i] = err
					return nil
				}
				jobs[i] = job
				return nil
			})
		}
		_ = g.Wait()

		slog.Debug("scrape batch finished",
			slog.Int("batch", batch),
			slog.Int("done", end),
			slog.Int("total", len(urls)))
		if opts.OnBatch != nil {
			opts.OnBatch(batch, end)
		}
		batch++

		if end < len(urls) && opts.Delay > 0 {
			timer := time.NewTimer(opts.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	var result BatchResult
	for i, u := range urls {
		switch {
		case errs[i] != nil:
			result.Failed = append(result.Failed, Failure{URL: u, Err: errs[i]})
		case jobs[i] != nil:
			result.Successful = append(result.Successful, jobs[i])
		}
	}
	return result
}
