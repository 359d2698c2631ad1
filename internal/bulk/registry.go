package bulk

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/scrape"
	"github.com/jonathan/career-portal/internal/types"
)

// ErrImportNotFound is returned for unknown or foreign import IDs.
var ErrImportNotFound = errors.New("import not found")

// subscriberBuffer is the per-subscriber progress backlog. Snapshots are
// dropped for slow readers; the final state is always available from
// Progress once the channel closes.
const subscriberBuffer = 16

// Import is a bulk import running in the background.
type Import struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	StartedAt time.Time `json:"started_at"`

	proc *Processor
	done chan struct{}

	mu       sync.Mutex
	outcome  *Outcome
	err      error
	finished time.Time
	subs     map[chan types.ImportProgress]struct{}
}

// Progress returns the latest snapshot.
func (i *Import) Progress() types.ImportProgress { return i.proc.Progress() }

// Pause, Resume and Stop control the underlying processor.
func (i *Import) Pause()  { i.proc.Pause() }
func (i *Import) Resume() { i.proc.Resume() }
func (i *Import) Stop()   { i.proc.Stop() }

// Done is closed when the import finishes.
func (i *Import) Done() <-chan struct{} { return i.done }

// Outcome returns the result once Done is closed, nil before.
func (i *Import) Outcome() (*Outcome, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.outcome, i.err
}

// Subscribe returns a channel of progress snapshots and a function that
// releases it. The channel is closed when the import finishes.
func (i *Import) Subscribe() (<-chan types.ImportProgress, func()) {
	ch := make(chan types.ImportProgress, subscriberBuffer)
	i.mu.Lock()
	if i.subs == nil {
		close(ch)
		i.mu.Unlock()
		return ch, func() {}
	}
	i.subs[ch] = struct{}{}
	i.mu.Unlock()

	return ch, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		if _, ok := i.subs[ch]; ok {
			delete(i.subs, ch)
			close(ch)
		}
	}
}

func (i *Import) publish(p types.ImportProgress) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for ch := range i.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

func (i *Import) finish(out *Outcome, err error) {
	i.mu.Lock()
	i.outcome, i.err = out, err
	i.finished = time.Now()
	for ch := range i.subs {
		close(ch)
	}
	i.subs = nil
	i.mu.Unlock()
	close(i.done)
}

// Registry owns the imports started through it.
type Registry struct {
	scraper scrape.Scraper
	sink    JobSink
	cfg     Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	imports map[uuid.UUID]*Import
}

// NewRegistry returns a registry whose imports share scraper, sink and cfg.
func NewRegistry(scraper scrape.Scraper, sink JobSink, cfg Config) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		scraper: scraper,
		sink:    sink,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		imports: make(map[uuid.UUID]*Import),
	}
}

// Start validates req and runs it in the background. The import outlives the
// caller's request; it ends on Stop or Shutdown.
func (r *Registry) Start(req Request) (*Import, error) {
	if req.OptimizeResumes && req.BaseResume == nil {
		return nil, ErrNoBaseResume
	}

	imp := &Import{
		ID:        uuid.New(),
		UserID:    req.UserID,
		StartedAt: time.Now(),
		done:      make(chan struct{}),
		subs:      make(map[chan types.ImportProgress]struct{}),
	}
	imp.proc = NewProcessor(r.scraper, r.sink, r.cfg, imp.publish)

	r.mu.Lock()
	r.imports[imp.ID] = imp
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		out, err := imp.proc.Run(r.ctx, req)
		if err != nil {
			slog.Error("bulk import failed", slog.String("import_id", imp.ID.String()), slog.Any("error", err))
		}
		imp.finish(out, err)
	}()

	slog.Info("bulk import started",
		slog.String("import_id", imp.ID.String()),
		slog.String("user_id", req.UserID.String()),
		slog.Int("urls", len(req.URLs)))
	return imp, nil
}

// Get returns the import with id if it belongs to userID.
func (r *Registry) Get(id, userID uuid.UUID) (*Import, error) {
	r.mu.RLock()
	imp, ok := r.imports[id]
	r.mu.RUnlock()
	if !ok || imp.UserID != userID {
		return nil, ErrImportNotFound
	}
	return imp, nil
}

// List returns userID's imports, oldest first.
func (r *Registry) List(userID uuid.UUID) []*Import {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Import
	for _, imp := range r.imports {
		if imp.UserID == userID {
			out = append(out, imp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Prune forgets imports that finished more than maxAge ago and returns how
// many were removed.
func (r *Registry) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, imp := range r.imports {
		imp.mu.Lock()
		finished := imp.finished
		imp.mu.Unlock()
		if !finished.IsZero() && finished.Before(cutoff) {
			delete(r.imports, id)
			removed++
		}
	}
	return removed
}

// Shutdown stops every running import and waits for them to finish or for
// ctx to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.RLock()
	for _, imp := range r.imports {
		imp.Stop()
	}
	r.mu.RUnlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
