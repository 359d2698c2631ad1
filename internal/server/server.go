package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/bulk"
	"github.com/jonathan/career-portal/internal/config"
	"github.com/jonathan/career-portal/internal/db"
	"github.com/jonathan/career-portal/internal/fetch"
	"github.com/jonathan/career-portal/internal/optimizer"
	"github.com/jonathan/career-portal/internal/scrape"
	"github.com/jonathan/career-portal/internal/server/middleware"
	"github.com/jonathan/career-portal/internal/server/ratelimit"
	"github.com/jonathan/career-portal/internal/types"
)

const (
	// importRetention is how long finished imports stay queryable.
	importRetention = time.Hour
	pruneInterval   = 10 * time.Minute
)

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	handler         http.Handler
	db              *db.DB
	pinger          Pinger
	rateLimiter     *ratelimit.Limiter
	registry        *bulk.Registry
	validator       *validator.Validate
	allowedOrigins  []string
	shutdownTimeout time.Duration

	users       *UserService
	tokens      *JWTService
	jobs        *JobService
	resumes     *ResumeService
	imports     *ImportService
}

// Config holds server configuration
type Config struct {
	Port            int
	DatabaseURL     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	Scrape          config.ScrapeConfig
	// PageCache, when set, serves recently scraped postings without a fetch.
	PageCache fetch.PageCache
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of a Server. New fills them from Config; tests
// pass fakes to NewWithDeps.
type Deps struct {
	Users          UserStore
	Jobs           JobStore
	Resumes        ResumeStore
	Pinger         Pinger
	Scraper        scrape.Scraper
	JWT            *config.JWTConfig
	Password       *config.PasswordConfig
	RateLimit      *ratelimit.Config
	Bulk           bulk.Config
	Optimize       optimizer.Options
	AllowedOrigins []string
}

// storeSink lets bulk imports write through the server's stores.
type storeSink struct {
	JobStore
	ResumeStore
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	bulkConfig := bulk.DefaultConfig()
	if cfg.Scrape.BatchSize > 0 {
		bulkConfig.Batch.Size = cfg.Scrape.BatchSize
		bulkConfig.Batch.Delay = cfg.Scrape.BatchDelay
	}

	s := NewWithDeps(Deps{
		Users:          database,
		Jobs:           database,
		Resumes:        database,
		Pinger:         database,
		Scraper:        NewScraper(cfg.Scrape, cfg.PageCache),
		JWT:            jwtConfig,
		Password:       passwordConfig,
		RateLimit:      ratelimit.LoadConfig(),
		Bulk:           bulkConfig,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	s.db = database
	if cfg.ShutdownTimeout > 0 {
		s.shutdownTimeout = cfg.ShutdownTimeout
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // import progress streams stay open
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// NewScraper builds the posting scraper used by bulk imports: HTTP fetches
// paced at cfg.Rate, optionally rendered in headless Chrome, cached in cache
// when it is non-nil.
func NewScraper(cfg config.ScrapeConfig, cache fetch.PageCache) *scrape.PageScraper {
	fetchConfig := fetch.DefaultCachedFetcherConfig()
	if cfg.Rate > 0 {
		fetchConfig.Options.Limiter = fetch.NewPacer(time.Duration(float64(time.Second)/cfg.Rate), 1)
	}
	if cfg.UseBrowser {
		fetchConfig.Render = fetch.BrowserRenderer(fetch.DefaultBrowserTimeout)
	}
	return scrape.NewPageScraper(fetch.NewCachedFetcher(cache, fetchConfig))
}

// NewWithDeps assembles a server and its routes from deps.
func NewWithDeps(deps Deps) *Server {
	jobs := NewJobService(deps.Jobs)
	resumes := NewResumeService(deps.Resumes, jobs, deps.Optimize)
	registry := bulk.NewRegistry(deps.Scraper, storeSink{deps.Jobs, deps.Resumes}, deps.Bulk)
	jwtService := NewJWTService(deps.JWT)

	s := &Server{
		pinger:          deps.Pinger,
		rateLimiter:     ratelimit.NewLimiter(deps.RateLimit),
		registry:        registry,
		validator:       validator.New(),
		allowedOrigins:  deps.AllowedOrigins,
		shutdownTimeout: 30 * time.Second,
		users:           NewUserService(deps.Users, deps.Password),
		tokens:          jwtService,
		jobs:            jobs,
		resumes:         resumes,
		imports:         NewImportService(registry, resumes),
	}

	auth := middleware.AuthMiddleware(jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth endpoints
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("GET /auth/me", protected(s.handleMe))
	mux.Handle("PUT /auth/password", protected(s.handleUpdatePassword))

	// Job endpoints
	mux.Handle("GET /jobs", protected(s.handleListJobs))
	mux.Handle("POST /jobs", protected(s.handleCreateJob))
	mux.Handle("GET /jobs/stats", protected(s.handleJobStats))
	mux.Handle("GET /jobs/{id}", protected(s.handleGetJob))
	mux.Handle("PUT /jobs/{id}", protected(s.handleUpdateJob))
	mux.Handle("PUT /jobs/{id}/status", protected(s.handleUpdateJobStatus))
	mux.Handle("DELETE /jobs/{id}", protected(s.handleDeleteJob))

	// Optimization endpoints
	mux.Handle("POST /jobs/{id}/optimize", protected(s.handleOptimize))
	mux.Handle("GET /jobs/{id}/optimized", protected(s.handleGetOptimized))
	mux.Handle("DELETE /jobs/{id}/optimized", protected(s.handleDeleteOptimized))
	mux.Handle("GET /resumes/optimized", protected(s.handleListOptimized))

	// Base resume endpoints
	mux.Handle("GET /resumes/base", protected(s.handleListBaseResumes))
	mux.Handle("POST /resumes/base", protected(s.handleCreateBaseResume))
	mux.Handle("GET /resumes/base/{id}", protected(s.handleGetBaseResume))
	mux.Handle("PUT /resumes/base/{id}", protected(s.handleUpdateBaseResume))
	mux.Handle("DELETE /resumes/base/{id}", protected(s.handleDeleteBaseResume))
	mux.Handle("POST /resumes/extract", protected(s.handleExtractResume))

	// Bulk import endpoints
	mux.Handle("POST /imports", protected(s.handleStartImport))
	mux.Handle("GET /imports", protected(s.handleListImports))
	mux.Handle("GET /imports/{id}", protected(s.handleGetImport))
	mux.Handle("GET /imports/{id}/stream", protected(s.handleImportStream))
	mux.Handle("POST /imports/{id}/{action}", protected(s.handleControlImport))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	pruneStop := make(chan struct{})
	go s.pruneImports(pruneStop)

	select {
	case <-stop:
	case err := <-errCh:
		close(pruneStop)
		s.close()
		return fmt.Errorf("server error: %w", err)
	}
	close(pruneStop)
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.close()
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := s.registry.Shutdown(ctx); err != nil {
		slog.Warn("imports did not stop in time", slog.Any("error", err))
	}

	s.close()
	slog.Info("server stopped")
	return nil
}

func (s *Server) close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Server) pruneImports(stop <-chan struct{}) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := s.registry.Prune(importRetention); n > 0 {
				slog.Debug("pruned finished imports", slog.Int("count", n))
			}
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	if len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(s.allowedOrigins, origin) {
		return origin
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging. It keeps
// http.Flusher so event streams work through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", slog.Any("error", err))
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail maps err to a status code. Internal errors are logged and hidden from
// the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		s.errorResponse(w, status, "internal server error")
		return
	}

	var dup *ErrDuplicateJob
	if errors.As(err, &dup) {
		s.jsonResponse(w, status, map[string]any{"error": err.Error(), "existing": dup.Result.Existing})
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decode reads a JSON body into dst and runs struct validation.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, describeValidation(err))
		return false
	}
	return true
}

// session returns the caller's session. The auth middleware guarantees one on
// protected routes.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*types.Session, bool) {
	session, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return session, true
}

// pathID parses the {id} path value.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is ignored since it can be spoofed without a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := max(1, int(info.RetryAfter.Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	slog.Warn("rate limit exceeded",
		slog.String("component", "rate-limit"),
		slog.String("client", s.extractClientID(r)),
		slog.String("path", r.URL.Path),
		slog.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
