package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultPageCacheTTL is how long a fetched posting is served from cache.
const DefaultPageCacheTTL = 24 * time.Hour

// Page is a fetched posting as stored in a PageCache.
type Page struct {
	URL        string
	HTML       string
	Text       string
	StatusCode int
	FetchedAt  time.Time
}

// PageCache stores fetched pages keyed by URL.
type PageCache interface {
	// GetPage returns the page for url if it was fetched within maxAge, or
	// nil when there is no fresh entry.
	GetPage(ctx context.Context, url string, maxAge time.Duration) (*Page, error)
	PutPage(ctx context.Context, page *Page) error
	DeletePage(ctx context.Context, url string) error
}

// CachedFetcher fetches posting text, serving recent pages from a cache and
// falling back to a headless browser for client-rendered boards.
type CachedFetcher struct {
	cache    PageCache
	options  *Options
	cacheTTL time.Duration
	render   RenderFunc
	now      func() time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL time.Duration
	Options  *Options
	// Render is used when the HTTP response carries too little text. Nil
	// disables the browser fallback.
	Render RenderFunc
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL: DefaultPageCacheTTL,
		Options:  DefaultOptions(),
	}
}

// NewCachedFetcher creates a fetcher. A nil cache disables caching.
func NewCachedFetcher(cache PageCache, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultPageCacheTTL
	}
	return &CachedFetcher{
		cache:    cache,
		options:  config.Options,
		cacheTTL: config.CacheTTL,
		render:   config.Render,
		now:      time.Now,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
	Rendered  bool
}

// Fetch retrieves a posting and its extracted text.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if f.cache != nil {
		page, err := f.cache.GetPage(ctx, urlStr, f.cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check page cache: %w", err)
		}
		if page != nil {
			return &CachedResult{
				Result: &Result{
					URL:        page.URL,
					HTML:       page.HTML,
					Text:       page.Text,
					StatusCode: page.StatusCode,
				},
				FromCache: true,
			}, nil
		}
	}

	platform := DetectPlatform(urlStr)
	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}
	result.Text, err = ExtractMainText(result.HTML, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to extract text", StatusCode: result.StatusCode, Cause: err}
	}

	rendered := false
	if f.render != nil && ShouldUseBrowser(result.Text) {
		html, renderErr := f.render(ctx, urlStr)
		if renderErr != nil {
			slog.Warn("browser fallback failed, keeping HTTP content",
				slog.String("url", urlStr), slog.Any("error", renderErr))
		} else if text, extractErr := ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...); extractErr == nil && len(text) > len(result.Text) {
			result.HTML = html
			result.Text = text
			rendered = true
		}
	}

	if f.cache != nil {
		page := &Page{
			URL:        urlStr,
			HTML:       result.HTML,
			Text:       result.Text,
			StatusCode: result.StatusCode,
			FetchedAt:  f.now(),
		}
		if err := f.cache.PutPage(ctx, page); err != nil {
			slog.Warn("failed to cache page", slog.String("url", urlStr), slog.Any("error", err))
		}
	}

	return &CachedResult{Result: result, Rendered: rendered}, nil
}

// InvalidateCache drops a cached page so the next Fetch goes to the network.
func (f *CachedFetcher) InvalidateCache(ctx context.Context, urlStr string) error {
	if f.cache == nil {
		return nil
	}
	return f.cache.DeletePage(ctx, urlStr)
}
