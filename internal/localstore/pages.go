package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/career-portal/internal/fetch"
)

// GetPage implements fetch.PageCache.
func (s *Store) GetPage(ctx context.Context, url string, maxAge time.Duration) (*fetch.Page, error) {
	var (
		page      fetch.Page
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT url, html, text, status_code, fetched_at FROM pages WHERE url = ?`, url,
	).Scan(&page.URL, &page.HTML, &page.Text, &page.StatusCode, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached page: %w", err)
	}
	page.FetchedAt, err = time.Parse(timeLayout, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at %q: %w", fetchedAt, err)
	}
	if s.now().Sub(page.FetchedAt) > maxAge {
		return nil, nil
	}
	return &page, nil
}

// PutPage implements fetch.PageCache.
func (s *Store) PutPage(ctx context.Context, page *fetch.Page) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (url, html, text, status_code, fetched_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			html = excluded.html,
			text = excluded.text,
			status_code = excluded.status_code,
			fetched_at = excluded.fetched_at`,
		page.URL, page.HTML, page.Text, page.StatusCode, page.FetchedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// DeletePage implements fetch.PageCache.
func (s *Store) DeletePage(ctx context.Context, url string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE url = ?`, url); err != nil {
		return fmt.Errorf("failed to delete cached page: %w", err)
	}
	return nil
}

// PrunePages deletes pages fetched more than maxAge ago.
func (s *Store) PrunePages(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune pages: %w", err)
	}
	return res.RowsAffected()
}
