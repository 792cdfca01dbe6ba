// internal/cache/store.go
//
// SQLite-backed store for fetched article markup.
// Responsibilities:
//   - Look up markup by (language, requested title, format).
//   - Insert or replace entries, stamping the fetch time.
//   - Purge entries fetched before a cutoff.
//
// The articles table is created by the migrations in assets/sql.

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/redactle/internal/article"
	"github.com/robalobadob/redactle/internal/wiki"
)

// Entry is one cached article.
type Entry struct {
	Lang           string
	RequestedTitle string
	Article        wiki.Article
	FetchedAt      time.Time
}

// timeLayout is fixed-width so fetched_at compares correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store reads and writes the articles table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Get returns the entry for the key. ok is false when there is none.
func (s *Store) Get(ctx context.Context, lang, title string, format article.Format) (e Entry, ok bool, err error) {
	var fetched string
	var f string
	err = s.db.QueryRowContext(ctx, `
        SELECT canonical_title, markup, format, fetched_at
        FROM articles
        WHERE lang=? AND requested_title=? AND format=?`,
		lang, title, string(format),
	).Scan(&e.Article.Title, &e.Article.Markup, &f, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache get %s:%q: %w", lang, title, err)
	}
	e.Lang = lang
	e.RequestedTitle = title
	e.Article.Format = article.Format(f)
	e.FetchedAt, err = time.Parse(timeLayout, fetched)
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache get %s:%q: bad fetched_at %q: %w", lang, title, fetched, err)
	}
	return e, true, nil
}

// Put stores a under the requested title, replacing any previous entry.
func (s *Store) Put(ctx context.Context, lang, title string, a wiki.Article) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO articles
            (lang, requested_title, canonical_title, markup, format, fetched_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		lang, title, a.Title, a.Markup, string(a.Format), s.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("cache put %s:%q: %w", lang, title, err)
	}
	return nil
}

// Purge deletes entries fetched before cutoff and returns how many went.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM articles WHERE fetched_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return res.RowsAffected()
}
