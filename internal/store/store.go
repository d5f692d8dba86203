// Package store persists run history and caches fetched pages in a
// local SQLite database. The pipeline works without it; a nil *Store is
// a valid no-op.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscout/internal/model"
)

// Store wraps the SQLite database.
type Store struct {
	db       *sql.DB
	cacheTTL time.Duration
}

// Open opens (or creates) the database at the given path and configures
// WAL mode.
func Open(dsn string, cacheTTL time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Store{db: db, cacheTTL: cacheTTL}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	query         TEXT NOT NULL,
	mode          TEXT NOT NULL,
	results_count INTEGER NOT NULL DEFAULT 0,
	results       TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS fetch_cache (
	url        TEXT PRIMARY KEY,
	final_url  TEXT NOT NULL,
	html       TEXT NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_query ON runs(query);
CREATE INDEX IF NOT EXISTS idx_fetch_cache_expires_at ON fetch_cache(expires_at);
`

// Migrate applies the schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records a completed search run with its final records.
func (s *Store) SaveRun(ctx context.Context, query string, mode model.SearchMode, records []model.ContactRecord) (string, error) {
	id := uuid.New().String()

	resultsJSON, err := json.Marshal(records)
	if err != nil {
		return "", eris.Wrap(err, "store: marshal results")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, mode, results_count, results, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, query, string(mode), len(records), string(resultsJSON), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "store: insert run")
	}
	return id, nil
}

// Run is a persisted search run.
type Run struct {
	ID           string
	Query        string
	Mode         model.SearchMode
	ResultsCount int
	Records      []model.ContactRecord
	CreatedAt    time.Time
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, mode, results_count, results, created_at FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r           Run
			mode        string
			resultsJSON sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Query, &mode, &r.ResultsCount, &resultsJSON, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		r.Mode = model.SearchMode(mode)
		if resultsJSON.Valid && resultsJSON.String != "" {
			if err := json.Unmarshal([]byte(resultsJSON.String), &r.Records); err != nil {
				return nil, eris.Wrap(err, "store: unmarshal results")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "store: iterate runs")
}

// CachedPage returns a non-expired cached fetch for the URL, or nil.
func (s *Store) CachedPage(ctx context.Context, url string) (*model.FetchResult, error) {
	var (
		finalURL string
		html     string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT final_url, html FROM fetch_cache WHERE url = ? AND expires_at > ?`,
		url, time.Now().UTC(),
	).Scan(&finalURL, &html)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: cache lookup")
	}
	return &model.FetchResult{
		HTML:      html,
		FinalURL:  finalURL,
		Strategy:  model.StrategyFast,
		Succeeded: true,
	}, nil
}

// CachePage stores a successful fetch, replacing any previous entry.
func (s *Store) CachePage(ctx context.Context, url string, res *model.FetchResult) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO fetch_cache (url, final_url, html, fetched_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		url, res.FinalURL, res.HTML, now, now.Add(s.cacheTTL),
	)
	return eris.Wrap(err, "store: cache page")
}

// PruneCache deletes expired cache entries.
func (s *Store) PruneCache(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fetch_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "store: prune cache")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
