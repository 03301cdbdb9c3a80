package repository

import (
	"context"
	"database/sql"
	"time"
)

// CrawlStatus records the last schedule import outcome for a theater.
type CrawlStatus struct {
	TheaterID    uint64     `json:"theater_id"`
	TheaterName  string     `json:"theater_name"`
	LastCrawled  *time.Time `json:"last_crawled,omitempty"`
	TotalMovies  int        `json:"total_movies"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
}

// CrawlStatusRepo tracks per-theater import bookkeeping.
type CrawlStatusRepo struct {
	db *sql.DB
}

// NewCrawlStatusRepo constructs a CrawlStatusRepo with the given DB handle.
func NewCrawlStatusRepo(db *sql.DB) *CrawlStatusRepo {
	return &CrawlStatusRepo{db: db}
}

// RecordResult upserts the outcome of one import run for a theater.
// Success runs refresh last_crawled and the movie total; failures only
// bump the failure counter.
func (r *CrawlStatusRepo) RecordResult(ctx context.Context, theaterID uint64, theaterName string, movies int, ok bool) error {
	if ok {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO crawl_status (theater_id, theater_name, last_crawled, total_movies, success_count, failure_count)
             VALUES (?, ?, NOW(), ?, 1, 0)
             ON DUPLICATE KEY UPDATE theater_name = VALUES(theater_name),
                                     last_crawled = NOW(),
                                     total_movies = VALUES(total_movies),
                                     success_count = success_count + 1`,
			theaterID, theaterName, movies)
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO crawl_status (theater_id, theater_name, total_movies, success_count, failure_count)
         VALUES (?, ?, 0, 0, 1)
         ON DUPLICATE KEY UPDATE theater_name = VALUES(theater_name),
                                 failure_count = failure_count + 1`,
		theaterID, theaterName)
	return err
}

// ListAll returns crawl status rows ordered by theater ID.
func (r *CrawlStatusRepo) ListAll(ctx context.Context) ([]CrawlStatus, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT theater_id, theater_name, last_crawled, total_movies, success_count, failure_count
           FROM crawl_status ORDER BY theater_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CrawlStatus
	for rows.Next() {
		var cs CrawlStatus
		if err := rows.Scan(&cs.TheaterID, &cs.TheaterName, &cs.LastCrawled, &cs.TotalMovies, &cs.SuccessCount, &cs.FailureCount); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}
