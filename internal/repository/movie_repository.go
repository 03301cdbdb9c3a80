package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Movie mirrors the 'movies' table. DurationMin is the screening length
// used to derive showtime end times during ingestion.
type Movie struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	DurationMin int    `json:"duration_min"`
	Rating      string `json:"rating,omitempty"`
	Genre       string `json:"genre,omitempty"`
}

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// GetByTitle retrieves a movie by its cleaned title. Returns
// ErrMovieNotFound when absent.
func (r *MovieRepo) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	var m Movie
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, duration_min, rating, genre FROM movies WHERE title = ?`, title).
		Scan(&m.ID, &m.Title, &m.DurationMin, &m.Rating, &m.Genre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetOrCreate returns the ID of the movie with the given title, inserting
// a new row with the provided duration when missing. Existing rows keep
// their duration so repeated crawls do not reset curated data.
func (r *MovieRepo) GetOrCreate(ctx context.Context, title string, durationMin int) (uint64, error) {
	m, err := r.GetByTitle(ctx, title)
	if err == nil {
		return m.ID, nil
	}
	if !errors.Is(err, ErrMovieNotFound) {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, duration_min) VALUES (?, ?)`, title, durationMin)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListAll returns every movie ordered by ID.
func (r *MovieRepo) ListAll(ctx context.Context) ([]Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, duration_min, rating, genre FROM movies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Movie
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.DurationMin, &m.Rating, &m.Genre); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
