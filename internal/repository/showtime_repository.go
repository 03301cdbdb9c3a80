// This file defines the showtime catalog: the read side the optimizer
// runs against and the write side ingestion fills. ShowtimeRepo
// implements planner.SessionCatalog, handing the optimizer read-only
// session snapshots joined with theater and movie names.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ktokiya/eigaplan/internal/planner"
)

// ShowtimeRepo manages persistence for showtimes.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories, as ingestion does when
// replacing a date's schedule.
func (r *ShowtimeRepo) DB() *sql.DB {
	return r.db
}

const sessionSelect = `SELECT s.id, s.theater_id, t.name, m.title, DATE_FORMAT(s.show_date, '%Y-%m-%d'),
       s.start_time, s.end_time, s.price_yen
  FROM showtimes s
  JOIN theaters t ON t.id = s.theater_id
  JOIN movies   m ON m.id = s.movie_id`

// scanSession reads one joined row into a planner.Session and derives the
// minute-of-day fields.
func scanSession(scan func(...any) error) (planner.Session, error) {
	var s planner.Session
	if err := scan(&s.ID, &s.TheaterID, &s.TheaterName, &s.Title, &s.Date, &s.StartsAt, &s.EndsAt, &s.PriceYen); err != nil {
		return planner.Session{}, err
	}
	if err := s.DeriveMinutes(); err != nil {
		return planner.Session{}, err
	}
	return s, nil
}

// ListSessions returns all sessions for a date ordered by start time.
// Rows with malformed clock strings are logged and skipped so one bad
// crawl row cannot take optimization down.
func (r *ShowtimeRepo) ListSessions(ctx context.Context, date string) ([]planner.Session, error) {
	rows, err := r.db.QueryContext(ctx, sessionSelect+` WHERE s.show_date = ? ORDER BY s.start_time, s.id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []planner.Session
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			log.Printf("showtimes: skipping bad row for %s: %v", date, err)
			continue
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSession retrieves a single session by showtime ID. It returns
// planner.ErrSessionNotFound when there is no matching row, which the
// optimizer maps to its anchor error.
func (r *ShowtimeRepo) GetSession(ctx context.Context, id uint64) (planner.Session, error) {
	row := r.db.QueryRowContext(ctx, sessionSelect+` WHERE s.id = ?`, id)
	s, err := scanSession(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return planner.Session{}, planner.ErrSessionNotFound
		}
		return planner.Session{}, err
	}
	return s, nil
}

// SessionSearch defines filters & pagination for browsing sessions.
// From/To apply the strict window rule: a session matches only when its
// whole [start, end] lies inside the window.
type SessionSearch struct {
	Date     string
	From     string
	To       string
	Title    string
	Theater  string
	Page     int
	PageSize int
}

// Search returns sessions matching the filters plus the total match
// count for pagination. Clock strings are zero-padded "HH:MM", so plain
// string comparison orders them correctly in SQL.
func (r *ShowtimeRepo) Search(ctx context.Context, q SessionSearch) ([]planner.Session, int64, error) {
	where := []string{"s.show_date = ?"}
	args := []any{q.Date}

	if q.From != "" {
		where = append(where, "s.start_time >= ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		where = append(where, "s.end_time <= ?")
		args = append(args, q.To)
	}
	if q.Title != "" {
		where = append(where, "LOWER(m.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	if q.Theater != "" {
		where = append(where, "LOWER(t.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Theater)+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countSQL := `SELECT COUNT(*)
      FROM showtimes s
      JOIN theaters t ON t.id = s.theater_id
      JOIN movies   m ON m.id = s.movie_id
      WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx,
		sessionSelect+` WHERE `+cond+` ORDER BY s.start_time, s.id LIMIT ? OFFSET ?`, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]planner.Session, 0, limit)
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			log.Printf("showtimes: skipping bad row in search: %v", err)
			continue
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpsertTx inserts a showtime inside the caller's transaction, updating
// the movie and price when the identical slot (theater, date, start,
// screen) already exists. Returns the showtime ID.
func (r *ShowtimeRepo) UpsertTx(ctx context.Context, tx *sql.Tx, theaterID, movieID uint64, date, start, end string, screen uint32, priceYen uint32) (uint64, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM showtimes WHERE theater_id = ? AND show_date = ? AND start_time = ? AND screen_number = ?`,
		theaterID, date, start, screen).Scan(&id)
	switch {
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE showtimes SET movie_id = ?, end_time = ?, price_yen = ? WHERE id = ?`,
			movieID, end, priceYen, id)
		if err != nil {
			return 0, err
		}
		return id, nil
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO showtimes (theater_id, movie_id, show_date, start_time, end_time, screen_number, price_yen)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			theaterID, movieID, date, start, end, screen, priceYen)
		if err != nil {
			return 0, err
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		return uint64(newID), nil
	default:
		return 0, err
	}
}

// ClearDateTx removes all showtimes for a date inside the caller's
// transaction, the first step of replacing a day's crawl.
func (r *ShowtimeRepo) ClearDateTx(ctx context.Context, tx *sql.Tx, date string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM showtimes WHERE show_date = ?`, date); err != nil {
		return fmt.Errorf("clear showtimes for %s: %w", date, err)
	}
	return nil
}

// CountByDate returns session counts grouped by date, newest first.
func (r *ShowtimeRepo) CountByDate(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DATE_FORMAT(show_date, '%Y-%m-%d'), COUNT(*) FROM showtimes GROUP BY show_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var date string
		var n int64
		if err := rows.Scan(&date, &n); err != nil {
			return nil, err
		}
		out[date] = n
	}
	return out, rows.Err()
}
