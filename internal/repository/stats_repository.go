package repository

import (
	"context"
	"database/sql"
)

// CatalogStats summarizes the current contents of the catalog.
type CatalogStats struct {
	Theaters       int64            `json:"theaters"`
	Movies         int64            `json:"movies"`
	Showtimes      int64            `json:"showtimes"`
	SavedPlans     int64            `json:"saved_plans"`
	ShowtimesByDay map[string]int64 `json:"showtimes_by_day"`
}

// StatsRepo reads aggregate counts across catalog tables.
type StatsRepo struct {
	db        *sql.DB
	showtimes *ShowtimeRepo
}

// NewStatsRepo constructs a StatsRepo with the given DB handle.
func NewStatsRepo(db *sql.DB, showtimes *ShowtimeRepo) *StatsRepo {
	return &StatsRepo{db: db, showtimes: showtimes}
}

// Collect gathers table counts and the per-date showtime breakdown.
func (r *StatsRepo) Collect(ctx context.Context) (*CatalogStats, error) {
	var stats CatalogStats
	counts := []struct {
		query string
		dst   *int64
	}{
		{`SELECT COUNT(*) FROM theaters`, &stats.Theaters},
		{`SELECT COUNT(*) FROM movies`, &stats.Movies},
		{`SELECT COUNT(*) FROM showtimes`, &stats.Showtimes},
		{`SELECT COUNT(*) FROM viewing_plans`, &stats.SavedPlans},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, err
		}
	}
	byDay, err := r.showtimes.CountByDate(ctx)
	if err != nil {
		return nil, err
	}
	stats.ShowtimesByDay = byDay
	return &stats, nil
}
