package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ktokiya/eigaplan/internal/planner"
)

// TheaterDistance is one walking-time edge between two theaters, with
// names joined in for listing.
type TheaterDistance struct {
	FromID         uint64 `json:"from_theater_id"`
	FromName       string `json:"from_theater_name"`
	ToID           uint64 `json:"to_theater_id"`
	ToName         string `json:"to_theater_name"`
	WalkingMinutes int    `json:"walking_minutes"`
}

// DistanceRepo stores walking times between theaters. It implements
// planner.TransitProvider.
type DistanceRepo struct {
	db *sql.DB
}

// NewDistanceRepo constructs a DistanceRepo with the given DB handle.
func NewDistanceRepo(db *sql.DB) *DistanceRepo {
	return &DistanceRepo{db: db}
}

// TransitMinutes returns the stored walking time between two theaters.
// Missing pairs report planner.ErrTransitUnknown so the optimizer can
// apply its fallback.
func (r *DistanceRepo) TransitMinutes(ctx context.Context, from, to uint64) (int, error) {
	if from == to {
		return 0, nil
	}
	var minutes int
	err := r.db.QueryRowContext(ctx,
		`SELECT walking_minutes FROM theater_distances WHERE from_theater_id = ? AND to_theater_id = ?`,
		from, to).Scan(&minutes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, planner.ErrTransitUnknown
	}
	if err != nil {
		return 0, err
	}
	return minutes, nil
}

// ListAll returns every stored edge with theater names, ordered for
// stable output.
func (r *DistanceRepo) ListAll(ctx context.Context) ([]TheaterDistance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.from_theater_id, tf.name, d.to_theater_id, tt.name, d.walking_minutes
           FROM theater_distances d
           JOIN theaters tf ON tf.id = d.from_theater_id
           JOIN theaters tt ON tt.id = d.to_theater_id
          ORDER BY d.from_theater_id, d.to_theater_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TheaterDistance
	for rows.Next() {
		var d TheaterDistance
		if err := rows.Scan(&d.FromID, &d.FromName, &d.ToID, &d.ToName, &d.WalkingMinutes); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Upsert stores a walking time in both directions. Distances are
// symmetric in this dataset, so one call seeds both edges.
func (r *DistanceRepo) Upsert(ctx context.Context, from, to uint64, minutes int) error {
	for _, pair := range [][2]uint64{{from, to}, {to, from}} {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO theater_distances (from_theater_id, to_theater_id, walking_minutes)
             VALUES (?, ?, ?)
             ON DUPLICATE KEY UPDATE walking_minutes = VALUES(walking_minutes)`,
			pair[0], pair[1], minutes)
		if err != nil {
			return err
		}
	}
	return nil
}
