// Package repository contains data access logic for the catalog cache.
// This file covers theaters: the physical venues sessions take place in.
// Theaters are written by ingestion and seeding and read by the browse
// endpoints and the CLI.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Theater mirrors the 'theaters' table.
type Theater struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	Area      string  `json:"area,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Screens   uint32  `json:"screens"`
	URL       string  `json:"url,omitempty"`
}

// TheaterRepo manages persistence for theaters.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo constructs a TheaterRepo with the given DB handle.
func NewTheaterRepo(db *sql.DB) *TheaterRepo {
	return &TheaterRepo{db: db}
}

const theaterCols = `id, name, address, area, COALESCE(latitude, 0), COALESCE(longitude, 0), screens, url`

// ListAll returns every theater ordered by ID. When the catalog is empty
// it returns an empty slice and nil error.
func (r *TheaterRepo) ListAll(ctx context.Context) ([]Theater, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+theaterCols+` FROM theaters ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Theater
	for rows.Next() {
		var t Theater
		if err := rows.Scan(&t.ID, &t.Name, &t.Address, &t.Area, &t.Latitude, &t.Longitude, &t.Screens, &t.URL); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID retrieves a theater by its ID. It returns ErrTheaterNotFound if
// there is no matching row.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*Theater, error) {
	var t Theater
	err := r.db.QueryRowContext(ctx, `SELECT `+theaterCols+` FROM theaters WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Address, &t.Area, &t.Latitude, &t.Longitude, &t.Screens, &t.URL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTheaterNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByName retrieves a theater by its exact name, the key the crawler
// output uses to reference venues.
func (r *TheaterRepo) GetByName(ctx context.Context, name string) (*Theater, error) {
	var t Theater
	err := r.db.QueryRowContext(ctx, `SELECT `+theaterCols+` FROM theaters WHERE name = ?`, name).
		Scan(&t.ID, &t.Name, &t.Address, &t.Area, &t.Latitude, &t.Longitude, &t.Screens, &t.URL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTheaterNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetOrCreate returns the ID of the theater with the given name, inserting
// a minimal row when it does not exist yet. Ingestion uses this so a crawl
// mentioning a new venue does not fail the whole import.
func (r *TheaterRepo) GetOrCreate(ctx context.Context, name, address, area string) (uint64, error) {
	t, err := r.GetByName(ctx, name)
	if err == nil {
		return t.ID, nil
	}
	if !errors.Is(err, ErrTheaterNotFound) {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO theaters (name, address, area) VALUES (?, ?, ?)`,
		name, address, area)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Upsert inserts or updates a fully described theater, used by seeding.
func (r *TheaterRepo) Upsert(ctx context.Context, t *Theater) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO theaters (name, address, area, latitude, longitude, screens, url)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON DUPLICATE KEY UPDATE
           address = VALUES(address), area = VALUES(area),
           latitude = VALUES(latitude), longitude = VALUES(longitude),
           screens = VALUES(screens), url = VALUES(url)`,
		t.Name, t.Address, t.Area, t.Latitude, t.Longitude, t.Screens, t.URL)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		t.ID = uint64(id)
		return nil
	}
	// Updated an existing row: resolve the ID by name.
	existing, err := r.GetByName(ctx, t.Name)
	if err != nil {
		return err
	}
	t.ID = existing.ID
	return nil
}
