package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ktokiya/eigaplan/internal/planner"
)

// SavedPlan is a persisted viewing plan wrapped with its storage
// metadata. Plan carries the full structure as it was computed.
type SavedPlan struct {
	Ref              string              `json:"ref"`
	UserID           *uint64             `json:"user_id,omitempty"`
	AnchorShowtimeID uint64              `json:"anchor_showtime_id"`
	Plan             planner.ViewingPlan `json:"plan"`
	CreatedAt        time.Time           `json:"created_at"`
}

// PlanRepo persists viewing plans under opaque refs.
type PlanRepo struct {
	db *sql.DB
}

// NewPlanRepo constructs a PlanRepo with the given DB handle.
func NewPlanRepo(db *sql.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

// Save stores a plan and returns its new ref. userID may be nil for
// anonymous saves.
func (r *PlanRepo) Save(ctx context.Context, userID *uint64, plan planner.ViewingPlan) (string, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	ref := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO viewing_plans (ref, user_id, anchor_showtime_id, plan_kind, score,
                                    total_duration_minutes, total_travel_minutes, plan_data)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ref, userID, plan.Anchor.ID, string(plan.Kind), plan.Score,
		plan.SpanMinutes, plan.TransitMinutes, data)
	if err != nil {
		return "", err
	}
	return ref, nil
}

// GetByRef loads a saved plan. Returns ErrPlanNotFound when the ref is
// unknown.
func (r *PlanRepo) GetByRef(ctx context.Context, ref string) (*SavedPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT ref, user_id, anchor_showtime_id, plan_data, created_at
           FROM viewing_plans WHERE ref = ?`, ref)
	return scanSavedPlan(row.Scan)
}

// ListByUser returns a user's saved plans, newest first.
func (r *PlanRepo) ListByUser(ctx context.Context, userID uint64) ([]SavedPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ref, user_id, anchor_showtime_id, plan_data, created_at
           FROM viewing_plans WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SavedPlan
	for rows.Next() {
		p, err := scanSavedPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanSavedPlan(scan func(...any) error) (*SavedPlan, error) {
	var (
		p    SavedPlan
		data []byte
	)
	if err := scan(&p.Ref, &p.UserID, &p.AnchorShowtimeID, &data, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &p.Plan); err != nil {
		return nil, err
	}
	return &p, nil
}

// userPlanStore binds a PlanRepo to one request's user, satisfying
// planner.PlanStore.
type userPlanStore struct {
	repo   *PlanRepo
	userID *uint64
}

// ForUser returns a planner.PlanStore that attributes saved plans to
// userID (nil for anonymous).
func (r *PlanRepo) ForUser(userID *uint64) planner.PlanStore {
	return &userPlanStore{repo: r, userID: userID}
}

func (s *userPlanStore) SavePlan(ctx context.Context, plan planner.ViewingPlan) (string, error) {
	return s.repo.Save(ctx, s.userID, plan)
}
