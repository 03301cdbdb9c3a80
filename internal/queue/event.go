// Package queue defines message payloads exchanged over the message broker.
package queue

// PlanSavedEvent is published when a viewing plan is persisted. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type PlanSavedEvent struct {
	PlanRef        string   `json:"plan_ref"`
	UserID         *uint64  `json:"user_id,omitempty"`
	AnchorID       uint64   `json:"anchor_showtime_id"`
	PlanKind       string   `json:"plan_kind"`
	Date           string   `json:"show_date"`
	MovieTitles    []string `json:"movie_titles"`
	Score          float64  `json:"optimization_score"`
	SpanMinutes    int      `json:"total_duration_minutes"`
	TransitMinutes int      `json:"total_travel_minutes"`
	SavedAt        string   `json:"saved_at"`
}
