package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ktokiya/eigaplan/internal/timeutil"
)

// Session is one scheduled screening, a read-only snapshot handed to the
// optimizer per request. StartsAt/EndsAt carry the wall-clock form while
// StartMin/EndMin hold the derived minute-of-day values all feasibility
// arithmetic runs on. EndsAt is strictly after StartsAt on the same
// calendar date; there is no overnight wraparound.
type Session struct {
	ID          uint64 `json:"showtime_id"`
	TheaterID   uint64 `json:"theater_id"`
	TheaterName string `json:"theater_name"`
	Title       string `json:"movie_title"`
	Date        string `json:"show_date"` // "YYYY-MM-DD"
	StartsAt    string `json:"start_time"`
	EndsAt      string `json:"end_time"`
	StartMin    int    `json:"-"`
	EndMin      int    `json:"-"`
	PriceYen    uint32 `json:"price_yen"`
}

// Duration returns the screening length in minutes.
func (s Session) Duration() int { return s.EndMin - s.StartMin }

// DeriveMinutes parses StartsAt/EndsAt into StartMin/EndMin. It fails with
// timeutil.ErrMalformedClock on a non-conforming clock string and rejects
// sessions whose end does not come strictly after their start.
func (s *Session) DeriveMinutes() error {
	start, err := timeutil.ToMinutes(s.StartsAt)
	if err != nil {
		return fmt.Errorf("session %d start: %w", s.ID, err)
	}
	end, err := timeutil.ToMinutes(s.EndsAt)
	if err != nil {
		return fmt.Errorf("session %d end: %w", s.ID, err)
	}
	if end <= start {
		return fmt.Errorf("session %d: end %q not after start %q", s.ID, s.EndsAt, s.StartsAt)
	}
	s.StartMin = start
	s.EndMin = end
	return nil
}

// TransitLeg is a directed hop between two venues inside a plan. Buffer is
// the fixed safety margin added after transit and before the next session's
// start.
type TransitLeg struct {
	From           string `json:"from"`
	To             string `json:"to"`
	TransitMinutes int    `json:"travel_minutes"`
	BufferMinutes  int    `json:"buffer_minutes"`
}

// PlanKind tags the shape of a plan: which optional sessions are present.
type PlanKind string

const (
	KindSingle PlanKind = "single"
	KindBefore PlanKind = "before_only"
	KindAfter  PlanKind = "after_only"
	KindTriple PlanKind = "triple"
)

// KindFilter restricts Optimize results to a single plan shape.
type KindFilter string

const (
	FilterAll    KindFilter = "all"
	FilterSingle KindFilter = "single"
	FilterBefore KindFilter = "before"
	FilterAfter  KindFilter = "after"
	FilterTriple KindFilter = "triple"
)

// Matches reports whether a plan of the given kind passes the filter.
func (f KindFilter) Matches(k PlanKind) bool {
	switch f {
	case "", FilterAll:
		return true
	case FilterSingle:
		return k == KindSingle
	case FilterBefore:
		return k == KindBefore
	case FilterAfter:
		return k == KindAfter
	case FilterTriple:
		return k == KindTriple
	}
	return false
}

// ParseKindFilter validates a textual filter value.
func ParseKindFilter(s string) (KindFilter, error) {
	switch KindFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterSingle, FilterBefore, FilterAfter, FilterTriple:
		return KindFilter(s), nil
	}
	return "", fmt.Errorf("unknown plan kind filter %q", s)
}

// ViewingPlan is a ranked sequence of 1-3 sessions a single visitor can
// attend back to back. SpanMinutes runs from the first session's start to
// the last session's end; TransitMinutes sums leg transit plus buffers;
// ScreeningMinutes sums session durations. All three are computed by the
// generator, never assigned independently.
type ViewingPlan struct {
	ID               string       `json:"plan_id"`
	Kind             PlanKind     `json:"plan_type"`
	Anchor           Session      `json:"primary_showtime"`
	Before           *Session     `json:"before_showtime,omitempty"`
	After            *Session     `json:"after_showtime,omitempty"`
	SpanMinutes      int          `json:"total_duration_minutes"`
	TransitMinutes   int          `json:"total_travel_minutes"`
	ScreeningMinutes int          `json:"total_movie_minutes"`
	Legs             []TransitLeg `json:"travel_details,omitempty"`
	Score            float64      `json:"optimization_score"`
	Demo             bool         `json:"demo,omitempty"`
}

// Sessions returns the plan's sessions in chronological order.
func (p ViewingPlan) Sessions() []Session {
	out := make([]Session, 0, 3)
	if p.Before != nil {
		out = append(out, *p.Before)
	}
	out = append(out, p.Anchor)
	if p.After != nil {
		out = append(out, *p.After)
	}
	return out
}

// planID derives the stable plan identifier from the kind and the
// chronological session IDs, e.g. "before_only_12_34".
func planID(kind PlanKind, sessions []Session) string {
	parts := make([]string, 0, len(sessions)+1)
	parts = append(parts, string(kind))
	for _, s := range sessions {
		parts = append(parts, fmt.Sprintf("%d", s.ID))
	}
	return strings.Join(parts, "_")
}

// CanonicalKey is the content address used for deduplication: the sorted
// tuple of session identifiers, independent of plan kind and ordering.
func (p ViewingPlan) CanonicalKey() string {
	ids := make([]uint64, 0, 3)
	for _, s := range p.Sessions() {
		ids = append(ids, s.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, "_")
}

// TitleKey is the sorted multiset of session titles; two plans with the
// same TitleKey offer the same movies and count as duplicates.
func (p ViewingPlan) TitleKey() string {
	titles := make([]string, 0, 3)
	for _, s := range p.Sessions() {
		titles = append(titles, s.Title)
	}
	sort.Strings(titles)
	return strings.Join(titles, "\x1f")
}

// titlesDistinct reports whether all session titles are pairwise distinct.
func (p ViewingPlan) titlesDistinct() bool {
	seen := map[string]bool{}
	for _, s := range p.Sessions() {
		if seen[s.Title] {
			return false
		}
		seen[s.Title] = true
	}
	return true
}
