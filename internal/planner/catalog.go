package planner

import (
	"context"
	"fmt"

	"github.com/ktokiya/eigaplan/internal/timeutil"
)

// SessionCatalog is the queryable store of sessions the optimizer reads
// from. Implementations return read-only snapshots; the optimizer never
// mutates sessions. A missing identifier yields ErrSessionNotFound.
type SessionCatalog interface {
	ListSessions(ctx context.Context, date string) ([]Session, error)
	GetSession(ctx context.Context, id uint64) (Session, error)
}

// TransitProvider estimates one-way transit minutes between two venues.
// ErrTransitUnknown signals a missing record and is recovered locally with
// a fallback estimate; any other error is an infrastructure failure and
// propagates to the caller.
type TransitProvider interface {
	TransitMinutes(ctx context.Context, fromTheaterID, toTheaterID uint64) (int, error)
}

// PlanStore accepts a finalized plan for durable storage and returns an
// opaque storage identifier. It is write-only from the optimizer's
// perspective.
type PlanStore interface {
	SavePlan(ctx context.Context, plan ViewingPlan) (string, error)
}

// Window is a validated [From, To] attendance window on one calendar day.
// FromMin/ToMin are minute-of-day values; To may be 1440 ("24:00").
type Window struct {
	From    string `json:"from"`
	To      string `json:"to"`
	FromMin int    `json:"-"`
	ToMin   int    `json:"-"`
}

// NewWindow parses and validates a window. Malformed clock strings surface
// timeutil.ErrMalformedClock; from >= to yields ErrInvalidWindow.
func NewWindow(from, to string) (Window, error) {
	f, err := timeutil.ToMinutes(from)
	if err != nil {
		return Window{}, err
	}
	t, err := timeutil.ToMinutes(to)
	if err != nil {
		return Window{}, err
	}
	if f >= t {
		return Window{}, fmt.Errorf("%w: %s >= %s", ErrInvalidWindow, from, to)
	}
	return Window{From: from, To: to, FromMin: f, ToMin: t}, nil
}

// Span returns the window length in minutes.
func (w Window) Span() int { return w.ToMin - w.FromMin }

// Contains reports whether the session's [start, end] lies fully inside
// the window. Boundary equality is feasible, not rejected.
func (w Window) Contains(s Session) bool {
	return s.StartMin >= w.FromMin && s.EndMin <= w.ToMin
}
