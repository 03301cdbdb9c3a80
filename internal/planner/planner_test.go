package planner_test

import (
	"context"
	"fmt"

	"github.com/ktokiya/eigaplan/internal/planner"
)

// fakeCatalog is an in-memory SessionCatalog snapshot.
type fakeCatalog struct {
	sessions []planner.Session
}

func (f *fakeCatalog) ListSessions(_ context.Context, date string) ([]planner.Session, error) {
	out := make([]planner.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetSession(_ context.Context, id uint64) (planner.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return planner.Session{}, planner.ErrSessionNotFound
}

// fakeTransit serves fixed directed venue-pair estimates and reports
// ErrTransitUnknown for anything absent.
type fakeTransit struct {
	minutes map[[2]uint64]int
}

func (f *fakeTransit) TransitMinutes(_ context.Context, from, to uint64) (int, error) {
	if m, ok := f.minutes[[2]uint64{from, to}]; ok {
		return m, nil
	}
	return 0, planner.ErrTransitUnknown
}

// fakeStore records saved plans and hands back sequential references.
type fakeStore struct {
	saved []planner.ViewingPlan
}

func (f *fakeStore) SavePlan(_ context.Context, p planner.ViewingPlan) (string, error) {
	f.saved = append(f.saved, p)
	return fmt.Sprintf("ref-%d", len(f.saved)), nil
}

const testDate = "2025-07-14"

// mkSession builds a catalog session with derived minute fields.
func mkSession(id, theaterID uint64, theater, title, startsAt, endsAt string) planner.Session {
	s := planner.Session{
		ID:          id,
		TheaterID:   theaterID,
		TheaterName: theater,
		Title:       title,
		Date:        testDate,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		PriceYen:    2000,
	}
	if err := s.DeriveMinutes(); err != nil {
		panic(err)
	}
	return s
}
