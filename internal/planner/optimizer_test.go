package planner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ktokiya/eigaplan/internal/planner"
	"github.com/ktokiya/eigaplan/internal/timeutil"
)

func TestBeforeCombinationFeasible(t *testing.T) {
	// 18:00 + 10 transit + 15 buffer = 18:25 <= 19:00, so the B session
	// chains into a before_only plan.
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	before := mkSession(2, 20, "Venue B", "Early Feature", "16:00", "18:00")
	cat := &fakeCatalog{sessions: []planner.Session{anchor, before}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{{20, 10}: 10}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "09:00", "24:00", planner.FilterAll)
	require.NoError(t, err)

	var kinds []planner.PlanKind
	for _, p := range plans {
		kinds = append(kinds, p.Kind)
	}
	require.Contains(t, kinds, planner.KindBefore)
	require.Contains(t, kinds, planner.KindSingle)
}

func TestBeforeCombinationInfeasibleTransit(t *testing.T) {
	// 18:00 + 50 + 15 = 19:05 > 19:00: the chain cannot be made in time.
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	far := mkSession(3, 30, "Venue C", "Far Feature", "16:00", "18:00")
	cat := &fakeCatalog{sessions: []planner.Session{anchor, far}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{{30, 10}: 50}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "09:00", "24:00", planner.FilterAll)
	require.NoError(t, err)
	for _, p := range plans {
		require.Nil(t, p.Before, "plan %s should not chain the far session", p.ID)
	}
}

func TestBoundaryEqualityIsFeasible(t *testing.T) {
	// 18:35 + 10 + 15 lands exactly on the 19:00 anchor start.
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	exact := mkSession(4, 20, "Venue B", "Boundary Feature", "16:35", "18:35")
	cat := &fakeCatalog{sessions: []planner.Session{anchor, exact}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{{20, 10}: 10}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "09:00", "24:00", planner.FilterBefore)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, planner.KindBefore, plans[0].Kind)
	require.Equal(t, uint64(4), plans[0].Before.ID)
}

func TestUnknownTransitFallsBack(t *testing.T) {
	// No record for the venue pair: the 15-minute fallback applies, and
	// 18:00 + 15 + 15 = 18:30 <= 19:00 keeps the chain feasible.
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	before := mkSession(2, 20, "Venue B", "Early Feature", "16:00", "18:00")
	cat := &fakeCatalog{sessions: []planner.Session{anchor, before}}
	tr := &fakeTransit{}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "09:00", "24:00", planner.FilterBefore)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, planner.DefaultTransitMinutes, plans[0].Legs[0].TransitMinutes)
}

func TestWindowExcludesOverrunningSessions(t *testing.T) {
	// Window 19:00-22:00: the anchor-only plan survives, the 21:30-23:30
	// follow-up is excluded even though transit would be feasible.
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	late := mkSession(5, 20, "Venue B", "Late Feature", "21:30", "23:30")
	cat := &fakeCatalog{sessions: []planner.Session{anchor, late}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{{10, 20}: 5}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "19:00", "22:00", planner.FilterAll)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, planner.KindSingle, plans[0].Kind)
}

func TestAnchorOutsideWindowYieldsEmpty(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	cat := &fakeCatalog{sessions: []planner.Session{anchor}}

	plans, err := planner.New(cat, &fakeTransit{}).Optimize(context.Background(), 1, "09:00", "12:00", planner.FilterAll)
	require.NoError(t, err)
	require.Empty(t, plans)
}

func TestAnchorNotFound(t *testing.T) {
	cat := &fakeCatalog{}
	_, err := planner.New(cat, &fakeTransit{}).Optimize(context.Background(), 99, "09:00", "24:00", planner.FilterAll)
	require.Error(t, err)
	require.True(t, errors.Is(err, planner.ErrAnchorNotFound))
}

func TestInvalidWindow(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	cat := &fakeCatalog{sessions: []planner.Session{anchor}}
	opt := planner.New(cat, &fakeTransit{})

	_, err := opt.Optimize(context.Background(), 1, "22:00", "09:00", planner.FilterAll)
	require.True(t, errors.Is(err, planner.ErrInvalidWindow))

	_, err = opt.Optimize(context.Background(), 1, "19:00", "19:00", planner.FilterAll)
	require.True(t, errors.Is(err, planner.ErrInvalidWindow))

	_, err = opt.Optimize(context.Background(), 1, "19h00", "22:00", planner.FilterAll)
	require.True(t, errors.Is(err, timeutil.ErrMalformedClock))
}

func TestTripleRequiresWideWindow(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	before := mkSession(2, 20, "Venue B", "Early Feature", "12:00", "14:00")
	after := mkSession(3, 30, "Venue C", "Late Feature", "18:00", "20:00")
	cat := &fakeCatalog{sessions: []planner.Session{anchor, before, after}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{
		{20, 10}: 10,
		{10, 30}: 10,
	}}
	opt := planner.New(cat, tr)

	// 11:00-21:00 spans 600 minutes: triple allowed.
	plans, err := opt.Optimize(context.Background(), 1, "11:00", "21:00", planner.FilterTriple)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, planner.KindTriple, plans[0].Kind)
	require.Len(t, plans[0].Legs, 2)
	require.Equal(t, 360, plans[0].ScreeningMinutes)
	require.Equal(t, 50, plans[0].TransitMinutes) // 10+15 and 10+15
	require.Equal(t, 480, plans[0].SpanMinutes)   // 12:00 to 20:00

	// 13:30-19:00 spans 330 minutes: no triples even if pairs fit.
	plans, err = opt.Optimize(context.Background(), 1, "13:30", "19:00", planner.FilterTriple)
	require.NoError(t, err)
	require.Empty(t, plans)
}

func TestResultsSortedAndWithinWindow(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	sessions := []planner.Session{
		anchor,
		mkSession(2, 20, "Venue B", "Early Feature", "12:00", "14:00"),
		mkSession(3, 30, "Venue C", "Late Feature", "18:00", "20:00"),
		mkSession(4, 20, "Venue B", "Second Early", "11:30", "13:30"),
	}
	cat := &fakeCatalog{sessions: sessions}
	tr := &fakeTransit{minutes: map[[2]uint64]int{
		{20, 10}: 10,
		{10, 30}: 10,
	}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "09:00", "23:00", planner.FilterAll)
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	window, err := planner.NewWindow("09:00", "23:00")
	require.NoError(t, err)
	for i, p := range plans {
		for _, s := range p.Sessions() {
			require.True(t, window.Contains(s), "plan %s session %d outside window", p.ID, s.ID)
		}
		titles := map[string]bool{}
		for _, s := range p.Sessions() {
			require.False(t, titles[s.Title], "plan %s repeats title %q", p.ID, s.Title)
			titles[s.Title] = true
		}
		if i > 0 {
			prev := plans[i-1]
			if prev.Score == p.Score {
				require.LessOrEqual(t, len(prev.Legs), len(p.Legs), "tie break: fewer legs first")
			} else {
				require.Greater(t, prev.Score, p.Score, "scores must be descending")
			}
		}
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	cat := &fakeCatalog{sessions: []planner.Session{
		anchor,
		mkSession(2, 20, "Venue B", "Early Feature", "12:00", "14:00"),
		mkSession(3, 30, "Venue C", "Late Feature", "18:00", "20:00"),
	}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{
		{20, 10}: 10,
		{10, 30}: 10,
	}}
	opt := planner.New(cat, tr)

	first, err := opt.Optimize(context.Background(), 1, "09:00", "23:00", planner.FilterAll)
	require.NoError(t, err)
	second, err := opt.Optimize(context.Background(), 1, "09:00", "23:00", planner.FilterAll)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDuplicateTitleCombinationsCollapse(t *testing.T) {
	// Two screenings of the same movie both chain as before-candidates;
	// the title multisets are identical so only the first survives.
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	cat := &fakeCatalog{sessions: []planner.Session{
		anchor,
		mkSession(2, 20, "Venue B", "Early Feature", "16:00", "18:00"),
		mkSession(3, 30, "Venue C", "Early Feature", "15:30", "17:30"),
	}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{
		{20, 10}: 10,
		{30, 10}: 10,
	}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "09:00", "24:00", planner.FilterBefore)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, uint64(2), plans[0].Before.ID, "first-encountered candidate survives")
}

func TestResultCap(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	sessions := []planner.Session{anchor}
	tr := &fakeTransit{minutes: map[[2]uint64]int{}}
	// Twelve distinct follow-ups, each reachable.
	for i := uint64(0); i < 12; i++ {
		id := 100 + i
		sessions = append(sessions, mkSession(id, 20+i, "Venue X", "Late Feature "+string(rune('A'+i)), "18:00", "20:00"))
		tr.minutes[[2]uint64{10, 20 + i}] = 5
	}
	cat := &fakeCatalog{sessions: sessions}

	plans, err := planner.New(cat, tr, planner.WithMaxResults(10)).Optimize(context.Background(), 1, "09:00", "23:00", planner.FilterAll)
	require.NoError(t, err)
	require.Len(t, plans, 10)
}

func TestSaveTopPersistsBestPlan(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	cat := &fakeCatalog{sessions: []planner.Session{
		anchor,
		mkSession(2, 20, "Venue B", "Early Feature", "12:00", "14:00"),
	}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{{20, 10}: 10}}
	store := &fakeStore{}
	opt := planner.New(cat, tr, planner.WithPlanStore(store))

	plans, err := opt.Optimize(context.Background(), 1, "09:00", "23:00", planner.FilterAll)
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	ref, err := opt.SaveTop(context.Background(), plans)
	require.NoError(t, err)
	require.Equal(t, "ref-1", ref)
	require.Len(t, store.saved, 1)
	require.Equal(t, plans[0].ID, store.saved[0].ID)
}

func TestSaveTopWithoutStore(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	opt := planner.New(&fakeCatalog{sessions: []planner.Session{anchor}}, &fakeTransit{})
	_, err := opt.SaveTop(context.Background(), []planner.ViewingPlan{{ID: "single_1"}})
	require.True(t, errors.Is(err, planner.ErrNoPlanStore))
}

func TestWithStoreBindsPerCallerStore(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	cat := &fakeCatalog{sessions: []planner.Session{anchor}}
	opt := planner.New(cat, &fakeTransit{})

	plans, err := opt.Optimize(context.Background(), 1, "09:00", "23:00", planner.FilterAll)
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	store := &fakeStore{}
	ref, err := opt.WithStore(store).SaveTop(context.Background(), plans)
	require.NoError(t, err)
	require.Equal(t, "ref-1", ref)
	require.Len(t, store.saved, 1)
	require.Equal(t, plans[0].ID, store.saved[0].ID)

	// the shared instance stays unbound
	_, err = opt.SaveTop(context.Background(), plans)
	require.True(t, errors.Is(err, planner.ErrNoPlanStore))
}
