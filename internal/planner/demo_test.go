package planner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ktokiya/eigaplan/internal/planner"
)

func TestDemoPlansDisabledByDefault(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	opt := planner.New(&fakeCatalog{sessions: []planner.Session{anchor}}, &fakeTransit{})
	_, err := opt.DemoPlans(context.Background(), 1, "09:00", "23:00")
	require.Error(t, err)
}

func TestDemoPlansFabricateCompanions(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	opt := planner.New(
		&fakeCatalog{sessions: []planner.Session{anchor}},
		&fakeTransit{},
		planner.WithDemoPlans(true),
	)

	plans, err := opt.DemoPlans(context.Background(), 1, "09:00", "23:45")
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	kinds := map[planner.PlanKind]planner.ViewingPlan{}
	for _, p := range plans {
		require.True(t, p.Demo, "every demo plan must be flagged")
		kinds[p.Kind] = p
	}
	require.Contains(t, kinds, planner.KindSingle)
	require.Contains(t, kinds, planner.KindBefore)
	require.Contains(t, kinds, planner.KindAfter)
	require.Contains(t, kinds, planner.KindTriple)

	// Fabricated neighbors keep the 150/30-minute offsets around the anchor.
	before := kinds[planner.KindBefore].Before
	require.Equal(t, "16:30", before.StartsAt)
	require.Equal(t, "18:30", before.EndsAt)
	after := kinds[planner.KindAfter].After
	require.Equal(t, "21:30", after.StartsAt)
	require.Equal(t, "23:30", after.EndsAt)

	// Showcase scores are fixed, highest first.
	require.Equal(t, 85.0, plans[0].Score)
	require.Equal(t, planner.KindSingle, plans[0].Kind)
}

func TestDemoPlansRespectWindow(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	opt := planner.New(
		&fakeCatalog{sessions: []planner.Session{anchor}},
		&fakeTransit{},
		planner.WithDemoPlans(true),
	)

	// A tight window leaves no room for fabricated neighbors.
	plans, err := opt.DemoPlans(context.Background(), 1, "18:00", "22:00")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, planner.KindSingle, plans[0].Kind)

	// Anchor outside the window: empty, not an error.
	plans, err = opt.DemoPlans(context.Background(), 1, "09:00", "12:00")
	require.NoError(t, err)
	require.Empty(t, plans)
}
