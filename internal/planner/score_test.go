package planner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ktokiya/eigaplan/internal/planner"
)

// TestScoreFormula pins the documented formula:
// 30*sessions - 40*transit/screening - 0.25*idle.
func TestScoreFormula(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "19:00", "21:00")
	before := mkSession(2, 20, "Venue B", "Early Feature", "16:00", "18:00")
	cat := &fakeCatalog{sessions: []planner.Session{anchor, before}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{{20, 10}: 10}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "09:00", "24:00", planner.FilterAll)
	require.NoError(t, err)
	require.Len(t, plans, 2)

	// before_only: screening 240, transit 10+15=25, span 300 (16:00-21:00).
	require.Equal(t, planner.KindBefore, plans[0].Kind)
	require.InDelta(t, 30.0*2-40.0*25.0/240.0-0.25*60.0, plans[0].Score, 1e-9)

	// single: screening 120, no transit, no idle.
	require.Equal(t, planner.KindSingle, plans[1].Kind)
	require.InDelta(t, 30.0, plans[1].Score, 1e-9)
}

// TestTieBreakByLegsThenID forces equal scores via two symmetric
// follow-ups and checks the ordering contract.
func TestTieBreakByLegsThenID(t *testing.T) {
	anchor := mkSession(1, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	cat := &fakeCatalog{sessions: []planner.Session{
		anchor,
		mkSession(7, 20, "Venue B", "Late Alpha", "18:00", "20:00"),
		mkSession(3, 30, "Venue C", "Late Gamma", "18:00", "20:00"),
	}}
	// Same transit minutes: identical spans, screening and transit, hence
	// identical scores and leg counts. The lexically smaller plan ID wins.
	tr := &fakeTransit{minutes: map[[2]uint64]int{
		{10, 20}: 10,
		{10, 30}: 10,
	}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 1, "09:00", "23:00", planner.FilterAfter)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.Equal(t, plans[0].Score, plans[1].Score)
	require.Equal(t, "after_only_1_3", plans[0].ID)
	require.Equal(t, "after_only_1_7", plans[1].ID)
}

func TestPlanIdentifiers(t *testing.T) {
	anchor := mkSession(5, 10, "Venue A", "Anchor Feature", "15:00", "17:00")
	cat := &fakeCatalog{sessions: []planner.Session{
		anchor,
		mkSession(2, 20, "Venue B", "Early Feature", "12:00", "14:00"),
		mkSession(9, 30, "Venue C", "Late Feature", "18:00", "20:00"),
	}}
	tr := &fakeTransit{minutes: map[[2]uint64]int{
		{20, 10}: 5,
		{10, 30}: 5,
	}}

	plans, err := planner.New(cat, tr).Optimize(context.Background(), 5, "09:00", "23:00", planner.FilterAll)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, p := range plans {
		ids[p.ID] = true
	}
	require.True(t, ids["single_5"])
	require.True(t, ids["before_only_2_5"])
	require.True(t, ids["after_only_5_9"])
	require.True(t, ids["triple_2_5_9"])
}
