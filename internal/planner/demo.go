package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ktokiya/eigaplan/internal/timeutil"
)

// Demo plans fabricate plausible companion sessions around the anchor so a
// fresh deployment without a full day of crawled data still shows the plan
// shapes. They are kept strictly apart from real optimization: only
// DemoPlans returns them, every plan carries Demo=true, and the scores are
// fixed showcase values rather than the ranking formula.

const (
	demoScoreSingle = 85.0
	demoScoreBefore = 78.5
	demoScoreAfter  = 82.3
	demoScoreTriple = 75.8
)

// Fabricated companion venues; the seed catalog ships these Shinjuku
// theaters with IDs 1-3.
var demoVenues = []struct {
	id   uint64
	name string
}{
	{1, "Shinjuku Piccadilly"},
	{2, "Shinjuku Wald 9"},
	{3, "TOHO Cinemas Shinjuku"},
}

// DemoPlans builds the showcase plan set for an anchor. It applies the
// same anchor resolution and window gate as Optimize but fabricates the
// companion sessions. Returns ErrNoPlanStore-style misuse error when the
// optimizer was constructed without WithDemoPlans.
func (o *Optimizer) DemoPlans(ctx context.Context, anchorID uint64, from, to string) ([]ViewingPlan, error) {
	if !o.demo {
		return nil, fmt.Errorf("demo plans disabled")
	}
	w, err := NewWindow(from, to)
	if err != nil {
		return nil, err
	}
	anchor, err := o.catalog.GetSession(ctx, anchorID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrAnchorNotFound, anchorID)
		}
		return nil, err
	}
	if !w.Contains(anchor) {
		return []ViewingPlan{}, nil
	}

	gen := &generator{transit: o.transit, buffer: o.buffer, fallback: o.fallback}

	plans := []ViewingPlan{demoMark(gen.single(anchor), demoScoreSingle)}

	before := o.demoBefore(ctx, anchor, w)
	if before != nil {
		plans = append(plans, demoMark(gen.pair(anchor, before, nil), demoScoreBefore))
	}
	after := o.demoAfter(ctx, anchor, w)
	if after != nil {
		plans = append(plans, demoMark(gen.pair(anchor, nil, after), demoScoreAfter))
	}
	if before != nil && after != nil && w.Span() >= tripleMinWindow {
		plans = append(plans, demoMark(gen.pair(anchor, before, after), demoScoreTriple))
	}

	sort.SliceStable(plans, func(i, j int) bool { return plans[i].Score > plans[j].Score })
	return plans, nil
}

// demoBefore fabricates a two-hour session ending 30 minutes before the
// anchor starts, at the first demo venue that differs from the anchor's.
func (o *Optimizer) demoBefore(ctx context.Context, anchor Session, w Window) *chained {
	start := anchor.StartMin - 150
	end := anchor.StartMin - 30
	if start < w.FromMin {
		return nil
	}
	venue := demoVenue(anchor.TheaterID)
	s, ok := demoSession(anchor, anchor.ID+1000, venue.id, venue.name, "Suggested pre-feature (sci-fi)", start, end)
	if !ok {
		return nil
	}
	minutes, err := o.lookupDemoTransit(ctx, venue.id, anchor.TheaterID)
	if err != nil {
		return nil
	}
	return &chained{session: s, minutes: minutes}
}

// demoAfter fabricates a two-hour session starting 30 minutes after the
// anchor ends.
func (o *Optimizer) demoAfter(ctx context.Context, anchor Session, w Window) *chained {
	start := anchor.EndMin + 30
	end := start + 120
	if end > w.ToMin {
		return nil
	}
	before := demoVenue(anchor.TheaterID)
	venue := demoVenue(anchor.TheaterID, before.id)
	s, ok := demoSession(anchor, anchor.ID+2000, venue.id, venue.name, "Suggested follow-up (drama)", start, end)
	if !ok {
		return nil
	}
	minutes, err := o.lookupDemoTransit(ctx, anchor.TheaterID, venue.id)
	if err != nil {
		return nil
	}
	return &chained{session: s, minutes: minutes}
}

func (o *Optimizer) lookupDemoTransit(ctx context.Context, from, to uint64) (int, error) {
	minutes, err := o.transit.TransitMinutes(ctx, from, to)
	if err != nil {
		if errors.Is(err, ErrTransitUnknown) {
			return o.fallback, nil
		}
		return 0, err
	}
	return minutes, nil
}

// demoVenue picks the first fabricated venue whose ID is not in avoid, so
// the before and after companions land at distinct theaters.
func demoVenue(avoid ...uint64) struct {
	id   uint64
	name string
} {
	for _, v := range demoVenues {
		skip := false
		for _, a := range avoid {
			if v.id == a {
				skip = true
				break
			}
		}
		if !skip {
			return v
		}
	}
	return demoVenues[0]
}

func demoSession(anchor Session, id, theaterID uint64, theaterName, title string, startMin, endMin int) (Session, bool) {
	startsAt, err := timeutil.ToClock(startMin)
	if err != nil {
		return Session{}, false
	}
	endsAt, err := timeutil.ToClock(endMin)
	if err != nil {
		return Session{}, false
	}
	return Session{
		ID:          id,
		TheaterID:   theaterID,
		TheaterName: theaterName,
		Title:       title,
		Date:        anchor.Date,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		StartMin:    startMin,
		EndMin:      endMin,
		PriceYen:    2000,
	}, true
}

func demoMark(p ViewingPlan, score float64) ViewingPlan {
	p.Demo = true
	p.Score = score
	return p
}
