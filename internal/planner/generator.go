package planner

import (
	"context"
	"errors"
	"fmt"
)

// DefaultBufferMinutes is the safety margin added after every transit hop
// and before the next session's start.
const DefaultBufferMinutes = 15

// DefaultTransitMinutes is the degraded-confidence estimate used when the
// TransitProvider has no record for a venue pair.
const DefaultTransitMinutes = 15

// generator produces raw plan candidates for one anchor session. It is a
// pure computation over the session snapshot; the only external call is
// the transit lookup.
type generator struct {
	transit  TransitProvider
	buffer   int
	fallback int
}

// tripleMinWindow is the minimum window span, in minutes, before triple
// combinations are attempted.
const tripleMinWindow = 360

// chained holds a feasible neighbor session together with its transit
// estimate relative to the anchor.
type chained struct {
	session Session
	minutes int
}

// candidates enumerates single, before, after and triple plans for the
// anchor. All four kinds are attempted independently and unioned; the
// result is unfiltered and unscored.
func (g *generator) candidates(ctx context.Context, anchor Session, sessions []Session, w Window) ([]ViewingPlan, error) {
	var plans []ViewingPlan

	if w.Contains(anchor) {
		plans = append(plans, g.single(anchor))
	}

	befores, err := g.beforeCandidates(ctx, anchor, sessions, w)
	if err != nil {
		return nil, err
	}
	afters, err := g.afterCandidates(ctx, anchor, sessions, w)
	if err != nil {
		return nil, err
	}

	for _, b := range befores {
		plans = append(plans, g.pair(anchor, &b, nil))
	}
	for _, a := range afters {
		plans = append(plans, g.pair(anchor, nil, &a))
	}

	// Triples only when the window leaves room for three screenings.
	if w.Span() >= tripleMinWindow {
		for _, b := range befores {
			for _, a := range afters {
				if b.session.Title == a.session.Title {
					continue
				}
				plans = append(plans, g.pair(anchor, &b, &a))
			}
		}
	}
	return plans, nil
}

// beforeCandidates returns sessions that can precede the anchor: a
// different screening of a different title that ends early enough to reach
// the anchor's venue, transit and buffer included. Equality at the
// boundary is feasible.
func (g *generator) beforeCandidates(ctx context.Context, anchor Session, sessions []Session, w Window) ([]chained, error) {
	var out []chained
	for _, s := range sessions {
		if s.ID == anchor.ID || s.Title == anchor.Title {
			continue
		}
		if s.EndMin > anchor.StartMin || !w.Contains(s) {
			continue
		}
		minutes, err := g.lookupTransit(ctx, s.TheaterID, anchor.TheaterID)
		if err != nil {
			return nil, err
		}
		if s.EndMin+minutes+g.buffer <= anchor.StartMin {
			out = append(out, chained{session: s, minutes: minutes})
		}
	}
	return out, nil
}

// afterCandidates is the symmetric check for sessions following the anchor.
func (g *generator) afterCandidates(ctx context.Context, anchor Session, sessions []Session, w Window) ([]chained, error) {
	var out []chained
	for _, s := range sessions {
		if s.ID == anchor.ID || s.Title == anchor.Title {
			continue
		}
		if s.StartMin < anchor.EndMin || !w.Contains(s) {
			continue
		}
		minutes, err := g.lookupTransit(ctx, anchor.TheaterID, s.TheaterID)
		if err != nil {
			return nil, err
		}
		if anchor.EndMin+minutes+g.buffer <= s.StartMin {
			out = append(out, chained{session: s, minutes: minutes})
		}
	}
	return out, nil
}

// lookupTransit queries the provider and substitutes the fallback estimate
// when no record exists. Unknown transit time is not a hard error.
func (g *generator) lookupTransit(ctx context.Context, from, to uint64) (int, error) {
	minutes, err := g.transit.TransitMinutes(ctx, from, to)
	if err != nil {
		if errors.Is(err, ErrTransitUnknown) {
			return g.fallback, nil
		}
		return 0, fmt.Errorf("transit lookup %d->%d: %w", from, to, err)
	}
	return minutes, nil
}

// single builds the anchor-only plan.
func (g *generator) single(anchor Session) ViewingPlan {
	p := ViewingPlan{
		Kind:             KindSingle,
		Anchor:           anchor,
		SpanMinutes:      anchor.Duration(),
		ScreeningMinutes: anchor.Duration(),
	}
	p.ID = planID(p.Kind, p.Sessions())
	return p
}

// pair assembles a plan from the anchor and up to one neighbor on each
// side. Span, transit and screening totals are derived here so that
// downstream stages never recompute them.
func (g *generator) pair(anchor Session, before, after *chained) ViewingPlan {
	p := ViewingPlan{Kind: KindSingle, Anchor: anchor}
	first, last := anchor, anchor
	screening := anchor.Duration()

	if before != nil {
		s := before.session
		p.Before = &s
		p.Kind = KindBefore
		first = s
		screening += s.Duration()
		p.Legs = append(p.Legs, TransitLeg{
			From:           s.TheaterName,
			To:             anchor.TheaterName,
			TransitMinutes: before.minutes,
			BufferMinutes:  g.buffer,
		})
		p.TransitMinutes += before.minutes + g.buffer
	}
	if after != nil {
		s := after.session
		p.After = &s
		if p.Before != nil {
			p.Kind = KindTriple
		} else {
			p.Kind = KindAfter
		}
		last = s
		screening += s.Duration()
		p.Legs = append(p.Legs, TransitLeg{
			From:           anchor.TheaterName,
			To:             s.TheaterName,
			TransitMinutes: after.minutes,
			BufferMinutes:  g.buffer,
		})
		p.TransitMinutes += after.minutes + g.buffer
	}

	p.SpanMinutes = last.EndMin - first.StartMin
	p.ScreeningMinutes = screening
	p.ID = planID(p.Kind, p.Sessions())
	return p
}
