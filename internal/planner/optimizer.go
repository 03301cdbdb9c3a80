package planner

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxResults caps the number of plans returned per optimization.
const DefaultMaxResults = 10

// Optimizer orchestrates candidate generation, filtering, scoring and
// ranking for one anchor session. It is a pure, synchronous computation
// over the injected collaborators and holds no mutable state, so a single
// instance may serve concurrent requests.
type Optimizer struct {
	catalog    SessionCatalog
	transit    TransitProvider
	store      PlanStore
	buffer     int
	fallback   int
	maxResults int
	demo       bool
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithPlanStore attaches a persistence sink for SaveTop.
func WithPlanStore(s PlanStore) Option { return func(o *Optimizer) { o.store = s } }

// WithBuffer overrides the safety margin in minutes.
func WithBuffer(minutes int) Option { return func(o *Optimizer) { o.buffer = minutes } }

// WithTransitFallback overrides the estimate used for unknown venue pairs.
func WithTransitFallback(minutes int) Option { return func(o *Optimizer) { o.fallback = minutes } }

// WithMaxResults overrides the result cap.
func WithMaxResults(n int) Option { return func(o *Optimizer) { o.maxResults = n } }

// WithDemoPlans enables the fabricated showcase plans served by DemoPlans.
// Real optimization output is never affected by this flag.
func WithDemoPlans(enabled bool) Option { return func(o *Optimizer) { o.demo = enabled } }

// New constructs an Optimizer bound to a catalog snapshot handle and a
// transit provider.
func New(catalog SessionCatalog, transit TransitProvider, opts ...Option) *Optimizer {
	o := &Optimizer{
		catalog:    catalog,
		transit:    transit,
		buffer:     DefaultBufferMinutes,
		fallback:   DefaultTransitMinutes,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize resolves the anchor, enumerates feasible 1-3 session plans
// inside the window and returns them sorted by score descending, truncated
// to the result cap. An anchor that does not fit the window yields an
// empty list and no error; an unknown anchor yields ErrAnchorNotFound.
func (o *Optimizer) Optimize(ctx context.Context, anchorID uint64, from, to string, filter KindFilter) ([]ViewingPlan, error) {
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

	// Unsatisfiable anchor is a valid, empty outcome.
	if !w.Contains(anchor) {
		return []ViewingPlan{}, nil
	}

	sessions, err := o.catalog.ListSessions(ctx, anchor.Date)
	if err != nil {
		return nil, err
	}

	gen := &generator{transit: o.transit, buffer: o.buffer, fallback: o.fallback}
	cands, err := gen.candidates(ctx, anchor, sessions, w)
	if err != nil {
		return nil, err
	}

	ranked := filterAndRank(cands, w)
	if filter != "" && filter != FilterAll {
		kept := ranked[:0]
		for _, p := range ranked {
			if filter.Matches(p.Kind) {
				kept = append(kept, p)
			}
		}
		ranked = kept
	}
	if len(ranked) > o.maxResults {
		ranked = ranked[:o.maxResults]
	}
	return ranked, nil
}

// WithStore returns a shallow copy of the optimizer bound to the given
// plan store. One shared instance can then persist plans on behalf of
// different callers (the request layer binds a per-user store) without
// mutating the original.
func (o *Optimizer) WithStore(s PlanStore) *Optimizer {
	bound := *o
	bound.store = s
	return &bound
}

// SaveTop persists the highest-ranked plan via the configured PlanStore
// and returns its opaque storage identifier. Plans must come from a
// preceding Optimize call; an empty list is a caller error surfaced as
// ErrNoPlanStore-adjacent misuse rather than silently ignored.
func (o *Optimizer) SaveTop(ctx context.Context, plans []ViewingPlan) (string, error) {
	if o.store == nil {
		return "", ErrNoPlanStore
	}
	if len(plans) == 0 {
		return "", fmt.Errorf("save top: no plans to persist")
	}
	ref, err := o.store.SavePlan(ctx, plans[0])
	if err != nil {
		return "", fmt.Errorf("save top plan %s: %w", plans[0].ID, err)
	}
	return ref, nil
}
