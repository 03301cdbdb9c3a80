package planner

import "sort"

// Scoring weights. The score rewards covering more distinct titles and
// penalizes the transit-to-screening ratio and the idle span beyond
// screening time. The function is deterministic so rankings are stable
// across calls with the same snapshot.
const (
	titleRewardWeight    = 30.0
	transitPenaltyWeight = 40.0
	idlePenaltyWeight    = 0.25
)

// score computes the desirability of a plan.
//
//	score = 30*sessions - 40*transit/screening - 0.25*(span - screening)
//
// transit already includes buffers; screening is always positive because
// sessions reject end <= start.
func score(p ViewingPlan) float64 {
	sessions := float64(len(p.Sessions()))
	screening := float64(p.ScreeningMinutes)
	transit := float64(p.TransitMinutes)
	idle := float64(p.SpanMinutes - p.ScreeningMinutes)
	return titleRewardWeight*sessions - transitPenaltyWeight*transit/screening - idlePenaltyWeight*idle
}

// filterAndRank validates, scores, deduplicates and orders candidates.
// Invalid candidates are dropped, not errored: the generator already did
// the feasibility work and validation here is the strict window gate.
func filterAndRank(cands []ViewingPlan, w Window) []ViewingPlan {
	seenID := map[string]bool{}
	seenTitles := map[string]bool{}
	out := make([]ViewingPlan, 0, len(cands))

	for _, p := range cands {
		if !validPlan(p, w) {
			continue
		}
		// Content-addressed dedup: first-encountered survives.
		ck, tk := p.CanonicalKey(), p.TitleKey()
		if seenID[ck] || seenTitles[tk] {
			continue
		}
		seenID[ck] = true
		seenTitles[tk] = true
		p.Score = score(p)
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if len(out[i].Legs) != len(out[j].Legs) {
			return len(out[i].Legs) < len(out[j].Legs)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// validPlan checks the strict window constraints: every session inside the
// window, the plan span within the window span, and pairwise distinct
// titles.
func validPlan(p ViewingPlan, w Window) bool {
	for _, s := range p.Sessions() {
		if !w.Contains(s) {
			return false
		}
	}
	if p.SpanMinutes > w.Span() {
		return false
	}
	return p.titlesDistinct()
}
