package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ktokiya/eigaplan/internal/middleware"
	"github.com/ktokiya/eigaplan/internal/planner"
	"github.com/ktokiya/eigaplan/internal/queue"
	"github.com/ktokiya/eigaplan/internal/repository"
	queue_publisher "github.com/ktokiya/eigaplan/internal/service"
	"github.com/ktokiya/eigaplan/internal/timeutil"
)

// PlanHandler serves plan optimization and retrieval.
type PlanHandler struct {
	Optimizer   *planner.Optimizer
	Plans       *repository.PlanRepo
	DemoEnabled bool
}

func NewPlanHandler(o *planner.Optimizer, p *repository.PlanRepo, demoEnabled bool) *PlanHandler {
	return &PlanHandler{Optimizer: o, Plans: p, DemoEnabled: demoEnabled}
}

type optimizeReq struct {
	ShowtimeID uint64 `json:"showtime_id"`
	TimeFrom   string `json:"time_from"`
	TimeTo     string `json:"time_to"`
	PlanFilter string `json:"plan_filter"`
	Source     string `json:"source"`
	Save       bool   `json:"save"`
}

type optimizeResp struct {
	Plans   []planner.ViewingPlan `json:"plans"`
	Count   int                   `json:"count"`
	PlanRef string                `json:"plan_ref,omitempty"`
}

// Optimize runs the viewing-plan pipeline for an anchor showtime and a
// caller time window. Fabricated showcase plans are served only when the
// deployment enables them and the request explicitly asks source=demo;
// they are never mixed into real output. With save=true the top plan is
// persisted through the optimizer facade and its ref returned; saving
// requires authentication and live results.
func (h *PlanHandler) Optimize(c echo.Context) error {
	var req optimizeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ShowtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id required"})
	}
	filter, err := planner.ParseKindFilter(strings.TrimSpace(req.PlanFilter))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan_filter must be one of all,single,before,after,triple"})
	}

	var demo bool
	switch strings.ToLower(strings.TrimSpace(req.Source)) {
	case "", "live":
	case "demo":
		demo = true
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source must be live or demo"})
	}
	if demo && !h.DemoEnabled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "demo plans disabled"})
	}
	if demo && req.Save {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "demo plans cannot be saved"})
	}

	var userID *uint64
	if req.Save {
		uid, ok := middleware.AuthUserID(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required to save plans"})
		}
		userID = &uid
	}

	ctx := c.Request().Context()
	var plans []planner.ViewingPlan
	if demo {
		plans, err = h.Optimizer.DemoPlans(ctx, req.ShowtimeID, req.TimeFrom, req.TimeTo)
		if err == nil {
			plans = filterKinds(plans, filter)
		}
	} else {
		plans, err = h.Optimizer.Optimize(ctx, req.ShowtimeID, req.TimeFrom, req.TimeTo, filter)
	}
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrAnchorNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "anchor showtime not found"})
		case errors.Is(err, planner.ErrInvalidWindow),
			errors.Is(err, timeutil.ErrMalformedClock),
			errors.Is(err, timeutil.ErrClockRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time window"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "optimization failed"})
		}
	}

	resp := optimizeResp{Plans: plans, Count: len(plans)}
	if resp.Plans == nil {
		resp.Plans = []planner.ViewingPlan{}
	}

	if req.Save && len(plans) > 0 {
		ref, err := h.Optimizer.WithStore(h.Plans.ForUser(userID)).SaveTop(ctx, plans)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save plan failed"})
		}
		resp.PlanRef = ref
		// best effort only: the save already succeeded and a broker
		// outage must not fail the request
		go publishPlanSaved(ref, userID, plans[0])
	}

	return c.JSON(http.StatusOK, resp)
}

// filterKinds applies the plan-kind filter to an already ranked list.
// Demo output needs this here because DemoPlans builds all shapes.
func filterKinds(plans []planner.ViewingPlan, filter planner.KindFilter) []planner.ViewingPlan {
	if filter == "" || filter == planner.FilterAll {
		return plans
	}
	kept := plans[:0]
	for _, p := range plans {
		if filter.Matches(p.Kind) {
			kept = append(kept, p)
		}
	}
	return kept
}

// planSavedEvent assembles the broker payload for a persisted plan.
func planSavedEvent(ref string, userID *uint64, plan planner.ViewingPlan, savedAt time.Time) queue.PlanSavedEvent {
	titles := make([]string, 0, 3)
	for _, s := range plan.Sessions() {
		titles = append(titles, s.Title)
	}
	return queue.PlanSavedEvent{
		PlanRef:        ref,
		UserID:         userID,
		AnchorID:       plan.Anchor.ID,
		PlanKind:       string(plan.Kind),
		Date:           plan.Anchor.Date,
		MovieTitles:    titles,
		Score:          plan.Score,
		SpanMinutes:    plan.SpanMinutes,
		TransitMinutes: plan.TransitMinutes,
		SavedAt:        savedAt.Format(time.RFC3339),
	}
}

func publishPlanSaved(ref string, userID *uint64, plan planner.ViewingPlan) {
	ev := planSavedEvent(ref, userID, plan, time.Now().UTC())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := queue_publisher.PublishPlanSaved(ctx, ev); err != nil {
		log.Printf("plan.saved publish skipped: %v", err)
	}
}
