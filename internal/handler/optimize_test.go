package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ktokiya/eigaplan/internal/planner"
)

// stubCatalog serves a fixed session snapshot.
type stubCatalog struct {
	sessions []planner.Session
}

func (f *stubCatalog) ListSessions(_ context.Context, date string) ([]planner.Session, error) {
	out := make([]planner.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *stubCatalog) GetSession(_ context.Context, id uint64) (planner.Session, error) {
	for _, s := range f.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return planner.Session{}, planner.ErrSessionNotFound
}

// stubTransit reports every venue pair as unknown, so the optimizer
// falls back to its configured estimate.
type stubTransit struct{}

func (stubTransit) TransitMinutes(_ context.Context, _, _ uint64) (int, error) {
	return 0, planner.ErrTransitUnknown
}

func anchorSession() planner.Session {
	s := planner.Session{
		ID:          1,
		TheaterID:   1,
		TheaterName: "Shinjuku Piccadilly",
		Title:       "The Long Goodbye",
		Date:        "2025-07-14",
		StartsAt:    "13:00",
		EndsAt:      "15:00",
		PriceYen:    2000,
	}
	if err := s.DeriveMinutes(); err != nil {
		panic(err)
	}
	return s
}

func newTestPlanHandler(demoEnabled bool) *PlanHandler {
	opt := planner.New(
		&stubCatalog{sessions: []planner.Session{anchorSession()}},
		stubTransit{},
		planner.WithDemoPlans(true),
	)
	return NewPlanHandler(opt, nil, demoEnabled)
}

func postOptimize(t *testing.T, h *PlanHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/optimize", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Optimize(e.NewContext(req, rec)))
	return rec
}

type optimizeBody struct {
	Plans []planner.ViewingPlan `json:"plans"`
	Count int                   `json:"count"`
}

func decodeOptimize(t *testing.T, rec *httptest.ResponseRecorder) optimizeBody {
	t.Helper()
	var body optimizeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// A catalog with only the anchor session cannot satisfy plan_filter=before.
// The response must be empty even with showcase plans enabled: fabricated
// output needs an explicit source=demo request.
func TestOptimizeEmptyResultDoesNotFabricate(t *testing.T) {
	h := newTestPlanHandler(true)
	rec := postOptimize(t, h, `{"showtime_id":1,"time_from":"09:00","time_to":"23:45","plan_filter":"before"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeOptimize(t, rec)
	require.Equal(t, 0, body.Count)
	require.Empty(t, body.Plans)
}

func TestOptimizeDemoSource(t *testing.T) {
	h := newTestPlanHandler(true)
	rec := postOptimize(t, h, `{"showtime_id":1,"time_from":"09:00","time_to":"23:45","source":"demo"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeOptimize(t, rec)
	require.Equal(t, 4, body.Count)
	for _, p := range body.Plans {
		require.True(t, p.Demo, "plan %s", p.ID)
	}
	require.Equal(t, 85.0, body.Plans[0].Score)
}

func TestOptimizeDemoHonorsKindFilter(t *testing.T) {
	h := newTestPlanHandler(true)
	rec := postOptimize(t, h, `{"showtime_id":1,"time_from":"09:00","time_to":"23:45","source":"demo","plan_filter":"before"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeOptimize(t, rec)
	require.Equal(t, 1, body.Count)
	require.Equal(t, planner.KindBefore, body.Plans[0].Kind)
	require.True(t, body.Plans[0].Demo)
}

func TestOptimizeDemoDisabled(t *testing.T) {
	h := newTestPlanHandler(false)
	rec := postOptimize(t, h, `{"showtime_id":1,"time_from":"09:00","time_to":"23:45","source":"demo"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeRejectsUnknownSource(t *testing.T) {
	h := newTestPlanHandler(true)
	rec := postOptimize(t, h, `{"showtime_id":1,"time_from":"09:00","time_to":"23:45","source":"cache"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeDemoSaveRejected(t *testing.T) {
	h := newTestPlanHandler(true)
	rec := postOptimize(t, h, `{"showtime_id":1,"time_from":"09:00","time_to":"23:45","source":"demo","save":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanSavedEventFields(t *testing.T) {
	anchor := anchorSession()
	before := anchor
	before.ID = 2
	before.Title = "Opening Act"
	before.StartsAt, before.EndsAt = "10:00", "12:00"
	require.NoError(t, before.DeriveMinutes())

	plan := planner.ViewingPlan{
		ID:             "before_only_2_1",
		Kind:           planner.KindBefore,
		Anchor:         anchor,
		Before:         &before,
		SpanMinutes:    300,
		TransitMinutes: 30,
		Score:          42.5,
	}
	uid := uint64(7)
	savedAt := time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)

	ev := planSavedEvent("ref-abc", &uid, plan, savedAt)
	require.Equal(t, "ref-abc", ev.PlanRef)
	require.Equal(t, &uid, ev.UserID)
	require.Equal(t, uint64(1), ev.AnchorID)
	require.Equal(t, "before_only", ev.PlanKind)
	require.Equal(t, "2025-07-14", ev.Date)
	require.Equal(t, []string{"Opening Act", "The Long Goodbye"}, ev.MovieTitles)
	require.Equal(t, 42.5, ev.Score)
	require.Equal(t, 300, ev.SpanMinutes)
	require.Equal(t, 30, ev.TransitMinutes)
	require.Equal(t, "2025-07-14T12:00:00Z", ev.SavedAt)
}
