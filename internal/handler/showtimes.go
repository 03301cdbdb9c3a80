package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ktokiya/eigaplan/internal/planner"
	"github.com/ktokiya/eigaplan/internal/repository"
	"github.com/ktokiya/eigaplan/internal/timeutil"
)

// CatalogHandler serves read-only catalog endpoints: showtimes,
// theaters, distances and stats.
type CatalogHandler struct {
	Showtimes *repository.ShowtimeRepo
	Theaters  *repository.TheaterRepo
	Distances *repository.DistanceRepo
	Stats     *repository.StatsRepo
}

func NewCatalogHandler(s *repository.ShowtimeRepo, t *repository.TheaterRepo, d *repository.DistanceRepo, st *repository.StatsRepo) *CatalogHandler {
	return &CatalogHandler{Showtimes: s, Theaters: t, Distances: d, Stats: st}
}

// SearchShowtimes lists a date's sessions with optional filters. The
// from/to filters apply strictly: a session matches only when it lies
// entirely inside the range.
func (h *CatalogHandler) SearchShowtimes(c echo.Context) error {
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date required (YYYY-MM-DD)"})
	}
	from := strings.TrimSpace(c.QueryParam("from"))
	to := strings.TrimSpace(c.QueryParam("to"))
	for _, clk := range []string{from, to} {
		if clk == "" {
			continue
		}
		if _, err := timeutil.ToMinutes(clk); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from/to must be HH:MM"})
		}
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	q := repository.SessionSearch{
		Date:     date,
		From:     from,
		To:       to,
		Title:    strings.TrimSpace(c.QueryParam("title")),
		Theater:  strings.TrimSpace(c.QueryParam("theater")),
		Page:     page,
		PageSize: ps,
	}

	items, total, err := h.Showtimes.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "database_error",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}

// GetShowtime returns one session by ID.
func (h *CatalogHandler) GetShowtime(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	s, err := h.Showtimes.GetSession(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, planner.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, s)
}

// ListTheaters returns every known theater.
func (h *CatalogHandler) ListTheaters(c echo.Context) error {
	items, err := h.Theaters.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "total": len(items)})
}

// ListDistances returns the walking-time matrix between theaters.
func (h *CatalogHandler) ListDistances(c echo.Context) error {
	items, err := h.Distances.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "total": len(items)})
}

// GetStats returns catalog row counts and the per-date breakdown.
func (h *CatalogHandler) GetStats(c echo.Context) error {
	stats, err := h.Stats.Collect(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, stats)
}
