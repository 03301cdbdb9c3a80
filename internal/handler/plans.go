package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ktokiya/eigaplan/internal/middleware"
	"github.com/ktokiya/eigaplan/internal/repository"
)

// GetPlan returns a stored plan by its opaque ref. Refs are unguessable
// UUIDs, so retrieval is public.
func (h *PlanHandler) GetPlan(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan ref required"})
	}
	p, err := h.Plans.GetByRef(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, p)
}

// MyPlans lists the authenticated user's saved plans.
func (h *PlanHandler) MyPlans(c echo.Context) error {
	uid, ok := middleware.AuthUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Plans.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	if items == nil {
		items = []repository.SavedPlan{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "total": len(items)})
}
