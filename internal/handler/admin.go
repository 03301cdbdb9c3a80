package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ktokiya/eigaplan/internal/ingest"
	"github.com/ktokiya/eigaplan/internal/repository"
)

// AdminHandler serves ingestion endpoints, gated to the ADMIN role.
type AdminHandler struct {
	Importer *ingest.Importer
	Crawls   *repository.CrawlStatusRepo
}

func NewAdminHandler(im *ingest.Importer, cr *repository.CrawlStatusRepo) *AdminHandler {
	return &AdminHandler{Importer: im, Crawls: cr}
}

const maxImportBody = 16 << 20

// ImportSchedule ingests a crawled schedule export. The export comes
// either inline in the request body or from a URL given in the
// source_url query parameter.
func (h *AdminHandler) ImportSchedule(c echo.Context) error {
	ctx := c.Request().Context()

	var payload []byte
	if src := strings.TrimSpace(c.QueryParam("source_url")); src != "" {
		body, err := ingest.FetchExport(ctx, src)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "fetch failed", "message": err.Error()})
		}
		payload = body
	} else {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportBody))
		if err != nil || len(body) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule export body or source_url required"})
		}
		payload = body
	}

	res, err := h.Importer.Import(ctx, payload)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "import failed", "message": err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

// CrawlStatus lists per-theater import bookkeeping.
func (h *AdminHandler) CrawlStatus(c echo.Context) error {
	items, err := h.Crawls.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	if items == nil {
		items = []repository.CrawlStatus{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "total": len(items)})
}
