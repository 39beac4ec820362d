package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/analytics/:tenant_id", h.GetReport)
	api.GET("/analytics/:tenant_id/snapshot", h.GetSnapshot)
}

func (h *Handler) GetReport(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}
	report, err := h.svc.Report(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

// GetSnapshot serves the headline numbers persisted by the last report
// generation without re-scanning the claims table.
func (h *Handler) GetSnapshot(c echo.Context) error {
	snap, err := h.svc.Snapshot(c.Request().Context(), c.Param("tenant_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if snap == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no analytics snapshot for tenant")
	}
	return c.JSON(http.StatusOK, snap)
}
