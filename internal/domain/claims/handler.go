package claims

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rcm/rcm/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/claims/upload", h.Upload)
	api.GET("/claims", h.List)
	api.DELETE("/tenants/:tenant_id/data", h.PurgeTenant)
}

// Upload ingests a claims CSV for a tenant. The file arrives as multipart
// form data under the "file" field.
func (h *Handler) Upload(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer file.Close()

	count, err := h.svc.UploadCSV(c.Request().Context(), tenantID, file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":      "claims uploaded successfully",
		"claims_count": count,
		"tenant_id":    tenantID,
	})
}

func (h *Handler) List(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_id is required")
	}
	pg := pagination.FromContext(c)

	docs, total, err := h.svc.List(c.Request().Context(), tenantID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if docs == nil {
		docs = []*Document{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(docs, total, pg.Limit, pg.Offset))
}

func (h *Handler) PurgeTenant(c echo.Context) error {
	tenantID := c.Param("tenant_id")
	deleted, err := h.svc.PurgeTenant(c.Request().Context(), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":        "tenant data deleted",
		"tenant_id":      tenantID,
		"claims_deleted": deleted,
	})
}
