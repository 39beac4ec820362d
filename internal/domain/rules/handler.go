package rules

import (
	"errors"
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
	api.POST("/rules", h.Upload)
	api.GET("/rules/:tenant_id", h.Get)
}

func (h *Handler) Upload(c echo.Context) error {
	var src Source
	if err := c.Bind(&src); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Upload(c.Request().Context(), &src); err != nil {
		if errors.Is(err, ErrInvalidSource) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message":   "rules uploaded successfully",
		"tenant_id": src.TenantID,
	})
}

func (h *Handler) Get(c echo.Context) error {
	src, err := h.svc.Get(c.Request().Context(), c.Param("tenant_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if src == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no rule source for tenant")
	}
	return c.JSON(http.StatusOK, src)
}
