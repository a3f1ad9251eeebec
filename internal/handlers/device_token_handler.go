package handlers

import (
	"net/http"

	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/anonto42/cinetrack/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// DeviceTokenHandler registers and removes push endpoints
type DeviceTokenHandler struct {
	deviceTokenRepository repositories.DeviceTokenRepository
}

func NewDeviceTokenHandler(repo repositories.DeviceTokenRepository) *DeviceTokenHandler {
	return &DeviceTokenHandler{deviceTokenRepository: repo}
}

func (h *DeviceTokenHandler) RegisterDeviceRoutes(g *echo.Group) {
	g.POST("/devices", h.RegisterDevice)
	g.DELETE("/devices", h.UnregisterDevice)
}

func (h *DeviceTokenHandler) RegisterDevice(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.deviceTokenRepository.SaveToken(c.Request().Context(), currentUserID, req.Token, req.Platform); err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, echo.Map{"registered": true})
}

func (h *DeviceTokenHandler) UnregisterDevice(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UnregisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.deviceTokenRepository.DeleteToken(c.Request().Context(), currentUserID, req.Token); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
