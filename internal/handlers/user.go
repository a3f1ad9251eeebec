package handlers

import (
	"net/http"

	"github.com/anonto42/cinetrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile and search requests
type UserHandler struct {
	followService *services.FollowService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(followService *services.FollowService) *UserHandler {
	return &UserHandler{followService: followService}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id/profile", h.GetProfile)
}

// GetProfile returns a user's profile as seen by the current user
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	profile, err := h.followService.GetProfile(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, profile)
}

// SearchUsers searches usernames, at most 20 results, never the caller
func (h *UserHandler) SearchUsers(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	users, err := h.followService.SearchUsers(c.Request().Context(), currentUserID, c.QueryParam("q"))
	if err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, echo.Map{"users": users})
}
