package handlers

import (
	"net/http"

	"github.com/anonto42/cinetrack/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow graph HTTP requests
type FollowHandler struct {
	followService *services.FollowService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.DELETE("/users/:id/follower", h.RemoveFollower)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
	g.GET("/users/stats", h.GetStats)

	g.GET("/follow-requests", h.GetFollowRequests)
	g.POST("/follow-requests/:id/accept", h.AcceptRequest)
	g.POST("/follow-requests/:id/reject", h.RejectRequest)
}

// FollowUser follows a user; private targets get a pending request
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	status, err := h.followService.Follow(c.Request().Context(), currentUserID, targetID)
	if err != nil {
		return toHTTPError(err)
	}

	return respondOK(c, echo.Map{"status": status, "follow_status": status.Label()})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	if err := h.followService.Unfollow(c.Request().Context(), currentUserID, targetID); err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, echo.Map{"following": false})
}

// RemoveFollower removes someone who follows the current user
func (h *FollowHandler) RemoveFollower(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	followerID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	if err := h.followService.RemoveFollower(c.Request().Context(), currentUserID, followerID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	userID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	users, err := h.followService.ListFollowers(c.Request().Context(), currentUserID, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, echo.Map{"users": users})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	userID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	users, err := h.followService.ListFollowing(c.Request().Context(), currentUserID, userID)
	if err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, echo.Map{"users": users})
}

// GetStats returns the current user's follower, following and pending counts
func (h *FollowHandler) GetStats(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	stats, err := h.followService.Stats(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, stats)
}

// GetFollowRequests lists pending requests addressed to the current user
func (h *FollowHandler) GetFollowRequests(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requests, err := h.followService.ListPendingRequests(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, echo.Map{"requests": requests})
}

func (h *FollowHandler) AcceptRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := parseIDParam(c, "id", "request")
	if err != nil {
		return err
	}

	if err := h.followService.AcceptRequest(c.Request().Context(), currentUserID, requestID); err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, echo.Map{"status": "accepted"})
}

func (h *FollowHandler) RejectRequest(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := parseIDParam(c, "id", "request")
	if err != nil {
		return err
	}

	if err := h.followService.RejectRequest(c.Request().Context(), currentUserID, requestID); err != nil {
		return toHTTPError(err)
	}
	return respondOK(c, echo.Map{"status": "rejected"})
}
