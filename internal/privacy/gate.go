// Package privacy decides who may see a user's protected profile content.
package privacy

import "github.com/anonto42/cinetrack/backend/internal/models"

// CanView reports whether viewerID may see target's profile content given the
// status of the viewer -> target edge. models.FollowStatusNone means there is no edge.
func CanView(viewerID uint, target models.User, status models.FollowStatus) bool {
	if viewerID == target.ID {
		return true
	}
	if !target.IsPrivate {
		return true
	}
	return status == models.FollowStatusAccepted
}
