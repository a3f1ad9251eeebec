package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// UsernameChangeCooldown is how long a user waits between username changes.
const UsernameChangeCooldown = 14 * 24 * time.Hour

// User is owned by the identity service; this backend only reads it.
type User struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	Username           string     `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Email              string     `json:"email" gorm:"not null;uniqueIndex"`
	Avatar             *string    `json:"avatar,omitempty"`
	IsPrivate          bool       `json:"is_private" gorm:"default:false"`
	FirebaseUID        *string    `json:"-" gorm:"uniqueIndex"`
	LastUsernameChange *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
}

// NextUsernameChangeAt returns when the username may next change, or nil if it may change now.
func (u *User) NextUsernameChangeAt(now time.Time) *time.Time {
	if u.LastUsernameChange == nil {
		return nil
	}
	next := u.LastUsernameChange.Add(UsernameChangeCooldown)
	if !now.Before(next) {
		return nil
	}
	return &next
}

// UserSummary is the compact form used in lists and search results.
type UserSummary struct {
	ID             uint    `json:"id"`
	Username       string  `json:"username"`
	Avatar         *string `json:"avatar,omitempty"`
	IsPrivate      bool    `json:"is_private"`
	FollowStatus   *string `json:"follow_status,omitempty"`
	FollowersCount int64   `json:"followers_count"`
	FollowingCount int64   `json:"following_count"`
}

// FollowRequest is a pending edge as shown to its target.
type FollowRequest struct {
	ID        uint        `json:"id"`
	Requester UserSummary `json:"requester"`
	CreatedAt time.Time   `json:"created_at"`
}

// UserStats are the caller's live counters.
type UserStats struct {
	FollowersCount       int64 `json:"followers_count"`
	FollowingCount       int64 `json:"following_count"`
	PendingRequestsCount int64 `json:"pending_requests_count"`
}

// ProfileVisibility is the privacy-gated read of another user's profile.
type ProfileVisibility struct {
	Status         FollowStatus `json:"-"`
	CanView        bool         `json:"can_view"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
}

// UserProfile is the response of the profile endpoint.
type UserProfile struct {
	ID                        uint        `json:"id"`
	Username                  string      `json:"username"`
	Email                     *string     `json:"email,omitempty"`
	Avatar                    *string     `json:"avatar,omitempty"`
	IsPrivate                 bool        `json:"is_private"`
	FollowStatus              *string     `json:"follow_status,omitempty"`
	CanViewProfile            bool        `json:"can_view_profile"`
	FollowersCount            int64       `json:"followers_count"`
	FollowingCount            int64       `json:"following_count"`
	UsernameChangeAvailableAt *time.Time  `json:"username_change_available_at,omitempty"`
	FavoriteMovies            []UserMovie `json:"favorite_movies,omitempty"`
	WatchedMovies             []UserMovie `json:"watched_movies,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
