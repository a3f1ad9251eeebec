package models

import "time"

// FollowStatus is the state of a directed follow edge.
type FollowStatus string

const (
	// FollowStatusNone stands for "no edge between the two users". It is never stored.
	FollowStatusNone     FollowStatus = ""
	FollowStatusPending  FollowStatus = "pending"
	FollowStatusAccepted FollowStatus = "accepted"
	FollowStatusRejected FollowStatus = "rejected"
)

// Valid reports whether s is one of the stored statuses.
func (s FollowStatus) Valid() bool {
	switch s {
	case FollowStatusPending, FollowStatusAccepted, FollowStatusRejected:
		return true
	}
	return false
}

// Label maps a viewer's edge status to the wording used by clients.
func (s FollowStatus) Label() string {
	switch s {
	case FollowStatusAccepted:
		return "following"
	case FollowStatusPending:
		return "pending"
	default:
		return "not_following"
	}
}

// Direction selects which side of an edge a count or listing is about.
type Direction int

const (
	// Followers are edges where the user is the one being followed.
	Followers Direction = iota
	// Following are edges where the user is the follower.
	Following
)

// Follow represents an Instagram-style follow relationship with approval for private accounts
type Follow struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	FollowerID  uint         `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follower_following"`
	FollowingID uint         `json:"following_id" gorm:"not null;index;uniqueIndex:idx_follower_following;index:idx_following_status,priority:1"`
	Status      FollowStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_following_status,priority:2"`
	CreatedAt   time.Time    `json:"created_at"`
}

// FollowResult is returned to the caller of a follow action so the UI can render without a refetch.
type FollowResult struct {
	Status FollowStatus `json:"status"`
}
