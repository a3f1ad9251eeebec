package models

import "time"

// NotificationType enumerates what happened.
type NotificationType string

const (
	NotificationNewFollower           NotificationType = "new_follower"
	NotificationFollowRequestAccepted NotificationType = "follow_request_accepted"
	NotificationNewFollowRequest      NotificationType = "new_follow_request"

	// client-only informational types
	NotificationMovieRecommendation NotificationType = "movie_recommendation"
	NotificationTrendingMovie       NotificationType = "trending_movie"
)

// NotificationSource tells social-graph events apart from engagement nudges.
type NotificationSource string

const (
	SourceGraph      NotificationSource = "graph"
	SourceEngagement NotificationSource = "engagement"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID              uint               `json:"id" gorm:"primaryKey"`
	RecipientID     uint               `json:"recipient_id" gorm:"not null;index"`
	Type            NotificationType   `json:"type" gorm:"size:40;not null"`
	Source          NotificationSource `json:"source" gorm:"size:20;not null;default:'graph'"`
	Title           string             `json:"title"`
	Message         string             `json:"message"`
	IsRead          bool               `json:"is_read" gorm:"default:false;index"`
	RelatedUserID   *uint              `json:"related_user_id,omitempty"`
	RelatedUsername *string            `json:"related_username,omitempty" gorm:"size:50"`
	CreatedAt       time.Time          `json:"created_at" gorm:"index"`
}

// GroupedNotifications buckets a recipient's feed by age.
type GroupedNotifications struct {
	Today     []Notification `json:"today"`
	Yesterday []Notification `json:"yesterday"`
	ThisWeek  []Notification `json:"thisWeek"`
	Older     []Notification `json:"older"`
}
