package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/anonto42/cinetrack/backend/internal/push"
	"github.com/anonto42/cinetrack/backend/internal/repositories"
)

// NotifyInput describes one notification to record and push.
type NotifyInput struct {
	RecipientID     uint
	Type            models.NotificationType
	Title           string
	Message         string
	RelatedUserID   *uint
	RelatedUsername *string
}

// NotificationDispatcher records a notification and queues its push.
type NotificationDispatcher struct {
	notifications repositories.NotificationRepository
	queue         push.Queue
	log           logging.Logger
}

func NewNotificationDispatcher(notifications repositories.NotificationRepository, queue push.Queue, log logging.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifications: notifications,
		queue:         queue,
		log:           log.With("component", "dispatcher"),
	}
}

// Notify persists the notification first; a failure there fails the call and
// nothing is pushed. Queueing the push never fails the call.
func (d *NotificationDispatcher) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	n, err := d.Record(ctx, d.notifications, in)
	if err != nil {
		return nil, err
	}
	d.Push(ctx, n)
	return n, nil
}

// Record writes the notification through notifications, which may be bound to
// the caller's transaction. Call Push once that transaction has committed.
func (d *NotificationDispatcher) Record(ctx context.Context, notifications repositories.NotificationRepository, in NotifyInput) (*models.Notification, error) {
	n := &models.Notification{
		RecipientID:     in.RecipientID,
		Type:            in.Type,
		Source:          models.SourceGraph,
		Title:           in.Title,
		Message:         in.Message,
		RelatedUserID:   in.RelatedUserID,
		RelatedUsername: in.RelatedUsername,
	}
	if err := notifications.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}
	return n, nil
}

// Push queues delivery of a recorded notification. Failures are only logged.
func (d *NotificationDispatcher) Push(ctx context.Context, n *models.Notification) {
	if d.queue == nil {
		return
	}

	job := push.Job{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Type:           string(n.Type),
		Title:          n.Title,
		Body:           n.Message,
	}
	if n.RelatedUserID != nil {
		job.Data = map[string]string{"related_user_id": strconv.FormatUint(uint64(*n.RelatedUserID), 10)}
	}
	if unread, err := d.notifications.GetUnreadCount(ctx, n.RecipientID); err == nil {
		badge := int(unread)
		job.Badge = &badge
	}

	if err := d.queue.Enqueue(ctx, job); err != nil {
		d.log.Warn(ctx, "push not queued", "notification_id", n.ID, "error", err)
	}
}
