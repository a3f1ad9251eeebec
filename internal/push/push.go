// Package push delivers best-effort device notifications. Jobs are queued
// after the notification row is committed and fanned out to every device
// token of the recipient by a background worker.
package push

import (
	"context"
	"errors"
	"strconv"
)

var (
	// ErrUnregistered means the provider no longer knows the token; it should be removed.
	ErrUnregistered = errors.New("push endpoint unregistered")
	ErrQueueFull    = errors.New("push queue full")
	ErrQueueClosed  = errors.New("push queue closed")
)

// Job is one notification to push to all of a recipient's devices.
type Job struct {
	NotificationID uint              `json:"notification_id"`
	RecipientID    uint              `json:"recipient_id"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Badge          *int              `json:"badge,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
}

// Payload is the data map sent alongside the visible notification.
func (j Job) Payload() map[string]string {
	data := make(map[string]string, len(j.Data)+2)
	for k, v := range j.Data {
		data[k] = v
	}
	data["type"] = j.Type
	if j.NotificationID != 0 {
		data["notification_id"] = strconv.FormatUint(uint64(j.NotificationID), 10)
	}
	return data
}

// Endpoint is a single device to deliver to.
type Endpoint struct {
	Token    string
	Platform string
}

// Sender delivers a job to one endpoint.
type Sender interface {
	Send(ctx context.Context, ep Endpoint, job Job) error
}

// Queue accepts jobs without waiting for delivery.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Handler processes a dequeued job.
type Handler func(ctx context.Context, job Job)
