package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// FCMSender delivers through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) Send(ctx context.Context, ep Endpoint, job Job) error {
	_, err := s.client.Send(ctx, buildMessage(ep, job))
	if err == nil {
		return nil
	}
	if messaging.IsUnregistered(err) || messaging.IsSenderIDMismatch(err) {
		return fmt.Errorf("%w: %v", ErrUnregistered, err)
	}
	return fmt.Errorf("failed to send FCM message: %w", err)
}

// buildMessage shapes the payload per platform: APNs sound and badge on iOS,
// high priority on Android, a webpush notification on the web.
func buildMessage(ep Endpoint, job Job) *messaging.Message {
	msg := &messaging.Message{
		Token: ep.Token,
		Notification: &messaging.Notification{
			Title: job.Title,
			Body:  job.Body,
		},
		Data: job.Payload(),
	}

	switch ep.Platform {
	case "ios":
		msg.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: job.Badge,
				},
			},
		}
	case "android":
		msg.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "social",
			},
		}
	default:
		msg.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: job.Title,
				Body:  job.Body,
				Icon:  "/icon-192.svg",
			},
		}
	}
	return msg
}
