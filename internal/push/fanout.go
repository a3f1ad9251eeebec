package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/cinetrack/backend/internal/common"
	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/models"
)

// TokenSource is the part of the device token store the fanout needs.
type TokenSource interface {
	GetTokensByUserID(ctx context.Context, userID uint) ([]models.DeviceToken, error)
	PurgeToken(ctx context.Context, token string) error
}

// Fanout sends a job to every registered device of its recipient.
type Fanout struct {
	tokens TokenSource
	sender Sender
	log    logging.Logger
}

func NewFanout(tokens TokenSource, sender Sender, log logging.Logger) *Fanout {
	return &Fanout{tokens: tokens, sender: sender, log: log.With("component", "push")}
}

// Deliver never returns an error: failures are logged per endpoint and dead
// tokens are purged.
func (f *Fanout) Deliver(ctx context.Context, job Job) {
	tokens, err := f.tokens.GetTokensByUserID(ctx, job.RecipientID)
	if err != nil {
		f.log.Error(ctx, "load device tokens", "recipient_id", job.RecipientID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	sent := 0
	for _, dt := range tokens {
		err := f.sender.Send(ctx, Endpoint{Token: dt.Token, Platform: dt.Platform}, job)
		if err == nil {
			sent++
			continue
		}

		if errors.Is(err, ErrUnregistered) {
			if perr := f.tokens.PurgeToken(ctx, dt.Token); perr != nil {
				f.log.Warn(ctx, "purge dead token", "device_id", dt.ID, "error", perr)
			} else {
				f.log.Info(ctx, "purged dead token", "device_id", dt.ID, "platform", dt.Platform)
			}
			continue
		}
		f.log.Warn(ctx, "push failed",
			"recipient_id", job.RecipientID,
			"device_id", dt.ID,
			"error", fmt.Errorf("%w: %v", common.ErrDeliveryFailure, err))
	}

	f.log.Info(ctx, "push fanout done",
		"recipient_id", job.RecipientID,
		"notification_id", job.NotificationID,
		"sent", sent,
		"endpoints", len(tokens))
}
