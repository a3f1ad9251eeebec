package push

import (
	"context"

	"github.com/anonto42/cinetrack/backend/internal/logging"
)

// LogSender only logs what would be pushed. Used when PUSH_MODE=log.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log.With("component", "push_log")}
}

func (s *LogSender) Send(ctx context.Context, ep Endpoint, job Job) error {
	s.log.Info(ctx, "simulated push",
		"platform", ep.Platform,
		"recipient_id", job.RecipientID,
		"type", job.Type,
		"title", job.Title)
	return nil
}
