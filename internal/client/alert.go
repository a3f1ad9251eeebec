package client

import (
	"context"

	"github.com/anonto42/cinetrack/backend/internal/logging"
)

// LogAlerter shows alerts as log lines. Used by the command-line client.
type LogAlerter struct {
	log logging.Logger
}

func NewLogAlerter(log logging.Logger) *LogAlerter {
	return &LogAlerter{log: log.With("component", "alerts")}
}

func (a *LogAlerter) Alert(n LocalNotification, badge int64) {
	a.log.Info(context.Background(), n.Title,
		"message", n.Message,
		"type", n.Type,
		"source", n.Source,
		"badge", badge)
}
