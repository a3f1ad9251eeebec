package push

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSender struct {
	mu      sync.Mutex
	results map[string]error
	sent    []string
}

func (s *scriptedSender) Send(_ context.Context, ep Endpoint, _ Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ep.Token)
	return s.results[ep.Token]
}

func TestFanout_Deliver(t *testing.T) {
	ctx := context.Background()
	devices := memory.NewDeviceStore()
	require.NoError(t, devices.SaveToken(ctx, 7, "good", "ios"))
	require.NoError(t, devices.SaveToken(ctx, 7, "dead", "android"))
	require.NoError(t, devices.SaveToken(ctx, 7, "flaky", "web"))
	require.NoError(t, devices.SaveToken(ctx, 8, "other", "ios"))

	sender := &scriptedSender{results: map[string]error{
		"dead":  ErrUnregistered,
		"flaky": errors.New("timeout"),
	}}
	f := NewFanout(devices, sender, logging.Discard())

	f.Deliver(ctx, Job{RecipientID: 7, Type: "new_follower"})

	assert.ElementsMatch(t, []string{"good", "dead", "flaky"}, sender.sent, "every endpoint is attempted")

	left, err := devices.GetTokensByUserID(ctx, 7)
	require.NoError(t, err)
	tokens := make([]string, 0, len(left))
	for _, dt := range left {
		tokens = append(tokens, dt.Token)
	}
	assert.ElementsMatch(t, []string{"good", "flaky"}, tokens, "only unregistered tokens are purged")
}

func TestFanout_NoDevices(t *testing.T) {
	sender := &scriptedSender{}
	f := NewFanout(memory.NewDeviceStore(), sender, logging.Discard())

	f.Deliver(context.Background(), Job{RecipientID: 1})
	assert.Empty(t, sender.sent)
}
