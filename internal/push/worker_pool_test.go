package push

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_ProcessesAndDrainsOnStop(t *testing.T) {
	var handled atomic.Int32
	p := NewWorkerPool(2, 16, func(ctx context.Context, job Job) {
		handled.Add(1)
	}, logging.Discard())
	p.Start(context.Background())

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Enqueue(context.Background(), Job{NotificationID: uint(i + 1)}))
	}
	p.Stop()

	assert.Equal(t, int32(10), handled.Load())
	assert.ErrorIs(t, p.Enqueue(context.Background(), Job{}), ErrQueueClosed)
	p.Stop()
}

func TestWorkerPool_FullQueueDropsWithoutBlocking(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	started := make(chan struct{})

	p := NewWorkerPool(1, 1, func(ctx context.Context, job Job) {
		once.Do(func() { close(started) })
		<-release
	}, logging.Discard())
	p.Start(context.Background())

	require.NoError(t, p.Enqueue(context.Background(), Job{NotificationID: 1}))
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("worker did not pick up the first job")
	}

	require.NoError(t, p.Enqueue(context.Background(), Job{NotificationID: 2}))

	done := make(chan error, 1)
	go func() { done <- p.Enqueue(context.Background(), Job{NotificationID: 3}) }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(release)
	p.Stop()
}

func TestWorkerPool_HandlerContextOutlivesCancelledStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	p := NewWorkerPool(1, 1, func(ctx context.Context, job Job) {
		errs <- ctx.Err()
	}, logging.Discard())
	p.Start(ctx)
	cancel()

	require.NoError(t, p.Enqueue(context.Background(), Job{}))
	p.Stop()
	assert.NoError(t, <-errs)
}
