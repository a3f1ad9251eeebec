package memory

import (
	"context"
	"sync"

	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/anonto42/cinetrack/backend/internal/repositories"
)

// GraphTx implements repositories.GraphTx over the in-memory stores. Writes are
// visible to other callers as they happen; a failed unit of work undoes its
// own writes in reverse order.
type GraphTx struct {
	follows       *FollowStore
	notifications repositories.NotificationRepository
}

func NewGraphTx(follows *FollowStore, notifications repositories.NotificationRepository) *GraphTx {
	return &GraphTx{follows: follows, notifications: notifications}
}

func (t *GraphTx) InTx(ctx context.Context, fn func(repositories.FollowRepository, repositories.NotificationRepository) error) error {
	j := &journal{}
	err := fn(
		&journaledFollows{FollowStore: t.follows, j: j},
		&journaledNotifications{NotificationRepository: t.notifications, j: j},
	)
	if err != nil {
		j.rollback()
	}
	return err
}

type journal struct {
	mu   sync.Mutex
	undo []func()
}

func (j *journal) record(f func()) {
	j.mu.Lock()
	j.undo = append(j.undo, f)
	j.mu.Unlock()
}

func (j *journal) rollback() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

type journaledFollows struct {
	*FollowStore
	j *journal
}

func (f *journaledFollows) UpsertEdge(_ context.Context, followerID, followingID uint, desired models.FollowStatus) (*models.Follow, bool, error) {
	edge, prev, err := f.upsert(followerID, followingID, desired)
	if err != nil {
		return nil, false, err
	}
	if edge.Status == prev {
		return edge, false, nil
	}
	id := edge.ID
	f.j.record(func() { f.revert(id, prev) })
	return edge, true, nil
}

func (f *journaledFollows) SetStatus(ctx context.Context, edgeID, actingUserID uint, status models.FollowStatus) (*models.Follow, error) {
	edge, err := f.FollowStore.SetStatus(ctx, edgeID, actingUserID, status)
	if err != nil {
		return nil, err
	}
	f.j.record(func() { f.revert(edgeID, models.FollowStatusPending) })
	return edge, nil
}

type journaledNotifications struct {
	repositories.NotificationRepository
	j *journal
}

func (n *journaledNotifications) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := n.NotificationRepository.CreateNotification(ctx, notification); err != nil {
		return err
	}
	id, recipient := notification.ID, notification.RecipientID
	n.j.record(func() {
		_ = n.NotificationRepository.Delete(context.Background(), id, recipient)
	})
	return nil
}
