package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/anonto42/cinetrack/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort")

func TestGraphTx_FailureUndoesNewEdgeAndNotification(t *testing.T) {
	ctx := context.Background()
	follows, notifications := NewFollowStore(), NewNotificationStore()
	graph := NewGraphTx(follows, notifications)

	err := graph.InTx(ctx, func(f repositories.FollowRepository, n repositories.NotificationRepository) error {
		_, changed, err := f.UpsertEdge(ctx, 1, 2, models.FollowStatusAccepted)
		require.NoError(t, err)
		require.True(t, changed)
		require.NoError(t, n.CreateNotification(ctx, &models.Notification{RecipientID: 2, Type: models.NotificationNewFollower}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	edge, err := follows.GetEdge(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, edge)
	unread, _ := notifications.GetUnreadCount(ctx, 2)
	assert.Zero(t, unread)

	// the pair can be followed again afterwards
	_, changed, err := follows.UpsertEdge(ctx, 1, 2, models.FollowStatusAccepted)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestGraphTx_FailureRestoresPriorStatus(t *testing.T) {
	ctx := context.Background()
	follows := NewFollowStore()
	graph := NewGraphTx(follows, NewNotificationStore())

	edge, _, err := follows.UpsertEdge(ctx, 1, 2, models.FollowStatusPending)
	require.NoError(t, err)
	_, err = follows.SetStatus(ctx, edge.ID, 2, models.FollowStatusRejected)
	require.NoError(t, err)

	err = graph.InTx(ctx, func(f repositories.FollowRepository, _ repositories.NotificationRepository) error {
		_, _, err := f.UpsertEdge(ctx, 1, 2, models.FollowStatusPending)
		require.NoError(t, err)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, err := follows.GetEdge(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusRejected, got.Status)

	_, _, err = follows.UpsertEdge(ctx, 3, 2, models.FollowStatusPending)
	require.NoError(t, err)
	pending, _ := follows.GetEdge(ctx, 3, 2)
	err = graph.InTx(ctx, func(f repositories.FollowRepository, _ repositories.NotificationRepository) error {
		_, err := f.SetStatus(ctx, pending.ID, 2, models.FollowStatusAccepted)
		require.NoError(t, err)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, _ = follows.GetEdge(ctx, 3, 2)
	assert.Equal(t, models.FollowStatusPending, got.Status)
}

func TestGraphTx_SuccessKeepsWrites(t *testing.T) {
	ctx := context.Background()
	follows, notifications := NewFollowStore(), NewNotificationStore()
	graph := NewGraphTx(follows, notifications)

	err := graph.InTx(ctx, func(f repositories.FollowRepository, n repositories.NotificationRepository) error {
		if _, _, err := f.UpsertEdge(ctx, 1, 2, models.FollowStatusAccepted); err != nil {
			return err
		}
		return n.CreateNotification(ctx, &models.Notification{RecipientID: 2, Type: models.NotificationNewFollower})
	})
	require.NoError(t, err)

	edge, _ := follows.GetEdge(ctx, 1, 2)
	require.NotNil(t, edge)
	assert.Equal(t, models.FollowStatusAccepted, edge.Status)
	unread, _ := notifications.GetUnreadCount(ctx, 2)
	assert.Equal(t, int64(1), unread)
}
