package memory

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/common"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStore_NewestFirstAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewNotificationStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateNotification(ctx, &models.Notification{RecipientID: 7, Type: models.NotificationNewFollower}))
	}
	require.NoError(t, s.CreateNotification(ctx, &models.Notification{RecipientID: 8, Type: models.NotificationNewFollower}))

	page1, total, err := s.GetByRecipientID(ctx, 7, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 3)
	assert.Equal(t, uint(5), page1[0].ID, "same timestamp falls back to append order")
	assert.Equal(t, models.SourceGraph, page1[0].Source)

	page2, _, err := s.GetByRecipientID(ctx, 7, 2, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, uint(1), page2[1].ID)

	page3, _, err := s.GetByRecipientID(ctx, 7, 3, 3)
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestNotificationStore_Ownership(t *testing.T) {
	ctx := context.Background()
	s := NewNotificationStore()

	n := &models.Notification{RecipientID: 7, Type: models.NotificationNewFollower}
	require.NoError(t, s.CreateNotification(ctx, n))

	require.ErrorIs(t, s.MarkAsRead(ctx, n.ID, 8), common.ErrForbidden)
	require.ErrorIs(t, s.MarkAsRead(ctx, 404, 7), common.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, n.ID, 8), common.ErrForbidden)

	unread, _ := s.GetUnreadCount(ctx, 7)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, s.MarkAsRead(ctx, n.ID, 7))
	unread, _ = s.GetUnreadCount(ctx, 7)
	assert.Equal(t, int64(0), unread)

	require.NoError(t, s.Delete(ctx, n.ID, 7))
	require.ErrorIs(t, s.Delete(ctx, n.ID, 7), common.ErrNotFound)
}

func TestNotificationStore_MarkAllAsRead(t *testing.T) {
	ctx := context.Background()
	s := NewNotificationStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateNotification(ctx, &models.Notification{RecipientID: 7}))
	}
	require.NoError(t, s.CreateNotification(ctx, &models.Notification{RecipientID: 8}))

	require.NoError(t, s.MarkAllAsRead(ctx, 7))

	mine, _ := s.GetUnreadCount(ctx, 7)
	theirs, _ := s.GetUnreadCount(ctx, 8)
	assert.Equal(t, int64(0), mine)
	assert.Equal(t, int64(1), theirs)
}

func TestNotificationStore_GetGrouped(t *testing.T) {
	ctx := context.Background()
	s := NewNotificationStore()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{
		now.Add(-time.Hour),
		now.Add(-20 * time.Hour),
		now.AddDate(0, 0, -3),
		now.AddDate(0, 0, -30),
	} {
		require.NoError(t, s.CreateNotification(ctx, &models.Notification{RecipientID: 7, CreatedAt: at}))
	}

	g, err := s.GetGrouped(ctx, 7, now)
	require.NoError(t, err)
	assert.Len(t, g.Today, 1)
	assert.Len(t, g.Yesterday, 1)
	assert.Len(t, g.ThisWeek, 1)
	assert.Len(t, g.Older, 1)
}
