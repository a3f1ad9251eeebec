package client

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	stats   models.UserStats
	unread  int64
	feed    []models.Notification
	failing bool
	calls   atomic.Int64
}

var errOffline = errors.New("offline")

func (f *fakeSource) Stats(context.Context) (models.UserStats, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return models.UserStats{}, errOffline
	}
	return f.stats, nil
}

func (f *fakeSource) UnreadCount(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errOffline
	}
	return f.unread, nil
}

func (f *fakeSource) Notifications(context.Context, int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errOffline
	}
	return append([]models.Notification(nil), f.feed...), nil
}

func (f *fakeSource) set(fn func(f *fakeSource)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []LocalNotification
}

func (a *recordingAlerter) Alert(n LocalNotification, _ int64) {
	a.mu.Lock()
	a.alerts = append(a.alerts, n)
	a.mu.Unlock()
}

func (a *recordingAlerter) all() []LocalNotification {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]LocalNotification(nil), a.alerts...)
}

func notification(id uint, read bool, at time.Time) models.Notification {
	return models.Notification{
		ID:        id,
		Type:      models.NotificationNewFollower,
		Source:    models.SourceGraph,
		Title:     "New Follower",
		IsRead:    read,
		CreatedAt: at,
	}
}

func newTestReconciler(src Source, alerter Alerter, p float64) *Reconciler {
	return NewReconciler(src, alerter, logging.Discard(), ReconcilerConfig{
		Interval:              time.Hour,
		EngagementProbability: p,
		Rand:                  rand.New(rand.NewSource(1)),
	})
}

func TestReconciler_BadgesAreAdditive(t *testing.T) {
	src := &fakeSource{
		stats:  models.UserStats{FollowersCount: 10, PendingRequestsCount: 2},
		unread: 3,
	}
	r := newTestReconciler(src, nil, 0)

	b := r.Refresh(context.Background())
	assert.Equal(t, Badges{Unread: 3, Pending: 2, Engagement: 0, Total: 5}, b)
	assert.Equal(t, int64(10), r.Stats().FollowersCount)
}

func TestReconciler_ReadFailureKeepsLastGood(t *testing.T) {
	now := time.Now()
	src := &fakeSource{
		stats:  models.UserStats{PendingRequestsCount: 4},
		unread: 1,
		feed:   []models.Notification{notification(1, false, now)},
	}
	r := newTestReconciler(src, nil, 0)
	first := r.Refresh(context.Background())

	src.set(func(f *fakeSource) { f.failing = true })
	second := r.Refresh(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, int64(5), second.Total)
	assert.Len(t, r.Feed(), 1)
}

func TestReconciler_AlertsOnlyForNewUnread(t *testing.T) {
	now := time.Now()
	src := &fakeSource{feed: []models.Notification{notification(1, false, now)}}
	alerter := &recordingAlerter{}
	r := newTestReconciler(src, alerter, 0)

	r.Refresh(context.Background())
	assert.Empty(t, alerter.all(), "existing feed is not alerted")

	src.set(func(f *fakeSource) {
		f.feed = []models.Notification{
			notification(3, true, now.Add(2*time.Second)),
			notification(2, false, now.Add(time.Second)),
			notification(1, false, now),
		}
	})
	r.Refresh(context.Background())
	r.Refresh(context.Background())

	alerts := alerter.all()
	require.Len(t, alerts, 1)
	assert.Equal(t, uint(2), alerts[0].ServerID)
	assert.Equal(t, models.SourceGraph, alerts[0].Source)
}

func TestReconciler_EngagementIsTaggedAndCounted(t *testing.T) {
	src := &fakeSource{unread: 1}
	alerter := &recordingAlerter{}
	r := newTestReconciler(src, alerter, 1)

	b := r.Refresh(context.Background())
	assert.Equal(t, int64(1), b.Engagement)
	assert.Equal(t, int64(2), b.Total)

	feed := r.Feed()
	require.Len(t, feed, 1)
	assert.Equal(t, models.SourceEngagement, feed[0].Source)
	assert.Zero(t, feed[0].ServerID)
	assert.Contains(t, []models.NotificationType{models.NotificationTrendingMovie, models.NotificationMovieRecommendation}, feed[0].Type)

	require.Len(t, alerter.all(), 1)
	assert.Equal(t, models.SourceEngagement, alerter.all()[0].Source)

	assert.True(t, r.MarkEngagementRead(feed[0].Key))
	assert.Equal(t, int64(0), r.Badges().Engagement)
	assert.False(t, r.MarkEngagementRead("missing"))
}

func TestReconciler_EngagementProbability(t *testing.T) {
	r := newTestReconciler(&fakeSource{}, nil, DefaultEngagementProbability)
	for i := 0; i < 1000; i++ {
		r.Refresh(context.Background())
	}
	n := r.Badges().Engagement
	assert.Greater(t, n, int64(50))
	assert.Less(t, n, int64(150))
}

func TestReconciler_FeedMergesNewestFirst(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{feed: []models.Notification{
		notification(2, false, base.Add(2*time.Minute)),
		notification(1, false, base),
	}}
	r := NewReconciler(src, nil, logging.Discard(), ReconcilerConfig{
		EngagementProbability: 1,
		Rand:                  rand.New(rand.NewSource(1)),
		Now:                   func() time.Time { return base.Add(time.Minute) },
	})
	r.Refresh(context.Background())

	feed := r.Feed()
	require.Len(t, feed, 3)
	assert.Equal(t, uint(2), feed[0].ServerID)
	assert.Equal(t, models.SourceEngagement, feed[1].Source)
	assert.Equal(t, uint(1), feed[2].ServerID)
}

func TestReconciler_StartStop(t *testing.T) {
	src := &fakeSource{}
	r := NewReconciler(src, nil, logging.Discard(), ReconcilerConfig{Interval: 5 * time.Millisecond})
	r.Start()

	require.Eventually(t, func() bool { return src.calls.Load() >= 3 }, time.Second, time.Millisecond)
	r.Stop()
	r.Stop()

	after := src.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, src.calls.Load(), "no passes after Stop")
}
