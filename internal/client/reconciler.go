package client

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultInterval              = 30 * time.Second
	DefaultEngagementProbability = 0.1
	DefaultFeedLimit             = 50
)

// Source is the server side the reconciler reads from. *API satisfies it.
type Source interface {
	Stats(ctx context.Context) (models.UserStats, error)
	Notifications(ctx context.Context, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int64, error)
}

// Alerter raises an on-device alert. badge is the total badge after the pass.
type Alerter interface {
	Alert(n LocalNotification, badge int64)
}

// LocalNotification is a feed entry as the device holds it. Server entries
// keep their numeric id in ServerID; engagement entries only exist locally.
type LocalNotification struct {
	Key       string                    `json:"key"`
	ServerID  uint                      `json:"server_id,omitempty"`
	Type      models.NotificationType   `json:"type"`
	Source    models.NotificationSource `json:"source"`
	Title     string                    `json:"title"`
	Message   string                    `json:"message"`
	IsRead    bool                      `json:"is_read"`
	CreatedAt time.Time                 `json:"created_at"`
}

// Badges are independent counters. Total is their plain sum.
type Badges struct {
	Unread     int64 `json:"unread"`
	Pending    int64 `json:"pending"`
	Engagement int64 `json:"engagement"`
	Total      int64 `json:"total"`
}

type ReconcilerConfig struct {
	Interval              time.Duration
	EngagementProbability float64
	FeedLimit             int
	// Rand drives the engagement draw. Defaults to a time-seeded source.
	Rand *rand.Rand
	Now  func() time.Time
}

func (c ReconcilerConfig) withDefaults() ReconcilerConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.EngagementProbability < 0 {
		c.EngagementProbability = 0
	}
	if c.FeedLimit <= 0 {
		c.FeedLimit = DefaultFeedLimit
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

var engagementTemplates = []struct {
	typ     models.NotificationType
	title   string
	message string
}{
	{models.NotificationTrendingMovie, "Trending now", "Don't miss this week's most popular movies!"},
	{models.NotificationMovieRecommendation, "Picked for you", "Based on your favorites, we found new movies you might like"},
}

// Reconciler periodically re-reads stats and the notification feed and merges
// them into local badges. A failed read keeps the last good value.
type Reconciler struct {
	src     Source
	alerter Alerter
	log     logging.Logger
	cfg     ReconcilerConfig

	// pass serializes ticks and manual refreshes; it also guards cfg.Rand.
	pass sync.Mutex

	mu         sync.RWMutex
	stats      models.UserStats
	unread     int64
	feed       []models.Notification
	engagement []LocalNotification
	seen       map[uint]struct{}
	baselined  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewReconciler(src Source, alerter Alerter, log logging.Logger, cfg ReconcilerConfig) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		src:     src,
		alerter: alerter,
		log:     log.With("component", "reconciler"),
		cfg:     cfg.withDefaults(),
		seen:    make(map[uint]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start runs one pass immediately, then one per interval until Stop.
func (r *Reconciler) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()

		r.Refresh(r.ctx)
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				r.Refresh(r.ctx)
			}
		}
	}()
}

// Stop ends the loop and waits for a running pass to return.
func (r *Reconciler) Stop() {
	r.once.Do(func() {
		r.cancel()
		r.wg.Wait()
	})
}

// Refresh runs one reconciliation pass and returns the resulting badges.
func (r *Reconciler) Refresh(ctx context.Context) Badges {
	r.pass.Lock()
	defer r.pass.Unlock()

	stats, statsErr := r.src.Stats(ctx)
	if statsErr != nil {
		r.log.Warn(ctx, "stats refresh failed, keeping last value", "error", statsErr)
	}
	unread, unreadErr := r.src.UnreadCount(ctx)
	if unreadErr != nil {
		r.log.Warn(ctx, "unread count refresh failed, keeping last value", "error", unreadErr)
	}
	feed, feedErr := r.src.Notifications(ctx, r.cfg.FeedLimit)
	if feedErr != nil {
		r.log.Warn(ctx, "feed refresh failed, keeping last value", "error", feedErr)
	}

	var fresh []models.Notification
	r.mu.Lock()
	if statsErr == nil {
		r.stats = stats
	}
	if unreadErr == nil {
		r.unread = unread
	}
	if feedErr == nil {
		r.feed = feed
		for _, n := range feed {
			if _, ok := r.seen[n.ID]; ok {
				continue
			}
			r.seen[n.ID] = struct{}{}
			// the first feed read is history, not news
			if r.baselined && !n.IsRead {
				fresh = append(fresh, n)
			}
		}
		r.baselined = true
	}

	var synthetic *LocalNotification
	if ctx.Err() == nil && r.cfg.Rand.Float64() < r.cfg.EngagementProbability {
		tpl := engagementTemplates[r.cfg.Rand.Intn(len(engagementTemplates))]
		synthetic = &LocalNotification{
			Key:       uuid.NewString(),
			Type:      tpl.typ,
			Source:    models.SourceEngagement,
			Title:     tpl.title,
			Message:   tpl.message,
			CreatedAt: r.cfg.Now(),
		}
		r.engagement = append(r.engagement, *synthetic)
	}
	badges := r.badgesLocked()
	r.mu.Unlock()

	if r.alerter != nil {
		for _, n := range fresh {
			r.alerter.Alert(fromServer(n), badges.Total)
		}
		if synthetic != nil {
			r.alerter.Alert(*synthetic, badges.Total)
		}
	}
	return badges
}

func (r *Reconciler) badgesLocked() Badges {
	b := Badges{Unread: r.unread, Pending: r.stats.PendingRequestsCount}
	for _, n := range r.engagement {
		if !n.IsRead {
			b.Engagement++
		}
	}
	b.Total = b.Unread + b.Pending + b.Engagement
	return b
}

func (r *Reconciler) Badges() Badges {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.badgesLocked()
}

func (r *Reconciler) Stats() models.UserStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// Feed merges the last server feed with local engagement entries, newest first.
func (r *Reconciler) Feed() []LocalNotification {
	r.mu.RLock()
	out := make([]LocalNotification, 0, len(r.feed)+len(r.engagement))
	for _, n := range r.feed {
		out = append(out, fromServer(n))
	}
	out = append(out, r.engagement...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// MarkEngagementRead clears a local engagement entry from the badge.
func (r *Reconciler) MarkEngagementRead(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.engagement {
		if r.engagement[i].Key == key {
			r.engagement[i].IsRead = true
			return true
		}
	}
	return false
}

func fromServer(n models.Notification) LocalNotification {
	source := n.Source
	if source == "" {
		source = models.SourceGraph
	}
	return LocalNotification{
		Key:       "server-" + strconv.FormatUint(uint64(n.ID), 10),
		ServerID:  n.ID,
		Type:      n.Type,
		Source:    source,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
