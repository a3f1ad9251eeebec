package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/common"
	"github.com/anonto42/cinetrack/backend/internal/models"
)

type inbox struct {
	mu    sync.Mutex
	items []models.Notification
}

// NotificationStore implements repositories.NotificationRepository in memory.
type NotificationStore struct {
	mu        sync.RWMutex
	inboxes   map[uint]*inbox
	recipient map[uint]uint
	nextID    uint
	now       func() time.Time
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		inboxes:   make(map[uint]*inbox),
		recipient: make(map[uint]uint),
		now:       time.Now,
	}
}

func (s *NotificationStore) inboxFor(recipientID uint, create bool) *inbox {
	s.mu.RLock()
	box, ok := s.inboxes[recipientID]
	s.mu.RUnlock()
	if ok || !create {
		return box
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if box, ok = s.inboxes[recipientID]; !ok {
		box = &inbox{}
		s.inboxes[recipientID] = box
	}
	return box
}

func (s *NotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	if n.Source == "" {
		n.Source = models.SourceGraph
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	s.mu.Lock()
	s.nextID++
	n.ID = s.nextID
	s.recipient[n.ID] = n.RecipientID
	s.mu.Unlock()

	box := s.inboxFor(n.RecipientID, true)
	box.mu.Lock()
	box.items = append(box.items, *n)
	box.mu.Unlock()
	return nil
}

// sorted returns a newest-first copy of the recipient's feed.
func (s *NotificationStore) sorted(recipientID uint) []models.Notification {
	box := s.inboxFor(recipientID, false)
	if box == nil {
		return []models.Notification{}
	}

	box.mu.Lock()
	out := make([]models.Notification, len(box.items))
	copy(out, box.items)
	box.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *NotificationStore) GetByRecipientID(_ context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	all := s.sorted(recipientID)
	total := int64(len(all))

	start := (page - 1) * limit
	if start < 0 {
		start = 0
	}
	if start >= len(all) {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *NotificationStore) GetGrouped(_ context.Context, recipientID uint, now time.Time) (*models.GroupedNotifications, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	g := &models.GroupedNotifications{
		Today:     []models.Notification{},
		Yesterday: []models.Notification{},
		ThisWeek:  []models.Notification{},
		Older:     []models.Notification{},
	}
	for _, n := range s.sorted(recipientID) {
		switch {
		case !n.CreatedAt.Before(todayStart):
			g.Today = append(g.Today, n)
		case !n.CreatedAt.Before(yesterdayStart):
			g.Yesterday = append(g.Yesterday, n)
		case !n.CreatedAt.Before(weekStart):
			g.ThisWeek = append(g.ThisWeek, n)
		case len(g.Older) < 50:
			g.Older = append(g.Older, n)
		}
	}
	return g, nil
}

func (s *NotificationStore) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	box := s.inboxFor(recipientID, false)
	if box == nil {
		return 0, nil
	}

	box.mu.Lock()
	defer box.mu.Unlock()
	var count int64
	for _, n := range box.items {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

// withOwned runs fn on the inbox holding notificationID, under the inbox lock,
// after checking that actingUserID is the recipient.
func (s *NotificationStore) withOwned(notificationID, actingUserID uint, fn func(box *inbox, idx int)) error {
	s.mu.RLock()
	recipientID, ok := s.recipient[notificationID]
	s.mu.RUnlock()
	if !ok {
		return common.ErrNotFound
	}
	if recipientID != actingUserID {
		return common.ErrForbidden
	}

	box := s.inboxFor(recipientID, false)
	if box == nil {
		return common.ErrNotFound
	}
	box.mu.Lock()
	defer box.mu.Unlock()
	for i := range box.items {
		if box.items[i].ID == notificationID {
			fn(box, i)
			return nil
		}
	}
	return common.ErrNotFound
}

func (s *NotificationStore) MarkAsRead(_ context.Context, notificationID, actingUserID uint) error {
	return s.withOwned(notificationID, actingUserID, func(box *inbox, idx int) {
		box.items[idx].IsRead = true
	})
}

func (s *NotificationStore) MarkAllAsRead(_ context.Context, recipientID uint) error {
	box := s.inboxFor(recipientID, false)
	if box == nil {
		return nil
	}
	box.mu.Lock()
	defer box.mu.Unlock()
	for i := range box.items {
		box.items[i].IsRead = true
	}
	return nil
}

func (s *NotificationStore) Delete(_ context.Context, notificationID, actingUserID uint) error {
	err := s.withOwned(notificationID, actingUserID, func(box *inbox, idx int) {
		box.items = append(box.items[:idx], box.items[idx+1:]...)
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.recipient, notificationID)
	s.mu.Unlock()
	return nil
}
