package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/google/uuid"
)

type deviceSet struct {
	mu     sync.Mutex
	tokens map[string]models.DeviceToken
}

// DeviceStore implements repositories.DeviceTokenRepository in memory.
type DeviceStore struct {
	mu    sync.RWMutex
	users map[uint]*deviceSet
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{users: make(map[uint]*deviceSet)}
}

func (s *DeviceStore) setFor(userID uint, create bool) *deviceSet {
	s.mu.RLock()
	set, ok := s.users[userID]
	s.mu.RUnlock()
	if ok || !create {
		return set
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok = s.users[userID]; !ok {
		set = &deviceSet{tokens: make(map[string]models.DeviceToken)}
		s.users[userID] = set
	}
	return set
}

func (s *DeviceStore) SaveToken(_ context.Context, userID uint, token, platform string) error {
	set := s.setFor(userID, true)
	set.mu.Lock()
	defer set.mu.Unlock()

	now := time.Now()
	dt, ok := set.tokens[token]
	if !ok {
		dt = models.DeviceToken{ID: uuid.New().String(), UserID: userID, Token: token, CreatedAt: now}
	}
	dt.Platform = platform
	dt.UpdatedAt = now
	set.tokens[token] = dt
	return nil
}

func (s *DeviceStore) GetTokensByUserID(_ context.Context, userID uint) ([]models.DeviceToken, error) {
	set := s.setFor(userID, false)
	if set == nil {
		return nil, nil
	}
	set.mu.Lock()
	defer set.mu.Unlock()

	out := make([]models.DeviceToken, 0, len(set.tokens))
	for _, dt := range set.tokens {
		out = append(out, dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *DeviceStore) DeleteToken(_ context.Context, userID uint, token string) error {
	set := s.setFor(userID, false)
	if set == nil {
		return nil
	}
	set.mu.Lock()
	delete(set.tokens, token)
	set.mu.Unlock()
	return nil
}

func (s *DeviceStore) PurgeToken(_ context.Context, token string) error {
	s.mu.RLock()
	sets := make([]*deviceSet, 0, len(s.users))
	for _, set := range s.users {
		sets = append(sets, set)
	}
	s.mu.RUnlock()

	for _, set := range sets {
		set.mu.Lock()
		delete(set.tokens, token)
		set.mu.Unlock()
	}
	return nil
}
