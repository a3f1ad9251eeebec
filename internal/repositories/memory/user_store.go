package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/anonto42/cinetrack/backend/internal/common"
	"github.com/anonto42/cinetrack/backend/internal/models"
)

// UserStore implements repositories.UserRepository in memory. Users are
// seeded with Put since the identity service owns them.
type UserStore struct {
	mu    sync.RWMutex
	users map[uint]models.User
}

func NewUserStore(seed ...models.User) *UserStore {
	s := &UserStore{users: make(map[uint]models.User)}
	for _, u := range seed {
		s.Put(u)
	}
	return s
}

func (s *UserStore) Put(u models.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

func (s *UserStore) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *UserStore) GetUsersByIDs(_ context.Context, ids []uint) (map[uint]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uint]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *UserStore) SearchUsers(_ context.Context, query string, excludeID uint, limit int) ([]models.User, error) {
	q := strings.ToLower(query)

	s.mu.RLock()
	out := []models.User{}
	for _, u := range s.users {
		if u.ID != excludeID && strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, u)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
