package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/common"
	"github.com/anonto42/cinetrack/backend/internal/models"
)

type pairKey struct {
	follower, following uint
}

type edgeRow struct {
	mu      sync.Mutex
	follow  models.Follow
	deleted bool
}

// FollowStore implements repositories.FollowRepository in memory.
type FollowStore struct {
	mu     sync.RWMutex
	byPair map[pairKey]*edgeRow
	byID   map[uint]*edgeRow
	nextID uint
	now    func() time.Time
}

func NewFollowStore() *FollowStore {
	return &FollowStore{
		byPair: make(map[pairKey]*edgeRow),
		byID:   make(map[uint]*edgeRow),
		now:    time.Now,
	}
}

func (s *FollowStore) UpsertEdge(_ context.Context, followerID, followingID uint, desired models.FollowStatus) (*models.Follow, bool, error) {
	edge, prev, err := s.upsert(followerID, followingID, desired)
	if err != nil {
		return nil, false, err
	}
	return edge, edge.Status != prev, nil
}

// upsert also returns the status the edge had before, FollowStatusNone when it was created.
func (s *FollowStore) upsert(followerID, followingID uint, desired models.FollowStatus) (*models.Follow, models.FollowStatus, error) {
	if followerID == followingID {
		return nil, models.FollowStatusNone, common.ErrSelfFollow
	}
	key := pairKey{followerID, followingID}

	for {
		s.mu.Lock()
		row, ok := s.byPair[key]
		if !ok {
			s.nextID++
			row = &edgeRow{follow: models.Follow{
				ID:          s.nextID,
				FollowerID:  followerID,
				FollowingID: followingID,
				Status:      desired,
				CreatedAt:   s.now(),
			}}
			s.byPair[key] = row
			s.byID[row.follow.ID] = row
			out := row.follow
			s.mu.Unlock()
			return &out, models.FollowStatusNone, nil
		}
		s.mu.Unlock()

		row.mu.Lock()
		if row.deleted {
			// removed between lookup and lock; start over
			row.mu.Unlock()
			continue
		}
		prev := row.follow.Status
		if prev == models.FollowStatusRejected {
			row.follow.Status = desired
		}
		out := row.follow
		row.mu.Unlock()
		return &out, prev, nil
	}
}

func (s *FollowStore) SetStatus(_ context.Context, edgeID, actingUserID uint, status models.FollowStatus) (*models.Follow, error) {
	s.mu.RLock()
	row, ok := s.byID[edgeID]
	s.mu.RUnlock()
	if !ok {
		return nil, common.ErrNotFound
	}

	row.mu.Lock()
	defer row.mu.Unlock()

	if row.deleted {
		return nil, common.ErrNotFound
	}
	if row.follow.FollowingID != actingUserID {
		return nil, common.ErrForbidden
	}
	if !status.Valid() {
		return nil, common.ErrInvalidInput
	}
	if status == models.FollowStatusPending {
		return nil, common.ErrInvalidTransition
	}
	if row.follow.Status != models.FollowStatusPending {
		return nil, common.ErrInvalidTransition
	}
	row.follow.Status = status
	out := row.follow
	return &out, nil
}

// revert puts edge back to status, or removes it when status is FollowStatusNone.
// It does nothing if the edge was deleted or replaced in the meantime.
func (s *FollowStore) revert(edgeID uint, status models.FollowStatus) {
	s.mu.Lock()
	row, ok := s.byID[edgeID]
	if ok && status == models.FollowStatusNone {
		delete(s.byID, edgeID)
		delete(s.byPair, pairKey{row.follow.FollowerID, row.follow.FollowingID})
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	row.mu.Lock()
	if status == models.FollowStatusNone {
		row.deleted = true
	} else {
		row.follow.Status = status
	}
	row.mu.Unlock()
}

func (s *FollowStore) DeleteEdge(_ context.Context, followerID, followingID uint) (bool, error) {
	key := pairKey{followerID, followingID}

	s.mu.Lock()
	row, ok := s.byPair[key]
	if ok {
		delete(s.byPair, key)
		delete(s.byID, row.follow.ID)
	}
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	row.mu.Lock()
	row.deleted = true
	row.mu.Unlock()
	return true, nil
}

func (s *FollowStore) GetEdge(_ context.Context, followerID, followingID uint) (*models.Follow, error) {
	s.mu.RLock()
	row, ok := s.byPair[pairKey{followerID, followingID}]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	row.mu.Lock()
	defer row.mu.Unlock()
	if row.deleted {
		return nil, nil
	}
	out := row.follow
	return &out, nil
}

func (s *FollowStore) StatusesFrom(ctx context.Context, followerID uint, targetIDs []uint) (map[uint]models.FollowStatus, error) {
	statuses := make(map[uint]models.FollowStatus, len(targetIDs))
	for _, id := range targetIDs {
		edge, _ := s.GetEdge(ctx, followerID, id)
		if edge != nil {
			statuses[id] = edge.Status
		}
	}
	return statuses, nil
}

// snapshot copies the live edges matching keep.
func (s *FollowStore) snapshot(keep func(models.Follow) bool) []models.Follow {
	s.mu.RLock()
	rows := make([]*edgeRow, 0, len(s.byID))
	for _, row := range s.byID {
		rows = append(rows, row)
	}
	s.mu.RUnlock()

	out := []models.Follow{}
	for _, row := range rows {
		row.mu.Lock()
		f, deleted := row.follow, row.deleted
		row.mu.Unlock()
		if !deleted && keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func acceptedOn(dir models.Direction, userID uint) func(models.Follow) bool {
	return func(f models.Follow) bool {
		if f.Status != models.FollowStatusAccepted {
			return false
		}
		if dir == models.Followers {
			return f.FollowingID == userID
		}
		return f.FollowerID == userID
	}
}

func pendingFor(followingID uint) func(models.Follow) bool {
	return func(f models.Follow) bool {
		return f.Status == models.FollowStatusPending && f.FollowingID == followingID
	}
}

func (s *FollowStore) CountAccepted(_ context.Context, dir models.Direction, userID uint) (int64, error) {
	return int64(len(s.snapshot(acceptedOn(dir, userID)))), nil
}

func (s *FollowStore) CountPending(_ context.Context, followingID uint) (int64, error) {
	return int64(len(s.snapshot(pendingFor(followingID)))), nil
}

func (s *FollowStore) ListAccepted(_ context.Context, dir models.Direction, userID uint, limit int) ([]models.Follow, error) {
	edges := s.snapshot(acceptedOn(dir, userID))
	if limit > 0 && len(edges) > limit {
		edges = edges[:limit]
	}
	return edges, nil
}

func (s *FollowStore) ListPending(_ context.Context, followingID uint) ([]models.Follow, error) {
	return s.snapshot(pendingFor(followingID)), nil
}
