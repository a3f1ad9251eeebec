package memory

import (
	"context"
	"sync"

	"github.com/anonto42/cinetrack/backend/internal/models"
)

// MovieStore implements repositories.MovieListRepository in memory.
type MovieStore struct {
	mu     sync.RWMutex
	movies map[uint][]models.UserMovie
}

func NewMovieStore() *MovieStore {
	return &MovieStore{movies: make(map[uint][]models.UserMovie)}
}

func (s *MovieStore) Put(userID uint, movies ...models.UserMovie) {
	s.mu.Lock()
	s.movies[userID] = append(s.movies[userID], movies...)
	s.mu.Unlock()
}

func (s *MovieStore) GetMovieLists(_ context.Context, userID uint) (models.MovieLists, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.SplitMovieLists(s.movies[userID]), nil
}
