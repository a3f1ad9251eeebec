package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/models"
)

const DefaultQuietPeriod = 500 * time.Millisecond

// SearchFunc runs one search. *API.SearchUsers satisfies it.
type SearchFunc func(ctx context.Context, query string) ([]models.UserSummary, error)

// SearchState is what the search screen renders.
type SearchState struct {
	Query   string
	Results []models.UserSummary
	Err     error
	Loading bool
}

// Searcher debounces search-as-you-type. Every SetQuery supersedes the
// previous one: its timer is stopped, its request cancelled and its result,
// if it still arrives, discarded.
type Searcher struct {
	search SearchFunc
	quiet  time.Duration

	mu       sync.Mutex
	gen      uint64
	timer    *time.Timer
	inflight context.CancelFunc
	state    SearchState
	closed   bool
}

func NewSearcher(search SearchFunc, quiet time.Duration) *Searcher {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Searcher{search: search, quiet: quiet}
}

// SetQuery records a keystroke. An empty query resets to the empty state
// without issuing a request.
func (s *Searcher) SetQuery(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.gen++
	s.cancelPendingLocked()

	if query == "" {
		s.state = SearchState{}
		return
	}

	gen := s.gen
	s.state.Query = query
	s.state.Loading = true
	s.timer = time.AfterFunc(s.quiet, func() { s.run(gen, query) })
}

func (s *Searcher) cancelPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
}

func (s *Searcher) run(gen uint64, query string) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.inflight = cancel
	s.timer = nil
	s.mu.Unlock()
	defer cancel()

	results, err := s.search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || ctx.Err() != nil {
		return
	}
	s.inflight = nil
	if results == nil {
		results = []models.UserSummary{}
	}
	s.state = SearchState{Query: query, Results: results, Err: err}
}

// State returns a copy of the current search state.
func (s *Searcher) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Results = append([]models.UserSummary(nil), s.state.Results...)
	return st
}

// Close cancels pending work; later calls to SetQuery are ignored.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.cancelPendingLocked()
}
