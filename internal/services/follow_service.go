package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/common"
	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/anonto42/cinetrack/backend/internal/privacy"
	"github.com/anonto42/cinetrack/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// SearchLimit caps user search results.
const SearchLimit = 20

// FollowService runs the follow state machine and its read paths.
type FollowService struct {
	follows    repositories.FollowRepository
	users      repositories.UserRepository
	movies     repositories.MovieListRepository
	graph      repositories.GraphTx
	dispatcher *NotificationDispatcher
	log        logging.Logger
	now        func() time.Time
}

func NewFollowService(
	follows repositories.FollowRepository,
	users repositories.UserRepository,
	movies repositories.MovieListRepository,
	graph repositories.GraphTx,
	dispatcher *NotificationDispatcher,
	log logging.Logger,
) *FollowService {
	return &FollowService{
		follows:    follows,
		users:      users,
		movies:     movies,
		graph:      graph,
		dispatcher: dispatcher,
		log:        log.With("component", "follow_service"),
		now:        time.Now,
	}
}

// Follow creates or revives the actor's edge toward target and returns its status.
// The edge change and the target's notification are written together or not at all.
func (s *FollowService) Follow(ctx context.Context, actorID, targetID uint) (models.FollowStatus, error) {
	if actorID == targetID {
		return models.FollowStatusNone, common.ErrSelfFollow
	}
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return models.FollowStatusNone, err
	}
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return models.FollowStatusNone, fmt.Errorf("load follower %d: %w", actorID, err)
	}

	desired := models.FollowStatusAccepted
	if target.IsPrivate {
		desired = models.FollowStatusPending
	}

	var (
		edge *models.Follow
		note *models.Notification
	)
	err = s.graph.InTx(ctx, func(follows repositories.FollowRepository, notifications repositories.NotificationRepository) error {
		e, changed, err := follows.UpsertEdge(ctx, actorID, targetID, desired)
		if err != nil {
			return err
		}
		edge = e
		if !changed {
			return nil
		}
		note, err = s.dispatcher.Record(ctx, notifications, followNotice(actor, targetID, e.Status))
		return err
	})
	if err != nil {
		s.log.Error(ctx, "follow not applied", "follower_id", actorID, "following_id", targetID, "error", err)
		return models.FollowStatusNone, err
	}

	if note != nil {
		s.dispatcher.Push(ctx, note)
	}
	return edge.Status, nil
}

// followNotice tells the target about a new follower or a new request.
func followNotice(actor *models.User, targetID uint, status models.FollowStatus) NotifyInput {
	in := NotifyInput{
		RecipientID:     targetID,
		RelatedUserID:   &actor.ID,
		RelatedUsername: &actor.Username,
	}
	if status == models.FollowStatusPending {
		in.Type = models.NotificationNewFollowRequest
		in.Title = "New Follow Request"
		in.Message = actor.Username + " wants to follow you"
	} else {
		in.Type = models.NotificationNewFollower
		in.Title = "New Follower"
		in.Message = actor.Username + " started following you"
	}
	return in
}

// Unfollow removes actor -> target. It reports ErrNotFound when there was no edge.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	removed, err := s.follows.DeleteEdge(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return common.ErrNotFound
	}
	return nil
}

// RemoveFollower removes followerID -> actor, which must exist.
func (s *FollowService) RemoveFollower(ctx context.Context, actorID, followerID uint) error {
	removed, err := s.follows.DeleteEdge(ctx, followerID, actorID)
	if err != nil {
		return err
	}
	if !removed {
		return common.ErrNotFound
	}
	return nil
}

// AcceptRequest accepts a pending request and notifies the follower in the same unit of work.
func (s *FollowService) AcceptRequest(ctx context.Context, actorID, edgeID uint) error {
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("load accepter %d: %w", actorID, err)
	}

	var note *models.Notification
	err = s.graph.InTx(ctx, func(follows repositories.FollowRepository, notifications repositories.NotificationRepository) error {
		edge, err := follows.SetStatus(ctx, edgeID, actorID, models.FollowStatusAccepted)
		if err != nil {
			return err
		}
		note, err = s.dispatcher.Record(ctx, notifications, NotifyInput{
			RecipientID:     edge.FollowerID,
			Type:            models.NotificationFollowRequestAccepted,
			Title:           "Request Accepted",
			Message:         actor.Username + " accepted your follow request",
			RelatedUserID:   &actor.ID,
			RelatedUsername: &actor.Username,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.dispatcher.Push(ctx, note)
	return nil
}

// RejectRequest is silent: the follower is not notified.
func (s *FollowService) RejectRequest(ctx context.Context, actorID, edgeID uint) error {
	_, err := s.follows.SetStatus(ctx, edgeID, actorID, models.FollowStatusRejected)
	return err
}

// edgeStatus is the viewer's status toward target, FollowStatusNone when there is no edge.
func (s *FollowService) edgeStatus(ctx context.Context, viewerID, targetID uint) (models.FollowStatus, error) {
	if viewerID == targetID {
		return models.FollowStatusNone, nil
	}
	edge, err := s.follows.GetEdge(ctx, viewerID, targetID)
	if err != nil || edge == nil {
		return models.FollowStatusNone, err
	}
	return edge.Status, nil
}

// counts reads a user's accepted followers and followings concurrently.
func (s *FollowService) counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		followers, err = s.follows.CountAccepted(gctx, models.Followers, userID)
		return err
	})
	g.Go(func() error {
		var err error
		following, err = s.follows.CountAccepted(gctx, models.Following, userID)
		return err
	})
	err = g.Wait()
	return followers, following, err
}

func (s *FollowService) GetProfileVisibility(ctx context.Context, viewerID, targetID uint) (*models.ProfileVisibility, error) {
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return s.visibility(ctx, viewerID, target)
}

func (s *FollowService) visibility(ctx context.Context, viewerID uint, target *models.User) (*models.ProfileVisibility, error) {
	status, err := s.edgeStatus(ctx, viewerID, target.ID)
	if err != nil {
		return nil, err
	}
	followers, following, err := s.counts(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return &models.ProfileVisibility{
		Status:         status,
		CanView:        privacy.CanView(viewerID, *target, status),
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}

// Stats runs three fresh counts.
func (s *FollowService) Stats(ctx context.Context, userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.FollowersCount, err = s.follows.CountAccepted(gctx, models.Followers, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.FollowingCount, err = s.follows.CountAccepted(gctx, models.Following, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.PendingRequestsCount, err = s.follows.CountPending(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stats for user %d: %w", userID, err)
	}
	return &stats, nil
}

func (s *FollowService) ListFollowers(ctx context.Context, viewerID, userID uint) ([]models.UserSummary, error) {
	return s.listAccepted(ctx, viewerID, userID, models.Followers)
}

func (s *FollowService) ListFollowing(ctx context.Context, viewerID, userID uint) ([]models.UserSummary, error) {
	return s.listAccepted(ctx, viewerID, userID, models.Following)
}

// listAccepted returns an empty list for unknown users and for private users
// the viewer may not see.
func (s *FollowService) listAccepted(ctx context.Context, viewerID, userID uint, dir models.Direction) ([]models.UserSummary, error) {
	target, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return []models.UserSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	status, err := s.edgeStatus(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}
	if !privacy.CanView(viewerID, *target, status) {
		return []models.UserSummary{}, nil
	}

	edges, err := s.follows.ListAccepted(ctx, dir, userID, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		if dir == models.Followers {
			ids = append(ids, e.FollowerID)
		} else {
			ids = append(ids, e.FollowingID)
		}
	}
	return s.summaries(ctx, viewerID, ids)
}

// summaries builds UserSummary rows in ids order, with counts and the
// viewer's follow status toward each user.
func (s *FollowService) summaries(ctx context.Context, viewerID uint, ids []uint) ([]models.UserSummary, error) {
	out := []models.UserSummary{}
	if len(ids) == 0 {
		return out, nil
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	statuses, err := s.follows.StatusesFrom(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			continue
		}
		followers, following, err := s.counts(ctx, id)
		if err != nil {
			return nil, err
		}
		summary := models.UserSummary{
			ID:             u.ID,
			Username:       u.Username,
			Avatar:         u.Avatar,
			IsPrivate:      u.IsPrivate,
			FollowersCount: followers,
			FollowingCount: following,
		}
		if id != viewerID {
			label := statuses[id].Label()
			summary.FollowStatus = &label
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *FollowService) ListPendingRequests(ctx context.Context, userID uint) ([]models.FollowRequest, error) {
	edges, err := s.follows.ListPending(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FollowerID)
	}
	summaries, err := s.summaries(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.UserSummary, len(summaries))
	for _, sm := range summaries {
		byID[sm.ID] = sm
	}

	requests := []models.FollowRequest{}
	for _, e := range edges {
		requester, ok := byID[e.FollowerID]
		if !ok {
			continue
		}
		requests = append(requests, models.FollowRequest{ID: e.ID, Requester: requester, CreatedAt: e.CreatedAt})
	}
	return requests, nil
}

// SearchUsers matches usernames and reports the viewer's status toward each hit.
func (s *FollowService) SearchUsers(ctx context.Context, viewerID uint, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", common.ErrInvalidInput)
	}
	users, err := s.users.SearchUsers(ctx, query, viewerID, SearchLimit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return s.summaries(ctx, viewerID, ids)
}

// GetProfile is the full profile screen. Email and the username cooldown are
// only shown to the owner; movie lists only when the viewer may see the profile.
func (s *FollowService) GetProfile(ctx context.Context, viewerID, targetID uint) (*models.UserProfile, error) {
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	vis, err := s.visibility(ctx, viewerID, target)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		ID:             target.ID,
		Username:       target.Username,
		Avatar:         target.Avatar,
		IsPrivate:      target.IsPrivate,
		CanViewProfile: vis.CanView,
		FollowersCount: vis.FollowersCount,
		FollowingCount: vis.FollowingCount,
	}
	if viewerID == target.ID {
		email := target.Email
		profile.Email = &email
		profile.UsernameChangeAvailableAt = target.NextUsernameChangeAt(s.now())
	} else {
		label := vis.Status.Label()
		profile.FollowStatus = &label
	}

	if vis.CanView && s.movies != nil {
		lists, err := s.movies.GetMovieLists(ctx, target.ID)
		if err != nil {
			s.log.Warn(ctx, "movie lists unavailable", "user_id", target.ID, "error", err)
		} else {
			profile.FavoriteMovies = lists.Favorites
			profile.WatchedMovies = lists.Watched
		}
	}
	return profile, nil
}
