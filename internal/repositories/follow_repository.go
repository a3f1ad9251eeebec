package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/cinetrack/backend/internal/common"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow edge operations.
// It owns the uniqueness of (follower, following) and the status transitions.
type FollowRepository interface {
	// UpsertEdge creates the edge, or moves a rejected edge to desired. Pending and
	// accepted edges are returned unchanged. The bool reports whether anything changed.
	UpsertEdge(ctx context.Context, followerID, followingID uint, desired models.FollowStatus) (*models.Follow, bool, error)
	// SetStatus moves a pending edge to accepted or rejected on behalf of its target.
	SetStatus(ctx context.Context, edgeID, actingUserID uint, status models.FollowStatus) (*models.Follow, error)
	// DeleteEdge removes the edge if present and reports whether a row was removed.
	DeleteEdge(ctx context.Context, followerID, followingID uint) (bool, error)
	// GetEdge returns nil without error when there is no edge.
	GetEdge(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	StatusesFrom(ctx context.Context, followerID uint, targetIDs []uint) (map[uint]models.FollowStatus, error)
	CountAccepted(ctx context.Context, dir models.Direction, userID uint) (int64, error)
	CountPending(ctx context.Context, followingID uint) (int64, error)
	ListAccepted(ctx context.Context, dir models.Direction, userID uint, limit int) ([]models.Follow, error)
	ListPending(ctx context.Context, followingID uint) ([]models.Follow, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) UpsertEdge(ctx context.Context, followerID, followingID uint, desired models.FollowStatus) (*models.Follow, bool, error) {
	if followerID == followingID {
		return nil, false, common.ErrSelfFollow
	}

	var edge models.Follow
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("follower_id = ? AND following_id = ?", followerID, followingID).
			First(&edge).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			edge = models.Follow{FollowerID: followerID, FollowingID: followingID, Status: desired}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// lost the insert race; the winner's row is the edge
				edge = models.Follow{}
				return tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).First(&edge).Error
			}
			changed = true
			return nil
		}
		if err != nil {
			return err
		}

		if edge.Status != models.FollowStatusRejected {
			return nil
		}
		if err := tx.Model(&models.Follow{}).Where("id = ?", edge.ID).Update("status", desired).Error; err != nil {
			return err
		}
		edge.Status = desired
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("upsert follow %d->%d: %w", followerID, followingID, err)
	}
	return &edge, changed, nil
}

func (r *PostgresFollowRepository) SetStatus(ctx context.Context, edgeID, actingUserID uint, status models.FollowStatus) (*models.Follow, error) {
	var edge models.Follow
	if err := r.db.WithContext(ctx).First(&edge, edgeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("load follow %d: %w", edgeID, err)
	}

	if edge.FollowingID != actingUserID {
		return nil, common.ErrForbidden
	}
	if !status.Valid() {
		return nil, common.ErrInvalidInput
	}
	if status == models.FollowStatusPending {
		return nil, common.ErrInvalidTransition
	}
	if edge.Status != models.FollowStatusPending {
		return nil, common.ErrInvalidTransition
	}

	// the status guard makes concurrent accept/reject race on the row, one of them matches nothing
	res := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("id = ? AND status = ?", edgeID, models.FollowStatusPending).
		Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("update follow %d: %w", edgeID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, common.ErrInvalidTransition
	}

	edge.Status = status
	return &edge, nil
}

func (r *PostgresFollowRepository) DeleteEdge(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, fmt.Errorf("delete follow %d->%d: %w", followerID, followingID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) GetEdge(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var edge models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

func (r *PostgresFollowRepository) StatusesFrom(ctx context.Context, followerID uint, targetIDs []uint) (map[uint]models.FollowStatus, error) {
	statuses := make(map[uint]models.FollowStatus, len(targetIDs))
	if len(targetIDs) == 0 {
		return statuses, nil
	}

	var edges []models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id IN ?", followerID, targetIDs).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		statuses[e.FollowingID] = e.Status
	}
	return statuses, nil
}

func (r *PostgresFollowRepository) CountAccepted(ctx context.Context, dir models.Direction, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where(sideColumn(dir)+" = ? AND status = ?", userID, models.FollowStatusAccepted).
		Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) CountPending(ctx context.Context, followingID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ? AND status = ?", followingID, models.FollowStatusPending).
		Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) ListAccepted(ctx context.Context, dir models.Direction, userID uint, limit int) ([]models.Follow, error) {
	edges := []models.Follow{}
	q := r.db.WithContext(ctx).
		Where(sideColumn(dir)+" = ? AND status = ?", userID, models.FollowStatusAccepted).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&edges).Error
	return edges, err
}

func (r *PostgresFollowRepository) ListPending(ctx context.Context, followingID uint) ([]models.Follow, error) {
	edges := []models.Follow{}
	err := r.db.WithContext(ctx).
		Where("following_id = ? AND status = ?", followingID, models.FollowStatusPending).
		Order("created_at DESC").
		Find(&edges).Error
	return edges, err
}

// sideColumn is the column holding the user whose followers or followings are wanted.
func sideColumn(dir models.Direction) string {
	if dir == models.Followers {
		return "following_id"
	}
	return "follower_id"
}
