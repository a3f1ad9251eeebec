package repositories

import (
	"context"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for push endpoint operations
type DeviceTokenRepository interface {
	SaveToken(ctx context.Context, userID uint, token, platform string) error
	GetTokensByUserID(ctx context.Context, userID uint) ([]models.DeviceToken, error)
	DeleteToken(ctx context.Context, userID uint, token string) error
	// PurgeToken removes a token for every user, used when the provider reports it dead.
	PurgeToken(ctx context.Context, token string) error
}

type deviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates a new gorm-backed DeviceTokenRepository
func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

// SaveToken saves or refreshes a token for a user (atomic upsert)
func (r *deviceTokenRepository) SaveToken(ctx context.Context, userID uint, token, platform string) error {
	now := time.Now()
	dt := &models.DeviceToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// INSERT ... ON CONFLICT (user_id, token) DO UPDATE
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform", "updated_at"}),
	}).Create(dt).Error
}

func (r *deviceTokenRepository) GetTokensByUserID(ctx context.Context, userID uint) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *deviceTokenRepository) DeleteToken(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND token = ?", userID, token).Delete(&models.DeviceToken{}).Error
}

func (r *deviceTokenRepository) PurgeToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.DeviceToken{}).Error
}
