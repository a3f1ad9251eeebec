package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GraphTx runs an edge change and the notification it produces as one unit.
type GraphTx interface {
	// InTx hands fn repositories bound to a single unit of work. When fn returns
	// an error nothing written through them is kept.
	InTx(ctx context.Context, fn func(follows FollowRepository, notifications NotificationRepository) error) error
}

// PostgresGraphTx implements GraphTx with a database transaction.
type PostgresGraphTx struct {
	db *gorm.DB
}

func NewPostgresGraphTx(db *gorm.DB) *PostgresGraphTx {
	return &PostgresGraphTx{db: db}
}

func (t *PostgresGraphTx) InTx(ctx context.Context, fn func(FollowRepository, NotificationRepository) error) error {
	// UpsertEdge opens its own transaction; under tx gorm turns it into a savepoint
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgresFollowRepository(tx), NewPostgresNotificationRepository(tx))
	})
}
