package store

import (
	"context"
	"io"
	"time"

	"gorm.io/gorm"

	"rfid-access-backend/internal/model"
)

// Store defines the data-access operations behind the administrative API.
// The decision engine does not go through this interface; it owns its own
// transactional write path.
type Store interface {
	DB() *gorm.DB

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context, skip, limit int) ([]model.User, error)
	ImportUsersCSV(ctx context.Context, r io.Reader) (ImportResult, error)

	CreateAdmin(ctx context.Context, username, passwordHash string) (*model.Admin, error)
	FindAdminByUsername(ctx context.Context, username string) (*model.Admin, error)

	DashboardSummary(ctx context.Context) (Summary, error)
	DashboardLogs(ctx context.Context, limit int) ([]LogRow, error)

	SyncStatuses(ctx context.Context, now time.Time) ([]SyncRow, error)
	TriggerSync(ctx context.Context, nodeID *int64, now time.Time) (int64, error)

	Subscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Subscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
