package repository

import (
	"context"
	"time"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
)

// BunUserRepository implements UserRepository using Bun ORM
type BunUserRepository struct {
	db *bun.DB
}

// NewBunUserRepository creates a new Bun-based user repository
func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db}
}

// UpsertLogin inserts the user or refreshes its profile, keyed on email
func (r *BunUserRepository) UpsertLogin(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.LastLoginAt = now
	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (email) DO UPDATE").
		Set("first_name = EXCLUDED.first_name").
		Set("last_name = EXCLUDED.last_name").
		Set("ads_id = EXCLUDED.ads_id").
		Set("last_login_at = EXCLUDED.last_login_at").
		Exec(ctx)
	return wrapErr("upsert user login", err)
}

// GetByEmail retrieves a user by email
func (r *BunUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("get user by email", err)
	}
	return user, nil
}
