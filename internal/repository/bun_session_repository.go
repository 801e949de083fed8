package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
)

// BunSessionRepository implements SessionRepository using Bun ORM
type BunSessionRepository struct {
	db *bun.DB
}

// NewBunSessionRepository creates a new Bun-based session repository
func NewBunSessionRepository(db *bun.DB) *BunSessionRepository {
	return &BunSessionRepository{db: db}
}

// Create inserts a new session
func (r *BunSessionRepository) Create(ctx context.Context, session *models.Session) error {
	session.CreatedAt = time.Now().UTC()
	_, err := r.db.NewInsert().
		Model(session).
		Exec(ctx)
	return wrapErr("create session", err)
}

// GetByID retrieves a session by ID
func (r *BunSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	session := new(models.Session)
	err := r.db.NewSelect().
		Model(session).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("get session", err)
	}
	return session, nil
}

// Delete removes a session
func (r *BunSessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Session)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapErr("delete session", err)
	}
	return affected("delete session", res)
}

// DeleteExpired removes every session that expired before the given time
func (r *BunSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.Session)(nil)).
		Where("expires_at < ?", before.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, wrapErr("delete expired sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: get rows affected: %w", err)
	}
	return n, nil
}
