package repository

import (
	"context"
	"time"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
)

// BunApplicationRepository implements ApplicationRepository using Bun ORM
type BunApplicationRepository struct {
	db *bun.DB
}

// NewBunApplicationRepository creates a new Bun-based application repository
func NewBunApplicationRepository(db *bun.DB) *BunApplicationRepository {
	return &BunApplicationRepository{db: db}
}

// Create inserts a new application
func (r *BunApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	_, err := r.db.NewInsert().
		Model(app).
		Exec(ctx)
	return wrapErr("create application", err)
}

// GetByID retrieves an application by ID
func (r *BunApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	app := new(models.Application)
	err := r.db.NewSelect().
		Model(app).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("get application", err)
	}
	return app, nil
}

// Update replaces the mutable fields of an application
func (r *BunApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	app.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(app).
		Column("name", "tla", "tier", "description", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrapErr("update application", err)
	}
	return affected("update application", res)
}

// Delete removes an application
func (r *BunApplicationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Application)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapErr("delete application", err)
	}
	return affected("delete application", res)
}

// ListByTeam lists the applications of a team ordered by name
func (r *BunApplicationRepository) ListByTeam(ctx context.Context, teamID string) ([]models.Application, error) {
	apps := []models.Application{}
	err := r.db.NewSelect().
		Model(&apps).
		Where("team_id = ?", teamID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("list applications", err)
	}
	return apps, nil
}
