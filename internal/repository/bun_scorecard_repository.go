package repository

import (
	"context"
	"time"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
)

// BunScorecardRepository implements ScorecardRepository using Bun ORM
type BunScorecardRepository struct {
	db *bun.DB
}

// NewBunScorecardRepository creates a new Bun-based scorecard repository
func NewBunScorecardRepository(db *bun.DB) *BunScorecardRepository {
	return &BunScorecardRepository{db: db}
}

// Upsert writes the entry keyed on (application_id, year, month)
func (r *BunScorecardRepository) Upsert(ctx context.Context, entry *models.ScorecardEntry) (*models.ScorecardEntry, error) {
	entry.UpdatedAt = time.Now().UTC()
	_, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (application_id, year, month) DO UPDATE").
		Set("availability = EXCLUDED.availability").
		Set("volume = EXCLUDED.volume").
		Set("updated_by = EXCLUDED.updated_by").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, wrapErr("upsert scorecard entry", err)
	}

	stored := new(models.ScorecardEntry)
	err = r.db.NewSelect().
		Model(stored).
		Where("application_id = ?", entry.ApplicationID).
		Where("year = ?", entry.Year).
		Where("month = ?", entry.Month).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("reload scorecard entry", err)
	}
	return stored, nil
}

// GetByID retrieves an entry by ID
func (r *BunScorecardRepository) GetByID(ctx context.Context, id string) (*models.ScorecardEntry, error) {
	entry := new(models.ScorecardEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("get scorecard entry", err)
	}
	return entry, nil
}

// Delete removes an entry
func (r *BunScorecardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.ScorecardEntry)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapErr("delete scorecard entry", err)
	}
	return affected("delete scorecard entry", res)
}

// ListByTeam lists a team's entries; year 0 means every year
func (r *BunScorecardRepository) ListByTeam(ctx context.Context, teamID string, year int) ([]models.ScorecardEntry, error) {
	entries := []models.ScorecardEntry{}
	q := r.db.NewSelect().
		Model(&entries).
		Where("team_id = ?", teamID)
	if year > 0 {
		q = q.Where("year = ?", year)
	}
	err := q.Order("year ASC", "month ASC", "application_id ASC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list scorecard entries", err)
	}
	return entries, nil
}
