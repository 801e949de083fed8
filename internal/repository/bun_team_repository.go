package repository

import (
	"context"
	"time"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
)

// BunTeamRepository implements TeamRepository using Bun ORM
type BunTeamRepository struct {
	db *bun.DB
}

// NewBunTeamRepository creates a new Bun-based team repository
func NewBunTeamRepository(db *bun.DB) *BunTeamRepository {
	return &BunTeamRepository{db: db}
}

// Create inserts a new team
func (r *BunTeamRepository) Create(ctx context.Context, team *models.Team) error {
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	_, err := r.db.NewInsert().
		Model(team).
		Exec(ctx)
	return wrapErr("create team", err)
}

// GetByID retrieves a team by ID
func (r *BunTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	team := new(models.Team)
	err := r.db.NewSelect().
		Model(team).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("get team", err)
	}
	return team, nil
}

// Update replaces the name and groups of a team
func (r *BunTeamRepository) Update(ctx context.Context, team *models.Team) error {
	team.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(team).
		Column("team_name", "user_group", "admin_group", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrapErr("update team", err)
	}
	return affected("update team", res)
}

// Delete removes a team; team-owned rows cascade
func (r *BunTeamRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Team)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapErr("delete team", err)
	}
	return affected("delete team", res)
}

// List retrieves all teams ordered by name
func (r *BunTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	teams := []models.Team{}
	err := r.db.NewSelect().
		Model(&teams).
		Order("team_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("list teams", err)
	}
	return teams, nil
}

// ListByIDs retrieves the teams with the given ids ordered by name
func (r *BunTeamRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Team, error) {
	teams := []models.Team{}
	if len(ids) == 0 {
		return teams, nil
	}
	err := r.db.NewSelect().
		Model(&teams).
		Where("id IN (?)", bun.In(ids)).
		Order("team_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("list teams by id", err)
	}
	return teams, nil
}

// FindByGroups returns the teams whose user or admin group is in groups.
func (r *BunTeamRepository) FindByGroups(ctx context.Context, groups []string) ([]models.Team, error) {
	if len(groups) == 0 {
		return []models.Team{}, nil
	}
	teams := []models.Team{}
	err := r.db.NewSelect().
		Model(&teams).
		Where("user_group IN (?) OR admin_group IN (?)", bun.In(groups), bun.In(groups)).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("find teams by groups", err)
	}
	return teams, nil
}
