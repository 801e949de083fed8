package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BunTurnoverRepository implements TurnoverRepository using Bun ORM
type BunTurnoverRepository struct {
	db *bun.DB
}

// NewBunTurnoverRepository creates a new Bun-based turnover repository
func NewBunTurnoverRepository(db *bun.DB) *BunTurnoverRepository {
	return &BunTurnoverRepository{db: db}
}

// CreateEntry inserts a new open entry
func (r *BunTurnoverRepository) CreateEntry(ctx context.Context, entry *models.TurnoverEntry) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	_, err := r.db.NewInsert().
		Model(entry).
		Exec(ctx)
	return wrapErr("create turnover entry", err)
}

// GetEntry retrieves an entry by ID
func (r *BunTurnoverRepository) GetEntry(ctx context.Context, id string) (*models.TurnoverEntry, error) {
	entry := new(models.TurnoverEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("get turnover entry", err)
	}
	return entry, nil
}

// UpdateEntry replaces the editable fields of an open entry. Finalized
// entries are never matched.
func (r *BunTurnoverRepository) UpdateEntry(ctx context.Context, entry *models.TurnoverEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(entry).
		Column("application_id", "entry_type", "title", "description", "ticket", "important", "updated_at").
		WherePK().
		Where("finalization_id IS NULL").
		Exec(ctx)
	if err != nil {
		return wrapErr("update turnover entry", err)
	}
	return affected("update turnover entry", res)
}

// DeleteEntry removes an open entry. Finalized entries are never matched.
func (r *BunTurnoverRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.TurnoverEntry)(nil)).
		Where("id = ?", id).
		Where("finalization_id IS NULL").
		Exec(ctx)
	if err != nil {
		return wrapErr("delete turnover entry", err)
	}
	return affected("delete turnover entry", res)
}

// ListEntries lists the entries of a team, newest first
func (r *BunTurnoverRepository) ListEntries(ctx context.Context, teamID string, includeFinalized bool) ([]models.TurnoverEntry, error) {
	entries := []models.TurnoverEntry{}
	q := r.db.NewSelect().
		Model(&entries).
		Where("team_id = ?", teamID)
	if !includeFinalized {
		q = q.Where("finalization_id IS NULL")
	}
	err := q.Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("list turnover entries", err)
	}
	return entries, nil
}

// lockTeam serializes finalizations of one team. PostgreSQL takes a row
// lock on the team; SQLite already runs one writer at a time.
func lockTeam(ctx context.Context, tx bun.Tx, teamID string) error {
	if tx.Dialect().Name() != dialect.PG {
		return nil
	}
	var id string
	err := tx.NewSelect().
		Model((*models.Team)(nil)).
		Column("id").
		Where("id = ?", teamID).
		For("UPDATE").
		Scan(ctx, &id)
	return wrapErr("lock team", err)
}

// FinalizeOpenEntries records fin and freezes the team's open entries in one transaction.
func (r *BunTurnoverRepository) FinalizeOpenEntries(ctx context.Context, fin *models.TurnoverFinalization, check FinalizeCheck) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := lockTeam(ctx, tx, fin.TeamID); err != nil {
			return err
		}

		var last *models.TurnoverFinalization
		prev := new(models.TurnoverFinalization)
		err := tx.NewSelect().
			Model(prev).
			Where("team_id = ?", fin.TeamID).
			Order("finalized_at DESC").
			Limit(1).
			Scan(ctx)
		switch {
		case err == nil:
			last = prev
		case errors.Is(err, sql.ErrNoRows):
		default:
			return wrapErr("load last finalization", err)
		}

		open, err := tx.NewSelect().
			Model((*models.TurnoverEntry)(nil)).
			Where("team_id = ?", fin.TeamID).
			Where("finalization_id IS NULL").
			Count(ctx)
		if err != nil {
			return wrapErr("count open entries", err)
		}

		if check != nil {
			if err := check(last, open); err != nil {
				return err
			}
		}

		fin.EntryCount = open
		if _, err := tx.NewInsert().Model(fin).Exec(ctx); err != nil {
			return wrapErr("create finalization", err)
		}

		res, err := tx.NewUpdate().
			Model((*models.TurnoverEntry)(nil)).
			Set("finalization_id = ?", fin.ID).
			Set("finalized_at = ?", fin.FinalizedAt).
			Where("team_id = ?", fin.TeamID).
			Where("finalization_id IS NULL").
			Exec(ctx)
		if err != nil {
			return wrapErr("finalize entries", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("finalize entries: get rows affected: %w", err)
		}
		if int(n) != open {
			return fmt.Errorf("finalize entries: expected %d rows, updated %d", open, n)
		}
		return nil
	})
}

// ListFinalizations lists the finalizations of a team, newest first
func (r *BunTurnoverRepository) ListFinalizations(ctx context.Context, teamID string, limit int) ([]models.TurnoverFinalization, error) {
	fins := []models.TurnoverFinalization{}
	q := r.db.NewSelect().
		Model(&fins).
		Where("team_id = ?", teamID).
		Order("finalized_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, wrapErr("list finalizations", err)
	}
	return fins, nil
}
