package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
)

// BunLinkRepository implements LinkRepository using Bun ORM
type BunLinkRepository struct {
	db *bun.DB
}

// NewBunLinkRepository creates a new Bun-based link repository
func NewBunLinkRepository(db *bun.DB) *BunLinkRepository {
	return &BunLinkRepository{db: db}
}

// Create inserts a new link
func (r *BunLinkRepository) Create(ctx context.Context, link *models.Link) error {
	now := time.Now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now
	_, err := r.db.NewInsert().
		Model(link).
		Exec(ctx)
	return wrapErr("create link", err)
}

// GetByID retrieves a link by ID
func (r *BunLinkRepository) GetByID(ctx context.Context, id string) (*models.Link, error) {
	link := new(models.Link)
	err := r.db.NewSelect().
		Model(link).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapErr("get link", err)
	}
	return link, nil
}

// Update replaces the mutable fields of a link
func (r *BunLinkRepository) Update(ctx context.Context, link *models.Link) error {
	link.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(link).
		Column("title", "url", "description", "category", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrapErr("update link", err)
	}
	return affected("update link", res)
}

// Delete removes a link
func (r *BunLinkRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Link)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return wrapErr("delete link", err)
	}
	return affected("delete link", res)
}

// likeEscaper makes LIKE wildcards in user input match literally. '!' is
// the escape character since backslash quoting differs between dialects.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Search lists links whose title or description contains query,
// case-insensitively
func (r *BunLinkRepository) Search(ctx context.Context, query string) ([]models.Link, error) {
	links := []models.Link{}
	q := r.db.NewSelect().Model(&links)
	if query = strings.TrimSpace(query); query != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(title) LIKE ? ESCAPE '!'", pattern).
				WhereOr("LOWER(description) LIKE ? ESCAPE '!'", pattern)
		})
	}
	err := q.Order("category ASC", "title ASC").Scan(ctx)
	if err != nil {
		return nil, wrapErr("search links", err)
	}
	return links, nil
}
