package repository

import (
	"context"
	"time"

	"github.com/ensembleops/ensemble/internal/db/models"
)

// TeamRepository exposes persistence operations for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Team, error)
	// ListByIDs returns the teams among ids, ordered by name. Unknown ids
	// are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]models.Team, error)

	// FindByGroups returns every team whose user_group or admin_group is in
	// groups, in a single query. An empty groups slice returns no rows.
	FindByGroups(ctx context.Context, groups []string) ([]models.Team, error)
}

// ApplicationRepository exposes persistence operations for team applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, id string) error
	ListByTeam(ctx context.Context, teamID string) ([]models.Application, error)
}

// FinalizeCheck is evaluated inside the finalize transaction. last is the
// team's most recent finalization (nil when none); open is the number of
// entries that would be finalized. A non-nil error aborts the transaction.
type FinalizeCheck func(last *models.TurnoverFinalization, open int) error

// TurnoverRepository exposes persistence operations for turnover entries
// and finalizations.
type TurnoverRepository interface {
	CreateEntry(ctx context.Context, entry *models.TurnoverEntry) error
	GetEntry(ctx context.Context, id string) (*models.TurnoverEntry, error)
	UpdateEntry(ctx context.Context, entry *models.TurnoverEntry) error
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, teamID string, includeFinalized bool) ([]models.TurnoverEntry, error)

	// FinalizeOpenEntries inserts fin and stamps every open entry of
	// fin.TeamID with it, atomically, after check has passed.
	FinalizeOpenEntries(ctx context.Context, fin *models.TurnoverFinalization, check FinalizeCheck) error
	ListFinalizations(ctx context.Context, teamID string, limit int) ([]models.TurnoverFinalization, error)
}

// ScorecardRepository exposes persistence operations for scorecard entries.
type ScorecardRepository interface {
	// Upsert inserts or replaces the entry for (application, year, month)
	// and returns the stored row.
	Upsert(ctx context.Context, entry *models.ScorecardEntry) (*models.ScorecardEntry, error)
	GetByID(ctx context.Context, id string) (*models.ScorecardEntry, error)
	Delete(ctx context.Context, id string) error
	ListByTeam(ctx context.Context, teamID string, year int) ([]models.ScorecardEntry, error)
}

// LinkRepository exposes persistence operations for the link directory.
type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByID(ctx context.Context, id string) (*models.Link, error)
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, id string) error
	// Search lists links whose title or description contains query
	// (case-insensitive). An empty query lists everything.
	Search(ctx context.Context, query string) ([]models.Link, error)
}

// UserRepository records SSO sign-ins.
type UserRepository interface {
	// UpsertLogin creates the user or refreshes its profile and last_login_at.
	UpsertLogin(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionRepository stores server-side session records.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions that expired before the given time and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
