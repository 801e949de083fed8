package iam

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/telemetry"
)

// ErrResolution wraps every store failure seen while resolving permissions.
// Callers must treat it as an outage, never as "no teams".
var ErrResolution = errors.New("permission resolution failed")

// TeamLookup is the store query the resolver depends on.
type TeamLookup interface {
	FindByGroups(ctx context.Context, groups []string) ([]models.Team, error)
}

// Resolver maps group memberships to team permissions.
type Resolver struct {
	teams  TeamLookup
	logger *zap.Logger
}

// NewResolver creates a resolver backed by teams.
func NewResolver(teams TeamLookup, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{teams: teams, logger: logger}
}

// ResolvePermissions returns one permission per team reachable from groups.
// A team matched through its admin group resolves to ADMIN; otherwise
// MEMBER. Empty input returns an empty set without touching the store.
// The result is ordered by team name, then id.
func (r *Resolver) ResolvePermissions(ctx context.Context, groups []string) ([]auth.Permission, error) {
	groupSet := make(map[string]struct{}, len(groups))
	unique := make([]string, 0, len(groups))
	for _, g := range groups {
		if _, seen := groupSet[g]; seen {
			continue
		}
		groupSet[g] = struct{}{}
		unique = append(unique, g)
	}

	if len(unique) == 0 {
		return []auth.Permission{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerIAM, "iam.ResolvePermissions",
		attribute.Int(telemetry.AttrGroupCount, len(unique)),
	)
	defer span.End()

	rows, err := r.teams.FindByGroups(ctx, unique)
	if err != nil {
		telemetry.RecordError(span, err)
		r.logger.Error("resolve permissions: team lookup failed",
			zap.Int("groups", len(unique)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrResolution, err)
	}

	perms := foldPermissions(rows, groupSet)

	admins := 0
	for _, p := range perms {
		if p.Role == auth.RoleAdmin {
			admins++
		}
	}
	span.SetAttributes(
		attribute.Int(telemetry.AttrPermissionCount, len(perms)),
		attribute.Int(telemetry.AttrAdminCount, admins),
	)
	r.logger.Debug("resolved permissions",
		zap.Int("groups", len(unique)),
		zap.Int("teams", len(perms)),
		zap.Int("admin", admins),
	)

	return perms, nil
}

// foldPermissions collapses team rows into one permission per team id.
// A team recorded as ADMIN is never downgraded by a later row.
func foldPermissions(rows []models.Team, groups map[string]struct{}) []auth.Permission {
	byTeam := make(map[string]auth.Permission, len(rows))
	for _, row := range rows {
		role := auth.RoleMember
		if _, ok := groups[row.AdminGroup]; ok {
			role = auth.RoleAdmin
		}

		existing, seen := byTeam[row.ID]
		if !seen {
			byTeam[row.ID] = auth.Permission{TeamID: row.ID, TeamName: row.TeamName, Role: role}
			continue
		}
		if existing.Role == auth.RoleMember && role == auth.RoleAdmin {
			existing.Role = auth.RoleAdmin
			byTeam[row.ID] = existing
		}
	}

	perms := make([]auth.Permission, 0, len(byTeam))
	for _, p := range byTeam {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool {
		if perms[i].TeamName != perms[j].TeamName {
			return perms[i].TeamName < perms[j].TeamName
		}
		return perms[i].TeamID < perms[j].TeamID
	})
	return perms
}
