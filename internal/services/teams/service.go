// Package teams manages teams and the applications they own.
package teams

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
)

// TeamInput is the body accepted when creating or updating a team.
type TeamInput struct {
	TeamName   string `json:"teamName"`
	UserGroup  string `json:"userGroup"`
	AdminGroup string `json:"adminGroup"`
}

// ApplicationInput is the body accepted when creating or updating an application.
type ApplicationInput struct {
	Name        string `json:"name"`
	TLA         string `json:"tla"`
	Tier        int    `json:"tier"`
	Description string `json:"description"`
}

// TeamView is a team as seen by a caller, with the caller's role on it.
type TeamView struct {
	models.Team
	Role auth.Role `json:"role"`
}

// Service implements team and application operations.
type Service struct {
	teams  repository.TeamRepository
	apps   repository.ApplicationRepository
	logger *zap.Logger
}

// NewService creates a team service.
func NewService(teams repository.TeamRepository, apps repository.ApplicationRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{teams: teams, apps: apps, logger: logger}
}

// ListMine lists the teams in the caller's permission set.
func (s *Service) ListMine(ctx context.Context, sess *auth.Session) ([]TeamView, error) {
	if _, err := auth.RequireAuthenticated(sess); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sess.Permissions))
	for _, p := range sess.Permissions {
		ids = append(ids, p.TeamID)
	}
	mine, err := s.teams.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]TeamView, 0, len(mine))
	for _, t := range mine {
		if p, ok := sess.Permission(t.ID); ok {
			views = append(views, TeamView{Team: t, Role: p.Role})
		}
	}
	return views, nil
}

// Create registers a team. The caller's session is not changed; access to
// the new team follows from group membership at the next sign-in.
func (s *Service) Create(ctx context.Context, sess *auth.Session, in TeamInput) (*models.Team, error) {
	sc, err := auth.RequireAuthenticated(sess)
	if err != nil {
		return nil, err
	}

	team := &models.Team{
		TeamName:   in.TeamName,
		UserGroup:  in.UserGroup,
		AdminGroup: in.AdminGroup,
		CreatedBy:  sc.Email,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info("team created",
		zap.String("team_id", team.ID),
		zap.String("team_name", team.TeamName),
		zap.String("by", sc.Email),
	)
	return team, nil
}

// Get returns a team the caller belongs to.
func (s *Service) Get(ctx context.Context, sess *auth.Session, teamID string) (*models.Team, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	return s.teams.GetByID(ctx, teamID)
}

// Update renames a team or changes its groups. Admin only.
func (s *Service) Update(ctx context.Context, sess *auth.Session, teamID string, in TeamInput) (*models.Team, error) {
	if err := auth.AssertTeamAdmin(sess, teamID); err != nil {
		return nil, err
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	team.TeamName = in.TeamName
	team.UserGroup = in.UserGroup
	team.AdminGroup = in.AdminGroup
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info("team updated", zap.String("team_id", teamID), zap.String("by", sess.User.Email))
	return team, nil
}

// Delete removes a team and everything it owns. Admin only.
func (s *Service) Delete(ctx context.Context, sess *auth.Session, teamID string) error {
	if err := auth.AssertTeamAdmin(sess, teamID); err != nil {
		return err
	}
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return err
	}
	s.logger.Info("team deleted", zap.String("team_id", teamID), zap.String("by", sess.User.Email))
	return nil
}

// ListApplications lists a team's applications.
func (s *Service) ListApplications(ctx context.Context, sess *auth.Session, teamID string) ([]models.Application, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	return s.apps.ListByTeam(ctx, teamID)
}

// CreateApplication adds an application to a team. Admin only.
func (s *Service) CreateApplication(ctx context.Context, sess *auth.Session, teamID string, in ApplicationInput) (*models.Application, error) {
	if err := auth.AssertTeamAdmin(sess, teamID); err != nil {
		return nil, err
	}

	app := &models.Application{
		TeamID:      teamID,
		Name:        in.Name,
		TLA:         in.TLA,
		Tier:        in.Tier,
		Description: in.Description,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateApplication changes an application of the team. Admin only.
func (s *Service) UpdateApplication(ctx context.Context, sess *auth.Session, teamID, appID string, in ApplicationInput) (*models.Application, error) {
	if err := auth.AssertTeamAdmin(sess, teamID); err != nil {
		return nil, err
	}

	app, err := s.ownedApplication(ctx, teamID, appID)
	if err != nil {
		return nil, err
	}
	app.Name = in.Name
	app.TLA = in.TLA
	if in.Tier != 0 {
		app.Tier = in.Tier
	}
	app.Description = in.Description
	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// DeleteApplication removes an application of the team. Admin only.
func (s *Service) DeleteApplication(ctx context.Context, sess *auth.Session, teamID, appID string) error {
	if err := auth.AssertTeamAdmin(sess, teamID); err != nil {
		return err
	}
	if _, err := s.ownedApplication(ctx, teamID, appID); err != nil {
		return err
	}
	return s.apps.Delete(ctx, appID)
}

// ownedApplication loads appID and reports ErrNotFound when it belongs to
// another team, so ids from other teams are indistinguishable from missing ones.
func (s *Service) ownedApplication(ctx context.Context, teamID, appID string) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.TeamID != teamID {
		return nil, fmt.Errorf("application %s: %w", appID, repository.ErrNotFound)
	}
	return app, nil
}
