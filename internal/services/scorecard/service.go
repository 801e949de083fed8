// Package scorecard records monthly availability and volume per application.
package scorecard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
	"github.com/ensembleops/ensemble/internal/validation"
)

// EntryInput is the body accepted by Upsert.
type EntryInput struct {
	ApplicationID string  `json:"applicationId"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Availability  float64 `json:"availability"`
	Volume        int64   `json:"volume"`
}

// Service implements scorecard operations.
type Service struct {
	entries repository.ScorecardRepository
	apps    repository.ApplicationRepository
	logger  *zap.Logger
}

// NewService creates a scorecard service.
func NewService(entries repository.ScorecardRepository, apps repository.ApplicationRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{entries: entries, apps: apps, logger: logger}
}

// List returns the team's entries for year, or every year when year is 0.
func (s *Service) List(ctx context.Context, sess *auth.Session, teamID string, year int) ([]models.ScorecardEntry, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	return s.entries.ListByTeam(ctx, teamID, year)
}

// Upsert writes the entry for (application, year, month), replacing any
// previous values for that period.
func (s *Service) Upsert(ctx context.Context, sess *auth.Session, teamID string, in EntryInput) (*models.ScorecardEntry, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	if in.Availability < 0 || in.Availability > 100 {
		return nil, fmt.Errorf("%w: availability must be between 0 and 100", validation.ErrInvalidInput)
	}
	if in.Volume < 0 {
		return nil, fmt.Errorf("%w: volume must not be negative", validation.ErrInvalidInput)
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", validation.ErrInvalidInput)
	}

	app, err := s.apps.GetByID(ctx, in.ApplicationID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && app.TeamID != teamID) {
		return nil, fmt.Errorf("%w: application %s does not belong to team", validation.ErrInvalidInput, in.ApplicationID)
	}
	if err != nil {
		return nil, err
	}

	stored, err := s.entries.Upsert(ctx, &models.ScorecardEntry{
		TeamID:        teamID,
		ApplicationID: in.ApplicationID,
		Year:          in.Year,
		Month:         in.Month,
		Availability:  in.Availability,
		Volume:        in.Volume,
		UpdatedBy:     sess.User.Email,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("scorecard entry saved",
		zap.String("team_id", teamID),
		zap.String("application_id", in.ApplicationID),
		zap.Int("year", in.Year),
		zap.Int("month", in.Month),
	)
	return stored, nil
}

// Delete removes an entry. Admin only.
func (s *Service) Delete(ctx context.Context, sess *auth.Session, teamID, entryID string) error {
	if err := auth.AssertTeamAdmin(sess, teamID); err != nil {
		return err
	}
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.TeamID != teamID {
		return fmt.Errorf("scorecard entry %s: %w", entryID, repository.ErrNotFound)
	}
	return s.entries.Delete(ctx, entryID)
}
