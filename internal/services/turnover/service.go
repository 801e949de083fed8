// Package turnover implements shift turnover entries and the finalize workflow.
package turnover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
	"github.com/ensembleops/ensemble/internal/telemetry"
	"github.com/ensembleops/ensemble/internal/validation"
)

// EntryInput is the body accepted when creating or updating an entry.
type EntryInput struct {
	EntryType     models.EntryType `json:"entryType"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Ticket        string           `json:"ticket"`
	ApplicationID *string          `json:"applicationId"`
	Important     bool             `json:"important"`
}

// Service implements turnover operations. Every operation requires team membership.
type Service struct {
	entries  repository.TurnoverRepository
	apps     repository.ApplicationRepository
	cooldown time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a turnover service. cooldown is the minimum time
// between two finalizations of the same team.
func NewService(entries repository.TurnoverRepository, apps repository.ApplicationRepository, cooldown time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		entries:  entries,
		apps:     apps,
		cooldown: cooldown,
		now:      time.Now,
		logger:   logger,
	}
}

// List lists a team's entries, newest first. Finalized entries are included
// only when includeFinalized is set.
func (s *Service) List(ctx context.Context, sess *auth.Session, teamID string, includeFinalized bool) ([]models.TurnoverEntry, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	return s.entries.ListEntries(ctx, teamID, includeFinalized)
}

// Create adds an open entry to the team's turnover.
func (s *Service) Create(ctx context.Context, sess *auth.Session, teamID string, in EntryInput) (*models.TurnoverEntry, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	if err := s.checkInput(ctx, teamID, in); err != nil {
		return nil, err
	}

	entry := &models.TurnoverEntry{
		TeamID:    teamID,
		CreatedBy: sess.User.Email,
	}
	apply(entry, in)
	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update edits an open entry.
func (s *Service) Update(ctx context.Context, sess *auth.Session, teamID, entryID string, in EntryInput) (*models.TurnoverEntry, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	if err := s.checkInput(ctx, teamID, in); err != nil {
		return nil, err
	}

	entry, err := s.openEntry(ctx, teamID, entryID)
	if err != nil {
		return nil, err
	}
	apply(entry, in)
	if err := s.entries.UpdateEntry(ctx, entry); err != nil {
		return nil, s.lostRace(ctx, entryID, err)
	}
	return entry, nil
}

// Delete removes an open entry.
func (s *Service) Delete(ctx context.Context, sess *auth.Session, teamID, entryID string) error {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return err
	}
	if _, err := s.openEntry(ctx, teamID, entryID); err != nil {
		return err
	}
	if err := s.entries.DeleteEntry(ctx, entryID); err != nil {
		return s.lostRace(ctx, entryID, err)
	}
	return nil
}

// Finalize freezes every open entry of the team and records who did it.
// It fails with a *CooldownError when the previous finalization is younger
// than the cooldown, and with ErrNothingToFinalize when there are no open
// entries. The check and the write run in one transaction.
func (s *Service) Finalize(ctx context.Context, sess *auth.Session, teamID string) (*models.TurnoverFinalization, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerTurnover, "turnover.Finalize",
		attribute.String(telemetry.AttrTeamID, teamID),
	)
	defer span.End()

	now := s.now().UTC()
	fin := &models.TurnoverFinalization{
		TeamID:      teamID,
		FinalizedBy: sess.User.Email,
		FinalizedAt: now,
	}

	err := s.entries.FinalizeOpenEntries(ctx, fin, func(last *models.TurnoverFinalization, open int) error {
		if last != nil && s.cooldown > 0 {
			if elapsed := now.Sub(last.FinalizedAt); elapsed < s.cooldown {
				return &CooldownError{LastFinalizedAt: last.FinalizedAt, RetryAfter: s.cooldown - elapsed}
			}
		}
		if open == 0 {
			return ErrNothingToFinalize
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int(telemetry.AttrEntryCount, fin.EntryCount))
	s.logger.Info("turnover finalized",
		zap.String("team_id", teamID),
		zap.String("by", fin.FinalizedBy),
		zap.Int("entries", fin.EntryCount),
	)
	return fin, nil
}

// Finalizations lists the team's finalize history, newest first. limit <= 0
// means no limit.
func (s *Service) Finalizations(ctx context.Context, sess *auth.Session, teamID string, limit int) ([]models.TurnoverFinalization, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	return s.entries.ListFinalizations(ctx, teamID, limit)
}

func (s *Service) checkInput(ctx context.Context, teamID string, in EntryInput) error {
	if !in.EntryType.Valid() {
		return fmt.Errorf("%w: unknown entry type %q", validation.ErrInvalidInput, in.EntryType)
	}
	if in.ApplicationID == nil {
		return nil
	}
	app, err := s.apps.GetByID(ctx, *in.ApplicationID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && app.TeamID != teamID) {
		return fmt.Errorf("%w: application %s does not belong to team", validation.ErrInvalidInput, *in.ApplicationID)
	}
	return err
}

func (s *Service) openEntry(ctx context.Context, teamID, entryID string) (*models.TurnoverEntry, error) {
	entry, err := s.entries.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.TeamID != teamID {
		return nil, fmt.Errorf("turnover entry %s: %w", entryID, repository.ErrNotFound)
	}
	if entry.Finalized() {
		return nil, ErrEntryFinalized
	}
	return entry, nil
}

// lostRace turns a write that matched no open row into ErrEntryFinalized
// when the entry was finalized concurrently.
func (s *Service) lostRace(ctx context.Context, entryID string, err error) error {
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if entry, getErr := s.entries.GetEntry(ctx, entryID); getErr == nil && entry.Finalized() {
		return ErrEntryFinalized
	}
	return err
}

func apply(entry *models.TurnoverEntry, in EntryInput) {
	entry.EntryType = in.EntryType
	entry.Title = in.Title
	entry.Description = in.Description
	entry.Ticket = in.Ticket
	entry.ApplicationID = in.ApplicationID
	entry.Important = in.Important
}
