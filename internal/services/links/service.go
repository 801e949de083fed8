// Package links maintains the shared link directory.
package links

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
)

// LinkInput is the body accepted when creating or updating a link.
type LinkInput struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Service implements link directory operations. Reading is open to every
// signed-in user; writing is scoped to the owning team.
type Service struct {
	links  repository.LinkRepository
	logger *zap.Logger
}

// NewService creates a link service.
func NewService(links repository.LinkRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{links: links, logger: logger}
}

// Search lists links whose title or description contains query.
func (s *Service) Search(ctx context.Context, sess *auth.Session, query string) ([]models.Link, error) {
	if _, err := auth.RequireAuthenticated(sess); err != nil {
		return nil, err
	}
	return s.links.Search(ctx, query)
}

// Create adds a link owned by teamID.
func (s *Service) Create(ctx context.Context, sess *auth.Session, teamID string, in LinkInput) (*models.Link, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	link := &models.Link{
		TeamID:      teamID,
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		Category:    in.Category,
		CreatedBy:   sess.User.Email,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Update edits a link owned by teamID.
func (s *Service) Update(ctx context.Context, sess *auth.Session, teamID, linkID string, in LinkInput) (*models.Link, error) {
	if err := auth.AssertTeamMember(sess, teamID); err != nil {
		return nil, err
	}
	link, err := s.owned(ctx, teamID, linkID)
	if err != nil {
		return nil, err
	}
	link.Title = in.Title
	link.URL = in.URL
	link.Description = in.Description
	link.Category = in.Category
	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Delete removes a link owned by teamID. Admin only.
func (s *Service) Delete(ctx context.Context, sess *auth.Session, teamID, linkID string) error {
	if err := auth.AssertTeamAdmin(sess, teamID); err != nil {
		return err
	}
	if _, err := s.owned(ctx, teamID, linkID); err != nil {
		return err
	}
	if err := s.links.Delete(ctx, linkID); err != nil {
		return err
	}
	s.logger.Info("link deleted", zap.String("team_id", teamID), zap.String("link_id", linkID), zap.String("by", sess.User.Email))
	return nil
}

func (s *Service) owned(ctx context.Context, teamID, linkID string) (*models.Link, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.TeamID != teamID {
		return nil, fmt.Errorf("link %s: %w", linkID, repository.ErrNotFound)
	}
	return link, nil
}
