package iam

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/telemetry"
)

// UserRecorder records sign-ins.
type UserRecorder interface {
	UpsertLogin(ctx context.Context, user *models.User) error
}

// LoginService builds sessions for identities asserted by the identity provider.
type LoginService struct {
	users    UserRecorder
	resolver *Resolver
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewLoginService creates a login service issuing sessions valid for ttl.
func NewLoginService(users UserRecorder, resolver *Resolver, ttl time.Duration, logger *zap.Logger) *LoginService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginService{
		users:    users,
		resolver: resolver,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Login records the sign-in, resolves the identity's permissions and
// returns the session to issue. Resolution failures abort the login.
func (s *LoginService) Login(ctx context.Context, id *auth.Identity) (*auth.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerIAM, "iam.Login",
		attribute.String(telemetry.AttrUserEmail, id.User.Email),
		attribute.Int(telemetry.AttrGroupCount, len(id.Groups)),
	)
	defer span.End()

	record := &models.User{
		Email:     id.User.Email,
		FirstName: id.User.FirstName,
		LastName:  id.User.LastName,
		AdsID:     id.User.AdsID,
	}
	if err := s.users.UpsertLogin(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("record login: %w", err)
	}

	perms, err := s.resolver.ResolvePermissions(ctx, id.Groups)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sess, err := auth.NewSession(id.User, perms, s.now().Add(s.ttl))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("build session: %w", err)
	}

	s.logger.Info("user signed in",
		zap.String("email", id.User.Email),
		zap.Int("teams", len(perms)),
		zap.Time("expires_at", sess.ExpiresAtTime()),
	)
	return sess, nil
}
