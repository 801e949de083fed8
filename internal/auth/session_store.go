package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/ensembleops/ensemble/internal/config"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
)

// SessionRecords persists session payloads server-side.
type SessionRecords interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// SessionStore keeps session payloads in the database and hands the browser
// an encrypted, authenticated cookie holding only the session ID. Keys come
// from configuration; there is no fallback secret.
type SessionStore struct {
	records SessionRecords
	codec   *securecookie.SecureCookie
	name    string
	ttl     time.Duration
	secure  bool
}

// NewSessionStore validates cfg and builds a store over records. secure
// marks the cookie HTTPS-only.
func NewSessionStore(cfg config.SessionConfig, records SessionRecords, secure bool) (*SessionStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if records == nil {
		return nil, errors.New("session store requires a session repository")
	}
	codec := securecookie.New([]byte(cfg.HashKey), []byte(cfg.BlockKey))
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.TTL.Seconds()))

	return &SessionStore{
		records: records,
		codec:   codec,
		name:    cfg.CookieName,
		ttl:     cfg.TTL,
		secure:  secure,
	}, nil
}

// TTL is the lifetime given to newly issued sessions.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Issue stores sess and writes its ID to the response cookie.
func (s *SessionStore) Issue(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	record := &models.Session{
		Email:     sess.User.Email,
		Payload:   string(payload),
		ExpiresAt: sess.ExpiresAtTime().UTC(),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	encoded, err := s.codec.Encode(s.name, record.ID)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    encoded,
		Path:     "/",
		Expires:  sess.ExpiresAtTime(),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load returns the session named by the request's cookie. It returns
// (nil, nil) when no cookie is present, when the session is unknown (signed
// out or purged) or expired, and ErrInvalidSession when the cookie or the
// stored payload is tampered with or malformed.
func (s *SessionStore) Load(r *http.Request) (*Session, error) {
	id, err := s.cookieID(r)
	if err != nil || id == "" {
		return nil, err
	}

	record, err := s.records.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := new(Session)
	if err := json.Unmarshal([]byte(record.Payload), sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		return nil, nil
	}
	return sess, nil
}

// Clear deletes the request's session and expires the cookie. The cookie is
// expired even when the delete fails.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	id, err := s.cookieID(r)
	if err != nil || id == "" {
		return nil
	}
	if err := s.records.Delete(r.Context(), id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// cookieID decodes the session ID from the request cookie; "" when absent.
func (s *SessionStore) cookieID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	var id string
	if err := s.codec.Decode(s.name, cookie.Value, &id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return id, nil
}
