package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
)

// SessionLoader reads the session carried by a request.
type SessionLoader interface {
	Load(r *http.Request) (*auth.Session, error)
}

// NewSessionMiddleware attaches the request's session to the context.
// Requests without a usable session pass through with no session; guards
// downstream reject them where a session is required.
func NewSessionMiddleware(store SessionLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidSession) {
					logger.Debug("ignoring invalid session cookie",
						zap.String("path", r.URL.Path),
						zap.Error(err),
					)
				} else {
					logger.Warn("session load failed", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
			if sess != nil {
				r = r.WithContext(auth.WithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests that carry no usable session with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.RequireAuthenticated(auth.SessionFromContext(r.Context())); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
