package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
)

type stubLoader struct {
	sess *auth.Session
	err  error
}

func (s stubLoader) Load(*http.Request) (*auth.Session, error) {
	return s.sess, s.err
}

func captureSession(got **auth.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = auth.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestSessionMiddleware(t *testing.T) {
	valid := &auth.Session{User: auth.User{Email: "a@example.com"}, Permissions: []auth.Permission{}, ExpiresAt: time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		loader stubLoader
		want   *auth.Session
	}{
		{name: "session attached", loader: stubLoader{sess: valid}, want: valid},
		{name: "no cookie", loader: stubLoader{}},
		{name: "tampered cookie", loader: stubLoader{err: auth.ErrInvalidSession}},
		{name: "other failure", loader: stubLoader{err: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *auth.Session
			h := NewSessionMiddleware(tt.loader, zap.NewNop())(captureSession(&got))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams", nil))

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireSession(t *testing.T) {
	var got *auth.Session
	h := RequireSession(captureSession(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/teams", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	sess := &auth.Session{User: auth.User{Email: "a@example.com"}, ExpiresAt: time.Now().Add(time.Hour).Unix()}
	req := httptest.NewRequest(http.MethodGet, "/api/teams", nil)
	req = req.WithContext(auth.WithSession(req.Context(), sess))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Same(t, sess, got)
}
