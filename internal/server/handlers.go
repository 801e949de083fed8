package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/validation"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	opts   RouterOptions
	logger *zap.Logger
}

// decode validates the request body against schema and unmarshals it into dst.
func (h *handlers) decode(r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", validation.ErrInvalidInput, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: body exceeds %d bytes", validation.ErrInvalidInput, maxBodyBytes)
	}
	return h.opts.Validator.Decode(schema, body, dst)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

func session(r *http.Request) *auth.Session {
	return auth.SessionFromContext(r.Context())
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", validation.ErrInvalidInput, name)
	}
	return v, nil
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", validation.ErrInvalidInput, name)
	}
	return v, nil
}
