package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/repository"
	"github.com/ensembleops/ensemble/internal/services/iam"
	"github.com/ensembleops/ensemble/internal/services/turnover"
	"github.com/ensembleops/ensemble/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var cooldown *turnover.CooldownError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, auth.ErrUnauthenticated.Error()
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, validation.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "already exists"
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests, cooldown.Error()
	case errors.Is(err, turnover.ErrEntryFinalized), errors.Is(err, turnover.ErrNothingToFinalize):
		return http.StatusConflict, err.Error()
	case errors.Is(err, iam.ErrResolution):
		return http.StatusInternalServerError, iam.ErrResolution.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// writeError writes err as a JSON error body. Server errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	var cooldown *turnover.CooldownError
	if errors.As(err, &cooldown) {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(cooldown.RetryAfter.Seconds()))))
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
