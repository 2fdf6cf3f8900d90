package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/shopifake/catalog/pkg/errors"
	"github.com/shopifake/catalog/pkg/logger"
	"github.com/shopifake/catalog/pkg/validator"
)

// ErrorResponse is the standard error payload returned by every endpoint.
type ErrorResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps an application error to the standard error payload. It
// prefers the request-scoped logger from context over the fallback logger and
// logs internal errors.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	message := http.StatusText(status)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if status != http.StatusInternalServerError {
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		message = "an internal error occurred"
	}

	WriteJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

// WriteValidationError writes a 400 payload carrying field-level violations
// from the syntactic validation pass.
func WriteValidationError(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    http.StatusBadRequest,
		Error:     http.StatusText(http.StatusBadRequest),
		Message:   err.Error(),
		Path:      r.URL.Path,
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		resp.Message = "request validation failed"
		resp.Fields = valErr.Fields()
	}

	WriteJSON(w, http.StatusBadRequest, resp)
}

// ParseUUID validates that the given path parameter is a valid UUID. On
// failure it writes a 400 response and returns false, signaling the caller to
// return early.
func ParseUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{
			Timestamp: time.Now().UTC(),
			Status:    http.StatusBadRequest,
			Error:     http.StatusText(http.StatusBadRequest),
			Message:   "invalid UUID: " + param,
			Path:      r.URL.Path,
		})
		return uuid.Nil, false
	}
	return id, true
}
