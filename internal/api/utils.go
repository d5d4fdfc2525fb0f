package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/FACorreiaa/medibook-api/internal/types"
)

const maxBodyBytes = 1_048_576

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrorResponse writes a standard JSON error response including request ID.
func ErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSONResponse(w, r, status, map[string]any{
		"success":    false,
		"error":      message,
		"request_id": middleware.GetReqID(r.Context()),
	})
}

// ValidationErrorResponse writes a 400 with the per-field messages produced
// by ozzo-validation.
func ValidationErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	resp := map[string]any{
		"success":    false,
		"error":      "Validation failed",
		"request_id": middleware.GetReqID(r.Context()),
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		resp["fields"] = fieldErrs
	} else {
		resp["error"] = err.Error()
	}
	WriteJSONResponse(w, r, http.StatusBadRequest, resp)
}

// WriteJSONResponse encodes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// DecodeJSONBody reads a single JSON object into dst, rejecting unknown
// fields and bodies over 1MB.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return fmt.Errorf("body contains unknown key %q", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return fmt.Errorf("error decoding JSON body: %w", err)
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// StatusForError maps domain errors to an HTTP status and a message safe to
// show the caller. Unclassified errors become a generic 500.
func StatusForError(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrDuplicateIdentity):
		return http.StatusConflict, types.ErrDuplicateIdentity.Error()
	case errors.Is(err, types.ErrInvalidCredentials):
		return http.StatusUnauthorized, types.ErrInvalidCredentials.Error()
	case errors.Is(err, types.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, types.ErrPendingVerification):
		return http.StatusForbidden, types.ErrPendingVerification.Error()
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden, "Action forbidden"
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, types.ErrInvalidTransition), errors.Is(err, types.ErrConflict):
		return http.StatusConflict, "Request conflicts with the current state"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// ParsePagination reads limit and offset from the query string. A missing
// limit means DefaultPageSize and larger values are capped at MaxPageSize.
func ParsePagination(r *http.Request) (limit, offset int, err error) {
	limit = DefaultPageSize
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("%w: limit must be a positive integer", types.ErrValidation)
		}
		limit = min(limit, MaxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("%w: offset must be a non-negative integer", types.ErrValidation)
		}
	}
	return limit, offset, nil
}
