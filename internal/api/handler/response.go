package handler

import (
	"bytes"
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var errNullBody = errors.New("request body is null")

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return err
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errNullBody
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, dto.ErrorResponse{Error: dto.ErrorDetail{Message: message}})
}

func respondError(w http.ResponseWriter, err error) {
	status, code, message, field := http.StatusInternalServerError, "", "An unexpected error occurred.", ""
	var dataErr *customer.DataValidationError
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &dataErr):
		status, code, message, field = http.StatusBadRequest, dataErr.Reason.String(), dataErr.Error(), dataErr.Field
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidQuery):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Customer not found."
	case errors.Is(err, apperrors.ErrUnsupportedMediaType):
		status, message = http.StatusUnsupportedMediaType, err.Error()
	case errors.As(err, &appErr):
		slog.Default().Error("Application error", "error", err)
		message = appErr.Error()
	case errors.Is(err, apperrors.ErrDatabase):
		slog.Default().Error("Database error", "error", err)
		message = "A database error occurred."
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// requestBaseURL prefers the configured base and falls back to the
// scheme and host the request arrived on.
func requestBaseURL(configured string, r *http.Request) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}
