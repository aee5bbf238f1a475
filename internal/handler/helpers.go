// Package handler wires the HTTP surface: routing, auth middleware and
// the JSON helpers shared by every endpoint.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/arsipak/admin-bff-go/internal/domain"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFieldErrors writes the per-field validation envelope. Messages are
// forwarded verbatim so screens can place them next to the inputs.
func writeFieldErrors(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// handleServiceError maps domain errors onto HTTP status codes.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var notFound *domain.ErrNotFound
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden
	var validation *domain.ErrValidation
	var fieldErrors *domain.ErrFieldErrors
	var conflict *domain.ErrConflict
	var circuitOpen *domain.ErrCircuitOpen
	var upstream *domain.ErrUpstream
	var timeout *domain.ErrTimeout

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &unauthorized):
		writeError(w, http.StatusUnauthorized, unauthorized.Error())
	case errors.As(err, &forbidden):
		writeError(w, http.StatusForbidden, forbidden.Error())
	case errors.As(err, &fieldErrors):
		writeFieldErrors(w, fieldErrors.Fields)
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &circuitOpen):
		writeError(w, http.StatusServiceUnavailable, "upstream temporarily unavailable")
	case errors.As(err, &timeout):
		writeError(w, http.StatusGatewayTimeout, timeout.Error())
	case errors.As(err, &upstream):
		logger.Error("upstream error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream request failed")
	default:
		logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseListParams reads pagination, search and status query parameters.
func parseListParams(r *http.Request) domain.ListParams {
	p := domain.ListParams{Page: 1, PageSize: 20}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			p.PageSize = n
		}
	}
	p.Search = r.URL.Query().Get("search")
	p.Status = r.URL.Query().Get("status")
	return p
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.ErrValidation{Field: "body", Message: "invalid JSON body"}
	}
	return nil
}
