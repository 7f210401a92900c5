package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"radreport-ai/internal/checklist"
	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/indexer"
	"radreport-ai/internal/llm"
	"radreport-ai/internal/questionnaire"
	"radreport-ai/internal/report"
	"radreport-ai/internal/service"
)

// maxBodyBytes bounds request bodies; reference sources are the largest payloads.
const maxBodyBytes = 8 << 20

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// methodNotAllowed rejects r unless it uses method.
func methodNotAllowed(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return false
	}
	ctx := r.Context()
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return true
}

// statusFor maps an error from the service layer to an HTTP status code.
func statusFor(err error) int {
	var validationErr *service.ValidationError
	var ingestErr *indexer.IngestError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &ingestErr),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, questionnaire.ErrInvalidAnswer):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, questionnaire.ErrSessionNotFound),
		errors.Is(err, report.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, questionnaire.ErrOutOfSequence),
		errors.Is(err, questionnaire.ErrSessionClosed),
		errors.Is(err, questionnaire.ErrCaseExists):
		return http.StatusConflict
	case errors.Is(err, report.ErrEmptySession),
		errors.Is(err, checklist.ErrRetrievalEmpty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrTimeout),
		errors.Is(err, llm.ErrUnavailable),
		errors.Is(err, service.ErrExternalService):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
// Client errors carry the error text; server errors carry defaultMsg.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "service error", "error", err, "status", status)
		if status == http.StatusBadGateway {
			writeError(w, status, "Generation service unavailable")
			return
		}
		writeError(w, status, defaultMsg)
		return
	}

	logger.WarnContext(ctx, "request rejected", "error", err, "status", status)
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, status, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}
	writeError(w, status, err.Error())
}
