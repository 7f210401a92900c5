package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"radreport-ai/internal/checklist"
	"radreport-ai/internal/indexer"
	"radreport-ai/internal/llm"
	"radreport-ai/internal/questionnaire"
	"radreport-ai/internal/report"
	"radreport-ai/internal/service"
	"radreport-ai/internal/storage"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &service.ValidationError{Field: "k", Message: "must be at most 50"}, http.StatusBadRequest},
		{"ingest", &indexer.IngestError{SourceID: "a", Err: indexer.ErrEmptySource}, http.StatusBadRequest},
		{"invalid answer", fmt.Errorf("wrapped: %w", questionnaire.ErrInvalidAnswer), http.StatusBadRequest},
		{"session not found", questionnaire.ErrSessionNotFound, http.StatusNotFound},
		{"report not found", report.ErrReportNotFound, http.StatusNotFound},
		{"out of sequence", questionnaire.ErrOutOfSequence, http.StatusConflict},
		{"session closed", questionnaire.ErrSessionClosed, http.StatusConflict},
		{"case exists", questionnaire.ErrCaseExists, http.StatusConflict},
		{"empty session", report.ErrEmptySession, http.StatusUnprocessableEntity},
		{"retrieval empty", checklist.ErrRetrievalEmpty, http.StatusUnprocessableEntity},
		{"generation timeout", fmt.Errorf("llm: %w", llm.ErrTimeout), http.StatusBadGateway},
		{"breaker open", llm.ErrUnavailable, http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"persistence", storage.ErrPersistence, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestHandleServiceError_Messages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"client error carries text", questionnaire.ErrOutOfSequence, "answer out of sequence"},
		{"validation prefixed", &service.ValidationError{Field: "studyType", Message: "cannot be empty"}, "Validation error: validation error on field studyType: cannot be empty"},
		{"server error hides text", fmt.Errorf("disk: %w", storage.ErrPersistence), "Failed"},
		{"generation error", llm.ErrTimeout, "Generation service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleServiceError(w, context.Background(), tt.err, "Failed")

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error != tt.wantMsg {
				t.Errorf("error message = %q, want %q", resp.Error, tt.wantMsg)
			}
			if w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
			}
		})
	}
}
