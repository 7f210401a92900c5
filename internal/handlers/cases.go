package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/report"
	"radreport-ai/internal/service"
)

// caseIDParam is the chi URL parameter naming the case.
const caseIDParam = "caseID"

// CaseHandler handles the case lifecycle endpoints.
type CaseHandler struct {
	cases service.CaseService
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(cases service.CaseService) *CaseHandler {
	return &CaseHandler{cases: cases}
}

// ProgressResponse reports how far a case has been answered.
type ProgressResponse struct {
	CaseID   string  `json:"caseId"`
	Progress float64 `json:"progress"`
}

// Start opens a case and returns it with its first question.
//
// POST /api/v1/cases
func (h *CaseHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req service.StartCaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.cases.StartCase(ctx, req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to start case")
		return
	}
	writeJSON(w, ctx, http.StatusCreated, view)
}

// Get returns the case with the question at its cursor.
//
// GET /api/v1/cases/{caseID}
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	view, err := h.cases.GetCase(ctx, chi.URLParam(r, caseIDParam))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load case")
		return
	}
	writeJSON(w, ctx, http.StatusOK, view)
}

// Answer submits one answer at the cursor.
//
// POST /api/v1/cases/{caseID}/answers
func (h *CaseHandler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req service.AnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.cases.SubmitAnswer(ctx, chi.URLParam(r, caseIDParam), req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to record answer")
		return
	}
	writeJSON(w, ctx, http.StatusOK, view)
}

// Progress returns the answered fraction of the case.
//
// GET /api/v1/cases/{caseID}/progress
func (h *CaseHandler) Progress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	caseID := chi.URLParam(r, caseIDParam)
	progress, err := h.cases.GetProgress(ctx, caseID)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load progress")
		return
	}
	writeJSON(w, ctx, http.StatusOK, ProgressResponse{CaseID: caseID, Progress: progress})
}

// Finalize closes the case and synthesizes a new report version.
// A report whose impression could not be generated is returned with 202 Accepted;
// finalizing again retries the impression as a new version.
//
// POST /api/v1/cases/{caseID}/finalize
func (h *CaseHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	rep, err := h.cases.Finalize(ctx, chi.URLParam(r, caseIDParam))
	if err != nil {
		if errors.Is(err, report.ErrImpressionPending) && rep != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "report stored without impression",
				"case_id", rep.CaseID, "version", rep.Version, "error", err)
			writeJSON(w, ctx, http.StatusAccepted, rep)
			return
		}
		handleServiceError(w, ctx, err, "Failed to finalize case")
		return
	}
	writeJSON(w, ctx, http.StatusCreated, rep)
}
