package handlers

import (
	"net/http"

	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/indexer"
	"radreport-ai/internal/service"
)

// ReferenceHandler handles the reference index and checklist preview endpoints.
type ReferenceHandler struct {
	references service.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(references service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{references: references}
}

// SearchResponse holds the hits of a similarity search.
type SearchResponse struct {
	Results []indexer.ScoredChunk `json:"results"`
}

// Ingest adds or replaces a reference source.
//
// POST /api/v1/sources
func (h *ReferenceHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req service.IngestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.references.IngestSource(ctx, req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to ingest source")
		return
	}

	status := http.StatusCreated
	if res.Unchanged {
		status = http.StatusOK
	}
	writeJSON(w, ctx, status, res)
}

// Studies lists the indexed study types with index statistics.
//
// GET /api/v1/studies
func (h *ReferenceHandler) Studies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	resp, err := h.references.ListStudies(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list studies")
		return
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}

// Search runs a similarity query over the reference index.
//
// POST /api/v1/search
func (h *ReferenceHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req service.SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hits, err := h.references.Search(ctx, req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search")
		return
	}
	writeJSON(w, ctx, http.StatusOK, SearchResponse{Results: hits})
}

// Checklist previews the checklist a case of the study type would start from.
//
// POST /api/v1/checklists
func (h *ReferenceHandler) Checklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req service.ChecklistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cl, err := h.references.PreviewChecklist(ctx, req)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to synthesize checklist")
		return
	}
	writeJSON(w, ctx, http.StatusOK, cl)
}
