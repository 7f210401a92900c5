package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/report"
	"radreport-ai/internal/service"
)

// versionParam is the chi URL parameter naming a report version.
const versionParam = "version"

// ReportHandler serves stored report versions.
type ReportHandler struct {
	cases service.CaseService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(cases service.CaseService) *ReportHandler {
	return &ReportHandler{cases: cases}
}

// ReportHistoryResponse lists every report version of a case, oldest first.
type ReportHistoryResponse struct {
	CaseID  string          `json:"caseId"`
	Reports []report.Report `json:"reports"`
}

// History lists the report versions of a case.
//
// GET /api/v1/cases/{caseID}/reports
func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	caseID := chi.URLParam(r, caseIDParam)
	reports, err := h.cases.GetReportHistory(ctx, caseID)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list reports")
		return
	}
	if reports == nil {
		reports = []report.Report{}
	}
	writeJSON(w, ctx, http.StatusOK, ReportHistoryResponse{CaseID: caseID, Reports: reports})
}

// Get returns one report version as JSON, markdown or HTML (?format=).
//
// GET /api/v1/cases/{caseID}/reports/{version}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	if methodNotAllowed(w, r, http.MethodGet) {
		return
	}

	version, err := strconv.Atoi(chi.URLParam(r, versionParam))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Report version must be an integer")
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "markdown" && format != "html" {
		writeError(w, http.StatusBadRequest, "Unsupported format: "+format)
		return
	}

	rep, err := h.cases.GetReport(ctx, chi.URLParam(r, caseIDParam), version)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load report")
		return
	}

	switch format {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(report.Markdown(rep)))
	case "html":
		html, err := report.HTML(rep)
		if err != nil {
			logger.ErrorContext(ctx, "failed to render report", "case_id", rep.CaseID, "version", rep.Version, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
	default:
		writeJSON(w, ctx, http.StatusOK, rep)
	}
}
