package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"radreport-ai/internal/report"
	"radreport-ai/internal/service/mocks"
)

func storedReport() *report.Report {
	return &report.Report{
		CaseID:       "case-1",
		Version:      1,
		StudyType:    "ct_chest",
		History:      "Cough",
		Technique:    "Volume scan of chest was done without IV contrast.",
		Observations: []report.RegionObservations{{Region: "LUNGS", Statements: []string{"Pulmonary nodules: 6mm"}}},
		Impression:   "1. Pulmonary nodule.",
		Status:       report.StatusFinal,
	}
}

func TestReportHandler_Get(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		format      string
		expectCall  bool
		getErr      error
		wantStatus  int
		wantType    string
		wantContain string
	}{
		{name: "json by default", version: "1", expectCall: true, wantStatus: http.StatusOK, wantType: "application/json", wantContain: `"impression":"1. Pulmonary nodule."`},
		{name: "markdown", version: "1", format: "markdown", expectCall: true, wantStatus: http.StatusOK, wantType: "text/markdown", wantContain: "### LUNGS"},
		{name: "html", version: "1", format: "html", expectCall: true, wantStatus: http.StatusOK, wantType: "text/html", wantContain: "<h3>LUNGS</h3>"},
		{name: "unknown format", version: "1", format: "pdf", wantStatus: http.StatusBadRequest},
		{name: "non-numeric version", version: "latest", wantStatus: http.StatusBadRequest},
		{name: "missing version", version: "7", expectCall: true, getErr: report.ErrReportNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockCaseService(ctrl)
			if tt.expectCall {
				var rep *report.Report
				if tt.getErr == nil {
					rep = storedReport()
				}
				svc.EXPECT().GetReport(gomock.Any(), "case-1", gomock.Any()).Return(rep, tt.getErr)
			}

			target := "/api/v1/cases/case-1/reports/" + tt.version
			if tt.format != "" {
				target += "?format=" + tt.format
			}
			w := httptest.NewRecorder()
			NewReportHandler(svc).Get(w, newRequest(t, http.MethodGet, target, nil, map[string]string{caseIDParam: "case-1", versionParam: tt.version}))

			if w.Code != tt.wantStatus {
				t.Fatalf("Get() status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantType != "" && !strings.HasPrefix(w.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", w.Header().Get("Content-Type"), tt.wantType)
			}
			if tt.wantContain != "" && !strings.Contains(w.Body.String(), tt.wantContain) {
				t.Errorf("body = %s, want it to contain %q", w.Body.String(), tt.wantContain)
			}
		})
	}
}

func TestReportHandler_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockCaseService(ctrl)
	first, second := storedReport(), storedReport()
	second.Version = 2
	svc.EXPECT().GetReportHistory(gomock.Any(), "case-1").Return([]report.Report{*first, *second}, nil)
	svc.EXPECT().GetReportHistory(gomock.Any(), "case-2").Return(nil, nil)

	w := httptest.NewRecorder()
	NewReportHandler(svc).History(w, newRequest(t, http.MethodGet, "/api/v1/cases/case-1/reports", nil, map[string]string{caseIDParam: "case-1"}))

	var resp ReportHistoryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if w.Code != http.StatusOK || len(resp.Reports) != 2 || resp.Reports[1].Version != 2 {
		t.Errorf("History() = %d %+v", w.Code, resp)
	}

	w = httptest.NewRecorder()
	NewReportHandler(svc).History(w, newRequest(t, http.MethodGet, "/api/v1/cases/case-2/reports", nil, map[string]string{caseIDParam: "case-2"}))
	if !strings.Contains(w.Body.String(), `"reports":[]`) {
		t.Errorf("History() with no reports = %s, want empty array", w.Body.String())
	}
}
