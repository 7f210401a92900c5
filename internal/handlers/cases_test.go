package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"radreport-ai/internal/checklist"
	"radreport-ai/internal/llm"
	"radreport-ai/internal/questionnaire"
	"radreport-ai/internal/report"
	"radreport-ai/internal/service"
	"radreport-ai/internal/service/mocks"
	"radreport-ai/internal/storage"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newRequest builds a request with an optional JSON body and chi URL parameters.
func newRequest(t *testing.T, method, target string, body any, params map[string]string) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func testView() *service.CaseView {
	sess := &questionnaire.Session{CaseID: "case-1", StudyType: "ct_chest", Checklist: checklist.Default("ct_chest")}
	sess.Cursor = questionnaire.Initial(sess.Checklist)
	return &service.CaseView{Session: sess, Prompt: sess.Prompt()}
}

func TestCaseHandler_Start(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       any
		mockSetup  func(*mocks.MockCaseService)
		wantStatus int
	}{
		{
			name:   "created",
			method: http.MethodPost,
			body:   service.StartCaseRequest{StudyType: "ct_chest", ClinicalHistory: "cough"},
			mockSetup: func(m *mocks.MockCaseService) {
				m.EXPECT().
					StartCase(gomock.Any(), service.StartCaseRequest{StudyType: "ct_chest", ClinicalHistory: "cough"}).
					Return(testView(), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			mockSetup:  func(m *mocks.MockCaseService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid JSON body",
			method:     http.MethodPost,
			body:       "invalid json",
			mockSetup:  func(m *mocks.MockCaseService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			body:   service.StartCaseRequest{},
			mockSetup: func(m *mocks.MockCaseService) {
				m.EXPECT().StartCase(gomock.Any(), gomock.Any()).
					Return(nil, &service.ValidationError{Field: "studyType", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "case exists",
			method: http.MethodPost,
			body:   service.StartCaseRequest{CaseID: "case-1", StudyType: "ct_chest"},
			mockSetup: func(m *mocks.MockCaseService) {
				m.EXPECT().StartCase(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("failed to start case: %w", questionnaire.ErrCaseExists))
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "nothing indexed for study",
			method: http.MethodPost,
			body:   service.StartCaseRequest{StudyType: "ct_knee"},
			mockSetup: func(m *mocks.MockCaseService) {
				m.EXPECT().StartCase(gomock.Any(), gomock.Any()).Return(nil, checklist.ErrRetrievalEmpty)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockCaseService(ctrl)
			tt.mockSetup(svc)
			handler := NewCaseHandler(svc)

			w := httptest.NewRecorder()
			handler.Start(w, newRequest(t, tt.method, "/api/v1/cases", tt.body, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Start() status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if w.Code == http.StatusCreated {
				var body struct {
					CaseID string               `json:"caseId"`
					Prompt questionnaire.Prompt `json:"prompt"`
				}
				if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if body.CaseID != "case-1" || body.Prompt.Kind != questionnaire.AwaitingCategoryScreen {
					t.Errorf("Start() body = %+v", body)
				}
			}
		})
	}
}

func TestCaseHandler_Answer(t *testing.T) {
	detail := "8mm"

	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
	}{
		{name: "accepted", body: map[string]any{"value": true, "detail": detail}, wantStatus: http.StatusOK},
		{name: "invalid answer", body: map[string]any{"value": 3}, svcErr: questionnaire.ErrInvalidAnswer, wantStatus: http.StatusBadRequest},
		{name: "out of sequence", body: map[string]any{"value": true, "target": "cat_9"}, svcErr: questionnaire.ErrOutOfSequence, wantStatus: http.StatusConflict},
		{name: "closed", body: map[string]any{"value": true}, svcErr: questionnaire.ErrSessionClosed, wantStatus: http.StatusConflict},
		{name: "unknown case", body: map[string]any{"value": true}, svcErr: questionnaire.ErrSessionNotFound, wantStatus: http.StatusNotFound},
		{name: "persistence failure", body: map[string]any{"value": true}, svcErr: storage.ErrPersistence, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockCaseService(ctrl)
			svc.EXPECT().SubmitAnswer(gomock.Any(), "case-1", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, req service.AnswerRequest) (*service.CaseView, error) {
					if tt.svcErr != nil {
						return nil, tt.svcErr
					}
					if req.Value != true || req.Detail == nil || *req.Detail != detail {
						t.Errorf("SubmitAnswer() request = %+v", req)
					}
					return testView(), nil
				})

			w := httptest.NewRecorder()
			NewCaseHandler(svc).Answer(w, newRequest(t, http.MethodPost, "/api/v1/cases/case-1/answers", tt.body, map[string]string{caseIDParam: "case-1"}))

			if w.Code != tt.wantStatus {
				t.Errorf("Answer() status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusInternalServerError {
				var resp ErrorResponse
				_ = json.NewDecoder(w.Body).Decode(&resp)
				if resp.Error != "Failed to record answer" {
					t.Errorf("server error message = %q, want generic message", resp.Error)
				}
			}
		})
	}
}

func TestCaseHandler_Progress(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockCaseService(ctrl)
	svc.EXPECT().GetProgress(gomock.Any(), "case-1").Return(0.25, nil)

	w := httptest.NewRecorder()
	NewCaseHandler(svc).Progress(w, newRequest(t, http.MethodGet, "/api/v1/cases/case-1/progress", nil, map[string]string{caseIDParam: "case-1"}))

	if w.Code != http.StatusOK {
		t.Fatalf("Progress() status = %d", w.Code)
	}
	var resp ProgressResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CaseID != "case-1" || resp.Progress != 0.25 {
		t.Errorf("Progress() = %+v", resp)
	}
}

func TestCaseHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockCaseService(ctrl)
	svc.EXPECT().GetCase(gomock.Any(), "case-1").Return(testView(), nil)

	w := httptest.NewRecorder()
	NewCaseHandler(svc).Get(w, newRequest(t, http.MethodGet, "/api/v1/cases/case-1", nil, map[string]string{caseIDParam: "case-1"}))

	if w.Code != http.StatusOK {
		t.Fatalf("Get() status = %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"caseId", "checklist", "cursor", "progress", "prompt"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Get() body missing %q: %v", key, body)
		}
	}
}

func TestCaseHandler_Finalize(t *testing.T) {
	rep := &report.Report{CaseID: "case-1", Version: 2, Status: report.StatusFinal}
	pendingRep := &report.Report{CaseID: "case-1", Version: 3, Status: report.StatusPendingImpression}

	tests := []struct {
		name       string
		rep        *report.Report
		err        error
		wantStatus int
	}{
		{name: "final report", rep: rep, wantStatus: http.StatusCreated},
		{
			name:       "impression pending",
			rep:        pendingRep,
			err:        fmt.Errorf("%w: %w", report.ErrImpressionPending, llm.ErrTimeout),
			wantStatus: http.StatusAccepted,
		},
		{name: "empty session", err: report.ErrEmptySession, wantStatus: http.StatusUnprocessableEntity},
		{name: "generation unavailable", err: llm.ErrUnavailable, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockCaseService(ctrl)
			svc.EXPECT().Finalize(gomock.Any(), "case-1").Return(tt.rep, tt.err)

			w := httptest.NewRecorder()
			NewCaseHandler(svc).Finalize(w, newRequest(t, http.MethodPost, "/api/v1/cases/case-1/finalize", nil, map[string]string{caseIDParam: "case-1"}))

			if w.Code != tt.wantStatus {
				t.Fatalf("Finalize() status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.rep != nil {
				var got report.Report
				if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if got.Version != tt.rep.Version || got.Status != tt.rep.Status {
					t.Errorf("Finalize() body = %+v, want %+v", got, tt.rep)
				}
			}
		})
	}
}
