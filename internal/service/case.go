package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_case_service.go -package=mocks -mock_names=CaseService=MockCaseService radreport-ai/internal/service CaseService

import (
	"context"
	"errors"
	"fmt"

	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/questionnaire"
	"radreport-ai/internal/report"
)

// CaseEngine is the questionnaire engine from the service layer's perspective (consumer-first).
type CaseEngine interface {
	Start(ctx context.Context, req questionnaire.StartRequest) (*questionnaire.Session, error)
	Submit(ctx context.Context, caseID string, ans questionnaire.Answer) (*questionnaire.Session, error)
	Load(ctx context.Context, caseID string) (*questionnaire.Session, error)
	WithSession(ctx context.Context, caseID string, fn func(s *questionnaire.Session) error) (*questionnaire.Session, error)
}

// ReportSynthesizer turns a session into a persisted report version.
type ReportSynthesizer interface {
	Synthesize(ctx context.Context, sess *questionnaire.Session) (*report.Report, error)
}

// PatientRequest is the patient metadata of a new case.
type PatientRequest struct {
	Age      int    `json:"age" validate:"gte=0,lte=130"`
	Gender   string `json:"gender" validate:"max=32"`
	Contrast *bool  `json:"contrast"`
}

// StartCaseRequest opens a case.
type StartCaseRequest struct {
	CaseID          string         `json:"caseId" validate:"omitempty,max=128,excludesall=:/"`
	StudyType       string         `json:"studyType" validate:"required,max=64"`
	ClinicalHistory string         `json:"clinicalHistory" validate:"max=4000"`
	Patient         PatientRequest `json:"patient"`
}

// AnswerRequest is one answer submitted against a case.
type AnswerRequest struct {
	Value  any     `json:"value"`
	Detail *string `json:"detail" validate:"omitempty,max=2000"`
	Target string  `json:"target" validate:"max=128"`
}

// CaseView is a session together with the question at its cursor.
type CaseView struct {
	*questionnaire.Session
	Prompt questionnaire.Prompt `json:"prompt"`
}

// CaseService provides the case lifecycle: start, answer, finalize and report history.
type CaseService interface {
	StartCase(ctx context.Context, req StartCaseRequest) (*CaseView, error)
	SubmitAnswer(ctx context.Context, caseID string, req AnswerRequest) (*CaseView, error)
	GetProgress(ctx context.Context, caseID string) (float64, error)
	GetCase(ctx context.Context, caseID string) (*CaseView, error)
	// Finalize closes the case and appends a report version. When the impression
	// could not be generated the report is still returned, together with an error
	// matching report.ErrImpressionPending.
	Finalize(ctx context.Context, caseID string) (*report.Report, error)
	GetReportHistory(ctx context.Context, caseID string) ([]report.Report, error)
	GetReport(ctx context.Context, caseID string, version int) (*report.Report, error)
}

type caseService struct {
	engine      CaseEngine
	synthesizer ReportSynthesizer
	reports     report.Store
}

// NewCaseService creates a new CaseService.
func NewCaseService(engine CaseEngine, synthesizer ReportSynthesizer, reports report.Store) CaseService {
	return &caseService{
		engine:      engine,
		synthesizer: synthesizer,
		reports:     reports,
	}
}

func (s *caseService) StartCase(ctx context.Context, req StartCaseRequest) (*CaseView, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid start case request", "error", err)
		return nil, err
	}

	sess, err := s.engine.Start(ctx, questionnaire.StartRequest{
		CaseID:          req.CaseID,
		StudyType:       req.StudyType,
		ClinicalHistory: req.ClinicalHistory,
		Patient: questionnaire.PatientMeta{
			Age:      req.Patient.Age,
			Gender:   req.Patient.Gender,
			Contrast: req.Patient.Contrast,
		},
	})
	if err != nil {
		return nil, WrapError(err, "failed to start case")
	}

	logger.InfoContext(ctx, "case started", "case_id", sess.CaseID, "study_type", sess.StudyType, "source", sess.Checklist.Source)
	return newCaseView(sess), nil
}

func (s *caseService) SubmitAnswer(ctx context.Context, caseID string, req AnswerRequest) (*CaseView, error) {
	if err := validateCaseID(caseID); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	sess, err := s.engine.Submit(ctx, caseID, questionnaire.Answer{
		Value:  req.Value,
		Detail: req.Detail,
		Target: req.Target,
	})
	if err != nil {
		return nil, WrapError(err, "failed to submit answer")
	}
	return newCaseView(sess), nil
}

func (s *caseService) GetProgress(ctx context.Context, caseID string) (float64, error) {
	sess, err := s.load(ctx, caseID)
	if err != nil {
		return 0, err
	}
	return sess.Progress, nil
}

func (s *caseService) GetCase(ctx context.Context, caseID string) (*CaseView, error) {
	sess, err := s.load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return newCaseView(sess), nil
}

func (s *caseService) Finalize(ctx context.Context, caseID string) (*report.Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateCaseID(caseID); err != nil {
		return nil, err
	}

	// The report version is appended before the session is saved. If that save
	// fails the version stays in the history and the session stays open, so a
	// retry appends the next version, the same as finalizing a case again.
	var (
		rep     *report.Report
		pending error
	)
	_, err := s.engine.WithSession(ctx, caseID, func(sess *questionnaire.Session) error {
		r, err := s.synthesizer.Synthesize(ctx, sess)
		if err != nil && !errors.Is(err, report.ErrImpressionPending) {
			return err
		}
		rep, pending = r, err
		questionnaire.MarkFinalized(sess)
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to finalize case")
	}

	if pending != nil {
		logger.WarnContext(ctx, "case finalized without impression", "case_id", caseID, "version", rep.Version, "error", pending)
		return rep, pending
	}
	logger.InfoContext(ctx, "case finalized", "case_id", caseID, "version", rep.Version)
	return rep, nil
}

func (s *caseService) GetReportHistory(ctx context.Context, caseID string) ([]report.Report, error) {
	if _, err := s.load(ctx, caseID); err != nil {
		return nil, err
	}

	history, err := s.reports.History(ctx, caseID)
	if err != nil {
		return nil, WrapError(err, "failed to list reports")
	}
	return history, nil
}

func (s *caseService) GetReport(ctx context.Context, caseID string, version int) (*report.Report, error) {
	if err := validateCaseID(caseID); err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, &ValidationError{Field: "version", Message: "must be at least 1"}
	}

	rep, err := s.reports.Get(ctx, caseID, version)
	if err != nil {
		return nil, WrapError(err, fmt.Sprintf("failed to load report version %d", version))
	}
	return rep, nil
}

func (s *caseService) load(ctx context.Context, caseID string) (*questionnaire.Session, error) {
	if err := validateCaseID(caseID); err != nil {
		return nil, err
	}
	sess, err := s.engine.Load(ctx, caseID)
	if err != nil {
		return nil, WrapError(err, "failed to load case")
	}
	return sess, nil
}

func validateCaseID(caseID string) error {
	return validateRequest(struct {
		CaseID string `json:"caseId" validate:"required,max=128,excludesall=:/"`
	}{CaseID: caseID})
}

func newCaseView(sess *questionnaire.Session) *CaseView {
	return &CaseView{Session: sess, Prompt: sess.Prompt()}
}
