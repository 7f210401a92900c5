package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"radreport-ai/internal/checklist"
	"radreport-ai/internal/contextutil"
)

// ChecklistGenerator produces the checklist a new case starts from.
type ChecklistGenerator interface {
	Generate(ctx context.Context, studyType, clinicalHistory string) (*checklist.Checklist, error)
}

// StartRequest opens a case.
type StartRequest struct {
	// CaseID is optional; a UUID is assigned when empty.
	CaseID          string
	StudyType       string
	ClinicalHistory string
	Patient         PatientMeta
}

// Engine runs sessions. Mutations of one case are serialized; different cases don't coordinate.
type Engine struct {
	store     SessionStore
	generator ChecklistGenerator
	locks     *caseLocks
	now       func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(store SessionStore, generator ChecklistGenerator) *Engine {
	return &Engine{
		store:     store,
		generator: generator,
		locks:     newCaseLocks(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start generates the checklist for the case and persists a fresh session.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*Session, error) {
	logger := contextutil.LoggerFromContext(ctx)

	caseID := req.CaseID
	if caseID == "" {
		caseID = uuid.NewString()
	}

	unlock := e.locks.lock(caseID)
	defer unlock()

	if _, err := e.store.Load(ctx, caseID); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCaseExists, caseID)
	} else if !errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to check existing case: %w", err)
	}

	cl, err := e.generator.Generate(ctx, req.StudyType, req.ClinicalHistory)
	if err != nil {
		return nil, err
	}

	now := e.now()
	s := &Session{
		CaseID:          caseID,
		Patient:         req.Patient,
		ClinicalHistory: req.ClinicalHistory,
		StudyType:       req.StudyType,
		Checklist:       cl,
		Cursor:          Initial(cl),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.Progress = Progress(cl, s.Cursor)

	if err := e.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.InfoContext(ctx, "case started",
		"case_id", caseID, "study_type", req.StudyType, "categories", len(cl.Categories), "checklist_source", cl.Source)
	return s, nil
}

// Submit applies one answer at the cursor and persists the result.
// Rejected answers change nothing.
func (e *Engine) Submit(ctx context.Context, caseID string, ans Answer) (*Session, error) {
	logger := contextutil.LoggerFromContext(ctx)

	unlock := e.locks.lock(caseID)
	defer unlock()

	s, err := e.store.Load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if s.Finalized {
		return nil, fmt.Errorf("%w: case %s was finalized", ErrSessionClosed, caseID)
	}

	next, effects, err := Transition(s.Checklist, s.Cursor, ans)
	if err != nil {
		logger.WarnContext(ctx, "answer rejected", "case_id", caseID, "state", s.Cursor.Kind, "error", err)
		return nil, err
	}

	Apply(s.Checklist, effects)
	s.Cursor = next
	s.Progress = Progress(s.Checklist, next)
	s.UpdatedAt = e.now()

	if err := e.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.DebugContext(ctx, "answer recorded", "case_id", caseID, "state", next.Kind, "progress", s.Progress)
	return s, nil
}

// Load returns the stored session.
func (e *Engine) Load(ctx context.Context, caseID string) (*Session, error) {
	return e.store.Load(ctx, caseID)
}

// WithSession runs fn with exclusive access to the session and saves it
// afterwards. Nothing is saved when fn fails.
func (e *Engine) WithSession(ctx context.Context, caseID string, fn func(s *Session) error) (*Session, error) {
	unlock := e.locks.lock(caseID)
	defer unlock()

	s, err := e.store.Load(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}

	s.UpdatedAt = e.now()
	if err := e.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}

// MarkFinalized closes the session. Unanswered items stay unanswered and are
// treated as negative by the report.
func MarkFinalized(s *Session) {
	s.Finalized = true
	s.Cursor = State{Kind: Complete}
	s.Progress = Progress(s.Checklist, s.Cursor)
}
