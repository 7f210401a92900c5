package questionnaire

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_session_store.go -package=mocks radreport-ai/internal/questionnaire SessionStore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"radreport-ai/internal/checklist"
	"radreport-ai/internal/storage"
)

// sessionNamespace is the record namespace sessions are stored under, keyed by case ID.
const sessionNamespace = "sessions"

// PatientMeta is the case metadata supplied at case start.
type PatientMeta struct {
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
	// Contrast reports whether IV contrast was given; nil when unknown.
	Contrast *bool `json:"contrast,omitempty"`
}

// Session is one case being worked through.
type Session struct {
	CaseID          string               `json:"caseId"`
	Patient         PatientMeta          `json:"patient"`
	ClinicalHistory string               `json:"clinicalHistory"`
	StudyType       string               `json:"studyType"`
	Checklist       *checklist.Checklist `json:"checklist"`
	Cursor          State                `json:"cursor"`
	Progress        float64              `json:"progress"`
	// Finalized is set once a report was requested; no further answers are accepted.
	Finalized bool      `json:"finalized"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Closed reports whether the session accepts no more answers.
func (s *Session) Closed() bool {
	return s.Finalized || s.Cursor.Kind == Complete
}

// Prompt returns the question at the cursor.
func (s *Session) Prompt() Prompt {
	return CurrentPrompt(s.Checklist, s.Cursor)
}

// AnsweredCount returns the number of recorded screening and item answers.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, cat := range s.Checklist.Categories {
		if cat.ScreeningAnswer != nil {
			n++
		}
		for _, sub := range cat.Subcategories {
			for _, it := range sub.Items {
				if it.Answered {
					n++
				}
			}
		}
	}
	return n
}

// SessionStore persists sessions. Each Save replaces the whole record.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, caseID string) (*Session, error)
}

// RecordSessionStore keeps sessions as JSON records.
type RecordSessionStore struct {
	records storage.RecordStore
}

// NewRecordSessionStore creates a RecordSessionStore.
func NewRecordSessionStore(records storage.RecordStore) *RecordSessionStore {
	return &RecordSessionStore{records: records}
}

// Save writes the session.
func (r *RecordSessionStore) Save(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return r.records.Put(ctx, sessionNamespace, s.CaseID, payload)
}

// Load reads the session for caseID. Returns ErrSessionNotFound if there is none.
func (r *RecordSessionStore) Load(ctx context.Context, caseID string) (*Session, error) {
	rec, err := r.records.Get(ctx, sessionNamespace, caseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, caseID)
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(rec.Payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", caseID, err)
	}
	if s.Checklist == nil {
		return nil, fmt.Errorf("session %s has no checklist", caseID)
	}
	return &s, nil
}
