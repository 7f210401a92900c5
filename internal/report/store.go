package report

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks radreport-ai/internal/report Store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"radreport-ai/internal/storage"
)

// reportNamespace is the record namespace reports are stored under, keyed "caseId:version".
const reportNamespace = "reports"

// ErrReportNotFound is returned when a report version does not exist.
var ErrReportNotFound = errors.New("report not found")

// Store keeps report versions. Versions are never overwritten.
type Store interface {
	// Append assigns the next version to rep and stores it.
	Append(ctx context.Context, rep *Report) error
	// History returns every version of a case, oldest first.
	History(ctx context.Context, caseID string) ([]Report, error)
	// Get returns one version.
	Get(ctx context.Context, caseID string, version int) (*Report, error)
}

// RecordStore keeps reports as JSON records.
type RecordStore struct {
	records storage.RecordStore
}

// NewRecordStore creates a RecordStore.
func NewRecordStore(records storage.RecordStore) *RecordStore {
	return &RecordStore{records: records}
}

func versionKey(caseID string, version int) string {
	return fmt.Sprintf("%s:%06d", caseID, version)
}

// Append stores rep as the next version of its case.
func (s *RecordStore) Append(ctx context.Context, rep *Report) error {
	existing, err := s.records.List(ctx, reportNamespace, rep.CaseID+":")
	if err != nil {
		return fmt.Errorf("failed to list report versions: %w", err)
	}

	next := 1
	for _, rec := range existing {
		v, err := strconv.Atoi(strings.TrimPrefix(rec.Key, rep.CaseID+":"))
		if err == nil && v >= next {
			next = v + 1
		}
	}
	rep.Version = next

	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return s.records.Insert(ctx, reportNamespace, versionKey(rep.CaseID, next), payload)
}

// History returns every version of caseID, oldest first.
func (s *RecordStore) History(ctx context.Context, caseID string) ([]Report, error) {
	records, err := s.records.List(ctx, reportNamespace, caseID+":")
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	out := make([]Report, 0, len(records))
	for _, rec := range records {
		var rep Report
		if err := json.Unmarshal(rec.Payload, &rep); err != nil {
			return nil, fmt.Errorf("failed to decode report %s: %w", rec.Key, err)
		}
		out = append(out, rep)
	}
	return out, nil
}

// Get returns one version of caseID.
func (s *RecordStore) Get(ctx context.Context, caseID string, version int) (*Report, error) {
	rec, err := s.records.Get(ctx, reportNamespace, versionKey(caseID, version))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s version %d", ErrReportNotFound, caseID, version)
		}
		return nil, err
	}

	var rep Report
	if err := json.Unmarshal(rec.Payload, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &rep, nil
}
