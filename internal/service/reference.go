package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_reference_service.go -package=mocks -mock_names=ReferenceService=MockReferenceService radreport-ai/internal/service ReferenceService

import (
	"context"
	"strings"

	"radreport-ai/internal/checklist"
	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/indexer"
)

// PassageIndex is the reference index from the service layer's perspective.
type PassageIndex interface {
	Ingest(ctx context.Context, sourceID, rawText, studyType string) (*indexer.IngestResult, error)
	Query(ctx context.Context, text string, k int, studyType string) ([]indexer.ScoredChunk, error)
	ListStudyTypes(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*indexer.Stats, error)
}

// ChecklistGenerator synthesizes checklists.
type ChecklistGenerator interface {
	Generate(ctx context.Context, studyType, clinicalHistory string) (*checklist.Checklist, error)
}

// Source formats accepted by IngestSource.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// IngestRequest adds or replaces one reference source.
type IngestRequest struct {
	SourceID  string `json:"sourceId" validate:"required,max=256"`
	StudyType string `json:"studyType" validate:"required,max=64"`
	Text      string `json:"text" validate:"required"`
	Format    string `json:"format" validate:"omitempty,oneof=text markdown"`
}

// SearchRequest is a similarity query over the reference index.
type SearchRequest struct {
	Query     string `json:"query" validate:"required,max=2000"`
	K         int    `json:"k" validate:"gte=0,lte=50"`
	StudyType string `json:"studyType" validate:"max=64"`
}

// ChecklistRequest previews the checklist for a study type.
type ChecklistRequest struct {
	StudyType       string `json:"studyType" validate:"required,max=64"`
	ClinicalHistory string `json:"clinicalHistory" validate:"max=4000"`
}

// StudiesResponse lists the indexed study types with index statistics.
type StudiesResponse struct {
	StudyTypes []string       `json:"studyTypes"`
	Stats      *indexer.Stats `json:"stats"`
}

const defaultSearchK = 5

// ReferenceService manages the reference index and checklist previews.
type ReferenceService interface {
	IngestSource(ctx context.Context, req IngestRequest) (*indexer.IngestResult, error)
	ListStudies(ctx context.Context) (*StudiesResponse, error)
	Search(ctx context.Context, req SearchRequest) ([]indexer.ScoredChunk, error)
	PreviewChecklist(ctx context.Context, req ChecklistRequest) (*checklist.Checklist, error)
}

type referenceService struct {
	index     PassageIndex
	generator ChecklistGenerator
}

// NewReferenceService creates a new ReferenceService.
func NewReferenceService(index PassageIndex, generator ChecklistGenerator) ReferenceService {
	return &referenceService{index: index, generator: generator}
}

func (s *referenceService) IngestSource(ctx context.Context, req IngestRequest) (*indexer.IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid ingest request", "error", err)
		return nil, err
	}

	text := req.Text
	if req.Format == FormatMarkdown {
		text = indexer.MarkdownText([]byte(text))
	}

	res, err := s.index.Ingest(ctx, req.SourceID, text, req.StudyType)
	if err != nil {
		return nil, WrapError(err, "failed to ingest source")
	}
	return res, nil
}

func (s *referenceService) ListStudies(ctx context.Context) (*StudiesResponse, error) {
	types, err := s.index.ListStudyTypes(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list study types")
	}
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to compute index stats")
	}
	return &StudiesResponse{StudyTypes: types, Stats: stats}, nil
}

func (s *referenceService) Search(ctx context.Context, req SearchRequest) ([]indexer.ScoredChunk, error) {
	req.Query = strings.TrimSpace(req.Query)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.K == 0 {
		req.K = defaultSearchK
	}

	hits, err := s.index.Query(ctx, req.Query, req.K, req.StudyType)
	if err != nil {
		return nil, WrapError(err, "failed to search reference index")
	}
	return hits, nil
}

func (s *referenceService) PreviewChecklist(ctx context.Context, req ChecklistRequest) (*checklist.Checklist, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	cl, err := s.generator.Generate(ctx, req.StudyType, req.ClinicalHistory)
	if err != nil {
		return nil, WrapError(err, "failed to synthesize checklist")
	}
	return cl, nil
}
