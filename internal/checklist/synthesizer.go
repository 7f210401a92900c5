package checklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/indexer"
	"radreport-ai/internal/llm"
	"radreport-ai/internal/prompts"
	"radreport-ai/internal/studies"
)

// maxContentRunes bounds the reference text sent with one generation request.
const maxContentRunes = 24000

// ChunkSource returns every indexed chunk of a study type.
type ChunkSource interface {
	ChunksForStudy(ctx context.Context, studyType string) ([]indexer.Chunk, error)
}

// Synthesizer generates checklists from indexed reference text.
type Synthesizer struct {
	chunks    ChunkSource
	completer llm.Completer
	cache     *lru.Cache[string, *Checklist]
}

// NewSynthesizer creates a Synthesizer whose cache holds up to cacheSize checklists.
func NewSynthesizer(chunks ChunkSource, completer llm.Completer, cacheSize int) (*Synthesizer, error) {
	cache, err := lru.New[string, *Checklist](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create checklist cache: %w", err)
	}
	return &Synthesizer{chunks: chunks, completer: completer, cache: cache}, nil
}

// Generate returns the checklist for studyType, tailored to clinicalHistory.
// A malformed answer is retried once with stricter instructions; after that
// the fixed default checklist is returned. Generated checklists are cached by
// (studyType, sha256(clinicalHistory)); the caller owns the returned copy.
func (s *Synthesizer) Generate(ctx context.Context, studyType, clinicalHistory string) (*Checklist, error) {
	logger := contextutil.LoggerFromContext(ctx).With("study_type", studyType)

	chunks, err := s.chunks.ChunksForStudy(ctx, studyType)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRetrievalEmpty, studyType)
	}

	key := cacheKey(studyType, clinicalHistory)
	if cached, ok := s.cache.Get(key); ok {
		logger.DebugContext(ctx, "checklist cache hit")
		return cached.Clone(), nil
	}

	req := prompts.ChecklistRequest{
		StudyType:       studyType,
		ClinicalHistory: clinicalHistory,
		Content:         contentWindow(chunks),
		Taxonomy:        studies.Lookup(studyType).Taxonomy,
	}

	for attempt := 0; attempt < 2; attempt++ {
		req.Strict = attempt > 0

		answer, err := s.completer.Complete(ctx, req.System(), req.User())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.WarnContext(ctx, "checklist generation failed", "attempt", attempt+1, "error", err)
			continue
		}

		cl, err := Parse(studyType, answer)
		if err != nil {
			logger.WarnContext(ctx, "generated checklist rejected", "attempt", attempt+1, "error", err)
			continue
		}

		s.cache.Add(key, cl.Clone())
		logger.InfoContext(ctx, "checklist generated", "categories", len(cl.Categories), "items", cl.ItemCount())
		return cl, nil
	}

	cl := Default(studyType)
	if err := Validate(cl); err != nil {
		return nil, fmt.Errorf("default checklist for %s is invalid: %w", studyType, err)
	}
	logger.WarnContext(ctx, "using default checklist", "categories", len(cl.Categories))
	return cl, nil
}

func cacheKey(studyType, clinicalHistory string) string {
	sum := sha256.Sum256([]byte(clinicalHistory))
	return studyType + ":" + hex.EncodeToString(sum[:])
}

// contentWindow keeps chunks in order until the rune budget is spent.
func contentWindow(chunks []indexer.Chunk) []string {
	out := make([]string, 0, len(chunks))
	budget := maxContentRunes
	for _, c := range chunks {
		n := utf8.RuneCountInString(c.Text)
		if n > budget {
			break
		}
		out = append(out, c.Text)
		budget -= n
	}
	if len(out) == 0 && len(chunks) > 0 {
		out = append(out, string([]rune(chunks[0].Text)[:maxContentRunes]))
	}
	return out
}
