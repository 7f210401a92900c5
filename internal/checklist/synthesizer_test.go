package checklist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"radreport-ai/internal/indexer"
	"radreport-ai/internal/llm/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type chunkSourceFunc func(ctx context.Context, studyType string) ([]indexer.Chunk, error)

func (f chunkSourceFunc) ChunksForStudy(ctx context.Context, studyType string) ([]indexer.Chunk, error) {
	return f(ctx, studyType)
}

func chestChunks() ChunkSource {
	return chunkSourceFunc(func(_ context.Context, studyType string) ([]indexer.Chunk, error) {
		if studyType != "ct_chest" {
			return nil, nil
		}
		return []indexer.Chunk{
			{Text: "Lungs: nodules, consolidation.", StudyType: "ct_chest", SourceID: "chest.md"},
			{Text: "Pleura: effusion.", StudyType: "ct_chest", SourceID: "chest.md", ChunkIndex: 1},
		}, nil
	})
}

func newTestSynthesizer(t *testing.T, completer *mocks.MockCompleter) *Synthesizer {
	t.Helper()
	s, err := NewSynthesizer(chestChunks(), completer, 8)
	if err != nil {
		t.Fatalf("NewSynthesizer() error = %v", err)
	}
	return s
}

func TestSynthesizer_Generate_RetrievalEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := newTestSynthesizer(t, mocks.NewMockCompleter(ctrl))

	_, err := s.Generate(context.Background(), "ct_head", "")
	if !errors.Is(err, ErrRetrievalEmpty) {
		t.Errorf("Generate() error = %v, want ErrRetrievalEmpty", err)
	}
}

func TestSynthesizer_Generate_CachesByStudyAndHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)
	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, system, user string) (string, error) {
			if !strings.Contains(user, "Lungs: nodules, consolidation.") || !strings.Contains(user, "Pleura: effusion.") {
				t.Errorf("prompt is missing reference content:\n%s", user)
			}
			return validAnswer, nil
		}).
		Times(2)

	s := newTestSynthesizer(t, completer)
	ctx := context.Background()

	first, err := s.Generate(ctx, "ct_chest", "cough")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	yes := true
	first.Categories[0].ScreeningAnswer = &yes

	second, err := s.Generate(ctx, "ct_chest", "cough")
	if err != nil {
		t.Fatalf("Generate() second error = %v", err)
	}
	if second.Categories[0].ScreeningAnswer != nil {
		t.Error("cached checklist was mutated through a returned copy")
	}
	if len(second.Categories) != len(first.Categories) || second.ItemCount() != first.ItemCount() {
		t.Error("cache hit should return an identical structure")
	}

	if _, err := s.Generate(ctx, "ct_chest", "trauma"); err != nil {
		t.Fatalf("Generate() other history error = %v", err)
	}
}

func TestSynthesizer_Generate_RetriesWithStricterPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)

	gomock.InOrder(
		completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("not json at all", nil),
		completer.EXPECT().
			Complete(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, system, _ string) (string, error) {
				if !strings.Contains(system, "previous answer could not be used") {
					t.Error("retry should use the strict system prompt")
				}
				return validAnswer, nil
			}),
	)

	s := newTestSynthesizer(t, completer)
	cl, err := s.Generate(context.Background(), "ct_chest", "")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if cl.Source != SourceGenerated {
		t.Errorf("Source = %q, want generated", cl.Source)
	}
}

func TestSynthesizer_Generate_FallsBackWithoutCaching(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
	}{
		{name: "schema failures", answer: `{"checklist": []}`},
		{name: "completion errors", err: errors.New("language model unavailable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			completer := mocks.NewMockCompleter(ctrl)
			completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.answer, tt.err).Times(4)

			s := newTestSynthesizer(t, completer)
			for i := 0; i < 2; i++ {
				cl, err := s.Generate(context.Background(), "ct_chest", "")
				if err != nil {
					t.Fatalf("Generate() error = %v", err)
				}
				if cl.Source != SourceFallback {
					t.Errorf("Source = %q, want fallback", cl.Source)
				}
				if err := Validate(cl); err != nil {
					t.Errorf("fallback invalid: %v", err)
				}
			}
		})
	}
}

func TestSynthesizer_Generate_ContextCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (string, error) {
			cancel()
			return "", ctx.Err()
		})

	s := newTestSynthesizer(t, completer)
	if _, err := s.Generate(ctx, "ct_chest", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestNewSynthesizer_InvalidCacheSize(t *testing.T) {
	if _, err := NewSynthesizer(chestChunks(), nil, 0); err == nil {
		t.Error("NewSynthesizer() with zero cache size should return error")
	}
}

func TestContentWindow(t *testing.T) {
	long := strings.Repeat("a", maxContentRunes+10)
	got := contentWindow([]indexer.Chunk{{Text: long}, {Text: "b"}})
	if len(got) != 1 || len([]rune(got[0])) != maxContentRunes {
		t.Errorf("contentWindow() truncated to %d parts", len(got))
	}

	got = contentWindow([]indexer.Chunk{{Text: "a"}, {Text: "b"}})
	if len(got) != 2 {
		t.Errorf("contentWindow() = %v", got)
	}
}
