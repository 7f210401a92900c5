package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"radreport-ai/internal/contextutil"
)

// DocumentFile is a reference document found under a documents directory.
type DocumentFile struct {
	SourceID  string // path relative to the scanned root, forward slashes
	StudyType string // derived from the file name
	AbsPath   string
}

// DirectoryResult summarizes an IngestDirectory run.
type DirectoryResult struct {
	Files     int `json:"files"`
	Ingested  int `json:"ingested"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// StudyTypeFromFilename derives a study type from a file name: the stem,
// lower-cased, with spaces and dashes folded to underscores ("CT Chest.md" -> "ct_chest").
func StudyTypeFromFilename(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.ToLower(strings.TrimSpace(stem))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(stem)
}

// ScanDocuments walks root and returns every .md and .txt file. Hidden
// directories are skipped.
func ScanDocuments(ctx context.Context, root string) ([]DocumentFile, error) {
	var files []DocumentFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		files = append(files, DocumentFile{
			SourceID:  filepath.ToSlash(relPath),
			StudyType: StudyTypeFromFilename(path),
			AbsPath:   path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// IngestDirectory ingests every reference document under dir.
// Failures of individual files are logged and counted but don't stop the run.
func (ix *Index) IngestDirectory(ctx context.Context, dir string) (*DirectoryResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := ScanDocuments(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan documents: %w", err)
	}

	logger.InfoContext(ctx, "starting directory ingest", "dir", dir, "total_files", len(files))

	result := &DirectoryResult{Files: len(files)}
	for _, f := range files {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			result.Failed++
			logger.ErrorContext(ctx, "failed to read document", "source_id", f.SourceID, "error", err)
			continue
		}

		text := string(content)
		if strings.EqualFold(filepath.Ext(f.AbsPath), ".md") {
			text = MarkdownText(content)
		}

		res, err := ix.Ingest(ctx, f.SourceID, text, f.StudyType)
		if err != nil {
			result.Failed++
			var ingestErr *IngestError
			if errors.As(err, &ingestErr) && errors.Is(err, ErrEmptySource) {
				logger.WarnContext(ctx, "skipping empty document", "source_id", f.SourceID)
			} else {
				logger.ErrorContext(ctx, "failed to ingest document", "source_id", f.SourceID, "error", err)
			}
			continue
		}

		if res.Unchanged {
			result.Unchanged++
		} else {
			result.Ingested++
		}
	}

	logger.InfoContext(ctx, "directory ingest completed",
		"total_files", result.Files, "ingested", result.Ingested, "unchanged", result.Unchanged, "failed", result.Failed)

	if result.Failed > 0 {
		return result, fmt.Errorf("directory ingest completed with %d failures", result.Failed)
	}
	return result, nil
}
