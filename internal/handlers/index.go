package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"radreport-ai/internal/contextutil"
	"radreport-ai/internal/indexer"
)

// DirectoryIngester ingests a directory of reference documents.
type DirectoryIngester interface {
	IngestDirectory(ctx context.Context, dir string) (*indexer.DirectoryResult, error)
}

// IndexHandler handles HTTP requests for re-ingesting the documents directory.
type IndexHandler struct {
	ingester DirectoryIngester
	dir      string
	running  atomic.Bool
	onDone   func(*indexer.DirectoryResult, error)
}

// IndexOption configures an IndexHandler.
type IndexOption func(*IndexHandler)

// WithIngestCompletion registers fn to run after every background ingest,
// once the handler accepts a new run again.
func WithIngestCompletion(fn func(*indexer.DirectoryResult, error)) IndexOption {
	return func(h *IndexHandler) {
		h.onDone = fn
	}
}

// NewIndexHandler creates a new IndexHandler for the documents directory dir.
func NewIndexHandler(ingester DirectoryIngester, dir string, opts ...IndexOption) *IndexHandler {
	h := &IndexHandler{ingester: ingester, dir: dir}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP starts a background ingest of the documents directory.
// Unchanged documents are skipped, so a re-run only rewrites edited files.
//
// POST /api/v1/index
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	if h.dir == "" {
		writeError(w, http.StatusServiceUnavailable, "No documents directory configured")
		return
	}
	if !h.running.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "Ingest already running")
		return
	}

	logger.InfoContext(ctx, "re-ingest triggered via API", "dir", h.dir)

	// Detached from the request so the run outlives the response.
	indexCtx := contextutil.WithLogger(context.Background(), logger)
	go func() {
		res, err := h.ingester.IngestDirectory(indexCtx, h.dir)
		if err != nil {
			logger.ErrorContext(indexCtx, "re-ingest completed with errors", "error", err)
		} else {
			logger.InfoContext(indexCtx, "re-ingest completed",
				"files", res.Files, "ingested", res.Ingested, "unchanged", res.Unchanged)
		}

		h.running.Store(false)
		if h.onDone != nil {
			h.onDone(res, err)
		}
	}()

	writeJSON(w, ctx, http.StatusAccepted, IndexResponse{
		Message: "Ingest started. Check server logs for progress.",
		Status:  "accepted",
	})
}
