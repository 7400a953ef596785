package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/luminacare/assistant/internal/chunkstore"
	"github.com/luminacare/assistant/internal/document"
	"github.com/luminacare/assistant/internal/embedding"
	"github.com/luminacare/assistant/internal/models"
	"github.com/luminacare/assistant/internal/queue"
	"github.com/luminacare/assistant/internal/retrieval"
	"github.com/luminacare/assistant/internal/storage"
	"github.com/luminacare/assistant/pkg/chunker"
	"github.com/luminacare/assistant/pkg/textextract"
)

// IngestWorker processes directly uploaded files: download from storage,
// extract text, chunk, embed, persist.
type IngestWorker struct {
	docSvc   *document.Service
	storage  storage.Storage
	bucket   string
	ingester *Ingester
}

func NewIngestWorker(docSvc *document.Service, store storage.Storage, bucket string, ingester *Ingester) *IngestWorker {
	return &IngestWorker{
		docSvc:   docSvc,
		storage:  store,
		bucket:   bucket,
		ingester: ingester,
	}
}

func (w *IngestWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.IngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		return fmt.Errorf("parse document ID: %w", err)
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("parse user ID: %w", err)
	}

	slog.Info("ingesting uploaded document", "document_id", docID)

	if err := w.docSvc.UpdateStatus(ctx, docID, models.DocStatusProcessing); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	doc, err := w.docSvc.GetForWorker(ctx, docID)
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("get document: %w", err)
	}

	reader, err := w.storage.Download(ctx, w.bucket, doc.FilePath)
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("download file: %w", err)
	}
	defer reader.Close()

	extracted, err := textextract.ExtractReader(reader, doc.Title)
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("extract text: %w", err)
	}

	if err := w.ingester.Ingest(ctx, userID, docID, extracted.Content); err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("ingest content: %w", err)
	}

	return w.docSvc.UpdateStatus(ctx, docID, models.DocStatusReady)
}

// Ingester turns extracted text into stored, embedded chunks. Embedding
// failure is soft: chunks are stored without vectors and keyword scoring
// carries them until a later re-sync.
type Ingester struct {
	store    chunkstore.Store
	embedSvc *embedding.Service
}

func NewIngester(store chunkstore.Store, embedSvc *embedding.Service) *Ingester {
	return &Ingester{store: store, embedSvc: embedSvc}
}

func (i *Ingester) Ingest(ctx context.Context, userID, docID uuid.UUID, content string) error {
	textChunks := chunker.New().Chunk(content, chunker.DefaultOptions())
	if len(textChunks) == 0 {
		return fmt.Errorf("no chunks generated from content")
	}

	texts := make([]string, len(textChunks))
	for n, tc := range textChunks {
		texts[n] = tc.Content
	}

	embeddings, err := i.embedSvc.Embed(ctx, texts)
	if err != nil {
		slog.Warn("embedding generation failed, storing chunks without vectors",
			"document_id", docID, "error", err)
		embeddings = nil
	} else if len(embeddings) != len(textChunks) {
		// A provider returning the wrong number of vectors cannot be
		// aligned with the chunks; treat it like a failed call.
		slog.Warn("embedding count mismatch, storing chunks without vectors",
			"document_id", docID, "want", len(textChunks), "got", len(embeddings))
		embeddings = nil
	}

	chunks := make([]retrieval.Chunk, len(textChunks))
	for n, tc := range textChunks {
		c := retrieval.Chunk{
			ID:          uuid.New(),
			DocumentID:  docID,
			Index:       tc.Index,
			Content:     tc.Content,
			StartOffset: tc.Start,
		}
		if embeddings != nil {
			c.Embedding = embeddings[n]
		}
		chunks[n] = c
	}

	if err := i.store.Upsert(ctx, userID, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	return nil
}
