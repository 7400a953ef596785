package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/luminacare/assistant/internal/document"
	"github.com/luminacare/assistant/internal/drive"
	"github.com/luminacare/assistant/internal/models"
	"github.com/luminacare/assistant/internal/queue"
)

// DriveSyncWorker refreshes a Drive-linked document: export its text and
// re-ingest. Re-running replaces existing chunks via upsert.
type DriveSyncWorker struct {
	docSvc   *document.Service
	fetcher  *drive.Fetcher
	ingester *Ingester
}

func NewDriveSyncWorker(docSvc *document.Service, fetcher *drive.Fetcher, ingester *Ingester) *DriveSyncWorker {
	return &DriveSyncWorker{
		docSvc:   docSvc,
		fetcher:  fetcher,
		ingester: ingester,
	}
}

func (w *DriveSyncWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DriveSyncPayload
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

	slog.Info("syncing drive document", "document_id", docID)

	if err := w.docSvc.UpdateStatus(ctx, docID, models.DocStatusProcessing); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	doc, err := w.docSvc.GetForWorker(ctx, docID)
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("get document: %w", err)
	}

	content, err := w.fetcher.FetchText(ctx, doc.DriveFileID)
	if errors.Is(err, drive.ErrNoContent) {
		// Nothing exportable. The document stays visible but yields no
		// chunks; don't retry.
		slog.Warn("drive document has no usable content", "document_id", docID)
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return nil
	}
	if err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("fetch drive content: %w", err)
	}

	if err := w.ingester.Ingest(ctx, userID, docID, content); err != nil {
		w.docSvc.UpdateStatus(ctx, docID, models.DocStatusFailed)
		return fmt.Errorf("ingest content: %w", err)
	}

	return w.docSvc.UpdateStatus(ctx, docID, models.DocStatusReady)
}
