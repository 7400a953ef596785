package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luminacare/assistant/internal/auth"
	"github.com/luminacare/assistant/internal/drive"
	"github.com/luminacare/assistant/internal/models"
	"github.com/luminacare/assistant/internal/queue"
	"github.com/luminacare/assistant/internal/storage"
)

var ErrNotFound = errors.New("document not found")

const docColumns = "id, user_id, title, source_type, COALESCE(drive_file_id, ''), COALESCE(file_path, ''), COALESCE(url, ''), status, created_at, updated_at"

type Service struct {
	db      *pgxpool.Pool
	storage storage.Storage
	bucket  string
	queue   *queue.Client
}

func NewService(db *pgxpool.Pool, store storage.Storage, bucket string, qc *queue.Client) *Service {
	return &Service{
		db:      db,
		storage: store,
		bucket:  bucket,
		queue:   qc,
	}
}

// LinkDrive registers a Google Drive document by URL or file id and queues
// its first sync.
func (s *Service) LinkDrive(ctx context.Context, title, rawURL string) (*models.Document, error) {
	fileID, ok := drive.ExtractFileID(rawURL)
	if !ok {
		return nil, fmt.Errorf("unrecognized drive URL: %s", rawURL)
	}

	userID := auth.UserIDFromContext(ctx)
	docID := uuid.New()

	doc, err := s.scanOne(s.db.QueryRow(ctx,
		`INSERT INTO documents (id, user_id, title, source_type, drive_file_id, url, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+docColumns,
		docID, userID, title, models.SourceDrive, fileID, rawURL, models.DocStatusPending,
	))
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	if err := s.queue.EnqueueDriveSync(queue.DriveSyncPayload{
		DocumentID: docID.String(),
		UserID:     userID.String(),
	}); err != nil {
		slog.Warn("failed to enqueue drive sync", "document_id", docID, "error", err)
	}

	return doc, nil
}

type UploadRequest struct {
	Title    string
	FileType string
	Data     io.Reader
}

// Upload stores a directly uploaded file and queues ingestion.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.Document, error) {
	userID := auth.UserIDFromContext(ctx)
	docID := uuid.New()
	path := fmt.Sprintf("%s/%s/%s", userID, docID, time.Now().Format("20060102"))

	if err := s.storage.Upload(ctx, s.bucket, path, req.Data, req.FileType); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc, err := s.scanOne(s.db.QueryRow(ctx,
		`INSERT INTO documents (id, user_id, title, source_type, file_path, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+docColumns,
		docID, userID, req.Title, models.SourceUpload, path, models.DocStatusPending,
	))
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	if err := s.queue.EnqueueIngest(queue.IngestPayload{
		DocumentID: docID.String(),
		UserID:     userID.String(),
	}); err != nil {
		slog.Warn("failed to enqueue ingest", "document_id", docID, "error", err)
	}

	return doc, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	userID := auth.UserIDFromContext(ctx)
	doc, err := s.scanOne(s.db.QueryRow(ctx,
		`SELECT `+docColumns+` FROM documents WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context) ([]models.Document, error) {
	userID := auth.UserIDFromContext(ctx)
	rows, err := s.db.Query(ctx,
		`SELECT `+docColumns+` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

// ListForSearch resolves a search scope: the given ids, or every ready
// document the user owns when ids is empty. Documents still syncing are
// excluded either way.
func (s *Service) ListForSearch(ctx context.Context, ids []uuid.UUID) ([]models.Document, error) {
	userID := auth.UserIDFromContext(ctx)

	var (
		rows pgx.Rows
		err  error
	)
	if len(ids) == 0 {
		rows, err = s.db.Query(ctx,
			`SELECT `+docColumns+` FROM documents WHERE user_id = $1 AND status = $2 ORDER BY created_at`,
			userID, models.DocStatusReady,
		)
	} else {
		rows, err = s.db.Query(ctx,
			`SELECT `+docColumns+` FROM documents WHERE user_id = $1 AND status = $2 AND id = ANY($3) ORDER BY created_at`,
			userID, models.DocStatusReady, ids,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list documents for search: %w", err)
	}
	defer rows.Close()
	return s.scanAll(rows)
}

// Delete removes the document row (chunks cascade) and then the stored
// file, if any. A storage failure after the row is gone is logged only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	userID := auth.UserIDFromContext(ctx)
	if _, err := s.db.Exec(ctx, "DELETE FROM documents WHERE id = $1 AND user_id = $2", id, userID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if doc.FilePath != "" {
		if err := s.storage.Delete(ctx, s.bucket, doc.FilePath); err != nil {
			slog.Warn("failed to delete stored file", "document_id", id, "error", err)
		}
	}
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE documents SET status = $1, updated_at = now() WHERE id = $2",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// GetForWorker loads a document without user scoping; workers run outside
// a request context and carry the user id in the task payload.
func (s *Service) GetForWorker(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, err := s.scanOne(s.db.QueryRow(ctx,
		`SELECT `+docColumns+` FROM documents WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *Service) scanOne(row pgx.Row) (*models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.SourceType, &d.DriveFileID,
		&d.FilePath, &d.URL, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) scanAll(rows pgx.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.Title, &d.SourceType, &d.DriveFileID,
			&d.FilePath, &d.URL, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}
	return docs, nil
}
