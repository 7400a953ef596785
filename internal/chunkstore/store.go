package chunkstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/luminacare/assistant/internal/retrieval"
)

// Store persists document chunks and their embeddings. Chunks are written
// once at ingestion and deleted with their parent document; they are never
// updated in place.
type Store interface {
	Upsert(ctx context.Context, userID uuid.UUID, chunks []retrieval.Chunk) error
	// GetByDocuments returns all chunks for the given documents in
	// (document, chunk index) order. An empty result is not an error.
	GetByDocuments(ctx context.Context, userID uuid.UUID, documentIDs []uuid.UUID) ([]retrieval.Chunk, error)
	DeleteByDocument(ctx context.Context, userID, documentID uuid.UUID) error
}
