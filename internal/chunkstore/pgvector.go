package chunkstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/luminacare/assistant/internal/retrieval"
)

type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) Upsert(ctx context.Context, userID uuid.UUID, chunks []retrieval.Chunk) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// A re-sync may produce fewer chunks than the previous run. Trim the
	// tail the new set no longer covers, in the same transaction, so a
	// shrunken document cannot keep serving deleted content.
	for docID, count := range chunkCounts(chunks) {
		if _, err := tx.Exec(ctx,
			"DELETE FROM document_chunks WHERE document_id = $1 AND user_id = $2 AND chunk_index >= $3",
			docID, userID, count,
		); err != nil {
			return fmt.Errorf("trim stale chunks: %w", err)
		}
	}

	for _, c := range chunks {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		// NULL embedding column when the chunk was never embedded, so
		// retrieval can tell "no embedding" from a zero vector.
		var embedding interface{}
		if c.Embedding != nil {
			embedding = pgvector.NewVector(c.Embedding)
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, user_id, chunk_index, content, start_offset, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (document_id, chunk_index) DO UPDATE
			 SET content = $5, start_offset = $6, embedding = $7`,
			id, c.DocumentID, userID, c.Index, c.Content, c.StartOffset, embedding,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %d: %w", c.Index, err)
		}
	}

	return tx.Commit(ctx)
}

// chunkCounts groups the incoming set by document. Chunk indexes are
// sequential from zero within a document, so each count doubles as the
// first index that is stale after the write.
func chunkCounts(chunks []retrieval.Chunk) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, 1)
	for _, c := range chunks {
		counts[c.DocumentID]++
	}
	return counts
}

func (s *PgStore) GetByDocuments(ctx context.Context, userID uuid.UUID, documentIDs []uuid.UUID) ([]retrieval.Chunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, document_id, chunk_index, content, start_offset, embedding
		 FROM document_chunks
		 WHERE user_id = $1 AND document_id = ANY($2)
		 ORDER BY document_id, chunk_index`,
		userID, documentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []retrieval.Chunk
	for rows.Next() {
		var c retrieval.Chunk
		var embedding *pgvector.Vector
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content, &c.StartOffset, &embedding); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if embedding != nil {
			c.Embedding = embedding.Slice()
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read chunks: %w", err)
	}
	return chunks, nil
}

func (s *PgStore) DeleteByDocument(ctx context.Context, userID, documentID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM document_chunks WHERE document_id = $1 AND user_id = $2",
		documentID, userID,
	)
	return err
}
