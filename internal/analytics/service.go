package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luminacare/assistant/internal/auth"
)

// Service records search activity after the fact. Queries are never
// persisted as first-class entities; this log is the only place they land.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

type SearchLog struct {
	Query       string
	Strategy    string
	ResultCount int
	Duration    time.Duration
}

// LogSearch is best-effort: a write failure is logged and swallowed so it
// can never fail the request it describes.
func (s *Service) LogSearch(ctx context.Context, entry SearchLog) {
	userID := auth.UserIDFromContext(ctx)

	_, err := s.db.Exec(ctx,
		`INSERT INTO search_logs (id, user_id, query, strategy, result_count, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), userID, entry.Query, entry.Strategy, entry.ResultCount, entry.Duration.Milliseconds(),
	)
	if err != nil {
		slog.Warn("failed to record search log", "error", err)
	}
}
