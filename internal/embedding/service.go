package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luminacare/assistant/internal/llm"
)

type Service struct {
	gateway llm.Gateway
	model   string
}

func NewService(gw llm.Gateway, model string) *Service {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &Service{gateway: gw, model: model}
}

// Embed generates embeddings for a batch of texts. Used at ingestion time,
// where failure is a hard error and the document stays unembedded.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	// Batch in groups of 100 for API limits
	const batchSize = 100
	var allEmbeddings [][]float32

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{
			Model: s.model,
			Input: texts[i:end],
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}

		allEmbeddings = append(allEmbeddings, resp.Embeddings...)
	}

	return allEmbeddings, nil
}

// EmbedQuery embeds a single query string. A provider failure here is soft:
// it returns (nil, nil) so retrieval can fall back to keyword scoring
// instead of failing the request.
func (s *Service) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{
		Model: s.model,
		Input: []string{query},
	})
	if err != nil {
		slog.Warn("query embedding failed, keyword scoring will be used", "error", err)
		return nil, nil
	}
	if len(resp.Embeddings) == 0 {
		return nil, nil
	}
	return resp.Embeddings[0], nil
}
