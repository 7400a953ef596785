package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luminacare/assistant/internal/analytics"
	"github.com/luminacare/assistant/internal/answer"
	"github.com/luminacare/assistant/internal/auth"
	"github.com/luminacare/assistant/internal/cache"
	"github.com/luminacare/assistant/internal/chunkstore"
	"github.com/luminacare/assistant/internal/config"
	"github.com/luminacare/assistant/internal/models"
	"github.com/luminacare/assistant/internal/retrieval"
)

// fastMaxResults is the cap used by the fast variant in place of the
// configured default.
const fastMaxResults = 8

// excerptLength bounds the excerpt echoed back in each source.
const excerptLength = 300

// cacheTTL is how long a search response may be served from Redis. Purely
// a convenience; correctness never depends on the cache.
const cacheTTL = time.Minute

type Request struct {
	Query       string      `json:"query"`
	DocumentIDs []uuid.UUID `json:"document_ids,omitempty"`
	// Fast trades precision for a larger, cheaper result set.
	Fast bool `json:"fast,omitempty"`
}

type Source struct {
	DocumentTitle   string  `json:"document_title"`
	DocumentURL     string  `json:"document_url"`
	RelevantContent string  `json:"relevant_content"`
	PageNumber      int     `json:"page_number,omitempty"`
	Confidence      float64 `json:"confidence"`
}

type Response struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	TokensUsed int      `json:"tokens_used,omitempty"`
}

// Embedder turns a query into a vector. A (nil, nil) return means
// embedding was unavailable and keyword scoring should carry the request.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Synthesizer produces the final cited answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, inputs []answer.Input) (*answer.Result, error)
}

// DocumentSource resolves the caller's document scope. With no ids it
// returns every ready document the user owns.
type DocumentSource interface {
	ListForSearch(ctx context.Context, ids []uuid.UUID) ([]models.Document, error)
}

type Service struct {
	docs      DocumentSource
	store     chunkstore.Store
	embedder  Embedder
	synth     Synthesizer
	analytics *analytics.Service
	cache     *cache.Cache
	cfg       config.RetrievalConfig
}

func NewService(docs DocumentSource, store chunkstore.Store, embedder Embedder, synth Synthesizer, cfg config.RetrievalConfig) *Service {
	return &Service{
		docs:     docs,
		store:    store,
		embedder: embedder,
		synth:    synth,
		cfg:      cfg,
	}
}

// WithAnalytics enables post-hoc search logging.
func (s *Service) WithAnalytics(a *analytics.Service) *Service {
	s.analytics = a
	return s
}

// WithCache enables best-effort response caching.
func (s *Service) WithCache(c *cache.Cache) *Service {
	s.cache = c
	return s
}

// Search runs the full pipeline: resolve scope, embed the query, load and
// rank chunks, synthesize a cited answer. Per-item problems degrade; only
// an unreachable store or a failed model call surface as errors.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	docs, err := s.docs.ListForSearch(ctx, req.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve document scope: %w", err)
	}
	if len(docs) == 0 {
		resp := &Response{Answer: answer.NoDocumentsAnswer, Sources: []Source{}}
		s.log(ctx, req.Query, "none", 0, start)
		return resp, nil
	}

	cacheKey := s.cacheKey(ctx, req)
	if s.cache != nil {
		var cached Response
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	docsByID := make(map[uuid.UUID]models.Document, len(docs))
	docIDs := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		docsByID[d.ID] = d
		docIDs[i] = d.ID
	}

	chunks, err := s.store.GetByDocuments(ctx, auth.UserIDFromContext(ctx), docIDs)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		resp := &Response{Answer: answer.NoContentAnswer, Sources: []Source{}}
		s.log(ctx, req.Query, "none", 0, start)
		return resp, nil
	}

	// Embedding failures are soft; ranking falls back to keywords.
	queryVec, err := s.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		slog.Warn("query embedding error", "error", err)
		queryVec = nil
	}

	opts := retrieval.Options{
		MaxResults:           s.cfg.MaxResults,
		KeywordFallbackBelow: s.cfg.KeywordFallbackBelow,
		KeywordMinScore:      s.cfg.KeywordMinScore,
	}
	if req.Fast {
		opts.MaxResults = fastMaxResults
	}

	ranked := retrieval.Rank(req.Query, queryVec, chunks, opts)
	if len(ranked) == 0 {
		resp := &Response{Answer: answer.NoContentAnswer, Sources: []Source{}}
		s.log(ctx, req.Query, "none", 0, start)
		return resp, nil
	}

	inputs := make([]answer.Input, len(ranked))
	for i, r := range ranked {
		doc := docsByID[r.DocumentID]
		inputs[i] = answer.Input{
			ScoredChunk:   r,
			DocumentTitle: doc.Title,
			DocumentURL:   doc.URL,
		}
	}

	result, err := s.synth.Synthesize(ctx, req.Query, inputs)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	sources := make([]Source, len(ranked))
	for i, r := range ranked {
		doc := docsByID[r.DocumentID]
		sources[i] = Source{
			DocumentTitle:   doc.Title,
			DocumentURL:     doc.URL,
			RelevantContent: excerpt(r.Content),
			PageNumber:      answer.EstimatePage(r.StartOffset, s.cfg.CharsPerPage),
			Confidence:      r.Score,
		}
	}

	resp := &Response{
		Answer:     result.Answer,
		Sources:    sources,
		TokensUsed: result.TokensUsed,
	}

	s.log(ctx, req.Query, string(ranked[0].Method), len(ranked), start)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, cacheTTL); err != nil {
			slog.Debug("response cache write failed", "error", err)
		}
	}

	return resp, nil
}

func (s *Service) log(ctx context.Context, query, strategy string, results int, start time.Time) {
	if s.analytics == nil {
		return
	}
	s.analytics.LogSearch(ctx, analytics.SearchLog{
		Query:       query,
		Strategy:    strategy,
		ResultCount: results,
		Duration:    time.Since(start),
	})
}

func (s *Service) cacheKey(ctx context.Context, req Request) string {
	var sb strings.Builder
	sb.WriteString(auth.UserIDFromContext(ctx).String())
	sb.WriteByte('|')
	sb.WriteString(req.Query)
	for _, id := range req.DocumentIDs {
		sb.WriteByte('|')
		sb.WriteString(id.String())
	}
	if req.Fast {
		sb.WriteString("|fast")
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return "search:" + hex.EncodeToString(sum[:16])
}

func excerpt(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= excerptLength {
		return content
	}
	return content[:excerptLength] + "..."
}
