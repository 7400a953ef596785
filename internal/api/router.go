package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/luminacare/assistant/internal/analytics"
	"github.com/luminacare/assistant/internal/answer"
	"github.com/luminacare/assistant/internal/api/handlers"
	"github.com/luminacare/assistant/internal/api/middleware"
	"github.com/luminacare/assistant/internal/auth"
	"github.com/luminacare/assistant/internal/cache"
	"github.com/luminacare/assistant/internal/chunkstore"
	"github.com/luminacare/assistant/internal/config"
	"github.com/luminacare/assistant/internal/document"
	"github.com/luminacare/assistant/internal/embedding"
	"github.com/luminacare/assistant/internal/llm"
	"github.com/luminacare/assistant/internal/queue"
	"github.com/luminacare/assistant/internal/search"
	"github.com/luminacare/assistant/internal/storage"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Services
	store := storage.NewSupabaseStorage(rt.cfg.Storage.SupabaseURL, rt.cfg.Storage.SupabaseKey)
	queueClient := queue.NewClient(rt.cfg.Redis)
	docSvc := document.NewService(rt.db, store, rt.cfg.Storage.Bucket, queueClient)

	chunks := chunkstore.NewPgStore(rt.db)
	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.LLM.EmbeddingModel)
	synth := answer.NewSynthesizer(rt.llmGW, rt.cfg.LLM.DefaultModel)

	searchSvc := search.NewService(docSvc, chunks, embedSvc, synth, rt.cfg.Retrieval).
		WithAnalytics(analytics.NewService(rt.db)).
		WithCache(cache.NewCache(rt.redis))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		docH := handlers.NewDocumentHandler(docSvc)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upload)
			r.Post("/drive", docH.LinkDrive)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
			r.Delete("/{id}", docH.Delete)
			r.Get("/{id}/status", docH.Status)
		})

		searchH := handlers.NewSearchHandler(searchSvc)
		r.Post("/search", searchH.Ask)
	})

	return r
}
