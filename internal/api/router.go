package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juan-cardona/anxious-intelligence/internal/api/handlers"
	mw "github.com/juan-cardona/anxious-intelligence/internal/api/middleware"
	"github.com/juan-cardona/anxious-intelligence/internal/buildconfig"
	"github.com/juan-cardona/anxious-intelligence/internal/config"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"github.com/juan-cardona/anxious-intelligence/internal/embedding"
	"github.com/juan-cardona/anxious-intelligence/internal/reasoner"
	"github.com/juan-cardona/anxious-intelligence/internal/service"
	"github.com/juan-cardona/anxious-intelligence/internal/store"
	"go.uber.org/zap"
)

// App holds the router and the revision engine for lifecycle management.
type App struct {
	Router *chi.Mux
	Engine *service.RevisionEngine

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	beliefStore := store.NewBeliefStore(db)
	connectionStore := store.NewConnectionStore(db)
	contradictionStore := store.NewContradictionStore(db)
	revisionStore := store.NewRevisionStore(db)
	interactionStore := store.NewInteractionStore(db)

	// External clients via provider factories
	reasonerClient, err := reasoner.NewClient(config.ReasonerProvider(), config.ReasonerAPIKey(), reasoner.Options{
		BaseURL:       config.AnthropicBaseURL(),
		ModelFast:     config.ModelFast(),
		ModelRevision: config.ModelRevision(),
	})
	if err != nil {
		logger.Warn("reasoner client initialization failed, falling back to mock",
			zap.String("provider", config.ReasonerProvider()), zap.Error(err))
		reasonerClient = reasoner.NewMockClient()
	} else {
		logger.Info("reasoner client initialized", zap.String("provider", config.ReasonerProvider()))
	}

	embeddingClient, err := embedding.NewClient(config.EmbeddingProvider(), config.EmbeddingAPIKey(), embedding.Options{
		Model: config.EmbeddingModel(),
	})
	if err != nil {
		logger.Warn("embedding client initialization failed, falling back to mock",
			zap.String("provider", config.EmbeddingProvider()), zap.Error(err))
		embeddingClient = embedding.NewMockClient()
	} else {
		logger.Info("embedding client initialized", zap.String("provider", config.EmbeddingProvider()))
	}

	// Services
	beliefSvc := service.NewBeliefService(beliefStore, connectionStore, embeddingClient, logger)
	dissatisfactionSvc := service.NewDissatisfactionService(beliefStore, logger)
	tensionSvc := service.NewTensionService(beliefStore, contradictionStore,
		config.ConfidenceIncrement(), config.TensionIncrement(), config.RevisionThreshold(), logger)
	engine := service.NewRevisionEngine(beliefStore, connectionStore, contradictionStore, revisionStore,
		reasonerClient, config.RevisionThreshold(), config.CascadeDepthLimit(), config.ReasonerTimeout(), logger)
	orchestrator := service.NewOrchestrator(beliefStore, revisionStore, interactionStore, reasonerClient,
		tensionSvc, engine, dissatisfactionSvc, config.RevisionThreshold(), logger)

	// Handlers
	beliefHandler := handlers.NewBeliefHandler(beliefSvc)
	contradictionHandler := handlers.NewContradictionHandler(contradictionStore)
	interactionHandler := handlers.NewInteractionHandler(orchestrator)
	evidenceHandler := handlers.NewEvidenceHandler(orchestrator)
	dissatisfactionHandler := handlers.NewDissatisfactionHandler(dissatisfactionSvc)
	revisionHandler := handlers.NewRevisionHandler(revisionStore, beliefStore, engine)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Engine:    engine,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/interactions", interactionHandler.Create)
		r.Post("/evidence", evidenceHandler.Submit)
		r.Get("/dissatisfaction", dissatisfactionHandler.Get)

		r.Route("/beliefs", func(r chi.Router) {
			r.Get("/", beliefHandler.List)
			r.Post("/", beliefHandler.Create)
			r.Post("/similar", beliefHandler.Similar)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", beliefHandler.GetByID)
				r.Post("/connections", beliefHandler.Connect)
				r.Get("/connections", beliefHandler.Connected)
				r.Get("/contradictions", contradictionHandler.Recent)
			})
		})

		r.Route("/revisions", func(r chi.Router) {
			r.Get("/", revisionHandler.Recent)
			r.Post("/trigger", revisionHandler.Trigger)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.BeliefStore        = (*store.BeliefStore)(nil)
	_ domain.ConnectionStore    = (*store.ConnectionStore)(nil)
	_ domain.ContradictionStore = (*store.ContradictionStore)(nil)
	_ domain.RevisionStore      = (*store.RevisionStore)(nil)
	_ domain.InteractionStore   = (*store.InteractionStore)(nil)
	_ domain.ReasonerClient     = (*reasoner.AnthropicClient)(nil)
	_ domain.ReasonerClient     = (*reasoner.OpenAIClient)(nil)
	_ domain.ReasonerClient     = (*reasoner.MockClient)(nil)
	_ domain.EmbeddingClient    = (*embedding.OpenAIClient)(nil)
	_ domain.EmbeddingClient    = (*embedding.MockClient)(nil)
)
