package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/config"
	"github.com/toonrec/toonrec/internal/domain"
	logpkg "github.com/toonrec/toonrec/internal/logger"
	"github.com/toonrec/toonrec/internal/metrics"
	webtoonrepo "github.com/toonrec/toonrec/internal/repository/webtoon"
	"github.com/toonrec/toonrec/internal/transport/httpapi"
	openaiTransport "github.com/toonrec/toonrec/internal/transport/openai"
	"github.com/toonrec/toonrec/internal/usecase/catalog"
	"github.com/toonrec/toonrec/internal/usecase/classify"
	"github.com/toonrec/toonrec/internal/usecase/extract"
	"github.com/toonrec/toonrec/internal/usecase/recommend"
	"github.com/toonrec/toonrec/internal/usecase/reject"
	"github.com/toonrec/toonrec/internal/usecase/rerank"
	"github.com/toonrec/toonrec/internal/usecase/retrieve"
	"github.com/toonrec/toonrec/internal/usecase/stats"
	"github.com/toonrec/toonrec/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting toonrec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("llm_extraction", cfg.Extraction.UseLLM),
	)

	repo, err := webtoonrepo.New(webtoonrepo.Config{
		Addrs:     cfg.Database.Addrs,
		Password:  cfg.Database.Password,
		KeyPrefix: cfg.Database.KeyPrefix,
		IndexName: cfg.Database.IndexName,
		VectorDim: cfg.Embedding.Dimensions,
		ScanLimit: cfg.Database.ScanLimit,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog store", zap.Error(err))
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Catalog store not ready", zap.Error(err))
	}
	if err := repo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}
	logger.Info("Connected to catalog store")

	// Register metrics explicitly (no init())
	metrics.RegisterProviderMetrics()

	embedder := openaiTransport.NewEmbedder(openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})

	// One generator per purpose: metrics stay separable while sharing config.
	var extractGen, explainGen domain.Generator
	if cfg.LLM.APIKey != "" {
		extractGen = openaiTransport.NewGenerator(openaiTransport.GeneratorConfig{
			APIKey:     cfg.LLM.APIKey,
			BaseURL:    cfg.LLM.BaseURL,
			Model:      cfg.LLM.Model,
			Purpose:    "extraction",
			MaxRetries: cfg.LLM.MaxRetries,
		})
		explainGen = openaiTransport.NewGenerator(openaiTransport.GeneratorConfig{
			APIKey:     cfg.LLM.APIKey,
			BaseURL:    cfg.LLM.BaseURL,
			Model:      cfg.LLM.Model,
			Purpose:    "explanation",
			MaxRetries: cfg.LLM.MaxRetries,
		})
		logger.Info("Text generator created", zap.String("model", cfg.LLM.Model))
	} else {
		logger.Warn("No LLM API key configured, running rule-based analysis only")
	}

	mapping := extract.MappingPolicy{
		PoorLowTierDirection: domain.SortDirection(cfg.Retrieval.PoorQualitySort),
	}

	classifier := classify.New()
	var extractor recommend.Extractor
	if extractGen != nil {
		extractor = extract.New(extractGen, mapping)
	}

	router := retrieve.New(repo, rerank.New(), cfg.Retrieval.SimilarityThreshold)
	statsSvc := stats.New(repo)
	rejectSvc := reject.New(explainGen)

	pipeline := recommend.New(
		recommend.Options{
			UseLLM: cfg.Extraction.UseLLM && extractor != nil,
			TopK:   cfg.Retrieval.TopK,
			Limits: domain.QueryLimits{
				Min: cfg.Query.MinLength,
				Max: cfg.Query.MaxLength,
			},
			Mapping: mapping,
		},
		classifier, extractor, embedder, router, statsSvc, rejectSvc, explainGen,
	)

	catalogSvc := catalog.New(repo, embedder, statsSvc)

	server := httpapi.NewServer(pipeline, classifier, statsSvc, repo, catalogSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
