package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/config"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/docstore"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/embedding/embcache"
	openaiEmb "github.com/LorenaRaichle/AdvDB-FlavorNet/internal/embedding/openai"
	logpkg "github.com/LorenaRaichle/AdvDB-FlavorNet/internal/logger"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/metrics"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/prefstore"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/retrieval"
	chiTransport "github.com/LorenaRaichle/AdvDB-FlavorNet/internal/transport/chi"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/vecstore"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/version"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting FlavorNet API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("collection", cfg.Qdrant.Collection),
	)

	ctx := context.Background()

	prefs, err := prefstore.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to preference store", zap.Error(err))
	}
	defer prefs.Close()

	docs, err := docstore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Fatal("Failed to connect to document store", zap.Error(err))
	}
	logger.Info("Connected to stores")

	vectors, err := buildVectorClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create vector index client", zap.Error(err))
	}
	defer func() { _ = vectors.Close() }()

	embedder := buildEmbedder(cfg, logger)

	service := retrieval.NewService(
		prefs, docs, embedder, vectors,
		cfg.Search.MinCandidates, logger,
	)

	server := chiTransport.NewServer(service, chiTransport.Limits{
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		RequestTimeout: time.Duration(cfg.Search.RequestSec) * time.Second,
	})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

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

// buildVectorClient assembles the transport pair: gRPC primary with a REST
// fallback that takes over on connectivity failures.
func buildVectorClient(cfg config.Config, logger *zap.Logger) (*vecstore.Client, error) {
	grpcAddr := fmt.Sprintf("%s:%d", cfg.Qdrant.Host, cfg.Qdrant.GRPCPort)
	primary, err := vecstore.NewGRPCTransport(grpcAddr, cfg.Qdrant.APIKey)
	if err != nil {
		return nil, err
	}

	httpBase := fmt.Sprintf("http://%s:%d", cfg.Qdrant.Host, cfg.Qdrant.HTTPPort)
	secondary := vecstore.NewHTTPTransport(httpBase, cfg.Qdrant.APIKey)

	transport := vecstore.NewFailoverTransport(primary, secondary, logger)
	timeout := time.Duration(cfg.Qdrant.TimeoutSec) * time.Second
	return vecstore.NewClient(transport, cfg.Qdrant.Collection, timeout, vecstore.RetryPolicy{
		MaxAttempts: cfg.Ingest.MaxAttempts,
		MinChunk:    cfg.Ingest.MinChunkSize,
	}, logger), nil
}

// buildEmbedder assembles the query embedder chain: OpenAI-compatible
// provider, optionally wrapped in the key-value cache.
func buildEmbedder(cfg config.Config, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	if len(cfg.Cache.Addrs) == 0 {
		return base
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: cfg.Cache.Addrs,
		Password:    cfg.Cache.Password,
	})
	if err != nil {
		logger.Warn("Embedding cache unavailable, continuing without it", zap.Error(err))
		return base
	}

	metrics.RegisterCacheMetrics()
	logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	return embcache.New(
		base,
		embcache.NewValkeyStore(client, time.Duration(cfg.Cache.TTLSec)*time.Second),
		cfg.Embedding.Model,
		metrics.EmbeddingCacheTotal, logger,
	)
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
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
