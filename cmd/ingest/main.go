// Command ingest builds the recipe vector index from the JSONL source.
// Interrupted runs resume from the last committed checkpoint; -reset
// discards the checkpoint and rebuilds the collection from scratch.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/config"
	openaiEmb "github.com/LorenaRaichle/AdvDB-FlavorNet/internal/embedding/openai"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/ingest"
	logpkg "github.com/LorenaRaichle/AdvDB-FlavorNet/internal/logger"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/metrics"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/vecstore"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/version"
)

func main() {
	reset := flag.Bool("reset", false, "discard the checkpoint and rebuild the collection")
	source := flag.String("source", "", "override the JSONL source path")
	flag.Parse()

	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if *source != "" {
		cfg.Ingest.SourcePath = *source
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting FlavorNet ingestion",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("source", cfg.Ingest.SourcePath),
		zap.String("collection", cfg.Qdrant.Collection),
		zap.Bool("reset", *reset),
	)

	// Loader metrics live on their own registry and port so a scrape never
	// mixes them with the API server's collectors.
	registry := prometheus.NewRegistry()
	ingestMetrics := metrics.NewIngestMetrics(registry)
	go serveMetrics(cfg.Ingest.MetricsPort, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkpoint, err := ingest.OpenCheckpoint(cfg.Ingest.CheckpointPath)
	if err != nil {
		logger.Fatal("Failed to open checkpoint", zap.Error(err))
	}
	if *reset {
		if err := checkpoint.Reset(); err != nil {
			logger.Fatal("Failed to reset checkpoint", zap.Error(err))
		}
	}

	client, err := buildVectorClient(cfg, ingestMetrics, logger)
	if err != nil {
		logger.Fatal("Failed to create vector index client", zap.Error(err))
	}
	defer func() { _ = client.Close() }()

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	pipeline := ingest.New(
		ingest.NewJSONLSource(cfg.Ingest.SourcePath),
		embedder,
		client,
		checkpoint,
		ingest.Config{
			BatchSize:    cfg.Ingest.BatchSize,
			SegmentCount: cfg.Ingest.SegmentCount,
		},
		ingestMetrics,
		logger,
	)

	stats, err := pipeline.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Ingestion interrupted, resume from checkpoint",
				zap.Int64("checkpoint", checkpoint.Offset()))
			os.Exit(1)
		}
		logger.Error("Ingestion failed",
			zap.Int64("checkpoint", checkpoint.Offset()),
			zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Ingestion complete",
		zap.Int64("scanned", stats.Scanned),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("upserted", stats.Upserted),
		zap.Bool("resumed", stats.Resumed),
	)
}

func buildVectorClient(cfg config.Config, m *metrics.IngestMetrics, logger *zap.Logger) (*vecstore.Client, error) {
	grpcAddr := fmt.Sprintf("%s:%d", cfg.Qdrant.Host, cfg.Qdrant.GRPCPort)
	primary, err := vecstore.NewGRPCTransport(grpcAddr, cfg.Qdrant.APIKey)
	if err != nil {
		return nil, err
	}

	httpBase := fmt.Sprintf("http://%s:%d", cfg.Qdrant.Host, cfg.Qdrant.HTTPPort)
	secondary := vecstore.NewHTTPTransport(httpBase, cfg.Qdrant.APIKey)

	transport := vecstore.NewFailoverTransport(primary, secondary, logger)
	timeout := time.Duration(cfg.Qdrant.TimeoutSec) * time.Second
	client := vecstore.NewClient(transport, cfg.Qdrant.Collection, timeout, vecstore.RetryPolicy{
		MaxAttempts: cfg.Ingest.MaxAttempts,
		MinChunk:    cfg.Ingest.MinChunkSize,
	}, logger)
	return client.WithRetryHooks(m.UpsertRetries.Inc, m.ChunkSplits.Inc), nil
}

func serveMetrics(port int, registry *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	addr := fmt.Sprintf(":%d", port)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Warn("Metrics listener stopped", zap.Error(err))
	}
}
