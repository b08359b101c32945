package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics are the Prometheus collectors of the ingestion pipeline.
type IngestMetrics struct {
	RecordsScanned  prometheus.Counter
	RecordsSkipped  *prometheus.CounterVec
	PointsUpserted  prometheus.Counter
	BatchesTotal    prometheus.Counter
	BatchDuration   prometheus.Histogram
	UpsertRetries   prometheus.Counter
	ChunkSplits     prometheus.Counter
	CheckpointValue prometheus.Gauge
}

// NewIngestMetrics registers the ingestion collectors on reg.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	m := &IngestMetrics{
		RecordsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flavornet_ingest",
			Name:      "records_scanned_total",
			Help:      "Source records read, including skipped ones",
		}),

		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flavornet_ingest",
			Name:      "records_skipped_total",
			Help:      "Source records dropped before point construction",
		}, []string{"reason"}),

		PointsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flavornet_ingest",
			Name:      "points_upserted_total",
			Help:      "Index points written to the vector collection",
		}),

		BatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flavornet_ingest",
			Name:      "batches_total",
			Help:      "Batches committed",
		}),

		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flavornet_ingest",
			Name:      "batch_duration_seconds",
			Help:      "Embed + upsert duration per batch",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		UpsertRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flavornet_ingest",
			Name:      "upsert_retries_total",
			Help:      "Upsert attempts beyond the first",
		}),

		ChunkSplits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flavornet_ingest",
			Name:      "chunk_splits_total",
			Help:      "Times a failing batch was halved",
		}),

		CheckpointValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flavornet_ingest",
			Name:      "checkpoint_offset",
			Help:      "Last durably committed source offset",
		}),
	}

	reg.MustRegister(
		m.RecordsScanned,
		m.RecordsSkipped,
		m.PointsUpserted,
		m.BatchesTotal,
		m.BatchDuration,
		m.UpsertRetries,
		m.ChunkSplits,
		m.CheckpointValue,
	)
	return m
}

// EmbeddingCacheTotal counts query-embedding cache lookups by result
// ("hit"/"miss"). Registered by RegisterCacheMetrics, not init().
var EmbeddingCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "flavornet",
	Name:      "embedding_cache_total",
	Help:      "Query embedding cache lookups",
}, []string{"result"})

// RegisterCacheMetrics registers the embedding cache collectors.
func RegisterCacheMetrics() {
	prometheus.MustRegister(EmbeddingCacheTotal)
}
