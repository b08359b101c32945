// Package ingest builds the vector index from the recipe source in
// resumable batches. Progress is tracked as a source offset that is
// committed only after the batch it covers is durably upserted.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/metrics"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/vecstore"
)

const skipReasonNoSlug = "no_slug"

// VectorIndex is the slice of the vector store client the pipeline needs.
type VectorIndex interface {
	EnsureCollection(ctx context.Context, dim, segmentCount int, recreate bool) error
	UpsertResilient(ctx context.Context, points []vecstore.Point) error
}

// Config holds the pipeline tunables.
type Config struct {
	BatchSize    int
	SegmentCount int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 256
	}
	if c.SegmentCount <= 0 {
		c.SegmentCount = 2
	}
	return c
}

// Stats summarizes one pipeline run.
type Stats struct {
	Scanned  int64
	Skipped  int64
	Upserted int64
	Resumed  bool
}

// Pipeline drives one ingestion run end to end.
type Pipeline struct {
	source     Source
	embedder   domain.BatchEmbedder
	index      VectorIndex
	checkpoint *Checkpoint
	cfg        Config
	metrics    *metrics.IngestMetrics
	logger     *zap.Logger
}

// New wires a pipeline. The metrics set may be nil in tests.
func New(
	source Source, embedder domain.BatchEmbedder, index VectorIndex,
	checkpoint *Checkpoint, cfg Config, m *metrics.IngestMetrics, logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		source:     source,
		embedder:   embedder,
		index:      index,
		checkpoint: checkpoint,
		cfg:        cfg.withDefaults(),
		metrics:    m,
		logger:     logger,
	}
}

type pending struct {
	ordinal int64
	rec     Record
}

// Run executes the ingestion. A fresh run (checkpoint at zero) recreates
// the collection; a resumed run requires the collection to exist and
// skips every record at or below the committed offset. Any batch failure
// aborts the run with the checkpoint still pointing at the last committed
// batch, so the next run resumes exactly there.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	start := p.checkpoint.Offset()
	stats := Stats{Resumed: start > 0}

	dim, err := p.probeDimension(ctx)
	if err != nil {
		return stats, err
	}

	if err := p.index.EnsureCollection(ctx, dim, p.cfg.SegmentCount, start == 0); err != nil {
		return stats, fmt.Errorf("prepare collection: %w", err)
	}
	p.logger.Info("ingestion starting",
		zap.Int64("checkpoint", start),
		zap.Int("dimension", dim),
		zap.Bool("resumed", stats.Resumed),
	)

	batch := make([]pending, 0, p.cfg.BatchSize)
	err = p.source.Scan(ctx, func(ordinal int64, rec Record) error {
		if ordinal <= start {
			return nil
		}
		batch = append(batch, pending{ordinal: ordinal, rec: rec})
		if len(batch) < p.cfg.BatchSize {
			return nil
		}
		if err := p.flush(ctx, batch, &stats); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	})
	if err != nil {
		return stats, err
	}
	if len(batch) > 0 {
		if err := p.flush(ctx, batch, &stats); err != nil {
			return stats, err
		}
	}

	p.logger.Info("ingestion finished",
		zap.Int64("scanned", stats.Scanned),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("upserted", stats.Upserted),
	)
	return stats, nil
}

// probeDimension learns the embedding width from the model itself rather
// than trusting configuration to match it.
func (p *Pipeline) probeDimension(ctx context.Context) (int, error) {
	vectors, err := p.embedder.EmbedBatch(ctx, []string{"probe"})
	if err != nil {
		return 0, fmt.Errorf("probe embedding dimension: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return 0, fmt.Errorf("probe embedding dimension: empty vector")
	}
	return len(vectors[0]), nil
}

// flush embeds and upserts one batch, then advances the checkpoint to the
// ordinal of the batch's last scanned record. The checkpoint write comes
// after the upsert: a crash between the two re-ingests the batch, which
// stable point IDs make idempotent.
func (p *Pipeline) flush(ctx context.Context, batch []pending, stats *Stats) error {
	began := time.Now()

	texts := make([]string, len(batch))
	ingredients := make([]string, len(batch))
	for i, item := range batch {
		texts[i] = item.rec.TextInput()
		ingredients[i] = item.rec.IngredientInput()
	}

	textVecs, ingVecs, err := p.embedBoth(ctx, texts, ingredients)
	if err != nil {
		return fmt.Errorf("embed batch ending at %d: %w", batch[len(batch)-1].ordinal, err)
	}

	points := make([]vecstore.Point, 0, len(batch))
	for i, item := range batch {
		// The slug is the point identity; it joins back to the document
		// store at query time, so it must match the stored form exactly.
		slug := strings.TrimSpace(item.rec.Slug)
		if slug == "" {
			stats.Skipped++
			if p.metrics != nil {
				p.metrics.RecordsSkipped.WithLabelValues(skipReasonNoSlug).Inc()
			}
			p.logger.Warn("skipping record without slug",
				zap.Int64("ordinal", item.ordinal),
				zap.String("title", item.rec.Title),
			)
			continue
		}
		item.rec.Slug = slug
		points = append(points, vecstore.Point{
			ID: domain.StablePointID(slug),
			Vectors: map[string][]float32{
				domain.TextVectorName:       textVecs[i],
				domain.IngredientVectorName: ingVecs[i],
			},
			Payload: payloadFromRecord(item.rec),
		})
	}

	if err := p.index.UpsertResilient(ctx, points); err != nil {
		return fmt.Errorf("upsert batch ending at %d: %w", batch[len(batch)-1].ordinal, err)
	}

	last := batch[len(batch)-1].ordinal
	if err := p.checkpoint.Commit(last); err != nil {
		return fmt.Errorf("commit checkpoint %d: %w", last, err)
	}

	stats.Scanned += int64(len(batch))
	stats.Upserted += int64(len(points))
	if p.metrics != nil {
		p.metrics.RecordsScanned.Add(float64(len(batch)))
		p.metrics.PointsUpserted.Add(float64(len(points)))
		p.metrics.BatchesTotal.Inc()
		p.metrics.BatchDuration.Observe(time.Since(began).Seconds())
		p.metrics.CheckpointValue.Set(float64(last))
	}
	p.logger.Info("batch committed",
		zap.Int64("checkpoint", last),
		zap.Int("points", len(points)),
		zap.Duration("took", time.Since(began)),
	)
	return nil
}

// embedBoth runs the two content projections through the model
// concurrently. Embedding failures are never retried here; the model is
// either up or the run should stop.
func (p *Pipeline) embedBoth(ctx context.Context, texts, ingredients []string) ([][]float32, [][]float32, error) {
	var wg sync.WaitGroup
	var textVecs, ingVecs [][]float32
	var textErr, ingErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		textVecs, textErr = p.embedder.EmbedBatch(ctx, texts)
	}()
	go func() {
		defer wg.Done()
		ingVecs, ingErr = p.embedder.EmbedBatch(ctx, ingredients)
	}()
	wg.Wait()

	if textErr != nil {
		return nil, nil, textErr
	}
	if ingErr != nil {
		return nil, nil, ingErr
	}
	return textVecs, ingVecs, nil
}

func payloadFromRecord(rec Record) domain.PointPayload {
	return domain.PayloadFromRecipe(domain.Recipe{
		Slug:           rec.Slug,
		Title:          rec.Title,
		Cuisine:        rec.Cuisine,
		Course:         rec.Course,
		DietaryTags:    rec.DietaryTags,
		AllergenTags:   rec.AllergenTags,
		FlavourTags:    rec.FlavourTags,
		TechniqueTags:  rec.TechniqueTags,
		IngredientTags: rec.IngredientTags,
		Rating:         domain.Rating{Value: rec.Rating.Value, Count: rec.Rating.Count},
		SourceURL:      rec.SourceURL,
	})
}
