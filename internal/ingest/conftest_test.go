package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/vecstore"
)

// mockSource replays an in-memory record list.
type mockSource struct {
	records []Record
}

func (m *mockSource) Scan(ctx context.Context, fn func(ordinal int64, rec Record) error) error {
	for i, rec := range m.records {
		if err := fn(int64(i+1), rec); err != nil {
			return err
		}
	}
	return nil
}

// mockEmbedder returns fixed-width vectors, one per input.
type mockEmbedder struct {
	dim     int
	batchFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchFn != nil {
		return m.batchFn(ctx, texts)
	}
	dim := m.dim
	if dim == 0 {
		dim = 4
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, dim)
		vec[0] = float32(i + 1)
		out[i] = vec
	}
	return out, nil
}

// mockIndex records lifecycle and upsert calls.
type mockIndex struct {
	ensureFn  func(ctx context.Context, dim, segmentCount int, recreate bool) error
	upsertFn  func(ctx context.Context, points []vecstore.Point) error
	recreate  *bool
	dimension int
	upserted  [][]vecstore.Point
}

func (m *mockIndex) EnsureCollection(ctx context.Context, dim, segmentCount int, recreate bool) error {
	m.dimension = dim
	m.recreate = &recreate
	if m.ensureFn != nil {
		return m.ensureFn(ctx, dim, segmentCount, recreate)
	}
	return nil
}

func (m *mockIndex) UpsertResilient(ctx context.Context, points []vecstore.Point) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, points)
	}
	m.upserted = append(m.upserted, points)
	return nil
}

func (m *mockIndex) totalPoints() int {
	n := 0
	for _, batch := range m.upserted {
		n += len(batch)
	}
	return n
}

func testRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			Slug:           fmt.Sprintf("recipe-%d", i+1),
			Title:          fmt.Sprintf("Recipe %d", i+1),
			Steps:          []string{"cook"},
			IngredientTags: []string{"salt"},
		}
	}
	return records
}

func newTestPipeline(t *testing.T, records []Record, index *mockIndex, batchSize int) (*Pipeline, *Checkpoint) {
	t.Helper()
	cp, err := OpenCheckpoint(filepath.Join(t.TempDir(), "cp"))
	if err != nil {
		t.Fatal(err)
	}
	p := New(
		&mockSource{records: records},
		&mockEmbedder{},
		index,
		cp,
		Config{BatchSize: batchSize, SegmentCount: 2},
		nil,
		zap.NewNop(),
	)
	return p, cp
}
