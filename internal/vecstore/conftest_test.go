package vecstore

import (
	"context"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// mockTransport implements Transport for tests.
type mockTransport struct {
	name               string
	collectionExistsFn func(ctx context.Context, name string) (bool, error)
	createCollectionFn func(ctx context.Context, spec CollectionSpec) error
	deleteCollectionFn func(ctx context.Context, name string) error
	upsertFn           func(ctx context.Context, collection string, points []Point) error
	searchFn           func(ctx context.Context, collection, vectorName string, vector []float32,
		pred filter.Predicate, limit int) ([]domain.VectorHit, error)
	closed bool
}

func (m *mockTransport) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func (m *mockTransport) CollectionExists(ctx context.Context, name string) (bool, error) {
	if m.collectionExistsFn != nil {
		return m.collectionExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockTransport) CreateCollection(ctx context.Context, spec CollectionSpec) error {
	if m.createCollectionFn != nil {
		return m.createCollectionFn(ctx, spec)
	}
	return nil
}

func (m *mockTransport) DeleteCollection(ctx context.Context, name string) error {
	if m.deleteCollectionFn != nil {
		return m.deleteCollectionFn(ctx, name)
	}
	return nil
}

func (m *mockTransport) Upsert(ctx context.Context, collection string, points []Point) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, points)
	}
	return nil
}

func (m *mockTransport) Search(
	ctx context.Context, collection, vectorName string, vector []float32,
	pred filter.Predicate, limit int,
) ([]domain.VectorHit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, collection, vectorName, vector, pred, limit)
	}
	return nil, nil
}

func (m *mockTransport) Close() error {
	m.closed = true
	return nil
}

func makePoints(n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{ID: int64(i + 1)}
	}
	return points
}
