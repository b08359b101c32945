package retrieval

import (
	"context"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// mockPrefStore implements PreferenceStore for tests.
type mockPrefStore struct {
	getFn func(ctx context.Context, userID int64) (domain.Preferences, error)
}

func (m *mockPrefStore) GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return domain.Preferences{}, nil
}

// mockDocStore implements DocumentStore for tests.
type mockDocStore struct {
	findByFilterFn func(ctx context.Context, pred filter.Predicate, limit int) ([]domain.Recipe, error)
	findBySlugsFn  func(ctx context.Context, slugs []string) (map[string]domain.Recipe, error)
}

func (m *mockDocStore) FindByFilter(ctx context.Context, pred filter.Predicate, limit int) ([]domain.Recipe, error) {
	if m.findByFilterFn != nil {
		return m.findByFilterFn(ctx, pred, limit)
	}
	return nil, nil
}

func (m *mockDocStore) FindBySlugs(ctx context.Context, slugs []string) (map[string]domain.Recipe, error) {
	if m.findBySlugsFn != nil {
		return m.findBySlugsFn(ctx, slugs)
	}
	return map[string]domain.Recipe{}, nil
}

// mockEmbedder implements domain.Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

// mockSearcher implements VectorSearcher for tests.
type mockSearcher struct {
	searchFn func(ctx context.Context, vectorName string, vector []float32,
		pred filter.Predicate, limit int) ([]domain.VectorHit, error)
	calls int
}

func (m *mockSearcher) Search(
	ctx context.Context, vectorName string, vector []float32,
	pred filter.Predicate, limit int,
) ([]domain.VectorHit, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, vectorName, vector, pred, limit)
	}
	return nil, nil
}

func hitFor(slug string, score float32) domain.VectorHit {
	return domain.VectorHit{
		ID:    domain.StablePointID(slug),
		Score: score,
		Payload: domain.PointPayload{
			Slug:  slug,
			Title: "Title of " + slug,
		},
	}
}
