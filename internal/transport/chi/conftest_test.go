package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/retrieval"
)

// mockPrefStore implements retrieval.PreferenceStore.
type mockPrefStore struct {
	getFn func(ctx context.Context, userID int64) (domain.Preferences, error)
}

func (m *mockPrefStore) GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return domain.Preferences{}, nil
}

// mockDocStore implements retrieval.DocumentStore.
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

// mockEmbedder implements domain.Embedder.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1}}, nil
}

// mockSearcher implements retrieval.VectorSearcher.
type mockSearcher struct {
	searchFn func(ctx context.Context, vectorName string, vector []float32,
		pred filter.Predicate, limit int) ([]domain.VectorHit, error)
}

func (m *mockSearcher) Search(
	ctx context.Context, vectorName string, vector []float32,
	pred filter.Predicate, limit int,
) ([]domain.VectorHit, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, vectorName, vector, pred, limit)
	}
	return nil, nil
}

type testDeps struct {
	prefs    *mockPrefStore
	docs     *mockDocStore
	embedder *mockEmbedder
	searcher *mockSearcher
}

func newTestServer(t *testing.T, deps testDeps) *httptest.Server {
	t.Helper()
	if deps.prefs == nil {
		deps.prefs = &mockPrefStore{}
	}
	if deps.docs == nil {
		deps.docs = &mockDocStore{}
	}
	if deps.embedder == nil {
		deps.embedder = &mockEmbedder{}
	}
	if deps.searcher == nil {
		deps.searcher = &mockSearcher{}
	}

	service := retrieval.NewService(
		deps.prefs, deps.docs, deps.embedder, deps.searcher, 5, zap.NewNop())
	server := NewServer(service, Limits{
		DefaultLimit:   12,
		MaxLimit:       50,
		RequestTimeout: time.Second,
	})

	r := chirouter.NewRouter()
	server.Routes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
