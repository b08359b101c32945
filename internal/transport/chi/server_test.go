package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
	logpkg "github.com/LorenaRaichle/AdvDB-FlavorNet/internal/logger"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/retrieval"
)

func decodeList(t *testing.T, resp *http.Response) []domain.RecipeResult {
	t.Helper()
	var body struct {
		Data []domain.RecipeResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Data
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return body
}

func TestRecommended(t *testing.T) {
	var gotLimit int
	ts := newTestServer(t, testDeps{
		docs: &mockDocStore{findByFilterFn: func(ctx context.Context, pred filter.Predicate, limit int) ([]domain.Recipe, error) {
			gotLimit = limit
			return []domain.Recipe{{Slug: "pho", Title: "Pho"}}, nil
		}},
	})

	resp := get(t, ts, "/recipes/recommended?user_id=42&limit=3")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if gotLimit != 3 {
		t.Errorf("limit = %d, want 3", gotLimit)
	}

	data := decodeList(t, resp)
	if len(data) != 1 || data[0].Slug != "pho" {
		t.Errorf("data = %+v", data)
	}
}

func TestRecommended_LimitClamping(t *testing.T) {
	var gotLimit int
	ts := newTestServer(t, testDeps{
		docs: &mockDocStore{findByFilterFn: func(ctx context.Context, pred filter.Predicate, limit int) ([]domain.Recipe, error) {
			gotLimit = limit
			return nil, nil
		}},
	})

	get(t, ts, "/recipes/recommended?user_id=42")
	if gotLimit != 12 {
		t.Errorf("default limit = %d, want 12", gotLimit)
	}

	get(t, ts, "/recipes/recommended?user_id=42&limit=500")
	if gotLimit != 50 {
		t.Errorf("clamped limit = %d, want 50", gotLimit)
	}

	get(t, ts, "/recipes/recommended?user_id=42&limit=-3")
	if gotLimit != 1 {
		t.Errorf("floored limit = %d, want 1", gotLimit)
	}
}

func TestRecommended_MissingUserID(t *testing.T) {
	ts := newTestServer(t, testDeps{})

	resp := get(t, ts, "/recipes/recommended")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Code != "missing_user_id" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestRecommended_UnknownUser(t *testing.T) {
	ts := newTestServer(t, testDeps{
		prefs: &mockPrefStore{getFn: func(ctx context.Context, userID int64) (domain.Preferences, error) {
			return domain.Preferences{}, domain.ErrPreferencesNotFound
		}},
	})

	resp := get(t, ts, "/recipes/recommended?user_id=999")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Code != "preferences_not_found" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t, testDeps{
		searcher: &mockSearcher{searchFn: func(ctx context.Context, vectorName string, vector []float32,
			pred filter.Predicate, limit int) ([]domain.VectorHit, error) {
			return []domain.VectorHit{{
				ID:      1,
				Score:   0.9,
				Payload: domain.PointPayload{Slug: "pho", Title: "Pho"},
			}}, nil
		}},
		docs: &mockDocStore{findBySlugsFn: func(ctx context.Context, slugs []string) (map[string]domain.Recipe, error) {
			return map[string]domain.Recipe{"pho": {Slug: "pho", Title: "Pho"}}, nil
		}},
	})

	resp := get(t, ts, "/recipes/search?user_id=42&query=noodle+soup")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	data := decodeList(t, resp)
	if len(data) != 1 || data[0].Slug != "pho" {
		t.Fatalf("data = %+v", data)
	}
	if data[0].Score == nil || *data[0].Score != 0.9 {
		t.Errorf("score = %v, want 0.9", data[0].Score)
	}
	if data[0].Source != domain.SourcePrimary {
		t.Errorf("source = %q", data[0].Source)
	}
}

func TestSearch_ShortQuery(t *testing.T) {
	ts := newTestServer(t, testDeps{
		embedder: &mockEmbedder{embedFn: func(ctx context.Context, text string) (domain.EmbeddingResult, error) {
			t.Error("embedder must not run for a rejected query")
			return domain.EmbeddingResult{}, nil
		}},
	})

	for _, q := range []string{"", "x", "%20%20"} {
		resp := get(t, ts, "/recipes/search?user_id=42&query="+q)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestSearch_VectorUpstreamFailure(t *testing.T) {
	ts := newTestServer(t, testDeps{
		searcher: &mockSearcher{searchFn: func(ctx context.Context, vectorName string, vector []float32,
			pred filter.Predicate, limit int) ([]domain.VectorHit, error) {
			return nil, domain.ErrVectorSearchUpstream
		}},
	})

	resp := get(t, ts, "/recipes/search?user_id=42&query=soup")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Code != "vector_search_failed" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestSearch_EmbeddingFailure(t *testing.T) {
	ts := newTestServer(t, testDeps{
		embedder: &mockEmbedder{embedFn: func(ctx context.Context, text string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{}, domain.ErrEmbeddingUpstream
		}},
	})

	resp := get(t, ts, "/recipes/search?user_id=42&query=soup")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Code != "embedding_failed" {
		t.Errorf("code = %q", body.Code)
	}
}

// Error logging goes through the logger the middleware attaches to the
// request context, so log lines inherit the request id.
func TestHandlersLogThroughRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	reqLogger := zap.New(core)

	prefs := &mockPrefStore{getFn: func(ctx context.Context, userID int64) (domain.Preferences, error) {
		return domain.Preferences{}, domain.ErrPreferencesNotFound
	}}
	service := retrieval.NewService(
		prefs, &mockDocStore{}, &mockEmbedder{}, &mockSearcher{}, 5, zap.NewNop())
	server := NewServer(service, Limits{RequestTimeout: time.Second})

	r := chirouter.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logpkg.ContextWithLogger(req.Context(), reqLogger)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	server.Routes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	resp := get(t, ts, "/recipes/recommended?user_id=999")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if logs.FilterMessage("domain error").Len() != 1 {
		t.Errorf("request logger entries = %v, want one domain error line", logs.All())
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testDeps{})

	resp := get(t, ts, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
