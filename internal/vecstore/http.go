package vecstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// httpTransport speaks the Qdrant REST API. Fallback transport for
// environments where the gRPC port is unreachable.
type httpTransport struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPTransport creates the REST fallback transport.
func NewHTTPTransport(baseURL, apiKey string) Transport {
	return &httpTransport{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (t *httpTransport) Name() string { return "http" }

func (t *httpTransport) CollectionExists(ctx context.Context, name string) (bool, error) {
	code, _, err := t.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return false, err
	}
	switch code {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("collection exists %q: unexpected status %d", name, code)
	}
}

func (t *httpTransport) CreateCollection(ctx context.Context, spec CollectionSpec) error {
	vectors := make(map[string]any, len(spec.VectorNames))
	for _, vn := range spec.VectorNames {
		vectors[vn] = map[string]any{"size": spec.Dimension, "distance": "Cosine"}
	}
	body := map[string]any{
		"vectors": vectors,
		"optimizers_config": map[string]any{
			"default_segment_number": spec.SegmentCount,
		},
	}

	code, resp, err := t.do(ctx, http.MethodPut, "/collections/"+spec.Name, body)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("create collection %q: status %d: %s", spec.Name, code, resp)
	}
	return nil
}

func (t *httpTransport) DeleteCollection(ctx context.Context, name string) error {
	code, resp, err := t.do(ctx, http.MethodDelete, "/collections/"+name, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK && code != http.StatusNotFound {
		return fmt.Errorf("delete collection %q: status %d: %s", name, code, resp)
	}
	return nil
}

type restPoint struct {
	ID      int64                `json:"id"`
	Vector  map[string][]float32 `json:"vector"`
	Payload domain.PointPayload  `json:"payload"`
}

func (t *httpTransport) Upsert(ctx context.Context, collection string, points []Point) error {
	pts := make([]restPoint, len(points))
	for i, p := range points {
		pts[i] = restPoint{ID: p.ID, Vector: p.Vectors, Payload: p.Payload}
	}
	body := map[string]any{"points": pts}

	code, resp, err := t.do(ctx, http.MethodPut,
		"/collections/"+collection+"/points?wait=true", body)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("upsert %d points: status %d: %s", len(points), code, resp)
	}
	return nil
}

type restSearchResponse struct {
	Result []struct {
		ID      int64               `json:"id"`
		Score   float32             `json:"score"`
		Payload domain.PointPayload `json:"payload"`
	} `json:"result"`
}

func (t *httpTransport) Search(
	ctx context.Context, collection, vectorName string, vector []float32,
	pred filter.Predicate, limit int,
) ([]domain.VectorHit, error) {
	body := map[string]any{
		"vector":       map[string]any{"name": vectorName, "vector": vector},
		"limit":        limit,
		"with_payload": true,
	}
	if f := restFilter(pred); f != nil {
		body["filter"] = f
	}

	code, resp, err := t.do(ctx, http.MethodPost,
		"/collections/"+collection+"/points/search", body)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("search %q: status %d: %s", collection, code, resp)
	}

	var parsed restSearchResponse
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]domain.VectorHit, len(parsed.Result))
	for i, r := range parsed.Result {
		hits[i] = domain.VectorHit{ID: r.ID, Score: r.Score, Payload: r.Payload}
	}
	return hits, nil
}

func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// do executes one REST call and returns status code and body. Transport
// errors come back unwrapped enough for connectivity classification.
func (t *httpTransport) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("api-key", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
