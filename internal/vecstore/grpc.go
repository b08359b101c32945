package vecstore

import (
	"context"
	"fmt"

	qpb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// grpcTransport speaks the Qdrant gRPC API. Preferred transport: lower
// latency than REST for batch upserts.
type grpcTransport struct {
	conn        *grpc.ClientConn
	collections qpb.CollectionsClient
	points      qpb.PointsClient
	apiKey      string
}

// NewGRPCTransport dials the Qdrant gRPC endpoint (plaintext; TLS is
// terminated in front of Qdrant in every deployment this serves).
func NewGRPCTransport(addr, apiKey string) (Transport, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant grpc %s: %w", addr, err)
	}
	return &grpcTransport{
		conn:        conn,
		collections: qpb.NewCollectionsClient(conn),
		points:      qpb.NewPointsClient(conn),
		apiKey:      apiKey,
	}, nil
}

func (t *grpcTransport) Name() string { return "grpc" }

func (t *grpcTransport) withAuth(ctx context.Context) context.Context {
	if t.apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", t.apiKey)
}

func (t *grpcTransport) CollectionExists(ctx context.Context, name string) (bool, error) {
	resp, err := t.collections.CollectionExists(t.withAuth(ctx),
		&qpb.CollectionExistsRequest{CollectionName: name})
	if err != nil {
		if s, ok := status.FromError(err); ok && s.Code() == codes.Unimplemented {
			return false, ErrExistsCheckUnsupported
		}
		return false, fmt.Errorf("collection exists %q: %w", name, err)
	}
	return resp.GetResult().GetExists(), nil
}

func (t *grpcTransport) CreateCollection(ctx context.Context, spec CollectionSpec) error {
	params := make(map[string]*qpb.VectorParams, len(spec.VectorNames))
	for _, vn := range spec.VectorNames {
		params[vn] = &qpb.VectorParams{
			Size:     uint64(spec.Dimension),
			Distance: qpb.Distance_Cosine,
		}
	}

	segments := uint64(spec.SegmentCount)
	_, err := t.collections.Create(t.withAuth(ctx), &qpb.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig: &qpb.VectorsConfig{
			Config: &qpb.VectorsConfig_ParamsMap{
				ParamsMap: &qpb.VectorParamsMap{Map: params},
			},
		},
		OptimizersConfig: &qpb.OptimizersConfigDiff{
			DefaultSegmentNumber: &segments,
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", spec.Name, err)
	}
	return nil
}

func (t *grpcTransport) DeleteCollection(ctx context.Context, name string) error {
	_, err := t.collections.Delete(t.withAuth(ctx), &qpb.DeleteCollection{CollectionName: name})
	if err != nil {
		if s, ok := status.FromError(err); ok && s.Code() == codes.NotFound {
			return nil
		}
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	return nil
}

func (t *grpcTransport) Upsert(ctx context.Context, collection string, points []Point) error {
	pts := make([]*qpb.PointStruct, len(points))
	for i, p := range points {
		named := make(map[string]*qpb.Vector, len(p.Vectors))
		for name, vec := range p.Vectors {
			named[name] = &qpb.Vector{
				Vector: &qpb.Vector_Dense{Dense: &qpb.DenseVector{Data: vec}},
			}
		}
		pts[i] = &qpb.PointStruct{
			Id: &qpb.PointId{PointIdOptions: &qpb.PointId_Num{Num: uint64(p.ID)}},
			Vectors: &qpb.Vectors{
				VectorsOptions: &qpb.Vectors_Vectors{
					Vectors: &qpb.NamedVectors{Vectors: named},
				},
			},
			Payload: payloadToQdrant(p.Payload),
		}
	}

	wait := true
	_, err := t.points.Upsert(t.withAuth(ctx), &qpb.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         pts,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

func (t *grpcTransport) Search(
	ctx context.Context, collection, vectorName string, vector []float32,
	pred filter.Predicate, limit int,
) ([]domain.VectorHit, error) {
	resp, err := t.points.Search(t.withAuth(ctx), &qpb.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		VectorName:     &vectorName,
		Limit:          uint64(limit),
		Filter:         compileFilter(pred),
		WithPayload: &qpb.WithPayloadSelector{
			SelectorOptions: &qpb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", collection, err)
	}

	hits := make([]domain.VectorHit, len(resp.GetResult()))
	for i, sp := range resp.GetResult() {
		hits[i] = domain.VectorHit{
			ID:      int64(sp.GetId().GetNum()),
			Score:   sp.GetScore(),
			Payload: payloadFromQdrant(sp.GetPayload()),
		}
	}
	return hits, nil
}

func (t *grpcTransport) Close() error {
	if err := t.conn.Close(); err != nil {
		return fmt.Errorf("close grpc conn: %w", err)
	}
	return nil
}

// payloadToQdrant converts the payload mirror into Qdrant values. Absent
// rating becomes an explicit null so the REST and gRPC payloads agree.
func payloadToQdrant(p domain.PointPayload) map[string]*qpb.Value {
	out := map[string]*qpb.Value{
		"title":           stringValue(p.Title),
		"slug":            stringValue(p.Slug),
		"dietary_tags":    listValue(p.DietaryTags),
		"allergen_tags":   listValue(p.AllergenTags),
		"flavour_tags":    listValue(p.FlavourTags),
		"technique_tags":  listValue(p.TechniqueTags),
		"ingredient_tags": listValue(p.IngredientTags),
		"cuisine":         stringValue(p.Cuisine),
		"course":          stringValue(p.Course),
		"source_url":      stringValue(p.SourceURL),
	}
	if p.RatingValue != nil {
		out["rating_value"] = &qpb.Value{Kind: &qpb.Value_DoubleValue{DoubleValue: *p.RatingValue}}
	} else {
		out["rating_value"] = &qpb.Value{Kind: &qpb.Value_NullValue{}}
	}
	return out
}

func payloadFromQdrant(values map[string]*qpb.Value) domain.PointPayload {
	p := domain.PointPayload{
		Title:          values["title"].GetStringValue(),
		Slug:           values["slug"].GetStringValue(),
		DietaryTags:    stringList(values["dietary_tags"]),
		AllergenTags:   stringList(values["allergen_tags"]),
		FlavourTags:    stringList(values["flavour_tags"]),
		TechniqueTags:  stringList(values["technique_tags"]),
		IngredientTags: stringList(values["ingredient_tags"]),
		Cuisine:        values["cuisine"].GetStringValue(),
		Course:         values["course"].GetStringValue(),
		SourceURL:      values["source_url"].GetStringValue(),
	}
	if v, ok := values["rating_value"]; ok {
		if _, isNull := v.GetKind().(*qpb.Value_NullValue); !isNull && v.GetKind() != nil {
			r := v.GetDoubleValue()
			p.RatingValue = &r
		}
	}
	return p
}

func stringValue(s string) *qpb.Value {
	return &qpb.Value{Kind: &qpb.Value_StringValue{StringValue: s}}
}

func listValue(items []string) *qpb.Value {
	vals := make([]*qpb.Value, len(items))
	for i, s := range items {
		vals[i] = stringValue(s)
	}
	return &qpb.Value{Kind: &qpb.Value_ListValue{ListValue: &qpb.ListValue{Values: vals}}}
}

func stringList(v *qpb.Value) []string {
	lv := v.GetListValue()
	if lv == nil {
		return nil
	}
	out := make([]string, 0, len(lv.GetValues()))
	for _, item := range lv.GetValues() {
		out = append(out, item.GetStringValue())
	}
	return out
}
