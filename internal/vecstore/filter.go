package vecstore

import (
	qpb "github.com/qdrant/go-client/qdrant"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// compileFilter lowers the shared predicate to a Qdrant filter:
// ContainsAll becomes one must keyword-match per value, ExcludesAny one
// must_not any-match per clause, Equals a single must keyword-match.
// The universal predicate compiles to nil (no filter).
func compileFilter(pred filter.Predicate) *qpb.Filter {
	if pred.IsEmpty() {
		return nil
	}

	var must, mustNot []*qpb.Condition
	for _, c := range pred.Clauses() {
		switch c.Op() {
		case filter.OpEquals:
			must = append(must, keywordCondition(c.Key(), c.Values()[0]))
		case filter.OpContainsAll:
			for _, v := range c.Values() {
				must = append(must, keywordCondition(c.Key(), v))
			}
		case filter.OpExcludesAny:
			mustNot = append(mustNot, anyCondition(c.Key(), c.Values()))
		}
	}

	if len(must) == 0 && len(mustNot) == 0 {
		return nil
	}
	return &qpb.Filter{Must: must, MustNot: mustNot}
}

func keywordCondition(key, value string) *qpb.Condition {
	return &qpb.Condition{
		ConditionOneOf: &qpb.Condition_Field{
			Field: &qpb.FieldCondition{
				Key:   key,
				Match: &qpb.Match{MatchValue: &qpb.Match_Keyword{Keyword: value}},
			},
		},
	}
}

func anyCondition(key string, values []string) *qpb.Condition {
	return &qpb.Condition{
		ConditionOneOf: &qpb.Condition_Field{
			Field: &qpb.FieldCondition{
				Key: key,
				Match: &qpb.Match{
					MatchValue: &qpb.Match_Keywords{
						Keywords: &qpb.RepeatedStrings{Strings: values},
					},
				},
			},
		},
	}
}

// restFilter is the JSON form of the same predicate for the HTTP transport.
// Must stay semantically identical to compileFilter.
func restFilter(pred filter.Predicate) map[string]any {
	if pred.IsEmpty() {
		return nil
	}

	var must, mustNot []map[string]any
	for _, c := range pred.Clauses() {
		switch c.Op() {
		case filter.OpEquals:
			must = append(must, map[string]any{
				"key":   c.Key(),
				"match": map[string]any{"value": c.Values()[0]},
			})
		case filter.OpContainsAll:
			for _, v := range c.Values() {
				must = append(must, map[string]any{
					"key":   c.Key(),
					"match": map[string]any{"value": v},
				})
			}
		case filter.OpExcludesAny:
			mustNot = append(mustNot, map[string]any{
				"key":   c.Key(),
				"match": map[string]any{"any": c.Values()},
			})
		}
	}

	out := map[string]any{}
	if len(must) > 0 {
		out["must"] = must
	}
	if len(mustNot) > 0 {
		out["must_not"] = mustNot
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
