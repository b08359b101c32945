package docstore

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// compileFilter lowers the shared predicate to a document-store query:
// ContainsAll becomes $all, ExcludesAny becomes $nin, Equals a plain
// equality match. The universal predicate compiles to an empty query.
// Must stay semantically equivalent to the vector index compilation.
func compileFilter(pred filter.Predicate) bson.M {
	query := bson.M{}
	for _, c := range pred.Clauses() {
		switch c.Op() {
		case filter.OpEquals:
			query[c.Key()] = c.Values()[0]
		case filter.OpContainsAll:
			query[c.Key()] = bson.M{"$all": c.Values()}
		case filter.OpExcludesAny:
			query[c.Key()] = bson.M{"$nin": c.Values()}
		}
	}
	return query
}
