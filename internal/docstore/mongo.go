// Package docstore reads canonical recipe documents from MongoDB. This
// core never writes recipes; an external process owns them.
package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

const recipesCollection = "recipes"

// recipeProjection limits reads to the fields the result shape needs.
var recipeProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "slug", Value: 1},
	{Key: "title", Value: 1},
	{Key: "summary", Value: 1},
	{Key: "description", Value: 1},
	{Key: "cuisine", Value: 1},
	{Key: "course", Value: 1},
	{Key: "dietary_tags", Value: 1},
	{Key: "allergen_tags", Value: 1},
	{Key: "ingredient_tags", Value: 1},
	{Key: "ingredients", Value: 1},
	{Key: "rating", Value: 1},
}

// Store is the MongoDB document store client. Safe for concurrent use.
type Store struct {
	recipes *mongo.Collection
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{recipes: client.Database(database).Collection(recipesCollection)}, nil
}

// New wraps an existing database handle (used by tests and the composition root).
func New(db *mongo.Database) *Store {
	return &Store{recipes: db.Collection(recipesCollection)}
}

// FindByFilter returns up to limit recipes matching the predicate, ordered
// by rating value descending with title ascending as tie-break.
func (s *Store) FindByFilter(ctx context.Context, pred filter.Predicate, limit int) ([]domain.Recipe, error) {
	opts := options.Find().
		SetProjection(recipeProjection).
		SetSort(bson.D{
			{Key: "rating.value", Value: -1},
			{Key: "title", Value: 1},
		}).
		SetLimit(int64(limit))

	cursor, err := s.recipes.Find(ctx, compileFilter(pred), opts)
	if err != nil {
		return nil, fmt.Errorf("find recipes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []recipeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}

	out := make([]domain.Recipe, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// FindBySlugs returns the recipes for the given slugs, keyed by slug.
// Slugs with no document are simply absent from the map.
func (s *Store) FindBySlugs(ctx context.Context, slugs []string) (map[string]domain.Recipe, error) {
	nonEmpty := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug != "" {
			nonEmpty = append(nonEmpty, slug)
		}
	}
	if len(nonEmpty) == 0 {
		return map[string]domain.Recipe{}, nil
	}

	opts := options.Find().SetProjection(recipeProjection)
	cursor, err := s.recipes.Find(ctx, bson.M{"slug": bson.M{"$in": nonEmpty}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find recipes by slugs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []recipeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}

	out := make(map[string]domain.Recipe, len(docs))
	for _, d := range docs {
		if d.Slug != "" {
			out[d.Slug] = d.toDomain()
		}
	}
	return out, nil
}
