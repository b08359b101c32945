package docstore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestRecipeDoc_MixedIngredientShapes(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"slug":  "pancakes",
		"title": "Pancakes",
		"ingredients": bson.A{
			"2 cups flour",
			bson.M{"name": "egg", "raw": "1 large egg"},
			bson.M{"name": "milk"},
		},
		"rating": bson.M{"value": 4.5, "count": 31},
	})
	if err != nil {
		t.Fatal(err)
	}

	var doc recipeDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(doc.Ingredients) != 3 {
		t.Fatalf("ingredients = %d, want 3", len(doc.Ingredients))
	}
	if doc.Ingredients[0].Raw != "2 cups flour" || doc.Ingredients[0].Name != "" {
		t.Errorf("string ingredient = %+v", doc.Ingredients[0])
	}
	if doc.Ingredients[1].Name != "egg" || doc.Ingredients[1].Raw != "1 large egg" {
		t.Errorf("structured ingredient = %+v", doc.Ingredients[1])
	}

	recipe := doc.toDomain()
	names := recipe.IngredientNames()
	if len(names) != 3 || names[0] != "2 cups flour" || names[1] != "1 large egg" || names[2] != "milk" {
		t.Errorf("IngredientNames = %v", names)
	}
	if recipe.Rating.Value != 4.5 || recipe.Rating.Count != 31 {
		t.Errorf("rating = %+v", recipe.Rating)
	}
}
