package docstore

import (
	"reflect"
	"slices"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

func TestCompileFilter(t *testing.T) {
	pred := filter.FromPreferences(domain.Preferences{
		DietType:  []string{"vegan", "gluten-free"},
		Allergies: []string{"peanut"},
		Dislikes:  []string{"cilantro", "okra"},
	}).WithCuisine("mexican")

	got := compileFilter(pred)
	want := bson.M{
		"dietary_tags":    bson.M{"$all": []string{"vegan", "gluten-free"}},
		"allergen_tags":   bson.M{"$nin": []string{"peanut"}},
		"ingredient_tags": bson.M{"$nin": []string{"cilantro", "okra"}},
		"cuisine":         "mexican",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("compileFilter = %v, want %v", got, want)
	}
}

func TestCompileFilter_Empty(t *testing.T) {
	got := compileFilter(filter.Predicate{})
	if len(got) != 0 {
		t.Errorf("universal predicate compiled to %v, want empty query", got)
	}
}

// Shared fixture set, mirrored in the vector-index compiler tests: both
// compiled forms must accept and reject exactly these recipes.
func fixtureRecipes() []domain.Recipe {
	return []domain.Recipe{
		{Slug: "green-curry", Cuisine: "thai",
			DietaryTags:    []string{"vegan", "gluten-free"},
			IngredientTags: []string{"tofu", "coconut-milk"}},
		{Slug: "peanut-stew", Cuisine: "thai",
			DietaryTags:    []string{"vegan", "gluten-free"},
			AllergenTags:   []string{"peanut"},
			IngredientTags: []string{"peanut", "yam"}},
		{Slug: "carbonara", Cuisine: "thai",
			DietaryTags:    []string{"high-protein"},
			AllergenTags:   []string{"egg"},
			IngredientTags: []string{"egg", "pancetta"}},
		{Slug: "cilantro-laksa", Cuisine: "thai",
			DietaryTags:    []string{"vegan", "gluten-free"},
			IngredientTags: []string{"cilantro", "noodles"}},
		{Slug: "vegan-tacos", Cuisine: "mexican",
			DietaryTags:    []string{"vegan", "gluten-free"},
			IngredientTags: []string{"beans"}},
	}
}

func fixtureVerdicts() map[string]bool {
	return map[string]bool{
		"green-curry":    true,
		"peanut-stew":    false, // allergen overlap
		"carbonara":      false, // missing diet tags
		"cilantro-laksa": false, // disliked ingredient
		"vegan-tacos":    false, // wrong cuisine
	}
}

func fixturePredicate() filter.Predicate {
	return filter.FromPreferences(domain.Preferences{
		DietType:  []string{"vegan", "gluten-free"},
		Allergies: []string{"peanut"},
		Dislikes:  []string{"cilantro", "okra"},
	}).WithCuisine("thai")
}

func recipeField(r domain.Recipe, key string) []string {
	switch key {
	case filter.KeyDietaryTags:
		return r.DietaryTags
	case filter.KeyAllergenTags:
		return r.AllergenTags
	case filter.KeyIngredientTags:
		return r.IngredientTags
	case filter.KeyCuisine:
		return []string{r.Cuisine}
	}
	return nil
}

// queryAccepts evaluates the compiled query the way the document store
// would: $all needs every value present, $nin none, a bare value equality.
func queryAccepts(t *testing.T, query bson.M, r domain.Recipe) bool {
	t.Helper()
	for key, cond := range query {
		vals := recipeField(r, key)
		switch c := cond.(type) {
		case string:
			if len(vals) != 1 || vals[0] != c {
				return false
			}
		case bson.M:
			for _, want := range asStrings(t, c["$all"]) {
				if !slices.Contains(vals, want) {
					return false
				}
			}
			for _, bad := range asStrings(t, c["$nin"]) {
				if slices.Contains(vals, bad) {
					return false
				}
			}
		default:
			t.Fatalf("unexpected query condition %T for %q", cond, key)
		}
	}
	return true
}

func asStrings(t *testing.T, v any) []string {
	t.Helper()
	if v == nil {
		return nil
	}
	strs, ok := v.([]string)
	if !ok {
		t.Fatalf("condition values = %T, want []string", v)
	}
	return strs
}

func TestCompiledQueryMatchesFixtures(t *testing.T) {
	query := compileFilter(fixturePredicate())
	for _, recipe := range fixtureRecipes() {
		if got, want := queryAccepts(t, query, recipe), fixtureVerdicts()[recipe.Slug]; got != want {
			t.Errorf("query accepts %q = %v, want %v", recipe.Slug, got, want)
		}
	}
}
