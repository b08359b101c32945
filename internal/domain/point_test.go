package domain

import "testing"

func TestStablePointID_Deterministic(t *testing.T) {
	// sha256("spaghetti-carbonara")[:15] = "cb76a47bb39638a"
	const want = int64(916317905509507978)

	got := StablePointID("spaghetti-carbonara")
	if got != want {
		t.Errorf("StablePointID = %d, want %d", got, want)
	}
	if got != StablePointID("spaghetti-carbonara") {
		t.Error("StablePointID is not stable across calls")
	}
}

func TestStablePointID_DistinctSlugs(t *testing.T) {
	a := StablePointID("spaghetti-carbonara")
	b := StablePointID("miso-ramen")
	if a == b {
		t.Errorf("distinct slugs map to the same id %d", a)
	}
}

func TestStablePointID_NonNegative(t *testing.T) {
	// 15 hex digits are 60 bits, so the id can never go negative.
	for _, slug := range []string{"", "a", "tiramisu", "pad-thai-with-extra-lime"} {
		if id := StablePointID(slug); id < 0 {
			t.Errorf("StablePointID(%q) = %d, want non-negative", slug, id)
		}
	}
}

func TestPayloadFromRecipe(t *testing.T) {
	r := Recipe{
		Slug:           "miso-ramen",
		Title:          "Miso Ramen",
		Cuisine:        "japanese",
		Course:         "main",
		DietaryTags:    []string{"pescatarian"},
		AllergenTags:   []string{"soy", "gluten"},
		IngredientTags: []string{"miso", "noodles"},
		Rating:         Rating{Value: 4.6, Count: 210},
		SourceURL:      "https://example.com/miso-ramen",
	}

	p := PayloadFromRecipe(r)
	if p.Slug != r.Slug || p.Title != r.Title || p.Cuisine != r.Cuisine {
		t.Errorf("payload fields mismatch: %+v", p)
	}
	if p.RatingValue == nil || *p.RatingValue != 4.6 {
		t.Errorf("RatingValue = %v, want 4.6", p.RatingValue)
	}
}

func TestPayloadFromRecipe_NoRating(t *testing.T) {
	p := PayloadFromRecipe(Recipe{Slug: "unrated"})
	if p.RatingValue != nil {
		t.Errorf("RatingValue = %v, want nil for unrated recipe", *p.RatingValue)
	}
}
