package domain

// Result provenance markers. Degraded results are reconstructed from the
// vector index payload when the document store has no copy of the slug.
const (
	SourcePrimary  = "primary-store"
	SourceDegraded = "degraded-fallback"
)

// RecipeResult is the uniform result shape of both retrieval modes.
// Score is nil in recommend mode.
type RecipeResult struct {
	ID             string   `json:"id"`
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	Description    string   `json:"description,omitempty"`
	Cuisine        string   `json:"cuisine,omitempty"`
	Course         string   `json:"course,omitempty"`
	DietaryTags    []string `json:"dietary_tags"`
	AllergenTags   []string `json:"allergen_tags"`
	IngredientTags []string `json:"ingredient_tags"`
	Ingredients    []string `json:"ingredients"`
	Rating         *float64 `json:"rating"`
	RatingCount    *int     `json:"rating_count"`
	Score          *float32 `json:"score"`
	Source         string   `json:"source"`
}

// ResultFromRecipe formats a canonical document into the result shape.
func ResultFromRecipe(r Recipe) RecipeResult {
	var rating *float64
	var count *int
	if r.Rating.Value != 0 || r.Rating.Count > 0 {
		v, c := r.Rating.Value, r.Rating.Count
		rating, count = &v, &c
	}
	return RecipeResult{
		ID:             r.ID,
		Slug:           r.Slug,
		Title:          r.Title,
		Summary:        r.Summary,
		Description:    r.Description,
		Cuisine:        r.Cuisine,
		Course:         r.Course,
		DietaryTags:    emptyIfNil(r.DietaryTags),
		AllergenTags:   emptyIfNil(r.AllergenTags),
		IngredientTags: emptyIfNil(r.IngredientTags),
		Ingredients:    emptyIfNil(r.IngredientNames()),
		Rating:         rating,
		RatingCount:    count,
		Source:         SourcePrimary,
	}
}

// ResultFromPayload reconstructs a degraded result from an index point's
// payload mirror. The mirror has no structured ingredients, so the tag bag
// stands in for them.
func ResultFromPayload(p PointPayload, score float32) RecipeResult {
	id := p.Slug
	if id == "" {
		id = p.Title
	}
	s := score
	return RecipeResult{
		ID:             id,
		Slug:           p.Slug,
		Title:          p.Title,
		Cuisine:        p.Cuisine,
		Course:         p.Course,
		DietaryTags:    emptyIfNil(p.DietaryTags),
		AllergenTags:   emptyIfNil(p.AllergenTags),
		IngredientTags: emptyIfNil(p.IngredientTags),
		Ingredients:    emptyIfNil(p.IngredientTags),
		Rating:         p.RatingValue,
		Score:          &s,
		Source:         SourceDegraded,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
