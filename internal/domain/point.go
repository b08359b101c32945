package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Vector field names of the recipe collection.
const (
	TextVectorName       = "v_text"
	IngredientVectorName = "v_ingredients"
)

// StablePointID derives a deterministic non-negative point id from a slug:
// the first 15 hex digits of sha256(slug), parsed as base-16. 60 bits, so it
// always fits a signed 64-bit id, and re-ingesting a slug overwrites its
// point.
func StablePointID(slug string) int64 {
	h := sha256.Sum256([]byte(slug))
	prefix := hex.EncodeToString(h[:])[:15]
	id, err := strconv.ParseInt(prefix, 16, 64)
	if err != nil {
		// 15 hex digits always parse; unreachable.
		panic("stable point id: " + err.Error())
	}
	return id
}

// PointPayload is the subset of recipe fields mirrored into the vector
// index, enough to reconstruct a degraded result when the document store
// has no copy of the slug.
type PointPayload struct {
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	DietaryTags    []string `json:"dietary_tags"`
	AllergenTags   []string `json:"allergen_tags"`
	FlavourTags    []string `json:"flavour_tags"`
	TechniqueTags  []string `json:"technique_tags"`
	IngredientTags []string `json:"ingredient_tags"`
	Cuisine        string   `json:"cuisine"`
	Course         string   `json:"course"`
	RatingValue    *float64 `json:"rating_value"`
	SourceURL      string   `json:"source_url"`
}

// PayloadFromRecipe builds the payload mirror for a recipe's index point.
func PayloadFromRecipe(r Recipe) PointPayload {
	var rating *float64
	if r.Rating.Value != 0 || r.Rating.Count > 0 {
		v := r.Rating.Value
		rating = &v
	}
	return PointPayload{
		Title:          r.Title,
		Slug:           r.Slug,
		DietaryTags:    r.DietaryTags,
		AllergenTags:   r.AllergenTags,
		FlavourTags:    r.FlavourTags,
		TechniqueTags:  r.TechniqueTags,
		IngredientTags: r.IngredientTags,
		Cuisine:        r.Cuisine,
		Course:         r.Course,
		RatingValue:    rating,
		SourceURL:      r.SourceURL,
	}
}

// VectorHit is one similarity search result: point id, cosine score, and the
// stored payload mirror. Hits arrive ordered by descending score.
type VectorHit struct {
	ID      int64
	Score   float32
	Payload PointPayload
}
