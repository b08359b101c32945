package domain

// Recipe is the canonical recipe document. The document store owns it;
// this core only reads it.
type Recipe struct {
	ID             string
	Slug           string
	Title          string
	Summary        string
	Description    string
	Cuisine        string
	Course         string
	DietaryTags    []string
	AllergenTags   []string
	IngredientTags []string
	FlavourTags    []string
	TechniqueTags  []string
	Ingredients    []Ingredient
	Steps          []string
	Rating         Rating
	SourceURL      string
}

// Ingredient is one entry of a recipe's ingredient list. Source data mixes
// structured entries and plain strings; plain strings land in Raw.
type Ingredient struct {
	Name string
	Raw  string
}

// Display returns the human-readable form, preferring the raw source string.
func (i Ingredient) Display() string {
	if i.Raw != "" {
		return i.Raw
	}
	return i.Name
}

// Rating is an aggregate recipe rating.
type Rating struct {
	Value float64
	Count int
}

// IngredientNames flattens the ingredient list to display strings, falling
// back to the ingredient tag bag when no structured entries are usable.
func (r Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if d := ing.Display(); d != "" {
			names = append(names, d)
		}
	}
	if len(names) == 0 {
		return r.IngredientTags
	}
	return names
}
