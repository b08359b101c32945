package docstore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
)

// recipeDoc is the BSON shape of a recipe document.
type recipeDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Slug           string             `bson:"slug"`
	Title          string             `bson:"title"`
	Summary        string             `bson:"summary"`
	Description    string             `bson:"description"`
	Cuisine        string             `bson:"cuisine"`
	Course         string             `bson:"course"`
	DietaryTags    []string           `bson:"dietary_tags"`
	AllergenTags   []string           `bson:"allergen_tags"`
	IngredientTags []string           `bson:"ingredient_tags"`
	FlavourTags    []string           `bson:"flavour_tags"`
	TechniqueTags  []string           `bson:"technique_tags"`
	Ingredients    []ingredientDoc    `bson:"ingredients"`
	Steps          []string           `bson:"steps"`
	Rating         ratingDoc          `bson:"rating"`
	SourceURL      string             `bson:"source_url"`
}

type ratingDoc struct {
	Value float64 `bson:"value"`
	Count int     `bson:"count"`
}

// ingredientDoc decodes either a structured {name, raw} document or a bare
// string (legacy records store plain strings).
type ingredientDoc struct {
	Name string `bson:"name"`
	Raw  string `bson:"raw"`
}

// UnmarshalBSONValue accepts both representations.
func (i *ingredientDoc) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.String:
		var str string
		if err := bson.UnmarshalValue(t, data, &str); err != nil {
			return fmt.Errorf("decode ingredient string: %w", err)
		}
		i.Raw = str
		return nil
	case bsontype.EmbeddedDocument:
		var doc struct {
			Name string `bson:"name"`
			Raw  string `bson:"raw"`
		}
		if err := bson.UnmarshalValue(t, data, &doc); err != nil {
			return fmt.Errorf("decode ingredient document: %w", err)
		}
		i.Name = doc.Name
		i.Raw = doc.Raw
		return nil
	case bsontype.Null:
		return nil
	default:
		return fmt.Errorf("unexpected ingredient BSON type %s", t)
	}
}

func (d recipeDoc) toDomain() domain.Recipe {
	ingredients := make([]domain.Ingredient, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		ingredients = append(ingredients, domain.Ingredient{Name: ing.Name, Raw: ing.Raw})
	}

	var id string
	if !d.ID.IsZero() {
		id = d.ID.Hex()
	}

	return domain.Recipe{
		ID:             id,
		Slug:           d.Slug,
		Title:          d.Title,
		Summary:        d.Summary,
		Description:    d.Description,
		Cuisine:        d.Cuisine,
		Course:         d.Course,
		DietaryTags:    d.DietaryTags,
		AllergenTags:   d.AllergenTags,
		IngredientTags: d.IngredientTags,
		FlavourTags:    d.FlavourTags,
		TechniqueTags:  d.TechniqueTags,
		Ingredients:    ingredients,
		Steps:          d.Steps,
		Rating:         domain.Rating{Value: d.Rating.Value, Count: d.Rating.Count},
		SourceURL:      d.SourceURL,
	}
}
