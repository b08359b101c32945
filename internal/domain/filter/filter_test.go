package filter

import (
	"reflect"
	"testing"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
)

func TestNewClause_Validation(t *testing.T) {
	if _, err := NewClause("", OpEquals, "x"); err == nil {
		t.Error("empty key should be rejected")
	}
	if _, err := NewClause("cuisine", OpEquals); err == nil {
		t.Error("no values should be rejected")
	}
	if _, err := NewClause("cuisine", OpEquals, "a", "b"); err == nil {
		t.Error("equals with two values should be rejected")
	}
	if _, err := NewClause("dietary_tags", OpContainsAll, "vegan", "gluten-free"); err != nil {
		t.Errorf("valid clause rejected: %v", err)
	}
}

func TestFromPreferences(t *testing.T) {
	pred := FromPreferences(domain.Preferences{
		DietType:  []string{"vegan"},
		Allergies: []string{"peanut", "soy"},
		Dislikes:  []string{"cilantro"},
	})

	clauses := pred.Clauses()
	if len(clauses) != 3 {
		t.Fatalf("clauses = %d, want 3", len(clauses))
	}

	diet := clauses[0]
	if diet.Key() != KeyDietaryTags || diet.Op() != OpContainsAll {
		t.Errorf("diet clause = %s/%d", diet.Key(), diet.Op())
	}

	allergy := clauses[1]
	if allergy.Key() != KeyAllergenTags || allergy.Op() != OpExcludesAny {
		t.Errorf("allergy clause = %s/%d", allergy.Key(), allergy.Op())
	}
	if !reflect.DeepEqual(allergy.Values(), []string{"peanut", "soy"}) {
		t.Errorf("allergy values = %v", allergy.Values())
	}

	dislike := clauses[2]
	if dislike.Key() != KeyIngredientTags || dislike.Op() != OpExcludesAny {
		t.Errorf("dislike clause = %s/%d", dislike.Key(), dislike.Op())
	}
}

func TestFromPreferences_Empty(t *testing.T) {
	pred := FromPreferences(domain.Preferences{})
	if !pred.IsEmpty() {
		t.Errorf("empty preferences should yield the universal predicate, got %d clauses", len(pred.Clauses()))
	}
}

func TestPredicate_WithCuisine(t *testing.T) {
	base := FromPreferences(domain.Preferences{DietType: []string{"vegan"}})

	narrowed := base.WithCuisine("italian")
	clauses := narrowed.Clauses()
	if len(clauses) != 2 {
		t.Fatalf("clauses = %d, want 2", len(clauses))
	}
	last := clauses[len(clauses)-1]
	if last.Key() != KeyCuisine || last.Op() != OpEquals || last.Values()[0] != "italian" {
		t.Errorf("cuisine clause = %s/%d/%v", last.Key(), last.Op(), last.Values())
	}

	// Blank cuisine must not add a clause.
	if got := base.WithCuisine(""); len(got.Clauses()) != 1 {
		t.Errorf("blank cuisine added a clause: %d", len(got.Clauses()))
	}

	// The receiver must stay untouched.
	if len(base.Clauses()) != 1 {
		t.Errorf("WithCuisine mutated the receiver: %d clauses", len(base.Clauses()))
	}
}
