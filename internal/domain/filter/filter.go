// Package filter holds the preference predicate shared by both store
// compilers. One tagged-union Clause type covers everything the document
// store and the vector index need to agree on, so the two compiled forms
// cannot drift apart.
package filter

import (
	"fmt"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
)

// Recipe fields addressable by filter clauses. These names match both the
// document-store field names and the index payload keys.
const (
	KeyDietaryTags    = "dietary_tags"
	KeyAllergenTags   = "allergen_tags"
	KeyIngredientTags = "ingredient_tags"
	KeyCuisine        = "cuisine"
)

// Op is the clause variant tag.
type Op int

const (
	// OpEquals requires the field to equal a single value.
	OpEquals Op = iota
	// OpContainsAll requires a set field to contain every value.
	OpContainsAll
	// OpExcludesAny rejects documents whose set field contains any value.
	OpExcludesAny
)

// Clause is a single predicate clause over one field.
type Clause struct {
	key    string
	op     Op
	values []string
}

// NewClause validates and creates a clause.
func NewClause(key string, op Op, values ...string) (Clause, error) {
	if key == "" {
		return Clause{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Clause{}, fmt.Errorf("filter values are required for key %q", key)
	}
	if op == OpEquals && len(values) != 1 {
		return Clause{}, fmt.Errorf("equals clause on %q takes exactly one value", key)
	}
	return Clause{key: key, op: op, values: values}, nil
}

// Key returns the field name.
func (c Clause) Key() string { return c.key }

// Op returns the clause variant.
func (c Clause) Op() Op { return c.op }

// Values returns the clause values.
func (c Clause) Values() []string { return c.values }

// Predicate is a conjunction of clauses. The zero value is the universal
// predicate (matches everything).
type Predicate struct {
	clauses []Clause
}

// New creates a predicate from clauses.
func New(clauses ...Clause) Predicate {
	return Predicate{clauses: clauses}
}

// Clauses returns the conjunction members.
func (p Predicate) Clauses() []Clause { return p.clauses }

// IsEmpty reports whether the predicate constrains nothing.
func (p Predicate) IsEmpty() bool { return len(p.clauses) == 0 }

// FromPreferences builds the preference predicate: every required diet tag
// present, no allergen overlap, no disliked ingredient.
func FromPreferences(prefs domain.Preferences) Predicate {
	var clauses []Clause
	if len(prefs.DietType) > 0 {
		c, _ := NewClause(KeyDietaryTags, OpContainsAll, prefs.DietType...)
		clauses = append(clauses, c)
	}
	if len(prefs.Allergies) > 0 {
		c, _ := NewClause(KeyAllergenTags, OpExcludesAny, prefs.Allergies...)
		clauses = append(clauses, c)
	}
	if len(prefs.Dislikes) > 0 {
		c, _ := NewClause(KeyIngredientTags, OpExcludesAny, prefs.Dislikes...)
		clauses = append(clauses, c)
	}
	return Predicate{clauses: clauses}
}

// WithCuisine narrows a predicate to a single cuisine. A blank cuisine
// returns the predicate unchanged.
func (p Predicate) WithCuisine(cuisine string) Predicate {
	if cuisine == "" {
		return p
	}
	c, _ := NewClause(KeyCuisine, OpEquals, cuisine)
	return Predicate{clauses: append(append([]Clause(nil), p.clauses...), c)}
}
