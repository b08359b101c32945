package ingest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// Record is one raw recipe record from the ingestion source.
type Record struct {
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Steps          []string `json:"steps"`
	DietaryTags    []string `json:"dietary_tags"`
	AllergenTags   []string `json:"allergen_tags"`
	FlavourTags    []string `json:"flavour_tags"`
	TechniqueTags  []string `json:"technique_tags"`
	IngredientTags []string `json:"ingredient_tags"`
	Cuisine        string   `json:"cuisine"`
	Course         string   `json:"course"`
	Rating         struct {
		Value float64 `json:"value"`
		Count int     `json:"count"`
	} `json:"rating"`
	SourceURL string `json:"source_url"`
}

// TextInput is the content projection embedded into v_text:
// "title. step step step".
func (r Record) TextInput() string {
	return strings.TrimSpace(strings.TrimSpace(r.Title) + ". " + strings.Join(r.Steps, " "))
}

// IngredientInput is the ingredient-bag projection embedded into
// v_ingredients.
func (r Record) IngredientInput() string {
	return strings.Join(r.IngredientTags, " ")
}

// Source is a finite ordered sequence of recipe records. Order must be
// stable across runs; resume semantics skip an ordinal prefix.
type Source interface {
	// Scan calls fn for every record with its 1-based ordinal, in source
	// order. A non-nil error from fn aborts the scan and is returned.
	Scan(ctx context.Context, fn func(ordinal int64, rec Record) error) error
}

// JSONLSource reads newline-delimited JSON records from a file. Blank
// lines are skipped and do not consume an ordinal; a malformed line is
// fatal, because silently renumbering the source would corrupt resume
// offsets.
type JSONLSource struct {
	path string
}

// NewJSONLSource creates a source over a JSONL file.
func NewJSONLSource(path string) *JSONLSource {
	return &JSONLSource{path: path}
}

// Scan implements Source.
func (s *JSONLSource) Scan(ctx context.Context, fn func(ordinal int64, rec Record) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open source %s: %w", s.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// Recipe lines with long step lists exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var ordinal int64
	var lineNo int64
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return fmt.Errorf("parse %s line %d: %w", s.path, lineNo, err)
		}

		ordinal++
		if err := fn(ordinal, rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source %s: %w", s.path, err)
	}
	return nil
}
