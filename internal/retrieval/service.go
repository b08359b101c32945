// Package retrieval implements the two read paths of the engine:
// preference-filtered browsing and preference-filtered semantic search.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// Service composes the preference store, the document store, the embedder
// and the vector index into the retrieval operations.
type Service struct {
	prefs         PreferenceStore
	docs          DocumentStore
	embedder      domain.Embedder
	vectors       VectorSearcher
	minCandidates int
	logger        *zap.Logger
}

// NewService wires the retrieval service. minCandidates is the similarity
// search floor; requests below it still fetch that many hits so small
// limits cannot starve the merge.
func NewService(
	prefs PreferenceStore, docs DocumentStore,
	embedder domain.Embedder, vectors VectorSearcher,
	minCandidates int, logger *zap.Logger,
) *Service {
	if minCandidates <= 0 {
		minCandidates = 5
	}
	return &Service{
		prefs:         prefs,
		docs:          docs,
		embedder:      embedder,
		vectors:       vectors,
		minCandidates: minCandidates,
		logger:        logger,
	}
}

// Recommend returns up to limit recipes compatible with the user's
// preferences, best-rated first, optionally narrowed to one cuisine.
func (s *Service) Recommend(ctx context.Context, userID int64, limit int, cuisine string) ([]domain.RecipeResult, error) {
	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	pred := filter.FromPreferences(prefs).WithCuisine(strings.TrimSpace(cuisine))
	recipes, err := s.docs.FindByFilter(ctx, pred, limit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.RecipeResult, len(recipes))
	for i, r := range recipes {
		results[i] = domain.ResultFromRecipe(r)
	}
	s.logger.Debug("recommendation served",
		zap.Int64("user_id", userID),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// Search embeds the query, runs preference-filtered similarity search,
// and hydrates hits from the document store. Hit order is the ranking:
// results keep the index's descending-score order and are never
// re-sorted. A hit whose slug is missing from the document store is
// served from the index payload with degraded provenance instead of
// being dropped.
func (s *Service) Search(ctx context.Context, userID int64, query string, limit int) ([]domain.RecipeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	embedded, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := limit
	if candidates < s.minCandidates {
		candidates = s.minCandidates
	}
	pred := filter.FromPreferences(prefs)
	hits, err := s.vectors.Search(ctx, domain.TextVectorName, embedded.Embedding, pred, candidates)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []domain.RecipeResult{}, nil
	}

	slugs := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Payload.Slug != "" {
			slugs = append(slugs, h.Payload.Slug)
		}
	}
	docs, err := s.docs.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("hydrate search hits: %w", err)
	}

	results := make([]domain.RecipeResult, 0, len(hits))
	degraded := 0
	for _, h := range hits {
		if len(results) == limit {
			break
		}
		if doc, ok := docs[h.Payload.Slug]; ok {
			res := domain.ResultFromRecipe(doc)
			score := h.Score
			res.Score = &score
			results = append(results, res)
			continue
		}
		degraded++
		results = append(results, domain.ResultFromPayload(h.Payload, h.Score))
	}

	if degraded > 0 {
		s.logger.Warn("served degraded search results",
			zap.Int64("user_id", userID),
			zap.Int("degraded", degraded),
			zap.Int("total", len(results)),
		)
	}
	return results, nil
}
