package retrieval

import (
	"context"

	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain"
	"github.com/LorenaRaichle/AdvDB-FlavorNet/internal/domain/filter"
)

// PreferenceStore loads a user's dietary preference set.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID int64) (domain.Preferences, error)
}

// DocumentStore reads canonical recipe documents.
type DocumentStore interface {
	FindByFilter(ctx context.Context, pred filter.Predicate, limit int) ([]domain.Recipe, error)
	FindBySlugs(ctx context.Context, slugs []string) (map[string]domain.Recipe, error)
}

// VectorSearcher runs filtered similarity search over the recipe index.
type VectorSearcher interface {
	Search(ctx context.Context, vectorName string, vector []float32, pred filter.Predicate, limit int) ([]domain.VectorHit, error)
}
