package ports

import (
	"context"

	"github.com/genc-murat/crystalstats/internal/core/models"
)

// Store is the read-only view of the key-value store the report needs.
type Store interface {
	// CountKeysMatching counts keys whose name matches a glob pattern.
	CountKeysMatching(ctx context.Context, pattern string) (int64, error)
	// CountInstances counts created instances of a model.
	CountInstances(ctx context.Context, model models.Model) (int64, error)
	// TotalKeyCount is the number of keys in the selected database.
	TotalKeyCount(ctx context.Context) (int64, error)
}
