package report

import (
	"context"
	"fmt"

	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/internal/core/ports"
	"github.com/genc-murat/crystalstats/internal/table"
)

// ModelStat is the usage of one model within a single report. Store results
// are fetched on first use and kept for the lifetime of the value; failed
// queries are not cached. A ModelStat is not safe for concurrent use.
type ModelStat struct {
	model     models.Model
	store     ports.Store
	totalKeys int64

	total     int64
	haveTotal bool
	keys      int64
	haveKeys  bool
}

// NewModelStat binds a model to the store. totalKeys is the keyspace size
// read once for the whole report.
func NewModelStat(model models.Model, store ports.Store, totalKeys int64) *ModelStat {
	return &ModelStat{model: model, store: store, totalKeys: totalKeys}
}

func (s *ModelStat) Model() models.Model {
	return s.model
}

// Total is the number of created instances of the model.
func (s *ModelStat) Total(ctx context.Context) (int64, error) {
	if !s.haveTotal {
		n, err := s.store.CountInstances(ctx, s.model)
		if err != nil {
			return 0, fmt.Errorf("counting %s instances: %w", s.model, err)
		}
		s.total, s.haveTotal = n, true
	}
	return s.total, nil
}

// Keys is the number of store keys under the model's prefix.
func (s *ModelStat) Keys(ctx context.Context) (int64, error) {
	if !s.haveKeys {
		n, err := s.store.CountKeysMatching(ctx, s.model.KeyPattern())
		if err != nil {
			return 0, fmt.Errorf("counting %s keys: %w", s.model, err)
		}
		s.keys, s.haveKeys = n, true
	}
	return s.keys, nil
}

// KeyspaceShare is the percentage of the keyspace the model's keys take up.
// An empty keyspace yields NaN or +Inf.
func (s *ModelStat) KeyspaceShare(ctx context.Context) (float64, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return float64(keys) * 100 / float64(s.totalKeys), nil
}

// KeyInstanceRatio is the average number of keys per instance. A model
// without instances yields +Inf, or NaN when it has no keys either.
func (s *ModelStat) KeyInstanceRatio(ctx context.Context) (float64, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}
	total, err := s.Total(ctx)
	if err != nil {
		return 0, err
	}
	return float64(keys) / float64(total), nil
}

// Row is the model's line in the model table.
func (s *ModelStat) Row(ctx context.Context) ([]any, error) {
	total, err := s.Total(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	share, err := s.KeyspaceShare(ctx)
	if err != nil {
		return nil, err
	}
	ratio, err := s.KeyInstanceRatio(ctx)
	if err != nil {
		return nil, err
	}
	return []any{s.model, total, keys, table.Percentage(share), table.Float(ratio)}, nil
}
