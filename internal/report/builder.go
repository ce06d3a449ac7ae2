// Package report assembles the keyspace usage report.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/internal/core/ports"
	"github.com/genc-murat/crystalstats/internal/sample"
	"github.com/genc-murat/crystalstats/internal/table"
)

// DefaultAverageKeySize is the empirical key size, in bytes, used to turn
// available memory into a key capacity.
const DefaultAverageKeySize int64 = 222

var ErrInvalidKeySize = errors.New("average key size must be positive")

// ModelHeader is the header row of the model table.
var ModelHeader = []any{"", "Count", "Keys", "Keys (%)", "Keys/instance"}

// SummaryHeader is the header row of the optional summary table.
var SummaryHeader = []any{"", "Sum", "Mean", "Median"}

type Option func(*Builder)

func WithAverageKeySize(n int64) Option {
	return func(b *Builder) { b.averageKeySize = n }
}

// WithSummary appends a table of per-model count and key statistics.
func WithSummary(enabled bool) Option {
	return func(b *Builder) { b.summary = enabled }
}

func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// Builder renders the report from a registry, a store and host memory facts.
// Each call issues fresh store queries; nothing is cached between reports.
type Builder struct {
	registry       ports.Registry
	store          ports.Store
	memory         ports.MemoryInfo
	averageKeySize int64
	summary        bool
	log            *zap.Logger
}

func NewBuilder(registry ports.Registry, store ports.Store, memory ports.MemoryInfo, opts ...Option) (*Builder, error) {
	if registry == nil || store == nil || memory == nil {
		return nil, errors.New("report: registry, store and memory info are required")
	}

	b := &Builder{
		registry:       registry,
		store:          store,
		memory:         memory,
		averageKeySize: DefaultAverageKeySize,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.averageKeySize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKeySize, b.averageKeySize)
	}
	return b, nil
}

func (b *Builder) AverageKeySize() int64 {
	return b.averageKeySize
}

// ListModels returns the registered models ordered by name.
func (b *Builder) ListModels() []models.Model {
	list := append([]models.Model(nil), b.registry.ListRegisteredModels()...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// BuildModelTable has one row per model plus a trailing row for the whole
// keyspace, which is the 100% baseline.
func (b *Builder) BuildModelTable(ctx context.Context) (*table.Table, error) {
	totalKeys, stats, err := b.collect(ctx)
	if err != nil {
		return nil, err
	}
	return b.modelTable(ctx, totalKeys, stats)
}

// BuildMemoryTable estimates how many keys fit in the host's memory.
func (b *Builder) BuildMemoryTable(ctx context.Context) (*table.Table, error) {
	available, err := b.AvailableMemory(ctx)
	if err != nil {
		return nil, err
	}

	t := table.New()
	t.Append("Available memory", available)
	t.Append("Average key size", b.averageKeySize)
	t.Append("Maximum amount of keys", available/b.averageKeySize)
	return t, nil
}

// BuildSummaryTable summarises instance and key counts across models.
func (b *Builder) BuildSummaryTable(ctx context.Context) (*table.Table, error) {
	_, stats, err := b.collect(ctx)
	if err != nil {
		return nil, err
	}
	return b.summaryTable(ctx, stats)
}

func (b *Builder) AvailableMemory(ctx context.Context) (int64, error) {
	n, err := b.memory.TotalSystemMemoryBytes(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading available memory: %w", err)
	}
	return n, nil
}

// Render produces the full report. Tables are separated by a blank line.
// On error no partial output is returned.
func (b *Builder) Render(ctx context.Context) (string, error) {
	tables, err := b.tables(ctx)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, "\n"), nil
}

// WriteReport writes the report Render produces to w. Every store query
// completes before the first byte is written.
func (b *Builder) WriteReport(ctx context.Context, w io.Writer) (int64, error) {
	tables, err := b.tables(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for i, t := range tables {
		if i > 0 {
			n, err := io.WriteString(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err := t.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (b *Builder) tables(ctx context.Context) ([]*table.Table, error) {
	totalKeys, stats, err := b.collect(ctx)
	if err != nil {
		return nil, err
	}

	modelTable, err := b.modelTable(ctx, totalKeys, stats)
	if err != nil {
		return nil, err
	}
	memoryTable, err := b.BuildMemoryTable(ctx)
	if err != nil {
		return nil, err
	}
	tables := []*table.Table{modelTable, memoryTable}

	if b.summary {
		summaryTable, err := b.summaryTable(ctx, stats)
		if err != nil {
			return nil, err
		}
		tables = append(tables, summaryTable)
	}
	return tables, nil
}

// collect reads the keyspace size once and binds every model to it, so that
// shares within one report add up even if the store changes meanwhile.
func (b *Builder) collect(ctx context.Context) (int64, []*ModelStat, error) {
	totalKeys, err := b.store.TotalKeyCount(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("reading keyspace size: %w", err)
	}

	list := b.ListModels()
	stats := make([]*ModelStat, 0, len(list))
	for _, m := range list {
		stats = append(stats, NewModelStat(m, b.store, totalKeys))
	}

	b.log.Debug("collected models", zap.Int("models", len(list)), zap.Int64("keyspace_keys", totalKeys))
	return totalKeys, stats, nil
}

func (b *Builder) modelTable(ctx context.Context, totalKeys int64, stats []*ModelStat) (*table.Table, error) {
	t := table.New(ModelHeader...)
	for _, stat := range stats {
		row, err := stat.Row(ctx)
		if err != nil {
			return nil, err
		}
		b.log.Debug("model stat",
			zap.String("model", stat.Model().Name),
			zap.Any("total", row[1]),
			zap.Any("keys", row[2]))
		t.Append(row...)
	}

	t.Append("Keys", nil, totalKeys, table.Percentage(100))
	return t, nil
}

func (b *Builder) summaryTable(ctx context.Context, stats []*ModelStat) (*table.Table, error) {
	totals := make([]int64, 0, len(stats))
	keys := make([]int64, 0, len(stats))
	for _, stat := range stats {
		total, err := stat.Total(ctx)
		if err != nil {
			return nil, err
		}
		k, err := stat.Keys(ctx)
		if err != nil {
			return nil, err
		}
		totals = append(totals, total)
		keys = append(keys, k)
	}

	t := table.New(SummaryHeader...)
	t.Append(sample.FromInts(totals...).Row("Count")...)
	t.Append(sample.FromInts(keys...).Row("Keys")...)
	return t, nil
}
