package ports

import "context"

// MemoryInfo reports host memory facts.
type MemoryInfo interface {
	TotalSystemMemoryBytes(ctx context.Context) (int64, error)
}
