// Package sysinfo reports host facts the capacity estimate needs.
package sysinfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// VirtualMemory reads the total physical memory of the host, from
// /proc/meminfo on Linux and sysctl on BSD and macOS.
type VirtualMemory struct{}

func (VirtualMemory) TotalSystemMemoryBytes(ctx context.Context) (int64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading virtual memory: %w", err)
	}
	return int64(vm.Total), nil
}

// Fixed reports a configured memory size instead of probing the host.
type Fixed int64

func (f Fixed) TotalSystemMemoryBytes(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(f), nil
}
