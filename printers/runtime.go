package printers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/kbukum/inventory/errors"
	"github.com/kbukum/inventory/registry"
)

const mb = 1024 * 1024

// RuntimeStats is a snapshot of the process runtime.
type RuntimeStats struct {
	Service    string      `json:"service"`
	Uptime     string      `json:"uptime"`
	Timestamp  string      `json:"timestamp"`
	Goroutines int         `json:"goroutines"`
	GOMAXPROCS int         `json:"gomaxprocs"`
	NumCPU     int         `json:"num_cpu"`
	Memory     MemoryStats `json:"memory"`
}

// MemoryStats holds heap figures in megabytes.
type MemoryStats struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	GCRuns       uint32 `json:"gc_runs"`
}

// Runtime prints runtime statistics in TEXT and JSON.
type Runtime struct {
	service string
	started time.Time
}

// NewRuntime creates a Runtime printer for service, measuring uptime from now.
func NewRuntime(service string) *Runtime {
	return &Runtime{service: service, started: time.Now()}
}

// Snapshot reads the current statistics.
func (r *Runtime) Snapshot() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	now := time.Now()
	return RuntimeStats{
		Service:    r.service,
		Uptime:     now.Sub(r.started).Truncate(time.Second).String(),
		Timestamp:  now.UTC().Format(time.RFC3339),
		Goroutines: runtime.NumGoroutine(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		NumCPU:     runtime.NumCPU(),
		Memory: MemoryStats{
			AllocMB:      m.Alloc / mb,
			TotalAllocMB: m.TotalAlloc / mb,
			SysMB:        m.Sys / mb,
			GCRuns:       m.NumGC,
		},
	}
}

// Print implements registry.Printer.
func (r *Runtime) Print(_ context.Context, mode registry.Mode, w io.Writer) error {
	s := r.Snapshot()
	switch mode {
	case registry.ModeJSON:
		return json.NewEncoder(w).Encode(s)
	case registry.ModeText:
		_, err := fmt.Fprintf(w,
			"Service: %s\nUptime: %s\nGoroutines: %d\nGOMAXPROCS: %d\nCPUs: %d\n"+
				"Heap alloc: %d MB\nTotal alloc: %d MB\nSys: %d MB\nGC runs: %d\n",
			s.Service, s.Uptime, s.Goroutines, s.GOMAXPROCS, s.NumCPU,
			s.Memory.AllocMB, s.Memory.TotalAllocMB, s.Memory.SysMB, s.Memory.GCRuns)
		return err
	default:
		return errors.UnsupportedMode(KindRuntime, string(mode))
	}
}

var _ registry.Printer = (*Runtime)(nil)
