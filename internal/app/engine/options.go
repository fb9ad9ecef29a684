package engine

import (
	"runtime"
	"time"
)

// Options represents configuration options for the Engine.
type Options struct {
	// Workers is the size of the processing pool. Zero means one worker
	// per available CPU.
	Workers int
	// SnapshotInterval is how often the snapshot manager wakes up.
	SnapshotInterval time.Duration
	// SnapshotOrderDelta is the minimum number of processed orders
	// between snapshots.
	SnapshotOrderDelta uint64
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		Workers:            runtime.NumCPU(),
		SnapshotInterval:   30 * time.Second,
		SnapshotOrderDelta: 1000,
	}
}
