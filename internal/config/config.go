// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Config fields are exported and tagged for koanf.
// - New(ctx) builds a Config with defaults; Load overlays file and env values.
// - All future functions must accept context.Context as the first parameter.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SeedQueueSize bounds the in-memory bulk-seed ingestion queue.
	SeedQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of bulk-seed ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the seed-batch deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// TopCacheSize configures how many top-ranked entries the store keeps warm.
	TopCacheSize int `koanf:"top_cache_size"`

	// NeighborLimit caps the max high/low window getWithNeighbors accepts.
	NeighborLimit int `koanf:"neighbor_limit"`

	// SeedFile optionally points at a JSON file of (customerId, score)
	// pairs loaded at startup through InitializeFromSeed.
	SeedFile string `koanf:"seed_file"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		SeedQueueSize: 100_000,
		WorkerCount:   runtime.NumCPU() * 2,
		DedupeSize:    50_000,
		TopCacheSize:  10,
		NeighborLimit: 1000,
	}
	return c
}
