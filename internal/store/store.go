// Package store provides the persistence layer behind the credential
// and report repositories: a SQLite-backed LocalStore and a
// mutex-guarded MemoryStore, swappable without touching the intake
// pipeline.
package store

import (
	"context"

	"medichain/internal/types"
)

// Store is the full persistence capability: both repositories plus
// first-run bookkeeping.
type Store interface {
	types.UserStore
	types.ReportStore

	// Initialized reports whether demo seeding has already run.
	Initialized(ctx context.Context) (bool, error)

	// SetInitialized marks seeding as done.
	SetInitialized(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}
