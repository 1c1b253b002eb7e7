// Package storage contains the storage-agnostic contracts for the pipeline:
// the Repository interface every backend implements, a kind-keyed factory,
// the schema bootstrap registry, and the generic batched loader.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the narrow surface the pipeline needs from a backing store.
// One Repository wraps one connection (or pool) for the life of the run.
//
// Transaction boundaries are the methods themselves: one BulkUpsert call is
// one transaction, one CopyFrom call is one transaction. The commit cadence
// of a load stage is therefore just how often it calls these methods.
type Repository interface {
	// BulkUpsert inserts rows into the configured table with
	// insert-or-ignore semantics keyed on keyColumns: a row whose key
	// already exists is a no-op and the existing row is left untouched.
	// It returns the number of rows actually inserted. dateColumn names a
	// column holding a calendar date, for backends that need to convert it.
	BulkUpsert(ctx context.Context, rows []map[string]any, keyColumns []string, dateColumn string) (int64, error)

	// CopyFrom bulk-inserts rows (aligned to the columns order) into the
	// configured table using the backend's most efficient primitive. An
	// empty rows slice is a no-op and must not open a transaction.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a statement (typically DDL) outside any explicit transaction.
	Exec(ctx context.Context, sqlText string) error

	// Query runs a read statement and returns generic rows keyed by column
	// name. Used for the place-map preload and the export join.
	Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error)

	// Close releases the underlying connection. Safe to call once.
	Close()
}

// Config carries everything a backend factory needs to open a Repository.
type Config struct {
	Kind       string   // backend kind, e.g. "mysql"
	DSN        string   // backend-specific connection string
	Table      string   // target table for BulkUpsert/CopyFrom
	Columns    []string // ordered destination columns
	KeyColumns []string // uniqueness key for BulkUpsert
	DateColumn string   // calendar-date column, when the backend cares
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for a storage kind. Backend
// packages call it from init; tests may override kinds freely.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository of the configured kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
