package storage

import (
	"context"
	"fmt"
	"sync"

	"peopleetl/internal/ddl"
	"peopleetl/internal/schema"
)

// DDLOptions carries the dialect knobs the schema bootstrap may need.
// Backends that have no use for a field ignore it.
type DDLOptions struct {
	Charset   string // e.g. "utf8mb4" (MySQL table option)
	Collation string // e.g. "utf8mb4_unicode_ci"
}

// DDLBootstrapper renders one table definition in a backend's dialect and
// applies it via repo.Exec. Backends register their implementation for a
// given storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, t ddl.TableDef, opts DDLOptions) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given
// storage kind. Typically called from backend packages' init functions.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// InitSchema drops and recreates the pipeline's tables through the DDL
// bootstrapper registered for kind. Tables are dropped children-first so
// foreign keys never dangle, then created in dependency order. Any prior
// data in the tables is destroyed.
func InitSchema(ctx context.Context, kind string, repo Repository, opts DDLOptions) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}

	tables := schema.Tables()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := repo.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", tables[i].FQN)); err != nil {
			return fmt.Errorf("drop %s: %w", tables[i].FQN, err)
		}
	}
	for _, t := range tables {
		if err := fn(ctx, repo, t, opts); err != nil {
			return fmt.Errorf("create %s: %w", t.FQN, err)
		}
	}
	return nil
}
