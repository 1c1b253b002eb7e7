// This file wires the SQL Server backend into the storage factory and
// registers its DDL bootstrapper. Registration happens in init.
package mssql

import (
	"context"

	"peopleetl/internal/ddl"
	"peopleetl/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adapts *mssql.Repository to the storage.Repository interface,
// adding a Close method that calls the cleanup function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:        cfg.DSN,
			Table:      cfg.Table,
			Columns:    cfg.Columns,
			KeyColumns: cfg.KeyColumns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("mssql",
		func(ctx context.Context, repo storage.Repository, t ddl.TableDef, opts storage.DDLOptions) error {
			stmts, err := CreateTableSQL(t, opts)
			if err != nil {
				return err
			}
			for _, s := range stmts {
				if err := repo.Exec(ctx, s); err != nil {
					return err
				}
			}
			return nil
		})
}
