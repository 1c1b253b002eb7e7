// Package mssql implements a SQL Server-backed storage.Repository using
// go-mssqldb. Batch inserts go through the driver's bulk-copy API; the upsert
// path uses MERGE so duplicate keys are silent no-ops.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"peopleetl/internal/storage"
)

// Config holds SQL Server repository configuration.
type Config struct {
	DSN        string
	Table      string
	Columns    []string
	KeyColumns []string
}

// Repository is a SQL Server-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a connection, pings it, and returns a Repository plus a
// Close function for cleanup. The DSN is parsed up front to fail fast on
// obvious mistakes.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w", err)
	}

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// BulkUpsert inserts rows inside one transaction using a per-row
// MERGE ... WHEN NOT MATCHED THEN INSERT. Rows whose key already exists are
// silent no-ops that preserve the existing row; any other per-row failure is
// logged and skipped.
func (r *Repository) BulkUpsert(
	ctx context.Context,
	rows []map[string]any,
	keyColumns []string,
	_ string, // dateColumn unused: the driver encodes time.Time natively
) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := r.cfg.Columns
	if len(cols) == 0 {
		return 0, fmt.Errorf("mssql: no columns configured")
	}
	if len(keyColumns) == 0 {
		return 0, fmt.Errorf("mssql: BulkUpsert requires key columns")
	}

	stmtSQL := buildMergeSQL(r.cfg.Table, cols, keyColumns)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: prepare merge: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, rec := range rows {
		args := make([]any, len(cols))
		for j, c := range cols {
			args[j] = rec[c]
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			log.Printf("mssql: upsert row %d skipped: %v", i, err)
			continue
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("mssql: commit: %w", err)
	}
	return inserted, nil
}

// buildMergeSQL renders the per-row upsert statement. HOLDLOCK serializes the
// match-then-insert so concurrent loaders cannot race in a duplicate key.
func buildMergeSQL(table string, cols, keyColumns []string) string {
	src := make([]string, len(cols))
	for i, c := range cols {
		src[i] = fmt.Sprintf("@p%d AS %s", i+1, msIdent(c))
	}
	conds := make([]string, len(keyColumns))
	for i, k := range keyColumns {
		conds[i] = fmt.Sprintf("T.%s = S.%s", msIdent(k), msIdent(k))
	}
	vals := make([]string, len(cols))
	for i, c := range cols {
		vals[i] = "S." + msIdent(c)
	}
	return fmt.Sprintf(
		`MERGE %s WITH (HOLDLOCK) AS T
USING (SELECT %s) AS S
ON %s
WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);`,
		msFQN(table),
		strings.Join(src, ", "),
		strings.Join(conds, " AND "),
		strings.Join(mapIdent(cols), ", "),
		strings.Join(vals, ", "),
	)
}

// CopyFrom performs a bulk insert directly into the configured target table.
// The whole batch commits or rolls back as one unit; an empty batch is a
// no-op.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mssql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(r.cfg.Table, mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: CopyFrom: row %d length %d != columns length %d", i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx) // flush
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// Exec executes a statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// Query runs a read statement and returns generic rows keyed by column name.
func (r *Repository) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("mssql: query: %w", err)
	}
	defer rows.Close()
	return storage.ScanRows(rows)
}

// msIdent quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.people" to
// "[dbo].[people]".
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps a list of column names to their bracket-quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = msIdent(c)
	}
	return out
}
