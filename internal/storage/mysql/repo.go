// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and the go-sql-driver. It is the pipeline's default backend
// and stores text as utf8mb4.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"peopleetl/internal/storage"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN        string
	Table      string
	Columns    []string
	KeyColumns []string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a connection pool for the DSN and verifies it with a
// ping. It returns the Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// BulkUpsert inserts rows with insert-or-ignore semantics in one transaction
// using INSERT ... ON DUPLICATE KEY UPDATE key=key. The self-assignment is a
// deliberate no-op: a duplicate key leaves the existing row untouched (the
// non-key columns of later duplicates are discarded, matching the dataset's
// first-row-wins contract).
//
// A row that fails for any other reason is logged and skipped; the rest of
// the batch proceeds and commits. Returns the number of rows newly inserted
// (duplicates count as zero, per the driver's affected-rows reporting).
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
		return 0, fmt.Errorf("mysql: no columns configured")
	}
	if len(keyColumns) == 0 {
		return 0, fmt.Errorf("mysql: BulkUpsert requires key columns")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	noop := make([]string, len(keyColumns))
	for i, k := range keyColumns {
		noop[i] = fmt.Sprintf("%s = %s", k, k)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		r.cfg.Table, strings.Join(cols, ", "), placeholders, strings.Join(noop, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: prepare upsert: %w", err)
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
			// Skip-and-continue: a single bad row must not poison the batch.
			log.Printf("mysql: upsert row %d skipped: %v", i, err)
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n == 1 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// CopyFrom bulk-inserts rows inside a single transaction using a prepared
// INSERT. One call is one commit; an empty batch returns without touching
// the connection.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.cfg.Table, strings.Join(columns, ", "), placeholders,
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: CopyFrom: row %d length %d != columns length %d", i, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			log.Printf("mysql: insert row %d skipped: %v", i, err)
			continue
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a statement (typically DDL) against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// Query runs a read statement and returns generic rows keyed by column name.
func (r *Repository) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: query: %w", err)
	}
	defer rows.Close()
	return storage.ScanRows(rows)
}
