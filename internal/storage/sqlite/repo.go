// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc driver. It exists for local runs and
// CI, where spinning up a MySQL server is not worth the trouble; the
// pipeline behaves identically on it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"peopleetl/internal/storage"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.
	// "file:people.db?cache=shared" or just "people.db".
	DSN        string
	Table      string
	Columns    []string
	KeyColumns []string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup. Foreign key enforcement is
// switched on; SQLite defaults it off.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// BulkUpsert inserts rows with INSERT ... ON CONFLICT(key) DO NOTHING inside
// one transaction. Duplicate keys are silent no-ops that preserve the
// existing row; any other per-row failure is logged and skipped. Dates are
// stored as "2006-01-02" text so comparisons and ordering stay lexical.
func (r *Repository) BulkUpsert(
	ctx context.Context,
	rows []map[string]any,
	keyColumns []string,
	_ string, // dateColumn unused: dates are normalized to text for every column
) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := r.cfg.Columns
	if len(cols) == 0 {
		return 0, fmt.Errorf("sqlite: no columns configured")
	}
	if len(keyColumns) == 0 {
		return 0, fmt.Errorf("sqlite: BulkUpsert requires key columns")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO NOTHING",
		r.cfg.Table, strings.Join(cols, ", "), placeholders, strings.Join(keyColumns, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare upsert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, rec := range rows {
		args := make([]any, len(cols))
		for j, c := range cols {
			args[j] = normalizeValue(rec[c])
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			log.Printf("sqlite: upsert row %d skipped: %v", i, err)
			continue
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// CopyFrom inserts the given rows into the configured table using a single
// transaction and a prepared INSERT. An empty batch is a no-op.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
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
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row %d length %d != columns length %d", i, len(row), len(columns))
		}
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = normalizeValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			log.Printf("sqlite: insert row %d skipped: %v", i, err)
			continue
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// Query runs a read statement and returns generic rows keyed by column name.
func (r *Repository) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()
	return storage.ScanRows(rows)
}

// normalizeValue converts time.Time values to the date text the schema
// stores; SQLite has no native DATE type, so the text form keeps ordering
// and equality behavior consistent with the other backends.
func normalizeValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return v
}
