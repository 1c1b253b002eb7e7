// Package postgres implements a Postgres-backed storage.Repository using
// pgx v5 and its connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN        string   // connection string for pgxpool
	Table      string   // target table name, optionally schema-qualified
	Columns    []string // ordered columns for COPY and INSERT
	KeyColumns []string // conflict target columns
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository opens a connection pool, pings it, and returns a Repository
// plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// BulkUpsert inserts rows with INSERT ... ON CONFLICT (key) DO NOTHING inside
// one transaction. Duplicate keys are silent no-ops that preserve the existing
// row. A failed statement aborts a Postgres transaction, so each row runs
// under a savepoint; rows that fail for other reasons are rolled back to the
// savepoint, logged, and skipped.
func (r *Repository) BulkUpsert(
	ctx context.Context,
	rows []map[string]any,
	keyColumns []string,
	_ string, // dateColumn unused: pgx encodes time.Time natively
) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := r.cfg.Columns
	if len(cols) == 0 {
		return 0, fmt.Errorf("postgres: no columns configured")
	}
	if len(keyColumns) == 0 {
		return 0, fmt.Errorf("postgres: BulkUpsert requires key columns")
	}

	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		pgFQN(r.cfg.Table),
		strings.Join(mapIdent(cols), ", "),
		strings.Join(ph, ", "),
		strings.Join(mapIdent(keyColumns), ", "),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inserted int64
	for i, rec := range rows {
		args := make([]any, len(cols))
		for j, c := range cols {
			args[j] = rec[c]
		}
		if _, err := tx.Exec(ctx, "SAVEPOINT row_sp"); err != nil {
			return inserted, fmt.Errorf("postgres: savepoint: %w", err)
		}
		tag, err := tx.Exec(ctx, stmtSQL, args...)
		if err != nil {
			log.Printf("postgres: upsert row %d skipped: %v", i, pgErrDetail(err))
			if _, err := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT row_sp"); err != nil {
				return inserted, fmt.Errorf("postgres: rollback to savepoint: %w", err)
			}
			continue
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return inserted, fmt.Errorf("postgres: commit: %w", err)
	}
	return inserted, nil
}

// CopyFrom inserts the given rows into the configured table using the COPY
// protocol; pgx runs the COPY in its own transaction. An empty batch is a
// no-op.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy: %w", pgErrDetail(err))
	}
	return n, nil
}

// Exec executes a statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sqlText); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// Query runs a read statement and returns generic rows keyed by column name.
func (r *Repository) Query(ctx context.Context, sqlText string, args ...any) ([]map[string]any, error) {
	rows, err := r.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: read row: %w", err)
		}
		m := make(map[string]any, len(fields))
		for i, f := range fields {
			m[f.Name] = vals[i]
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	return out, nil
}

// pgErrDetail surfaces the server-side detail of a pgconn error when present;
// the default message alone often omits the offending column or value.
func pgErrDetail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s: %s (%s)", pgErr.Message, pgErr.Detail, pgErr.SQLState())
	}
	return err
}

// pgIdent quotes a single identifier segment.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.people" to
// "public"."people".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// mapIdent maps a list of column names to their quoted forms.
func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
