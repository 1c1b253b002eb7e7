// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render simple CREATE TABLE statements from that model.
//
// The goal of this package is to stay generic: it does not assume any specific
// SQL dialect. In particular, it:
//
//   - Does not quote identifiers; it emits TableDef.FQN and ColumnDef.Name as-is.
//   - Does not insert dialect-specific clauses such as IF NOT EXISTS.
//   - Ignores ColumnDef.AutoIncrement and TableDef.Options (those only have
//     meaning to dialect renderers).
//   - Treats ColumnDef.Default as raw SQL (the caller is responsible for
//     safety and dialect correctness).
//
// Backend-specific packages (internal/storage/<kind>) adapt this model to
// their dialect: they reimplement the rendering using the same
// TableDef/ColumnDef types and add the constraint clauses their dialect
// expresses differently (identity columns, named unique keys, inline
// indexes).
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a generic CREATE TABLE statement from a TableDef.
//
// Each column is rendered as:
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
// Columns with PrimaryKey == true are collected into a trailing
// PRIMARY KEY (<cols>) clause; foreign keys render as trailing
// FOREIGN KEY (<col>) REFERENCES <table>(<col>) clauses. Indexes are not
// rendered here: dialects disagree on inline versus separate statements, so
// generic callers use BuildIndexSQL per index.
func BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())
		if c.PrimaryKey {
			pks = append(pks, name)
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		cols = append(cols, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			fk.Column, fk.RefTable, fk.RefColumn))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", fqn, strings.Join(cols, ",\n  ")), nil
}

// BuildIndexSQL renders a generic CREATE [UNIQUE] INDEX statement for one
// index definition against the given table.
func BuildIndexSQL(table string, idx IndexDef) (string, error) {
	if strings.TrimSpace(idx.Name) == "" {
		return "", fmt.Errorf("ddl: index on %s missing name", table)
	}
	if len(idx.Columns) == 0 {
		return "", fmt.Errorf("ddl: index %s has no columns", idx.Name)
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);",
		unique, idx.Name, table, strings.Join(idx.Columns, ", ")), nil
}
