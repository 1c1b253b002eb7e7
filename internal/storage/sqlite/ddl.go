package sqlite

import (
	"fmt"
	"strings"

	"peopleetl/internal/ddl"
	"peopleetl/internal/storage"
)

// CreateTableSQL renders a table definition in SQLite dialect and returns the
// CREATE TABLE statement plus one CREATE INDEX statement per index; SQLite
// has no inline named-index syntax. Surrogate keys become INTEGER PRIMARY
// KEY AUTOINCREMENT (rowid-backed), and charset/collation options are
// ignored: SQLite stores UTF-8 and compares with its built-in collations.
func CreateTableSQL(t ddl.TableDef, _ storage.DDLOptions) ([]string, error) {
	if strings.TrimSpace(t.FQN) == "" {
		return nil, fmt.Errorf("sqlite ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("sqlite ddl: at least one column is required")
	}

	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys))
	for _, c := range t.Columns {
		var sb strings.Builder
		sb.WriteString(c.Name)
		if c.PrimaryKey && c.AutoIncrement {
			sb.WriteString(" INTEGER PRIMARY KEY AUTOINCREMENT")
			lines = append(lines, sb.String())
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(sqliteType(c.SQLType))
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		lines = append(lines, sb.String())
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			fk.Column, fk.RefTable, fk.RefColumn))
	}

	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", t.FQN, strings.Join(lines, ",\n  ")),
	}
	for _, idx := range t.Indexes {
		s, err := ddl.BuildIndexSQL(t.FQN, idx)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// sqliteType maps the schema's generic SQL types onto SQLite storage classes.
func sqliteType(t string) string {
	switch strings.ToUpper(t) {
	case "BIGINT", "INT", "INTEGER":
		return "INTEGER"
	case "DATE":
		return "TEXT" // dates stored as "2006-01-02" text
	default:
		if strings.HasPrefix(strings.ToUpper(t), "VARCHAR") {
			return "TEXT"
		}
		return t
	}
}
