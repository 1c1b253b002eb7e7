package postgres

import (
	"fmt"
	"strings"

	"peopleetl/internal/ddl"
	"peopleetl/internal/storage"
)

// CreateTableSQL renders a table definition in Postgres dialect and returns
// the CREATE TABLE statement plus one CREATE INDEX statement per index.
// Surrogate keys become BIGINT GENERATED BY DEFAULT AS IDENTITY; charset and
// collation options are ignored since those are database-level settings in
// Postgres.
func CreateTableSQL(t ddl.TableDef, _ storage.DDLOptions) ([]string, error) {
	if strings.TrimSpace(t.FQN) == "" {
		return nil, fmt.Errorf("postgres ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("postgres ddl: at least one column is required")
	}

	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	var pk []string
	for _, c := range t.Columns {
		var sb strings.Builder
		sb.WriteString(pgIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(pgType(c.SQLType))
		if c.AutoIncrement {
			sb.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
		}
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		lines = append(lines, sb.String())
		if c.PrimaryKey {
			pk = append(pk, pgIdent(c.Name))
		}
	}
	if len(pk) > 0 {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pk, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			pgIdent(fk.Column), pgFQN(fk.RefTable), pgIdent(fk.RefColumn)))
	}

	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", pgFQN(t.FQN), strings.Join(lines, ",\n  ")),
	}
	for _, idx := range t.Indexes {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);",
			unique, pgIdent(idx.Name), pgFQN(t.FQN), strings.Join(mapIdent(idx.Columns), ", ")))
	}
	return stmts, nil
}

// pgType maps the schema's generic SQL types onto Postgres types.
func pgType(t string) string {
	up := strings.ToUpper(t)
	switch {
	case up == "DATETIME":
		return "TIMESTAMP"
	case strings.HasPrefix(up, "VARCHAR"):
		return up
	default:
		return up
	}
}
