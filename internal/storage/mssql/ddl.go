package mssql

import (
	"fmt"
	"strings"

	"peopleetl/internal/ddl"
	"peopleetl/internal/storage"
)

// CreateTableSQL renders a table definition in T-SQL dialect and returns the
// CREATE TABLE statement plus one CREATE INDEX statement per index. Surrogate
// keys become BIGINT IDENTITY(1,1); VARCHAR columns are widened to NVARCHAR
// so the Unicode the loaders carry survives. Charset and collation options
// are ignored since SQL Server sets collation at the database level.
func CreateTableSQL(t ddl.TableDef, _ storage.DDLOptions) ([]string, error) {
	if strings.TrimSpace(t.FQN) == "" {
		return nil, fmt.Errorf("mssql ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("mssql ddl: at least one column is required")
	}

	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	var pk []string
	for _, c := range t.Columns {
		var sb strings.Builder
		sb.WriteString(msIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(msType(c.SQLType))
		if c.AutoIncrement {
			sb.WriteString(" IDENTITY(1,1)")
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
			pk = append(pk, msIdent(c.Name))
		}
	}
	if len(pk) > 0 {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pk, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			msIdent(fk.Column), msFQN(fk.RefTable), msIdent(fk.RefColumn)))
	}

	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", msFQN(t.FQN), strings.Join(lines, ",\n  ")),
	}
	for _, idx := range t.Indexes {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);",
			unique, msIdent(idx.Name), msFQN(t.FQN), strings.Join(mapIdent(idx.Columns), ", ")))
	}
	return stmts, nil
}

// msType maps the schema's generic SQL types onto T-SQL types.
func msType(t string) string {
	up := strings.ToUpper(t)
	switch {
	case up == "DATETIME":
		return "DATETIME2"
	case strings.HasPrefix(up, "VARCHAR"):
		return "N" + up
	default:
		return up
	}
}
