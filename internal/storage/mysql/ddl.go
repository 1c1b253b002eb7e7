package mysql

import (
	"fmt"
	"strings"

	"peopleetl/internal/ddl"
	"peopleetl/internal/storage"
)

// CreateTableSQL renders a table definition in MySQL dialect: AUTO_INCREMENT
// surrogate keys, named UNIQUE KEY / INDEX clauses inline in the table body,
// inline FOREIGN KEY constraints, and an InnoDB suffix carrying the
// configured charset and collation.
func CreateTableSQL(t ddl.TableDef, opts storage.DDLOptions) (string, error) {
	if strings.TrimSpace(t.FQN) == "" {
		return "", fmt.Errorf("mysql ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("mysql ddl: at least one column is required")
	}

	lines := make([]string, 0, len(t.Columns)+len(t.Indexes)+len(t.ForeignKeys)+1)
	pks := make([]string, 0, 1)

	for _, c := range t.Columns {
		var sb strings.Builder
		sb.WriteString(c.Name)
		sb.WriteByte(' ')
		sb.WriteString(c.SQLType)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if c.AutoIncrement {
			sb.WriteString(" AUTO_INCREMENT")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		lines = append(lines, sb.String())
		if c.PrimaryKey {
			pks = append(pks, c.Name)
		}
	}

	if len(pks) > 0 {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	for _, idx := range t.Indexes {
		kw := "INDEX"
		if idx.Unique {
			kw = "UNIQUE KEY"
		}
		lines = append(lines, fmt.Sprintf("%s %s (%s)", kw, idx.Name, strings.Join(idx.Columns, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			fk.Column, fk.RefTable, fk.RefColumn))
	}

	suffix := "ENGINE=InnoDB"
	if opts.Charset != "" {
		suffix += " DEFAULT CHARSET=" + opts.Charset
	}
	if opts.Collation != "" {
		suffix += " COLLATE=" + opts.Collation
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n) %s;", t.FQN, strings.Join(lines, ",\n  "), suffix), nil
}
