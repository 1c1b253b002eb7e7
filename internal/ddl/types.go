package ddl

// ColumnDef describes a single column in a table definition produced or
// consumed by ddl. It intentionally uses simple, database-agnostic fields.
//
// Fields:
//   - Name: logical column name (unquoted; quoting/escaping happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, DATE)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - AutoIncrement: whether the store assigns the value (surrogate keys);
//     renderers translate this to their dialect (AUTO_INCREMENT, IDENTITY,
//     AUTOINCREMENT, GENERATED ... AS IDENTITY)
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name          string
	SQLType       string
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	Default       string
}

// IndexDef names a secondary index over one or more columns. Unique controls
// whether the index enforces a uniqueness constraint.
type IndexDef struct {
	Name    string
	Columns []string
	Unique  bool
}

// ForeignKey declares a reference from Column to RefTable(RefColumn).
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef holds the table name and an ordered list of columns, plus the
// declarative constraints the schema carries. The name is expected in dotted
// form when schema-qualified (e.g., "schema.table") and will be
// quoted/escaped by renderers as needed.
//
// Options is a raw dialect-specific table suffix (e.g. MySQL
// "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"); renderers that have no use for
// it ignore it.
type TableDef struct {
	FQN         string
	Columns     []ColumnDef
	Indexes     []IndexDef
	ForeignKeys []ForeignKey
	Options     string
}
