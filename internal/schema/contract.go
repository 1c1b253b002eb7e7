package schema

// Field describes one column of an input contract: its canonical name, the
// value kind the loader expects, and whether a row without it is rejected.
type Field struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // "int" | "text" | "bool" | "date"
	Required bool     `json:"required,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Layout   string   `json:"layout,omitempty"` // date layout
}

// Contract is the validation contract for one input file. HeaderMap maps
// source header names to canonical field names when they differ.
type Contract struct {
	Name      string            `json:"name"`
	Fields    []Field           `json:"fields"`
	HeaderMap map[string]string `json:"header_map,omitempty"`
}

// Columns returns the canonical field names in declaration order.
func (c Contract) Columns() []string {
	cols := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = f.Name
	}
	return cols
}
