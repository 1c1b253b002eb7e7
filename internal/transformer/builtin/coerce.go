package builtin

import (
	"strconv"
	"time"

	"peopleetl/pkg/records"
)

// Coerce converts string values to typed values per the Types mapping. A
// value that fails to convert is left as the original string; Validate
// rejects it later with a reason, so coercion itself never drops rows.
type Coerce struct {
	Types  map[string]string // field -> one of: int, bool, date, string
	Layout string            // date layout, e.g. "2006-01-02"
}

// Apply rewrites records in place and returns the same slice.
func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			switch typ {
			case "int":
				if i, err := strconv.ParseInt(s, 10, 64); err == nil {
					r[field] = i
				}
			case "bool":
				if b, err := strconv.ParseBool(s); err == nil {
					r[field] = b
				}
			case "date":
				if t, err := time.Parse(c.Layout, s); err == nil {
					r[field] = t
				}
			case "string":
				// already string
			}
		}
	}
	return in
}
