// Package records defines the generic row representation passed between
// parser, transformer, and loader stages.
package records

// Record is one parsed input row keyed by canonical column name. Values are
// strings as read from the source, nil for absent/empty cells, or typed
// values after coercion (time.Time, int64, ...).
type Record map[string]any

// String returns the value for key as a string, or "" when the value is
// absent, nil, or not a string.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Has reports whether key holds a non-nil, non-empty value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && s == "" {
		return false
	}
	return true
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
