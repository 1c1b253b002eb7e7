// Package builtin contains the reusable transformers the loaders compose:
// whitespace normalization, type coercion, contract validation, and
// intra-file duplicate tracking.
package builtin

import (
	"strings"

	"peopleetl/pkg/records"
)

// Normalize trims surrounding whitespace from every string value and folds
// non-breaking spaces to plain spaces. Values trimmed down to "" become nil
// so they store as NULL.
type Normalize struct{}

// Apply rewrites records in place and returns the same slice.
func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
			if s == "" {
				r[k] = nil
			} else {
				r[k] = s
			}
		}
	}
	return in
}
