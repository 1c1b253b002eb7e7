// Package transformer defines the record transformation contract applied
// between parsing and loading.
package transformer

import "peopleetl/pkg/records"

// Transformer rewrites or filters a batch of records in place.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer in order over the batch.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
