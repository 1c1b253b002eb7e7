// Package importer implements the two load stages: places (small, upserted
// in one transaction) and people (large, streamed in fixed-size batches).
// Both stages share the same shape: stream rows off the CSV, normalize and
// validate each one, log-and-skip the bad rows, and hand the good rows to
// the storage.Repository.
package importer

import (
	"fmt"
	"sort"
	"strings"

	"peopleetl/pkg/records"
)

// Skip reasons aggregated into the stage summary. Validation failures carry
// their own generated reason text; these cover the structural cases.
const (
	ReasonParse      = "csv parse error"
	ReasonFieldCount = "wrong field count"
)

// Summary describes one load stage's outcome.
type Summary struct {
	Read    int64          // rows read off the CSV (excluding the header)
	Loaded  int64          // rows the store reported as inserted
	Skipped int64          // rows dropped before reaching the store
	Dups    int64          // intra-file duplicate keys (places only; informational)
	Reasons map[string]int // skip reason -> count
}

// addSkip records one dropped row under the given reason.
func (s *Summary) addSkip(reason string) {
	s.Skipped++
	if s.Reasons == nil {
		s.Reasons = make(map[string]int)
	}
	s.Reasons[reason]++
}

// String renders the summary for the end-of-stage log line, with reasons in
// deterministic order.
func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "read=%d loaded=%d skipped=%d", s.Read, s.Loaded, s.Skipped)
	if s.Dups > 0 {
		fmt.Fprintf(&sb, " duplicates=%d", s.Dups)
	}
	if len(s.Reasons) > 0 {
		keys := make([]string, 0, len(s.Reasons))
		for k := range s.Reasons {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" reasons=[")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString("; ")
			}
			fmt.Fprintf(&sb, "%s: %d", k, s.Reasons[k])
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// rawRow renders a record for the skip audit file.
func rawRow(r records.Record) string {
	if len(r) == 0 {
		return ""
	}
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, r[k]))
	}
	return strings.Join(parts, ",")
}
