package builtin

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"peopleetl/internal/schema"
	"peopleetl/pkg/records"
)

// Validate checks records against a schema.Contract. It precomputes per-field
// metadata once so the per-row path stays cheap.
//
// The check set is deliberately narrow: required presence, the declared value
// kind (with strict date parsing against the field's layout), and enum
// membership. Anything beyond that is the store's job.
type Validate struct {
	Contract   schema.Contract
	DateLayout string            // optional global fallback date layout
	Reject     func(RejectedRow) // optional sink for dropped rows

	metaOnce sync.Once
	meta     []fieldMeta
}

// RejectedRow describes one record dropped by validation.
type RejectedRow struct {
	Line   int
	Raw    records.Record
	Reason string
	Stage  string
}

type fieldMeta struct {
	name     string
	kind     string // "int","bool","date","string"
	required bool
	layout   string

	enumSet  map[string]struct{}
	enumList []string
}

var (
	boolTruthy = map[string]struct{}{"1": {}, "t": {}, "true": {}, "yes": {}, "y": {}}
	boolFalsy  = map[string]struct{}{"0": {}, "f": {}, "false": {}, "no": {}, "n": {}}
)

func (v *Validate) buildMeta() {
	v.metaOnce.Do(func() {
		v.meta = make([]fieldMeta, 0, len(v.Contract.Fields))
		for _, f := range v.Contract.Fields {
			m := fieldMeta{
				name:     f.Name,
				kind:     normalizeKind(f.Type),
				required: f.Required,
				layout:   f.Layout,
			}
			if len(f.Enum) > 0 {
				m.enumSet = make(map[string]struct{}, len(f.Enum))
				for _, s := range f.Enum {
					m.enumSet[s] = struct{}{}
				}
				m.enumList = append(m.enumList, f.Enum...)
			}
			v.meta = append(v.meta, m)
		}
	})
}

// Apply validates each record. Valid records are appended to a new slice;
// invalid ones are dropped and reported via Reject when set.
func (v *Validate) Apply(in []records.Record) []records.Record {
	out := make([]records.Record, 0, len(in))
	for _, rec := range in {
		if ok, reason := v.Check(rec); ok {
			out = append(out, rec)
		} else if v.Reject != nil {
			v.Reject(RejectedRow{Raw: rec, Reason: reason, Stage: "validate"})
		}
	}
	return out
}

// Check validates a single record against the contract. It returns false and
// a human-readable reason on the first violated field.
func (v *Validate) Check(r records.Record) (bool, string) {
	v.buildMeta()

	for i := range v.meta {
		fm := v.meta[i]
		val, exists := r[fm.name]

		empty := !exists || val == nil || (isString(val) && val.(string) == "")
		if fm.required && empty {
			return false, fmt.Sprintf("required field %q missing", fm.name)
		}
		if empty {
			continue
		}

		switch fm.kind {
		case "int":
			switch t := val.(type) {
			case int, int32, int64:
				// ok
			case string:
				if _, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err != nil {
					return false, fmt.Sprintf("field %q: %q not an int", fm.name, t)
				}
			default:
				return false, fmt.Sprintf("field %q: type %T not int-convertible", fm.name, t)
			}

		case "bool":
			switch t := val.(type) {
			case bool:
				// ok
			case string:
				s := strings.ToLower(strings.TrimSpace(t))
				if _, ok := boolTruthy[s]; ok {
					break
				}
				if _, ok := boolFalsy[s]; ok {
					break
				}
				return false, fmt.Sprintf("field %q: %q not a recognized boolean", fm.name, t)
			default:
				return false, fmt.Sprintf("field %q: type %T not bool-convertible", fm.name, t)
			}

		case "date":
			switch t := val.(type) {
			case time.Time:
				// already coerced
			case string:
				if !parseAnyDate(t, fm.layout, v.DateLayout) {
					return false, fmt.Sprintf("field %q: invalid date %q", fm.name, t)
				}
			default:
				return false, fmt.Sprintf("field %q: type %T not date-convertible", fm.name, t)
			}

		case "string", "":
			// accept anything
		}

		if fm.enumSet != nil {
			s := asString(val)
			if _, ok := fm.enumSet[s]; !ok {
				return false, fmt.Sprintf("field %q: %q not in enum %v", fm.name, s, fm.enumList)
			}
		}
	}

	return true, ""
}

// asString converts common types to string without fmt.Sprint overhead.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// parseAnyDate attempts the field layout, then ISO (2006-01-02), then the
// global fallback layout. Returns true if any parse succeeds.
func parseAnyDate(s, fieldLayout, globalLayout string) bool {
	if fieldLayout != "" {
		if _, err := time.Parse(fieldLayout, s); err == nil {
			return true
		}
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	if globalLayout != "" {
		if _, err := time.Parse(globalLayout, s); err == nil {
			return true
		}
	}
	return false
}

// normalizeKind maps schema field types onto the validator's kind switch.
func normalizeKind(t string) string {
	switch s := strings.ToLower(t); s {
	case "bigint", "int8", "integer", "int4", "int2", "int":
		return "int"
	case "boolean", "bool":
		return "bool"
	case "date", "timestamp", "timestamptz":
		return "date"
	case "text", "string":
		return "string"
	default:
		return s
	}
}
