package records

import (
	"time"
)

// Record is a single row of a remote collection. Field values arrive as
// loosely-typed JSON; the helpers below normalize them at the ingestion
// boundary so downstream code never branches on shape.
type Record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// Str returns the field as a scalar string. Single-element collections
// collapse to their first element; anything else is treated as absent.
func (r Record) Str(key string) string {
	return asStr(r.Fields[key])
}

// StrList returns the field as a list of strings. A scalar value becomes a
// single-element list, so array-valued and scalar-valued foreign keys read
// the same way.
func (r Record) StrList(key string) []string {
	switch v := r.Fields[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Float returns the field as a float64, defaulting to zero for anything
// non-numeric.
func (r Record) Float(key string) float64 {
	switch v := r.Fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// ObjList returns the field as a list of objects, for attachment-style
// fields whose elements are maps.
func (r Record) ObjList(key string) []map[string]any {
	items, ok := r.Fields[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// CreatedAt returns the record's creation timestamp, preferring the named
// field over the record metadata. Missing or unparseable timestamps sort as
// epoch zero, so the zero time is returned for them.
func (r Record) CreatedAt(key string) time.Time {
	for _, raw := range []string{r.Str(key), r.CreatedTime} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasRef reports whether a foreign-key field names the given id. Scalar and
// array-valued references match alike.
func (r Record) HasRef(key, id string) bool {
	if id == "" {
		return false
	}
	for _, ref := range r.StrList(key) {
		if ref == id {
			return true
		}
	}
	return false
}

func asStr(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}
