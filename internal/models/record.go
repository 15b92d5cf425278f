package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one case submission as received from the form source. Values are
// limited to string, float64, bool, Record and []any; nulls never appear.
// Records are read only after decoding.
type Record map[string]any

// Resolve returns the first alias whose value is present and non-blank after
// trimming its string form. Absence is reported as "".
func Resolve(r Record, aliases []string) string {
	return Stringify(ResolveValue(r, aliases))
}

// ResolveValue is Resolve without the string conversion, for callers that
// need to tell numbers from text.
func ResolveValue(r Record, aliases []string) any {
	if r == nil {
		return nil
	}
	for _, alias := range aliases {
		v, ok := r[alias]
		if !ok || v == nil {
			continue
		}
		if strings.TrimSpace(Stringify(v)) != "" {
			return v
		}
	}
	return nil
}

// Get resolves a canonical attribute through the alias table.
func (r Record) Get(field Field) string {
	return Resolve(r, field.Aliases())
}

// Object returns a nested mapping stored under key, if any.
func (r Record) Object(key string) (Record, bool) {
	if r == nil {
		return nil, false
	}
	switch v := r[key].(type) {
	case Record:
		return v, true
	case map[string]any:
		return Record(v), true
	default:
		return nil, false
	}
}

// Stringify renders a record value the way it is displayed and compared.
// Lists join their items with commas, so an empty list renders as "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
