package extraction

import (
	"strings"
	"time"

	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
)

// dateLayouts are the date shapes accepted from the service; values are
// normalized to the first one.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006", "2006/01/02"}

// Validate checks obj against the schema of def and returns the normalized
// fields. Every offending field is reported, in schema order, as a single
// SchemaMismatch. Keys unknown to the schema are kept as-is.
func Validate(def *document.Definition, obj map[string]any) (map[string]any, error) {
	fields := make(map[string]any, len(obj))
	for k, v := range obj {
		fields[k] = v
	}

	var bad []string
	var reasons []string
	for _, f := range def.Schema.Fields {
		v, present := obj[f.Name]
		if !present || empty(v) {
			if f.Required {
				bad = append(bad, f.Name)
				reasons = append(reasons, f.Name+" missing")
				continue
			}
			fields[f.Name] = zero(f.Type)
			continue
		}

		norm, ok := coerce(f.Type, v)
		if !ok {
			bad = append(bad, f.Name)
			reasons = append(reasons, f.Name+" is not a "+string(f.Type))
			continue
		}
		if f.Validate != "" {
			if err := document.Validator().Var(norm, f.Validate); err != nil {
				bad = append(bad, f.Name)
				reasons = append(reasons, f.Name+" fails "+f.Validate)
				continue
			}
		}
		fields[f.Name] = norm
	}

	if len(bad) > 0 {
		return nil, &errors.ExtractionError{
			Kind:         errors.SchemaMismatch,
			DocumentType: def.Type.String(),
			Fields:       bad,
			Err:          errors.New(strings.Join(reasons, "; ")),
		}
	}
	return fields, nil
}

func empty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	}
	return false
}

// zero is the value an absent optional field takes so templates can still
// reference it.
func zero(t document.FieldType) any {
	switch t {
	case document.FieldList:
		return []any{}
	case document.FieldString, document.FieldDate:
		return ""
	}
	return nil
}

func coerce(t document.FieldType, v any) (any, bool) {
	switch t {
	case document.FieldString:
		s, ok := v.(string)
		return strings.TrimSpace(s), ok
	case document.FieldNumber:
		n, ok := v.(float64)
		return n, ok
	case document.FieldBoolean:
		b, ok := v.(bool)
		return b, ok
	case document.FieldDate:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.Format(dateLayouts[0]), true
			}
		}
		return nil, false
	case document.FieldList:
		switch items := v.(type) {
		case []any:
			return items, true
		case string:
			// a single prescription sometimes arrives as a bare string
			return []any{strings.TrimSpace(items)}, true
		}
		return nil, false
	}
	return nil, false
}
