package schema

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// Args holds validated argument values keyed by field name. Text values are
// already trimmed. Absent optional fields have no entry.
type Args struct {
	values map[string]string
}

// NewArgs builds Args directly, bypassing validation. Useful in handler tests.
func NewArgs(values map[string]string) Args {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Args{values: m}
}

// String returns the value of name, or "" when absent.
func (a Args) String(name string) string {
	return a.values[name]
}

// Lookup returns the value of name and whether it was supplied.
func (a Args) Lookup(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Len returns the number of supplied values.
func (a Args) Len() int { return len(a.values) }

// Validate checks raw against s. Unknown keys are ignored. A JSON null is
// treated the same as an absent key.
func Validate(s *ParamSchema, raw map[string]json.RawMessage) (Args, error) {
	args := Args{values: make(map[string]string, s.Len())}
	var errs ValidationErrors

	for _, f := range s.Fields() {
		v, present, ok := stringValue(raw[f.Name])
		if !ok {
			errs = append(errs, &ValidationError{Field: f.Name, Reason: ReasonNotText})
			continue
		}

		switch f.Type {
		case TypeText:
			if !present {
				errs = append(errs, &ValidationError{Field: f.Name, Reason: ReasonMissing})
				continue
			}
			v = strings.TrimSpace(v)
			if v == "" {
				errs = append(errs, &ValidationError{Field: f.Name, Reason: ReasonEmpty})
				continue
			}
			args.values[f.Name] = v

		case TypeOptionalText:
			v = strings.TrimSpace(v)
			if !present || v == "" {
				continue
			}
			args.values[f.Name] = v

		case TypeEnum:
			if !present {
				errs = append(errs, &ValidationError{Field: f.Name, Reason: ReasonMissing})
				continue
			}
			if !slices.Contains(f.Values, v) {
				errs = append(errs, &ValidationError{Field: f.Name, Reason: enumReason(f.Values)})
				continue
			}
			args.values[f.Name] = v
		}
	}

	if len(errs) > 0 {
		return Args{}, errs
	}
	return args, nil
}

// stringValue decodes a raw JSON value expected to be a string. present is
// false for a missing key or JSON null; ok is false for any non-string value.
func stringValue(raw json.RawMessage) (v string, present bool, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, true
	}
	if raw[0] != '"' {
		return "", true, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", true, false
	}
	return v, true, true
}
