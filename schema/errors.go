package schema

import (
	"fmt"
	"strings"
)

// Reasons reported by ValidationError.
const (
	ReasonMissing = "missing"
	ReasonEmpty   = "empty"
	ReasonNotText = "must be a string"
	ReasonNotEnum = "must be one of"
)

// ValidationError names a field that failed validation and why.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// ValidationErrors collects every failing field of one validation pass, in
// schema order. errors.As(err, new(*ValidationError)) finds the first one.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	out := make([]error, len(v))
	for i, e := range v {
		out[i] = e
	}
	return out
}

func enumReason(values []string) string {
	return fmt.Sprintf("%s: %s", ReasonNotEnum, strings.Join(values, ", "))
}
