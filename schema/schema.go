// Package schema declares the parameters a tool or prompt accepts and
// validates untyped call arguments against them.
//
// A ParamSchema is an ordered list of fields drawn from a closed set of
// semantic types:
//
//	Text          required string, trimmed, must not be empty after trimming
//	OptionalText  string that may be absent; blank values count as absent
//	Enum          required string that must equal one of the declared values
//
// Validation is pure: it never mutates the schema or the input and returns
// either the validated Args or a ValidationErrors list naming every offending
// field in declaration order.
package schema

import (
	"errors"
	"fmt"
)

// Type is the semantic type tag of a field.
type Type int

const (
	TypeText Type = iota + 1
	TypeOptionalText
	TypeEnum
)

func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeOptionalText:
		return "optional text"
	case TypeEnum:
		return "enum"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Field is a single named parameter.
type Field struct {
	Name        string
	Description string
	Type        Type
	// Values lists the allowed values of an Enum field.
	Values []string
}

// Required reports whether the field must be present in every call.
func (f Field) Required() bool {
	return f.Type != TypeOptionalText
}

// Text declares a required text field.
func Text(name, description string) Field {
	return Field{Name: name, Description: description, Type: TypeText}
}

// OptionalText declares a text field that may be omitted.
func OptionalText(name, description string) Field {
	return Field{Name: name, Description: description, Type: TypeOptionalText}
}

// Enum declares a required field restricted to values.
func Enum(name, description string, values ...string) Field {
	return Field{Name: name, Description: description, Type: TypeEnum, Values: append([]string(nil), values...)}
}

// ParamSchema is an immutable, ordered set of fields.
type ParamSchema struct {
	fields []Field
	index  map[string]int
}

var (
	ErrEmptyFieldName = errors.New("schema: empty field name")
	ErrDuplicateField = errors.New("schema: duplicate field")
	ErrInvalidEnum    = errors.New("schema: invalid enum")
	ErrUnknownType    = errors.New("schema: unknown field type")
)

// New builds a ParamSchema. Field names must be unique and non-empty; enum
// fields need at least one value and no duplicates.
func New(fields ...Field) (*ParamSchema, error) {
	s := &ParamSchema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, ErrEmptyFieldName
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
		switch f.Type {
		case TypeText, TypeOptionalText:
		case TypeEnum:
			if len(f.Values) == 0 {
				return nil, fmt.Errorf("%w: %s has no values", ErrInvalidEnum, f.Name)
			}
			seen := make(map[string]struct{}, len(f.Values))
			for _, v := range f.Values {
				if _, dup := seen[v]; dup {
					return nil, fmt.Errorf("%w: %s repeats %q", ErrInvalidEnum, f.Name, v)
				}
				seen[v] = struct{}{}
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownType, f.Name)
		}
		f.Values = append([]string(nil), f.Values...)
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustNew is like New but panics on an invalid declaration. Intended for
// package-level schema variables.
func MustNew(fields ...Field) *ParamSchema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the declared fields in order.
func (s *ParamSchema) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a field by name.
func (s *ParamSchema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len returns the number of declared fields.
func (s *ParamSchema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}
