package schema

import (
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// JSONSchema renders s as a JSON Schema object for tool listings. Property
// order follows declaration order. Unknown properties are permitted, matching
// Validate.
func (s *ParamSchema) JSONSchema() *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string

	for _, f := range s.Fields() {
		prop := &jsonschema.Schema{
			Type:        "string",
			Description: f.Description,
		}
		switch f.Type {
		case TypeText:
			prop.MinLength = uint64Ptr(1)
		case TypeEnum:
			prop.Enum = make([]any, len(f.Values))
			for i, v := range f.Values {
				prop.Enum[i] = v
			}
		}
		props.Set(f.Name, prop)
		if f.Required() {
			required = append(required, f.Name)
		}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func uint64Ptr(v uint64) *uint64 { return &v }
