package mcpservice

import (
	"context"
	"fmt"

	"github.com/ggoodman/weather-mcp-go/schema"
)

// Kind distinguishes the two handler namespaces. A tool and a prompt may share
// a name.
type Kind int

const (
	KindTool Kind = iota + 1
	KindPrompt
)

func (k Kind) String() string {
	switch k {
	case KindTool:
		return "tool"
	case KindPrompt:
		return "prompt"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// InvokeFunc runs a handler with arguments that already passed validation.
// Tools return *mcp.CallToolResult and prompts return *mcp.GetPromptResult.
type InvokeFunc func(ctx context.Context, args schema.Args) (any, error)

// Descriptor is the registry entry for one tool or prompt.
type Descriptor struct {
	Name        string
	Kind        Kind
	Description string
	Schema      *schema.ParamSchema
	Invoke      InvokeFunc
}

type registryKey struct {
	kind Kind
	name string
}

// RegistryBuilder collects descriptors before the server starts. Once Build
// has been called the builder rejects further registrations by panicking.
type RegistryBuilder struct {
	entries []*Descriptor
	index   map[registryKey]*Descriptor
	built   bool
}

// NewRegistryBuilder returns an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{index: make(map[registryKey]*Descriptor)}
}

// Register adds d. Names are unique per kind.
func (b *RegistryBuilder) Register(d Descriptor) error {
	if b.built {
		panic("mcpservice: Register called after Build")
	}
	if d.Name == "" {
		return fmt.Errorf("mcpservice: %s descriptor has no name", d.Kind)
	}
	if d.Kind != KindTool && d.Kind != KindPrompt {
		return fmt.Errorf("mcpservice: descriptor %q has invalid kind %s", d.Name, d.Kind)
	}
	if d.Invoke == nil {
		return fmt.Errorf("mcpservice: %s %q has no handler", d.Kind, d.Name)
	}
	k := registryKey{kind: d.Kind, name: d.Name}
	if _, exists := b.index[k]; exists {
		return &DuplicateNameError{Kind: d.Kind, Name: d.Name}
	}
	if d.Schema == nil {
		d.Schema = schema.MustNew()
	}
	entry := d
	b.entries = append(b.entries, &entry)
	b.index[k] = &entry
	return nil
}

// Build freezes the builder into a read-only Registry.
func (b *RegistryBuilder) Build() *Registry {
	b.built = true
	r := &Registry{
		index:  make(map[registryKey]*Descriptor, len(b.index)),
		byKind: make(map[Kind][]*Descriptor, 2),
	}
	for _, d := range b.entries {
		r.index[registryKey{kind: d.Kind, name: d.Name}] = d
		r.byKind[d.Kind] = append(r.byKind[d.Kind], d)
	}
	return r
}

// Registry is an immutable name to handler mapping. It is safe for
// concurrent use.
type Registry struct {
	index  map[registryKey]*Descriptor
	byKind map[Kind][]*Descriptor
}

// Lookup returns the descriptor registered under kind and name.
func (r *Registry) Lookup(kind Kind, name string) (Descriptor, error) {
	if r != nil {
		if d, ok := r.index[registryKey{kind: kind, name: name}]; ok {
			return *d, nil
		}
	}
	return Descriptor{}, &NotFoundError{Kind: kind, Name: name}
}

// List returns the descriptors of kind in registration order.
func (r *Registry) List(kind Kind) []Descriptor {
	if r == nil {
		return nil
	}
	src := r.byKind[kind]
	out := make([]Descriptor, len(src))
	for i, d := range src {
		out[i] = *d
	}
	return out
}

// Len returns the number of registered descriptors across both kinds.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.index)
}
