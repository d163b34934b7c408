package mcpservice

import (
	"context"

	"github.com/ggoodman/weather-mcp-go/mcp"
	"github.com/ggoodman/weather-mcp-go/schema"
)

// ToolFunc handles a tool invocation. Arguments have been validated against
// the tool's schema. Returning an error turns the call into a handler error
// response carrying the error's message.
type ToolFunc func(ctx context.Context, w ToolResponseWriter, args schema.Args) error

// Tool pairs an MCP tool descriptor with its parameter schema and handler.
type Tool struct {
	Descriptor mcp.Tool
	Params     *schema.ParamSchema
	Handler    ToolFunc
}

// ToolOption configures NewTool behavior.
type ToolOption func(*toolConfig)

type toolConfig struct {
	description string
}

// WithToolDescription sets the tool description used in listings.
func WithToolDescription(desc string) ToolOption {
	return func(c *toolConfig) { c.description = desc }
}

// NewTool constructs a writer-based tool. A nil params declares a tool that
// takes no arguments.
func NewTool(name string, params *schema.ParamSchema, fn ToolFunc, opts ...ToolOption) Tool {
	cfg := toolConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if params == nil {
		params = schema.MustNew()
	}
	return Tool{
		Descriptor: mcp.Tool{
			Name:        name,
			Description: cfg.description,
			InputSchema: params.JSONSchema(),
		},
		Params:  params,
		Handler: fn,
	}
}

// descriptor adapts t to a registry entry.
func (t Tool) descriptor() Descriptor {
	fn := t.Handler
	var invoke InvokeFunc
	if fn != nil {
		invoke = func(ctx context.Context, args schema.Args) (any, error) {
			w := newToolResponseWriter(ctx)
			if err := fn(ctx, w, args); err != nil {
				return nil, err
			}
			return w.Result(), nil
		}
	}
	return Descriptor{
		Name:        t.Descriptor.Name,
		Kind:        KindTool,
		Description: t.Descriptor.Description,
		Schema:      t.Params,
		Invoke:      invoke,
	}
}

// TextResult is a convenience for a single text block result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{mcp.TextBlock(text)}}
}
