package mcpservice

import (
	"context"

	"github.com/ggoodman/weather-mcp-go/mcp"
	"github.com/ggoodman/weather-mcp-go/schema"
)

// PromptFunc materializes a prompt from validated arguments.
type PromptFunc func(ctx context.Context, args schema.Args) (*mcp.GetPromptResult, error)

// Prompt pairs a prompt descriptor with its parameter schema and handler.
type Prompt struct {
	Descriptor mcp.Prompt
	Params     *schema.ParamSchema
	Handler    PromptFunc
}

// PromptOption configures NewPrompt behavior.
type PromptOption func(*promptConfig)

type promptConfig struct {
	description string
}

// WithPromptDescription sets the prompt description used in listings.
func WithPromptDescription(desc string) PromptOption {
	return func(c *promptConfig) { c.description = desc }
}

// NewPrompt constructs a prompt whose listed arguments are derived from params.
func NewPrompt(name string, params *schema.ParamSchema, fn PromptFunc, opts ...PromptOption) Prompt {
	cfg := promptConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if params == nil {
		params = schema.MustNew()
	}
	return Prompt{
		Descriptor: mcp.Prompt{
			Name:        name,
			Description: cfg.description,
			Arguments:   promptArguments(params),
		},
		Params:  params,
		Handler: fn,
	}
}

func (p Prompt) descriptor() Descriptor {
	fn := p.Handler
	var invoke InvokeFunc
	if fn != nil {
		invoke = func(ctx context.Context, args schema.Args) (any, error) {
			res, err := fn(ctx, args)
			if err != nil {
				return nil, err
			}
			if res == nil {
				res = &mcp.GetPromptResult{}
			}
			if res.Messages == nil {
				res.Messages = []mcp.PromptMessage{}
			}
			return res, nil
		}
	}
	return Descriptor{
		Name:        p.Descriptor.Name,
		Kind:        KindPrompt,
		Description: p.Descriptor.Description,
		Schema:      p.Params,
		Invoke:      invoke,
	}
}

func promptArguments(params *schema.ParamSchema) []mcp.PromptArgument {
	fields := params.Fields()
	if len(fields) == 0 {
		return nil
	}
	out := make([]mcp.PromptArgument, len(fields))
	for i, f := range fields {
		out[i] = mcp.PromptArgument{Name: f.Name, Description: f.Description, Required: f.Required()}
	}
	return out
}

// UserText builds a single user-role text message.
func UserText(text string) mcp.PromptMessage {
	return mcp.PromptMessage{Role: mcp.RoleUser, Content: mcp.TextBlock(text)}
}
