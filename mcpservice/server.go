package mcpservice

import (
	"log/slog"

	"github.com/ggoodman/weather-mcp-go/mcp"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	info         mcp.ImplementationInfo
	instructions string
	tools        []Tool
	prompts      []Prompt
	levelVar     *slog.LevelVar
}

// Server is the immutable set of handlers and metadata a transport serves.
// Build it once at startup and share it between connections.
type Server struct {
	info         mcp.ImplementationInfo
	instructions string
	registry     *Registry
	tools        []mcp.Tool
	prompts      []mcp.Prompt
	logging      *slogLevelVarLogging
}

// NewServer registers every tool and prompt supplied through options and
// freezes the result. A name registered twice for the same kind yields a
// *DuplicateNameError.
func NewServer(opts ...ServerOption) (*Server, error) {
	cfg := serverConfig{
		info: mcp.ImplementationInfo{Name: "mcp-server", Version: "0.0.0"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	b := NewRegistryBuilder()
	s := &Server{
		info:         cfg.info,
		instructions: cfg.instructions,
		tools:        make([]mcp.Tool, 0, len(cfg.tools)),
		prompts:      make([]mcp.Prompt, 0, len(cfg.prompts)),
	}
	for _, t := range cfg.tools {
		if err := b.Register(t.descriptor()); err != nil {
			return nil, err
		}
		s.tools = append(s.tools, t.Descriptor)
	}
	for _, p := range cfg.prompts {
		if err := b.Register(p.descriptor()); err != nil {
			return nil, err
		}
		s.prompts = append(s.prompts, p.Descriptor)
	}
	s.registry = b.Build()
	if cfg.levelVar != nil {
		s.logging = &slogLevelVarLogging{lv: cfg.levelVar}
	}
	return s, nil
}

// WithServerInfo sets the implementation info returned from initialize.
func WithServerInfo(info mcp.ImplementationInfo) ServerOption {
	return func(c *serverConfig) { c.info = info }
}

// WithInstructions sets static human-readable instructions returned during initialize.
func WithInstructions(instr string) ServerOption {
	return func(c *serverConfig) { c.instructions = instr }
}

// WithTools appends tools to the server.
func WithTools(tools ...Tool) ServerOption {
	return func(c *serverConfig) { c.tools = append(c.tools, tools...) }
}

// WithPrompts appends prompts to the server.
func WithPrompts(prompts ...Prompt) ServerOption {
	return func(c *serverConfig) { c.prompts = append(c.prompts, prompts...) }
}

// WithLogLevelVar enables the logging capability. logging/setLevel requests
// adjust lv.
func WithLogLevelVar(lv *slog.LevelVar) ServerOption {
	return func(c *serverConfig) { c.levelVar = lv }
}

// Info returns the server implementation info.
func (s *Server) Info() mcp.ImplementationInfo { return s.info }

// Instructions returns the initialize instructions, possibly empty.
func (s *Server) Instructions() string { return s.instructions }

// Registry returns the frozen handler registry.
func (s *Server) Registry() *Registry { return s.registry }

// Tools returns the tool descriptors in registration order.
func (s *Server) Tools() []mcp.Tool {
	out := make([]mcp.Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// Prompts returns the prompt descriptors in registration order.
func (s *Server) Prompts() []mcp.Prompt {
	out := make([]mcp.Prompt, len(s.prompts))
	copy(out, s.prompts)
	return out
}

// Capabilities reports what the server advertises during initialize.
func (s *Server) Capabilities() mcp.ServerCapabilities {
	var caps mcp.ServerCapabilities
	if len(s.tools) > 0 {
		caps.Tools = &struct {
			ListChanged bool `json:"listChanged"`
		}{}
	}
	if len(s.prompts) > 0 {
		caps.Prompts = &struct {
			ListChanged bool `json:"listChanged"`
		}{}
	}
	if s.logging != nil {
		caps.Logging = &struct{}{}
	}
	return caps
}

// SupportsLogging reports whether logging/setLevel is available.
func (s *Server) SupportsLogging() bool { return s.logging != nil }

// SetLogLevel applies an MCP logging level. It returns ErrLoggingUnsupported
// when the server was built without WithLogLevelVar.
func (s *Server) SetLogLevel(level mcp.LoggingLevel) error {
	if s.logging == nil {
		return ErrLoggingUnsupported
	}
	return s.logging.SetLevel(level)
}
