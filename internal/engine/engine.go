package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ggoodman/weather-mcp-go/internal/jsonrpc"
	"github.com/ggoodman/weather-mcp-go/internal/logctx"
	"github.com/ggoodman/weather-mcp-go/mcp"
	"github.com/ggoodman/weather-mcp-go/mcpservice"
	"github.com/ggoodman/weather-mcp-go/schema"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ggoodman/weather-mcp-go/internal/engine"

// methodOther labels metrics for methods the server does not know.
const methodOther = "other"

// Engine turns one inbound message into at most one response. It holds the
// per-connection protocol state (initialization, client info) and is
// transport-agnostic: the caller owns framing and the byte stream.
//
// Handle is safe for concurrent use but transports are expected to call it
// from a single goroutine to keep responses in arrival order.
type Engine struct {
	srv     *mcpservice.Server
	log     *slog.Logger
	id      string
	metrics *metrics
	tracer  trace.Tracer

	mu          sync.Mutex
	initialized bool
	client      mcp.ImplementationInfo
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	log *slog.Logger
	reg prometheus.Registerer
	tp  trace.TracerProvider
}

// WithLogger sets a custom logger for the Engine.
func WithLogger(l *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRegisterer sets the registry request metrics are recorded in. The
// default is a private registry, which keeps metrics out of the global one.
func WithRegisterer(reg prometheus.Registerer) EngineOption {
	return func(c *engineConfig) {
		if reg != nil {
			c.reg = reg
		}
	}
}

// WithTracerProvider sets the provider request spans are started from. The
// default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) EngineOption {
	return func(c *engineConfig) {
		if tp != nil {
			c.tp = tp
		}
	}
}

// NewEngine builds an Engine serving srv.
func NewEngine(srv *mcpservice.Server, opts ...EngineOption) *Engine {
	cfg := engineConfig{log: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.reg == nil {
		cfg.reg = prometheus.NewRegistry()
	}
	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}
	return &Engine{
		srv:     srv,
		log:     cfg.log,
		id:      uuid.NewString(),
		metrics: newMetrics(cfg.reg),
		tracer:  cfg.tp.Tracer(tracerName),
	}
}

// ID returns the process-unique engine id.
func (e *Engine) ID() string { return e.id }

// Initialized reports whether the client completed the initialize handshake.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// ClientInfo returns the implementation info sent with initialize, if any.
func (e *Engine) ClientInfo() mcp.ImplementationInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client
}

// Handle processes one decoded frame. It returns nil when the message must
// not be answered (notifications and client responses). Handle never panics
// on behalf of a handler.
func (e *Engine) Handle(ctx context.Context, msg jsonrpc.Message) *jsonrpc.Response {
	start := time.Now()

	env, err := decodeEnvelope(msg)
	if err != nil {
		e.log.InfoContext(ctx, "engine.handle_request.invalid", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		e.metrics.observe(methodOther, outcome(err), time.Since(start))
		return errorResponse(env.ID, err)
	}
	if env.Response {
		e.log.DebugContext(ctx, "engine.handle_response.ignored")
		return nil
	}

	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{
		Method: env.Method,
		ID:     env.ID.String(),
		Type:   messageType(env),
	})

	if env.notification() {
		e.handleNotification(ctx, env)
		return nil
	}

	label := env.Method
	if _, ok := knownMethods[mcp.Method(env.Method)]; !ok {
		label = methodOther
	}
	ctx, span := e.tracer.Start(ctx, label,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", env.Method),
			attribute.String("rpc.jsonrpc.request_id", env.ID.String()),
			attribute.String("mcp.session_id", e.id),
		),
	)
	defer span.End()

	result, err := e.dispatch(ctx, env)
	e.finish(ctx, label, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		return errorResponse(env.ID, err)
	}

	resp, err := jsonrpc.NewResultResponse(env.ID, result)
	if err != nil {
		e.log.ErrorContext(ctx, "engine.encode_result.fail", slog.String("err", err.Error()))
		return errorResponse(env.ID, err)
	}
	return resp
}

// HandleFrameError answers a frame the codec could not decode. The response
// has a null id because nothing in the frame can be trusted.
func (e *Engine) HandleFrameError(ctx context.Context, err error) *jsonrpc.Response {
	e.log.InfoContext(ctx, "engine.handle_request.invalid", slog.String("err", err.Error()))
	e.metrics.observe(methodOther, outcome(err), 0)
	return errorResponse(nil, err)
}

var knownMethods = map[mcp.Method]struct{}{
	mcp.InitializeMethod:      {},
	mcp.PingMethod:            {},
	mcp.ToolsListMethod:       {},
	mcp.ToolsCallMethod:       {},
	mcp.PromptsListMethod:     {},
	mcp.PromptsGetMethod:      {},
	mcp.LoggingSetLevelMethod: {},
	mcp.CompactToolMethod:     {},
	mcp.CompactPromptMethod:   {},
}

func (e *Engine) dispatch(ctx context.Context, env *envelope) (any, error) {
	switch mcp.Method(env.Method) {
	case mcp.InitializeMethod:
		return e.handleInitialize(ctx, env)
	case mcp.PingMethod:
		return &mcp.EmptyResult{}, nil
	case mcp.ToolsListMethod:
		return &mcp.ListToolsResult{Tools: e.srv.Tools()}, nil
	case mcp.PromptsListMethod:
		return &mcp.ListPromptsResult{Prompts: e.srv.Prompts()}, nil
	case mcp.LoggingSetLevelMethod:
		return e.handleSetLoggingLevel(ctx, env)
	case mcp.ToolsCallMethod:
		var params mcp.CallToolRequestReceived
		if err := decodeParams(env.Params, &params); err != nil {
			return nil, err
		}
		if params.Name == "" {
			return nil, &schema.ValidationError{Field: "name", Reason: schema.ReasonMissing}
		}
		return e.invoke(ctx, mcpservice.KindTool, params.Name, params.Arguments)
	case mcp.PromptsGetMethod:
		var params mcp.GetPromptRequestReceived
		if err := decodeParams(env.Params, &params); err != nil {
			return nil, err
		}
		if params.Name == "" {
			return nil, &schema.ValidationError{Field: "name", Reason: schema.ReasonMissing}
		}
		return e.invoke(ctx, mcpservice.KindPrompt, params.Name, params.Arguments)
	case mcp.CompactToolMethod, mcp.CompactPromptMethod:
		if !env.HasName || env.Name == "" {
			return nil, &ProtocolError{Reason: "missing name"}
		}
		kind := mcpservice.KindTool
		if env.Method == string(mcp.CompactPromptMethod) {
			kind = mcpservice.KindPrompt
		}
		return e.invoke(ctx, kind, env.Name, env.Params)
	default:
		return nil, &MethodNotFoundError{Method: env.Method}
	}
}

// invoke runs the Received -> Validated -> Invoked pipeline for one handler.
func (e *Engine) invoke(ctx context.Context, kind mcpservice.Kind, name string, rawArgs json.RawMessage) (any, error) {
	ctx = logctx.WithCallData(ctx, &logctx.CallData{Kind: kind.String(), Name: name})
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("mcp.kind", kind.String()),
		attribute.String("mcp.name", name),
	)

	d, err := e.srv.Registry().Lookup(kind, name)
	if err != nil {
		return nil, err
	}

	fields, ok := decodeArguments(rawArgs)
	if !ok {
		return nil, &schema.ValidationError{Field: "arguments", Reason: "must be an object"}
	}
	args, err := schema.Validate(d.Schema, fields)
	if err != nil {
		return nil, err
	}

	return e.call(ctx, d, args)
}

func (e *Engine) call(ctx context.Context, d mcpservice.Descriptor, args schema.Args) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.ErrorContext(ctx, "engine.handler.panic", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			res = nil
			err = &HandlerError{Kind: d.Kind, Name: d.Name, Err: fmt.Errorf("%s %q panicked: %v", d.Kind, d.Name, r)}
		}
	}()

	res, err = d.Invoke(ctx, args)
	if err != nil {
		return nil, &HandlerError{Kind: d.Kind, Name: d.Name, Err: err}
	}
	return res, nil
}

func (e *Engine) handleInitialize(ctx context.Context, env *envelope) (any, error) {
	var req mcp.InitializeRequest
	if err := decodeParams(env.Params, &req); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.client = req.ClientInfo
	e.mu.Unlock()

	version := req.ProtocolVersion
	if version == "" {
		version = mcp.LatestProtocolVersion
	}

	e.log.InfoContext(ctx, "engine.initialize",
		slog.String("client_name", req.ClientInfo.Name),
		slog.String("client_version", req.ClientInfo.Version),
		slog.String("protocol_version", version),
	)

	return &mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    e.srv.Capabilities(),
		ServerInfo:      e.srv.Info(),
		Instructions:    e.srv.Instructions(),
	}, nil
}

func (e *Engine) handleSetLoggingLevel(ctx context.Context, env *envelope) (any, error) {
	if !e.srv.SupportsLogging() {
		return nil, &MethodNotFoundError{Method: env.Method}
	}
	var params mcp.SetLevelRequest
	if err := decodeParams(env.Params, &params); err != nil {
		return nil, err
	}
	if err := e.srv.SetLogLevel(params.Level); err != nil {
		return nil, &schema.ValidationError{Field: "level", Reason: err.Error()}
	}
	return &mcp.EmptyResult{}, nil
}

func (e *Engine) handleNotification(ctx context.Context, env *envelope) {
	switch mcp.Method(env.Method) {
	case mcp.InitializedNotificationMethod:
		e.mu.Lock()
		e.initialized = true
		e.mu.Unlock()
		e.log.InfoContext(ctx, "engine.session.initialized")
	case mcp.CancelledNotificationMethod:
		// Requests run to completion one at a time, so by the time a
		// cancellation is read its target has already been answered.
		e.log.DebugContext(ctx, "engine.handle_notification.cancelled")
	default:
		e.log.DebugContext(ctx, "engine.handle_notification.ignored")
	}
}

func (e *Engine) finish(ctx context.Context, method string, start time.Time, err error) {
	dur := time.Since(start)
	out := outcome(err)
	e.metrics.observe(method, out, dur)

	attrs := []slog.Attr{slog.Int64("dur_ms", dur.Milliseconds())}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	level := slog.LevelInfo
	if out == "fail" || out == "error" {
		level = slog.LevelError
	}
	e.log.LogAttrs(ctx, level, "engine.handle_request."+out, attrs...)
}

// decodeParams decodes params into v. Missing params decode as an empty object.
func decodeParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &schema.ValidationError{Field: "params", Reason: err.Error()}
	}
	return nil
}

func messageType(env *envelope) string {
	if env.notification() {
		return "notification"
	}
	return "request"
}
