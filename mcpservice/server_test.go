package mcpservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ggoodman/weather-mcp-go/mcp"
	"github.com/ggoodman/weather-mcp-go/schema"
)

var cityParams = schema.MustNew(schema.Text("city", "City name"))

func echoTool() Tool {
	return NewTool("echo", cityParams, func(ctx context.Context, w ToolResponseWriter, args schema.Args) error {
		return w.AppendText("hello " + args.String("city"))
	}, WithToolDescription("Echo"))
}

func greetPrompt() Prompt {
	params := schema.MustNew(
		schema.Text("name", "Who to greet"),
		schema.OptionalText("tone", "How to greet"),
	)
	return NewPrompt("greet", params, func(ctx context.Context, args schema.Args) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: "Greeting",
			Messages:    []mcp.PromptMessage{UserText("hi " + args.String("name"))},
		}, nil
	}, WithPromptDescription("Greet someone"))
}

func TestNewServer_RegistersToolsAndPrompts(t *testing.T) {
	srv, err := NewServer(WithTools(echoTool()), WithPrompts(greetPrompt()))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	tools := srv.Tools()
	if len(tools) != 1 || tools[0].Name != "echo" || tools[0].Description != "Echo" || tools[0].InputSchema == nil {
		t.Fatalf("tools = %+v", tools)
	}
	prompts := srv.Prompts()
	if len(prompts) != 1 || len(prompts[0].Arguments) != 2 {
		t.Fatalf("prompts = %+v", prompts)
	}
	if !prompts[0].Arguments[0].Required || prompts[0].Arguments[1].Required {
		t.Fatalf("argument requiredness wrong: %+v", prompts[0].Arguments)
	}

	d, err := srv.Registry().Lookup(KindTool, "echo")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	out, err := d.Invoke(context.Background(), schema.NewArgs(map[string]string{"city": "Oslo"}))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	res, ok := out.(*mcp.CallToolResult)
	if !ok || len(res.Content) != 1 || res.Content[0].Text != "hello Oslo" || res.Content[0].Type != mcp.ContentTypeText {
		t.Fatalf("unexpected result: %#v", out)
	}

	pd, err := srv.Registry().Lookup(KindPrompt, "greet")
	if err != nil {
		t.Fatalf("lookup prompt: %v", err)
	}
	pout, err := pd.Invoke(context.Background(), schema.NewArgs(map[string]string{"name": "Ada"}))
	if err != nil {
		t.Fatalf("invoke prompt: %v", err)
	}
	pres := pout.(*mcp.GetPromptResult)
	if len(pres.Messages) != 1 || pres.Messages[0].Role != mcp.RoleUser || pres.Messages[0].Content.Text != "hi Ada" {
		t.Fatalf("unexpected prompt result: %+v", pres)
	}
}

func TestNewServer_DuplicateToolIsFatal(t *testing.T) {
	_, err := NewServer(WithTools(echoTool(), echoTool()))
	var dup *DuplicateNameError
	if !errors.As(err, &dup) || dup.Kind != KindTool {
		t.Fatalf("expected duplicate tool error, got %v", err)
	}
}

func TestTool_HandlerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	tool := NewTool("fail", nil, func(context.Context, ToolResponseWriter, schema.Args) error { return boom })
	srv, err := NewServer(WithTools(tool))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	d, _ := srv.Registry().Lookup(KindTool, "fail")
	if _, err := d.Invoke(context.Background(), schema.Args{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestServer_Capabilities(t *testing.T) {
	srv, err := NewServer(WithTools(echoTool()))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	caps := srv.Capabilities()
	if caps.Tools == nil || caps.Prompts != nil || caps.Logging != nil {
		t.Fatalf("caps = %+v", caps)
	}
	if err := srv.SetLogLevel(mcp.LoggingLevelDebug); !errors.Is(err, ErrLoggingUnsupported) {
		t.Fatalf("expected ErrLoggingUnsupported, got %v", err)
	}
}

func TestServer_SetLogLevel(t *testing.T) {
	var lv slog.LevelVar
	srv, err := NewServer(WithLogLevelVar(&lv))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if srv.Capabilities().Logging == nil {
		t.Fatalf("logging capability not advertised")
	}
	cases := map[mcp.LoggingLevel]slog.Level{
		mcp.LoggingLevelDebug:     slog.LevelDebug,
		mcp.LoggingLevelNotice:    slog.LevelInfo,
		mcp.LoggingLevelWarning:   slog.LevelWarn,
		mcp.LoggingLevelEmergency: slog.LevelError,
	}
	for in, want := range cases {
		if err := srv.SetLogLevel(in); err != nil {
			t.Fatalf("SetLogLevel(%s): %v", in, err)
		}
		if lv.Level() != want {
			t.Fatalf("SetLogLevel(%s) -> %v, want %v", in, lv.Level(), want)
		}
	}
	if err := srv.SetLogLevel("verbose"); !errors.Is(err, ErrInvalidLoggingLevel) {
		t.Fatalf("expected ErrInvalidLoggingLevel, got %v", err)
	}
}

func TestToolResponseWriter_Finalize(t *testing.T) {
	w := newToolResponseWriter(context.Background())
	if err := w.AppendText("a"); err != nil {
		t.Fatalf("append: %v", err)
	}
	res := w.Result()
	if len(res.Content) != 1 || res.IsError {
		t.Fatalf("result = %+v", res)
	}
	if err := w.AppendText("b"); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w2 := newToolResponseWriter(ctx)
	if err := w2.AppendText("x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := w2.Result(); got.Content == nil {
		t.Fatalf("empty result must still carry a content array")
	}
}
