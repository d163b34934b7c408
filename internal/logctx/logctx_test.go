package logctx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestHandler_AddsContextGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)}).With("component", "test")

	ctx := WithSessionData(context.Background(), &SessionData{SessionID: "s1", Transport: "stdio"})
	ctx = WithRPCMessage(ctx, &RPCMessage{Method: "tools/call", ID: "7", Type: "request"})
	ctx = WithCallData(ctx, &CallData{Kind: "tool", Name: "get_weather"})
	log.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["component"] != "test" {
		t.Fatalf("WithAttrs dropped: %v", rec)
	}
	rpc, _ := rec["rpc"].(map[string]any)
	if rpc["method"] != "tools/call" || rpc["id"] != "7" {
		t.Fatalf("rpc group = %v", rec["rpc"])
	}
	sess, _ := rec["sess"].(map[string]any)
	if sess["id"] != "s1" {
		t.Fatalf("sess group = %v", rec["sess"])
	}
	tool, _ := rec["tool"].(map[string]any)
	if tool["name"] != "get_weather" {
		t.Fatalf("tool group = %v", rec["tool"])
	}
}

func TestHandler_NoContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)})
	log.Info("plain")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := rec["rpc"]; ok {
		t.Fatalf("unexpected rpc group: %v", rec)
	}
}
