package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestRequestID_EchoesOriginalRepresentation(t *testing.T) {
	for _, raw := range []string{`"abc"`, `1`, `9007199254740993`, `1.5`, `""`} {
		var id RequestID
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		out, err := json.Marshal(&id)
		if err != nil {
			t.Fatalf("marshal %s: %v", raw, err)
		}
		if string(out) != raw {
			t.Fatalf("id %s re-encoded as %s", raw, out)
		}
	}
}

func TestRequestID_RejectsNonScalar(t *testing.T) {
	for _, raw := range []string{`{}`, `[1]`, `true`} {
		var id RequestID
		if err := json.Unmarshal([]byte(raw), &id); err == nil {
			t.Fatalf("expected error for id %s", raw)
		}
	}
}

func TestRequestID_NilMarshalsAsNull(t *testing.T) {
	resp := NewErrorResponse(nil, ErrorCodeParseError, "parse error", nil)
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"parse error"}}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}
