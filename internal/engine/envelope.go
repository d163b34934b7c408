package engine

import (
	"bytes"
	"encoding/json"

	"github.com/ggoodman/weather-mcp-go/internal/jsonrpc"
)

// envelope is the routing information of one inbound message. Both the
// JSON-RPC 2.0 shape and the compact {id, method, name, params} shape decode
// into it.
type envelope struct {
	ID     *jsonrpc.RequestID
	Method string
	// Name is the top-level handler name used by the compact form.
	Name    string
	HasName bool
	Params  json.RawMessage
	// Response is set for client replies, which never get answered.
	Response bool
}

func (e *envelope) notification() bool { return e.ID.IsNil() }

// decodeEnvelope extracts routing fields from msg. The returned envelope is
// never nil; its ID is populated whenever it could be recovered so a
// ProtocolError can still be correlated.
func decodeEnvelope(msg jsonrpc.Message) (*envelope, error) {
	env := &envelope{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg, &fields); err != nil || fields == nil {
		return env, &ProtocolError{Reason: ErrNotObject.Error()}
	}

	if raw, ok := fields["id"]; ok && !isNull(raw) {
		var id jsonrpc.RequestID
		if err := json.Unmarshal(raw, &id); err != nil {
			return env, &ProtocolError{Reason: "id must be a string or number"}
		}
		env.ID = &id
	}

	if raw, ok := fields["jsonrpc"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil || v != jsonrpc.ProtocolVersion {
			return env, &ProtocolError{Reason: "unsupported jsonrpc version"}
		}
	}

	if raw, ok := fields["method"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.Method); err != nil {
			return env, &ProtocolError{Reason: "method must be a string"}
		}
	}
	if env.Method == "" {
		_, hasResult := fields["result"]
		_, hasError := fields["error"]
		if hasResult || hasError {
			env.Response = true
			return env, nil
		}
		return env, &ProtocolError{Reason: "missing method"}
	}

	if raw, ok := fields["name"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &env.Name); err != nil {
			return env, &ProtocolError{Reason: "name must be a string"}
		}
		env.HasName = true
	}

	if raw, ok := fields["params"]; ok && !isNull(raw) {
		if !isObject(raw) {
			return env, &ProtocolError{Reason: "params must be an object"}
		}
		env.Params = raw
	}

	return env, nil
}

// decodeArguments turns an optional JSON object into a field map. Absent or
// null input yields an empty map.
func decodeArguments(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 || isNull(raw) {
		return map[string]json.RawMessage{}, true
	}
	if !isObject(raw) {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
