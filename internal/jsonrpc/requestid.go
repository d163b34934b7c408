package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RequestID represents a JSON-RPC ID that can be either a string or a number.
// Numbers are kept as json.Number so they echo back byte-for-byte.
type RequestID struct {
	value any
}

// NewRequestID creates a new RequestID from a string or number.
func NewRequestID(value any) *RequestID {
	switch v := value.(type) {
	case string, json.Number:
		return &RequestID{value: v}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &RequestID{value: json.Number(fmt.Sprintf("%d", v))}
	case float32, float64:
		return &RequestID{value: json.Number(fmt.Sprintf("%v", v))}
	default:
		return &RequestID{value: nil}
	}
}

// String returns the string representation of the ID.
func (id *RequestID) String() string {
	if id == nil || id.value == nil {
		return ""
	}
	switch v := id.value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		panic("unreachable: RequestID contains unsupported type")
	}
}

// IsNil returns true if the ID is nil/empty.
func (id *RequestID) IsNil() bool {
	if id == nil {
		return true
	}
	return id.value == nil
}

// MarshalJSON implements json.Marshaler.
func (id *RequestID) MarshalJSON() ([]byte, error) {
	if id == nil || id.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		id.value = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid JSON-RPC ID: %w", err)
	}

	switch v := v.(type) {
	case string:
		id.value = v
	case json.Number:
		id.value = v
	default:
		return fmt.Errorf("JSON-RPC ID must be a string or number, got: %s", string(data))
	}
	return nil
}
