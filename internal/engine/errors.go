package engine

import (
	"errors"

	"github.com/ggoodman/weather-mcp-go/internal/jsonrpc"
	"github.com/ggoodman/weather-mcp-go/mcpservice"
	"github.com/ggoodman/weather-mcp-go/schema"
)

var (
	// ErrNotObject is the ProtocolError reason for a message that is not a JSON object.
	ErrNotObject = errors.New("message must be a JSON object")
	// ErrInternal backs responses for failures that are not the caller's fault.
	ErrInternal = errors.New("internal error")
)

// ProtocolError reports a message whose envelope is unusable.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "invalid request: " + e.Reason }

// MethodNotFoundError reports a request for a method the server does not
// implement.
type MethodNotFoundError struct {
	Method string
}

func (e *MethodNotFoundError) Error() string { return "method not found: " + e.Method }

// HandlerError wraps a failure reported by a registered tool or prompt,
// including recovered panics.
type HandlerError struct {
	Kind mcpservice.Kind
	Name string
	Err  error
}

func (e *HandlerError) Error() string { return e.Err.Error() }

func (e *HandlerError) Unwrap() error { return e.Err }

// validationData is the error.data payload of an invalid params response.
// Field and Reason describe the first failure; Errors lists all of them when
// there is more than one.
type validationData struct {
	Field  string                    `json:"field"`
	Reason string                    `json:"reason"`
	Errors []*schema.ValidationError `json:"errors,omitempty"`
}

// errorResponse converts err into the JSON-RPC error response for id.
func errorResponse(id *jsonrpc.RequestID, err error) *jsonrpc.Response {
	var (
		frameErr    *jsonrpc.FrameError
		protoErr    *ProtocolError
		methodErr   *MethodNotFoundError
		notFound    *mcpservice.NotFoundError
		validations schema.ValidationErrors
		validation  *schema.ValidationError
		handlerErr  *HandlerError
	)
	switch {
	case errors.As(err, &frameErr):
		return jsonrpc.NewErrorResponse(nil, jsonrpc.ErrorCodeParseError, "parse error: "+frameErr.Err.Error(), nil)
	case errors.As(err, &protoErr):
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInvalidRequest, protoErr.Error(), nil)
	case errors.As(err, &methodErr):
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeMethodNotFound, methodErr.Error(), nil)
	case errors.As(err, &notFound):
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeMethodNotFound, notFound.Error(), nil)
	case errors.As(err, &validations) && len(validations) > 0:
		data := validationData{Field: validations[0].Field, Reason: validations[0].Reason}
		if len(validations) > 1 {
			data.Errors = validations
		}
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInvalidParams, "invalid params: "+validations.Error(), data)
	case errors.As(err, &validation):
		data := validationData{Field: validation.Field, Reason: validation.Reason}
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInvalidParams, "invalid params: "+validation.Error(), data)
	case errors.As(err, &handlerErr):
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeHandlerError, handlerErr.Error(), nil)
	default:
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInternalError, ErrInternal.Error(), nil)
	}
}

// outcome classifies err for logs and metrics.
func outcome(err error) string {
	var (
		protoErr   *ProtocolError
		frameErr   *jsonrpc.FrameError
		validation *schema.ValidationError
		methodErr  *MethodNotFoundError
		notFound   *mcpservice.NotFoundError
		handlerErr *HandlerError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &frameErr), errors.As(err, &protoErr), errors.As(err, &validation):
		return "invalid"
	case errors.As(err, &methodErr), errors.As(err, &notFound):
		return "unsupported"
	case errors.As(err, &handlerErr):
		return "fail"
	default:
		return "error"
	}
}
