package a2a

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version carried by every envelope.
const Version = "2.0"

// JSON-RPC methods defined by the A2A protocol.
const (
	MethodMessageSend   = "message/send"
	MethodMessageStream = "message/stream"
	MethodTasksGet      = "tasks/get"
	MethodTasksCancel   = "tasks/cancel"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"` // string, number or null
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRequest builds a request envelope, marshaling params in place.
func NewRequest(id any, method string, params any) (Request, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Request{}, fmt.Errorf("marshal %s params: %w", method, err)
	}

	return Request{JSONRPC: Version, ID: id, Method: method, Params: raw}, nil
}

// Response is a JSON-RPC 2.0 response envelope. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse builds a success envelope, marshaling the result in place.
func NewResponse(id any, result any) (Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Response{}, fmt.Errorf("marshal result: %w", err)
	}

	return Response{JSONRPC: Version, ID: id, Result: raw}, nil
}

// NewErrorResponse builds an error envelope.
func NewErrorResponse(id any, rpcErr *Error) Response {
	return Response{JSONRPC: Version, ID: id, Error: rpcErr}
}

// JSON-RPC error codes: the standard set plus the A2A-specific range.
const (
	CodeParseError              = -32700
	CodeInvalidRequest          = -32600
	CodeMethodNotFound          = -32601
	CodeInvalidParams           = -32602
	CodeInternalError           = -32603
	CodeTaskNotFound            = -32001
	CodeTaskNotCancelable       = -32002
	CodeUnsupportedOperation    = -32004
	CodeContentTypeNotSupported = -32005
)

// Error is a JSON-RPC error object. It implements the error interface so
// protocol failures can flow through ordinary Go error paths.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewError builds an error with an arbitrary code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewParseError reports an unparsable request body.
func NewParseError() *Error {
	return &Error{Code: CodeParseError, Message: "Invalid JSON payload"}
}

// NewInvalidRequestError reports a structurally invalid JSON-RPC request.
func NewInvalidRequestError() *Error {
	return &Error{Code: CodeInvalidRequest, Message: "Request payload validation error"}
}

// NewMethodNotFoundError reports an unsupported method.
func NewMethodNotFoundError(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "Method not found", Data: method}
}

// NewInvalidParamsError reports invalid method parameters.
func NewInvalidParamsError(detail string) *Error {
	return &Error{Code: CodeInvalidParams, Message: "Invalid parameters", Data: detail}
}

// NewInternalError reports a server-side failure.
func NewInternalError(detail string) *Error {
	return &Error{Code: CodeInternalError, Message: "Internal error", Data: detail}
}

// NewTaskNotFoundError reports an unknown task id.
func NewTaskNotFoundError(taskID string) *Error {
	return &Error{Code: CodeTaskNotFound, Message: "Task not found", Data: taskID}
}

// NewTaskNotCancelableError reports a cancel request against a task that has
// already reached a terminal state.
func NewTaskNotCancelableError(taskID string) *Error {
	return &Error{Code: CodeTaskNotCancelable, Message: "Task cannot be canceled", Data: taskID}
}

// NewUnsupportedOperationError reports an operation the agent does not
// implement.
func NewUnsupportedOperationError(detail string) *Error {
	return &Error{Code: CodeUnsupportedOperation, Message: "This operation is not supported", Data: detail}
}

// MessageSendParams are the parameters of message/send and message/stream.
type MessageSendParams struct {
	Message       Message                   `json:"message"`
	Configuration *MessageSendConfiguration `json:"configuration,omitempty"`
	Metadata      map[string]any            `json:"metadata,omitempty"`
}

// MessageSendConfiguration tunes how an agent services a send request.
type MessageSendConfiguration struct {
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
	Blocking            *bool    `json:"blocking,omitempty"`
	HistoryLength       *int     `json:"historyLength,omitempty"`
}

// TaskQueryParams are the parameters of tasks/get.
type TaskQueryParams struct {
	ID            string `json:"id"`
	HistoryLength *int   `json:"historyLength,omitempty"`
}

// TaskIDParams are the parameters of tasks/cancel.
type TaskIDParams struct {
	ID string `json:"id"`
}
