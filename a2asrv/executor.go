package a2asrv

import (
	"context"

	"github.com/davidvonthenen/a2a-simple/a2a"
)

// RequestContext carries the resolved state of one incoming request: the
// user message with server-assigned ids, plus the stored task when the
// message continues an existing one.
type RequestContext struct {
	// TaskID is the id of the task this request operates on. Generated when
	// the incoming message carried none.
	TaskID string

	// ContextID is the conversation thread id. Generated when the incoming
	// message carried none.
	ContextID string

	// Message is the incoming user message, with TaskID and ContextID filled.
	Message a2a.Message

	// Task is the stored task the message continues, or nil for a fresh
	// request. When set, the incoming message has already been appended to
	// its history.
	Task *a2a.Task
}

// UserInput returns the text content of the incoming message.
func (r *RequestContext) UserInput() string {
	return r.Message.Text()
}

// Executor is implemented by agents served over the A2A protocol. Execute
// runs one request, emitting protocol events (task, status updates, artifact
// updates, messages) through the queue; the request handler owns queue
// lifecycle and task persistence.
//
// A returned error marks the task failed. Executors that can express a
// failure as a protocol outcome should emit a final failed status update and
// return nil instead.
type Executor interface {
	Execute(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error

	// Cancel requests cancellation of the task in reqCtx. Agents without
	// cancellation support return a2a.NewUnsupportedOperationError.
	Cancel(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error
}
