package agent

import (
	"context"
	"fmt"

	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/a2asrv"
	"github.com/davidvonthenen/a2a-simple/logging"
)

// Invoker is the agent capability the Executor bridges onto the A2A task
// lifecycle. ChatAgent implements it.
type Invoker interface {
	Invoke(ctx context.Context, query, contextID string) (*Result, error)
}

// ExecutorOptions configures an Executor instance.
type ExecutorOptions struct {
	Logger logging.Logger
}

// Executor adapts an Invoker onto a2asrv.Executor.
//
// Per request it emits the task (when the request starts a fresh one), a
// single text artifact named "current_result" carrying the reply, and a
// final status update: completed, or input-required when the agent asked for
// more input. Invocation failures propagate to the server runtime, which
// records them as a failed task.
type Executor struct {
	agent  Invoker
	logger logging.Logger
}

// NewExecutor wraps an Invoker for serving.
func NewExecutor(agent Invoker, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{agent: agent, logger: opts.Logger}
}

// Execute implements a2asrv.Executor.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue *a2asrv.EventQueue) error {
	if len(reqCtx.Message.Parts) == 0 {
		return a2a.NewInvalidParamsError("message must not be empty")
	}

	task := reqCtx.Task
	if task == nil {
		task = a2a.NewTask(reqCtx.Message)

		if err := queue.Write(ctx, task); err != nil {
			return err
		}
	}

	result, err := e.agent.Invoke(ctx, reqCtx.UserInput(), task.ContextID)
	if err != nil {
		return fmt.Errorf("invoke agent: %w", err)
	}

	artifactEvent := &a2a.TaskArtifactUpdateEvent{
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Artifact:  a2a.NewTextArtifact("current_result", "Result of request to agent.", result.Content),
		LastChunk: true,
	}
	if err := queue.Write(ctx, artifactEvent); err != nil {
		return err
	}

	state := a2a.TaskStateCompleted
	if result.RequireUserInput {
		state = a2a.TaskStateInputRequired
	}

	msg := a2a.NewAgentTextMessage(result.Content, task.ContextID, task.ID)

	e.logger.Info(
		"executor.task.finished",
		"task_id", task.ID,
		"context_id", task.ContextID,
		"state", string(state),
	)

	return queue.Write(ctx, &a2a.TaskStatusUpdateEvent{
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Status:    a2a.TaskStatus{State: state, Message: &msg, Timestamp: a2a.Now()},
		Final:     true,
	})
}

// Cancel implements a2asrv.Executor. Leaf agents do not support canceling
// in-flight work.
func (e *Executor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue *a2asrv.EventQueue) error {
	return a2a.NewUnsupportedOperationError("cancel is not supported")
}

// Compile-time interface check.
var _ a2asrv.Executor = (*Executor)(nil)
