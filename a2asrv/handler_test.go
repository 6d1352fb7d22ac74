package a2asrv

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/davidvonthenen/a2a-simple/a2a"
)

// scriptedExecutor pops one step per Execute call so tests can drive
// multi-turn exchanges.
type scriptedExecutor struct {
	mu       sync.Mutex
	steps    []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error
	cancelFn func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error
}

func (e *scriptedExecutor) Execute(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
	e.mu.Lock()
	var step func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error
	if len(e.steps) > 0 {
		step = e.steps[0]
		e.steps = e.steps[1:]
	}
	e.mu.Unlock()

	if step == nil {
		return errors.New("no scripted step")
	}

	return step(ctx, reqCtx, queue)
}

func (e *scriptedExecutor) Cancel(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
	if e.cancelFn != nil {
		return e.cancelFn(ctx, reqCtx, queue)
	}

	return a2a.NewUnsupportedOperationError("cancel is not supported")
}

// completeWith emits the canonical leaf sequence: task, artifact, final
// completed status.
func completeWith(reply string) func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
	return func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
		task := reqCtx.Task
		if task == nil {
			task = a2a.NewTask(reqCtx.Message)
			if err := queue.Write(ctx, task); err != nil {
				return err
			}
		}

		artifact := a2a.NewTextArtifact("result", "", reply)
		err := queue.Write(ctx, &a2a.TaskArtifactUpdateEvent{
			TaskID:    task.ID,
			ContextID: task.ContextID,
			Artifact:  artifact,
			LastChunk: true,
		})
		if err != nil {
			return err
		}

		msg := a2a.NewAgentTextMessage(reply, task.ContextID, task.ID)

		return queue.Write(ctx, &a2a.TaskStatusUpdateEvent{
			TaskID:    task.ID,
			ContextID: task.ContextID,
			Status:    a2a.TaskStatus{State: a2a.TaskStateCompleted, Message: &msg, Timestamp: a2a.Now()},
			Final:     true,
		})
	}
}

func sendParams(text, taskID string) a2a.MessageSendParams {
	msg := a2a.NewUserTextMessage(text, "")
	msg.TaskID = taskID

	return a2a.MessageSendParams{Message: msg}
}

func TestOnMessageSend_CompletesTask(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		completeWith("Sunny, 24C"),
	}}
	h := NewHandler(exec)

	result, err := h.OnMessageSend(context.Background(), sendParams("weather in LA", ""))
	if err != nil {
		t.Fatalf("OnMessageSend returned error: %v", err)
	}

	task, ok := result.(*a2a.Task)
	if !ok {
		t.Fatalf("expected *a2a.Task result, got %T", result)
	}
	if task.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("expected completed state, got %s", task.Status.State)
	}
	if len(task.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(task.Artifacts))
	}
	if got := task.Artifacts[0].Parts[0].(a2a.TextPart).Text; got != "Sunny, 24C" {
		t.Fatalf("unexpected artifact text %q", got)
	}
	if len(task.History) == 0 || task.History[0].Role != a2a.RoleUser {
		t.Fatalf("expected user message to seed history, got %+v", task.History)
	}
}

func TestOnMessageSend_EmptyPartsRejected(t *testing.T) {
	h := NewHandler(&scriptedExecutor{})

	_, err := h.OnMessageSend(context.Background(), a2a.MessageSendParams{Message: a2a.Message{MessageID: "m1", Role: a2a.RoleUser}})
	if err == nil {
		t.Fatal("expected error for empty parts")
	}

	var rpcErr *a2a.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != a2a.CodeInvalidParams {
		t.Fatalf("expected invalid params error, got %v", err)
	}
}

func TestOnMessageSend_ExecutorErrorFailsTask(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
			return errors.New("model unavailable")
		},
	}}
	h := NewHandler(exec)

	result, err := h.OnMessageSend(context.Background(), sendParams("weather in LA", ""))
	if err != nil {
		t.Fatalf("executor failure must surface as failed task, got error: %v", err)
	}

	task, ok := result.(*a2a.Task)
	if !ok {
		t.Fatalf("expected *a2a.Task result, got %T", result)
	}
	if task.Status.State != a2a.TaskStateFailed {
		t.Fatalf("expected failed state, got %s", task.Status.State)
	}
	if task.Status.Message == nil || !strings.Contains(task.Status.Message.Text(), "model unavailable") {
		t.Fatalf("expected error text in status message, got %+v", task.Status.Message)
	}
}

func TestOnMessageSend_DirectMessageReply(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
			msg := a2a.NewAgentTextMessage("hello", reqCtx.ContextID, "")

			return queue.Write(ctx, &msg)
		},
	}}
	h := NewHandler(exec)

	result, err := h.OnMessageSend(context.Background(), sendParams("hi", ""))
	if err != nil {
		t.Fatalf("OnMessageSend returned error: %v", err)
	}

	msg, ok := result.(*a2a.Message)
	if !ok {
		t.Fatalf("expected *a2a.Message result, got %T", result)
	}
	if msg.Text() != "hello" {
		t.Fatalf("unexpected message text %q", msg.Text())
	}
}

func TestOnMessageStream_EventOrder(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		completeWith("42"),
	}}
	h := NewHandler(exec)

	events, err := h.OnMessageStream(context.Background(), sendParams("answer?", ""))
	if err != nil {
		t.Fatalf("OnMessageStream returned error: %v", err)
	}

	var collected []a2a.Event
	for ev := range events {
		collected = append(collected, ev)
	}

	if len(collected) != 3 {
		t.Fatalf("expected 3 events, got %d", len(collected))
	}
	if _, ok := collected[0].(*a2a.Task); !ok {
		t.Fatalf("expected first event *a2a.Task, got %T", collected[0])
	}
	if _, ok := collected[1].(*a2a.TaskArtifactUpdateEvent); !ok {
		t.Fatalf("expected second event artifact update, got %T", collected[1])
	}
	status, ok := collected[2].(*a2a.TaskStatusUpdateEvent)
	if !ok {
		t.Fatalf("expected third event status update, got %T", collected[2])
	}
	if !status.Final || status.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("expected final completed status, got %+v", status)
	}
}

func TestFollowUpMessage_ContinuesTask(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
			task := a2a.NewTask(reqCtx.Message)
			if err := queue.Write(ctx, task); err != nil {
				return err
			}
			msg := a2a.NewAgentTextMessage("which city?", task.ContextID, task.ID)

			return queue.Write(ctx, &a2a.TaskStatusUpdateEvent{
				TaskID:    task.ID,
				ContextID: task.ContextID,
				Status:    a2a.TaskStatus{State: a2a.TaskStateInputRequired, Message: &msg, Timestamp: a2a.Now()},
				Final:     true,
			})
		},
		func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
			if reqCtx.Task == nil {
				t.Error("expected stored task on follow-up request")
			}

			return completeWith("done")(ctx, reqCtx, queue)
		},
	}}
	h := NewHandler(exec)

	first, err := h.OnMessageSend(context.Background(), sendParams("help me", ""))
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	firstTask := first.(*a2a.Task)
	if firstTask.Status.State != a2a.TaskStateInputRequired {
		t.Fatalf("expected input-required state, got %s", firstTask.Status.State)
	}

	second, err := h.OnMessageSend(context.Background(), sendParams("LA please", firstTask.ID))
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	secondTask := second.(*a2a.Task)
	if secondTask.ID != firstTask.ID {
		t.Fatalf("expected same task id, got %s and %s", firstTask.ID, secondTask.ID)
	}
	if secondTask.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("expected completed state, got %s", secondTask.Status.State)
	}
	// user1, input-required message, user2, completion message
	if len(secondTask.History) != 4 {
		t.Fatalf("expected 4 history messages, got %d", len(secondTask.History))
	}
}

func TestOnMessageSend_TerminalTaskRejected(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		completeWith("done"),
	}}
	h := NewHandler(exec)

	result, err := h.OnMessageSend(context.Background(), sendParams("first", ""))
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	task := result.(*a2a.Task)

	_, err = h.OnMessageSend(context.Background(), sendParams("second", task.ID))
	var rpcErr *a2a.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != a2a.CodeInvalidParams {
		t.Fatalf("expected invalid params for terminal task, got %v", err)
	}
}

func TestOnGetTask(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		completeWith("done"),
	}}
	h := NewHandler(exec)

	result, err := h.OnMessageSend(context.Background(), sendParams("hello", ""))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	sent := result.(*a2a.Task)

	got, err := h.OnGetTask(context.Background(), a2a.TaskQueryParams{ID: sent.ID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != sent.ID || got.Status.State != a2a.TaskStateCompleted {
		t.Fatalf("unexpected task %+v", got)
	}

	limit := 1
	trimmed, err := h.OnGetTask(context.Background(), a2a.TaskQueryParams{ID: sent.ID, HistoryLength: &limit})
	if err != nil {
		t.Fatalf("get with history length: %v", err)
	}
	if len(trimmed.History) != 1 {
		t.Fatalf("expected history trimmed to 1, got %d", len(trimmed.History))
	}
}

func TestOnGetTask_NotFound(t *testing.T) {
	h := NewHandler(&scriptedExecutor{})

	_, err := h.OnGetTask(context.Background(), a2a.TaskQueryParams{ID: "missing"})
	var rpcErr *a2a.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != a2a.CodeTaskNotFound {
		t.Fatalf("expected task not found error, got %v", err)
	}
}

func TestOnCancelTask_Unsupported(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error {
			task := a2a.NewTask(reqCtx.Message)
			if err := queue.Write(ctx, task); err != nil {
				return err
			}

			return queue.Write(ctx, &a2a.TaskStatusUpdateEvent{
				TaskID:    task.ID,
				ContextID: task.ContextID,
				Status:    a2a.TaskStatus{State: a2a.TaskStateWorking, Timestamp: a2a.Now()},
			})
		},
	}}
	h := NewHandler(exec)

	result, err := h.OnMessageSend(context.Background(), sendParams("long job", ""))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	task := result.(*a2a.Task)

	_, err = h.OnCancelTask(context.Background(), a2a.TaskIDParams{ID: task.ID})
	var rpcErr *a2a.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != a2a.CodeUnsupportedOperation {
		t.Fatalf("expected unsupported operation error, got %v", err)
	}
}

func TestOnCancelTask_TerminalTask(t *testing.T) {
	exec := &scriptedExecutor{steps: []func(ctx context.Context, reqCtx *RequestContext, queue *EventQueue) error{
		completeWith("done"),
	}}
	h := NewHandler(exec)

	result, err := h.OnMessageSend(context.Background(), sendParams("quick job", ""))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	task := result.(*a2a.Task)

	_, err = h.OnCancelTask(context.Background(), a2a.TaskIDParams{ID: task.ID})
	var rpcErr *a2a.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != a2a.CodeTaskNotCancelable {
		t.Fatalf("expected not cancelable error, got %v", err)
	}
}
