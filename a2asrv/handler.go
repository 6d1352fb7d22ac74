package a2asrv

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/davidvonthenen/a2a-simple/a2a"
	"github.com/davidvonthenen/a2a-simple/logging"
)

// HandlerOptions holds dependency and configuration overrides passed to NewHandler.
type HandlerOptions struct {
	// TaskStore persists task snapshots. Defaults to an in-memory store.
	TaskStore TaskStore
	// QueueSize sets event channel buffering per request.
	QueueSize int
	// Logger receives handler telemetry. Defaults to a no-op logger.
	Logger logging.Logger
}

// Handler services the A2A JSON-RPC methods for a single executor. It owns
// the per-request event pipeline: it runs the executor, applies every emitted
// event to the task store and exposes results either folded (message/send)
// or as a live stream (message/stream). Safe for concurrent use.
type Handler struct {
	executor  Executor
	store     TaskStore
	queueSize int
	logger    logging.Logger
}

// NewHandler constructs a Handler with optional overrides.
func NewHandler(executor Executor, optFns ...func(o *HandlerOptions)) *Handler {
	opts := HandlerOptions{
		TaskStore: NewInMemoryTaskStore(),
		QueueSize: DefaultQueueSize,
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Handler{
		executor:  executor,
		store:     opts.TaskStore,
		queueSize: opts.QueueSize,
		logger:    opts.Logger,
	}
}

// OnMessageSend services message/send: it runs the executor to completion and
// returns the final outcome, either the task's last snapshot or a direct
// message when the executor replied without creating a task.
func (h *Handler) OnMessageSend(ctx context.Context, params a2a.MessageSendParams) (a2a.Event, error) {
	reqCtx, err := h.newRequestContext(ctx, params)
	if err != nil {
		return nil, err
	}

	events := make(chan a2a.Event, h.queueSize)
	go h.pump(ctx, reqCtx, events)

	var lastMessage *a2a.Message
	for ev := range events {
		if msg, ok := ev.(*a2a.Message); ok {
			lastMessage = msg
		}
	}

	task, err := h.store.Get(ctx, reqCtx.TaskID)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, ErrTaskNotFound) {
		return nil, err
	}

	if lastMessage != nil {
		return lastMessage, nil
	}

	return nil, a2a.NewInternalError("agent execution finished without a result")
}

// OnMessageStream services message/stream: it runs the executor and returns a
// channel carrying every protocol event as it is produced. The channel closes
// when execution finishes or ctx is done.
func (h *Handler) OnMessageStream(ctx context.Context, params a2a.MessageSendParams) (<-chan a2a.Event, error) {
	reqCtx, err := h.newRequestContext(ctx, params)
	if err != nil {
		return nil, err
	}

	events := make(chan a2a.Event, h.queueSize)
	go h.pump(ctx, reqCtx, events)

	return events, nil
}

// OnGetTask services tasks/get, optionally trimming history to the requested
// length.
func (h *Handler) OnGetTask(ctx context.Context, params a2a.TaskQueryParams) (*a2a.Task, error) {
	task, err := h.store.Get(ctx, params.ID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, a2a.NewTaskNotFoundError(params.ID)
		}
		return nil, err
	}

	if params.HistoryLength != nil && *params.HistoryLength >= 0 && len(task.History) > *params.HistoryLength {
		task.History = task.History[len(task.History)-*params.HistoryLength:]
	}

	return task, nil
}

// OnCancelTask services tasks/cancel. The executor decides whether the task
// can be canceled; events it emits while canceling are applied to the store.
func (h *Handler) OnCancelTask(ctx context.Context, params a2a.TaskIDParams) (*a2a.Task, error) {
	task, err := h.store.Get(ctx, params.ID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, a2a.NewTaskNotFoundError(params.ID)
		}
		return nil, err
	}

	if task.Status.State.Terminal() {
		return nil, a2a.NewTaskNotCancelableError(task.ID)
	}

	reqCtx := &RequestContext{TaskID: task.ID, ContextID: task.ContextID, Task: task}
	queue := NewEventQueue(h.queueSize)

	cancelErr := h.executor.Cancel(ctx, reqCtx, queue)
	queue.Close()

	current := task
	for {
		ev, err := queue.Read(ctx)
		if err != nil {
			break
		}
		current = h.applyEvent(ctx, current, ev)
	}

	if cancelErr != nil {
		return nil, cancelErr
	}

	return h.store.Get(ctx, task.ID)
}

// newRequestContext validates the incoming message, resolves or generates the
// task and context ids, and loads the stored task for follow-up messages.
func (h *Handler) newRequestContext(ctx context.Context, params a2a.MessageSendParams) (*RequestContext, error) {
	msg := params.Message

	if len(msg.Parts) == 0 {
		return nil, a2a.NewInvalidParamsError("message parts must not be empty")
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}

	var task *a2a.Task
	if msg.TaskID != "" {
		stored, err := h.store.Get(ctx, msg.TaskID)
		if err != nil {
			if errors.Is(err, ErrTaskNotFound) {
				return nil, a2a.NewTaskNotFoundError(msg.TaskID)
			}
			return nil, err
		}
		if stored.Status.State.Terminal() {
			return nil, a2a.NewInvalidParamsError(fmt.Sprintf("task %s is in terminal state: %s", stored.ID, stored.Status.State))
		}
		task = stored
	}

	if msg.TaskID == "" {
		msg.TaskID = uuid.NewString()
	}
	if msg.ContextID == "" {
		if task != nil {
			msg.ContextID = task.ContextID
		} else {
			msg.ContextID = uuid.NewString()
		}
	}

	if task != nil {
		task.History = append(task.History, msg)
	}

	return &RequestContext{
		TaskID:    msg.TaskID,
		ContextID: msg.ContextID,
		Message:   msg,
		Task:      task,
	}, nil
}

// pump runs the executor, applies every emitted event to the task store and
// forwards it to out. Executor failures are converted into a final failed
// status update so clients always see a protocol-level outcome. Closes out.
func (h *Handler) pump(ctx context.Context, reqCtx *RequestContext, out chan<- a2a.Event) {
	defer close(out)

	// Persist the appended history of a continued task before execution so
	// concurrent tasks/get calls observe the incoming message.
	if reqCtx.Task != nil {
		if err := h.store.Save(ctx, reqCtx.Task); err != nil {
			h.logger.Error("a2asrv.task.save_failed", "task_id", reqCtx.TaskID, "error", err.Error())
		}
	}

	queue := NewEventQueue(h.queueSize)
	execErr := make(chan error, 1)

	go func() {
		execErr <- h.executor.Execute(ctx, reqCtx, queue)
		queue.Close()
	}()

	task := reqCtx.Task
	for {
		ev, err := queue.Read(ctx)
		if err != nil {
			break
		}

		task = h.applyEvent(ctx, task, ev)

		select {
		case out <- ev:
		case <-ctx.Done():
			<-execErr
			return
		}
	}

	if err := <-execErr; err != nil {
		h.logger.Error("a2asrv.execute.failed", "task_id", reqCtx.TaskID, "error", err.Error())

		failedEv := h.failTask(ctx, task, reqCtx, err)
		select {
		case out <- failedEv:
		case <-ctx.Done():
		}
	}
}

// applyEvent folds one protocol event into the tracked task snapshot and
// persists the result. Direct messages are not persisted; they flow through
// to the caller only.
func (h *Handler) applyEvent(ctx context.Context, task *a2a.Task, ev a2a.Event) *a2a.Task {
	switch v := ev.(type) {
	case *a2a.Task:
		task = v
	case *a2a.Message:
		return task
	case *a2a.TaskStatusUpdateEvent:
		if task == nil {
			h.logger.Warn("a2asrv.event.no_task", "kind", a2a.KindStatusUpdateEvent, "task_id", v.TaskID)
			return nil
		}
		if v.Status.Message != nil {
			task.History = append(task.History, *v.Status.Message)
		}
		task.Status = v.Status
	case *a2a.TaskArtifactUpdateEvent:
		if task == nil {
			h.logger.Warn("a2asrv.event.no_task", "kind", a2a.KindArtifactUpdateEvent, "task_id", v.TaskID)
			return nil
		}
		applyArtifact(task, v)
	}

	if task != nil {
		if err := h.store.Save(ctx, task); err != nil {
			h.logger.Error("a2asrv.task.save_failed", "task_id", task.ID, "error", err.Error())
		}
	}

	return task
}

// applyArtifact merges an artifact update into the task: same-id updates
// replace the artifact or, with Append set, extend its parts; unknown ids are
// added.
func applyArtifact(task *a2a.Task, ev *a2a.TaskArtifactUpdateEvent) {
	for i := range task.Artifacts {
		if task.Artifacts[i].ArtifactID != ev.Artifact.ArtifactID {
			continue
		}
		if ev.Append {
			task.Artifacts[i].Parts = append(task.Artifacts[i].Parts, ev.Artifact.Parts...)
		} else {
			task.Artifacts[i] = ev.Artifact
		}
		return
	}

	task.Artifacts = append(task.Artifacts, ev.Artifact)
}

// failTask marks the task failed with the executor error as status message,
// creating the task first when the executor failed before emitting one. The
// returned event terminates the stream.
func (h *Handler) failTask(ctx context.Context, task *a2a.Task, reqCtx *RequestContext, execErr error) a2a.Event {
	if task == nil {
		task = a2a.NewTask(reqCtx.Message)
	}

	statusMsg := a2a.NewAgentTextMessage(execErr.Error(), task.ContextID, task.ID)
	task.Status = a2a.TaskStatus{
		State:     a2a.TaskStateFailed,
		Message:   &statusMsg,
		Timestamp: a2a.Now(),
	}
	task.History = append(task.History, statusMsg)

	if err := h.store.Save(ctx, task); err != nil {
		h.logger.Error("a2asrv.task.save_failed", "task_id", task.ID, "error", err.Error())
	}

	return &a2a.TaskStatusUpdateEvent{
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Status:    task.Status,
		Final:     true,
	}
}
