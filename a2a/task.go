package a2a

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind discriminator values for top-level protocol objects.
const (
	KindMessage             = "message"
	KindTask                = "task"
	KindStatusUpdateEvent   = "status-update"
	KindArtifactUpdateEvent = "artifact-update"
)

// TaskState enumerates the lifecycle states of a task.
type TaskState string

// Task lifecycle states.
const (
	TaskStateSubmitted     TaskState = "submitted"
	TaskStateWorking       TaskState = "working"
	TaskStateInputRequired TaskState = "input-required"
	TaskStateCompleted     TaskState = "completed"
	TaskStateCanceled      TaskState = "canceled"
	TaskStateFailed        TaskState = "failed"
	TaskStateRejected      TaskState = "rejected"
	TaskStateAuthRequired  TaskState = "auth-required"
	TaskStateUnknown       TaskState = "unknown"
)

// Terminal reports whether the state ends the task lifecycle. Terminal tasks
// accept no further messages.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed, TaskStateRejected:
		return true
	default:
		return false
	}
}

// TaskStatus captures the current state of a task plus an optional agent
// message explaining it.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`   // Agent commentary for this state
	Timestamp string    `json:"timestamp,omitempty"` // RFC 3339
}

// Artifact is an output produced by an agent for a task.
type Artifact struct {
	ArtifactID  string         `json:"artifactId"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Parts       Parts          `json:"parts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Task is the unit of work an agent performs for a client. It exists for the
// duration of a request/response exchange; there is no durable task storage.
type Task struct {
	ID        string         `json:"id"`
	ContextID string         `json:"contextId"`
	Status    TaskStatus     `json:"status"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	History   []Message      `json:"history,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON adds the "task" kind discriminator.
func (t Task) MarshalJSON() ([]byte, error) {
	type alias Task

	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{Kind: KindTask, alias: alias(t)})
}

// TaskStatusUpdateEvent signals a task state change during streaming
// execution. Final marks the last event of the stream.
type TaskStatusUpdateEvent struct {
	TaskID    string     `json:"taskId"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Final     bool       `json:"final"`
}

// MarshalJSON adds the "status-update" kind discriminator.
func (e TaskStatusUpdateEvent) MarshalJSON() ([]byte, error) {
	type alias TaskStatusUpdateEvent

	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{Kind: KindStatusUpdateEvent, alias: alias(e)})
}

// TaskArtifactUpdateEvent carries an artifact produced during streaming
// execution. Append indicates the parts extend the artifact identified by
// ArtifactID rather than replacing it; LastChunk marks its final fragment.
type TaskArtifactUpdateEvent struct {
	TaskID    string   `json:"taskId"`
	ContextID string   `json:"contextId"`
	Artifact  Artifact `json:"artifact"`
	Append    bool     `json:"append"`
	LastChunk bool     `json:"lastChunk"`
}

// MarshalJSON adds the "artifact-update" kind discriminator.
func (e TaskArtifactUpdateEvent) MarshalJSON() ([]byte, error) {
	type alias TaskArtifactUpdateEvent

	return json.Marshal(struct {
		Kind string `json:"kind"`
		alias
	}{Kind: KindArtifactUpdateEvent, alias: alias(e)})
}

// Event is a protocol object an executor may emit while working on a task:
// *Task, *Message, *TaskStatusUpdateEvent or *TaskArtifactUpdateEvent.
type Event interface{ isEvent() }

func (*Task) isEvent()                    {}
func (*Message) isEvent()                 {}
func (*TaskStatusUpdateEvent) isEvent()   {}
func (*TaskArtifactUpdateEvent) isEvent() {}

// NewTask builds a task from the user message that initiates it. Ids missing
// from the message are generated; the message seeds the task history.
func NewTask(msg Message) *Task {
	id := msg.TaskID
	if id == "" {
		id = uuid.NewString()
	}

	contextID := msg.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}

	return &Task{
		ID:        id,
		ContextID: contextID,
		Status:    TaskStatus{State: TaskStateSubmitted, Timestamp: Now()},
		History:   []Message{msg},
	}
}

// NewTextArtifact builds a named artifact holding a single text part.
func NewTextArtifact(name, description, text string) Artifact {
	return Artifact{
		ArtifactID:  uuid.NewString(),
		Name:        name,
		Description: description,
		Parts:       Parts{TextPart{Text: text}},
	}
}

// Now returns the protocol timestamp for the current instant.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// UnmarshalResult decodes a kind-discriminated protocol object (a JSON-RPC
// result or a streamed event) into its concrete type.
func UnmarshalResult(data []byte) (Event, error) {
	var probe struct {
		Kind string `json:"kind"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	switch probe.Kind {
	case KindTask:
		var task Task
		if err := json.Unmarshal(data, &task); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}

		return &task, nil
	case KindMessage:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}

		return &msg, nil
	case KindStatusUpdateEvent:
		var event TaskStatusUpdateEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("decode status update: %w", err)
		}

		return &event, nil
	case KindArtifactUpdateEvent:
		var event TaskArtifactUpdateEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, fmt.Errorf("decode artifact update: %w", err)
		}

		return &event, nil
	default:
		return nil, fmt.Errorf("unknown result kind %q", probe.Kind)
	}
}
