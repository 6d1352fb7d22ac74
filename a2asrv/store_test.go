package a2asrv

import (
	"context"
	"errors"
	"testing"

	"github.com/davidvonthenen/a2a-simple/a2a"
)

func TestInMemoryTaskStore_SaveAndGet(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	msg := a2a.NewUserTextMessage("hello", "ctx-1")
	task := a2a.NewTask(msg)

	if err := store.Save(ctx, task); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != task.ID || got.ContextID != "ctx-1" {
		t.Fatalf("unexpected task %+v", got)
	}
	if got.Status.State != a2a.TaskStateSubmitted {
		t.Fatalf("unexpected state %s", got.Status.State)
	}
	if len(got.History) != 1 || got.History[0].Text() != "hello" {
		t.Fatalf("unexpected history %+v", got.History)
	}
}

func TestInMemoryTaskStore_GetReturnsClone(t *testing.T) {
	store := NewInMemoryTaskStore()
	ctx := context.Background()

	task := a2a.NewTask(a2a.NewUserTextMessage("hello", ""))
	if err := store.Save(ctx, task); err != nil {
		t.Fatalf("save: %v", err)
	}

	first, _ := store.Get(ctx, task.ID)
	first.Status.State = a2a.TaskStateFailed

	second, _ := store.Get(ctx, task.ID)
	if second.Status.State != a2a.TaskStateSubmitted {
		t.Fatalf("mutation leaked into store: %s", second.Status.State)
	}
}

func TestInMemoryTaskStore_NotFound(t *testing.T) {
	store := NewInMemoryTaskStore()

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
