package session

import (
	"testing"

	"github.com/davidvonthenen/a2a-simple/model"
)

func TestInMemoryStore_AppendAndHistory(t *testing.T) {
	store := NewInMemoryStore()

	if err := store.Append("ctx-1", model.NewUserContent("hi"), model.NewAssistantContent("hello")); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err := store.History("ctx-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[0].Role != model.RoleUser || history[0].Text() != "hi" {
		t.Fatalf("unexpected first turn: %+v", history[0])
	}
	if history[1].Role != model.RoleAssistant || history[1].Text() != "hello" {
		t.Fatalf("unexpected second turn: %+v", history[1])
	}

	// Other contexts stay empty.
	other, err := store.History("ctx-2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(other))
	}
}

func TestInMemoryStore_HistoryIsACopy(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Append("ctx", model.NewUserContent("original")); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, _ := store.History("ctx")
	history[0] = model.NewUserContent("mutated")

	again, _ := store.History("ctx")
	if again[0].Text() != "original" {
		t.Fatalf("store state leaked to caller: %q", again[0].Text())
	}
}

func TestInMemoryStore_MaxTurnsTrimsOldest(t *testing.T) {
	store := NewInMemoryStore(func(o *InMemoryStoreOptions) {
		o.MaxTurns = 4
	})

	for i := 0; i < 3; i++ {
		if err := store.Append("ctx", model.NewUserContent("q"), model.NewAssistantContent("a")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history, _ := store.History("ctx")
	if len(history) != 4 {
		t.Fatalf("expected history trimmed to 4 turns, got %d", len(history))
	}
	// Oldest pair dropped; trimmed history still starts with a user turn.
	if history[0].Role != model.RoleUser {
		t.Fatalf("expected user turn first, got %s", history[0].Role)
	}
}

func TestInMemoryStore_Clear(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Append("ctx", model.NewUserContent("hi")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Clear("ctx"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	history, _ := store.History("ctx")
	if len(history) != 0 {
		t.Fatalf("expected empty history after clear, got %d turns", len(history))
	}
}
