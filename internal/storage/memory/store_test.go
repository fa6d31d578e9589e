package memory

import (
	"context"
	"testing"

	"github.com/shopassist/kbchat/internal/domain"
)

func TestStore_AppendAndHistory(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Append(ctx, "s1", domain.Turn{Role: domain.RoleUser, Text: "hi"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, "s1", domain.Turn{Role: domain.RoleAssistant, Text: "hello"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	turns, err := store.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("History() count = %d, want 2", len(turns))
	}
	if turns[0].Role != domain.RoleUser || turns[1].Role != domain.RoleAssistant {
		t.Errorf("turn order wrong: %+v", turns)
	}
}

func TestStore_UnknownSessionEmpty(t *testing.T) {
	store := New()
	turns, err := store.History(context.Background(), "missing")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("History() count = %d, want 0", len(turns))
	}
}

func TestStore_HistoryReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Append(ctx, "s1", domain.Turn{Role: domain.RoleUser, Text: "original"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	turns, _ := store.History(ctx, "s1")
	turns[0].Text = "mutated"

	again, _ := store.History(ctx, "s1")
	if again[0].Text != "original" {
		t.Error("History() must return a copy, not the backing slice")
	}
}
