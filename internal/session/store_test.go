package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAppendAndGetRoundTrip(t *testing.T) {
	store := NewStore()
	id := store.Create()

	user := Message{Role: RoleUser, Content: "What changed for KYC?"}
	if err := store.Append(id, user); err != nil {
		t.Fatalf("Append user: %v", err)
	}
	reply := Message{
		ID:          "msg_20260101_120000_abcd1234",
		Role:        RoleAssistant,
		Content:     "The verification deadline moved.",
		Suggestions: []string{"What documents do I need?", "When is the deadline?"},
		Metadata:    &Metadata{UsedRealtimeSearch: true, ContextSources: 2},
	}
	if err := store.Append(id, reply); err != nil {
		t.Fatalf("Append reply: %v", err)
	}

	sess, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sess.Messages))
	}
	got := sess.Messages[1]
	if got.ID != reply.ID || got.Role != RoleAssistant || got.Content != reply.Content {
		t.Errorf("assistant message mutated in round trip: %+v", got)
	}
	if len(got.Suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %v", got.Suggestions)
	}
	if got.Metadata == nil || !got.Metadata.UsedRealtimeSearch || got.Metadata.ContextSources != 2 {
		t.Errorf("metadata not preserved: %+v", got.Metadata)
	}
	if sess.Messages[0].ID == "" {
		t.Error("expected a generated message id for the user message")
	}
}

func TestUnknownSession(t *testing.T) {
	store := NewStore()

	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
	if err := store.Append("nope", Message{Role: RoleUser, Content: "hi"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Append: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestTitleFromFirstUserMessage(t *testing.T) {
	store := NewStore()
	id := store.Create()

	long := strings.Repeat("regulatory question ", 10)
	if err := store.Append(id, Message{Role: RoleUser, Content: long}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(id, Message{Role: RoleUser, Content: "second question"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	sess, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := long[:50] + "..."
	if sess.Title != want {
		t.Errorf("title = %q, want %q", sess.Title, want)
	}
}

func TestListOrdersByActivity(t *testing.T) {
	store := NewStore()
	first := store.Create()
	time.Sleep(5 * time.Millisecond)
	second := store.Create()
	time.Sleep(5 * time.Millisecond)

	if err := store.Append(first, Message{Role: RoleUser, Content: "bump"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(list))
	}
	if list[0].ID != first || list[1].ID != second {
		t.Errorf("expected most recently active first, got [%s %s]", list[0].ID, list[1].ID)
	}
	if list[0].MessageCount != 1 || list[0].LastMessage != "bump" {
		t.Errorf("summary fields wrong: %+v", list[0])
	}
}

func TestDeleteRemovesSession(t *testing.T) {
	store := NewStore()
	id := store.Create()

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}
}
