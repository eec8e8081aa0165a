package core

import (
	"context"
	"testing"
)

func TestInMemoryStoreBasics(t *testing.T) {
	store := NewInMemoryStore()

	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}

	store.AddMessage(Message{Role: RoleUser, Content: "one"})
	store.AddMessages([]Message{
		{Role: RoleAssistant, Content: "two"},
		{Role: RoleUser, Content: "three"},
	})

	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", store.Len())
	}

	history := store.GetHistory()
	if history[0].Content != "one" || history[2].Content != "three" {
		t.Errorf("GetHistory() order wrong: %+v", history)
	}

	// Returned slice is a copy
	history[0].Content = "mutated"
	if store.GetHistory()[0].Content != "one" {
		t.Error("GetHistory() returned a shared slice")
	}

	store.Clear()
	if store.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", store.Len())
	}
}

func TestInMemoryStoreGetLastN(t *testing.T) {
	store := NewInMemoryStore()
	store.AddMessages([]Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
		{Role: RoleUser, Content: "c"},
	})

	tests := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{-1, nil},
		{2, []string{"b", "c"}},
		{3, []string{"a", "b", "c"}},
		{10, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		got := store.GetLastN(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("GetLastN(%d) len = %d, want %d", tt.n, len(got), len(tt.want))
			continue
		}
		for i, w := range tt.want {
			if got[i].Content != w {
				t.Errorf("GetLastN(%d)[%d] = %q, want %q", tt.n, i, got[i].Content, w)
			}
		}
	}
}

func TestConversationManagesHistory(t *testing.T) {
	provider := &fakeProvider{
		chatFn: func(int) (*ChatResponse, error) {
			return &ChatResponse{Output: "reply"}, nil
		},
	}
	client := NewClient(provider)

	conv := NewConversation(client, "deepseek-chat", WithSystemMessage("be terse"))

	if _, err := conv.Send(context.Background(), "question"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	history := conv.History()
	if len(history) != 3 {
		t.Fatalf("history len = %d, want 3 (system, user, assistant)", len(history))
	}
	if history[0].Role != RoleSystem || history[0].Content != "be terse" {
		t.Errorf("history[0] = %+v, want system message", history[0])
	}
	if history[1].Role != RoleUser || history[1].Content != "question" {
		t.Errorf("history[1] = %+v, want user message", history[1])
	}
	if history[2].Role != RoleAssistant || history[2].Content != "reply" {
		t.Errorf("history[2] = %+v, want assistant reply", history[2])
	}

	conv.Reset()
	history = conv.History()
	if len(history) != 1 || history[0].Role != RoleSystem {
		t.Errorf("history after Reset = %+v, want only system message", history)
	}
}
