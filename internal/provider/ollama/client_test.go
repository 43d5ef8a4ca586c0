package ollama

import (
	"testing"

	"github.com/austiecodes/vera/internal/types"
)

func TestFromMessagesKeepsRolesAndOrder(t *testing.T) {
	got := FromMessages([]types.Message{
		types.SystemMessage("persona"),
		types.UserMessage("hi"),
		types.AssistantMessage("hello"),
	})
	want := []string{"system", "user", "assistant"}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i, role := range want {
		if got[i].Role != role {
			t.Fatalf("message %d role = %q, want %q", i, got[i].Role, role)
		}
	}
}

func TestStreamResponseDeliversChunksThenStops(t *testing.T) {
	s := &StreamResponse{chunks: make(chan string, 2), cancel: func() {}}
	s.chunks <- "a"
	s.chunks <- "b"
	close(s.chunks)

	var out string
	for s.Next() {
		out += s.GetChunk()
	}
	if out != "ab" {
		t.Fatalf("expected %q, got %q", "ab", out)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
