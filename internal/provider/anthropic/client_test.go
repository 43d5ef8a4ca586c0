package anthropic

import (
	"testing"

	"github.com/austiecodes/vera/internal/types"
)

func TestSplitSystemJoinsSystemMessagesAndKeepsTurnOrder(t *testing.T) {
	system, turns := SplitSystem([]types.Message{
		types.SystemMessage("persona"),
		types.UserMessage("hi"),
		types.AssistantMessage("hello"),
		types.SystemMessage("memories"),
		types.UserMessage("again"),
	})

	if system != "persona\n\nmemories" {
		t.Fatalf("unexpected system prompt: %q", system)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	wantRoles := []string{"user", "assistant", "user"}
	for i, want := range wantRoles {
		if got := string(turns[i].Role); got != want {
			t.Fatalf("turn %d role = %q, want %q", i, got, want)
		}
	}
}

func TestNewParamsOmitsEmptySystem(t *testing.T) {
	params := newParams("claude", []types.Message{types.UserMessage("hi")})
	if len(params.System) != 0 {
		t.Fatalf("expected no system block, got %v", params.System)
	}
	if params.MaxTokens != defaultMaxTokens || string(params.Model) != "claude" {
		t.Fatalf("unexpected params: model=%q max=%d", params.Model, params.MaxTokens)
	}

	params = newParams("claude", []types.Message{types.SystemMessage("persona"), types.UserMessage("hi")})
	if len(params.System) != 1 || params.System[0].Text != "persona" {
		t.Fatalf("expected persona system block, got %v", params.System)
	}
}
