package openai

import (
	"testing"

	"github.com/austiecodes/vera/internal/types"
)

func TestFromMessagesKeepsRolesAndOrder(t *testing.T) {
	got := FromMessages([]types.Message{
		types.SystemMessage("persona"),
		types.UserMessage("hi"),
		types.AssistantMessage("hello"),
		types.SystemMessage("memories"),
	})

	want := []string{"system", "user", "assistant", "system"}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i, role := range want {
		r := got[i].GetRole()
		if r == nil || *r != role {
			t.Fatalf("message %d role = %v, want %q", i, r, role)
		}
	}
}

func TestToFloat32(t *testing.T) {
	got := toFloat32([]float64{0.5, -1})
	if len(got) != 2 || got[0] != 0.5 || got[1] != -1 {
		t.Fatalf("unexpected conversion: %v", got)
	}
}
