package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austiecodes/vera/internal/engine"
)

type scriptedResponder struct {
	prompts []string
	replies map[string]string
	errs    map[string]error
}

func (s *scriptedResponder) Respond(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.replies[prompt], s.errs[prompt]
}

func runLoop(t *testing.T, r Responder, input string) string {
	t.Helper()
	var out bytes.Buffer
	loop := &Loop{Engine: r, In: strings.NewReader(input), Out: &out, ForgetCommand: "/forget"}
	require.NoError(t, loop.Run(context.Background()))
	return out.String()
}

func TestLoopRespondsUntilExit(t *testing.T) {
	r := &scriptedResponder{replies: map[string]string{"hi": "hello there"}}
	out := runLoop(t, r, "hi\n\n/exit\nignored\n")

	assert.Equal(t, []string{"hi"}, r.prompts)
	assert.Contains(t, out, "hello there")
	assert.Contains(t, out, "Goodbye!")
}

func TestLoopStopsAtEOF(t *testing.T) {
	r := &scriptedResponder{}
	runLoop(t, r, "one\ntwo")
	assert.Equal(t, []string{"one", "two"}, r.prompts)
}

func TestLoopForgetIsSentToEngine(t *testing.T) {
	r := &scriptedResponder{}
	out := runLoop(t, r, "/forget\n/quit\n")

	assert.Equal(t, []string{"/forget"}, r.prompts)
	assert.Contains(t, out, "Forgot the last exchange.")
}

func TestLoopKeepsGoingAfterErrors(t *testing.T) {
	r := &scriptedResponder{
		replies: map[string]string{"saved?": "maybe"},
		errs: map[string]error{
			"broken": engine.ErrGeneration,
			"saved?": &engine.PersistError{Err: errors.New("disk full")},
		},
	}
	out := runLoop(t, r, "broken\nsaved?\n")

	assert.Equal(t, []string{"broken", "saved?"}, r.prompts)
	assert.Contains(t, out, "Error: generation failed")
	assert.Contains(t, out, "maybe")
	assert.Contains(t, out, "not saved to memory")
}
