package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/engine/enginetest"
	"github.com/austiecodes/vera/internal/memory/store"
	"github.com/austiecodes/vera/internal/types"
)

func newHandlers(t *testing.T, st store.ConversationStore, chat *enginetest.QueryClient) *handlers {
	t.Helper()
	tool := &enginetest.QueryClient{Reply: func(context.Context, []types.Message) (string, error) {
		return "yes", nil
	}}
	eng, _ := engine.New(context.Background(), enginetest.Deps(st, chat, tool), enginetest.Options()...)
	return &handlers{engine: eng, forgetCommand: "/forget"}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestRespondToolRecordsExchange(t *testing.T) {
	st := enginetest.NewStore(t)
	h := newHandlers(t, st, &enginetest.QueryClient{})

	res, err := h.handleRespond(context.Background(), call(map[string]any{"message": "hello"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "echo: hello", text(t, res))

	records, err := st.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRespondToolValidatesArguments(t *testing.T) {
	h := newHandlers(t, enginetest.NewStore(t), &enginetest.QueryClient{})

	for _, args := range []map[string]any{nil, {}, {"message": "  "}, {"message": 3}} {
		res, err := h.handleRespond(context.Background(), call(args))
		require.NoError(t, err)
		assert.True(t, res.IsError, "args %v", args)
	}
}

func TestRespondToolReportsGenerationFailure(t *testing.T) {
	chat := &enginetest.QueryClient{Reply: func(context.Context, []types.Message) (string, error) {
		return "", errors.New("offline")
	}}
	h := newHandlers(t, enginetest.NewStore(t), chat)

	res, err := h.handleRespond(context.Background(), call(map[string]any{"message": "hi"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRecallToolListsMemories(t *testing.T) {
	st := enginetest.NewStore(t)
	require.NoError(t, st.Append(context.Background(), "my cat is called Miso", "lovely name"))
	h := newHandlers(t, st, &enginetest.QueryClient{})

	res, err := h.handleRecall(context.Background(), call(map[string]any{"query": "what is my cat called"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "prompt: my cat is called Miso response: lovely name")
}

func TestForgetToolDropsLastExchange(t *testing.T) {
	st := enginetest.NewStore(t)
	h := newHandlers(t, st, &enginetest.QueryClient{})
	ctx := context.Background()

	_, err := h.handleRespond(ctx, call(map[string]any{"message": "remember this"}))
	require.NoError(t, err)

	res, err := h.handleForget(ctx, call(nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	records, err := st.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Len(t, h.engine.Window(), 1)
}
