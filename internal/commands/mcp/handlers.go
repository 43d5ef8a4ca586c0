package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/austiecodes/vera/internal/consts"
	"github.com/austiecodes/vera/internal/engine"
	"github.com/austiecodes/vera/internal/memory/retrieval"
)

type handlers struct {
	engine        *engine.Engine
	forgetCommand string
}

// stringArg extracts a required non-empty string argument.
func stringArg(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	args := request.GetArguments()
	if args == nil {
		return "", mcp.NewToolResultError("missing arguments")
	}
	raw, ok := args[name]
	if !ok {
		return "", mcp.NewToolResultError("missing required parameter: " + name)
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("parameter '%s' must be a non-empty string", name))
	}
	return s, nil
}

// handleRespond handles the vera_respond tool call
func (h *handlers) handleRespond(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, errResult := stringArg(request, "message")
	if errResult != nil {
		return errResult, nil
	}

	reply, err := h.engine.Respond(ctx, message)
	var persistErr *engine.PersistError
	switch {
	case err == nil:
		return mcp.NewToolResultText(reply), nil
	case errors.As(err, &persistErr):
		return mcp.NewToolResultText(reply + "\n\n(warning: this exchange was not saved to long-term memory)"), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("respond failed: %v", err)), nil
	}
}

// handleRecall handles the vera_recall tool call
func (h *handlers) handleRecall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, errResult := stringArg(request, "query")
	if errResult != nil {
		return errResult, nil
	}

	return mcp.NewToolResultText(retrieval.FormatAsText(h.engine.Recall(ctx, query))), nil
}

// handleForget handles the vera_forget tool call
func (h *handlers) handleForget(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := h.forgetCommand
	if command == "" {
		command = consts.ForgetCommand
	}
	if _, err := h.engine.Respond(ctx, command); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("forget failed: %v", err)), nil
	}
	return mcp.NewToolResultText("Forgot the most recent exchange."), nil
}
