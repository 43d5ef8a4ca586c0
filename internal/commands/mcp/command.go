package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/austiecodes/vera/internal/app"
	"github.com/austiecodes/vera/internal/utils"
)

// McpCmd is the command to start the MCP server
var McpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio",
	Long:  `Start a Model Context Protocol (MCP) server that communicates over stdio. The whole session is one vera conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runMcpServer(cmd.Context()); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func runMcpServer(ctx context.Context) error {
	config, err := utils.LoadRuntimeConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// stdout carries the protocol, so logs must stay on stderr
	utils.SetupLogger(config.Debug)

	rt, err := app.Open(ctx, config)
	if err != nil {
		return err
	}
	defer rt.Close()

	eng, _ := rt.NewEngine(ctx)
	h := &handlers{engine: eng, forgetCommand: config.Recall.ForgetCommand}

	s := server.NewMCPServer(
		"vera",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	registerTools(s, h)

	slog.Debug("mcp server starting", "pid", os.Getpid())
	return server.ServeStdio(s)
}

func registerTools(s *server.MCPServer, h *handlers) {
	respondTool := mcp.NewTool("vera_respond",
		mcp.WithDescription("Send a message to Vera and get a reply. Vera recalls relevant past conversations and remembers this exchange."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user message"),
		),
	)
	s.AddTool(respondTool, h.handleRespond)

	recallTool := mcp.NewTool("vera_recall",
		mcp.WithDescription("Show which past conversations Vera would recall for a prompt, without replying or storing anything."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The prompt to recall memories for"),
		),
	)
	s.AddTool(recallTool, h.handleRecall)

	forgetTool := mcp.NewTool("vera_forget",
		mcp.WithDescription("Forget the most recent exchange, both in this conversation and in long-term memory."),
	)
	s.AddTool(forgetTool, h.handleForget)
}
